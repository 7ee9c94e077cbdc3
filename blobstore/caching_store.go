package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/recgo/cache"
	"github.com/hupe1980/recgo/resource"
	"golang.org/x/sync/errgroup"
)

// CachingStore wraps a BlobStore with block-granular read caching.
// Record decodes are small random reads against a large blob; in front
// of an object store the cache turns a burst of neighboring decodes into
// a handful of range requests.
//
// Cache-fill reads against the inner store are charged to the resource
// controller's IO budget; cache hits are free. A nil controller means
// unpaced.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
	rc        *resource.Controller
}

// NewCachingStore creates a CachingStore. blockSize defaults to 64KB
// if <= 0.
func NewCachingStore(inner BlobStore, cache cache.BlockCache, blockSize int64, rc *resource.Controller) *CachingStore {
	if blockSize <= 0 {
		blockSize = 64 * 1024
	}
	return &CachingStore{
		inner:     inner,
		cache:     cache,
		blockSize: blockSize,
		rc:        rc,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
		rc:        s.rc,
	}, nil
}

// Create passes through; writes are not cached.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Delete removes the blob and drops its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Invalidate(func(key cache.Key) bool {
		return key.Path == name
	})
	return s.inner.Delete(ctx, name)
}

// List passes through.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// CachingBlob serves ReadAt from cached fixed-size blocks, fetching
// missing runs from the inner blob in coalesced range reads.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
	rc        *resource.Controller
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		// Intersection of the block with the request window, mapped to
		// output buffer coordinates.
		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+b.blockSize, off+int64(len(p)))
		if intersectEnd <= intersectStart {
			continue
		}

		blockData, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		copySize := int(intersectEnd - intersectStart)
		if srcOffset+int64(copySize) > int64(len(blockData)) {
			// Short final block at the end of the blob.
			copySize = len(blockData) - int(srcOffset)
		}
		if copySize > 0 {
			dstOffset := intersectStart - off
			totalRead += copy(p[dstOffset:dstOffset+int64(copySize)], blockData[srcOffset:])
		}
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

// fillCache loads the missing blocks of the range, fetching contiguous
// runs of misses as single backend reads, runs in parallel.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct {
		start, count int64
	}

	var missing []run
	runStart, runCount := int64(-1), int64(0)
	for blk := startBlock; blk <= endBlock; blk++ {
		key := cache.Key{Path: b.name, Offset: uint64(blk)}
		if _, ok := b.cache.Get(ctx, key); !ok {
			if runStart == -1 {
				runStart = blk
			}
			runCount++
			continue
		}
		if runStart != -1 {
			missing = append(missing, run{runStart, runCount})
			runStart, runCount = -1, 0
		}
	}
	if runStart != -1 {
		missing = append(missing, run{runStart, runCount})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := r.count * b.blockSize

			fileSize := b.Size()
			if byteStart >= fileSize {
				return nil
			}
			if byteStart+byteSize > fileSize {
				byteSize = fileSize - byteStart
			}

			if err := b.rc.AcquireIO(ctx, int(byteSize)); err != nil {
				return err
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(ctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			valid := buf[:n]

			for i := int64(0); i < r.count; i++ {
				offsetInRun := i * b.blockSize
				if offsetInRun >= int64(len(valid)) {
					break
				}
				endInRun := min(offsetInRun+b.blockSize, int64(len(valid)))

				// Copy so the cache entry does not pin the whole run
				// buffer.
				block := make([]byte, endInRun-offsetInRun)
				copy(block, valid[offsetInRun:endInRun])

				b.cache.Set(ctx, cache.Key{Path: b.name, Offset: uint64(r.start + i)}, block)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	key := cache.Key{Path: b.name, Offset: uint64(blk)}
	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	// Cache pressure may have evicted the block between fillCache and
	// here; fall back to a single-block read.
	if err := b.rc.AcquireIO(ctx, int(b.blockSize)); err != nil {
		return nil, err
	}
	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	valid := buf[:n]
	if n > 0 {
		b.cache.Set(ctx, key, valid)
	}
	return valid, nil
}

// ReadRange reads through the same block cache via an io.Reader facade.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(&contextSectionReader{blob: b, ctx: ctx, off: off, limit: off + length}), nil
}

type contextSectionReader struct {
	blob  *CachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *contextSectionReader) Read(p []byte) (n int, err error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return
}

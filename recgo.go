package recgo

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"sync"
	"time"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/container"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/filter"
	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/store"
	"github.com/hupe1980/recgo/view"
)

// session is the state shared by a reader and every view derived from
// it: the store handle, the catalog, the decode policy and the
// reader-local memo caches. One session owns one store handle; the
// single-owner precondition of the store carries over to every view.
type session struct {
	name    string
	store   store.Store
	catalog *index.Catalog
	opts    options

	// lastConfig records, per stream, the absolute index of the last
	// configuration record delivered by auto-config. Never invalidated;
	// the recording is immutable.
	lastConfig map[core.StreamID]int

	// prefetch tracks outstanding read-ahead goroutines so Close does
	// not pull the store out from under them.
	prefetch sync.WaitGroup

	closed bool
}

// Reader provides random-access, filterable, time-ordered navigation
// over one recording. Positions coincide with absolute catalog indices;
// slices share the session and re-window the position space.
//
// A Reader is not safe for concurrent use. Independent readers over the
// same recording are.
type Reader struct {
	s    *session
	list *view.List
}

// Open opens a local recording file.
func Open(ctx context.Context, path string, optFns ...Option) (*Reader, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return OpenStore(ctx, blobstore.NewLocalStore(dir), name, optFns...)
}

// OpenStore opens the named recording from any blob store. When a block
// cache option is set the store is wrapped in a caching layer first.
func OpenStore(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*Reader, error) {
	opts := applyOptions(optFns)

	if opts.blockCache != nil {
		bs = blobstore.NewCachingStore(bs, opts.blockCache, opts.blockSize, opts.controller)
	}

	start := time.Now()
	c, err := container.Open(ctx, bs, name)
	if err != nil {
		opts.metricsCollector.RecordOpen(time.Since(start), 0, err)
		opts.logger.LogOpen(ctx, name, 0, 0, err)
		return nil, err
	}

	r := newReader(c, opts)
	opts.metricsCollector.RecordOpen(time.Since(start), r.Len(), nil)
	opts.logger.LogOpen(ctx, c.Name(), r.Len(), len(r.s.catalog.StreamIDs()), nil)
	return r, nil
}

// NewReader wraps an already-open store. The reader takes ownership of
// the store handle.
func NewReader(st store.Store, optFns ...Option) *Reader {
	return newReader(st, applyOptions(optFns))
}

func newReader(st store.Store, opts options) *Reader {
	catalog := index.NewCatalog(st.Entries())

	identity := make([]int, catalog.Count())
	for i := range identity {
		identity[i] = i
	}

	return &Reader{
		s: &session{
			name:       st.Name(),
			store:      st,
			catalog:    catalog,
			opts:       opts,
			lastConfig: make(map[core.StreamID]int),
		},
		list: view.New(identity),
	}
}

// Len returns the number of records in the view.
func (r *Reader) Len() int {
	return r.list.Len()
}

// Get materializes the record at position i. Negative positions count
// from the end. Exactly one store decode is performed for the requested
// record, plus at most one more for its stream's preceding configuration
// record when auto-config is enabled.
func (r *Reader) Get(ctx context.Context, i int) (*record.Record, error) {
	abs, err := r.list.At(i)
	if err != nil {
		return nil, &IndexOutOfRangeError{Index: i, Length: r.list.Len()}
	}
	return r.s.materialize(ctx, abs)
}

// Records iterates the view in position order, which for an unfiltered
// reader is non-decreasing timestamp order. The store decode is the only
// suspension point; breaking out of the loop decodes nothing further.
func (r *Reader) Records(ctx context.Context) iter.Seq2[*record.Record, error] {
	return r.s.iterate(ctx, r.list.Indices(), false)
}

// Backward iterates the view in reverse position order, yielding
// non-increasing timestamps for an unfiltered reader.
func (r *Reader) Backward(ctx context.Context) iter.Seq2[*record.Record, error] {
	return r.s.iterate(ctx, r.list.Indices(), true)
}

// Slice returns a reader over the selected window. Building the slice
// decodes nothing; the new reader shares the session, including the
// store handle and the auto-config memo.
func (r *Reader) Slice(rng view.Range) (*Reader, error) {
	sub, err := r.list.Slice(rng)
	if err != nil {
		return nil, translateError(err)
	}
	return &Reader{s: r.s, list: sub}, nil
}

// Filter derives a one-shot filtered view. All criteria are optional; an
// omitted dimension places no restriction. Stream criteria accept glob
// patterns ("*", "?"), record types match exactly.
func (r *Reader) Filter(optFns ...func(o *filter.Options)) (*FilteredReader, error) {
	start := time.Now()

	spec, err := filter.NewSpec(r.s.catalog, optFns...)
	if err != nil {
		r.s.opts.logger.LogFilter(context.Background(), 0, r.s.catalog.Count(), err)
		return nil, err
	}
	result := filter.Derive(r.s.catalog, spec)

	r.s.opts.metricsCollector.RecordFilter(time.Since(start), len(result.Indices), r.s.catalog.Count())
	r.s.opts.logger.LogFilter(context.Background(), len(result.Indices), r.s.catalog.Count(), nil)

	return &FilteredReader{
		s:     r.s,
		spec:  spec,
		list:  view.New(result.Indices),
		minTS: result.MinTimestamp,
		maxTS: result.MaxTimestamp,
	}, nil
}

// FindByTime returns the position of the first record on the stream
// whose timestamp is at or after ts. ErrNotFound when the stream has no
// such record.
func (r *Reader) FindByTime(id core.StreamID, ts float64) (int, error) {
	return r.s.findByTime(id, ts)
}

// FindNearest returns the position of the stream's record closest to ts
// among those strictly within epsilon. ErrTimestampNotFound when the
// window is empty; ties go to the earlier record.
func (r *Reader) FindNearest(id core.StreamID, ts, epsilon float64) (int, error) {
	return r.s.findNearest(id, ts, epsilon)
}

// PrevMatching returns the largest position at or below from whose
// record matches the stream and type. Absence is reported as ok=false,
// never as an error.
func (r *Reader) PrevMatching(id core.StreamID, t core.RecordType, from int) (int, bool) {
	return index.PrevMatching(r.s.catalog, id, t, from)
}

// NextMatching returns the smallest position at or above from whose
// record matches the stream and type, with the same absence-as-value
// contract as PrevMatching.
func (r *Reader) NextMatching(id core.StreamID, t core.RecordType, from int) (int, bool) {
	return index.NextMatching(r.s.catalog, id, t, from)
}

// Name returns the source the reader was opened from.
func (r *Reader) Name() string {
	return r.s.name
}

// Tags returns the file-level annotations.
func (r *Reader) Tags() map[string]string {
	return r.s.store.Tags()
}

// StreamTags returns the stream-level annotations, or nil for an unknown
// stream.
func (r *Reader) StreamTags(id core.StreamID) map[string]string {
	for _, d := range r.s.store.Descriptors() {
		if d.StreamID == id {
			return d.Tags
		}
	}
	return nil
}

// StreamIDs returns all stream ids in the recording, sorted.
func (r *Reader) StreamIDs() []core.StreamID {
	return r.s.catalog.StreamIDs()
}

// RecordTypes returns all record types in the recording, sorted.
func (r *Reader) RecordTypes() []core.RecordType {
	return r.s.catalog.RecordTypes()
}

// CountsByType returns the number of records per type on the stream.
func (r *Reader) CountsByType(id core.StreamID) map[core.RecordType]int {
	return r.s.catalog.CountsByType(id)
}

// TimestampAt returns the timestamp at position i.
func (r *Reader) TimestampAt(i int) (float64, error) {
	abs, err := r.list.At(i)
	if err != nil {
		return 0, &IndexOutOfRangeError{Index: i, Length: r.list.Len()}
	}
	ts, err := r.s.catalog.TimestampAt(abs)
	return ts, translateError(err)
}

// MinTimestamp returns the first timestamp of the recording, or 0 when
// it is empty.
func (r *Reader) MinTimestamp() float64 {
	return r.s.catalog.MinTimestamp()
}

// MaxTimestamp returns the last timestamp of the recording, or 0 when it
// is empty.
func (r *Reader) MaxTimestamp() float64 {
	return r.s.catalog.MaxTimestamp()
}

// AutoConfig reports whether automatic configuration record reading is
// enabled.
func (r *Reader) AutoConfig() bool {
	return r.s.opts.autoConfig
}

// Close releases the store handle. Close on any view derived from the
// same session closes all of them.
func (r *Reader) Close() error {
	if r.s.closed {
		return nil
	}
	r.s.closed = true
	r.s.prefetch.Wait()
	return r.s.store.Close()
}

// --- session internals ---

// materialize decodes the record at the absolute index, honoring the
// auto-config policy first.
func (s *session) materialize(ctx context.Context, abs int) (*record.Record, error) {
	if s.closed {
		return nil, ErrClosed
	}

	if s.opts.autoConfig {
		if err := s.ensureConfig(ctx, abs); err != nil {
			return nil, err
		}
	}

	return s.decode(ctx, abs)
}

// ensureConfig decodes the latest configuration record preceding abs on
// its stream, unless that exact record was already delivered. Only data
// records pull in configuration; state and configuration records are
// delivered as-is.
func (s *session) ensureConfig(ctx context.Context, abs int) error {
	e, err := s.catalog.EntryAt(abs)
	if err != nil {
		return translateError(err)
	}
	if e.Type != core.RecordTypeData {
		return nil
	}

	cfg, ok := s.catalog.ConfigBefore(e.StreamID, abs)
	if !ok {
		return nil
	}
	if last, seen := s.lastConfig[e.StreamID]; seen && last == cfg {
		return nil
	}

	if _, err := s.decode(ctx, cfg); err != nil {
		return fmt.Errorf("auto-config decode failed: %w", err)
	}
	s.lastConfig[e.StreamID] = cfg
	return nil
}

// decode performs exactly one store read.
func (s *session) decode(ctx context.Context, abs int) (*record.Record, error) {
	start := time.Now()
	rec, err := s.store.ReadRecord(ctx, abs)
	s.opts.metricsCollector.RecordDecode(time.Since(start), payloadBytes(rec), err)
	s.opts.logger.LogDecode(ctx, abs, err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func payloadBytes(rec *record.Record) int {
	if rec == nil {
		return 0
	}
	n := 0
	for _, b := range rec.Blocks {
		n += len(b.Data)
	}
	return n
}

// iterate yields the records behind the given absolute indices. Records
// are pulled one at a time; the consumer controls the pace.
func (s *session) iterate(ctx context.Context, indices []int, backward bool) iter.Seq2[*record.Record, error] {
	return func(yield func(*record.Record, error) bool) {
		step := 1
		start := 0
		if backward {
			step = -1
			start = len(indices) - 1
		}

		for k := start; k >= 0 && k < len(indices); k += step {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			if !backward {
				s.readAhead(ctx, indices, k)
			}

			rec, err := s.materialize(ctx, indices[k])
			if !yield(rec, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// readAhead warms upcoming records through the block cache in the
// background, bounded by the resource controller when one is attached.
// Without a block cache the warm-up reads would be wasted, so this is a
// no-op then.
func (s *session) readAhead(ctx context.Context, indices []int, k int) {
	n := s.opts.readAhead
	if n <= 0 || s.opts.blockCache == nil {
		return
	}

	for ahead := 1; ahead <= n && k+ahead < len(indices); ahead++ {
		abs := indices[k+ahead]

		rc := s.opts.controller
		if rc != nil && !rc.TryAcquireBackground() {
			return
		}

		s.prefetch.Add(1)
		go func() {
			defer s.prefetch.Done()
			if rc != nil {
				defer rc.ReleaseBackground()
			}
			// Result is discarded; the read populates the block cache.
			_, _ = s.store.ReadRecord(ctx, abs)
		}()
	}
}

func (s *session) findByTime(id core.StreamID, ts float64) (int, error) {
	if !s.catalog.HasStream(id) {
		return 0, &StreamNotFoundError{StreamID: id}
	}

	start := time.Now()
	abs, err := index.LowerBound(s.catalog, id, ts)
	s.opts.metricsCollector.RecordSearch(time.Since(start), err)
	s.opts.logger.LogSearch(context.Background(), id, ts, abs, err)
	if err != nil {
		return 0, translateError(err)
	}
	return abs, nil
}

func (s *session) findNearest(id core.StreamID, ts, epsilon float64) (int, error) {
	if !s.catalog.HasStream(id) {
		return 0, &StreamNotFoundError{StreamID: id}
	}

	start := time.Now()
	abs, err := index.Nearest(s.catalog, id, ts, epsilon)
	s.opts.metricsCollector.RecordSearch(time.Since(start), err)
	s.opts.logger.LogSearch(context.Background(), id, ts, abs, err)
	if err != nil {
		return 0, translateError(err)
	}
	return abs, nil
}

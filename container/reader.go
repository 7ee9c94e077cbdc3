package container

import (
	"context"
	"fmt"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/internal/hash"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/store"
	"github.com/vmihailenco/msgpack/v5"
)

// Container is an open recording: the store.Store implementation over
// one blob. Opening parses footer, index and descriptors; afterwards
// each ReadRecord costs exactly one ranged read against the blob.
type Container struct {
	blob   blobstore.Blob
	name   string
	tags   map[string]string
	descs  []store.Descriptor
	rows   []indexRow
	closed bool
}

// Open opens the named recording from the blob store.
func Open(ctx context.Context, bs blobstore.BlobStore, name string) (*Container, error) {
	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	c, err := OpenBlob(ctx, blob, name)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return c, nil
}

// OpenBlob opens a recording over an already-open blob. The container
// takes ownership of the blob.
func OpenBlob(ctx context.Context, blob blobstore.Blob, name string) (*Container, error) {
	size := blob.Size()
	if size < headerLen+footerLen {
		return nil, fmt.Errorf("%w: %d bytes is below the minimum container size", ErrCorrupt, size)
	}

	head := make([]byte, headerLen)
	if _, err := blob.ReadAt(ctx, head, 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := decodeHeader(head); err != nil {
		return nil, err
	}

	foot := make([]byte, footerLen)
	if _, err := blob.ReadAt(ctx, foot, size-footerLen); err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	f, err := decodeFooter(foot)
	if err != nil {
		return nil, err
	}
	// Each offset and length is checked on its own before summing, so a
	// hostile footer cannot wrap the addition past the blob end.
	usize := uint64(size)
	if f.IndexOff > usize || f.IndexLen > usize || f.IndexOff+f.IndexLen > usize ||
		f.DescOff > usize || f.DescLen > usize || f.DescOff+f.DescLen > usize {
		return nil, fmt.Errorf("%w: section beyond blob end", ErrCorrupt)
	}
	if f.Count > usize/indexRowLen || f.IndexLen != f.Count*indexRowLen {
		return nil, fmt.Errorf("%w: index length %d does not match %d records", ErrCorrupt, f.IndexLen, f.Count)
	}

	desc := make([]byte, f.DescLen)
	if _, err := blob.ReadAt(ctx, desc, int64(f.DescOff)); err != nil {
		return nil, fmt.Errorf("read descriptors: %w", err)
	}
	if hash.CRC32C(desc) != f.DescCRC {
		return nil, fmt.Errorf("%w: descriptor checksum mismatch", ErrCorrupt)
	}
	tags, descs, err := decodeDescriptors(desc)
	if err != nil {
		return nil, err
	}

	indexBuf := make([]byte, f.IndexLen)
	if _, err := blob.ReadAt(ctx, indexBuf, int64(f.IndexOff)); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if hash.CRC32C(indexBuf) != f.IndexCRC {
		return nil, fmt.Errorf("%w: index checksum mismatch", ErrCorrupt)
	}

	rows := make([]indexRow, f.Count)
	for i := range rows {
		rows[i] = decodeIndexRow(indexBuf[i*indexRowLen:])
		if i > 0 && rows[i].Timestamp < rows[i-1].Timestamp {
			return nil, fmt.Errorf("%w: index timestamps out of order at %d", ErrCorrupt, i)
		}
	}

	return &Container{
		blob:  blob,
		name:  name,
		tags:  tags,
		descs: descs,
		rows:  rows,
	}, nil
}

// Name returns the blob name the container was opened under.
func (c *Container) Name() string {
	return c.name
}

// Entries returns the catalog rows in timestamp order.
func (c *Container) Entries() []index.Entry {
	entries := make([]index.Entry, len(c.rows))
	for i, r := range c.rows {
		entries[i] = index.Entry{
			Timestamp: r.Timestamp,
			StreamID:  r.StreamID,
			Type:      r.Type,
		}
	}
	return entries
}

// Tags returns the file-level annotations.
func (c *Container) Tags() map[string]string {
	return c.tags
}

// Descriptors returns the per-stream descriptors, sorted by id.
func (c *Container) Descriptors() []store.Descriptor {
	return c.descs
}

// ReadRecord decodes the record at the absolute index: one ranged read,
// one decompression, one unmarshal.
func (c *Container) ReadRecord(ctx context.Context, i int) (*record.Record, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if i < 0 || i >= len(c.rows) {
		return nil, fmt.Errorf("record %d not in [0, %d)", i, len(c.rows))
	}
	row := c.rows[i]

	frame := make([]byte, row.StoredLen)
	if _, err := c.blob.ReadAt(ctx, frame, int64(row.Offset)); err != nil {
		return nil, fmt.Errorf("read record %d: %w", i, err)
	}

	payload, err := decompressFrame(frame, row.Compression)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", i, err)
	}

	var blocks []record.Block
	if err := msgpack.Unmarshal(payload, &blocks); err != nil {
		return nil, fmt.Errorf("%w: record %d: %s", ErrCorrupt, i, err)
	}

	return &record.Record{
		Index:     i,
		StreamID:  row.StreamID,
		Type:      row.Type,
		Timestamp: row.Timestamp,
		Blocks:    blocks,
	}, nil
}

// Close releases the blob. Reads after Close return ErrClosed.
func (c *Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.blob.Close()
}

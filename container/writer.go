package container

import (
	"fmt"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/internal/hash"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/store"
	"github.com/vmihailenco/msgpack/v5"
)

// WriterOptions configure a recording writer.
type WriterOptions struct {
	// Compression is applied per record payload. Default ZSTD.
	Compression Compression

	// FileTags are the file-level annotations.
	FileTags map[string]string

	// Descriptors declare the streams the recording will carry. Every
	// record written must belong to one of them.
	Descriptors []store.Descriptor
}

// DefaultWriterOptions are the defaults applied by NewWriter.
var DefaultWriterOptions = WriterOptions{
	Compression: CompressionZSTD,
}

// Writer appends records to a recording blob. Records must arrive in
// non-decreasing timestamp order across all streams; Close finalizes
// the trailing index and footer. A Writer is single-owner, like the
// reader side.
type Writer struct {
	blob    blobstore.WritableBlob
	opts    WriterOptions
	streams map[core.StreamID]struct{}

	off     uint64
	rows    []indexRow
	descOff uint64
	descLen uint64
	descCRC uint32
	lastTS  float64
	closed  bool
}

// NewWriter starts a recording on the blob: header and descriptor
// section are written immediately.
func NewWriter(blob blobstore.WritableBlob, optFns ...func(o *WriterOptions)) (*Writer, error) {
	opts := DefaultWriterOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	w := &Writer{
		blob:    blob,
		opts:    opts,
		streams: make(map[core.StreamID]struct{}, len(opts.Descriptors)),
	}
	for _, d := range opts.Descriptors {
		w.streams[d.StreamID] = struct{}{}
	}

	if err := w.write(encodeHeader()); err != nil {
		return nil, err
	}

	desc, err := encodeDescriptors(opts.FileTags, opts.Descriptors)
	if err != nil {
		return nil, err
	}
	w.descOff = w.off
	w.descLen = uint64(len(desc))
	w.descCRC = hash.CRC32C(desc)
	if err := w.write(desc); err != nil {
		return nil, err
	}

	return w, nil
}

// WriteRecord appends one record. The timestamp must be at or above
// every previously written record's timestamp, which keeps the global
// catalog timestamp-ordered by construction.
func (w *Writer) WriteRecord(id core.StreamID, t core.RecordType, ts float64, blocks []record.Block) error {
	if w.closed {
		return ErrClosed
	}
	if _, ok := w.streams[id]; !ok {
		return fmt.Errorf("stream %s has no descriptor", id)
	}
	if len(w.rows) > 0 && ts < w.lastTS {
		return fmt.Errorf("%w: %f after %f", ErrOutOfOrder, ts, w.lastTS)
	}

	payload, err := msgpack.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	frame, err := compressFrame(payload, w.opts.Compression)
	if err != nil {
		return err
	}

	w.rows = append(w.rows, indexRow{
		Timestamp:   ts,
		StreamID:    id,
		Type:        t,
		Compression: w.opts.Compression,
		Offset:      w.off,
		StoredLen:   uint32(len(frame)),
	})
	w.lastTS = ts

	return w.write(frame)
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return len(w.rows)
}

// Close writes the index and footer and closes the blob. The recording
// is only complete (and, on atomic backends, only visible) after Close
// returns nil.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	indexBuf := make([]byte, len(w.rows)*indexRowLen)
	for i, row := range w.rows {
		encodeIndexRow(indexBuf[i*indexRowLen:], row)
	}

	indexOff := w.off
	if err := w.write(indexBuf); err != nil {
		return err
	}

	footer := encodeFooter(footerInfo{
		DescOff:  w.descOff,
		DescLen:  w.descLen,
		IndexOff: indexOff,
		IndexLen: uint64(len(indexBuf)),
		Count:    uint64(len(w.rows)),
		DescCRC:  w.descCRC,
		IndexCRC: hash.CRC32C(indexBuf),
		Version:  formatVersion,
	})
	if err := w.write(footer); err != nil {
		return err
	}

	if err := w.blob.Sync(); err != nil {
		return err
	}
	return w.blob.Close()
}

func (w *Writer) write(p []byte) error {
	n, err := w.blob.Write(p)
	w.off += uint64(n)
	return err
}

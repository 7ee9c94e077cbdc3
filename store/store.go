// Package store defines the contract between the reader engine and a
// record store: the component that owns the bytes and decodes them into
// records. The engine never touches bytes itself; it plans which absolute
// index to decode and asks the store for exactly that.
package store

import (
	"context"

	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/record"
)

// Descriptor carries the read-only facts about one stream. It is built
// by the store at open time and cached by the reader for its lifetime.
type Descriptor struct {
	StreamID core.StreamID

	// Tags are the stream-level key/value annotations.
	Tags map[string]string

	// EstimatedFrameRate is the producer's declared data record rate in
	// records per second, or 0 when unknown.
	EstimatedFrameRate float64

	// MightContainImages and MightContainAudio are advisory flags: a
	// true value promises nothing, a false value rules the content out.
	MightContainImages bool
	MightContainAudio  bool
}

// Store is a record store as the engine consumes it. A Store hands its
// catalog entries over once at open time; afterwards the engine only
// calls back for decodes.
//
// One Store handle is owned by exactly one reader at a time. ReadRecord
// must tolerate concurrent calls, since the owning reader issues
// background read-ahead through the same handle; the other methods are
// only called from the owner.
type Store interface {
	// Name identifies the source, typically a file path or object key.
	// Used verbatim in summaries and log fields.
	Name() string

	// Entries returns the timestamp-ordered catalog rows, one per
	// record, indexed by absolute index. The engine takes ownership of
	// the slice.
	Entries() []index.Entry

	// Tags returns the file-level key/value annotations.
	Tags() map[string]string

	// Descriptors returns one descriptor per stream, sorted by id.
	Descriptors() []Descriptor

	// ReadRecord decodes the record at the absolute index. This is the
	// only operation that touches record bytes, and in the cooperative
	// execution mode the only suspension point.
	ReadRecord(ctx context.Context, i int) (*record.Record, error)

	// Close releases the underlying handle. Reads after Close fail.
	Close() error
}

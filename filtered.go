package recgo

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/filter"
	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/view"
)

// FilteredReader is a one-shot filtered view over a recording: a
// strictly ascending subset of the absolute indices, derived once at
// construction. It exposes the same navigation surface as Reader with
// positions in its own index space.
//
// Filtering a FilteredReader again is not supported; derive a new view
// from the original reader instead.
type FilteredReader struct {
	s    *session
	spec *filter.Spec
	list *view.List

	// Timestamp range of the enabled subset; both zero when it is empty.
	minTS float64
	maxTS float64
}

// Len returns the number of enabled records.
func (f *FilteredReader) Len() int {
	return f.list.Len()
}

// Get materializes the record at filtered position i. Negative positions
// count from the end. The auto-config policy of the underlying reader
// applies unchanged.
func (f *FilteredReader) Get(ctx context.Context, i int) (*record.Record, error) {
	abs, err := f.list.At(i)
	if err != nil {
		return nil, &IndexOutOfRangeError{Index: i, Length: f.list.Len()}
	}
	return f.s.materialize(ctx, abs)
}

// Records iterates the enabled records in ascending position order,
// which is non-decreasing timestamp order.
func (f *FilteredReader) Records(ctx context.Context) iter.Seq2[*record.Record, error] {
	return f.s.iterate(ctx, f.list.Indices(), false)
}

// Backward iterates the enabled records in reverse.
func (f *FilteredReader) Backward(ctx context.Context) iter.Seq2[*record.Record, error] {
	return f.s.iterate(ctx, f.list.Indices(), true)
}

// Slice returns a filtered view over the selected window of positions.
// Building the slice decodes nothing.
func (f *FilteredReader) Slice(rng view.Range) (*FilteredReader, error) {
	sub, err := f.list.Slice(rng)
	if err != nil {
		return nil, translateError(err)
	}
	return &FilteredReader{
		s:     f.s,
		spec:  f.spec,
		list:  sub,
		minTS: f.minTS,
		maxTS: f.maxTS,
	}, nil
}

// Filter always fails: filtered views compose by deriving a fresh view
// from the original reader, not by stacking.
func (f *FilteredReader) Filter(optFns ...func(o *filter.Options)) (*FilteredReader, error) {
	return nil, fmt.Errorf("%w: a filtered view cannot be filtered again", ErrNotSupported)
}

// FindByTime searches the stream on the full catalog and projects the
// result into this view: the rightmost filtered position at or below the
// full-catalog hit, clamped to the first position. The stream must be in
// the view's enabled set.
func (f *FilteredReader) FindByTime(id core.StreamID, ts float64) (int, error) {
	if !f.spec.HasStream(id) {
		return 0, &StreamNotFoundError{StreamID: id}
	}
	abs, err := f.s.findByTime(id, ts)
	if err != nil {
		return 0, err
	}
	return index.RemapToFiltered(f.list.Indices(), abs), nil
}

// FindNearest is the epsilon-tolerant counterpart of FindByTime, with
// the same projection into the filtered index space.
func (f *FilteredReader) FindNearest(id core.StreamID, ts, epsilon float64) (int, error) {
	if !f.spec.HasStream(id) {
		return 0, &StreamNotFoundError{StreamID: id}
	}
	abs, err := f.s.findNearest(id, ts, epsilon)
	if err != nil {
		return 0, err
	}
	return index.RemapToFiltered(f.list.Indices(), abs), nil
}

// PrevMatching and NextMatching operate on absolute indices of the full
// catalog, like their Reader counterparts.
func (f *FilteredReader) PrevMatching(id core.StreamID, t core.RecordType, from int) (int, bool) {
	return index.PrevMatching(f.s.catalog, id, t, from)
}

// NextMatching returns the smallest absolute index at or above from
// matching the stream and type.
func (f *FilteredReader) NextMatching(id core.StreamID, t core.RecordType, from int) (int, bool) {
	return index.NextMatching(f.s.catalog, id, t, from)
}

// StreamIDs returns the enabled stream ids: the expanded concrete set
// the view was built with, sorted.
func (f *FilteredReader) StreamIDs() []core.StreamID {
	return f.spec.StreamIDs()
}

// RecordTypes returns the enabled record types, sorted.
func (f *FilteredReader) RecordTypes() []core.RecordType {
	return f.spec.RecordTypes()
}

// TimestampAt returns the timestamp at filtered position i.
func (f *FilteredReader) TimestampAt(i int) (float64, error) {
	abs, err := f.list.At(i)
	if err != nil {
		return 0, &IndexOutOfRangeError{Index: i, Length: f.list.Len()}
	}
	ts, err := f.s.catalog.TimestampAt(abs)
	return ts, translateError(err)
}

// MinTimestamp returns the first enabled timestamp, or 0 for an empty
// view.
func (f *FilteredReader) MinTimestamp() float64 {
	return f.minTS
}

// MaxTimestamp returns the last enabled timestamp, or 0 for an empty
// view.
func (f *FilteredReader) MaxTimestamp() float64 {
	return f.maxTS
}

// AutoConfig reports the underlying reader's decode policy; filtered
// views inherit it and cannot change it.
func (f *FilteredReader) AutoConfig() bool {
	return f.s.opts.autoConfig
}

// Close closes the shared session, including the reader this view was
// derived from.
func (f *FilteredReader) Close() error {
	if f.s.closed {
		return nil
	}
	f.s.closed = true
	f.s.prefetch.Wait()
	return f.s.store.Close()
}

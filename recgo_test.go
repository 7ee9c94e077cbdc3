package recgo

import (
	"context"
	"testing"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/cache"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/resource"
	"github.com/hupe1980/recgo/store"
	"github.com/hupe1980/recgo/testutil"
	"github.com/hupe1980/recgo/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallLayout() testutil.Layout {
	return testutil.Layout{
		Streams:     3,
		DataRecords: 10,
		StartTime:   1.0,
		Period:      0.04,
	}
}

func openFixture(t *testing.T, layout testutil.Layout, optFns ...Option) *Reader {
	t.Helper()

	bs := blobstore.NewMemoryStore()
	testutil.BuildRecording(t, bs, "fixture.recg", layout)

	r, err := OpenStore(context.Background(), bs, "fixture.recg", optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestOpenLocalFile(t *testing.T) {
	path := testutil.BuildLocalRecording(t, "session.recg", smallLayout())

	r, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3*12, r.Len())
	assert.Equal(t, "session.recg", r.Name())
}

func TestReaderReferenceFixture(t *testing.T) {
	r := openFixture(t, testutil.DefaultLayout)

	assert.Equal(t, 9538, r.Len())
	assert.Len(t, r.StreamIDs(), 19)
	assert.Equal(t, []core.RecordType{
		core.RecordTypeConfiguration,
		core.RecordTypeState,
		core.RecordTypeData,
	}, r.RecordTypes())

	counts := r.CountsByType(testutil.StreamID(1))
	assert.Equal(t, 1, counts[core.RecordTypeConfiguration])
	assert.Equal(t, 500, counts[core.RecordTypeData])
	assert.Equal(t, 1, counts[core.RecordTypeState])
}

func TestGetAndNegativeIndexing(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	first, err := r.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, core.RecordTypeConfiguration, first.Type)

	last, err := r.Get(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, r.Len()-1, last.Index)
	assert.Equal(t, core.RecordTypeState, last.Type)

	_, err = r.Get(ctx, r.Len())
	require.ErrorIs(t, err, ErrOutOfRange)
	var oor *IndexOutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, r.Len(), oor.Index)

	_, err = r.Get(ctx, -r.Len()-1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestSliceComposition(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	sub, err := r.Slice(view.Range{Start: view.Bound(6), Stop: view.Bound(16)})
	require.NoError(t, err)
	require.Equal(t, 10, sub.Len())

	for k := 0; k < sub.Len(); k++ {
		want, err := r.Get(ctx, 6+k)
		require.NoError(t, err)
		got, err := sub.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, want.Index, got.Index)
	}

	// Reversed slice walks the same window backwards.
	rev, err := sub.Slice(view.Range{Step: view.Bound(-1)})
	require.NoError(t, err)
	require.Equal(t, 10, rev.Len())
	head, err := rev.Get(ctx, 0)
	require.NoError(t, err)
	tail, err := sub.Get(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, tail.Index, head.Index)
}

func TestIterationTimestampOrder(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	prev := -1.0
	n := 0
	for rec, err := range r.Records(ctx) {
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.Timestamp, prev)
		prev = rec.Timestamp
		n++
	}
	assert.Equal(t, r.Len(), n)

	prev = prev + 1
	for rec, err := range r.Backward(ctx) {
		require.NoError(t, err)
		assert.LessOrEqual(t, rec.Timestamp, prev)
		prev = rec.Timestamp
	}
}

func TestIterationEarlyBreakStopsDecoding(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	testutil.BuildRecording(t, bs, "fixture.recg", smallLayout())

	r, err := OpenStore(ctx, bs, "fixture.recg")
	require.NoError(t, err)

	cs := &countingStore{Store: r.s.store}
	r.s.store = cs

	seen := 0
	for _, err := range r.Records(ctx) {
		require.NoError(t, err)
		seen++
		if seen == 4 {
			break
		}
	}
	assert.Equal(t, 4, cs.reads)
	require.NoError(t, r.Close())
}

// countingStore counts decode calls passing through it.
type countingStore struct {
	store.Store
	reads int
}

func (c *countingStore) ReadRecord(ctx context.Context, i int) (*record.Record, error) {
	c.reads++
	return c.Store.ReadRecord(ctx, i)
}

func TestAutoConfigDecodesPrecedingConfiguration(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	testutil.BuildRecording(t, bs, "fixture.recg", smallLayout())

	r, err := OpenStore(ctx, bs, "fixture.recg", WithAutoConfig())
	require.NoError(t, err)
	defer r.Close()

	cs := &countingStore{Store: r.s.store}
	r.s.store = cs

	// First data record of stream 100-2: config decode + record decode.
	abs, ok := r.NextMatching(testutil.StreamID(2), core.RecordTypeData, 0)
	require.True(t, ok)

	rec, err := r.Get(ctx, abs)
	require.NoError(t, err)
	assert.Equal(t, core.RecordTypeData, rec.Type)
	assert.Equal(t, 2, cs.reads)

	// Same stream, same governing config: no extra decode.
	next, ok := r.NextMatching(testutil.StreamID(2), core.RecordTypeData, abs+1)
	require.True(t, ok)
	_, err = r.Get(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, 3, cs.reads)

	// Configuration and state records never pull in another record.
	cfg, ok := r.NextMatching(testutil.StreamID(2), core.RecordTypeConfiguration, 0)
	require.True(t, ok)
	_, err = r.Get(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, cs.reads)
}

func TestManualModeDecodesOnlyRequested(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	testutil.BuildRecording(t, bs, "fixture.recg", smallLayout())

	r, err := OpenStore(ctx, bs, "fixture.recg")
	require.NoError(t, err)
	defer r.Close()

	cs := &countingStore{Store: r.s.store}
	r.s.store = cs

	abs, ok := r.NextMatching(testutil.StreamID(2), core.RecordTypeData, 0)
	require.True(t, ok)
	_, err = r.Get(ctx, abs)
	require.NoError(t, err)
	assert.Equal(t, 1, cs.reads)
}

func TestFindByTime(t *testing.T) {
	r := openFixture(t, smallLayout())
	id := testutil.StreamID(1)

	// Before the stream start: its first record.
	pos, err := r.FindByTime(id, 0)
	require.NoError(t, err)
	e, err := r.s.catalog.EntryAt(pos)
	require.NoError(t, err)
	assert.Equal(t, id, e.StreamID)
	assert.Equal(t, core.RecordTypeConfiguration, e.Type)

	// Past the stream end.
	_, err = r.FindByTime(id, 100)
	require.ErrorIs(t, err, ErrNotFound)

	// Unknown stream.
	_, err = r.FindByTime(core.StreamID{Type: 999, Instance: 1}, 1.0)
	require.ErrorIs(t, err, ErrStreamNotFound)
}

func TestFindNearest(t *testing.T) {
	r := openFixture(t, smallLayout())
	id := testutil.StreamID(1)

	// Dead-on hit.
	pos, err := r.FindNearest(id, 1.04, 0.001)
	require.NoError(t, err)
	ts, err := r.TimestampAt(pos)
	require.NoError(t, err)
	assert.InDelta(t, 1.04, ts, 1e-9)

	// Between records, outside any window.
	_, err = r.FindNearest(id, 1.02, 0.001)
	require.ErrorIs(t, err, ErrTimestampNotFound)
	var tnf *TimestampNotFoundError
	require.ErrorAs(t, err, &tnf)
	assert.Equal(t, id, tnf.StreamID)
}

func TestReadRecordContent(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	abs, ok := r.NextMatching(testutil.StreamID(3), core.RecordTypeData, 0)
	require.True(t, ok)

	rec, err := r.Get(ctx, abs)
	require.NoError(t, err)

	md := rec.Metadata()
	assert.Equal(t, record.Int(0), md["seq"])
	assert.Equal(t, record.Int(3), md["stream_no"])

	want := testutil.DataPayload(3, 0)
	require.Len(t, rec.Blocks, len(want))
	assert.Equal(t, want[1].Data, rec.Blocks[1].Data)
}

func TestTagsAndStreamTags(t *testing.T) {
	r := openFixture(t, smallLayout())

	assert.Equal(t, "synthetic", r.Tags()["device_type"])
	assert.Equal(t, "SN-0002", r.StreamTags(testutil.StreamID(2))["device_serial"])
	assert.Nil(t, r.StreamTags(core.StreamID{Type: 999, Instance: 9}))
}

func TestNeighborQueriesAtBoundaries(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())
	id := testutil.StreamID(1)

	// Past the end the probe position clamps onto the last record.
	i, ok := r.PrevMatching(id, core.RecordTypeData, r.Len()+100)
	require.True(t, ok)
	rec, err := r.Get(ctx, i)
	require.NoError(t, err)
	assert.Equal(t, id, rec.StreamID)
	assert.Equal(t, core.RecordTypeData, rec.Type)

	// No match in either direction is absence, not an error.
	_, ok = r.NextMatching(id, core.RecordTypeData, r.Len()+100)
	assert.False(t, ok)
	_, ok = r.PrevMatching(id, core.RecordTypeData, -5)
	assert.False(t, ok)
}

func TestIOBudgetGovernsCacheFills(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	testutil.BuildRecording(t, bs, "fixture.recg", smallLayout())

	// A budget below one cache block refuses even the open-time footer
	// read.
	tight := resource.NewController(resource.Config{IOLimitBytesPerSec: 1, MaxBackgroundWorkers: 2})
	_, err := OpenStore(ctx, bs, "fixture.recg",
		WithBlockCache(cache.NewLRUBlockCache(1<<20, nil), 4096),
		WithResourceController(tight),
	)
	require.Error(t, err)

	// A generous budget serves the recording in full, read-ahead
	// included.
	roomy := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30, MaxBackgroundWorkers: 2})
	r, err := OpenStore(ctx, bs, "fixture.recg",
		WithBlockCache(cache.NewLRUBlockCache(1<<20, nil), 4096),
		WithResourceController(roomy),
		WithReadAhead(2),
	)
	require.NoError(t, err)
	defer r.Close()

	seen := 0
	for _, err := range r.Records(ctx) {
		require.NoError(t, err)
		seen++
	}
	assert.Equal(t, r.Len(), seen)
}

func TestCloseIsIdempotentAndBlocksReads(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.Get(ctx, 0)
	require.ErrorIs(t, err, ErrClosed)
}

package recgo

import (
	"context"
	"testing"

	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/filter"
	"github.com/hupe1980/recgo/testutil"
	"github.com/hupe1980/recgo/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterReferenceScenario(t *testing.T) {
	r := openFixture(t, testutil.DefaultLayout)
	id := testutil.StreamID(1)

	fr, err := r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-1"}
		o.RecordTypes = []core.RecordType{core.RecordTypeData}
	})
	require.NoError(t, err)

	require.Equal(t, 500, fr.Len())

	pos, err := fr.FindByTime(id, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	pos, err = fr.FindByTime(id, 1.2)
	require.NoError(t, err)
	assert.Equal(t, 5, pos)

	_, err = fr.FindByTime(id, 21.0)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = fr.FindNearest(id, 5.18443535, 1e-6)
	require.ErrorIs(t, err, ErrTimestampNotFound)
}

func TestFilterGlobExpansion(t *testing.T) {
	r := openFixture(t, smallLayout())

	fr, err := r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-*"}
	})
	require.NoError(t, err)
	assert.Equal(t, r.Len(), fr.Len())
	assert.Len(t, fr.StreamIDs(), 3)

	fr, err = r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-?"}
		o.RecordTypes = []core.RecordType{core.RecordTypeState}
	})
	require.NoError(t, err)
	assert.Equal(t, 3, fr.Len())
}

func TestFilterTimestampWindow(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	min, max := 1.0, 1.1
	fr, err := r.Filter(func(o *filter.Options) {
		o.MinTimestamp = &min
		o.MaxTimestamp = &max
	})
	require.NoError(t, err)

	// Timesteps 1.00, 1.04, 1.08 across 3 streams.
	assert.Equal(t, 9, fr.Len())

	for rec, err := range fr.Records(ctx) {
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.Timestamp, min)
		assert.LessOrEqual(t, rec.Timestamp, max)
	}
}

func TestRefilterNotSupported(t *testing.T) {
	r := openFixture(t, smallLayout())

	fr, err := r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-1"}
	})
	require.NoError(t, err)

	_, err = fr.Filter(func(o *filter.Options) {
		o.RecordTypes = []core.RecordType{core.RecordTypeData}
	})
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestFilteredSearchOutsideSpec(t *testing.T) {
	r := openFixture(t, smallLayout())

	fr, err := r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-1"}
	})
	require.NoError(t, err)

	// Stream exists in the recording but is not enabled in this view.
	_, err = fr.FindByTime(testutil.StreamID(2), 1.0)
	require.ErrorIs(t, err, ErrStreamNotFound)

	_, err = fr.FindNearest(testutil.StreamID(2), 1.0, 0.1)
	require.ErrorIs(t, err, ErrStreamNotFound)
}

func TestFilteredRemapClampsToZero(t *testing.T) {
	r := openFixture(t, smallLayout())

	// Only the trailing state records are enabled; a hit on the stream's
	// configuration record lies before every filtered index.
	fr, err := r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-1"}
		o.RecordTypes = []core.RecordType{core.RecordTypeState}
	})
	require.NoError(t, err)
	require.Equal(t, 1, fr.Len())

	pos, err := fr.FindByTime(testutil.StreamID(1), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}

func TestEmptyFilteredView(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	min, max := 500.0, 600.0
	fr, err := r.Filter(func(o *filter.Options) {
		o.MinTimestamp = &min
		o.MaxTimestamp = &max
	})
	require.NoError(t, err)

	assert.Equal(t, 0, fr.Len())
	assert.Equal(t, 0.0, fr.MinTimestamp())
	assert.Equal(t, 0.0, fr.MaxTimestamp())

	_, err = fr.Get(ctx, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestFilteredSliceAndIteration(t *testing.T) {
	ctx := context.Background()
	r := openFixture(t, smallLayout())

	fr, err := r.Filter(func(o *filter.Options) {
		o.RecordTypes = []core.RecordType{core.RecordTypeData}
	})
	require.NoError(t, err)
	require.Equal(t, 30, fr.Len())

	sub, err := fr.Slice(view.Range{Start: view.Bound(-6)})
	require.NoError(t, err)
	assert.Equal(t, 6, sub.Len())

	prev := -1.0
	for rec, err := range sub.Records(ctx) {
		require.NoError(t, err)
		assert.Equal(t, core.RecordTypeData, rec.Type)
		assert.GreaterOrEqual(t, rec.Timestamp, prev)
		prev = rec.Timestamp
	}
}

func TestFilteredAutoConfigStillApplies(t *testing.T) {
	ctx := context.Background()

	r := openFixture(t, smallLayout(), WithAutoConfig())

	fr, err := r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-1"}
		o.RecordTypes = []core.RecordType{core.RecordTypeData}
	})
	require.NoError(t, err)

	cs := &countingStore{Store: r.s.store}
	r.s.store = cs

	_, err = fr.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, cs.reads) // configuration + data
}

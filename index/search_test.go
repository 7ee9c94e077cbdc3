package index

import (
	"testing"

	"github.com/hupe1980/recgo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerBound(t *testing.T) {
	c := NewCatalog(testEntries())

	i, err := LowerBound(c, streamA, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 5, i)

	// A record exactly at the target timestamp is its own bound.
	i, err = LowerBound(c, streamA, 4.0)
	require.NoError(t, err)
	assert.Equal(t, 9, i)

	_, err = LowerBound(c, streamA, 4.5)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNearestWindowBoundaryIsExclusive(t *testing.T) {
	c := NewCatalog(testEntries())

	// Stream A's neighbors of 2.5 sit at 2.0 and 3.0, each exactly
	// epsilon away; the exclusive boundary rules both out.
	_, err := Nearest(c, streamA, 2.5, 0.5)
	require.ErrorIs(t, err, ErrTimestampNotFound)

	var tnf *TimestampNotFoundError
	require.ErrorAs(t, err, &tnf)
	assert.Equal(t, streamA, tnf.StreamID)
	assert.Equal(t, 0.5, tnf.Epsilon)
}

func TestNearestTieGoesToEarlierRecord(t *testing.T) {
	c := NewCatalog(testEntries())

	// With the window widened, 2.0 and 3.0 are both admitted and
	// equidistant from 2.5; the earlier absolute index wins.
	i, err := Nearest(c, streamA, 2.5, 0.75)
	require.NoError(t, err)
	assert.Equal(t, 5, i)

	// One-sided window: only the right candidate qualifies.
	i, err = Nearest(c, streamB, 4.9, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 11, i)
}

func TestPrevNextMatchingBoundaries(t *testing.T) {
	c := NewCatalog(testEntries())
	beyond := len(testEntries()) + 100

	// Probes past either end clamp or report absence, never error.
	i, ok := PrevMatching(c, streamA, core.RecordTypeData, beyond)
	require.True(t, ok)
	assert.Equal(t, 9, i)

	_, ok = PrevMatching(c, streamA, core.RecordTypeData, -5)
	assert.False(t, ok)

	_, ok = NextMatching(c, streamA, core.RecordTypeData, beyond)
	assert.False(t, ok)

	i, ok = NextMatching(c, streamA, core.RecordTypeData, -5)
	require.True(t, ok)
	assert.Equal(t, 3, i)

	// The stream carries no record of the requested type.
	_, ok = NextMatching(c, streamC, core.RecordTypeState, 0)
	assert.False(t, ok)

	i, ok = PrevMatching(c, streamA, core.RecordTypeConfiguration, 7)
	require.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = NextMatching(c, streamA, core.RecordTypeConfiguration, 7)
	require.True(t, ok)
	assert.Equal(t, 8, i)
}

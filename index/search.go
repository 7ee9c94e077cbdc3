package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/recgo/core"
)

// TimestampNotFoundError reports an epsilon search whose window contained
// no candidate on the stream. It unwraps to ErrTimestampNotFound.
type TimestampNotFoundError struct {
	StreamID  core.StreamID
	Timestamp float64
	Epsilon   float64
}

func (e *TimestampNotFoundError) Error() string {
	return fmt.Sprintf("stream %s has no record within %g of timestamp %f", e.StreamID, e.Epsilon, e.Timestamp)
}

func (e *TimestampNotFoundError) Unwrap() error {
	return ErrTimestampNotFound
}

// LowerBound returns the smallest absolute index on the stream whose
// timestamp is at or after ts.
//
// The search is a binary lower bound over the global catalog followed by
// a forward walk to the first record of the stream; the per-stream
// subsequence inherits the catalog's timestamp order, so the first hit is
// the stream's own lower bound.
func LowerBound(c *Catalog, id core.StreamID, ts float64) (int, error) {
	n := len(c.entries)
	i := sort.Search(n, func(k int) bool {
		return c.entries[k].Timestamp >= ts
	})
	for ; i < n; i++ {
		if c.entries[i].StreamID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: stream %s, timestamp %f", ErrNotFound, id, ts)
}

// Nearest returns the absolute index of the stream's record closest to
// ts among those with |timestamp - ts| strictly inside epsilon. Ties
// between the left and right candidate go to the smaller absolute index.
//
// The window boundary is exclusive: a record at exactly ts±epsilon is
// not a candidate.
func Nearest(c *Catalog, id core.StreamID, ts, epsilon float64) (int, error) {
	lst := c.perStream[id]
	if len(lst) == 0 {
		return 0, &TimestampNotFoundError{StreamID: id, Timestamp: ts, Epsilon: epsilon}
	}

	// Lower bound within the stream's own ordered subsequence.
	pos := sort.Search(len(lst), func(k int) bool {
		return c.entries[lst[k]].Timestamp >= ts
	})

	within := func(i int) bool {
		return math.Abs(c.entries[i].Timestamp-ts) < epsilon
	}

	best := -1
	if pos > 0 && within(lst[pos-1]) {
		best = lst[pos-1]
	}
	if pos < len(lst) && within(lst[pos]) {
		// Replace only on a strictly smaller distance so that exact ties
		// keep the earlier record.
		if best < 0 || math.Abs(c.entries[lst[pos]].Timestamp-ts) < math.Abs(c.entries[best].Timestamp-ts) {
			best = lst[pos]
		}
	}

	if best < 0 {
		return 0, &TimestampNotFoundError{StreamID: id, Timestamp: ts, Epsilon: epsilon}
	}
	return best, nil
}

// RemapToFiltered maps an absolute catalog index onto a filtered index
// list: the rightmost position whose absolute index is at or below abs,
// clamped to 0 when every filtered index lies above abs.
//
// The remap deliberately does not re-run the search within the filtered
// subset; it preserves the approximation of projecting the full-catalog
// result.
func RemapToFiltered(list []int, abs int) int {
	pos := sort.SearchInts(list, abs+1) - 1
	if pos < 0 {
		return 0
	}
	return pos
}

// Package filter derives ordered index subsets from selection criteria:
// record types (exact match), stream ids (glob patterns expanded at
// construction time), and an inclusive timestamp window.
package filter

import (
	"fmt"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/index"
)

// Options are the raw selection criteria. Every dimension is optional;
// an omitted dimension means "no restriction", never "empty".
type Options struct {
	// RecordTypes selects by exact record type. Empty means all types.
	RecordTypes []core.RecordType

	// Streams selects streams by id or glob pattern ("*", "?") matched
	// against the available stream ids. Empty means all streams.
	Streams []string

	// MinTimestamp and MaxTimestamp bound the inclusive timestamp
	// window. Nil means the catalog's own bound.
	MinTimestamp *float64
	MaxTimestamp *float64
}

// DefaultOptions place no restriction on any dimension.
var DefaultOptions = Options{}

// Spec is an immutable, fully resolved selection criterion. Stream
// patterns have already been expanded against the available ids; the
// spec stores the concrete set, not the patterns. Record types carry no
// wildcard semantics, deliberately asymmetric to streams.
type Spec struct {
	types   []core.RecordType
	streams []core.StreamID
	minTS   float64
	maxTS   float64
}

// NewSpec resolves options against the catalog's available streams,
// types and timestamp range. Resolution happens once, here: the returned
// spec is self-contained and never consults availability again.
func NewSpec(c *index.Catalog, optFns ...func(o *Options)) (*Spec, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Spec{
		minTS: c.MinTimestamp(),
		maxTS: c.MaxTimestamp(),
	}
	if opts.MinTimestamp != nil {
		s.minTS = *opts.MinTimestamp
	}
	if opts.MaxTimestamp != nil {
		s.maxTS = *opts.MaxTimestamp
	}

	if len(opts.RecordTypes) == 0 {
		s.types = c.RecordTypes()
	} else {
		s.types = slices.Clone(opts.RecordTypes)
		slices.Sort(s.types)
		s.types = slices.Compact(s.types)
	}

	streams, err := expandStreams(c.StreamIDs(), opts.Streams)
	if err != nil {
		return nil, err
	}
	s.streams = streams

	return s, nil
}

// expandStreams resolves patterns to the concrete subset of available
// ids. Patterns without a match contribute nothing; an invalid pattern
// is an error.
func expandStreams(available []core.StreamID, patterns []string) ([]core.StreamID, error) {
	if len(patterns) == 0 {
		return slices.Clone(available), nil
	}

	matched := make(map[core.StreamID]struct{})
	for _, pattern := range patterns {
		for _, id := range available {
			ok, err := doublestar.Match(pattern, id.String())
			if err != nil {
				return nil, fmt.Errorf("invalid stream pattern %q: %w", pattern, err)
			}
			if ok {
				matched[id] = struct{}{}
			}
		}
	}

	out := make([]core.StreamID, 0, len(matched))
	for id := range matched {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b core.StreamID) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return out, nil
}

// RecordTypes returns the resolved types, sorted. Callers must not
// mutate the slice.
func (s *Spec) RecordTypes() []core.RecordType {
	return s.types
}

// StreamIDs returns the expanded concrete stream set, sorted. Callers
// must not mutate the slice.
func (s *Spec) StreamIDs() []core.StreamID {
	return s.streams
}

// MinTimestamp returns the inclusive lower timestamp bound.
func (s *Spec) MinTimestamp() float64 {
	return s.minTS
}

// MaxTimestamp returns the inclusive upper timestamp bound.
func (s *Spec) MaxTimestamp() float64 {
	return s.maxTS
}

// HasStream reports whether the id is in the resolved stream set.
func (s *Spec) HasStream(id core.StreamID) bool {
	_, ok := slices.BinarySearchFunc(s.streams, id, func(a, b core.StreamID) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return ok
}

// HasType reports whether the type is in the resolved type set.
func (s *Spec) HasType(t core.RecordType) bool {
	_, ok := slices.BinarySearch(s.types, t)
	return ok
}

// Result is a derived index subset: the strictly ascending absolute
// indices satisfying a spec, with the subset's own timestamp range.
// MinTimestamp and MaxTimestamp are 0 when the subset is empty.
type Result struct {
	Indices      []int
	MinTimestamp float64
	MaxTimestamp float64
}

// Derive computes the subset of the catalog satisfying the spec. The
// derivation is eager: the stream and type posting bitmaps are
// intersected, the timestamp window is applied as an index range over
// the timestamp-ordered catalog, and the surviving bitmap is
// materialized to a plain index list so that later length and position
// queries are O(1).
func Derive(c *index.Catalog, s *Spec) *Result {
	streamSet := roaring.New()
	for _, id := range s.streams {
		if b := c.StreamBitmap(id); b != nil {
			streamSet.Or(b)
		}
	}

	typeSet := roaring.New()
	for _, t := range s.types {
		if b := c.TypeBitmap(t); b != nil {
			typeSet.Or(b)
		}
	}

	streamSet.And(typeSet)
	applyWindow(c, streamSet, s.minTS, s.maxTS)

	if streamSet.IsEmpty() {
		return &Result{}
	}

	raw := streamSet.ToArray()
	indices := make([]int, len(raw))
	for i, v := range raw {
		indices[i] = int(v)
	}

	minTS, _ := c.TimestampAt(indices[0])
	maxTS, _ := c.TimestampAt(indices[len(indices)-1])

	return &Result{Indices: indices, MinTimestamp: minTS, MaxTimestamp: maxTS}
}

// applyWindow restricts the bitmap to catalog positions whose timestamp
// lies in [minTS, maxTS]. The catalog is timestamp-ordered, so the
// window is a contiguous index range found by two binary searches.
func applyWindow(c *index.Catalog, bm *roaring.Bitmap, minTS, maxTS float64) {
	n := c.Count()
	if n == 0 || bm.IsEmpty() {
		return
	}
	if minTS > maxTS {
		bm.Clear()
		return
	}

	lo := sort.Search(n, func(i int) bool {
		ts, _ := c.TimestampAt(i)
		return ts >= minTS
	})
	hi := sort.Search(n, func(i int) bool {
		ts, _ := c.TimestampAt(i)
		return ts > maxTS
	})
	if lo >= hi {
		bm.Clear()
		return
	}

	window := roaring.New()
	window.AddRange(uint64(lo), uint64(hi))
	bm.And(window)
}

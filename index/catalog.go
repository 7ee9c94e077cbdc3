// Package index maintains the file-wide, timestamp-ordered record catalog
// and the search operations over it: lower-bound and epsilon-tolerant
// timestamp lookup, previous/next neighbor queries, and remapping of
// absolute indices into filtered index spaces.
package index

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/recgo/core"
)

var (
	// ErrOutOfRange is returned for an index outside [0, Count).
	ErrOutOfRange = errors.New("index out of range")
	// ErrNotFound is returned by a lower-bound search with no record at or
	// after the target timestamp.
	ErrNotFound = errors.New("no record at or after timestamp")
	// ErrTimestampNotFound is returned by an epsilon search whose window
	// contains no candidate.
	ErrTimestampNotFound = errors.New("no record within epsilon of timestamp")
)

// Entry is one catalog row: the (timestamp, stream, type) triple of a
// record at its absolute index.
type Entry struct {
	Timestamp float64
	StreamID  core.StreamID
	Type      core.RecordType
}

// Catalog is the full, timestamp-ordered enumeration of all records in a
// recording. It is built once at open time and immutable thereafter; the
// two lazy memos (per-stream type counts and per-stream configuration
// positions) are reader-local and never invalidated.
//
// A Catalog is not safe for concurrent use; it shares its owning reader's
// single-owner precondition.
type Catalog struct {
	entries []Entry

	streams []core.StreamID   // sorted unique
	types   []core.RecordType // sorted unique

	perStream map[core.StreamID][]int // ascending absolute indices

	// Posting bitmaps over absolute indices, consumed by filter derivation.
	streamBits map[core.StreamID]*roaring.Bitmap
	typeBits   map[core.RecordType]*roaring.Bitmap

	counts     map[core.StreamID]map[core.RecordType]int // lazy
	configMemo map[core.StreamID][]int                   // lazy, ascending config indices
}

// NewCatalog builds a catalog from entries ordered by non-decreasing
// timestamp. Ordering is the caller's contract; stores validate it when
// they parse their on-disk index.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries:    entries,
		perStream:  make(map[core.StreamID][]int),
		streamBits: make(map[core.StreamID]*roaring.Bitmap),
		typeBits:   make(map[core.RecordType]*roaring.Bitmap),
		counts:     make(map[core.StreamID]map[core.RecordType]int),
		configMemo: make(map[core.StreamID][]int),
	}

	for i, e := range entries {
		c.perStream[e.StreamID] = append(c.perStream[e.StreamID], i)

		sb := c.streamBits[e.StreamID]
		if sb == nil {
			sb = roaring.New()
			c.streamBits[e.StreamID] = sb
		}
		sb.Add(uint32(i))

		tb := c.typeBits[e.Type]
		if tb == nil {
			tb = roaring.New()
			c.typeBits[e.Type] = tb
		}
		tb.Add(uint32(i))
	}

	c.streams = make([]core.StreamID, 0, len(c.perStream))
	for id := range c.perStream {
		c.streams = append(c.streams, id)
	}
	slices.SortFunc(c.streams, func(a, b core.StreamID) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})

	c.types = make([]core.RecordType, 0, len(c.typeBits))
	for t := range c.typeBits {
		c.types = append(c.types, t)
	}
	slices.Sort(c.types)

	return c
}

// Count returns the total number of records.
func (c *Catalog) Count() int {
	return len(c.entries)
}

// TimestampAt returns the timestamp of the record at absolute index i.
func (c *Catalog) TimestampAt(i int) (float64, error) {
	if i < 0 || i >= len(c.entries) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(c.entries))
	}
	return c.entries[i].Timestamp, nil
}

// EntryAt returns the catalog row at absolute index i.
func (c *Catalog) EntryAt(i int) (Entry, error) {
	if i < 0 || i >= len(c.entries) {
		return Entry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(c.entries))
	}
	return c.entries[i], nil
}

// StreamIDs returns all stream ids present, sorted.
func (c *Catalog) StreamIDs() []core.StreamID {
	return slices.Clone(c.streams)
}

// RecordTypes returns all record types present, sorted.
func (c *Catalog) RecordTypes() []core.RecordType {
	return slices.Clone(c.types)
}

// HasStream reports whether the stream occurs in the catalog.
func (c *Catalog) HasStream(id core.StreamID) bool {
	_, ok := c.perStream[id]
	return ok
}

// StreamIndices returns the ascending absolute indices of all records on
// the stream. The returned slice is shared; callers must not mutate it.
func (c *Catalog) StreamIndices(id core.StreamID) []int {
	return c.perStream[id]
}

// CountsByType returns the number of records per type on the stream,
// memoized on first access for the catalog's lifetime.
func (c *Catalog) CountsByType(id core.StreamID) map[core.RecordType]int {
	if memo, ok := c.counts[id]; ok {
		return memo
	}
	counts := make(map[core.RecordType]int)
	for _, i := range c.perStream[id] {
		counts[c.entries[i].Type]++
	}
	c.counts[id] = counts
	return counts
}

// MinTimestamp returns the first timestamp, or 0 for an empty catalog.
func (c *Catalog) MinTimestamp() float64 {
	if len(c.entries) == 0 {
		return 0
	}
	return c.entries[0].Timestamp
}

// MaxTimestamp returns the last timestamp, or 0 for an empty catalog.
func (c *Catalog) MaxTimestamp() float64 {
	if len(c.entries) == 0 {
		return 0
	}
	return c.entries[len(c.entries)-1].Timestamp
}

// StreamBitmap returns the posting bitmap of the stream's absolute
// indices, or nil if the stream has none. The bitmap is shared; callers
// must not mutate it.
func (c *Catalog) StreamBitmap(id core.StreamID) *roaring.Bitmap {
	return c.streamBits[id]
}

// TypeBitmap returns the posting bitmap of the type's absolute indices,
// or nil. The bitmap is shared; callers must not mutate it.
func (c *Catalog) TypeBitmap(t core.RecordType) *roaring.Bitmap {
	return c.typeBits[t]
}

// ConfigBefore returns the largest absolute index of a configuration
// record on the stream strictly before i, if one exists. The per-stream
// configuration positions are collected lazily on first use.
func (c *Catalog) ConfigBefore(id core.StreamID, i int) (int, bool) {
	cfg, ok := c.configMemo[id]
	if !ok {
		for _, j := range c.perStream[id] {
			if c.entries[j].Type == core.RecordTypeConfiguration {
				cfg = append(cfg, j)
			}
		}
		c.configMemo[id] = cfg
	}
	pos, _ := slices.BinarySearch(cfg, i)
	if pos == 0 {
		return 0, false
	}
	return cfg[pos-1], true
}

package index

import (
	"github.com/hupe1980/recgo/core"
)

// PrevMatching returns the largest absolute index at or below from whose
// record matches both the stream and the type. Absence is a value, not an
// error: a from below 0 or a stream with no earlier match both report
// ok=false.
func PrevMatching(c *Catalog, id core.StreamID, t core.RecordType, from int) (int, bool) {
	if from >= len(c.entries) {
		from = len(c.entries) - 1
	}
	for i := from; i >= 0; i-- {
		if c.entries[i].StreamID == id && c.entries[i].Type == t {
			return i, true
		}
	}
	return 0, false
}

// NextMatching returns the smallest absolute index at or above from whose
// record matches both the stream and the type, with the same
// absence-as-value contract as PrevMatching.
func NextMatching(c *Catalog, id core.StreamID, t core.RecordType, from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(c.entries); i++ {
		if c.entries[i].StreamID == id && c.entries[i].Type == t {
			return i, true
		}
	}
	return 0, false
}

package core

import (
	"fmt"
	"strconv"
	"strings"
)

// StreamID identifies one record stream within a recording.
// The textual form is "<type>-<instance>", e.g. "100-1": a device type
// followed by an instance counter that distinguishes multiple sources of
// the same type.
type StreamID struct {
	Type     uint32
	Instance uint32
}

// ParseStreamID parses the textual "<type>-<instance>" form.
func ParseStreamID(s string) (StreamID, error) {
	t, i, ok := strings.Cut(s, "-")
	if !ok {
		return StreamID{}, fmt.Errorf("invalid stream id %q: missing separator", s)
	}
	typ, err := strconv.ParseUint(t, 10, 32)
	if err != nil {
		return StreamID{}, fmt.Errorf("invalid stream id %q: %w", s, err)
	}
	inst, err := strconv.ParseUint(i, 10, 32)
	if err != nil {
		return StreamID{}, fmt.Errorf("invalid stream id %q: %w", s, err)
	}
	return StreamID{Type: uint32(typ), Instance: uint32(inst)}, nil
}

// String returns the textual "<type>-<instance>" form.
func (id StreamID) String() string {
	return strconv.FormatUint(uint64(id.Type), 10) + "-" + strconv.FormatUint(uint64(id.Instance), 10)
}

// IsZero reports whether the id is the zero value, which never names a
// real stream.
func (id StreamID) IsZero() bool {
	return id.Type == 0 && id.Instance == 0
}

// Less orders stream ids by type, then instance. Used for stable listings.
func (id StreamID) Less(other StreamID) bool {
	if id.Type != other.Type {
		return id.Type < other.Type
	}
	return id.Instance < other.Instance
}

// RecordType classifies a record within its stream.
type RecordType uint8

const (
	// RecordTypeUnknown is the zero value; it never appears in a valid recording.
	RecordTypeUnknown RecordType = iota
	// RecordTypeConfiguration describes how subsequent data and state
	// records on the same stream must be interpreted.
	RecordTypeConfiguration
	// RecordTypeState captures internal producer state at a point in time.
	RecordTypeState
	// RecordTypeData carries the stream's payload.
	RecordTypeData
)

// String returns the lower-case name used in filters and summaries.
func (t RecordType) String() string {
	switch t {
	case RecordTypeConfiguration:
		return "configuration"
	case RecordTypeState:
		return "state"
	case RecordTypeData:
		return "data"
	default:
		return "unknown"
	}
}

// ParseRecordType maps a type name back to its RecordType. Matching is
// exact: unrecognized names report ok=false rather than RecordTypeUnknown,
// so callers can distinguish "matches nothing" from a real unknown type.
func ParseRecordType(s string) (RecordType, bool) {
	switch s {
	case "configuration":
		return RecordTypeConfiguration, true
	case "state":
		return RecordTypeState, true
	case "data":
		return RecordTypeData, true
	default:
		return RecordTypeUnknown, false
	}
}

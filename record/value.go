package record

import (
	"strconv"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindBool represents a boolean value.
	KindBool
	// KindInt represents a signed integer value.
	KindInt
	// KindFloat represents a floating point value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBytes represents an opaque byte value.
	KindBytes
)

// Value is a small typed value carried by a metadata block entry.
//
// The representation is flat on purpose: no reflection, no interface
// boxing, stable field layout for serialization.
type Value struct {
	Kind Kind    `msgpack:"k"`
	B    bool    `msgpack:"b,omitempty"`
	I64  int64   `msgpack:"i,omitempty"`
	F64  float64 `msgpack:"f,omitempty"`
	S    string  `msgpack:"s,omitempty"`
	Raw  []byte  `msgpack:"r,omitempty"`
}

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a floating point Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Bytes returns an opaque byte Value. The slice is retained, not copied.
func Bytes(v []byte) Value { return Value{Kind: KindBytes, Raw: v} }

// TypeName returns the stable type name used when metadata keys must be
// disambiguated (see ResolveKeys).
func (v Value) TypeName() string {
	switch v.Kind {
	case KindBool:
		return "bool"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// Any returns the value as an untyped interface, for callers that hand
// metadata off to generic consumers (JSON encoders, templating).
func (v Value) Any() any {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.S
	case KindBytes:
		return v.Raw
	default:
		return nil
	}
}

// GoString formats the value for debug output.
func (v Value) GoString() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.S)
	case KindBytes:
		return "bytes(" + strconv.Itoa(len(v.Raw)) + ")"
	default:
		return "<invalid>"
	}
}

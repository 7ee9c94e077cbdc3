// Package record defines the decoded record model: a timestamped, typed
// unit belonging to one stream, composed of zero or more typed blocks.
package record

import (
	"github.com/hupe1980/recgo/core"
)

// BlockKind identifies the content category of one block.
type BlockKind uint8

const (
	// BlockMetadata holds an ordered list of typed name/value entries.
	BlockMetadata BlockKind = iota + 1
	// BlockImage holds pixel data described by an ImageSpec.
	BlockImage
	// BlockAudio holds sample data described by an AudioSpec.
	BlockAudio
	// BlockCustom holds opaque producer-defined bytes.
	BlockCustom
)

// String returns the lower-case kind name.
func (k BlockKind) String() string {
	switch k {
	case BlockMetadata:
		return "metadata"
	case BlockImage:
		return "image"
	case BlockAudio:
		return "audio"
	case BlockCustom:
		return "custom"
	default:
		return "invalid"
	}
}

// ImageSpec describes the pixel layout of an image block.
type ImageSpec struct {
	Width       uint32 `msgpack:"w"`
	Height      uint32 `msgpack:"h"`
	PixelFormat string `msgpack:"pf"`
	Stride      uint32 `msgpack:"st,omitempty"`
}

// AudioSpec describes the sample layout of an audio block.
type AudioSpec struct {
	SampleCount  uint32 `msgpack:"sc"`
	SampleRate   uint32 `msgpack:"sr"`
	Channels     uint8  `msgpack:"ch"`
	SampleFormat string `msgpack:"sf"`
}

// Block is one typed content unit of a record. Exactly the fields
// matching Kind are populated; the rest stay zero.
type Block struct {
	Kind    BlockKind  `msgpack:"k"`
	Entries []Entry    `msgpack:"e,omitempty"`
	Image   *ImageSpec `msgpack:"i,omitempty"`
	Audio   *AudioSpec `msgpack:"a,omitempty"`
	Data    []byte     `msgpack:"d,omitempty"`
}

// Record is an immutable snapshot of one decoded record. It is owned by
// the caller once materialized; the engine does not cache records.
type Record struct {
	// Index is the record's absolute position in the file-wide,
	// timestamp-ordered catalog.
	Index     int
	StreamID  core.StreamID
	Type      core.RecordType
	Timestamp float64
	Blocks    []Block
}

// Metadata flattens all metadata blocks into one map with unique keys,
// resolving name collisions across differently-typed entries (see
// ResolveKeys). Entry order is the block order followed by in-block order.
func (r *Record) Metadata() map[string]Value {
	var entries []Entry
	for _, b := range r.Blocks {
		if b.Kind == BlockMetadata {
			entries = append(entries, b.Entries...)
		}
	}
	if entries == nil {
		return map[string]Value{}
	}
	return ResolveKeys(entries)
}

// ImageBlocks returns the record's image blocks in order.
func (r *Record) ImageBlocks() []Block {
	return r.blocksOf(BlockImage)
}

// AudioBlocks returns the record's audio blocks in order.
func (r *Record) AudioBlocks() []Block {
	return r.blocksOf(BlockAudio)
}

// CustomBlocks returns the record's custom blocks in order.
func (r *Record) CustomBlocks() []Block {
	return r.blocksOf(BlockCustom)
}

func (r *Record) blocksOf(kind BlockKind) []Block {
	var out []Block
	for _, b := range r.Blocks {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

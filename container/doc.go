// Package container implements the single-file recording format and its
// store.Store reader.
//
// A recording is laid out as four sections:
//
//	[header]      fixed 16 bytes: magic "RECG", version, flags
//	[descriptors] msgpack: file tags plus one descriptor per stream
//	[records]     per-record payload frames, in timestamp order
//	[index]       fixed-width rows: timestamp, stream, type,
//	              compression, byte offset and stored length per record
//	[footer]      fixed 56 bytes: section offsets, record count, CRC32C
//	              of descriptors and index, trailing magic
//
// A record frame is the msgpack encoding of the record's blocks, run
// through an optional LZ4 or ZSTD block compressor. Incompressible
// payloads are stored raw behind the same frame header, so decoding
// never depends on what the compressor decided.
//
// The index sits at the tail so a recording can be written in one
// sequential stream (local file, multipart upload) with no seeking.
// Opening a recording reads footer, index and descriptors once;
// afterwards each record decode costs exactly one ranged read.
package container

// Package mmap maps recording files into memory for zero-copy reads.
//
// Decoding a record is a small read at an arbitrary offset of a
// potentially multi-gigabyte blob; a read-only mapping serves that
// without per-read syscalls and lets the page cache decide what stays
// resident. The local blob store opens every recording through this
// package and advises AccessRandom.
//
// Unix platforms map with mmap(2) and hint with madvise(2); on Windows
// the mapping uses CreateFileMapping/MapViewOfFile and hints are a
// no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but the
// caller must ensure no goroutine touches Bytes after Close returns.
package mmap

package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing immutable recording blobs,
// local files and object storage alike.
type BlobStore interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for streaming writes. The blob becomes
	// visible under its name when the returned handle is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to one recording's bytes. Reads carry a
// context because remote implementations issue a request per read.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange returns a reader over [off, off+length), clamped to the
	// blob size. The caller owns the returned reader.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	io.Closer
}

// Mappable is an optional interface for Blobs whose bytes are directly
// addressable, typically via mmap. The slice is valid until the blob is
// closed; access is zero-copy.
type Mappable interface {
	Bytes() ([]byte, error)
}

// WritableBlob is a streaming write handle. Writes are sequential; the
// blob is finalized by Close.
type WritableBlob interface {
	io.Writer

	// Sync flushes buffered bytes to stable storage where the backend
	// supports it; object stores treat it as a no-op.
	Sync() error

	io.Closer
}

package recgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/view"
)

var (
	// ErrOutOfRange is returned for an index outside the view, after
	// negative-index normalization.
	ErrOutOfRange = errors.New("index out of range")

	// ErrTimestampNotFound is returned by an epsilon-tolerant time search
	// whose window contains no record on the stream.
	ErrTimestampNotFound = errors.New("no record within epsilon of timestamp")

	// ErrNotFound is returned by a lower-bound time search when the
	// stream has no record at or after the target timestamp.
	ErrNotFound = errors.New("not found")

	// ErrNotSupported is returned for operations a filtered view does not
	// support, such as filtering it again.
	ErrNotSupported = errors.New("operation not supported")

	// ErrStreamNotFound is returned when a stream id is not part of the
	// recording, or not part of a filtered view's enabled set.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrClosed is returned for reads against a closed reader.
	ErrClosed = errors.New("reader is closed")
)

// IndexOutOfRangeError reports the offending index and the view length.
//
// It unwraps to ErrOutOfRange.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for %d records", e.Index, e.Length)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrOutOfRange }

// TimestampNotFoundError reports the failed epsilon search parameters.
//
// It unwraps to ErrTimestampNotFound.
type TimestampNotFoundError struct {
	StreamID  core.StreamID
	Timestamp float64
	Epsilon   float64
}

func (e *TimestampNotFoundError) Error() string {
	return fmt.Sprintf("stream %s has no record within %g of timestamp %f", e.StreamID, e.Epsilon, e.Timestamp)
}

func (e *TimestampNotFoundError) Unwrap() error { return ErrTimestampNotFound }

// StreamNotFoundError reports a stream id missing from the recording or
// from a filtered view's enabled set.
//
// It unwraps to ErrStreamNotFound.
type StreamNotFoundError struct {
	StreamID core.StreamID
}

func (e *StreamNotFoundError) Error() string {
	return fmt.Sprintf("stream %s not found", e.StreamID)
}

func (e *StreamNotFoundError) Unwrap() error { return ErrStreamNotFound }

// translateError maps internal package errors onto the public taxonomy.
// Store decode errors pass through untouched; the engine does not
// reinterpret or retry them.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, view.ErrOutOfRange) || errors.Is(err, index.ErrOutOfRange) {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}

	var tnf *index.TimestampNotFoundError
	if errors.As(err, &tnf) {
		return &TimestampNotFoundError{StreamID: tnf.StreamID, Timestamp: tnf.Timestamp, Epsilon: tnf.Epsilon}
	}

	if errors.Is(err, index.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}

package mmap

import "errors"

// AccessPattern is a kernel hint about how the mapped bytes will be
// read. Recordings are decoded record by record over a trailing index,
// so AccessRandom is the usual choice; AccessSequential fits a full
// forward scan.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
)

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for a file whose reported size cannot
	// be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned for a negative read offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

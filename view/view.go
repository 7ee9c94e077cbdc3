// Package view implements list-like windowing over an ordered sequence of
// absolute record indices: negative indexing and Python-style slicing with
// start/stop/step, bound clamping, and reversal via a negative step.
//
// A view is pure index arithmetic. It never touches the record store;
// materializing a record from a view position is the owner's job.
package view

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for a position outside [0, Len) after
// negative-index normalization.
var ErrOutOfRange = errors.New("view position out of range")

// ErrZeroStep is returned when a slice is built with step 0.
var ErrZeroStep = errors.New("slice step must not be zero")

// List is an immutable ordered sequence of absolute record indices.
type List struct {
	indices []int
}

// New wraps indices in a List. The slice is retained, not copied; callers
// hand over ownership.
func New(indices []int) *List {
	return &List{indices: indices}
}

// Len returns the number of positions in the list.
func (l *List) Len() int {
	return len(l.indices)
}

// At returns the absolute record index at position i. Negative positions
// count from the end (-1 is the last).
func (l *List) At(i int) (int, error) {
	n := len(l.indices)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, n)
	}
	return l.indices[i], nil
}

// Indices returns the backing slice. Callers must not mutate it.
func (l *List) Indices() []int {
	return l.indices
}

// Range selects a window of a List with Python slice semantics. A nil
// bound means "unset": start defaults to the first position (last for a
// negative step), stop to one past the last (one before the first for a
// negative step). Step defaults to 1 when nil.
type Range struct {
	Start *int
	Stop  *int
	Step  *int
}

// Bound is a convenience for building Range literals from constants.
func Bound(i int) *int {
	return &i
}

// Slice returns a new List over the window the range selects. Bounds
// outside the list clamp instead of failing; only a zero step is an
// error. A negative step walks the window in reverse.
func (l *List) Slice(r Range) (*List, error) {
	start, stop, step, err := r.resolve(len(l.indices))
	if err != nil {
		return nil, err
	}

	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, l.indices[i])
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, l.indices[i])
		}
	}
	return &List{indices: out}, nil
}

// resolve normalizes the range against a list of length n, producing
// concrete start/stop/step such that the iteration loops in Slice visit
// exactly the selected positions. The rules mirror Python's
// slice.indices().
func (r Range) resolve(n int) (start, stop, step int, err error) {
	step = 1
	if r.Step != nil {
		step = *r.Step
	}
	if step == 0 {
		return 0, 0, 0, ErrZeroStep
	}

	// Defaults depend on direction.
	if step > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}

	clamp := func(i int, lo, hi int) int {
		if i < 0 {
			i += n
			if i < lo {
				i = lo
			}
		} else if i > hi {
			i = hi
		}
		return i
	}

	if r.Start != nil {
		if step > 0 {
			start = clamp(*r.Start, 0, n)
		} else {
			start = clamp(*r.Start, -1, n-1)
		}
	}
	if r.Stop != nil {
		if step > 0 {
			stop = clamp(*r.Stop, 0, n)
		} else {
			stop = clamp(*r.Stop, -1, n-1)
		}
	}

	return start, stop, step, nil
}

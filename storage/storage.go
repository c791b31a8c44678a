// Package storage implements the array-of-machine-words subsystem of
// spec.md §4.2: a factory that transparently places mantissa digits in
// memory or on disk depending on size, scoped windowed views over a
// logical sequence ("array access"), iterators, and the transposed
// views the six-step NTT needs.
package storage

import (
	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// ElementType fixes the word size a Storage holds for its whole
// lifetime (spec.md §3 "Storage" invariants).
type ElementType int

const (
	Int32 ElementType = iota
	Int64
	Float32
	Float64
)

// Size returns the element's size in bytes.
func (e ElementType) Size() int64 {
	switch e {
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

func (e ElementType) String() string {
	switch e {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// AccessMode controls what an ArrayAccess window permits.
type AccessMode int

const (
	Read AccessMode = 1 << iota
	Write
)

const ReadWrite = Read | Write

func (m AccessMode) canRead() bool  { return m&Read != 0 }
func (m AccessMode) canWrite() bool { return m&Write != 0 }

// Storage is the full logical sequence of fixed-size machine words,
// backed by memory or disk (spec.md §3 "Storage").
type Storage interface {
	// ElementType is fixed at creation.
	ElementType() ElementType
	// Len returns the logical length in elements.
	Len() int64
	// SetSize extends the storage's logical length, keeping existing
	// content; it fails if n is below the current length.
	SetSize(n int64) error
	// GetArray acquires a scoped window [offset, offset+length).
	// Release MUST happen on every exit path; callers should defer
	// Close immediately after a successful call.
	GetArray(mode AccessMode, offset, length int64) (ArrayAccess, error)
	// Iterator returns a cursor over the whole storage. If reverse is
	// true it walks from the last element to the first.
	Iterator(reverse bool) (Iterator, error)
	// Release reclaims the storage; disk-backed storages delete their
	// file (spec.md §3 lifecycle).
	Release() error
}

// ArrayAccess is a scoped window into a Storage, bound to a
// [offset, offset+length) sub-range and an access mode. Closing it
// flushes buffered data back to the storage (spec.md §3 invariant).
type ArrayAccess interface {
	Mode() AccessMode
	Offset() int64
	Length() int64

	GetInt64(i int64) (int64, error)
	SetInt64(i int64, v int64) error
	GetInt32(i int64) (int32, error)
	SetInt32(i int64, v int32) error
	GetFloat64(i int64) (float64, error)
	SetFloat64(i int64, v float64) error

	Close() error
}

// Iterator walks a Storage one element at a time.
type Iterator interface {
	// Next advances to and returns the next element. ok is false once
	// the iterator is exhausted.
	Next() (v int64, ok bool)
	Close() error
}

func checkBounds(length, offset, n int64) error {
	if offset < 0 || n < 0 || offset+n > length {
		return &aferrors.OverflowError{Message: "array access window out of storage bounds"}
	}
	return nil
}

func checkMode(mode AccessMode, write bool) error {
	if write && !mode.canWrite() {
		return &aferrors.InternalError{Message: "write to a read-only array access"}
	}
	if !write && !mode.canRead() {
		return &aferrors.InternalError{Message: "read from a write-only array access"}
	}
	return nil
}

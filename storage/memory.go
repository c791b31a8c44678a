package storage

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// MemoryStorage is the memory backend: a contiguous byte array holding
// Len()*ElementType().Size() bytes. GetArray returns a window aliasing
// the underlying array directly, so closing it only releases the write
// lease and iterators
// walk the array in place (spec.md §4.2 "Memory backend").
type MemoryStorage struct {
	elemType ElementType
	data     []byte

	mu          sync.Mutex
	writeRanges []rng // currently-open WRITE windows, for the overlap invariant
}

type rng struct{ lo, hi int64 } // [lo, hi)

func (a rng) overlaps(b rng) bool { return a.lo < b.hi && b.lo < a.hi }

// NewMemoryStorage allocates a memory-backed storage of n elements.
func NewMemoryStorage(elemType ElementType, n int64) *MemoryStorage {
	return &MemoryStorage{
		elemType: elemType,
		data:     make([]byte, n*elemType.Size()),
	}
}

func (s *MemoryStorage) ElementType() ElementType { return s.elemType }

func (s *MemoryStorage) Len() int64 { return int64(len(s.data)) / s.elemType.Size() }

func (s *MemoryStorage) SetSize(n int64) error {
	sz := n * s.elemType.Size()
	if sz < int64(len(s.data)) {
		return &aferrors.InternalError{Message: "SetSize may only extend a storage"}
	}
	grown := make([]byte, sz)
	copy(grown, s.data)
	s.data = grown
	return nil
}

func (s *MemoryStorage) GetArray(mode AccessMode, offset, length int64) (ArrayAccess, error) {
	if err := checkBounds(s.Len(), offset, length); err != nil {
		return nil, err
	}

	window := rng{offset, offset + length}
	if mode.canWrite() {
		s.mu.Lock()
		for _, w := range s.writeRanges {
			if w.overlaps(window) {
				s.mu.Unlock()
				return nil, &aferrors.InternalError{Message: "overlapping WRITE array access windows"}
			}
		}
		s.writeRanges = append(s.writeRanges, window)
		s.mu.Unlock()
	}

	return &memoryArrayAccess{storage: s, mode: mode, offset: offset, length: length}, nil
}

func (s *MemoryStorage) Iterator(reverse bool) (Iterator, error) {
	if reverse {
		return &memoryIterator{storage: s, pos: s.Len() - 1, step: -1}, nil
	}
	return &memoryIterator{storage: s, pos: 0, step: 1}, nil
}

func (s *MemoryStorage) Release() error {
	s.data = nil
	return nil
}

func (s *MemoryStorage) closeWindow(w rng) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.writeRanges {
		if r == w {
			s.writeRanges = append(s.writeRanges[:i], s.writeRanges[i+1:]...)
			return
		}
	}
}

func (s *MemoryStorage) byteOffset(i int64) int64 { return i * s.elemType.Size() }

type memoryArrayAccess struct {
	storage      *MemoryStorage
	mode         AccessMode
	offset       int64
	length       int64
	closed       bool
}

func (a *memoryArrayAccess) Mode() AccessMode { return a.mode }
func (a *memoryArrayAccess) Offset() int64    { return a.offset }
func (a *memoryArrayAccess) Length() int64    { return a.length }

func (a *memoryArrayAccess) index(i int64) (int64, error) {
	if i < 0 || i >= a.length {
		return 0, &aferrors.OverflowError{Message: "array access index out of window"}
	}
	return a.storage.byteOffset(a.offset + i), nil
}

func (a *memoryArrayAccess) GetInt64(i int64) (int64, error) {
	if err := checkMode(a.mode, false); err != nil {
		return 0, err
	}
	off, err := a.index(i)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(a.storage.data[off : off+8])), nil
}

func (a *memoryArrayAccess) SetInt64(i int64, v int64) error {
	if err := checkMode(a.mode, true); err != nil {
		return err
	}
	off, err := a.index(i)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(a.storage.data[off:off+8], uint64(v))
	return nil
}

func (a *memoryArrayAccess) GetInt32(i int64) (int32, error) {
	if err := checkMode(a.mode, false); err != nil {
		return 0, err
	}
	off, err := a.index(i)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(a.storage.data[off : off+4])), nil
}

func (a *memoryArrayAccess) SetInt32(i int64, v int32) error {
	if err := checkMode(a.mode, true); err != nil {
		return err
	}
	off, err := a.index(i)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(a.storage.data[off:off+4], uint32(v))
	return nil
}

func (a *memoryArrayAccess) GetFloat64(i int64) (float64, error) {
	bits, err := a.GetInt64(i)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

func (a *memoryArrayAccess) SetFloat64(i int64, v float64) error {
	return a.SetInt64(i, int64(math.Float64bits(v)))
}

// Close is a no-op for the memory backend beyond releasing the write
// lease: the window aliases the storage directly, so there is nothing
// to flush (spec.md §4.2).
func (a *memoryArrayAccess) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.mode.canWrite() {
		a.storage.closeWindow(rng{a.offset, a.offset + a.length})
	}
	return nil
}

type memoryIterator struct {
	storage *MemoryStorage
	pos     int64
	step    int64
}

func (it *memoryIterator) Next() (int64, bool) {
	if it.pos < 0 || it.pos >= it.storage.Len() {
		return 0, false
	}
	off := it.storage.byteOffset(it.pos)
	var v int64
	switch it.storage.elemType {
	case Int32, Float32:
		v = int64(int32(binary.LittleEndian.Uint32(it.storage.data[off : off+4])))
	default:
		v = int64(binary.LittleEndian.Uint64(it.storage.data[off : off+8]))
	}
	it.pos += it.step
	return v, true
}

func (it *memoryIterator) Close() error { return nil }

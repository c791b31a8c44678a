package storage

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"sync"

	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// DiskStorage is the disk backend: a temporary file named by the
// Context's FilenameGenerator, opened read/write and deleted on
// Release. GetArray windows are paged in blockSize-sized buffers rather
// than holding the whole window in memory at once (spec.md §4.2 "Disk
// backend").
type DiskStorage struct {
	elemType  ElementType
	path      string
	file      *os.File
	length    int64 // elements
	blockSize int64 // bytes

	mu          sync.Mutex
	writeRanges []rng
}

// NewDiskStorage creates a disk-backed storage of n elements at path,
// using blockSize-byte I/O windows.
func NewDiskStorage(elemType ElementType, n int64, path string, blockSize int64) (*DiskStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304 -- caller-controlled temp path
	if err != nil {
		return nil, &aferrors.StorageError{Op: "open", Path: path, Wrapped: err}
	}
	if err := f.Truncate(n * elemType.Size()); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &aferrors.StorageError{Op: "truncate", Path: path, Wrapped: err}
	}
	if blockSize < elemType.Size() {
		blockSize = elemType.Size()
	}
	return &DiskStorage{elemType: elemType, path: path, file: f, length: n, blockSize: blockSize}, nil
}

func (s *DiskStorage) ElementType() ElementType { return s.elemType }
func (s *DiskStorage) Len() int64               { return s.length }

func (s *DiskStorage) SetSize(n int64) error {
	if n < s.length {
		return &aferrors.InternalError{Message: "SetSize may only extend a storage"}
	}
	if err := s.file.Truncate(n * s.elemType.Size()); err != nil {
		return &aferrors.StorageError{Op: "truncate", Path: s.path, Wrapped: err}
	}
	s.length = n
	return nil
}

func (s *DiskStorage) GetArray(mode AccessMode, offset, length int64) (ArrayAccess, error) {
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

	pageElems := s.blockSize / s.elemType.Size()
	if pageElems < 1 {
		pageElems = 1
	}

	return &diskArrayAccess{
		storage:      s,
		mode:         mode,
		offset:       offset,
		length:       length,
		pageElems:    pageElems,
		pageStartRel: -1,
	}, nil
}

func (s *DiskStorage) Iterator(reverse bool) (Iterator, error) {
	if reverse {
		return &diskIterator{storage: s, pos: s.length - 1, step: -1}, nil
	}
	return &diskIterator{storage: s, pos: 0, step: 1}, nil
}

// Release closes and deletes the backing file (spec.md §3 lifecycle).
func (s *DiskStorage) Release() error {
	path := s.path
	if err := s.file.Close(); err != nil {
		return &aferrors.StorageError{Op: "close", Path: path, Wrapped: err}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &aferrors.StorageError{Op: "remove", Path: path, Wrapped: err}
	}
	return nil
}

func (s *DiskStorage) closeWindow(w rng) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.writeRanges {
		if r == w {
			s.writeRanges = append(s.writeRanges[:i], s.writeRanges[i+1:]...)
			return
		}
	}
}

type diskArrayAccess struct {
	storage *DiskStorage
	mode    AccessMode
	offset  int64
	length  int64

	pageElems    int64
	pageStartRel int64 // window-relative offset of loaded page, -1 if none
	pageLen      int64
	buf          []byte
	dirty        bool
	closed       bool
}

func (a *diskArrayAccess) Mode() AccessMode { return a.mode }
func (a *diskArrayAccess) Offset() int64    { return a.offset }
func (a *diskArrayAccess) Length() int64    { return a.length }

func (a *diskArrayAccess) flush() error {
	if a.buf == nil || !a.dirty || !a.mode.canWrite() {
		return nil
	}
	unit := a.storage.elemType.Size()
	_, err := a.storage.file.WriteAt(a.buf, (a.offset+a.pageStartRel)*unit)
	if err != nil {
		return &aferrors.StorageError{Op: "write", Path: a.storage.path, Wrapped: err}
	}
	a.dirty = false
	return nil
}

func (a *diskArrayAccess) ensurePage(relIdx int64) error {
	pageStartRel := (relIdx / a.pageElems) * a.pageElems
	if a.buf != nil && pageStartRel == a.pageStartRel {
		return nil
	}
	if err := a.flush(); err != nil {
		return err
	}

	pageLen := a.pageElems
	if pageStartRel+pageLen > a.length {
		pageLen = a.length - pageStartRel
	}
	unit := a.storage.elemType.Size()
	buf := make([]byte, pageLen*unit)
	if a.mode.canRead() {
		if _, err := a.storage.file.ReadAt(buf, (a.offset+pageStartRel)*unit); err != nil && err != io.EOF {
			return &aferrors.StorageError{Op: "read", Path: a.storage.path, Wrapped: err}
		}
	}
	a.buf = buf
	a.pageStartRel = pageStartRel
	a.pageLen = pageLen
	a.dirty = false
	return nil
}

func (a *diskArrayAccess) GetInt64(i int64) (int64, error) {
	if err := checkMode(a.mode, false); err != nil {
		return 0, err
	}
	if i < 0 || i >= a.length {
		return 0, &aferrors.OverflowError{Message: "array access index out of window"}
	}
	if err := a.ensurePage(i); err != nil {
		return 0, err
	}
	local := (i - a.pageStartRel) * 8
	return int64(binary.LittleEndian.Uint64(a.buf[local : local+8])), nil
}

func (a *diskArrayAccess) SetInt64(i int64, v int64) error {
	if err := checkMode(a.mode, true); err != nil {
		return err
	}
	if i < 0 || i >= a.length {
		return &aferrors.OverflowError{Message: "array access index out of window"}
	}
	if err := a.ensurePage(i); err != nil {
		return err
	}
	local := (i - a.pageStartRel) * 8
	binary.LittleEndian.PutUint64(a.buf[local:local+8], uint64(v))
	a.dirty = true
	return nil
}

func (a *diskArrayAccess) GetInt32(i int64) (int32, error) {
	if err := checkMode(a.mode, false); err != nil {
		return 0, err
	}
	if i < 0 || i >= a.length {
		return 0, &aferrors.OverflowError{Message: "array access index out of window"}
	}
	if err := a.ensurePage(i); err != nil {
		return 0, err
	}
	local := (i - a.pageStartRel) * 4
	return int32(binary.LittleEndian.Uint32(a.buf[local : local+4])), nil
}

func (a *diskArrayAccess) SetInt32(i int64, v int32) error {
	if err := checkMode(a.mode, true); err != nil {
		return err
	}
	if i < 0 || i >= a.length {
		return &aferrors.OverflowError{Message: "array access index out of window"}
	}
	if err := a.ensurePage(i); err != nil {
		return err
	}
	local := (i - a.pageStartRel) * 4
	binary.LittleEndian.PutUint32(a.buf[local:local+4], uint32(v))
	a.dirty = true
	return nil
}

func (a *diskArrayAccess) GetFloat64(i int64) (float64, error) {
	bits, err := a.GetInt64(i)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

func (a *diskArrayAccess) SetFloat64(i int64, v float64) error {
	return a.SetInt64(i, int64(math.Float64bits(v)))
}

// Close flushes the current page (if dirty and writable) back to the
// file and releases the write lease (spec.md §4.2, §5 "Scoped
// acquisition").
func (a *diskArrayAccess) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	err := a.flush()
	if a.mode.canWrite() {
		a.storage.closeWindow(rng{a.offset, a.offset + a.length})
	}
	return err
}

type diskIterator struct {
	storage *DiskStorage
	pos     int64
	step    int64
}

func (it *diskIterator) Next() (int64, bool) {
	if it.pos < 0 || it.pos >= it.storage.length {
		return 0, false
	}
	unit := it.storage.elemType.Size()
	buf := make([]byte, unit)
	if _, err := it.storage.file.ReadAt(buf, it.pos*unit); err != nil {
		return 0, false
	}
	var v int64
	if unit == 4 {
		v = int64(int32(binary.LittleEndian.Uint32(buf)))
	} else {
		v = int64(binary.LittleEndian.Uint64(buf))
	}
	it.pos += it.step
	return v, true
}

func (it *diskIterator) Close() error { return nil }

package storage

import (
	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// Transposed is a view over a [startColumn, startColumn+C) block of a
// logical W-column by R-row row-major matrix that appears column-major
// to the caller — the mechanism the six-step NTT (spec.md §4.4) uses to
// run an "inner NTT" over what is logically a matrix column, as a
// contiguous row. Constraints: C and R are powers of two, and
// startColumn+C <= W (spec.md §4.2).
type Transposed interface {
	// Get/Set address (row, col) where row in [0,R) and col in [0,C)
	// is relative to the block's start column.
	Get(row, col int64) (int64, error)
	Set(row, col int64, v int64) error
	Close() error
}

// TransposedArray returns a transposed view, dispatching to the memory
// or disk implementation per the concrete Storage type. tile is the
// cache-blocking tile size (cacheBurst/unit per spec.md §4.2); pass 0
// to use a reasonable default.
func TransposedArray(s Storage, mode AccessMode, w, r, startColumn, c int64, tile int64) (Transposed, error) {
	if startColumn+c > w {
		return nil, &aferrors.OverflowError{Message: "transposed block exceeds matrix width"}
	}
	if !isPow2(c) || !isPow2(r) {
		return nil, &aferrors.InternalError{Message: "transposed array access requires power-of-two C and R"}
	}
	if tile <= 0 {
		tile = 64
	}

	switch backend := s.(type) {
	case *MemoryStorage:
		return &memoryTransposed{storage: backend, mode: mode, w: w, r: r, startColumn: startColumn, c: c}, nil
	case *DiskStorage:
		return newDiskTransposed(backend, mode, w, r, startColumn, c, tile)
	default:
		return nil, &aferrors.InternalError{Message: "unsupported storage backend for transposed access"}
	}
}

func isPow2(n int64) bool { return n > 0 && n&(n-1) == 0 }

// memoryTransposed maps (row,col) straight to the underlying linear
// index: random access to memory costs the same regardless of layout,
// so no physical transpose is needed, only index arithmetic (spec.md
// §4.2 "central to the six-step NTT").
type memoryTransposed struct {
	storage                *MemoryStorage
	mode                   AccessMode
	w, r, startColumn, c   int64
}

func (t *memoryTransposed) linear(row, col int64) (int64, error) {
	if row < 0 || row >= t.r || col < 0 || col >= t.c {
		return 0, &aferrors.OverflowError{Message: "transposed access index out of block"}
	}
	return row*t.w + t.startColumn + col, nil
}

func (t *memoryTransposed) Get(row, col int64) (int64, error) {
	if err := checkMode(t.mode, false); err != nil {
		return 0, err
	}
	idx, err := t.linear(row, col)
	if err != nil {
		return 0, err
	}
	win, err := t.storage.GetArray(Read, idx, 1)
	if err != nil {
		return 0, err
	}
	defer win.Close()
	return win.GetInt64(0)
}

func (t *memoryTransposed) Set(row, col int64, v int64) error {
	if err := checkMode(t.mode, true); err != nil {
		return err
	}
	idx, err := t.linear(row, col)
	if err != nil {
		return err
	}
	win, err := t.storage.GetArray(Write, idx, 1)
	if err != nil {
		return err
	}
	defer win.Close()
	return win.SetInt64(0, v)
}

func (t *memoryTransposed) Close() error { return nil }

// diskTransposed physically transposes the R x C sub-block into an
// in-memory, column-major scratch buffer on open, and transposes it
// back to the file's row-major layout on Close if it was written to
// (spec.md §4.2: "read -> transpose -> write on close"). The transpose
// itself is cache-blocked with the configured tile size.
type diskTransposed struct {
	storage                *DiskStorage
	mode                   AccessMode
	w, r, startColumn, c   int64
	tile                   int64
	scratch                []int64 // column-major: scratch[col*r+row]
	dirty                  bool
}

func newDiskTransposed(s *DiskStorage, mode AccessMode, w, r, startColumn, c, tile int64) (*diskTransposed, error) {
	t := &diskTransposed{storage: s, mode: mode, w: w, r: r, startColumn: startColumn, c: c, tile: tile}

	rowMajor := make([]int64, r*c)
	if mode.canRead() {
		win, err := s.GetArray(Read, 0, s.Len())
		if err != nil {
			return nil, err
		}
		defer win.Close()
		for row := int64(0); row < r; row++ {
			base := row*w + startColumn
			for col := int64(0); col < c; col++ {
				v, err := win.GetInt64(base + col)
				if err != nil {
					return nil, err
				}
				rowMajor[row*c+col] = v
			}
		}
	}

	t.scratch = transposeBlocked(rowMajor, r, c, tile)
	return t, nil
}

// transposeBlocked computes out[col*r+row] = in[row*c+col] for an r-row
// by c-column row-major matrix `in`, processing tile x tile sub-blocks
// to keep working set within cache (spec.md §4.2: tile equals
// cacheBurst/unit).
func transposeBlocked(in []int64, r, c, tile int64) []int64 {
	out := make([]int64, r*c)
	for rowStart := int64(0); rowStart < r; rowStart += tile {
		rowEnd := rowStart + tile
		if rowEnd > r {
			rowEnd = r
		}
		for colStart := int64(0); colStart < c; colStart += tile {
			colEnd := colStart + tile
			if colEnd > c {
				colEnd = c
			}
			for row := rowStart; row < rowEnd; row++ {
				for col := colStart; col < colEnd; col++ {
					out[col*r+row] = in[row*c+col]
				}
			}
		}
	}
	return out
}

func (t *diskTransposed) Get(row, col int64) (int64, error) {
	if err := checkMode(t.mode, false); err != nil {
		return 0, err
	}
	if row < 0 || row >= t.r || col < 0 || col >= t.c {
		return 0, &aferrors.OverflowError{Message: "transposed access index out of block"}
	}
	return t.scratch[col*t.r+row], nil
}

func (t *diskTransposed) Set(row, col int64, v int64) error {
	if err := checkMode(t.mode, true); err != nil {
		return err
	}
	if row < 0 || row >= t.r || col < 0 || col >= t.c {
		return &aferrors.OverflowError{Message: "transposed access index out of block"}
	}
	t.scratch[col*t.r+row] = v
	t.dirty = true
	return nil
}

// Close transposes the scratch buffer back to row-major order and
// writes it to the mirrored location in the backing file, if the
// access was opened for writing and was modified.
func (t *diskTransposed) Close() error {
	if !t.dirty || !t.mode.canWrite() {
		return nil
	}

	rowMajor := transposeBlocked(t.scratch, t.c, t.r, t.tile) // inverse: swap r/c roles

	win, err := t.storage.GetArray(Write, 0, t.storage.Len())
	if err != nil {
		return err
	}
	defer win.Close()

	for row := int64(0); row < t.r; row++ {
		base := row*t.w + t.startColumn
		for col := int64(0); col < t.c; col++ {
			if err := win.SetInt64(base+col, rowMajor[row*t.c+col]); err != nil {
				return err
			}
		}
	}
	return nil
}

package ntt

import (
	"math/bits"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/modmath"
	"github.com/lookbusy1344/go-apfloat/ntt/registry"
	"github.com/lookbusy1344/go-apfloat/storage"
)

// SixStepForward computes the in-place NTT of an N1*N2-element
// field-valued sequence held in s (N1, N2 powers of two), via the
// decomposition of spec.md §4.4: an inner length-N2 transform over each
// of the N1 columns (through storage's transposed-array mechanism, so
// a disk-backed column still reads and writes as a contiguous buffer),
// an elementwise twiddle multiply, an inner length-N1 transform over
// each of the N2 (already contiguous) rows, and a final transpose that
// reorders the result into linear order. tile bounds how many columns
// are transposed into memory at once; pass 0 for a default.
func SixStepForward(field modmath.Field, s storage.Storage, n1, n2 int64, tile int64) error {
	return sixStep(field, s, n1, n2, tile, false)
}

// SixStepInverse mirrors SixStepForward using the inverse root table,
// and scales the final result by N^-1 mod field.Modulus().
func SixStepInverse(field modmath.Field, s storage.Storage, n1, n2 int64, tile int64) error {
	if err := sixStep(field, s, n1, n2, tile, true); err != nil {
		return err
	}
	ninv := registry.InverseMod(field, uint64(n1*n2))
	return scaleAll(field, s, ninv)
}

func sixStep(field modmath.Field, s storage.Storage, n1, n2, tile int64, inverse bool) error {
	if !isPow2(n1) || !isPow2(n2) {
		return &aferrors.InternalError{Message: "six-step NTT requires power-of-two N1 and N2"}
	}
	n := n1 * n2
	maxLogN := log2(n)

	if _, err := registry.Get(field, maxLogN); err != nil {
		return err
	}

	if tile <= 0 {
		tile = 64
	}
	if tile > n1 {
		tile = n1
	}
	tile = largestPow2LE(tile)

	// Step 1+2 (spec.md §4.4): inner length-N2 NTT over each of the N1
	// columns, read/written through the transposed-array view so a
	// disk-backed column is contiguous.
	for col := int64(0); col < n1; col += tile {
		width := tile
		if col+width > n1 {
			width = n1 - col
		}
		view, err := storage.TransposedArray(s, storage.ReadWrite, n1, n2, col, width, tile)
		if err != nil {
			return err
		}
		if err := columnTransform(field, view, width, n2, maxLogN, inverse); err != nil {
			view.Close()
			return err
		}
		if err := view.Close(); err != nil {
			return err
		}
	}

	// Step 3: elementwise twiddle multiply by omega_N^{k1*n2}, still in
	// the (row=n2, col=k1) physical layout the column transform left
	// behind.
	if err := applyCrossTwiddles(field, s, n1, n2, maxLogN, inverse); err != nil {
		return err
	}

	// Step 4+5: inner length-N1 NTT over each of the N2 rows, which are
	// already physically contiguous.
	if err := rowTransform(field, s, n1, n2, maxLogN, inverse); err != nil {
		return err
	}

	// Step 6: final transpose reorders physical (row=n2,col=n1) storage
	// into linear index n2 + N2*n1 (spec.md §4.4 "final transpose").
	return permuteTranspose(s, n1, n2)
}

func columnTransform(field modmath.Field, view storage.Transposed, width, n2 int64, maxLogN int, inverse bool) error {
	table, err := registry.Get(field, maxLogN)
	if err != nil {
		return err
	}
	powers := table.Powers
	if inverse {
		powers = table.PowersInv
	}
	fullN := uint64(1) << uint(maxLogN)
	stride := fullN / uint64(n2)

	buf := make([]uint64, n2)
	for col := int64(0); col < width; col++ {
		for row := int64(0); row < n2; row++ {
			v, err := view.Get(row, col)
			if err != nil {
				return err
			}
			buf[row] = uint64(v)
		}

		bitReverseColumn(buf)
		for size := int64(2); size <= n2; size <<= 1 {
			half := size / 2
			s := stride * uint64(n2/size)
			for start := int64(0); start < n2; start += size {
				for j := int64(0); j < half; j++ {
					w := powers[uint64(j)*s]
					u := buf[start+j]
					v := field.Mul(buf[start+j+half], w)
					buf[start+j] = field.Add(u, v)
					buf[start+j+half] = field.Sub(u, v)
				}
			}
		}

		for row := int64(0); row < n2; row++ {
			if err := view.Set(row, col, int64(buf[row])); err != nil {
				return err
			}
		}
	}
	return nil
}

func bitReverseColumn(data []uint64) {
	n := len(data)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			data[i], data[j] = data[j], data[i]
		}
	}
}

// applyCrossTwiddles multiplies the element at physical position
// n2*N1+k1 by omega_N^{k1*n2}, using the half-size table plus the sign
// trick (omega_N^{N/2} == -1 for a primitive N-th root).
func applyCrossTwiddles(field modmath.Field, s storage.Storage, n1, n2 int64, maxLogN int, inverse bool) error {
	table, err := registry.Get(field, maxLogN)
	if err != nil {
		return err
	}
	powers := table.Powers
	if inverse {
		powers = table.PowersInv
	}
	half := uint64(len(powers))

	win, err := s.GetArray(storage.ReadWrite, 0, n1*n2)
	if err != nil {
		return err
	}
	defer win.Close()

	for n2i := int64(0); n2i < n2; n2i++ {
		for k1 := int64(0); k1 < n1; k1++ {
			x := (uint64(k1) * uint64(n2i)) % (2 * half)
			tw := powers[x%half]
			if x/half%2 == 1 {
				tw = field.Sub(0, tw)
			}
			pos := n2i*n1 + k1
			v, err := win.GetInt64(pos)
			if err != nil {
				return err
			}
			if err := win.SetInt64(pos, int64(field.Mul(uint64(v), tw))); err != nil {
				return err
			}
		}
	}
	return nil
}

func rowTransform(field modmath.Field, s storage.Storage, n1, n2 int64, maxLogN int, inverse bool) error {
	table, err := registry.Get(field, maxLogN)
	if err != nil {
		return err
	}
	powers := table.Powers
	if inverse {
		powers = table.PowersInv
	}
	fullN := uint64(1) << uint(maxLogN)
	stride := fullN / uint64(n1)

	for row := int64(0); row < n2; row++ {
		win, err := s.GetArray(storage.ReadWrite, row*n1, n1)
		if err != nil {
			return err
		}

		buf := make([]uint64, n1)
		for i := int64(0); i < n1; i++ {
			v, err := win.GetInt64(i)
			if err != nil {
				win.Close()
				return err
			}
			buf[i] = uint64(v)
		}

		bitReverseColumn(buf)
		for size := int64(2); size <= n1; size <<= 1 {
			half := size / 2
			strd := stride * uint64(n1/size)
			for start := int64(0); start < n1; start += size {
				for j := int64(0); j < half; j++ {
					w := powers[uint64(j)*strd]
					u := buf[start+j]
					v := field.Mul(buf[start+j+half], w)
					buf[start+j] = field.Add(u, v)
					buf[start+j+half] = field.Sub(u, v)
				}
			}
		}

		for i := int64(0); i < n1; i++ {
			if err := win.SetInt64(i, int64(buf[i])); err != nil {
				win.Close()
				return err
			}
		}
		if err := win.Close(); err != nil {
			return err
		}
	}
	return nil
}

// permuteTranspose physically reorders the N2-row by N1-column
// row-major storage into linear order n = n2 + N2*n1 (equivalently,
// column-major readout of the same matrix).
func permuteTranspose(s storage.Storage, n1, n2 int64) error {
	n := n1 * n2
	tmp := make([]int64, n)

	read, err := s.GetArray(storage.Read, 0, n)
	if err != nil {
		return err
	}
	for row := int64(0); row < n2; row++ {
		for col := int64(0); col < n1; col++ {
			v, err := read.GetInt64(row*n1 + col)
			if err != nil {
				read.Close()
				return err
			}
			tmp[col*n2+row] = v
		}
	}
	if err := read.Close(); err != nil {
		return err
	}

	write, err := s.GetArray(storage.Write, 0, n)
	if err != nil {
		return err
	}
	defer write.Close()
	for i, v := range tmp {
		if err := write.SetInt64(int64(i), v); err != nil {
			return err
		}
	}
	return nil
}

func scaleAll(field modmath.Field, s storage.Storage, factor uint64) error {
	win, err := s.GetArray(storage.ReadWrite, 0, s.Len())
	if err != nil {
		return err
	}
	defer win.Close()
	for i := int64(0); i < s.Len(); i++ {
		v, err := win.GetInt64(i)
		if err != nil {
			return err
		}
		if err := win.SetInt64(i, int64(field.Mul(uint64(v), factor))); err != nil {
			return err
		}
	}
	return nil
}

func isPow2(n int64) bool { return n > 0 && n&(n-1) == 0 }

func log2(n int64) int { return bits.Len64(uint64(n)) - 1 }

func largestPow2LE(n int64) int64 {
	if n <= 1 {
		return 1
	}
	return int64(1) << uint(log2(n))
}

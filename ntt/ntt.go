// Package ntt implements the forward/inverse Number Theoretic
// Transform of spec.md §4.4: a small-n iterative path for transforms
// that fit in one memory window, a six-step decomposition for longer
// transforms that routes through storage's transposed-array mechanism,
// and a factor-3 layer for lengths of the form 3*2^n.
package ntt

import (
	"math/bits"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/modmath"
	"github.com/lookbusy1344/go-apfloat/ntt/registry"
)

// Forward computes the in-place NTT of data (length N=2^n) under field,
// using a twiddle table built for transforms up to 2^maxLogN (maxLogN
// must be >= n; a larger maxLogN lets the same cached table serve
// several transform lengths).
func Forward(field modmath.Field, data []uint64, maxLogN int) error {
	return transform(field, data, maxLogN, false)
}

// Inverse computes the in-place inverse NTT of data and scales the
// result by N^-1 mod field.Modulus() (spec.md §4.4 "final scaling by
// N^-1 mod p").
func Inverse(field modmath.Field, data []uint64, maxLogN int) error {
	if err := transform(field, data, maxLogN, true); err != nil {
		return err
	}
	ninv := registry.InverseMod(field, uint64(len(data)))
	for i, v := range data {
		data[i] = field.Mul(v, ninv)
	}
	return nil
}

func transform(field modmath.Field, data []uint64, maxLogN int, inverse bool) error {
	n := len(data)
	logN := bits.Len(uint(n)) - 1
	if n == 0 || 1<<uint(logN) != n {
		return &aferrors.InternalError{Message: "NTT transform length must be a power of two"}
	}
	if logN > maxLogN {
		return &aferrors.InternalError{Message: "NTT transform length exceeds the cached table's maximum"}
	}

	table, err := registry.Get(field, maxLogN)
	if err != nil {
		return err
	}
	powers := table.Powers
	if inverse {
		powers = table.PowersInv
	}
	fullN := uint64(1) << uint(maxLogN)

	bitReverse(data)
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		stride := fullN / uint64(size)
		for start := 0; start < n; start += size {
			for j := 0; j < half; j++ {
				w := powers[uint64(j)*stride]
				u := data[start+j]
				v := field.Mul(data[start+j+half], w)
				data[start+j] = field.Add(u, v)
				data[start+j+half] = field.Sub(u, v)
			}
		}
	}
	return nil
}

func bitReverse(data []uint64) {
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

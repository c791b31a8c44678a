// Package convolution implements mantissa multiplication (spec.md §4.5):
// a staged pipeline dispatching to one of three tiers by operand size,
// modeled on vm/executor.go's staged instruction-dispatch shape. Small
// operands bypass the transform entirely and go through math/big;
// medium operands use github.com/remyoudompheng/bigfft; large,
// possibly disk-resident operands go through this module's own
// multi-prime NTT/CRT engine built on package ntt and package storage.
//
// Mantissa digits are little-endian: digits[0] is the least-significant
// digit in the given radix.
package convolution

import (
	"math/big"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/remyoudompheng/bigfft"
)

// SchoolbookThreshold is the largest operand length, in digits, that
// still goes through math/big's schoolbook multiply (spec.md §4.5:
// "both L <= a threshold -- typically 16 to 64 elements").
const SchoolbookThreshold = 64

// BigfftThreshold is the largest combined operand length that still
// goes through the bigfft mid-tier before falling back to this
// package's own NTT/CRT engine.
const BigfftThreshold = 1 << 20

// Multiply computes the product of two mantissas a, b (both digit
// arrays in the given radix, little-endian) and returns a product
// mantissa of length len(a)+len(b), per spec.md §4.5. Neither input is
// mutated.
func Multiply(ctx *apcontext.Context, a, b []uint64, radix uint64) ([]uint64, error) {
	if len(a) == 0 || len(b) == 0 {
		return make([]uint64, len(a)+len(b)), nil
	}

	if len(a) <= SchoolbookThreshold && len(b) <= SchoolbookThreshold {
		return schoolbookMultiply(a, b, radix), nil
	}
	if len(a)+len(b) <= BigfftThreshold {
		return bigfftMultiply(a, b, radix), nil
	}
	return nttMultiply(ctx, a, b, radix)
}

func schoolbookMultiply(a, b []uint64, radix uint64) []uint64 {
	x := mantissaToBigInt(a, radix)
	y := mantissaToBigInt(b, radix)
	p := new(big.Int).Mul(x, y)
	return bigIntToMantissa(p, radix, len(a)+len(b))
}

func bigfftMultiply(a, b []uint64, radix uint64) []uint64 {
	x := mantissaToBigInt(a, radix)
	y := mantissaToBigInt(b, radix)
	p := bigfft.Mul(x, y)
	return bigIntToMantissa(p, radix, len(a)+len(b))
}

func mantissaToBigInt(digits []uint64, radix uint64) *big.Int {
	result := new(big.Int)
	r := new(big.Int).SetUint64(radix)
	digit := new(big.Int)
	for i := len(digits) - 1; i >= 0; i-- {
		result.Mul(result, r)
		digit.SetUint64(digits[i])
		result.Add(result, digit)
	}
	return result
}

func bigIntToMantissa(v *big.Int, radix uint64, length int) []uint64 {
	out := make([]uint64, length)
	r := new(big.Int).SetUint64(radix)
	tmp := new(big.Int).Set(v)
	mod := new(big.Int)
	for i := 0; i < length; i++ {
		tmp.DivMod(tmp, r, mod)
		out[i] = mod.Uint64()
	}
	if tmp.Sign() != 0 {
		// The caller chose length == len(a)+len(b), which schoolbook
		// convolution never exceeds; a nonzero remainder here means a
		// caller asked for fewer digits than the product actually has.
		panic(&aferrors.InternalError{Message: "mantissa truncated a nonzero high digit"})
	}
	return out
}

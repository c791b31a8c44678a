// Package apnum implements the precision-aware number types of
// spec.md §4.6: Apfloat (signed real), Apcomplex, Apint, Aprational.
// Every operation is pure (vm/cpu.go's "compute new state from old,
// never mutate in place" pattern): inputs are never modified, results
// carry a freshly computed (sign, scale, precision, mantissa) tuple.
package apnum

import (
	"math/big"

	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// Infinite marks a precision as unbounded (spec.md §3: "precision p ...
// ∪ {INFINITE}"), used by Apint and by the canonical zero.
const Infinite = int64(-1)

// Apfloat is a signed real number: sign · 0.d1d2...dp (radix b) · b^scale,
// with d1 nonzero unless sign == 0. Digits are stored most-significant
// first, per spec.md's glossary. Immutable after construction.
type Apfloat struct {
	radix     int
	sign      int   // -1, 0, +1
	scale     int64 // value = sign * mantissaReal * radix^scale
	precision int64 // Infinite for exact values and the canonical zero
	digits    []uint64
}

// Radix returns the number's radix, b in [2,36].
func (a *Apfloat) Radix() int { return a.radix }

// Sign returns -1, 0, or +1.
func (a *Apfloat) Sign() int { return a.sign }

// Scale returns the power of radix the mantissa is scaled by.
func (a *Apfloat) Scale() int64 { return a.scale }

// Precision returns the number of significant digits, or Infinite for
// an exact value (including the canonical zero).
func (a *Apfloat) Precision() int64 { return a.precision }

// IsZero reports whether a is the canonical zero.
func (a *Apfloat) IsZero() bool { return a.sign == 0 }

// Zero returns the canonical zero at the given radix (spec.md §3:
// "when sign=0 the value is the canonical zero, precision is
// INFINITE, scale undefined").
func Zero(radix int) *Apfloat {
	return &Apfloat{radix: radix, sign: 0, scale: 0, precision: Infinite}
}

// newNormalized builds an Apfloat from MSD-first digits (which may have
// leading zeros or run past precision), stripping leading zeros into
// scale and truncating/padding to exactly precision digits.
func newNormalized(radix, sign int, scale, precision int64, digits []uint64) *Apfloat {
	start := 0
	for start < len(digits) && digits[start] == 0 {
		start++
		scale--
	}
	digits = digits[start:]

	if len(digits) == 0 || sign == 0 {
		return Zero(radix)
	}

	if precision == Infinite {
		return &Apfloat{radix: radix, sign: sign, scale: scale, precision: Infinite, digits: append([]uint64(nil), digits...)}
	}

	out := make([]uint64, precision)
	n := int64(len(digits))
	if n >= precision {
		copy(out, digits[:precision])
	} else {
		copy(out, digits)
	}
	// Round half-up on the truncated tail rather than silently
	// dropping a would-round digit.
	if n > precision && digits[precision]*2 >= uint64(radix) && roundUp(out, uint64(radix)) {
		// Carry escaped the top digit (e.g. 0.999...9 -> 1.000...0):
		// shift right and restore d1 = 1, bumping scale to compensate.
		copy(out[1:], out[:len(out)-1])
		out[0] = 1
		scale++
	}
	return &Apfloat{radix: radix, sign: sign, scale: scale, precision: precision, digits: out}
}

// roundUp adds 1 to the least-significant digit of out, propagating
// carry toward the front. Returns true if the carry escaped the top
// digit.
func roundUp(out []uint64, radix uint64) bool {
	for i := len(out) - 1; i >= 0; i-- {
		out[i]++
		if out[i] < radix {
			return false
		}
		out[i] = 0
	}
	return true
}

// digitsToBigInt interprets digits (MSD-first) as a base-radix integer.
func digitsToBigInt(digits []uint64, radix int) *big.Int {
	result := new(big.Int)
	r := big.NewInt(int64(radix))
	d := new(big.Int)
	for _, v := range digits {
		result.Mul(result, r)
		d.SetUint64(v)
		result.Add(result, d)
	}
	return result
}

// bigIntToDigits renders v (non-negative) as exactly length digits,
// MSD-first, zero-padded on the left.
func bigIntToDigits(v *big.Int, radix int, length int64) []uint64 {
	out := make([]uint64, length)
	r := big.NewInt(int64(radix))
	tmp := new(big.Int).Set(v)
	mod := new(big.Int)
	for i := length - 1; i >= 0; i-- {
		tmp.DivMod(tmp, r, mod)
		out[i] = mod.Uint64()
	}
	return out
}

func digitValue(ch rune) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10, true
	default:
		return 0, false
	}
}

func checkRadix(radix int) error {
	if radix < 2 || radix > 36 {
		return &aferrors.ConfigError{Key: "radix", Value: itoa(radix), Wrapped: &aferrors.InternalError{Message: "radix must be in [2,36]"}}
	}
	return nil
}

func itoa(n int) string {
	return big.NewInt(int64(n)).String()
}

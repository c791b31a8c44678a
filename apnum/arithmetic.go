package apnum

import (
	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/lookbusy1344/go-apfloat/convolution"
)

// GuardDigits is the number of extra digits multiply keeps internally
// before truncating back to the requested precision (spec.md §4.6:
// "internal mantissa work is done at p+epsilon extra guard digits").
const GuardDigits = 2

func checkSameRadixF(a, b *Apfloat) error {
	if a.radix != b.radix {
		return &aferrors.ArithmeticError{Message: "operands have different radixes"}
	}
	return nil
}

// Neg returns -a.
func (a *Apfloat) Neg() *Apfloat {
	if a.sign == 0 {
		return a
	}
	return &Apfloat{radix: a.radix, sign: -a.sign, scale: a.scale, precision: a.precision, digits: a.digits}
}

// Cmp compares a and b by value (spec.md §8: "use their full stored
// precision irrespective of declared precision").
func (a *Apfloat) Cmp(b *Apfloat) int {
	if a.sign != b.sign {
		if a.sign < b.sign {
			return -1
		}
		return 1
	}
	if a.sign == 0 {
		return 0
	}
	if a.scale != b.scale {
		if (a.scale < b.scale) == (a.sign > 0) {
			return -1
		}
		return 1
	}
	c := cmpDigitsPadded(a.digits, b.digits)
	if a.sign < 0 {
		c = -c
	}
	return c
}

func cmpDigitsPadded(a, b []uint64) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var da, db uint64
		if i < len(a) {
			da = a[i]
		}
		if i < len(b) {
			db = b[i]
		}
		if da != db {
			if da < db {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Add returns a+b, aligning by scale (spec.md §4.6): the result's
// precision is the min of the operand precisions, each reduced by how
// far its digits reach past the other's window.
func (a *Apfloat) Add(b *Apfloat) (*Apfloat, error) {
	if err := checkSameRadixF(a, b); err != nil {
		return nil, err
	}
	if a.sign == 0 {
		return b, nil
	}
	if b.sign == 0 {
		return a, nil
	}

	resultScale := a.scale
	if b.scale > resultScale {
		resultScale = b.scale
	}
	shiftA := resultScale - a.scale
	shiftB := resultScale - b.scale

	// An operand entirely below the other's precision window
	// contributes zero (spec.md §4.6); returning early here also
	// avoids materializing an alignment buffer sized by the gap
	// between two wildly different scales.
	if isBelowWindow(a.precision, shiftA) {
		return b.withPrecision(effectivePrecision(b.precision, shiftB)), nil
	}
	if isBelowWindow(b.precision, shiftB) {
		return a.withPrecision(effectivePrecision(a.precision, shiftA)), nil
	}

	// Render both operands onto a common digit axis starting at
	// resultScale, wide enough to hold whichever reaches further right.
	endA := shiftA + precisionLen(a)
	endB := shiftB + precisionLen(b)
	width := endA
	if endB > width {
		width = endB
	}

	bufA := alignedDigits(a.digits, shiftA, width, a.sign)
	bufB := alignedDigits(b.digits, shiftB, width, b.sign)

	var sum []int64
	if a.sign == b.sign {
		sum = addAligned(bufA, bufB, int64(a.radix))
	} else {
		sum = subAligned(bufA, bufB, int64(a.radix))
	}

	sign := a.sign
	if a.sign != b.sign {
		// subAligned always computes bufA-bufB; if that went negative
		// the true sign is b's and the magnitude needs negating.
		if isNegative(sum) {
			sum = negateAligned(sum, int64(a.radix))
			sign = b.sign
		}
	}

	scale := resultScale
	if len(sum) > int(width) {
		scale++ // carried out past the leading digit
	}
	digits := make([]uint64, len(sum))
	for i, v := range sum {
		digits[i] = uint64(v)
	}

	precision := minPrecision(a.precision, shiftA, b.precision, shiftB)
	return newNormalized(a.radix, sign, scale, precision, digits), nil
}

// Sub returns a-b.
func (a *Apfloat) Sub(b *Apfloat) (*Apfloat, error) { return a.Add(b.Neg()) }

func precisionLen(a *Apfloat) int64 {
	if a.precision == Infinite {
		return int64(len(a.digits))
	}
	return a.precision
}

// minPrecision implements spec.md §4.6's align-by-scale precision
// rule: each operand's contribution is its precision less the
// overhang introduced by shifting it onto the common axis; if an
// operand is shifted entirely past the other's window it contributes
// zero, and the overall result precision is the min of the two.
func minPrecision(pa, shiftA, pb, shiftB int64) int64 {
	ea := effectivePrecision(pa, shiftA)
	eb := effectivePrecision(pb, shiftB)
	return finiteMin(ea, eb)
}

// finiteMin returns the smaller of a and b, treating Infinite as
// unbounded rather than as the sentinel value -1: an Infinite operand
// never caps the result, it simply drops out of the comparison.
func finiteMin(a, b int64) int64 {
	if a == Infinite {
		return b
	}
	if b == Infinite {
		return a
	}
	if a < b {
		return a
	}
	return b
}

func effectivePrecision(p, shift int64) int64 {
	if p == Infinite {
		return Infinite
	}
	if shift >= p {
		return 0
	}
	return p - shift
}

// isBelowWindow reports whether an operand with finite precision p,
// shifted by shift digit positions, falls entirely outside the other
// operand's significant-digit window.
func isBelowWindow(p, shift int64) bool {
	return p != Infinite && shift >= p
}

// alignedDigits places digits (MSD-first, starting at the operand's
// own scale) onto an axis that starts `shift` positions after
// resultScale, zero-padded to exactly width entries.
func alignedDigits(digits []uint64, shift, width int64, sign int) []int64 {
	out := make([]int64, width)
	for i := int64(0); i < int64(len(digits)) && shift+i < width; i++ {
		out[shift+i] = int64(digits[i])
	}
	return out
}

func addAligned(a, b []int64, radix int64) []int64 {
	n := len(a)
	out := make([]int64, n+1)
	carry := int64(0)
	for i := n - 1; i >= 0; i-- {
		sum := a[i] + b[i] + carry
		out[i+1] = sum % radix
		carry = sum / radix
	}
	out[0] = carry
	if out[0] == 0 {
		return out[1:]
	}
	return out
}

func subAligned(a, b []int64, radix int64) []int64 {
	n := len(a)
	out := make([]int64, n)
	borrow := int64(0)
	for i := n - 1; i >= 0; i-- {
		d := a[i] - b[i] - borrow
		if d < 0 {
			d += radix
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = d
	}
	if borrow != 0 {
		// Result is negative; caller detects via isNegative and
		// re-derives the true (positive) magnitude via negateAligned.
		out = append(out, -1) // sentinel consumed only by isNegative
	}
	return out
}

// isNegative reports whether subAligned appended its borrow sentinel;
// no legitimate digit value is negative, so the check is unambiguous.
func isNegative(digits []int64) bool {
	return len(digits) > 0 && digits[len(digits)-1] == -1
}

func negateAligned(digits []int64, radix int64) []int64 {
	digits = digits[:len(digits)-1] // drop the borrow sentinel
	borrow := int64(0)
	out := make([]int64, len(digits))
	for i := len(digits) - 1; i >= 0; i-- {
		d := -digits[i] - borrow
		if d < 0 {
			d += radix
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = d
	}
	return out
}

// Mul returns a*b truncated to precision = min(a.Precision, b.Precision)
// (Infinite if both are), computing internally at GuardDigits of extra
// precision and routing the actual digit convolution through package
// convolution (spec.md §4.6, §4.5).
func (a *Apfloat) Mul(ctx *apcontext.Context, b *Apfloat) (*Apfloat, error) {
	if err := checkSameRadixF(a, b); err != nil {
		return nil, err
	}
	if a.sign == 0 || b.sign == 0 {
		return Zero(a.radix), nil
	}

	product, err := convolution.Multiply(ctx, reverseDigits(a.digits), reverseDigits(b.digits), uint64(a.radix))
	if err != nil {
		return nil, err
	}
	product = reverseDigits(product)

	// mantissaReal(a),mantissaReal(b) in [1/b,1) so their product is in
	// [1/b^2,1); scale(a*b) is scale(a)+scale(b) or one less, decided by
	// newNormalized's leading-zero strip (spec.md §8 testable property).
	scale := a.scale + b.scale
	sign := a.sign * b.sign

	precision := finiteMin(a.precision, b.precision)
	if precision != Infinite {
		precision += GuardDigits
	}
	result := newNormalized(a.radix, sign, scale, precision, product)
	if precision == Infinite {
		return result, nil
	}
	return result.withPrecision(precision - GuardDigits), nil
}

func orInf(p, fallback int64) int64 {
	if p == Infinite {
		return fallback
	}
	return p
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// withPrecision re-truncates a to a shorter precision (used after
// multiply's guard-digit computation).
func (a *Apfloat) withPrecision(precision int64) *Apfloat {
	if a.sign == 0 || precision == Infinite || precision >= int64(len(a.digits)) {
		return a
	}
	return newNormalized(a.radix, a.sign, a.scale, precision, a.digits)
}


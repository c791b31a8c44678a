package apnum

import (
	"math"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
)

// seedDigits is how many digits a float64 Newton seed carries; double
// precision has about 15-17 significant decimal digits, so this
// comfortably bounds every radix in [2,36].
const seedDigits = 17

// two and three are reused by every Newton iteration below.
func two(radix int) *Apfloat   { return constFromInt64(2, radix) }
func three(radix int) *Apfloat { return constFromInt64(3, radix) }

func constFromInt64(v int64, radix int) *Apfloat {
	return NewApintFromInt64(v, radix).ToApfloat(Infinite)
}

// mantissaFloat64 returns the leading seedDigits of a's mantissa as a
// float64 in [1/radix, 1), the native-double seed source spec.md §4.6
// calls for.
func mantissaFloat64(a *Apfloat) float64 {
	n := len(a.digits)
	if n > seedDigits {
		n = seedDigits
	}
	v := 0.0
	scale := 1.0 / float64(a.radix)
	for i := 0; i < n; i++ {
		v += float64(a.digits[i]) * scale
		scale /= float64(a.radix)
	}
	return v
}

// fromFloat64Mantissa builds an Apfloat from a native double m in
// [1/radix, radix) (Newton seeds land just outside [1/radix,1) after
// a reciprocal or sqrt), an extra scale to fold in, and sign.
func fromFloat64Mantissa(sign int, m float64, extraScale int64, radix int, precision int64) *Apfloat {
	scale := extraScale
	for m >= 1 {
		m /= float64(radix)
		scale++
	}
	for m < 1.0/float64(radix) {
		m *= float64(radix)
		scale--
	}
	digits := make([]uint64, seedDigits)
	for i := range digits {
		m *= float64(radix)
		d := math.Floor(m)
		digits[i] = uint64(d)
		m -= d
	}
	return newNormalized(radix, sign, scale, precision, digits)
}

// Div computes a/b via Newton iteration on the reciprocal of b, seeded
// from a native double and doubling precision each step (spec.md
// §4.6). Final precision is min(a.Precision, b.Precision); when both
// are Infinite it is the smaller of the two stored digit counts.
func Div(ctx *apcontext.Context, a, b *Apfloat) (*Apfloat, error) {
	if err := checkSameRadixF(a, b); err != nil {
		return nil, err
	}
	if b.sign == 0 {
		return nil, &aferrors.ArithmeticError{Message: "division by zero"}
	}
	if a.sign == 0 {
		return Zero(a.radix), nil
	}

	target := finiteMin(a.precision, b.precision)
	if target == Infinite {
		target = orInf(a.precision, int64(len(a.digits)))
		if t := orInf(b.precision, int64(len(b.digits))); t < target {
			target = t
		}
	}

	recip, err := reciprocal(ctx, b, target)
	if err != nil {
		return nil, err
	}
	result, err := a.Mul(ctx, recip)
	if err != nil {
		return nil, err
	}
	return result.withPrecision(target), nil
}

// reciprocal computes 1/y to at least target significant digits via
// Newton's method (r_{n+1} = r_n*(2 - y*r_n)), doubling working
// precision each step from a float64 seed.
func reciprocal(ctx *apcontext.Context, y *Apfloat, target int64) (*Apfloat, error) {
	m := mantissaFloat64(y)
	seed := fromFloat64Mantissa(y.sign, 1.0/m, -y.scale, y.radix, seedDigits+GuardDigits)

	r := seed
	prec := int64(seedDigits)
	twoConst := two(y.radix)
	for prec < target {
		prec *= 2
		if prec > target {
			prec = target
		}
		yp := y.withPrecision(min64(prec+GuardDigits, int64(len(y.digits))))
		yr, err := yp.Mul(ctx, r)
		if err != nil {
			return nil, err
		}
		corr, err := twoConst.withPrecision(prec + GuardDigits).Sub(yr)
		if err != nil {
			return nil, err
		}
		r, err = r.Mul(ctx, corr)
		if err != nil {
			return nil, err
		}
		r = r.withPrecision(prec + GuardDigits)
	}
	return r.withPrecision(target), nil
}

// InverseSqrt computes 1/sqrt(a) via Newton's method
// (y_{n+1} = y_n*(3 - a*y_n^2)/2), the form the Chudnovsky series uses
// for its constant 1/sqrt(640320) (spec.md §4.7).
func InverseSqrt(ctx *apcontext.Context, a *Apfloat, precision int64) (*Apfloat, error) {
	if a.sign <= 0 {
		return nil, &aferrors.ArithmeticError{Message: "inverse square root of a non-positive number"}
	}

	m := mantissaFloat64(a)
	seedVal := 1.0 / math.Sqrt(m)
	extraScale := a.scale
	if extraScale%2 != 0 {
		// math.Sqrt needs an even power of radix folded into m so the
		// float64 seed's exponent tracks sqrt(radix^scale) exactly.
		seedVal /= math.Sqrt(float64(a.radix))
		extraScale--
	}
	seed := fromFloat64Mantissa(1, seedVal, -extraScale/2, a.radix, seedDigits+GuardDigits)

	y := seed
	threeConst := three(a.radix)
	twoInt := NewApintFromInt64(2, a.radix)
	prec := int64(seedDigits)
	for prec < precision {
		prec *= 2
		if prec > precision {
			prec = precision
		}
		ap := a.withPrecision(min64(prec+GuardDigits, int64(len(a.digits))))
		y2, err := y.Mul(ctx, y)
		if err != nil {
			return nil, err
		}
		ay2, err := ap.Mul(ctx, y2)
		if err != nil {
			return nil, err
		}
		corr, err := threeConst.withPrecision(prec + GuardDigits).Sub(ay2)
		if err != nil {
			return nil, err
		}
		yc, err := y.Mul(ctx, corr)
		if err != nil {
			return nil, err
		}
		y, err = divByInt(ctx, yc, twoInt)
		if err != nil {
			return nil, err
		}
		y = y.withPrecision(prec + GuardDigits)
	}
	return y.withPrecision(precision), nil
}

// Sqrt computes sqrt(a) as a*(1/sqrt(a)), avoiding a second division
// per iteration (spec.md §4.6: "Square root / inverse square root:
// Newton doubling").
func Sqrt(ctx *apcontext.Context, a *Apfloat, precision int64) (*Apfloat, error) {
	if a.sign == 0 {
		return Zero(a.radix), nil
	}
	if a.sign < 0 {
		return nil, &aferrors.ArithmeticError{Message: "square root of a negative number"}
	}
	inv, err := InverseSqrt(ctx, a, precision+GuardDigits)
	if err != nil {
		return nil, err
	}
	result, err := a.Mul(ctx, inv)
	if err != nil {
		return nil, err
	}
	return result.withPrecision(precision), nil
}

// divByInt divides a by a small exact integer (e.g. 2), used inside
// Newton iterations; it widens n to an Apfloat and goes through Div,
// so each call runs Div's reciprocal Newton iteration.
func divByInt(ctx *apcontext.Context, a *Apfloat, n *Apint) (*Apfloat, error) {
	divisor := n.ToApfloat(seedDigits)
	return Div(ctx, a, divisor)
}

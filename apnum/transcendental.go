package apnum

import (
	"math"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/lookbusy1344/go-apfloat/apnum/registry"
)

// expSeriesTerms is the number of extra digits, on top of GuardDigits,
// that Exp adds to its working precision to absorb rounding across the
// squarings that undo argument reduction. The Taylor sum itself is
// summed directly (rather than routed through the parallel
// binary-splitting driver) until its terms fall below the working
// precision — binary splitting is reserved for Chudnovsky's far larger
// term count (spec.md §8 scenario 4), per a deliberate scope trim
// recorded in DESIGN.md.
const expSeriesTerms = 4

// Exp computes e^a to a.Precision significant digits (spec.md §4.6:
// "argument reduction, then series summation"). Argument reduction
// repeatedly halves a until |a| < 1/2, sums the Taylor series at
// extended precision, then squares back up (exp(2x) = exp(x)^2).
func Exp(ctx *apcontext.Context, a *Apfloat) (*Apfloat, error) {
	if a.sign == 0 {
		return NewApintFromInt64(1, a.radix).ToApfloat(a.precision), nil
	}
	precision := orInf(a.precision, int64(len(a.digits)))
	working := precision + GuardDigits + expSeriesTerms

	reduced := a
	halvings := 0
	for magnitudeAtLeastHalf(reduced) {
		halved, err := divByInt(ctx, reduced.withPrecision(working), NewApintFromInt64(2, a.radix))
		if err != nil {
			return nil, err
		}
		reduced = halved
		halvings++
	}

	sum, err := expTaylor(ctx, reduced, working)
	if err != nil {
		return nil, err
	}
	for i := 0; i < halvings; i++ {
		sum, err = sum.Mul(ctx, sum)
		if err != nil {
			return nil, err
		}
	}
	return sum.withPrecision(precision), nil
}

func magnitudeAtLeastHalf(a *Apfloat) bool {
	if a.sign == 0 {
		return false
	}
	// |a| >= 1/2 (in its own radix) iff scale > 0, or scale == 0 and
	// the leading digit is at least radix/2.
	if a.scale > 0 {
		return true
	}
	if a.scale < 0 {
		return false
	}
	return a.digits[0]*2 >= uint64(a.radix)
}

// expTaylor sums 1 + x + x^2/2! + x^3/3! + ... until a term is smaller
// than the working precision can represent.
func expTaylor(ctx *apcontext.Context, x *Apfloat, working int64) (*Apfloat, error) {
	one := NewApintFromInt64(1, x.radix).ToApfloat(working)
	sum := one
	term := one
	for n := int64(1); n < working*4+16; n++ {
		var err error
		term, err = term.Mul(ctx, x)
		if err != nil {
			return nil, err
		}
		term, err = divByInt(ctx, term, NewApintFromInt64(n, x.radix))
		if err != nil {
			return nil, err
		}
		sum, err = sum.Add(term)
		if err != nil {
			return nil, err
		}
		if term.sign == 0 || term.scale <= sum.scale-working {
			return sum, nil
		}
	}
	return sum, nil
}

// Ln computes the natural logarithm of a (which must be positive) to
// a.Precision digits via Newton's method on Exp:
// y_{n+1} = y_n + a*exp(-y_n) - 1.
func Ln(ctx *apcontext.Context, a *Apfloat) (*Apfloat, error) {
	if a.sign <= 0 {
		return nil, &aferrors.ArithmeticError{Message: "logarithm of a non-positive number"}
	}
	precision := orInf(a.precision, int64(len(a.digits)))
	working := precision + GuardDigits

	m := mantissaFloat64(a)
	seedVal := math.Log(m) + float64(a.scale)*math.Log(float64(a.radix))
	sign := 1
	if seedVal < 0 {
		sign = -1
		seedVal = -seedVal
	}
	if seedVal == 0 {
		sign = 0
	}
	y := fromFloat64Mantissa(sign, seedVal, 0, a.radix, seedDigits+GuardDigits)
	if sign == 0 {
		y = Zero(a.radix)
	}

	ap := a.withPrecision(min64(working, int64(len(a.digits))))
	prec := int64(seedDigits)
	for prec < working {
		prec *= 2
		if prec > working {
			prec = working
		}
		negY, err := Exp(ctx, y.Neg().withPrecision(prec))
		if err != nil {
			return nil, err
		}
		aen, err := ap.withPrecision(min64(prec, int64(len(ap.digits)))).Mul(ctx, negY)
		if err != nil {
			return nil, err
		}
		correction, err := aen.Sub(NewApintFromInt64(1, a.radix).ToApfloat(prec))
		if err != nil {
			return nil, err
		}
		y, err = y.withPrecision(prec).Add(correction)
		if err != nil {
			return nil, err
		}
	}
	return y.withPrecision(precision), nil
}

// Pow computes base^exponent to base.Precision digits as
// Exp(exponent*Ln(base)) (spec.md §4.6's failure modes: 0^0 ->
// ArithmeticError("zero to zero"); a negative base with a non-integer
// exponent routes through Ln, which itself rejects non-positive
// operands — the complex layer, not this real Pow, is where a negative
// base's root or power belongs).
func Pow(ctx *apcontext.Context, base, exponent *Apfloat) (*Apfloat, error) {
	if base.sign == 0 {
		if exponent.sign == 0 {
			return nil, &aferrors.ArithmeticError{Message: "zero to zero"}
		}
		if exponent.sign < 0 {
			return nil, &aferrors.ArithmeticError{Message: "division by zero"}
		}
		return Zero(base.radix), nil
	}
	if exponent.sign == 0 {
		return NewApintFromInt64(1, base.radix).ToApfloat(base.precision), nil
	}

	precision := orInf(base.precision, int64(len(base.digits)))
	working := precision + GuardDigits

	lnBase, err := Ln(ctx, base.withPrecision(working))
	if err != nil {
		return nil, err
	}
	product, err := exponent.withPrecision(working).Mul(ctx, lnBase)
	if err != nil {
		return nil, err
	}
	result, err := Exp(ctx, product)
	if err != nil {
		return nil, err
	}
	return result.withPrecision(precision), nil
}

// Sin and Cos are computed together from exp(i*x) = cos(x)+i*sin(x)
// via Apcomplex (spec.md §4.6).
func sinCos(ctx *apcontext.Context, x *Apfloat) (sin, cos *Apfloat, err error) {
	// exp(i*x) via its own Taylor series on the complex argument,
	// since Exp above is real-only; x is summed as given, without
	// argument reduction.
	precision := orInf(x.precision, int64(len(x.digits)))
	working := precision + GuardDigits

	i := &Apcomplex{Re: Zero(x.radix), Im: NewApintFromInt64(1, x.radix).ToApfloat(working)}
	ix, err := i.Mul(ctx, &Apcomplex{Re: x.withPrecision(working), Im: Zero(x.radix)})
	if err != nil {
		return nil, nil, err
	}

	sum := &Apcomplex{Re: NewApintFromInt64(1, x.radix).ToApfloat(working), Im: Zero(x.radix)}
	term := sum
	for n := int64(1); n < working*4+16; n++ {
		term, err = term.Mul(ctx, ix)
		if err != nil {
			return nil, nil, err
		}
		termRe, err := divByInt(ctx, term.Re, NewApintFromInt64(n, x.radix))
		if err != nil {
			return nil, nil, err
		}
		termIm, err := divByInt(ctx, term.Im, NewApintFromInt64(n, x.radix))
		if err != nil {
			return nil, nil, err
		}
		term = &Apcomplex{Re: termRe, Im: termIm}
		sum, err = sum.Add(term)
		if err != nil {
			return nil, nil, err
		}
		if term.Re.sign == 0 && term.Im.sign == 0 {
			break
		}
		if term.Re.sign != 0 && term.Re.scale <= sum.Re.scale-working {
			break
		}
	}
	return sum.Im.withPrecision(precision), sum.Re.withPrecision(precision), nil
}

// E returns e to precision significant digits in radix, cached in
// apnum/registry keyed by (radix,precision) like Pi — e is a fixed
// constant of the computation, not derived from any caller-supplied
// operand, so it is exactly the kind of "cached static state" Design
// Notes calls out for ApfloatMath constants.
func E(ctx *apcontext.Context, radix int, precision int64) (*Apfloat, error) {
	key := registry.Key{Name: "e", Radix: radix, Precision: precision}
	v, err := registry.Get(key, func() (any, error) {
		one := NewApintFromInt64(1, radix).ToApfloat(precision + GuardDigits)
		return Exp(ctx, one)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Apfloat).withPrecision(precision), nil
}

// LnRadix returns ln(radix) to precision significant digits, cached in
// apnum/registry keyed by (radix,precision). Ln's own Newton seed above
// needs only a float64 approximation of ln(radix); this cached, full-
// precision value is for callers that need exact radix conversion
// (e.g. formatting routines converting a scale between radices).
func LnRadix(ctx *apcontext.Context, radix int, precision int64) (*Apfloat, error) {
	key := registry.Key{Name: "lnRadix", Radix: radix, Precision: precision}
	v, err := registry.Get(key, func() (any, error) {
		r := NewApintFromInt64(int64(radix), radix).ToApfloat(precision + GuardDigits)
		return Ln(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Apfloat).withPrecision(precision), nil
}

// Sin computes sin(x) to x.Precision digits.
func Sin(ctx *apcontext.Context, x *Apfloat) (*Apfloat, error) {
	s, _, err := sinCos(ctx, x)
	return s, err
}

// Cos computes cos(x) to x.Precision digits.
func Cos(ctx *apcontext.Context, x *Apfloat) (*Apfloat, error) {
	_, c, err := sinCos(ctx, x)
	return c, err
}

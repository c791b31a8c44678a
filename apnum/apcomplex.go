package apnum

import (
	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
)

// Apcomplex is an ordered pair (Re, Im) of Apfloats sharing a radix
// (spec.md §3). Its precision is the min of the two parts', matching
// Apfloat.Add/Mul's own min-of-operands convention.
type Apcomplex struct {
	Re, Im *Apfloat
}

// NewApcomplex pairs re and im, which must share a radix.
func NewApcomplex(re, im *Apfloat) (*Apcomplex, error) {
	if err := checkSameRadixF(re, im); err != nil {
		return nil, err
	}
	return &Apcomplex{Re: re, Im: im}, nil
}

// Radix returns the shared radix of the real and imaginary parts.
func (z *Apcomplex) Radix() int { return z.Re.radix }

// Precision returns the min of the real and imaginary parts'
// precisions (Infinite if both are).
func (z *Apcomplex) Precision() int64 {
	return minPrecision(z.Re.precision, 0, z.Im.precision, 0)
}

// IsZero reports whether both parts are zero.
func (z *Apcomplex) IsZero() bool { return z.Re.IsZero() && z.Im.IsZero() }

// Conj returns the complex conjugate.
func (z *Apcomplex) Conj() *Apcomplex { return &Apcomplex{Re: z.Re, Im: z.Im.Neg()} }

// Neg returns -z.
func (z *Apcomplex) Neg() *Apcomplex { return &Apcomplex{Re: z.Re.Neg(), Im: z.Im.Neg()} }

// Add returns z+w, componentwise (spec.md §4.6).
func (z *Apcomplex) Add(w *Apcomplex) (*Apcomplex, error) {
	re, err := z.Re.Add(w.Re)
	if err != nil {
		return nil, err
	}
	im, err := z.Im.Add(w.Im)
	if err != nil {
		return nil, err
	}
	return &Apcomplex{Re: re, Im: im}, nil
}

// Sub returns z-w.
func (z *Apcomplex) Sub(w *Apcomplex) (*Apcomplex, error) {
	return z.Add(w.Neg())
}

// Mul returns z*w using the standard complex product
// (ac-bd) + (ad+bc)i, each term computed by Apfloat.Mul so the real
// tier dispatch (schoolbook/bigfft/NTT) is shared with scalar
// arithmetic.
func (z *Apcomplex) Mul(ctx *apcontext.Context, w *Apcomplex) (*Apcomplex, error) {
	ac, err := z.Re.Mul(ctx, w.Re)
	if err != nil {
		return nil, err
	}
	bd, err := z.Im.Mul(ctx, w.Im)
	if err != nil {
		return nil, err
	}
	ad, err := z.Re.Mul(ctx, w.Im)
	if err != nil {
		return nil, err
	}
	bc, err := z.Im.Mul(ctx, w.Re)
	if err != nil {
		return nil, err
	}
	re, err := ac.Sub(bd)
	if err != nil {
		return nil, err
	}
	im, err := ad.Add(bc)
	if err != nil {
		return nil, err
	}
	return &Apcomplex{Re: re, Im: im}, nil
}

// normSquared returns Re^2+Im^2, the denominator of a complex
// reciprocal.
func (z *Apcomplex) normSquared(ctx *apcontext.Context) (*Apfloat, error) {
	re2, err := z.Re.Mul(ctx, z.Re)
	if err != nil {
		return nil, err
	}
	im2, err := z.Im.Mul(ctx, z.Im)
	if err != nil {
		return nil, err
	}
	return re2.Add(im2)
}

// Div returns z/w = z*conj(w)/|w|^2 (spec.md §4.6: "division by zero
// at the complex layer fails the same way as the real layer").
func (z *Apcomplex) Div(ctx *apcontext.Context, w *Apcomplex) (*Apcomplex, error) {
	if w.IsZero() {
		return nil, &aferrors.ArithmeticError{Message: "complex division by zero"}
	}
	denom, err := w.normSquared(ctx)
	if err != nil {
		return nil, err
	}
	numerator, err := z.Mul(ctx, w.Conj())
	if err != nil {
		return nil, err
	}
	re, err := Div(ctx, numerator.Re, denom)
	if err != nil {
		return nil, err
	}
	im, err := Div(ctx, numerator.Im, denom)
	if err != nil {
		return nil, err
	}
	return &Apcomplex{Re: re, Im: im}, nil
}

// String renders z as "re+imi" or "re-imi".
func (z *Apcomplex) String() string {
	im := z.Im.String()
	if z.Im.sign >= 0 {
		return z.Re.String() + "+" + im + "i"
	}
	return z.Re.String() + im + "i"
}

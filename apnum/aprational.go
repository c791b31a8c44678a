package apnum

import (
	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
)

// Aprational is an exact rational number: a reduced fraction of two
// Apint values, denominator always positive (spec.md §3). Unlike
// Apfloat/Apcomplex it carries no precision; every operation is exact.
type Aprational struct {
	Num, Den *Apint
}

// NewAprational reduces num/den to lowest terms with a positive
// denominator. Fails with ArithmeticError if den is zero.
func NewAprational(num, den *Apint) (*Aprational, error) {
	if err := checkSameRadix(num.radix, den.radix); err != nil {
		return nil, err
	}
	if den.sign == 0 {
		return nil, &aferrors.ArithmeticError{Message: "rational denominator is zero"}
	}
	if num.sign == 0 {
		return &Aprational{Num: ZeroInt(num.radix), Den: NewApintFromInt64(1, num.radix)}, nil
	}
	if den.sign < 0 {
		num, den = num.Neg(), den.Neg()
	}
	g := gcdApint(num, den)
	n, err := exactDivApint(num, g)
	if err != nil {
		return nil, err
	}
	d, err := exactDivApint(den, g)
	if err != nil {
		return nil, err
	}
	return &Aprational{Num: n, Den: d}, nil
}

// gcdApint computes gcd(|a|,|b|) via the Euclidean algorithm on digit
// arrays, mirroring Apint's own Add/Sub/Cmp rather than reaching for
// math/big (Apint deliberately stands alone from math/big, per
// spec.md §8 scenario 5). Reduction-time gcd/div work stays on
// schoolbook digit arithmetic; only the genuinely large products in
// Add/Mul/Div below route through convolution.Multiply's tiered
// dispatch.
func gcdApint(a, b *Apint) *Apint {
	x := &Apint{radix: a.radix, sign: 1, digits: a.digits}
	y := &Apint{radix: b.radix, sign: 1, digits: b.digits}
	for y.sign != 0 {
		_, r := divModApint(x, y)
		x, y = y, r
	}
	return x
}

// divModApint computes (q,r) such that a = q*b+r, 0 <= r < |b|, via
// schoolbook long division, digit by digit in the shared radix.
func divModApint(a, b *Apint) (*Apint, *Apint) {
	if a.sign == 0 {
		return ZeroInt(a.radix), ZeroInt(a.radix)
	}
	remainder := ZeroInt(a.radix)
	quotientDigits := make([]uint64, len(a.digits))
	bAbs := &Apint{radix: b.radix, sign: 1, digits: b.digits}
	for i, d := range a.digits {
		remainder = shiftInDigit(remainder, d, uint64(a.radix))
		q := uint64(0)
		for cmpDigits(remainder.digits, bAbs.digits) >= 0 && remainder.sign != 0 {
			diff := subDigits(remainder.digits, bAbs.digits, uint64(a.radix))
			remainder = trimInt(a.radix, 1, diff)
			q++
		}
		quotientDigits[i] = q
	}
	quotient := trimInt(a.radix, 1, quotientDigits)
	return quotient, remainder
}

// shiftInDigit computes remainder*radix+d as a new Apint.
func shiftInDigit(remainder *Apint, d, radix uint64) *Apint {
	digits := append(append([]uint64(nil), remainder.digits...), d)
	return trimInt(int(radix), 1, digits)
}

// exactDivApint divides a by b, which must divide it exactly (used
// only after a gcd reduction).
func exactDivApint(a, b *Apint) (*Apint, error) {
	q, r := divModApint(&Apint{radix: a.radix, sign: 1, digits: a.digits}, b)
	if r.sign != 0 {
		return nil, &aferrors.InternalError{Message: "exactDivApint: inexact division after gcd reduction"}
	}
	// a is nonzero at every call site (NewAprational handles num==0
	// separately), so q is nonzero too; restore a's sign onto it.
	q.sign = a.sign
	return q, nil
}

// IsZero reports whether the rational is zero.
func (q *Aprational) IsZero() bool { return q.Num.sign == 0 }

// Neg returns -q.
func (q *Aprational) Neg() *Aprational { return &Aprational{Num: q.Num.Neg(), Den: q.Den} }

// Add returns p+q as a reduced fraction.
func (p *Aprational) Add(ctx *apcontext.Context, q *Aprational) (*Aprational, error) {
	dn, err := p.Den.Mul(ctx, q.Den)
	if err != nil {
		return nil, err
	}
	t1, err := p.Num.Mul(ctx, q.Den)
	if err != nil {
		return nil, err
	}
	t2, err := q.Num.Mul(ctx, p.Den)
	if err != nil {
		return nil, err
	}
	nn, err := t1.Add(t2)
	if err != nil {
		return nil, err
	}
	return NewAprational(nn, dn)
}

// Sub returns p-q.
func (p *Aprational) Sub(ctx *apcontext.Context, q *Aprational) (*Aprational, error) {
	return p.Add(ctx, q.Neg())
}

// Mul returns p*q as a reduced fraction.
func (p *Aprational) Mul(ctx *apcontext.Context, q *Aprational) (*Aprational, error) {
	nn, err := p.Num.Mul(ctx, q.Num)
	if err != nil {
		return nil, err
	}
	dd, err := p.Den.Mul(ctx, q.Den)
	if err != nil {
		return nil, err
	}
	return NewAprational(nn, dd)
}

// Div returns p/q.
func (p *Aprational) Div(ctx *apcontext.Context, q *Aprational) (*Aprational, error) {
	if q.IsZero() {
		return nil, &aferrors.ArithmeticError{Message: "rational division by zero"}
	}
	nn, err := p.Num.Mul(ctx, q.Den)
	if err != nil {
		return nil, err
	}
	dd, err := p.Den.Mul(ctx, q.Num)
	if err != nil {
		return nil, err
	}
	return NewAprational(nn, dd)
}

// Cmp compares p and q by cross-multiplication.
func (p *Aprational) Cmp(ctx *apcontext.Context, q *Aprational) (int, error) {
	lhs, err := p.Num.Mul(ctx, q.Den)
	if err != nil {
		return 0, err
	}
	rhs, err := q.Num.Mul(ctx, p.Den)
	if err != nil {
		return 0, err
	}
	return lhs.Cmp(rhs), nil
}

// ToApfloat converts the rational to an Apfloat at the given precision
// via Newton division (spec.md §4.6).
func (q *Aprational) ToApfloat(ctx *apcontext.Context, precision int64) (*Apfloat, error) {
	num := q.Num.ToApfloat(precision + GuardDigits)
	den := q.Den.ToApfloat(precision + GuardDigits)
	result, err := Div(ctx, num, den)
	if err != nil {
		return nil, err
	}
	return result.withPrecision(precision), nil
}

// String renders p as "num/den", or just "num" when den is 1.
func (p *Aprational) String() string {
	if p.Den.Cmp(NewApintFromInt64(1, p.Den.radix)) == 0 {
		return p.Num.String()
	}
	return p.Num.String() + "/" + p.Den.String()
}

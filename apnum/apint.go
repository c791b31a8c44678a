package apnum

import (
	"math/big"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/lookbusy1344/go-apfloat/convolution"
)

// Apint is an integer: an Apfloat with scale >= precision (no
// fractional digits) and precision == Infinite (spec.md §3). It keeps
// its own digit mantissa (MSD-first, no leading zero) rather than an
// Apfloat's fixed-length one, since an integer's digit count grows
// with its value rather than being capped by a requested precision.
type Apint struct {
	radix  int
	sign   int
	digits []uint64 // MSD-first, len(digits) == 0 only for sign == 0
}

// ZeroInt returns the canonical integer zero at the given radix.
func ZeroInt(radix int) *Apint { return &Apint{radix: radix, sign: 0} }

// NewApintFromInt64 builds an Apint from a native integer.
func NewApintFromInt64(v int64, radix int) *Apint {
	if v == 0 {
		return ZeroInt(radix)
	}
	sign := 1
	u := uint64(v)
	if v < 0 {
		sign = -1
		u = uint64(-v)
	}
	digits := bigIntToDigits(new(big.Int).SetUint64(u), radix, digitCount(u, radix))
	return &Apint{radix: radix, sign: sign, digits: digits}
}

func digitCount(u uint64, radix int) int64 {
	n := int64(0)
	for u > 0 {
		u /= uint64(radix)
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// Radix, Sign, IsZero mirror Apfloat's accessors.
func (a *Apint) Radix() int   { return a.radix }
func (a *Apint) Sign() int    { return a.sign }
func (a *Apint) IsZero() bool { return a.sign == 0 }

// ToApfloat widens a to a real number with the given precision (or
// Infinite to keep every digit a has).
func (a *Apint) ToApfloat(precision int64) *Apfloat {
	if a.sign == 0 {
		return Zero(a.radix)
	}
	return newNormalized(a.radix, a.sign, int64(len(a.digits)), precision, a.digits)
}

func apfloatToApint(f *Apfloat) (*Apint, error) {
	if f.sign == 0 {
		return ZeroInt(f.radix), nil
	}
	if f.scale < int64(len(f.digits)) {
		return nil, &aferrors.ParseError{Message: "value has a fractional part; not a valid integer"}
	}
	digits := append([]uint64(nil), f.digits...)
	for int64(len(digits)) < f.scale {
		digits = append(digits, 0)
	}
	return &Apint{radix: f.radix, sign: f.sign, digits: digits}, nil
}

// Neg returns -a.
func (a *Apint) Neg() *Apint {
	if a.sign == 0 {
		return a
	}
	return &Apint{radix: a.radix, sign: -a.sign, digits: a.digits}
}

// Cmp returns -1, 0, or +1 as a compares less than, equal to, or
// greater than b. a and b must share a radix.
func (a *Apint) Cmp(b *Apint) int {
	if a.sign != b.sign {
		if a.sign < b.sign {
			return -1
		}
		return 1
	}
	if a.sign == 0 {
		return 0
	}
	c := cmpDigits(a.digits, b.digits)
	if a.sign < 0 {
		c = -c
	}
	return c
}

func cmpDigits(a, b []uint64) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Add returns a+b.
func (a *Apint) Add(b *Apint) (*Apint, error) {
	if err := checkSameRadix(a.radix, b.radix); err != nil {
		return nil, err
	}
	if a.sign == 0 {
		return b, nil
	}
	if b.sign == 0 {
		return a, nil
	}
	if a.sign == b.sign {
		sum := addDigits(a.digits, b.digits, uint64(a.radix))
		return &Apint{radix: a.radix, sign: a.sign, digits: sum}, nil
	}
	// Opposite signs: subtract the smaller magnitude from the larger.
	c := cmpDigits(a.digits, b.digits)
	if c == 0 {
		return ZeroInt(a.radix), nil
	}
	if c > 0 {
		diff := subDigits(a.digits, b.digits, uint64(a.radix))
		return trimInt(a.radix, a.sign, diff), nil
	}
	diff := subDigits(b.digits, a.digits, uint64(a.radix))
	return trimInt(a.radix, b.sign, diff), nil
}

// Sub returns a-b.
func (a *Apint) Sub(b *Apint) (*Apint, error) { return a.Add(b.Neg()) }

func trimInt(radix, sign int, digits []uint64) *Apint {
	start := 0
	for start < len(digits)-1 && digits[start] == 0 {
		start++
	}
	digits = digits[start:]
	if len(digits) == 1 && digits[0] == 0 {
		return ZeroInt(radix)
	}
	return &Apint{radix: radix, sign: sign, digits: digits}
}

// addDigits adds two MSD-first digit sequences in the given radix.
func addDigits(a, b []uint64, radix uint64) []uint64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]uint64, n+1)
	carry := uint64(0)
	for i := 0; i < n; i++ {
		var da, db uint64
		if ai := len(a) - 1 - i; ai >= 0 {
			da = a[ai]
		}
		if bi := len(b) - 1 - i; bi >= 0 {
			db = b[bi]
		}
		sum := da + db + carry
		out[n-i] = sum % radix
		carry = sum / radix
	}
	out[0] = carry
	if out[0] == 0 {
		return out[1:]
	}
	return out
}

// subDigits computes a-b (MSD-first), requiring a >= b.
func subDigits(a, b []uint64, radix uint64) []uint64 {
	out := make([]uint64, len(a))
	borrow := uint64(0)
	for i := 0; i < len(a); i++ {
		da := a[len(a)-1-i]
		var db uint64
		if bi := len(b) - 1 - i; bi >= 0 {
			db = b[bi]
		}
		d := int64(da) - int64(db) - int64(borrow)
		if d < 0 {
			d += int64(radix)
			borrow = 1
		} else {
			borrow = 0
		}
		out[len(a)-1-i] = uint64(d)
	}
	return out
}

// Mul returns a*b, routing the digit convolution through package
// convolution (spec.md §8 scenario 5: large integer multiplication
// dispatches through the NTT path once operand length crosses the
// schoolbook/bigfft thresholds).
func (a *Apint) Mul(ctx *apcontext.Context, b *Apint) (*Apint, error) {
	if err := checkSameRadix(a.radix, b.radix); err != nil {
		return nil, err
	}
	if a.sign == 0 || b.sign == 0 {
		return ZeroInt(a.radix), nil
	}
	product, err := convolution.Multiply(ctx, reverseDigits(a.digits), reverseDigits(b.digits), uint64(a.radix))
	if err != nil {
		return nil, err
	}
	return trimInt(a.radix, a.sign*b.sign, reverseDigits(product)), nil
}

func reverseDigits(d []uint64) []uint64 {
	out := make([]uint64, len(d))
	for i, v := range d {
		out[len(d)-1-i] = v
	}
	return out
}

func checkSameRadix(a, b int) error {
	if a != b {
		return &aferrors.ArithmeticError{Message: "operands have different radixes"}
	}
	return nil
}


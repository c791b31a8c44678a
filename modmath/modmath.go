// Package modmath implements elementary modular arithmetic under a
// small prime modulus, the primitive spec.md §4.3 builds the NTT on.
// Two element families are provided: Prime32 for primes below 2^31,
// Prime64 for primes below 2^63. Prime32 uses a Barrett-style
// fixed-point inverse so its multiply avoids a division per call;
// Prime64 reduces the 128-bit product with math/bits.Div64.
package modmath

import "math/bits"

// Field is the capability interface the NTT and convolution layers
// program against, rather than switching on element-type family at
// every call site (spec.md §9 redesign flag: "model as a capability
// interface per element type"). Prime32 and Prime64 both implement it.
type Field interface {
	Mul(a, b uint64) uint64
	Add(a, b uint64) uint64
	Sub(a, b uint64) uint64
	Modulus() uint64
}

// Prime32 is a modulus m < 2^31 usable by the 32-bit element family,
// paired with the fixed-point inverse the multiply routine needs.
type Prime32 struct {
	M   uint32
	Inv uint64 // floor(2^63 / M)
}

// NewPrime32 derives a Prime32 from a modulus already known to be prime
// and below 2^31.
func NewPrime32(m uint32) Prime32 {
	return Prime32{M: m, Inv: (uint64(1) << 63) / uint64(m)}
}

// Mul32 computes a*b mod p.M for a,b in [0, p.M), using the fixed-point
// inverse reduction r = a*b - (((a*b)>>30)*Inv>>33)*M. For M just below
// 2^31 the estimated quotient is at most one short, so one subtract of M
// finishes; smaller moduli (such as the convolution layer's CRT primes)
// can leave r a few multiples of M high, so the subtract repeats.
func (p Prime32) Mul32(a, b uint32) uint32 {
	prod := uint64(a) * uint64(b)
	q := ((prod >> 30) * p.Inv) >> 33
	r := prod - q*uint64(p.M)
	for r >= uint64(p.M) {
		r -= uint64(p.M)
	}
	return uint32(r)
}

// Add32 computes (a+b) mod p.M for a,b in [0, p.M).
func (p Prime32) Add32(a, b uint32) uint32 {
	r := a + b
	if r >= p.M {
		r -= p.M
	}
	return r
}

// Sub32 computes (a-b) mod p.M for a,b in [0, p.M).
func (p Prime32) Sub32(a, b uint32) uint32 {
	if a >= b {
		return a - b
	}
	return p.M - (b - a)
}

// Neg32 computes (-a) mod p.M for a in [0, p.M).
func (p Prime32) Neg32(a uint32) uint32 {
	if a == 0 {
		return 0
	}
	return p.M - a
}

// PowMod32 computes base^exp mod p.M by repeated squaring.
func (p Prime32) PowMod32(base uint32, exp uint64) uint32 {
	result := uint32(1) % p.M
	base %= p.M
	for exp > 0 {
		if exp&1 == 1 {
			result = p.Mul32(result, base)
		}
		base = p.Mul32(base, base)
		exp >>= 1
	}
	return result
}

// InverseMod32 computes the modular inverse of a via Fermat's little
// theorem (p.M is prime): a^(M-2) mod M.
func (p Prime32) InverseMod32(a uint32) uint32 {
	return p.PowMod32(a, uint64(p.M)-2)
}

// Mul implements Field.
func (p Prime32) Mul(a, b uint64) uint64 { return uint64(p.Mul32(uint32(a), uint32(b))) }

// Add implements Field.
func (p Prime32) Add(a, b uint64) uint64 { return uint64(p.Add32(uint32(a), uint32(b))) }

// Sub implements Field.
func (p Prime32) Sub(a, b uint64) uint64 { return uint64(p.Sub32(uint32(a), uint32(b))) }

// Modulus implements Field.
func (p Prime32) Modulus() uint64 { return uint64(p.M) }

// Prime64 is a modulus m < 2^63 usable by the 64-bit element family.
// Its multiply forms the 128-bit product with math/bits.Mul64 and
// reduces it with math/bits.Div64; it keeps no fixed-point inverse.
type Prime64 struct {
	M uint64
}

// NewPrime64 derives a Prime64 from a modulus already known to be prime
// and just below 2^63.
func NewPrime64(m uint64) Prime64 {
	return Prime64{M: m}
}

// Mul64 computes a*b mod p.M for a,b in [0, p.M), reducing the full
// 128-bit product with math/bits.Div64.
func (p Prime64) Mul64(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= p.M {
		// Guaranteed not to happen for a,b < p.M (product < M^2 < 2^126),
		// but guards against a misused modulus rather than panicking.
		hi %= p.M
	}
	_, rem := bits.Div64(hi, lo, p.M)
	return rem
}

// Add64 computes (a+b) mod p.M for a,b in [0, p.M).
func (p Prime64) Add64(a, b uint64) uint64 {
	r := a + b
	if r < a || r >= p.M { // r < a catches the uint64 wraparound case
		r -= p.M
	}
	return r
}

// Sub64 computes (a-b) mod p.M for a,b in [0, p.M).
func (p Prime64) Sub64(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return p.M - (b - a)
}

// Neg64 computes (-a) mod p.M for a in [0, p.M).
func (p Prime64) Neg64(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return p.M - a
}

// PowMod64 computes base^exp mod p.M by repeated squaring.
func (p Prime64) PowMod64(base uint64, exp uint64) uint64 {
	result := uint64(1) % p.M
	base %= p.M
	for exp > 0 {
		if exp&1 == 1 {
			result = p.Mul64(result, base)
		}
		base = p.Mul64(base, base)
		exp >>= 1
	}
	return result
}

// InverseMod64 computes the modular inverse of a via Fermat's little
// theorem.
func (p Prime64) InverseMod64(a uint64) uint64 {
	return p.PowMod64(a, p.M-2)
}

// Mul implements Field.
func (p Prime64) Mul(a, b uint64) uint64 { return p.Mul64(a, b) }

// Add implements Field.
func (p Prime64) Add(a, b uint64) uint64 { return p.Add64(a, b) }

// Sub implements Field.
func (p Prime64) Sub(a, b uint64) uint64 { return p.Sub64(a, b) }

// Modulus implements Field.
func (p Prime64) Modulus() uint64 { return p.M }

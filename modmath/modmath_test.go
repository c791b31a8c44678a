package modmath

import (
	"math/rand"
	"testing"
)

// p1_32 is a real 31-bit NTT-friendly prime (15 * 2^27 + 1) with a large
// power-of-two order in its multiplicative group.
const p1_32 uint32 = 2013265921

// p1_64 is a real 62-bit NTT-friendly prime (29 * 2^57 + 1) with a large
// power-of-two order.
const p1_64 uint64 = 4179340454199820289

func TestMul32Boundary(t *testing.T) {
	p := NewPrime32(p1_32)
	half := (p.M - 1) / 2
	tests := []struct{ a, b uint32 }{
		{0, 0}, {0, 1}, {1, 1}, {p.M - 1, p.M - 1}, {half, half}, {half, p.M - 1},
	}
	for _, tt := range tests {
		got := p.Mul32(tt.a, tt.b)
		want := uint32((uint64(tt.a) * uint64(tt.b)) % uint64(p.M))
		if got != want {
			t.Errorf("Mul32(%d,%d) = %d, want %d", tt.a, tt.b, got, want)
		}
	}
}

func TestMul32Randomized(t *testing.T) {
	p := NewPrime32(p1_32)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		a := uint32(rng.Int63n(int64(p.M)))
		b := uint32(rng.Int63n(int64(p.M)))
		got := p.Mul32(a, b)
		want := uint32((uint64(a) * uint64(b)) % uint64(p.M))
		if got != want || got >= p.M {
			t.Fatalf("Mul32(%d,%d) = %d, want %d", a, b, got, want)
		}
	}
}

func TestAddSub32Boundary(t *testing.T) {
	p := NewPrime32(p1_32)
	tests := []uint32{0, 1, p.M - 1, (p.M - 1) / 2}
	for _, a := range tests {
		for _, b := range tests {
			sum := p.Add32(a, b)
			if want := uint32((uint64(a) + uint64(b)) % uint64(p.M)); sum != want {
				t.Errorf("Add32(%d,%d) = %d, want %d", a, b, sum, want)
			}
			diff := p.Sub32(a, b)
			want := (int64(a) - int64(b)) % int64(p.M)
			if want < 0 {
				want += int64(p.M)
			}
			if int64(diff) != want {
				t.Errorf("Sub32(%d,%d) = %d, want %d", a, b, diff, want)
			}
		}
	}
}

func TestInverseMod32(t *testing.T) {
	p := NewPrime32(p1_32)
	for _, a := range []uint32{1, 2, 3, 12345, p.M - 1} {
		inv := p.InverseMod32(a)
		if got := p.Mul32(a, inv); got != 1 {
			t.Errorf("Mul32(%d, InverseMod32(%d)=%d) = %d, want 1", a, a, inv, got)
		}
	}
}

func TestMul64Boundary(t *testing.T) {
	p := NewPrime64(p1_64)
	half := (p.M - 1) / 2
	tests := []struct{ a, b uint64 }{
		{0, 0}, {0, 1}, {1, 1}, {p.M - 1, p.M - 1}, {half, half}, {half, p.M - 1},
	}
	for _, tt := range tests {
		got := p.Mul64(tt.a, tt.b)
		want := mulModSlow(tt.a, tt.b, p.M)
		if got != want {
			t.Errorf("Mul64(%d,%d) = %d, want %d", tt.a, tt.b, got, want)
		}
	}
}

func TestMul64Randomized(t *testing.T) {
	p := NewPrime64(p1_64)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 10000; i++ {
		a := uint64(rng.Int63n(int64(p.M)))
		b := uint64(rng.Int63n(int64(p.M)))
		got := p.Mul64(a, b)
		want := mulModSlow(a, b, p.M)
		if got != want || got >= p.M {
			t.Fatalf("Mul64(%d,%d) = %d, want %d", a, b, got, want)
		}
	}
}

func TestInverseMod64(t *testing.T) {
	p := NewPrime64(p1_64)
	for _, a := range []uint64{1, 2, 3, 987654321, p.M - 1} {
		inv := p.InverseMod64(a)
		if got := p.Mul64(a, inv); got != 1 {
			t.Errorf("Mul64(%d, InverseMod64(%d)=%d) = %d, want 1", a, a, inv, got)
		}
	}
}

// mulModSlow computes a*b mod m using big.Int-free 128-bit long
// division entirely in terms of uint64 halves, as an independent oracle
// for Mul64.
func mulModSlow(a, b, m uint64) uint64 {
	var result uint64
	a %= m
	for b > 0 {
		if b&1 == 1 {
			result = addMod(result, a, m)
		}
		a = addMod(a, a, m)
		b >>= 1
	}
	return result
}

func addMod(a, b, m uint64) uint64 {
	a %= m
	b %= m
	r := a + b
	if r < a || r >= m {
		r -= m
	}
	return r
}

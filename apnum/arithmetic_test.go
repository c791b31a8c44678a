package apnum

import (
	"math/rand"
	"testing"
)

// TestMulPrecisionInfiniteOperand is spec.md §8 end-to-end scenario 1:
// parse("1.25e2", p=4) * parse("8", p=Infinite) must land at precision
// 4 (min(4,Infinite)=4, the Infinite operand contributing no cap), not
// at precision 1 (the exact operand's stored digit count).
func TestMulPrecisionInfiniteOperand(t *testing.T) {
	ctx := testContext(t)
	a := mustParse(t, "1.25e2", 10, 4)
	b := mustParse(t, "8", 10, Infinite)

	got, err := a.Mul(ctx, b)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if got.Precision() != 4 {
		t.Fatalf("Mul precision = %d, want 4", got.Precision())
	}
	if want := "1000"; got.String() != want {
		t.Fatalf("Mul result = %q, want %q", got.String(), want)
	}
}

// TestMulPrecisionQuantified checks spec.md §8's quantified invariant
// precision(x*y) == min(p_x, p_y) across both finite/finite and
// finite/Infinite combinations, over random operands.
func TestMulPrecisionQuantified(t *testing.T) {
	ctx := testContext(t)
	rng := rand.New(rand.NewSource(7))
	precisions := []int64{1, 3, 10, Infinite}

	for _, pa := range precisions {
		for _, pb := range precisions {
			pa, pb := pa, pb
			t.Run("", func(t *testing.T) {
				a := randomApfloat(rng, 10, pa)
				b := randomApfloat(rng, 10, pb)

				got, err := a.Mul(ctx, b)
				if err != nil {
					t.Fatalf("Mul: %v", err)
				}

				want := finiteMin(pa, pb)
				if got.Precision() != want {
					t.Fatalf("Mul(p=%d,p=%d) precision = %d, want %d", pa, pb, got.Precision(), want)
				}
			})
		}
	}
}

func randomApfloat(rng *rand.Rand, radix int, precision int64) *Apfloat {
	n := precision
	if n == Infinite || n > 12 {
		n = 5 + rng.Int63n(8)
	}
	digits := make([]uint64, n)
	digits[0] = uint64(1 + rng.Intn(radix-1))
	for i := 1; i < len(digits); i++ {
		digits[i] = uint64(rng.Intn(radix))
	}
	scale := int64(rng.Intn(7)) - 3
	return newNormalized(radix, 1, scale, precision, digits)
}

func TestAddPrecisionInfiniteOperand(t *testing.T) {
	a := mustParse(t, "1.234", 10, 4)
	b := mustParse(t, "1000", 10, Infinite)

	got, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// b is exact (scale 4) and contributes no cap; a's scale-4 digit
	// window is just its units digit (precision 4, shifted by 3), so
	// the result is bounded at precision 1 by a alone, never Infinite.
	if got.Precision() != 1 {
		t.Fatalf("Add precision = %d, want 1 (bounded by the finite operand, not forced to Infinite)", got.Precision())
	}
}

func TestApcomplexPrecisionInfiniteComponent(t *testing.T) {
	re := mustParse(t, "1.5", 10, 6)
	im := Zero(10) // Zero carries Infinite precision
	z, err := NewApcomplex(re, im)
	if err != nil {
		t.Fatalf("NewApcomplex: %v", err)
	}
	if z.Precision() != 6 {
		t.Fatalf("Apcomplex.Precision() = %d, want 6", z.Precision())
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	a := mustParse(t, "3.14159", 10, 6)
	b := mustParse(t, "2.71828", 10, 6)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	back, err := sum.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if back.Cmp(a) != 0 {
		t.Fatalf("(a+b)-b = %s, want %s", back.String(), a.String())
	}
}

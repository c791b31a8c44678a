package apnum

import "testing"

// TestDivOneThird is spec.md §8 end-to-end scenario 2: 1/3 at precision
// 20 renders as 20 threes.
func TestDivOneThird(t *testing.T) {
	ctx := testContext(t)
	a := mustParse(t, "1", 10, 20)
	b := mustParse(t, "3", 10, 20)

	got, err := Div(ctx, a, b)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	want := "0." + repeatDigit('3', 20)
	if got.String() != want {
		t.Fatalf("1/3 at precision 20 = %q, want %q", got.String(), want)
	}
}

func TestDivByZero(t *testing.T) {
	ctx := testContext(t)
	a := mustParse(t, "1", 10, 10)
	b := Zero(10)
	if _, err := Div(ctx, a, b); err == nil {
		t.Fatal("Div by zero succeeded, want ArithmeticError")
	}
}

// TestDivPrecisionInfiniteDivisor is the Div analogue of the Mul
// precision-contract bug: dividing a finite-precision dividend by an
// exact (Infinite-precision) divisor must yield the dividend's own
// precision, not the divisor's digit count.
func TestDivPrecisionInfiniteDivisor(t *testing.T) {
	ctx := testContext(t)
	a := mustParse(t, "1", 10, 20)
	b := mustParse(t, "3", 10, Infinite) // exact divisor, 1 stored digit

	got, err := Div(ctx, a, b)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if got.Precision() != 20 {
		t.Fatalf("Div precision = %d, want 20 (the dividend's precision, not the divisor's 1 stored digit)", got.Precision())
	}
}

// TestSqrtRoundTrip is spec.md §8 end-to-end scenario 3: sqrt(2)^2
// reproduces 2 to within the requested precision.
func TestSqrtRoundTrip(t *testing.T) {
	ctx := testContext(t)
	two := mustParse(t, "2", 10, 50)

	root, err := Sqrt(ctx, two, 50)
	if err != nil {
		t.Fatalf("Sqrt: %v", err)
	}
	squared, err := root.Mul(ctx, root)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}

	if !approxEqual(t, squared, two, 45) {
		t.Fatalf("sqrt(2)^2 = %s, too far from 2", squared.String())
	}
}

func TestSqrtNegativeFails(t *testing.T) {
	ctx := testContext(t)
	neg := mustParse(t, "-4", 10, 10)
	if _, err := Sqrt(ctx, neg, 10); err == nil {
		t.Fatal("Sqrt(negative) succeeded, want ArithmeticError")
	}
}

// TestInverseSqrtOfFour checks 1/sqrt(4) against its defining identity
// (1/sqrt(a))^2 * a == 1, rather than a fixed decimal literal, so the
// test doesn't depend on exactly how many guard digits round.
func TestInverseSqrtOfFour(t *testing.T) {
	ctx := testContext(t)
	four := mustParse(t, "4", 10, 30)

	y, err := InverseSqrt(ctx, four, 30)
	if err != nil {
		t.Fatalf("InverseSqrt: %v", err)
	}
	y2, err := y.Mul(ctx, y)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	product, err := y2.Mul(ctx, four)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}

	one := mustParse(t, "1", 10, 30)
	if !approxEqual(t, product, one, 25) {
		t.Fatalf("(1/sqrt(4))^2*4 = %s, too far from 1", product.String())
	}
}

package apnum

import "testing"

func TestExpLnRoundTrip(t *testing.T) {
	ctx := testContext(t)
	two := mustParse(t, "2", 10, 30)

	ln2, err := Ln(ctx, two)
	if err != nil {
		t.Fatalf("Ln: %v", err)
	}
	back, err := Exp(ctx, ln2)
	if err != nil {
		t.Fatalf("Exp: %v", err)
	}
	if !approxEqual(t, back, two, 22) {
		t.Fatalf("exp(ln(2)) = %s, too far from 2", back.String())
	}
}

func TestLnRejectsNonPositive(t *testing.T) {
	ctx := testContext(t)
	for _, s := range []string{"0", "-1"} {
		v := mustParse(t, s, 10, 10)
		if _, err := Ln(ctx, v); err == nil {
			t.Errorf("Ln(%q) succeeded, want ArithmeticError", s)
		}
	}
}

func TestSinCosPythagoreanIdentity(t *testing.T) {
	ctx := testContext(t)
	x := mustParse(t, "1.25", 10, 30)

	sin, err := Sin(ctx, x)
	if err != nil {
		t.Fatalf("Sin: %v", err)
	}
	cos, err := Cos(ctx, x)
	if err != nil {
		t.Fatalf("Cos: %v", err)
	}
	sin2, err := sin.Mul(ctx, sin)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	cos2, err := cos.Mul(ctx, cos)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	sum, err := sin2.Add(cos2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	one := mustParse(t, "1", 10, 30)
	if !approxEqual(t, sum, one, 20) {
		t.Fatalf("sin^2+cos^2 = %s, want ~1", sum.String())
	}
}

func TestPowZeroToZeroFails(t *testing.T) {
	ctx := testContext(t)
	zero := Zero(10)
	if _, err := Pow(ctx, zero, zero); err == nil {
		t.Fatal("Pow(0,0) succeeded, want ArithmeticError")
	}
}

func TestPowZeroToNegativeFails(t *testing.T) {
	ctx := testContext(t)
	zero := Zero(10)
	neg := mustParse(t, "-1", 10, 10)
	if _, err := Pow(ctx, zero, neg); err == nil {
		t.Fatal("Pow(0,-1) succeeded, want ArithmeticError")
	}
}

func TestPowExponentZeroIsOne(t *testing.T) {
	ctx := testContext(t)
	base := mustParse(t, "5", 10, 10)
	zero := Zero(10)

	got, err := Pow(ctx, base, zero)
	if err != nil {
		t.Fatalf("Pow: %v", err)
	}
	if got.String() != "1" {
		t.Fatalf("Pow(5,0) = %q, want %q", got.String(), "1")
	}
}

func TestPowSquareMatchesMul(t *testing.T) {
	ctx := testContext(t)
	base := mustParse(t, "3", 10, 25)
	exponent := mustParse(t, "2", 10, 25)

	got, err := Pow(ctx, base, exponent)
	if err != nil {
		t.Fatalf("Pow: %v", err)
	}
	want, err := base.Mul(ctx, base)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if !approxEqual(t, got, want, 18) {
		t.Fatalf("Pow(3,2) = %s, want ~%s", got.String(), want.String())
	}
}

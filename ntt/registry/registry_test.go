package registry

import (
	"testing"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/modmath"
)

var testPrime = modmath.NewPrime32(998244353) // 119*2^23+1

func TestGetRootHasCorrectOrder(t *testing.T) {
	Clear()
	const maxLogN = 10
	table, err := Get(testPrime, maxLogN)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	n := uint64(1) << maxLogN
	if got := PowMod(testPrime, table.Root, n); got != 1 {
		t.Errorf("Root^N = %d, want 1", got)
	}
	if got := PowMod(testPrime, table.Root, n/2); got == 1 {
		t.Error("Root^(N/2) == 1, root does not have full order N")
	}
}

func TestGetIsCached(t *testing.T) {
	Clear()
	t1, _ := Get(testPrime, 8)
	t2, _ := Get(testPrime, 8)
	if t1 != t2 {
		t.Error("expected Get to return the same cached *Table for identical keys")
	}
}

func TestGetRejectsTooLargeLength(t *testing.T) {
	Clear()
	if _, err := Get(testPrime, 30); err == nil {
		t.Error("expected a transform length exceeding the modulus's 2-adic valuation to fail")
	} else if aferrors.KindOf(err) != aferrors.KindPrecision {
		t.Errorf("KindOf(err) = %v, want KindPrecision", aferrors.KindOf(err))
	}
}

func TestInverseModRoundTrip(t *testing.T) {
	for _, a := range []uint64{1, 2, 12345, 998244352} {
		inv := InverseMod(testPrime, a)
		if got := testPrime.Mul(a, inv); got != 1 {
			t.Errorf("a=%d: a*InverseMod(a) = %d, want 1", a, got)
		}
	}
}

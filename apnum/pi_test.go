package apnum

import (
	"context"
	"testing"

	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/lookbusy1344/go-apfloat/apnum/registry"
)

// TestPiThreadIndependence is spec.md §8 end-to-end scenario 4: the
// Chudnovsky binary split produces the same digits regardless of how
// many worker threads carried it out. registry.Clear is called between
// runs so the second call isn't just a cache hit on the first.
func TestPiThreadIndependence(t *testing.T) {
	apctx := apcontext.NewDefaultContext()
	apctx.DefaultRadix = 10

	const precision = 60
	registry.Clear()
	single, err := Pi(context.Background(), apctx, 10, precision, 1)
	if err != nil {
		t.Fatalf("Pi(threads=1): %v", err)
	}

	registry.Clear()
	quad, err := Pi(context.Background(), apctx, 10, precision, 4)
	if err != nil {
		t.Fatalf("Pi(threads=4): %v", err)
	}

	if single.String() != quad.String() {
		t.Fatalf("Pi differs by thread count:\n  1 thread: %s\n  4 threads: %s", single.String(), quad.String())
	}

	const knownPrefix = "3.14159265358979323846264338327950288419716939937510"
	if len(single.String()) < len(knownPrefix) || single.String()[:len(knownPrefix)] != knownPrefix {
		t.Fatalf("Pi(precision=%d) = %s, want prefix %s", precision, single.String(), knownPrefix)
	}
}

func TestPiCachedAcrossCalls(t *testing.T) {
	apctx := apcontext.NewDefaultContext()
	apctx.DefaultRadix = 10

	registry.Clear()
	a, err := Pi(context.Background(), apctx, 10, 30, 1)
	if err != nil {
		t.Fatalf("Pi: %v", err)
	}
	b, err := Pi(context.Background(), apctx, 10, 30, 2)
	if err != nil {
		t.Fatalf("Pi: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("cached Pi call returned different digits: %s vs %s", a.String(), b.String())
	}
}

func TestPiRejectsBadRadix(t *testing.T) {
	apctx := apcontext.NewDefaultContext()
	registry.Clear()
	if _, err := Pi(context.Background(), apctx, 1, 10, 1); err == nil {
		t.Fatal("Pi with radix 1 succeeded, want an error")
	}
}

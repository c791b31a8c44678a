package ntt

import (
	"math/rand"
	"testing"

	"github.com/lookbusy1344/go-apfloat/modmath"
	"github.com/lookbusy1344/go-apfloat/ntt/registry"
	"github.com/lookbusy1344/go-apfloat/storage"
)

// ntPrime is the canonical 998244353 = 119*2^23+1 NTT-friendly prime,
// supporting power-of-two transforms up to length 2^23.
var ntPrime = modmath.NewPrime32(998244353)

// factor3Prime is 2013265921 = 15*2^27+1, whose order-(p-1) group has
// both a large power-of-two subgroup and a subgroup of order 3, so it
// additionally supports the factor-3 NTT path.
var factor3Prime = modmath.NewPrime32(2013265921)

func randomData(rng *rand.Rand, n int, modulus uint64) []uint64 {
	data := make([]uint64, n)
	for i := range data {
		data[i] = uint64(rng.Int63n(int64(modulus)))
	}
	return data
}

func TestForwardInverseRoundTrip(t *testing.T) {
	registry.Clear()
	rng := rand.New(rand.NewSource(42))
	const maxLogN = 10
	for _, n := range []int{2, 4, 16, 256, 1024} {
		data := randomData(rng, n, ntPrime.Modulus())
		orig := append([]uint64(nil), data...)

		if err := Forward(ntPrime, data, maxLogN); err != nil {
			t.Fatalf("Forward(n=%d): %v", n, err)
		}
		if err := Inverse(ntPrime, data, maxLogN); err != nil {
			t.Fatalf("Inverse(n=%d): %v", n, err)
		}
		for i := range data {
			if data[i] != orig[i] {
				t.Fatalf("n=%d: round trip mismatch at %d: got %d, want %d", n, i, data[i], orig[i])
			}
		}
	}
}

func TestForwardMatchesNaiveDFT(t *testing.T) {
	registry.Clear()
	const n = 16
	const maxLogN = 8
	rng := rand.New(rand.NewSource(7))
	data := randomData(rng, n, ntPrime.Modulus())

	table, err := registry.Get(ntPrime, maxLogN)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	stride := uint64(1<<maxLogN) / uint64(n)
	root := table.Powers[stride] // a primitive n-th root: Powers[k] = Root^k, Root has order 2^maxLogN

	want := make([]uint64, n)
	for k := 0; k < n; k++ {
		acc := uint64(0)
		wk := registry.PowMod(ntPrime, root, uint64(k))
		cur := uint64(1)
		for j := 0; j < n; j++ {
			acc = ntPrime.Add(acc, ntPrime.Mul(data[j], cur))
			cur = ntPrime.Mul(cur, wk)
		}
		want[k] = acc
	}

	got := append([]uint64(nil), data...)
	if err := Forward(ntPrime, got, maxLogN); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("X[%d] = %d, want %d", k, got[k], want[k])
		}
	}
}

func TestSixStepMatchesSmallN(t *testing.T) {
	registry.Clear()
	const n1, n2 = 8, 8
	rng := rand.New(rand.NewSource(99))
	data := randomData(rng, int(n1*n2), ntPrime.Modulus())

	flat := append([]uint64(nil), data...)
	if err := Forward(ntPrime, flat, 6); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	s := storage.NewMemoryStorage(storage.Int64, n1*n2)
	defer s.Release()
	win, err := s.GetArray(storage.Write, 0, n1*n2)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i, v := range data {
		if err := win.SetInt64(int64(i), int64(v)); err != nil {
			t.Fatalf("SetInt64: %v", err)
		}
	}
	win.Close()

	if err := SixStepForward(ntPrime, s, n1, n2, 4); err != nil {
		t.Fatalf("SixStepForward: %v", err)
	}

	read, err := s.GetArray(storage.Read, 0, n1*n2)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	defer read.Close()
	for i := int64(0); i < n1*n2; i++ {
		v, err := read.GetInt64(i)
		if err != nil {
			t.Fatalf("GetInt64: %v", err)
		}
		if uint64(v) != flat[i] {
			t.Errorf("six-step X[%d] = %d, want %d (small-n)", i, v, flat[i])
		}
	}
}

func TestSixStepRoundTrip(t *testing.T) {
	registry.Clear()
	const n1, n2 = 16, 8
	rng := rand.New(rand.NewSource(123))
	data := randomData(rng, int(n1*n2), ntPrime.Modulus())

	s := storage.NewMemoryStorage(storage.Int64, n1*n2)
	defer s.Release()
	win, err := s.GetArray(storage.Write, 0, n1*n2)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i, v := range data {
		win.SetInt64(int64(i), int64(v))
	}
	win.Close()

	if err := SixStepForward(ntPrime, s, n1, n2, 4); err != nil {
		t.Fatalf("SixStepForward: %v", err)
	}
	if err := SixStepInverse(ntPrime, s, n1, n2, 4); err != nil {
		t.Fatalf("SixStepInverse: %v", err)
	}

	read, err := s.GetArray(storage.Read, 0, n1*n2)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	defer read.Close()
	for i, want := range data {
		v, err := read.GetInt64(int64(i))
		if err != nil {
			t.Fatalf("GetInt64: %v", err)
		}
		if uint64(v) != want {
			t.Errorf("round trip[%d] = %d, want %d", i, v, want)
		}
	}
}

func TestSixStepRoundTripDisk(t *testing.T) {
	registry.Clear()
	const n1, n2 = 16, 8
	rng := rand.New(rand.NewSource(321))
	data := randomData(rng, int(n1*n2), ntPrime.Modulus())

	path := t.TempDir() + "/sixstep.apf"
	s, err := storage.NewDiskStorage(storage.Int64, n1*n2, path, 64)
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}
	defer s.Release()

	win, err := s.GetArray(storage.Write, 0, n1*n2)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i, v := range data {
		win.SetInt64(int64(i), int64(v))
	}
	win.Close()

	if err := SixStepForward(ntPrime, s, n1, n2, 4); err != nil {
		t.Fatalf("SixStepForward: %v", err)
	}
	if err := SixStepInverse(ntPrime, s, n1, n2, 4); err != nil {
		t.Fatalf("SixStepInverse: %v", err)
	}

	read, err := s.GetArray(storage.Read, 0, n1*n2)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	defer read.Close()
	for i, want := range data {
		v, err := read.GetInt64(int64(i))
		if err != nil {
			t.Fatalf("GetInt64: %v", err)
		}
		if uint64(v) != want {
			t.Errorf("disk round trip[%d] = %d, want %d", i, v, want)
		}
	}
}

func TestFactor3RoundTrip(t *testing.T) {
	registry.Clear3()
	const maxLogN = 4 // M=16, N=48
	rng := rand.New(rand.NewSource(5))
	n := 3 * (1 << maxLogN)
	data := randomData(rng, n, factor3Prime.Modulus())
	orig := append([]uint64(nil), data...)

	if err := Forward3(factor3Prime, data, maxLogN); err != nil {
		t.Fatalf("Forward3: %v", err)
	}
	if err := Inverse3(factor3Prime, data, maxLogN); err != nil {
		t.Fatalf("Inverse3: %v", err)
	}
	for i := range data {
		if data[i] != orig[i] {
			t.Errorf("factor-3 round trip mismatch at %d: got %d, want %d", i, data[i], orig[i])
		}
	}
}

func TestForwardRejectsNonPowerOfTwoLength(t *testing.T) {
	data := make([]uint64, 6)
	if err := Forward(ntPrime, data, 8); err == nil {
		t.Error("expected non-power-of-two length to be rejected")
	}
}

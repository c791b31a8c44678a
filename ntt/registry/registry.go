// Package registry caches the per-prime "transform context" of
// spec.md §3: a primitive 2^n-th root of unity and its precomputed
// twiddle powers, for the largest transform length that will be used
// under a given modulus. Entries are invalidated wholesale by Clear,
// which cmd/apfloatpi registers through apcontext.RegisterCleanup;
// apcontext runs the registered cleanups from its shutdown hook and
// when Set changes builderFactory.
package registry

import (
	"sync"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/modmath"
)

// Key identifies a cached Table.
type Key struct {
	Modulus uint64
	MaxLogN int
}

// Table holds a field's twiddle factors for transform lengths up to
// 2^MaxLogN. Powers[k] = Root^k for k in [0, 2^MaxLogN / 2); an inner
// transform of a shorter power-of-two length L reads this table with a
// stride of 2^MaxLogN/L (spec.md §4.4 "twiddle tables are cached per
// prime per maximum N").
type Table struct {
	Field     modmath.Field
	MaxLogN   int
	Root      uint64
	RootInv   uint64
	Powers    []uint64
	PowersInv []uint64
}

var (
	mu    sync.Mutex
	cache = map[Key]*Table{}
)

// Get returns the cached Table for (field, maxLogN), building it if
// absent.
func Get(field modmath.Field, maxLogN int) (*Table, error) {
	key := Key{Modulus: field.Modulus(), MaxLogN: maxLogN}

	mu.Lock()
	if t, ok := cache[key]; ok {
		mu.Unlock()
		return t, nil
	}
	mu.Unlock()

	t, err := build(field, maxLogN)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	cache[key] = t
	mu.Unlock()
	return t, nil
}

// Clear empties the table cache (spec.md §4.1 "cleanupAtExit" and §4.4
// "invalidated when builderFactory changes").
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	cache = map[Key]*Table{}
}

func build(field modmath.Field, maxLogN int) (*Table, error) {
	m := field.Modulus()
	s := twoAdicValuation(m - 1)
	if maxLogN > s {
		return nil, &aferrors.PrecisionError{Message: "modulus does not support a transform of the requested length"}
	}

	g, err := findPrimitiveRoot(field)
	if err != nil {
		return nil, err
	}

	n := uint64(1) << uint(maxLogN)
	root := PowMod(field, g, (m-1)/n)
	rootInv := InverseMod(field, root)

	half := n / 2
	powers := make([]uint64, half)
	powersInv := make([]uint64, half)
	cur, curInv := uint64(1), uint64(1)
	for k := uint64(0); k < half; k++ {
		powers[k] = cur
		powersInv[k] = curInv
		cur = field.Mul(cur, root)
		curInv = field.Mul(curInv, rootInv)
	}

	return &Table{
		Field: field, MaxLogN: maxLogN,
		Root: root, RootInv: rootInv,
		Powers: powers, PowersInv: powersInv,
	}, nil
}

// PowMod computes base^exp mod field.Modulus(), generically over any
// Field implementation.
func PowMod(field modmath.Field, base, exp uint64) uint64 {
	m := field.Modulus()
	result := uint64(1) % m
	b := base % m
	for exp > 0 {
		if exp&1 == 1 {
			result = field.Mul(result, b)
		}
		b = field.Mul(b, b)
		exp >>= 1
	}
	return result
}

// InverseMod computes a's multiplicative inverse mod field.Modulus()
// via Fermat's little theorem.
func InverseMod(field modmath.Field, a uint64) uint64 {
	return PowMod(field, a, field.Modulus()-2)
}

// Key3 identifies a cached Table3.
type Key3 struct {
	Modulus uint64
	MaxLogN int
}

// Table3 holds the extra twiddle factors the factor-3 NTT layer needs
// on top of the ordinary power-of-two Table: a primitive cube root of
// unity for the radix-3 butterfly, and the per-k0 twiddle omega_N^k0,
// omega_N^2k0 for the length N=3*2^MaxLogN transform (spec.md §4.4
// "Factor-3: one radix-3 butterfly layer outside the 2^n core").
type Table3 struct {
	Field     modmath.Field
	MaxLogN   int
	W3        uint64
	W3Sq      uint64
	TwiddleK  []uint64 // omega_N^k0, k0 in [0, 2^MaxLogN)
	TwiddleK2 []uint64 // omega_N^2k0
}

var (
	mu3    sync.Mutex
	cache3 = map[Key3]*Table3{}
)

// Get3 returns the cached Table3 for (field, maxLogN), building it if
// absent. The modulus must satisfy 3*2^maxLogN | (field.Modulus()-1).
func Get3(field modmath.Field, maxLogN int) (*Table3, error) {
	key := Key3{Modulus: field.Modulus(), MaxLogN: maxLogN}

	mu3.Lock()
	if t, ok := cache3[key]; ok {
		mu3.Unlock()
		return t, nil
	}
	mu3.Unlock()

	t, err := build3(field, maxLogN)
	if err != nil {
		return nil, err
	}

	mu3.Lock()
	cache3[key] = t
	mu3.Unlock()
	return t, nil
}

// Clear3 empties the factor-3 table cache.
func Clear3() {
	mu3.Lock()
	defer mu3.Unlock()
	cache3 = map[Key3]*Table3{}
}

func build3(field modmath.Field, maxLogN int) (*Table3, error) {
	m := field.Modulus()
	if (m-1)%3 != 0 {
		return nil, &aferrors.PrecisionError{Message: "modulus has no cube root of unity; factor-3 NTT unavailable"}
	}
	n := uint64(3) << uint(maxLogN) // full transform length N = 3*2^maxLogN
	if (m-1)%n != 0 {
		return nil, &aferrors.PrecisionError{Message: "modulus does not support a factor-3 transform of the requested length"}
	}

	g, err := findPrimitiveRoot(field)
	if err != nil {
		return nil, err
	}

	omega := PowMod(field, g, (m-1)/n)
	w3 := PowMod(field, g, (m-1)/3)
	w3Sq := field.Mul(w3, w3)

	half := uint64(1) << uint(maxLogN)
	twiddleK := make([]uint64, half)
	twiddleK2 := make([]uint64, half)
	cur := uint64(1)
	for k := uint64(0); k < half; k++ {
		twiddleK[k] = cur
		twiddleK2[k] = field.Mul(cur, cur)
		cur = field.Mul(cur, omega)
	}

	return &Table3{
		Field: field, MaxLogN: maxLogN,
		W3: w3, W3Sq: w3Sq,
		TwiddleK: twiddleK, TwiddleK2: twiddleK2,
	}, nil
}

func twoAdicValuation(n uint64) int {
	s := 0
	for n != 0 && n%2 == 0 {
		n /= 2
		s++
	}
	return s
}

func primeFactors(n uint64) []uint64 {
	var factors []uint64
	for p := uint64(2); p*p <= n; p++ {
		if n%p == 0 {
			factors = append(factors, p)
			for n%p == 0 {
				n /= p
			}
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}

// findPrimitiveRoot finds a generator of field's full multiplicative
// group (order field.Modulus()-1) by trial, per the standard technique:
// g generates iff g^((M-1)/q) != 1 for every prime factor q of M-1.
func findPrimitiveRoot(field modmath.Field) (uint64, error) {
	m := field.Modulus()
	factors := primeFactors(m - 1)

	for g := uint64(2); g < m; g++ {
		isGenerator := true
		for _, q := range factors {
			if PowMod(field, g, (m-1)/q) == 1 {
				isGenerator = false
				break
			}
		}
		if isGenerator {
			return g, nil
		}
	}
	return 0, &aferrors.InternalError{Message: "no primitive root found; modulus is not prime"}
}

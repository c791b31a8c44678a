package convolution

import (
	"math/big"
	"math/bits"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/lookbusy1344/go-apfloat/modmath"
	"github.com/lookbusy1344/go-apfloat/ntt"
	"github.com/lookbusy1344/go-apfloat/storage"
)

// crtPrimes are the three fixed NTT-friendly primes spec.md §4.3
// describes as "fixed, each just below 2^31": the canonical
// competitive-programming NTT primes 119*2^23+1, 5*2^25+1, 7*2^26+1.
// None of the three has a cube root of unity (their M-1 values are not
// divisible by 3), so the CRT convolution tier only ever chooses a
// power-of-two transform length; the factor-3 path stays available at
// the ntt package layer for single-modulus use, just not here.
var crtPrimes = [3]modmath.Prime32{
	modmath.NewPrime32(998244353),
	modmath.NewPrime32(167772161),
	modmath.NewPrime32(469762049),
}

// sixStepThreshold is the transform length at or above which the
// large-tier multiply switches from the flat small-n NTT to the
// six-step decomposition, so that very long transforms are not limited
// by the O(n) twiddle-table scan of the flat path and can run over
// disk-resident storage column by column.
const sixStepThreshold = 1 << 12

func nttMultiply(ctx *apcontext.Context, a, b []uint64, radix uint64) ([]uint64, error) {
	length := int64(len(a) + len(b))
	n := nextPow2(length)
	maxLogN := log2(n)

	if err := checkPrecision(n, radix); err != nil {
		return nil, err
	}

	factory := storage.NewFactory(ctx)
	residues := make([][]uint64, len(crtPrimes))

	for i, field := range crtPrimes {
		sa, err := factory.New(storage.Int64, n)
		if err != nil {
			return nil, err
		}
		sb, err := factory.New(storage.Int64, n)
		if err != nil {
			sa.Release()
			return nil, err
		}

		if err := writeMantissa(sa, a); err != nil {
			sa.Release()
			sb.Release()
			return nil, err
		}
		if err := writeMantissa(sb, b); err != nil {
			sa.Release()
			sb.Release()
			return nil, err
		}

		if err := transformForward(field, sa, n, maxLogN); err != nil {
			sa.Release()
			sb.Release()
			return nil, err
		}
		if err := transformForward(field, sb, n, maxLogN); err != nil {
			sa.Release()
			sb.Release()
			return nil, err
		}
		if err := pointwiseMultiply(field, sa, sb, n); err != nil {
			sa.Release()
			sb.Release()
			return nil, err
		}
		if err := transformInverse(field, sa, n, maxLogN); err != nil {
			sa.Release()
			sb.Release()
			return nil, err
		}

		residue, err := readAll(sa, n)
		sa.Release()
		sb.Release()
		if err != nil {
			return nil, err
		}
		residues[i] = residue
	}

	return crtRecombine(residues, n, radix, length)
}

// checkPrecision fails with PrecisionError (spec.md §4.5) when the
// three primes' product cannot represent a convolution sum of up to
// N*radix^2 (each term is a product of two radix-b digits, summed over
// up to N positions).
func checkPrecision(n int64, radix uint64) error {
	bound := new(big.Int).SetUint64(radix)
	bound.Mul(bound, bound)
	bound.Mul(bound, big.NewInt(n))

	product := big.NewInt(1)
	for _, p := range crtPrimes {
		product.Mul(product, new(big.Int).SetUint64(p.Modulus()))
	}
	if bound.Cmp(product) > 0 {
		return &aferrors.PrecisionError{Message: "convolution sum exceeds the three fixed primes' combined range; use a wider element type"}
	}
	return nil
}

func writeMantissa(s storage.Storage, digits []uint64) error {
	win, err := s.GetArray(storage.Write, 0, s.Len())
	if err != nil {
		return err
	}
	defer win.Close()
	for i := int64(0); i < s.Len(); i++ {
		var v int64
		if i < int64(len(digits)) {
			v = int64(digits[i])
		}
		if err := win.SetInt64(i, v); err != nil {
			return err
		}
	}
	return nil
}

func readAll(s storage.Storage, n int64) ([]uint64, error) {
	win, err := s.GetArray(storage.Read, 0, n)
	if err != nil {
		return nil, err
	}
	defer win.Close()
	out := make([]uint64, n)
	for i := int64(0); i < n; i++ {
		v, err := win.GetInt64(i)
		if err != nil {
			return nil, err
		}
		out[i] = uint64(v)
	}
	return out, nil
}

func pointwiseMultiply(field modmath.Field, sa, sb storage.Storage, n int64) error {
	wa, err := sa.GetArray(storage.ReadWrite, 0, n)
	if err != nil {
		return err
	}
	defer wa.Close()
	wb, err := sb.GetArray(storage.Read, 0, n)
	if err != nil {
		return err
	}
	defer wb.Close()

	for i := int64(0); i < n; i++ {
		va, err := wa.GetInt64(i)
		if err != nil {
			return err
		}
		vb, err := wb.GetInt64(i)
		if err != nil {
			return err
		}
		if err := wa.SetInt64(i, int64(field.Mul(uint64(va), uint64(vb)))); err != nil {
			return err
		}
	}
	return nil
}

func transformForward(field modmath.Field, s storage.Storage, n int64, maxLogN int) error {
	if n < sixStepThreshold {
		return flatTransform(field, s, n, maxLogN, false)
	}
	n1, n2 := splitDimensions(n)
	return ntt.SixStepForward(field, s, n1, n2, 0)
}

func transformInverse(field modmath.Field, s storage.Storage, n int64, maxLogN int) error {
	if n < sixStepThreshold {
		return flatTransform(field, s, n, maxLogN, true)
	}
	n1, n2 := splitDimensions(n)
	return ntt.SixStepInverse(field, s, n1, n2, 0)
}

func flatTransform(field modmath.Field, s storage.Storage, n int64, maxLogN int, inverse bool) error {
	win, err := s.GetArray(storage.ReadWrite, 0, n)
	if err != nil {
		return err
	}
	defer win.Close()

	data := make([]uint64, n)
	for i := int64(0); i < n; i++ {
		v, err := win.GetInt64(i)
		if err != nil {
			return err
		}
		data[i] = uint64(v)
	}

	var transformErr error
	if inverse {
		transformErr = ntt.Inverse(field, data, maxLogN)
	} else {
		transformErr = ntt.Forward(field, data, maxLogN)
	}
	if transformErr != nil {
		return transformErr
	}

	for i, v := range data {
		if err := win.SetInt64(int64(i), int64(v)); err != nil {
			return err
		}
	}
	return nil
}

// splitDimensions picks N1, N2 (both powers of two, N1*N2 == n) as
// close to sqrt(n) as possible for the six-step decomposition.
func splitDimensions(n int64) (int64, int64) {
	logN := log2(n)
	logN1 := logN / 2
	n1 := int64(1) << uint(logN1)
	n2 := n / n1
	return n1, n2
}

func nextPow2(n int64) int64 {
	if n <= 1 {
		return 1
	}
	return int64(1) << uint(bits.Len64(uint64(n-1)))
}

func log2(n int64) int { return bits.Len64(uint64(n)) - 1 }

// crtRecombine reconstructs, for each position, the unique wide integer
// congruent to every prime's residue mod the three primes' product
// (Garner's algorithm), then carry-propagates the resulting sequence of
// wide integers in radix b into a length-sized mantissa (spec.md §4.5
// steps 3-4).
func crtRecombine(residues [][]uint64, n int64, radix uint64, length int64) ([]uint64, error) {
	p0 := new(big.Int).SetUint64(crtPrimes[0].Modulus())
	p1 := new(big.Int).SetUint64(crtPrimes[1].Modulus())
	p2 := new(big.Int).SetUint64(crtPrimes[2].Modulus())

	inv01 := modInverse(p0, p1)
	p0p1 := new(big.Int).Mul(p0, p1)
	inv0112 := modInverse(p0p1, p2)

	bigRadix := new(big.Int).SetUint64(radix)
	result := make([]uint64, length)
	carry := new(big.Int)

	r0, r1, r2 := new(big.Int), new(big.Int), new(big.Int)
	t1, t2, acc := new(big.Int), new(big.Int), new(big.Int)
	v, q, rem := new(big.Int), new(big.Int), new(big.Int)

	for i := int64(0); i < n; i++ {
		r0.SetUint64(residues[0][i])
		r1.SetUint64(residues[1][i])
		r2.SetUint64(residues[2][i])

		// t1 = (r1 - r0) * inv01 mod p1
		t1.Sub(r1, r0)
		t1.Mul(t1, inv01)
		t1.Mod(t1, p1)

		// acc = r0 + t1*p0   (CRT value mod p0*p1)
		acc.Mul(t1, p0)
		acc.Add(acc, r0)

		// t2 = (r2 - acc) * inv0112 mod p2
		t2.Sub(r2, acc)
		t2.Mul(t2, inv0112)
		t2.Mod(t2, p2)

		// v = acc + t2*p0*p1  (CRT value mod p0*p1*p2), then add carry
		v.Mul(t2, p0p1)
		v.Add(v, acc)
		v.Add(v, carry)

		if i < length {
			q.DivMod(v, bigRadix, rem)
			result[i] = rem.Uint64()
			carry.Set(q)
		} else {
			// Positions at or beyond the requested output length must
			// be exact zero convolution terms; a nonzero value there
			// (carry included) is reported as an InternalError.
			if v.Sign() != 0 {
				return nil, &aferrors.InternalError{Message: "convolution produced a nonzero term beyond the requested output length"}
			}
		}
	}

	if carry.Sign() != 0 {
		return nil, &aferrors.InternalError{Message: "convolution carry overflowed the requested output length"}
	}
	return result, nil
}

func modInverse(m, mod *big.Int) *big.Int {
	return new(big.Int).ModInverse(new(big.Int).Mod(m, mod), mod)
}

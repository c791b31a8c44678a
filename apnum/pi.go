package apnum

import (
	"context"
	"math"

	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/lookbusy1344/go-apfloat/apnum/registry"
	"github.com/lookbusy1344/go-apfloat/parallel"
)

// chudnovskyC3Over24 is 640320^3/24, the Chudnovsky series' constant
// Q(n) factor for n>=1 (spec.md §8 scenario 4).
const chudnovskyC3Over24 = 10939058860032000

// decimalDigitsPerTerm is how many base-10 digits of pi each
// Chudnovsky term contributes; used only to size the term count, not
// for correctness.
const decimalDigitsPerTerm = 14.1816474627254776555

// chudnovskyLeaf computes the single-term (P,Q,T) triple at index n
// (spec.md §4.7 "Base (single node)"), following the standard
// Chudnovsky binary-splitting recurrence:
//
//	P(0)=Q(0)=1
//	P(n) = (6n-5)(2n-1)(6n-1), Q(n) = n^3 * 640320^3/24,  n>=1
//	T(n) = (-1)^n * P(n) * (13591409 + 545140134n)
//
// parallel.Number's (T,Q,P) naming maps to the series' own (T,Q,P) in
// the same order: the leaf returns (t,q,p) = (T(n),Q(n),P(n)).
func chudnovskyLeaf(apctx *apcontext.Context, n int64) (t, q, p *Apint, err error) {
	radix := apctx.DefaultRadix

	if n == 0 {
		p = NewApintFromInt64(1, radix)
		q = NewApintFromInt64(1, radix)
	} else {
		p = NewApintFromInt64((6*n-5)*(2*n-1)*(6*n-1), radix)
		n3, err := NewApintFromInt64(n, radix).Mul(apctx, NewApintFromInt64(n, radix))
		if err != nil {
			return nil, nil, nil, err
		}
		n3, err = n3.Mul(apctx, NewApintFromInt64(n, radix))
		if err != nil {
			return nil, nil, nil, err
		}
		q, err = n3.Mul(apctx, NewApintFromInt64(chudnovskyC3Over24, radix))
		if err != nil {
			return nil, nil, nil, err
		}
	}

	a := NewApintFromInt64(13591409, radix)
	bn, err := NewApintFromInt64(545140134, radix).Mul(apctx, NewApintFromInt64(n, radix))
	if err != nil {
		return nil, nil, nil, err
	}
	sum, err := a.Add(bn)
	if err != nil {
		return nil, nil, nil, err
	}
	t, err = p.Mul(apctx, sum)
	if err != nil {
		return nil, nil, nil, err
	}
	if n%2 != 0 {
		t = t.Neg()
	}
	return t, q, p, nil
}

// Pi computes pi to precision significant digits in the given radix
// using numberOfProcessors worker nodes (spec.md §8 scenario 4: "1
// thread and 4 threads match bit-for-bit"). The node weight passed to
// parallel.Split is deterministic given numberOfProcessors, so the
// binary-split tree shape — and therefore the combine order and
// result — does not depend on how the runtime happens to schedule
// goroutines. Results are cached in apnum/registry keyed by
// (radix,precision) only, deliberately excluding numberOfProcessors:
// the bit-for-bit determinism above means a cached value computed with
// any thread count is valid for every thread count.
func Pi(ctx context.Context, apctx *apcontext.Context, radix int, precision int64, numberOfProcessors int) (*Apfloat, error) {
	key := registry.Key{Name: "pi", Radix: radix, Precision: precision}
	v, err := registry.Get(key, func() (any, error) {
		return computePi(ctx, apctx, radix, precision, numberOfProcessors)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Apfloat), nil
}

// computePi performs the actual Chudnovsky binary-splitting
// computation; Pi wraps it with apnum/registry's cache.
func computePi(ctx context.Context, apctx *apcontext.Context, radix int, precision int64, numberOfProcessors int) (*Apfloat, error) {
	if err := checkRadix(radix); err != nil {
		return nil, err
	}
	workApctx := apctx.Clone(true)
	workApctx.DefaultRadix = radix

	digitsInRadix := float64(precision) * math.Log(float64(radix)) / math.Log(10)
	terms := int64(digitsInRadix/decimalDigitsPerTerm) + 2

	grpCtx, grp, exec := parallel.NewContext(ctx, numberOfProcessors)

	workingPrecision := precision + GuardDigits
	var invSqrtF *Apfloat
	var fErr error
	fDone := make(chan struct{})
	if numberOfProcessors >= 2 {
		exec.Go(func() {
			defer close(fDone)
			invSqrtF, fErr = InverseSqrt(workApctx, NewApintFromInt64(640320, radix).ToApfloat(Infinite), workingPrecision)
		})
	} else {
		invSqrtF, fErr = InverseSqrt(workApctx, NewApintFromInt64(640320, radix).ToApfloat(Infinite), workingPrecision)
		close(fDone)
	}

	// The n=0 term enters as 13591409*Q below, so the split covers [1, terms).
	tAcc, qAcc, _, splitErr := parallel.Split[*Apint](grpCtx, workApctx, exec, chudnovskyLeaf, 1, terms, numberOfProcessors)

	<-fDone
	if splitErr != nil {
		return nil, splitErr
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	if fErr != nil {
		return nil, fErr
	}

	// pi = Q*640320 / (12*F*(13591409*Q+T)), F = 1/sqrt(640320).
	thirteenM, err := NewApintFromInt64(13591409, radix).Mul(workApctx, qAcc)
	if err != nil {
		return nil, err
	}
	denomInt, err := thirteenM.Add(tAcc)
	if err != nil {
		return nil, err
	}
	numerInt, err := qAcc.Mul(workApctx, NewApintFromInt64(640320, radix))
	if err != nil {
		return nil, err
	}

	numer := numerInt.ToApfloat(workingPrecision)
	denomFloat := denomInt.ToApfloat(workingPrecision)
	twelveF, err := invSqrtF.Mul(workApctx, NewApintFromInt64(12, radix).ToApfloat(Infinite))
	if err != nil {
		return nil, err
	}
	denom, err := denomFloat.Mul(workApctx, twelveF)
	if err != nil {
		return nil, err
	}
	result, err := Div(workApctx, numer, denom)
	if err != nil {
		return nil, err
	}
	return result.withPrecision(precision), nil
}

package parallel

import (
	"context"
	"sync"

	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/apcontext"
)

// Number is the minimal arithmetic Split needs from a binary-splitting
// term type (spec.md §4.7's T,Q,P triple): exact addition and
// multiplication against the shared apcontext.Context, with itself as
// both receiver and argument type. *apnum.Apint satisfies this without
// apnum needing to import this package to prove it (structural
// interface satisfaction, checked at Split's call site).
type Number[T any] interface {
	Add(other T) (T, error)
	Mul(ctx *apcontext.Context, other T) (T, error)
}

// LeafFunc computes the single-term (T,Q,P) triple at index n, the
// "Base (single node)" case of spec.md §4.7.
type LeafFunc[T Number[T]] func(apctx *apcontext.Context, n int64) (t, q, p T, err error)

// SequentialRange folds LeafFunc over [n1,n2) left to right using the
// same combine formula Split uses between subtrees, the "compute the
// interval's (T,Q,P) by the sequential recurrence" base case.
func SequentialRange[T Number[T]](apctx *apcontext.Context, leaf LeafFunc[T], n1, n2 int64) (t, q, p T, err error) {
	t, q, p, err = leaf(apctx, n1)
	if err != nil {
		return t, q, p, err
	}
	for n := n1 + 1; n < n2; n++ {
		tn, qn, pn, lerr := leaf(apctx, n)
		if lerr != nil {
			return t, q, p, lerr
		}
		t, q, p, err = combine(apctx, t, q, p, tn, qn, pn, 1)
		if err != nil {
			return t, q, p, err
		}
	}
	return t, q, p, nil
}

// combine implements spec.md §4.7's recombination:
// T = Q_R·T_L + P_L·T_R; Q = Q_L·Q_R; P = P_L·P_R. When weight >= 4 it
// runs the four independent products concurrently (spec.md §4.7: "up
// to four of these combining multiplies may run in parallel when >=4
// nodes are free").
func combine[T Number[T]](apctx *apcontext.Context, tl, ql, pl, tr, qr, pr T, weight int) (t, q, p T, err error) {
	if weight < 4 {
		qrtl, e := qr.Mul(apctx, tl)
		if e != nil {
			return t, q, p, e
		}
		pltr, e := pl.Mul(apctx, tr)
		if e != nil {
			return t, q, p, e
		}
		t, err = qrtl.Add(pltr)
		if err != nil {
			return t, q, p, err
		}
		q, err = ql.Mul(apctx, qr)
		if err != nil {
			return t, q, p, err
		}
		p, err = pl.Mul(apctx, pr)
		return t, q, p, err
	}

	var qrtl, pltr T
	errs := make([]error, 4)
	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); qrtl, errs[0] = qr.Mul(apctx, tl) }()
	go func() { defer wg.Done(); pltr, errs[1] = pl.Mul(apctx, tr) }()
	go func() { defer wg.Done(); q, errs[2] = ql.Mul(apctx, qr) }()
	go func() { defer wg.Done(); p, errs[3] = pl.Mul(apctx, pr) }()
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return t, q, p, e
		}
	}
	t, err = qrtl.Add(pltr)
	return t, q, p, err
}

// Split recursively splits [n1,n2) into two subranges whose weights
// are as equal as possible (spec.md §4.7's node-set apportioning),
// schedules the left half on exec and computes the right half inline,
// then joins and combines. ctx carries cooperative cancellation,
// sampled at every recursion entry (spec.md §4.7 "a cancellation
// signal ... propagates by an is_alive() check sampled at each
// recursion entry").
func Split[T Number[T]](ctx context.Context, apctx *apcontext.Context, exec apcontext.Executor, leaf LeafFunc[T], n1, n2 int64, weight int) (t, q, p T, err error) {
	if err := ctx.Err(); err != nil {
		return t, q, p, &aferrors.CancelledError{Message: err.Error()}
	}
	if weight <= 1 || n2-n1 <= 1 {
		t, q, p, err = SequentialRange(apctx, leaf, n1, n2)
		return t, q, p, err
	}

	leftWeight := weight / 2
	rightWeight := weight - leftWeight
	mid := n1 + (n2-n1)*int64(leftWeight)/int64(weight)
	if mid <= n1 {
		mid = n1 + 1
	}
	if mid >= n2 {
		mid = n2 - 1
	}

	var tl, ql, pl T
	var leftErr error
	done := make(chan struct{})
	exec.Go(func() {
		defer close(done)
		tl, ql, pl, leftErr = Split(ctx, apctx, exec, leaf, n1, mid, leftWeight)
	})

	tr, qr, pr, rightErr := Split(ctx, apctx, exec, leaf, mid, n2, rightWeight)
	<-done

	if leftErr != nil {
		return t, q, p, leftErr
	}
	if rightErr != nil {
		return t, q, p, rightErr
	}
	return combine(apctx, tl, ql, pl, tr, qr, pr, weight)
}

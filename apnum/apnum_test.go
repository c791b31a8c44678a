package apnum

import (
	"testing"

	"github.com/lookbusy1344/go-apfloat/apcontext"
)

// testContext mirrors convolution_test.go's helper: a default Context
// pointed at a scratch directory, so any path through convolution's
// large-operand tier has somewhere to put temporary files.
func testContext(t *testing.T) *apcontext.Context {
	t.Helper()
	ctx := apcontext.NewDefaultContext()
	if err := ctx.Set("filePath", t.TempDir()+"/"); err != nil {
		t.Fatalf("Set filePath: %v", err)
	}
	if err := ctx.Set("fileSuffix", ".apf"); err != nil {
		t.Fatalf("Set fileSuffix: %v", err)
	}
	return ctx
}

func mustParse(t *testing.T, s string, radix int, precision int64) *Apfloat {
	t.Helper()
	v, err := Parse(s, radix, precision)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return v
}

// approxEqual reports whether got and want agree to within guardSlack
// digits of their common precision; transcendental/Newton results carry
// a few guard digits of uncertainty in their very last places, so exact
// string equality is the wrong tool for round-trip checks on them.
func approxEqual(t *testing.T, got, want *Apfloat, guardSlack int64) bool {
	t.Helper()
	diff, err := got.Sub(want)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.IsZero() {
		return true
	}
	return diff.Scale() <= want.Scale()-guardSlack
}

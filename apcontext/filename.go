package apcontext

import (
	"strconv"
	"sync/atomic"
)

// FilenameGenerator produces the temporary-file name scheme of spec.md
// §6: "{filePath}{counter}{fileSuffix}" where counter starts at
// fileInitialValue and increments monotonically per allocation. Distinct
// generators must use disjoint ranges — that is the caller's
// responsibility (spec.md §6), not enforced here.
type FilenameGenerator struct {
	path    string
	suffix  string
	counter atomic.Int64
}

// NewFilenameGenerator builds a generator seeded at initial.
func NewFilenameGenerator(path string, initial int64, suffix string) *FilenameGenerator {
	g := &FilenameGenerator{path: path, suffix: suffix}
	g.counter.Store(initial)
	return g
}

// Next returns the next name in the sequence and advances the counter.
func (g *FilenameGenerator) Next() string {
	n := g.counter.Add(1) - 1
	return g.path + strconv.FormatInt(n, 10) + g.suffix
}

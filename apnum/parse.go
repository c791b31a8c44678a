package apnum

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// Parse reads a signed literal in the given radix (spec.md §6): decimal
// point, and an `e`/`E` exponent (always written in decimal regardless
// of radix) are both optional. precision may be Infinite. Malformed
// input fails with aferrors.ParseError carrying the byte index.
func Parse(s string, radix int, precision int64) (*Apfloat, error) {
	if err := checkRadix(radix); err != nil {
		return nil, err
	}

	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}

	sign := 1
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}

	var digits []uint64
	intLen := 0
	for i < len(s) {
		v, ok := digitValue(rune(s[i]))
		if !ok || v >= radix {
			break
		}
		digits = append(digits, uint64(v))
		intLen++
		i++
	}

	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) {
			v, ok := digitValue(rune(s[i]))
			if !ok || v >= radix {
				break
			}
			digits = append(digits, uint64(v))
			i++
		}
	}

	if len(digits) == 0 {
		return nil, parseErr(s, i, "expected at least one digit")
	}

	exponent := int64(0)
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		start := i
		i++
		expStart := i
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == expStart || (i == expStart+1 && (s[expStart] == '+' || s[expStart] == '-')) {
			return nil, parseErr(s, start, "malformed exponent")
		}
		e, err := strconv.ParseInt(s[start+1:i], 10, 64)
		if err != nil {
			return nil, parseErr(s, start, "exponent out of range")
		}
		exponent = e
	}

	if i != len(s) {
		return nil, parseErr(s, i, "unexpected trailing characters")
	}

	scale := int64(intLen) + exponent
	return newNormalized(radix, sign, scale, precision, digits), nil
}

// ParseInt reads an integer literal (spec.md §6: "an integer-typed
// parse rejects point and exponent"), used by Apint.
func ParseInt(s string, radix int) (*Apint, error) {
	if strings.ContainsAny(s, ".eE") {
		return nil, parseErr(s, strings.IndexAny(s, ".eE"), "integer literal may not contain a point or exponent")
	}
	f, err := Parse(s, radix, Infinite)
	if err != nil {
		return nil, err
	}
	return apfloatToApint(f)
}

func parseErr(s string, index int, msg string) error {
	var r rune
	if index < len(s) {
		r = rune(s[index])
	}
	return &aferrors.ParseError{Pos: aferrors.Position{Index: index, Rune: r}, Message: msg}
}

package encoder

import (
	"strconv"
	"strings"
)

// NumberStrategy selects how EncodeNumber builds values above nine when
// digit-mode is off.
type NumberStrategy string

const (
	// NumbersRecursive encodes the decimal text through EncodeString and
	// coerces it back: +("4"+"2").
	NumbersRecursive NumberStrategy = "recursive"

	// NumbersAdditive sums trues: !![]+!![]+... It never recurses into the
	// character cache but grows linearly with the value.
	NumbersAdditive NumberStrategy = "additive"
)

// maxAdditive bounds the additive strategy; larger values use the
// recursive path instead.
const maxAdditive = 1 << 12

// ParseNumberStrategy maps a config value to a strategy. Empty selects the
// recursive default.
func ParseNumberStrategy(s string) (NumberStrategy, bool) {
	switch NumberStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", NumbersRecursive:
		return NumbersRecursive, true
	case NumbersAdditive:
		return NumbersAdditive, true
	}
	return "", false
}

type numeralTable [10]string

func buildNumerals(digitMode bool) numeralTable {
	var t numeralTable
	for k := range t {
		if digitMode {
			t[k] = strconv.Itoa(k)
		} else {
			t[k] = additive(k)
		}
	}
	return t
}

// additive builds n from the zero and one derivations: +[] and +!![], then
// !![] added to itself n times.
func additive(n int) string {
	switch n {
	case 0:
		return litZero
	case 1:
		return litOne
	}
	return litTrue + strings.Repeat("+"+litTrue, n-1)
}

// digitFragment is the cache entry for digit k: the numeral stringified.
func (e *Encoder) digitFragment(k int) string {
	return "(" + toStr(e.numerals[k]) + ")"
}

// number returns an expression evaluating to the non-negative integer n,
// for use as an index or call argument. Values above nine are the
// concatenated digit characters coerced to a number, so every digit must
// already be cached.
func (e *Encoder) number(n int) string {
	if e.digitMode {
		return strconv.Itoa(n)
	}
	if n >= 0 && n <= 9 {
		return e.numerals[n]
	}
	dec := strconv.Itoa(n)
	parts := make([]string, 0, len(dec))
	for _, d := range dec {
		parts = append(parts, e.digitFragment(int(d-'0')))
	}
	return toNum(concat(parts...))
}

package encoder

import "strings"

// =============================================================================
// PRIMITIVE LITERAL LAYER
// =============================================================================
// Everything the encoder emits is composed from these forms. Nothing here is
// derived; the target grammar is assumed to accept them.

const (
	emptySeq = "[]"
	emptyMap = "{}"
)

func not(x string) string { return "!" + x }

func asNum(x string) string { return "+" + x }

// toNum coerces a parenthesised expression to a number.
func toNum(x string) string { return "+(" + x + ")" }

// toStr forces the textual form of x: x+[] concatenates with an empty
// sequence, which stringifies both sides.
func toStr(x string) string { return x + "+" + emptySeq }

func index(src, idx string) string { return "(" + src + ")[" + idx + "]" }

func member(recv, name string) string { return recv + "[" + name + "]" }

func call(fn, arg string) string { return fn + "(" + arg + ")" }

func concat(parts ...string) string { return strings.Join(parts, "+") }

// =============================================================================
// BOOTSTRAP DERIVATION LAYER
// =============================================================================

var (
	litFalse = not(emptySeq)     // ![]   -> false
	litTrue  = not(litFalse)     // !![]  -> true
	litNaN   = asNum(emptyMap)   // +{}   -> NaN
	litZero  = asNum(emptySeq)   // +[]   -> 0
	litOne   = asNum(litTrue)    // +!![] -> 1
	objStr   = emptySeq + litNaN // []+{} -> "[object Object]"
	emptyStr = toStr(emptySeq)   // []+[] -> ""
)

// source is a canonical string with a known textual value.
type source struct {
	text string
	expr string
}

// bootstrapSources are the stage-one canonical strings. undefined needs the
// zero numeral, so it is built once the numeral table exists.
func bootstrapSources(zero string) []source {
	return []source{
		{text: "false", expr: toStr(litFalse)},
		{text: "true", expr: toStr(litTrue)},
		{text: "NaN", expr: toStr(litNaN)},
		{text: "undefined", expr: toStr(emptySeq + "[" + zero + "]")},
		{text: "[object Object]", expr: objStr},
	}
}

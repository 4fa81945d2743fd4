package encoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hieroglyphy/internal/evaluator"
)

func eval(t *testing.T, ev *evaluator.Goja, src string) evaluator.Result {
	t.Helper()
	res, err := ev.Eval(context.Background(), src)
	require.NoError(t, err)
	return res
}

func TestRoundTripASCII(t *testing.T) {
	for _, digitMode := range []bool{false, true} {
		opts := DefaultOptions()
		opts.DigitMode = digitMode
		enc := newTestEncoder(t, opts)
		ev, err := evaluator.NewGoja()
		require.NoError(t, err)

		for c := rune(0); c < 128; c++ {
			out, err := enc.EncodeString(string(c))
			require.NoError(t, err, "char %q", c)
			res := eval(t, ev, out)
			assert.Equal(t, "string", res.Type, "char %q", c)
			assert.Equal(t, string(c), res.String, "char %q", c)
		}
	}
}

func TestRoundTripStrings(t *testing.T) {
	enc := newTestEncoder(t, DefaultOptions())
	ev, err := evaluator.NewGoja()
	require.NoError(t, err)

	for _, text := range []string{"", "foo", "bαr", "naïve café", "日本語", "😀", "function String() { [native code] }"} {
		out, err := enc.EncodeString(text)
		require.NoError(t, err)
		res := eval(t, ev, out)
		assert.Equal(t, "string", res.Type, "text %q", text)
		assert.Equal(t, text, res.String)
	}
}

func TestRoundTripNumbers(t *testing.T) {
	strategies := []NumberStrategy{NumbersRecursive, NumbersAdditive}
	for _, numbers := range strategies {
		opts := DefaultOptions()
		opts.Numbers = numbers
		enc := newTestEncoder(t, opts)
		ev, err := evaluator.NewGoja()
		require.NoError(t, err)

		for n := int64(0); n <= 300; n++ {
			out, err := enc.EncodeNumber(n)
			require.NoError(t, err)
			res := eval(t, ev, out)
			assert.Equal(t, "number", res.Type, "%s n=%d", numbers, n)
			assert.Equal(t, float64(n), res.Number, "%s n=%d", numbers, n)
		}
		for _, n := range []int64{-1, -42, -100000, 123456789} {
			out, err := enc.EncodeNumber(n)
			require.NoError(t, err)
			res := eval(t, ev, out)
			assert.Equal(t, float64(n), res.Number, "%s n=%d", numbers, n)
		}
	}
}

func TestRoundTripDigitModeNumbers(t *testing.T) {
	opts := DefaultOptions()
	opts.DigitMode = true
	enc := newTestEncoder(t, opts)
	ev, err := evaluator.NewGoja()
	require.NoError(t, err)

	for _, n := range []int64{0, 9, 10, 999, -7} {
		out, err := enc.EncodeNumber(n)
		require.NoError(t, err)
		res := eval(t, ev, out)
		assert.Equal(t, float64(n), res.Number, "n=%d", n)
	}
}

func TestRoundTripScript(t *testing.T) {
	enc := newTestEncoder(t, DefaultOptions())
	ev, err := evaluator.NewGoja()
	require.NoError(t, err)

	require.NoError(t, ev.SetGlobal("testString", "foo"))
	out, err := enc.EncodeScript(`global.testString = "bαr"`)
	require.NoError(t, err)
	eval(t, ev, out)

	got, ok := ev.Global("testString")
	require.True(t, ok)
	assert.Equal(t, "bαr", got.String)

	out, err = enc.EncodeScript("x = 1 + 1")
	require.NoError(t, err)
	eval(t, ev, out)
	x, ok := ev.Global("x")
	require.True(t, ok)
	assert.Equal(t, float64(2), x.Number)
}

func TestEveryEntryEvaluatesToItsCharacter(t *testing.T) {
	enc := newTestEncoder(t, DefaultOptions())
	ev, err := evaluator.NewGoja()
	require.NoError(t, err)

	for _, entry := range enc.Entries() {
		res := eval(t, ev, entry.Fragment)
		assert.Equal(t, string(entry.Char), res.String, "%s entry %q", entry.Rule, entry.Char)
	}
}

package evaluator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGojaEval(t *testing.T) {
	ev, err := NewGoja()
	require.NoError(t, err)

	tests := []struct {
		name   string
		src    string
		typ    string
		str    string
		number float64
	}{
		{"false", "![]+[]", "string", "false", 0},
		{"one", "+!![]", "number", "", 1},
		{"nan type", "+{}", "number", "", 0},
		{"undefined", "[][+[]]", "undefined", "", 0},
		{"object", "[]+{}", "string", "[object Object]", 0},
		{"big number text", "+(1+'e100')+[]", "string", "1e+100", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ev.Eval(context.Background(), tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, res.Type)
			if tt.typ == "string" {
				assert.Equal(t, tt.str, res.String)
			}
			if tt.typ == "number" && tt.name != "nan type" {
				assert.Equal(t, tt.number, res.Number)
			}
		})
	}
}

func TestGojaBuiltinsUsedByEncoder(t *testing.T) {
	ev, err := NewGoja()
	require.NoError(t, err)

	res, err := ev.Eval(context.Background(), `[]+([]+{})["constructor"]`)
	require.NoError(t, err)
	assert.Equal(t, "function String() { [native code] }", res.String)

	res, err = ev.Eval(context.Background(), `[]["sort"]["constructor"]("return unescape")()("%7e")`)
	require.NoError(t, err)
	assert.Equal(t, "~", res.String)

	res, err = ev.Eval(context.Background(), `[]["sort"]["constructor"]("return escape")()("[")[0]`)
	require.NoError(t, err)
	assert.Equal(t, "%", res.String)

	res, err = ev.Eval(context.Background(), `(17)["toString"](36)[0]`)
	require.NoError(t, err)
	assert.Equal(t, "h", res.String)
}

func TestGojaSyntaxError(t *testing.T) {
	ev, err := NewGoja()
	require.NoError(t, err)

	_, err = ev.Eval(context.Background(), "(((")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInterrupted))
}

func TestGojaTimeout(t *testing.T) {
	ev, err := NewGoja(WithTimeout(50 * time.Millisecond))
	require.NoError(t, err)

	_, err = ev.Eval(context.Background(), "for (;;) {}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted))

	// the runtime stays usable after an interrupt
	res, err := ev.Eval(context.Background(), "1+1")
	require.NoError(t, err)
	assert.Equal(t, float64(2), res.Number)
}

func TestGojaCancelledContext(t *testing.T) {
	ev, err := NewGoja()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ev.Eval(ctx, "1")
	assert.True(t, errors.Is(err, ErrInterrupted))
}

func TestGojaGlobals(t *testing.T) {
	ev, err := NewGoja()
	require.NoError(t, err)

	_, ok := ev.Global("missing")
	assert.False(t, ok)

	require.NoError(t, ev.SetGlobal("seed", "foo"))
	_, err = ev.Eval(context.Background(), `global.seed = seed + "bar"`)
	require.NoError(t, err)

	got, ok := ev.Global("seed")
	require.True(t, ok)
	assert.Equal(t, "string", got.Type)
	assert.Equal(t, "foobar", got.String)
}

func TestGojaFactory(t *testing.T) {
	newEval := GojaFactory(time.Second)
	a, err := newEval()
	require.NoError(t, err)
	b, err := newEval()
	require.NoError(t, err)

	require.NoError(t, a.SetGlobal("x", 1))
	_, ok := b.Global("x")
	assert.False(t, ok, "factory evaluators must not share globals")
}

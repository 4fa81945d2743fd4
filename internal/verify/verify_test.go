package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"hieroglyphy/internal/encoder"
	"hieroglyphy/internal/evaluator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEncoder(t *testing.T) *encoder.Encoder {
	t.Helper()
	opts := encoder.DefaultOptions()
	opts.Logger = zap.NewNop()
	enc, err := encoder.New(opts)
	require.NoError(t, err)
	return enc
}

func TestRunAllSuites(t *testing.T) {
	enc := newEncoder(t)
	report, err := Run(context.Background(), enc, evaluator.GojaFactory(10*time.Second), Options{
		MaxNumber: 50,
		Workers:   3,
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	for _, f := range report.Failures {
		t.Errorf("[%s] %s: %s", f.Suite, f.Input, f.Reason)
	}
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 128+51+6+6+2, report.Checks)
	assert.Equal(t, 128, report.BySuite[SuiteASCII])
	assert.Equal(t, 51, report.BySuite[SuiteNumbers])
}

func TestRunSelectedSuites(t *testing.T) {
	enc := newEncoder(t)
	report, err := Run(context.Background(), enc, evaluator.GojaFactory(0), Options{
		Suites: []Suite{SuiteScript, SuiteNegatives},
	})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 8, report.Checks)
	_, ran := report.BySuite[SuiteASCII]
	assert.False(t, ran)
}

// stubEvaluator returns a fixed result for every evaluation.
type stubEvaluator struct {
	res evaluator.Result
}

func (s *stubEvaluator) Eval(ctx context.Context, src string) (evaluator.Result, error) {
	return s.res, nil
}

func (s *stubEvaluator) Global(name string) (evaluator.Result, bool) {
	return s.res, true
}

func (s *stubEvaluator) SetGlobal(name string, value interface{}) error {
	return nil
}

func TestRunCollectsFailures(t *testing.T) {
	enc := newEncoder(t)
	stub := func() (evaluator.Evaluator, error) {
		return &stubEvaluator{res: evaluator.Result{Type: "string", String: "wrong"}}, nil
	}
	report, err := Run(context.Background(), enc, stub, Options{
		Suites:  []Suite{SuiteNegatives, SuiteUnicode},
		Workers: 2,
	})
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Len(t, report.Failures, 12)
	for _, f := range report.Failures {
		assert.NotEmpty(t, f.Reason)
	}
}

func TestRunFactoryError(t *testing.T) {
	enc := newEncoder(t)
	boom := errors.New("no runtime")
	_, err := Run(context.Background(), enc, func() (evaluator.Evaluator, error) {
		return nil, boom
	}, Options{Suites: []Suite{SuiteScript}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestRunCancelled(t *testing.T) {
	enc := newEncoder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, enc, evaluator.GojaFactory(0), Options{Suites: []Suite{SuiteASCII}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseSuite(t *testing.T) {
	for _, s := range AllSuites {
		got, ok := ParseSuite(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := ParseSuite("fuzz")
	assert.False(t, ok)
}

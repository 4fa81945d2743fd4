// Package verify checks encoder output by evaluating it and comparing the
// result with the original input.
package verify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hieroglyphy/internal/encoder"
	"hieroglyphy/internal/evaluator"
)

// Suite names a group of round-trip checks.
type Suite string

const (
	SuiteASCII     Suite = "ascii"     // every code point 0-127 as a string
	SuiteNumbers   Suite = "numbers"   // integers 0..MaxNumber
	SuiteNegatives Suite = "negatives" // a handful of negative integers
	SuiteUnicode   Suite = "unicode"   // non-ASCII strings, including astral
	SuiteScript    Suite = "script"    // side effects on global state
)

// AllSuites lists every suite in run order.
var AllSuites = []Suite{SuiteASCII, SuiteNumbers, SuiteNegatives, SuiteUnicode, SuiteScript}

// ParseSuite maps a name to a Suite.
func ParseSuite(name string) (Suite, bool) {
	for _, s := range AllSuites {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}

// Options configures a verification run.
type Options struct {
	Suites    []Suite  // empty runs AllSuites
	MaxNumber int64    // upper bound of the numbers suite, default 999
	Workers   int      // parallel evaluators, default 4
	Battery   *Battery // extra cases, run after the suites
	Logger    *zap.Logger
}

// Failure is one check whose evaluated output did not match its input.
type Failure struct {
	Suite  Suite
	Input  string
	Reason string
}

// Report summarises a run.
type Report struct {
	RunID    string
	Checks   int
	Failures []Failure
	Elapsed  time.Duration
	BySuite  map[Suite]int
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

type check struct {
	suite Suite
	input string
	run   func(ctx context.Context, enc *encoder.Encoder, ev evaluator.Evaluator) error
}

// Run evaluates the selected suites with one evaluator per worker, all
// sharing enc. Check failures are collected in the report; the returned
// error is reserved for problems running the checks at all.
func Run(ctx context.Context, enc *encoder.Encoder, newEval evaluator.Factory, opts Options) (*Report, error) {
	if opts.MaxNumber <= 0 {
		opts.MaxNumber = 999
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if len(opts.Suites) == 0 {
		opts.Suites = AllSuites
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	report := &Report{RunID: uuid.NewString(), BySuite: make(map[Suite]int)}
	start := time.Now()

	var checks []check
	for _, s := range opts.Suites {
		suiteChecks := build(s, opts)
		report.BySuite[s] = len(suiteChecks)
		checks = append(checks, suiteChecks...)
	}
	extra, err := opts.Battery.checks()
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		report.BySuite[SuiteBattery] = len(extra)
		checks = append(checks, extra...)
	}
	report.Checks = len(checks)

	log.Info("verification started",
		zap.String("run_id", report.RunID),
		zap.Int("checks", len(checks)),
		zap.Int("workers", opts.Workers))

	var mu sync.Mutex
	addFailure := func(f Failure) {
		mu.Lock()
		report.Failures = append(report.Failures, f)
		mu.Unlock()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for w := 0; w < opts.Workers; w++ {
		var batch []check
		for i := w; i < len(checks); i += opts.Workers {
			batch = append(batch, checks[i])
		}
		if len(batch) == 0 {
			continue
		}
		eg.Go(func() error {
			ev, err := newEval()
			if err != nil {
				return fmt.Errorf("create evaluator: %w", err)
			}
			for _, c := range batch {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if err := c.run(egCtx, enc, ev); err != nil {
					addFailure(Failure{Suite: c.suite, Input: c.input, Reason: err.Error()})
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	log.Info("verification finished",
		zap.String("run_id", report.RunID),
		zap.Int("checks", report.Checks),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func build(s Suite, opts Options) []check {
	var out []check
	switch s {
	case SuiteASCII:
		for c := 0; c < 128; c++ {
			out = append(out, stringCheck(s, string(rune(c))))
		}
	case SuiteNumbers:
		for n := int64(0); n <= opts.MaxNumber; n++ {
			out = append(out, numberCheck(s, n))
		}
	case SuiteNegatives:
		for _, n := range []int64{-1, -9, -10, -42, -999, -100000} {
			out = append(out, numberCheck(s, n))
		}
	case SuiteUnicode:
		for _, text := range []string{"bαr", "€", "日本語", "😀", "naïve café", ""} {
			out = append(out, stringCheck(s, text))
		}
	case SuiteScript:
		out = append(out,
			scriptCheck(s, `global.testString = "bαr"`, "testString", "foo", "bαr"),
			scriptCheck(s, `x = 1 + 1`, "x", nil, float64(2)),
		)
	}
	return out
}

func stringCheck(s Suite, text string) check {
	return check{
		suite: s,
		input: strconv.Quote(text),
		run: func(ctx context.Context, enc *encoder.Encoder, ev evaluator.Evaluator) error {
			out, err := enc.EncodeString(text)
			if err != nil {
				return err
			}
			res, err := evaluate(ctx, enc, ev, out)
			if err != nil {
				return err
			}
			if res.Type != "string" {
				return fmt.Errorf("evaluated to %s, want string", res.Type)
			}
			if res.String != text {
				return fmt.Errorf("evaluated to %q", res.String)
			}
			return nil
		},
	}
}

func numberCheck(s Suite, n int64) check {
	return check{
		suite: s,
		input: strconv.FormatInt(n, 10),
		run: func(ctx context.Context, enc *encoder.Encoder, ev evaluator.Evaluator) error {
			out, err := enc.EncodeNumber(n)
			if err != nil {
				return err
			}
			res, err := evaluate(ctx, enc, ev, out)
			if err != nil {
				return err
			}
			if res.Type != "number" {
				return fmt.Errorf("evaluated to %s, want number", res.Type)
			}
			if res.Number != float64(n) {
				return fmt.Errorf("evaluated to %v", res.Number)
			}
			return nil
		},
	}
}

// scriptCheck seeds global name with before (unless nil), runs the encoded
// script and expects name to hold after.
func scriptCheck(s Suite, src, name string, before, after interface{}) check {
	return check{
		suite: s,
		input: src,
		run: func(ctx context.Context, enc *encoder.Encoder, ev evaluator.Evaluator) error {
			if before != nil {
				if err := ev.SetGlobal(name, before); err != nil {
					return fmt.Errorf("seed %s: %w", name, err)
				}
			}
			out, err := enc.EncodeScript(src)
			if err != nil {
				return err
			}
			if _, err := evaluate(ctx, enc, ev, out); err != nil {
				return err
			}
			got, ok := ev.Global(name)
			if !ok {
				return fmt.Errorf("global %s not set", name)
			}
			switch want := after.(type) {
			case string:
				if got.Type != "string" || got.String != want {
					return fmt.Errorf("%s = %v (%s), want %q", name, got.Value, got.Type, want)
				}
			case float64:
				if got.Type != "number" || got.Number != want {
					return fmt.Errorf("%s = %v (%s), want %v", name, got.Value, got.Type, want)
				}
			case printed:
				if fmt.Sprint(got.Value) != string(want) {
					return fmt.Errorf("%s = %v (%s), want %s", name, got.Value, got.Type, want)
				}
			}
			return nil
		},
	}
}

// printed compares a global by its printed form.
type printed string

func evaluate(ctx context.Context, enc *encoder.Encoder, ev evaluator.Evaluator, out string) (evaluator.Result, error) {
	if err := enc.CheckAlphabet(out); err != nil {
		return evaluator.Result{}, err
	}
	return ev.Eval(ctx, out)
}

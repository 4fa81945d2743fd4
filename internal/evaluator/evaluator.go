// Package evaluator runs encoder output in an embedded ECMAScript runtime.
// It stands in for the target execution language: the encoder only produces
// text, and this package is what resolves the derived names at run time.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// ErrInterrupted is returned when evaluation is stopped by its context.
var ErrInterrupted = errors.New("evaluation interrupted")

// Result is an evaluated value reduced to what round-trip checks compare.
type Result struct {
	Type   string      // typeof
	Value  interface{} // exported Go value
	String string      // set when Type is "string"
	Number float64     // set when Type is "number"
}

// Evaluator is the runtime collaborator: it evaluates source text and gives
// access to global state so side effects can be observed.
type Evaluator interface {
	Eval(ctx context.Context, src string) (Result, error)
	Global(name string) (Result, bool)
	SetGlobal(name string, value interface{}) error
}

// Factory creates independent evaluators, one per worker.
type Factory func() (Evaluator, error)

// Option configures a Goja evaluator.
type Option func(*Goja)

// WithTimeout bounds every Eval call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Goja) { g.timeout = d }
}

// Goja evaluates against a single goja runtime. A runtime is not safe for
// concurrent use, so Eval serialises callers.
type Goja struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	typeOf  goja.Callable
	timeout time.Duration
}

// NewGoja creates a runtime with `global` bound to the global object.
func NewGoja(opts ...Option) (*Goja, error) {
	vm := goja.New()
	if err := vm.Set("global", vm.GlobalObject()); err != nil {
		return nil, fmt.Errorf("bind global: %w", err)
	}
	fn, err := vm.RunString("(function (v) { return typeof v; })")
	if err != nil {
		return nil, fmt.Errorf("compile typeof helper: %w", err)
	}
	typeOf, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, fmt.Errorf("typeof helper is not callable")
	}

	g := &Goja{vm: vm, typeOf: typeOf}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// GojaFactory returns a Factory producing Goja evaluators with the given
// per-call timeout.
func GojaFactory(timeout time.Duration) Factory {
	return func() (Evaluator, error) {
		return NewGoja(WithTimeout(timeout))
	}
}

// Eval runs src as a script and returns its completion value. Cancelling
// ctx interrupts the runtime.
func (g *Goja) Eval(ctx context.Context, src string) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInterrupted, err)
	}

	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		g.vm.Interrupt(ctx.Err())
		close(done)
	})
	defer func() {
		// If the interrupt already fired, wait for it so ClearInterrupt
		// cannot run before it.
		if !stop() {
			<-done
		}
		g.vm.ClearInterrupt()
	}()

	v, err := g.vm.RunString(src)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return Result{}, fmt.Errorf("%w: %v", ErrInterrupted, interrupted.Value())
		}
		return Result{}, fmt.Errorf("evaluate: %w", err)
	}
	return g.result(v)
}

// Global reads a global variable. The second result is false when it is
// not defined.
func (g *Goja) Global(name string) (Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := g.vm.Get(name)
	if v == nil {
		return Result{}, false
	}
	r, err := g.result(v)
	if err != nil {
		return Result{}, false
	}
	return r, true
}

// SetGlobal assigns a global variable.
func (g *Goja) SetGlobal(name string, value interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vm.Set(name, value)
}

func (g *Goja) result(v goja.Value) (Result, error) {
	if v == nil {
		v = goja.Undefined()
	}
	t, err := g.typeOf(goja.Undefined(), v)
	if err != nil {
		return Result{}, fmt.Errorf("typeof: %w", err)
	}
	r := Result{Type: t.String(), Value: v.Export()}
	switch r.Type {
	case "string":
		r.String = v.String()
	case "number":
		r.Number = v.ToFloat()
	}
	return r, nil
}

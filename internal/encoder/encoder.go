package encoder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrAlphabet is returned by CheckAlphabet when output contains a character
// outside the encoder's alphabet.
var ErrAlphabet = errors.New("character outside output alphabet")

const (
	symbols = "!+[](){}"
	digits  = "0123456789"
)

// Options configures an Encoder.
type Options struct {
	// DigitMode admits 0-9 into the output. Numerals become decimal
	// literals and the output shrinks considerably.
	DigitMode bool

	// Numbers selects how EncodeNumber builds values above nine without
	// digits. Ignored in digit-mode.
	Numbers NumberStrategy

	// Target declares the runtime capabilities. Nil means ECMAScript().
	Target *Target

	Logger *zap.Logger
}

// DefaultOptions returns symbol-only output for a standard ECMAScript target.
func DefaultOptions() Options {
	t := ECMAScript()
	return Options{Numbers: NumbersRecursive, Target: &t}
}

// Encoder turns text, numbers and scripts into expressions over the fixed
// alphabet. It owns its character cache; an Encoder is safe for concurrent
// use.
type Encoder struct {
	digitMode bool
	numbers   NumberStrategy
	target    Target
	numerals  numeralTable
	cache     *charCache
	log       *zap.Logger

	// Set by the dynamic stage. An empty reference has its reason in the
	// matching error.
	fnCtor     string
	fnErr      error
	decodeFn   string
	decodeErr  error
	percentErr error
}

// New builds an Encoder and runs the bootstrap derivation. It fails only if
// the derivation order is broken; missing target capabilities are reported
// by the operations that need them.
func New(opts Options) (*Encoder, error) {
	target := ECMAScript()
	if opts.Target != nil {
		target = *opts.Target
	}
	numbers := opts.Numbers
	if numbers == "" {
		numbers = NumbersRecursive
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := &Encoder{
		digitMode: opts.DigitMode,
		numbers:   numbers,
		target:    target,
		numerals:  buildNumerals(opts.DigitMode),
		cache:     newCharCache(),
		log:       log,
	}
	if err := e.bootstrap(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return e, nil
}

// bootstrap populates the cache in dependency order: digits, stage-one
// letters, stage-two letters, radix letters, then the dynamic references.
func (e *Encoder) bootstrap() error {
	e.seedDigits()
	e.extract(bootstrapSources(e.number(0)))

	sources, err := e.stageTwoSources()
	if err != nil {
		return err
	}
	e.extract(sources)

	if err := e.radix(); err != nil {
		return err
	}
	e.dynamic()

	e.log.Debug("bootstrap complete",
		zap.Int("entries", e.cache.len()),
		zap.Bool("digit_mode", e.digitMode),
		zap.String("target", e.target.Name),
		zap.Bool("function_constructor", e.fnErr == nil),
		zap.Bool("percent_decode", e.decodeErr == nil))
	return nil
}

func (e *Encoder) store(r rune, frag string, rule Rule) {
	stored := e.cache.put(Entry{Char: r, Fragment: frag, Rule: rule})
	e.log.Debug("derived character",
		zap.String("char", string(r)),
		zap.String("rule", string(stored.Rule)),
		zap.Int("size", len(stored.Fragment)))
}

// spell encodes text using only characters already cached. The bootstrap
// uses it so an ordering mistake surfaces as ErrUnderivable instead of a
// fallback into references that do not exist yet.
func (e *Encoder) spell(text string) (string, error) {
	parts := make([]string, 0, len(text))
	for _, r := range text {
		entry, ok := e.cache.get(r)
		if !ok {
			return "", underivable(r, "bootstrap")
		}
		parts = append(parts, entry.Fragment)
	}
	return concat(parts...), nil
}

func (e *Encoder) encodeString(text string) (string, error) {
	if text == "" {
		return emptyStr, nil
	}
	parts := make([]string, 0, len(text))
	for _, r := range text {
		entry, err := e.cache.resolve(r, func() (Entry, error) {
			entry, err := e.fallback(r)
			if err == nil {
				e.log.Debug("derived character",
					zap.String("char", string(r)),
					zap.String("rule", string(RuleFallback)),
					zap.Int("size", len(entry.Fragment)))
			}
			return entry, err
		})
		if err != nil {
			return "", err
		}
		parts = append(parts, entry.Fragment)
	}
	return concat(parts...), nil
}

// =============================================================================
// PUBLIC ENCODING API
// =============================================================================

// EncodeString returns an expression that evaluates to text. Characters are
// taken per code point, matching the target's string iteration.
func (e *Encoder) EncodeString(text string) (string, error) {
	out, err := e.encodeString(text)
	if err != nil {
		return "", fmt.Errorf("encode string: %w", err)
	}
	return out, nil
}

// EncodeNumber returns an expression that evaluates to the number n.
// Negative values go through the string path: +("-42").
func (e *Encoder) EncodeNumber(n int64) (string, error) {
	decimal := strconv.FormatInt(n, 10)
	switch {
	case n < 0:
	case e.digitMode:
		return decimal, nil
	case n <= 9:
		return e.numerals[n], nil
	case e.numbers == NumbersAdditive && n <= maxAdditive:
		return additive(int(n)), nil
	case e.numbers == NumbersAdditive:
		e.log.Debug("additive strategy out of range, using recursive", zap.Int64("value", n))
	}
	s, err := e.encodeString(decimal)
	if err != nil {
		return "", fmt.Errorf("encode number %d: %w", n, err)
	}
	return toNum(s), nil
}

// EncodeScript returns an expression that, when evaluated, builds a function
// whose body is src and calls it with no arguments. src is not inspected.
func (e *Encoder) EncodeScript(src string) (string, error) {
	if e.fnErr != nil {
		return "", fmt.Errorf("encode script: %w", e.fnErr)
	}
	body, err := e.encodeString(src)
	if err != nil {
		return "", fmt.Errorf("encode script: %w", err)
	}
	return call(e.fnCtor, body) + "()", nil
}

// =============================================================================
// INTROSPECTION
// =============================================================================

// Lookup returns the cached entry for r without deriving it.
func (e *Encoder) Lookup(r rune) (Entry, bool) {
	return e.cache.get(r)
}

// Entries returns a snapshot of the cache sorted by code point.
func (e *Encoder) Entries() []Entry {
	return e.cache.snapshot()
}

// DerivationOrder lists cached characters in the order they were derived.
func (e *Encoder) DerivationOrder() []rune {
	return e.cache.derivationOrder()
}

// Stats summarises the cache.
type Stats struct {
	Entries int
	Bytes   int
	ByRule  map[Rule]int
}

// Stats counts cache entries per rule and their total fragment size.
func (e *Encoder) Stats() Stats {
	s := Stats{ByRule: make(map[Rule]int)}
	for _, entry := range e.cache.snapshot() {
		s.Entries++
		s.Bytes += len(entry.Fragment)
		s.ByRule[entry.Rule]++
	}
	return s
}

// Options reports the effective configuration.
func (e *Encoder) Options() Options {
	t := e.target
	return Options{DigitMode: e.digitMode, Numbers: e.numbers, Target: &t, Logger: e.log}
}

// Alphabet is the set of characters output may contain.
func (e *Encoder) Alphabet() string {
	if e.digitMode {
		return symbols + digits
	}
	return symbols
}

// CheckAlphabet verifies that out only uses the encoder's alphabet.
func (e *Encoder) CheckAlphabet(out string) error {
	allowed := e.Alphabet()
	for i, r := range out {
		if !strings.ContainsRune(allowed, r) {
			return fmt.Errorf("%w: %q at offset %d", ErrAlphabet, r, i)
		}
	}
	return nil
}

package config

import (
	"fmt"

	"hieroglyphy/internal/encoder"
)

// EncoderConfig configures the derivation engine.
type EncoderConfig struct {
	// Admit 0-9 into the output alphabet
	DigitMode bool `yaml:"digit_mode"`

	// recursive or additive; how numbers above nine are built without digits
	Numbers string `yaml:"numbers"`

	// Capabilities of the runtime the output is meant for
	Target encoder.Target `yaml:"target"`
}

// DefaultEncoderConfig returns symbol-only output for an ECMAScript target.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{
		DigitMode: false,
		Numbers:   string(encoder.NumbersRecursive),
		Target:    encoder.ECMAScript(),
	}
}

// Validate checks the number strategy.
func (c EncoderConfig) Validate() error {
	if _, ok := encoder.ParseNumberStrategy(c.Numbers); !ok {
		return fmt.Errorf("invalid encoder.numbers: %s (valid: recursive, additive)", c.Numbers)
	}
	return nil
}

// Options converts the config into encoder options.
func (c EncoderConfig) Options() encoder.Options {
	numbers, ok := encoder.ParseNumberStrategy(c.Numbers)
	if !ok {
		numbers = encoder.NumbersRecursive
	}
	target := c.Target
	return encoder.Options{
		DigitMode: c.DigitMode,
		Numbers:   numbers,
		Target:    &target,
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all hieroglyphy configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Derivation engine
	Encoder EncoderConfig `yaml:"encoder"`

	// Embedded runtime used by --check and verify
	Evaluator EvaluatorConfig `yaml:"evaluator"`

	// Round-trip harness
	Verify VerifyConfig `yaml:"verify"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// EvaluatorConfig configures the embedded runtime.
type EvaluatorConfig struct {
	Timeout string `yaml:"timeout"` // per evaluation
}

// VerifyConfig configures the round-trip harness.
type VerifyConfig struct {
	Workers   int      `yaml:"workers"`
	MaxNumber int64    `yaml:"max_number"`
	Suites    []string `yaml:"suites"`  // empty runs all
	Battery   string   `yaml:"battery"` // optional YAML file of extra cases
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "hieroglyphy",
		Version: "1.0.0",

		Encoder: DefaultEncoderConfig(),

		Evaluator: EvaluatorConfig{
			Timeout: "10s",
		},

		Verify: VerifyConfig{
			Workers:   4,
			MaxNumber: 999,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HIERO_DIGIT_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Encoder.DigitMode = b
		}
	}
	if v := os.Getenv("HIERO_NUMBERS"); v != "" {
		c.Encoder.Numbers = v
	}
	if v := os.Getenv("HIERO_METHOD_HOST"); v != "" {
		c.Encoder.Target.MethodHost = v
	}
	if v := os.Getenv("HIERO_EVAL_TIMEOUT"); v != "" {
		c.Evaluator.Timeout = v
	}
	if v := os.Getenv("HIERO_VERIFY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Verify.Workers = n
		}
	}
}

// GetEvalTimeout returns the evaluation timeout as a duration.
func (c *Config) GetEvalTimeout() time.Duration {
	d, err := time.ParseDuration(c.Evaluator.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Encoder.Validate(); err != nil {
		return err
	}
	if c.Verify.Workers < 1 {
		return fmt.Errorf("verify.workers must be >= 1")
	}
	if c.Verify.MaxNumber < 0 {
		return fmt.Errorf("verify.max_number must be >= 0")
	}
	if c.Evaluator.Timeout != "" {
		if _, err := time.ParseDuration(c.Evaluator.Timeout); err != nil {
			return fmt.Errorf("invalid evaluator.timeout %q: %w", c.Evaluator.Timeout, err)
		}
	}

	if c.Logging.Level != "" {
		validLevel := false
		for _, l := range ValidLogLevels {
			if c.Logging.Level == l {
				validLevel = true
				break
			}
		}
		if !validLevel {
			return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
		}
	}

	return nil
}

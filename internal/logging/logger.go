// Package logging provides config-driven categorized logging for hieroglyphy.
// Every category is a named child of one zap logger.
// Category logging is controlled by debug_mode in the config - when false, category loggers are no-ops.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hieroglyphy/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot   Category = "boot"   // Startup, config loading
	CategoryDerive Category = "derive" // Character cache derivations
	CategoryEncode Category = "encode" // Public encoding calls
	CategoryEval   Category = "eval"   // Embedded runtime evaluations
	CategoryVerify Category = "verify" // Round-trip harness
)

// AllCategories lists every category.
var AllCategories = []Category{CategoryBoot, CategoryDerive, CategoryEncode, CategoryEval, CategoryVerify}

var (
	loggers   = make(map[Category]*zap.Logger)
	loggersMu sync.RWMutex
	root      = zap.NewNop()
	cfg       config.LoggingConfig
	cfgMu     sync.RWMutex
)

// New builds the process logger from the logging config. verbose forces
// the debug level.
func New(c config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if strings.EqualFold(c.Format, "text") {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if c.File != "" {
		zc.OutputPaths = []string{c.File}
	}

	level := zapcore.InfoLevel
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Initialize installs the root logger and the category config.
// Should be called once at startup.
func Initialize(c config.LoggingConfig, logger *zap.Logger) {
	cfgMu.Lock()
	cfg = c
	cfgMu.Unlock()

	loggersMu.Lock()
	if logger == nil {
		logger = zap.NewNop()
	}
	root = logger
	loggers = make(map[Category]*zap.Logger)
	loggersMu.Unlock()

	if !c.DebugMode {
		return
	}
	boot := Get(CategoryBoot)
	enabled := 0
	for _, cat := range AllCategories {
		if IsCategoryEnabled(cat) {
			enabled++
		}
	}
	boot.Info("category logging initialized",
		zap.String("level", c.Level),
		zap.Int("enabled_categories", enabled))
}

// IsDebugMode returns whether category logging is enabled
func IsDebugMode() bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category))
	loggers[category] = l
	return l
}

// Sync flushes the root logger.
func Sync() {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	_ = root.Sync()
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Sugar().Infof(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Sugar().Debugf(format, args...)
}

// Encode logs to the encode category
func Encode(format string, args ...interface{}) {
	Get(CategoryEncode).Sugar().Infof(format, args...)
}

// EncodeDebug logs debug to the encode category
func EncodeDebug(format string, args ...interface{}) {
	Get(CategoryEncode).Sugar().Debugf(format, args...)
}

// Eval logs to the eval category
func Eval(format string, args ...interface{}) {
	Get(CategoryEval).Sugar().Infof(format, args...)
}

// Verify logs to the verify category
func Verify(format string, args ...interface{}) {
	Get(CategoryVerify).Sugar().Infof(format, args...)
}

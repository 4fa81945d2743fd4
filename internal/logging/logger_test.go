package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hieroglyphy/internal/config"
)

func resetLogging(t *testing.T) {
	t.Cleanup(func() {
		Initialize(config.LoggingConfig{}, zap.NewNop())
	})
}

// TestAllCategoriesLog checks that every category writes when debug_mode is true
func TestAllCategoriesLog(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zapcore.DebugLevel)
	Initialize(config.LoggingConfig{Level: "debug", DebugMode: true}, zap.New(core))

	for _, cat := range AllCategories {
		Get(cat).Info("hello")
	}

	seen := make(map[string]bool)
	for _, entry := range logs.All() {
		seen[entry.LoggerName] = true
	}
	for _, cat := range AllCategories {
		if !seen[string(cat)] {
			t.Errorf("category %s did not log", cat)
		}
	}
}

func TestDebugModeOff(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zapcore.DebugLevel)
	Initialize(config.LoggingConfig{Level: "debug"}, zap.New(core))

	if IsDebugMode() {
		t.Fatal("debug mode should be off")
	}
	Encode("encoded %d bytes", 10)
	Boot("started")
	if n := logs.Len(); n != 0 {
		t.Errorf("expected no category output, got %d entries", n)
	}
}

func TestCategoryToggle(t *testing.T) {
	resetLogging(t)
	core, logs := observer.New(zapcore.DebugLevel)
	Initialize(config.LoggingConfig{
		DebugMode:  true,
		Categories: map[string]bool{"eval": false, "boot": false},
	}, zap.New(core))

	if IsCategoryEnabled(CategoryEval) {
		t.Error("eval should be disabled")
	}
	if !IsCategoryEnabled(CategoryVerify) {
		t.Error("verify should default to enabled")
	}

	Eval("should not appear")
	Verify("run %s", "abc")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "run abc" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
}

func TestGetCachesLoggers(t *testing.T) {
	resetLogging(t)
	Initialize(config.LoggingConfig{DebugMode: true}, zap.NewNop())

	var wg sync.WaitGroup
	got := make([]*zap.Logger, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get(CategoryDerive)
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(got); i++ {
		if got[i] != got[0] {
			t.Fatal("Get returned different loggers for one category")
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiero.log")
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "json", File: path}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept", zap.String("char", "%"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "dropped") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(content, `"msg":"kept"`) {
		t.Errorf("expected JSON warn entry, got %q", content)
	}
}

func TestNewVerboseForcesDebug(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "error", File: filepath.Join(t.TempDir(), "v.log")}, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose should enable debug")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud"}, false); err == nil {
		t.Error("expected error for invalid level")
	}
}

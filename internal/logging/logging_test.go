package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuildWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.log")

	logger, err := Build(Config{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	logger.Debug("calculated", Tenant("t-1"), Quote("q-1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{`"tenant_id":"t-1"`, `"quote_id":"q-1"`, `"msg":"calculated"`} {
		if !strings.Contains(line, want) {
			t.Errorf("expected log line to contain %s, got %s", want, line)
		}
	}
}

func TestBuildFallsBackToInfoOnBadLevel(t *testing.T) {
	logger, err := Build(Config{Level: "loud", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug to be disabled when level is invalid")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a logger for nil input")
	}
	if l := Named("engine"); OrNop(l) != l {
		t.Error("expected non-nil logger to be returned unchanged")
	}
}

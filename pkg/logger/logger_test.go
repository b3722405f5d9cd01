package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo).Named("export")

	l.Info(context.Background(), "player done", String("player", "Roger_Federer"), Int("files", 9))
	l.Debug(context.Background(), "hidden")
	l.Error(context.Background(), "failed", Error(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"player done", "player=Roger_Federer", "files=9", "component=export", "error=boom", "logger_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry written at info level")
	}
}

func TestSetLevelString(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("SetLevelString(%q): %v", lvl, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestGet_BeforeInit(t *testing.T) {
	if Get() == nil {
		t.Fatal("Get returned nil")
	}
	Get().Info(context.Background(), "discarded")
}

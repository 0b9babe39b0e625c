package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("fallback") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("detail") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("detail") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("expected output %v, got %v", tt.wantLog, got)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("analysis complete")

	if !strings.Contains(buf.String(), "analysis complete") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected default logger without one attached")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("expected the attached logger")
	}
}

func latticeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	latticeFlags(cmd)
	return cmd
}

func TestLoadLattice(t *testing.T) {
	cmd := latticeCmd()
	if err := cmd.ParseFlags([]string{"--preset", "fodo-90", "--gamma", "7"}); err != nil {
		t.Fatal(err)
	}
	defer func() { preset = "" }()

	cfg, err := loadLattice(cmd, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "fodo-90" {
		t.Errorf("expected fodo-90, got %s", cfg.Name)
	}
	if cfg.Gamma != 7 {
		t.Errorf("expected gamma override 7, got %g", cfg.Gamma)
	}
}

func TestLoadLatticeUnknownPreset(t *testing.T) {
	cmd := latticeCmd()
	if err := cmd.ParseFlags([]string{"--preset", "nope"}); err != nil {
		t.Fatal(err)
	}
	defer func() { preset = "" }()

	if _, err := loadLattice(cmd, nil); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestLoadLatticeDefault(t *testing.T) {
	cfg, err := loadLattice(latticeCmd(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default lattice should validate: %v", err)
	}
}

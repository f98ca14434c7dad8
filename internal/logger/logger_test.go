package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l := Logger{File: path, Level: "debug", Format: "json"}

	closer, err := l.Setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Debug().Str("role", "start").Msg("lookup dispatched")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"message":"lookup dispatched"`) {
		t.Errorf("log file missing debug entry:\n%s", data)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v", zerolog.GlobalLevel())
	}
}

func TestSetupWithoutFileDiscards(t *testing.T) {
	l := Logger{Level: "bogus"}

	closer, err := l.Setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer closer.Close()

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected fallback to info, got %v", zerolog.GlobalLevel())
	}
}

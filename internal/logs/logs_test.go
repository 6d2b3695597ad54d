package logs

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesTextToWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("mounted", "sim", "blanket")
	if !strings.Contains(buf.String(), "sim=blanket") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestLevelVarFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Level.Set(slog.LevelInfo)
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record passed the level filter: %q", buf.String())
	}
	Level.Set(slog.LevelDebug)
	log.Debug("visible")
	if buf.Len() == 0 {
		t.Fatal("debug record filtered at debug level")
	}
	Level.Set(slog.LevelInfo)
}

func TestHandlerAddsSectionFromContext(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := WithSection(context.Background(), "blankets")
	log.InfoContext(ctx, "opened")
	if !strings.Contains(buf.String(), "section=blankets") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestNewFansOutToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "reader.log")
	log, err := New(&buf, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("persisted")
	if buf.Len() == 0 {
		t.Fatal("terminal handler received nothing")
	}
}

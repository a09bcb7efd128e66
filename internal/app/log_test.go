package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTutoHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 3, 13, 19, 59, 0, 0, time.UTC)

	tests := []struct {
		name    string
		runID   string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			runID:   "run-123",
			level:   slog.LevelInfo,
			message: "table filled",
			want:    "2024-03-13T19:59:00Z\tINFO\trun-123\ttable filled\n",
		},
		{
			name:    "debug level",
			runID:   "run-456",
			level:   slog.LevelDebug,
			message: "removed",
			want:    "2024-03-13T19:59:00Z\tDEBUG\trun-456\tremoved\n",
		},
		{
			name:    "with record attrs",
			runID:   "run-789",
			level:   slog.LevelInfo,
			message: "moved",
			attrs:   []slog.Attr{slog.String("from", "/a/src/Main.java"), slog.Int("files", 2)},
			want:    "2024-03-13T19:59:00Z\tINFO\trun-789\tmoved\tfrom=/a/src/Main.java\tfiles=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &tutoHandler{sinks: []sink{{w: &buf, level: slog.LevelDebug}}, runID: tt.runID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestTutoHandler_SinkLevels(t *testing.T) {
	var file, console bytes.Buffer
	h := &tutoHandler{
		sinks: []sink{
			{w: &file, level: slog.LevelInfo},
			{w: &console, level: slog.LevelDebug},
		},
		runID: "run-1",
	}
	logger := slog.New(h)

	logger.Debug("unzipped", "archive", "hw1.zip")
	logger.Info("points counted")

	if strings.Contains(file.String(), "unzipped") {
		t.Errorf("debug record reached the info sink: %q", file.String())
	}
	if !strings.Contains(file.String(), "points counted") {
		t.Errorf("info record missing from the info sink: %q", file.String())
	}
	if !strings.Contains(console.String(), "unzipped") || !strings.Contains(console.String(), "points counted") {
		t.Errorf("debug sink output = %q, want both records", console.String())
	}
}

func TestTutoHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &tutoHandler{sinks: []sink{{w: &buf, level: slog.LevelInfo}}, runID: "run-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "archive")}).(*tutoHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "zipped", 0)
	r.AddAttrs(slog.String("archive", "feedback.zip"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=archive") {
		t.Errorf("expected pre-set attr component=archive, got: %q", got)
	}
	if !strings.Contains(got, "archive=feedback.zip") {
		t.Errorf("expected record attr archive=feedback.zip, got: %q", got)
	}
	if len(h.attrs) != 0 {
		t.Errorf("original handler attrs modified: got %d, want 0", len(h.attrs))
	}
}

func TestTutoHandler_Enabled(t *testing.T) {
	h := &tutoHandler{sinks: []sink{{w: &bytes.Buffer{}, level: slog.LevelInfo}}}

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, true},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("file only", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "log")
		var console bytes.Buffer

		logger, f, err := newLogger(dir, "run-1", false, &console)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		logger.Debug("removed", "path", "/tmp/x")
		logger.Info("archive extracted")
		f.Close()

		data, err := os.ReadFile(filepath.Join(dir, LogFileName))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		if !strings.Contains(string(data), "\trun-1\tarchive extracted") {
			t.Errorf("log file = %q, want info record", data)
		}
		if strings.Contains(string(data), "removed") {
			t.Errorf("log file = %q, debug record written", data)
		}
		if console.Len() != 0 {
			t.Errorf("console output without debug: %q", console.String())
		}
	})

	t.Run("debug mirrors to console", func(t *testing.T) {
		dir := t.TempDir()
		var console bytes.Buffer

		logger, f, err := newLogger(dir, "run-2", true, &console)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		defer f.Close()

		logger.Debug("removed", "path", "/tmp/x")
		if !strings.Contains(console.String(), "removed\tpath=/tmp/x") {
			t.Errorf("console = %q, want debug record", console.String())
		}
	})
}

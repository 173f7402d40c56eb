package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/supercon/internal/domain"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := LogLevel(); got != tt.want {
				t.Errorf("LogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetupLoggerTo_JSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := SetupLoggerTo(&buf, "json")
	WithStage(WithRunID(logger, "run-1"), "phonon").Info("stage started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if entry["run_id"] != "run-1" || entry["stage"] != "phonon" || entry["msg"] != "stage started" {
		t.Errorf("entry = %v", entry)
	}
}

func TestFromContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("FromContext() without logger did not return fallback")
	}

	stored := WithWorkDir(fallback, "/runs/1")
	ctx := WithLogger(context.Background(), stored)
	if got := FromContext(ctx, fallback); got != stored {
		t.Error("FromContext() did not return stored logger")
	}
}

func TestStageMetrics(t *testing.T) {
	var m StageMetrics

	before := testutil.ToFloat64(stagesTotal.WithLabelValues("force-constant", "FAILED"))
	inFlight := testutil.ToFloat64(stagesInFlight)

	m.StageStarted(context.Background(), domain.StageEvent{Stage: domain.StageForceConstants})
	if got := testutil.ToFloat64(stagesInFlight); got != inFlight+1 {
		t.Errorf("in flight = %v, want %v", got, inFlight+1)
	}

	m.StageFinished(context.Background(), domain.StageEvent{
		Stage:    domain.StageForceConstants,
		Duration: 2 * time.Second,
		Err:      errors.New("exit status 1"),
	})
	if got := testutil.ToFloat64(stagesInFlight); got != inFlight {
		t.Errorf("in flight after finish = %v, want %v", got, inFlight)
	}
	if got := testutil.ToFloat64(stagesTotal.WithLabelValues("force-constant", "FAILED")); got != before+1 {
		t.Errorf("force-constant FAILED = %v, want %v", got, before+1)
	}
}

func TestObserveRun(t *testing.T) {
	runs := testutil.ToFloat64(runsTotal.WithLabelValues("SUCCEEDED"))
	records := testutil.ToFloat64(tcRecords)

	ObserveRun(domain.RunStatusSucceeded, 3)

	if got := testutil.ToFloat64(runsTotal.WithLabelValues("SUCCEEDED")); got != runs+1 {
		t.Errorf("runs = %v, want %v", got, runs+1)
	}
	if got := testutil.ToFloat64(tcRecords); got != records+3 {
		t.Errorf("tc records = %v, want %v", got, records+3)
	}
}

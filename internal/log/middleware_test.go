package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{
		Logger:    slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		component: ComponentHTTP,
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{500, "level=ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newBufferLogger(&buf))

		r := httptest.NewRequest("GET", "/goals?as_of=2026-08-31", nil)
		sl.LogHTTPEnd(context.Background(), r, tt.status, 12, "10.0.0.1", "req_test")

		out := buf.String()
		for _, want := range []string{
			tt.wantLevel,
			"HTTP request completed",
			"status_code=" + strconv.Itoa(tt.status),
			"path=/goals",
			"client_ip=10.0.0.1",
			"request_id=req_test",
			"duration_ms=12",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("status %d: log line missing %q in %q", tt.status, want, out)
			}
		}
	}
}

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	fields := NewFields()
	fields[FieldGoalID] = int64(7)
	sl.LogError(context.Background(), "Failed to list goals", errors.New("disk gone"), ComponentHTTP, OpList, fields)

	out := buf.String()
	for _, want := range []string{
		"level=ERROR",
		`msg="Failed to list goals"`,
		"operation=list",
		"component=http",
		"goal_id=7",
		`error="disk gone"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q in %q", want, out)
		}
	}
}

func TestLogContributionRecordedFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	sl.LogContributionRecorded(context.Background(), 3, 11, "Thandi", 25000)

	out := buf.String()
	for _, want := range []string{
		"Contribution recorded",
		"goal_id=3",
		"contribution_id=11",
		"contributor=Thandi",
		"amount_cents=25000",
		"operation=apply",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q in %q", want, out)
		}
	}
}

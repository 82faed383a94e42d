package db

import (
	"strings"
	"testing"

	"github.com/flatdb/flatdb/core"
)

func TestResultRender(t *testing.T) {
	result := Result{
		Columns: []string{"id", "name"},
		Rows: []core.Row{
			{core.NewInt(1), core.NewString("Alice")},
			{core.NewInt(2), core.NewString("Bob")},
		},
		ExecutionTimeSec: 0.0042,
	}

	var buf strings.Builder
	result.Render(&buf)
	out := buf.String()

	for _, want := range []string{"id", "name", "Alice", "Bob", "2 row(s)", "4.2ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestResultRenderMutation(t *testing.T) {
	result := Result{AffectedCount: 3}

	var buf strings.Builder
	result.Render(&buf)
	out := buf.String()

	if !strings.Contains(out, "3 row(s) affected") {
		t.Errorf("Expected affected count line, got:\n%s", out)
	}
	if strings.Contains(out, "┌") {
		t.Errorf("Expected no table for a mutation, got:\n%s", out)
	}
}

func TestExecutionTimeFormat(t *testing.T) {
	tests := []struct {
		secs     float64
		expected string
	}{
		{0.0001, "<1ms"},
		{0.0042, "4.2ms"},
		{0.25, "250ms"},
		{1.5, "1.5s"},
		{42, "42s"},
		{90, "1m30s"},
		{120, "2m"},
	}

	for _, tt := range tests {
		result := Result{ExecutionTimeSec: tt.secs}
		if got := result.ExecutionTime(); got != tt.expected {
			t.Errorf("ExecutionTime(%v) = %q, expected %q", tt.secs, got, tt.expected)
		}
	}
}

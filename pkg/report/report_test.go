package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/config"
)

func TestHeadline(t *testing.T) {
	tests := []struct {
		report batch.Report
		want   string
	}{
		{batch.Report{Attempted: 3, Succeeded: 3}, "all 3 covers written"},
		{batch.Report{}, "no videos found"},
		{batch.Report{Attempted: 3, Succeeded: 3, Skipped: 1}, "all 3 videos done (2 covers written, 1 already present)"},
		{batch.Report{Attempted: 3, Succeeded: 2, Failed: 1}, "some or all files failed (1/3)"},
	}
	for _, tt := range tests {
		if got := Headline(&tt.report); got != tt.want {
			t.Errorf("Headline(%+v) = %q, want %q", tt.report, got, tt.want)
		}
	}
}

func TestPrintPlainWhenNotTerminal(t *testing.T) {
	r := &batch.Report{
		Attempted: 2,
		Succeeded: 1,
		Failed:    1,
		Failures:  []batch.Failure{{Name: "b.mp4", Reason: batch.ReasonEncode, Detail: "disk full"}},
		Duration:  1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	if err := Print(&buf, r); err != nil {
		t.Fatalf("Print: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI escapes for a buffer, got %q", out)
	}
	for _, want := range []string{"some or all files failed (1/2)", "b.mp4", "encode/write failed", "disk full", "1 succeeded, 1 failed, 0 skipped in 1.5s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTables(t *testing.T) {
	if FailureTable(&batch.Report{}) != "" {
		t.Fatal("expected no table for a clean run")
	}

	render := config.Default().Render
	out := PlanTable([]batch.Item{{Name: "a.mp4", Title: "a", Output: "/v/a.jpg", Render: render}})
	for _, want := range []string{"VIDEO", "TITLE", "a.mp4", "/v/a.jpg", "100"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}

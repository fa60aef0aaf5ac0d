package cli

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-200000, "-200,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12345.678, "$12,345.68"},
		{-50, "-$50.00"},
		{0.004, "$0.00"},
		{-0.004, "$0.00"},
		{1e6, "$1,000,000.00"},
		{math.Inf(1), "n/a"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatProbability(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00%"},
		{0.00004, "<0.01%"},
		{0.0426, "4.26%"},
		{1, "100.00%"},
	}
	for _, tt := range tests {
		if got := FormatProbability(tt.in); got != tt.want {
			t.Errorf("FormatProbability(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatScoreAndDelta(t *testing.T) {
	if got := FormatScore(95.7); got != "95.7" {
		t.Errorf("FormatScore = %q", got)
	}
	if got := FormatScore(100); got != "100.0" {
		t.Errorf("FormatScore(100) = %q", got)
	}
	if got := FormatScoreDelta(2.5); got != "+2.5" {
		t.Errorf("FormatScoreDelta(2.5) = %q", got)
	}
	if got := FormatScoreDelta(-1.25); got != "-1.2" && got != "-1.3" {
		t.Errorf("FormatScoreDelta(-1.25) = %q", got)
	}
}

func TestFormatTerm(t *testing.T) {
	if got := FormatTerm(math.Inf(1)); got != "revolving" {
		t.Errorf("FormatTerm(+Inf) = %q", got)
	}
	if got := FormatTerm(36); got != "36 mo" {
		t.Errorf("FormatTerm(36) = %q", got)
	}
	if got := FormatTerm(6.5); got != "6.5 mo" {
		t.Errorf("FormatTerm(6.5) = %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(850 * time.Millisecond); got != "850ms" {
		t.Errorf("FormatElapsed(850ms) = %q", got)
	}
	if got := FormatElapsed(2345 * time.Millisecond); got != "2.3s" {
		t.Errorf("FormatElapsed(2.345s) = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := RenderSparkline([]float64{0, 0.5, 1})
	if got != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Errorf("RenderSparkline(zeros) = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("RenderSparkline(nil) not empty")
	}
}

func TestRenderTable_Shape(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Debt", "Balance"},
		Rows: [][]string{
			{"Car", "$9,000.00"},
			SeparatorRow,
			{"Total", "$9,000.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, header rule, row, separator, row, bottom
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Balance") || !strings.Contains(out, "$9,000.00") {
		t.Errorf("table missing cells:\n%s", out)
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table rendered output")
	}
}

func TestRenderScoreBar(t *testing.T) {
	out := RenderScoreBar(95.7, 20)
	if !strings.Contains(out, "95.7") {
		t.Errorf("score bar missing value: %q", out)
	}
	if ScoreColor(95) != ColorGreen || ScoreColor(10) != ColorRed {
		t.Error("ScoreColor bands wrong")
	}
}

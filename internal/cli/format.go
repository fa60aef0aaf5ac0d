// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatMoney formats a currency amount with separators and cents.
// e.g., 12345.678 -> "$12,345.68", -50 -> "-$50.00"
func FormatMoney(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	cents := int64(math.Round(math.Abs(v) * 100))
	s := fmt.Sprintf("$%s.%02d", FormatNumber(cents/100), cents%100)
	if v < 0 && cents > 0 {
		return "-" + s
	}
	return s
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatProbability formats a probability with enough precision to tell
// small risks apart. e.g., 0.0426 -> "4.26%", 0.00004 -> "<0.01%"
func FormatProbability(p float64) string {
	switch {
	case p <= 0:
		return "0.00%"
	case p < 0.0001:
		return "<0.01%"
	default:
		return fmt.Sprintf("%.2f%%", p*100)
	}
}

// FormatScore formats a Shield Score on its 0-100 scale.
func FormatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', 1, 64)
}

// FormatScoreDelta formats a score change with an explicit sign.
func FormatScoreDelta(d float64) string {
	if d >= 0 {
		return "+" + FormatScore(d)
	}
	return "-" + FormatScore(-d)
}

// FormatTerm formats a debt term in months; revolving debts have none.
func FormatTerm(months float64) string {
	if math.IsInf(months, 1) {
		return "revolving"
	}
	if months == math.Trunc(months) {
		return fmt.Sprintf("%d mo", int64(months))
	}
	return fmt.Sprintf("%.1f mo", months)
}

// FormatElapsed formats a run duration.
// e.g., 850ms -> "850ms", 2.345s -> "2.3s"
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

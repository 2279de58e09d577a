package ui

import (
	"fmt"
	"strings"
)

// truncate shortens s to at most max runes, appending an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// padRight pads s with spaces up to width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatMoney renders a price or total as currency.
func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

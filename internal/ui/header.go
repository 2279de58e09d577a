package ui

import (
	"fmt"
	"strings"
	"time"
)

// renderHeader renders the status bar: connection state, aggregate stats
// and the last refresh time.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{styles.Logo.Render("vitrina")}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, styles.DangerText.Render("● OFFLINE"), styles.WarningText.Render("Retrying..."))
	case m.snapshot.LastError != nil:
		parts = append(parts, styles.WarningText.Render("● DEGRADED"))
	case m.snapshot.Loaded:
		parts = append(parts, styles.SuccessText.Render("● ON"))
	default:
		parts = append(parts, styles.WarningText.Render("Connecting..."))
	}

	stats := m.snapshot.Stats
	parts = append(parts,
		styles.MutedText.Render("Products:")+" "+styles.Text.Render(fmt.Sprintf("%d", stats.Count)),
		styles.MutedText.Render("Stock:")+" "+styles.Text.Render(fmt.Sprintf("%d", stats.TotalStock)),
		styles.MutedText.Render("Value:")+" "+styles.Text.Render(formatMoney(stats.TotalValue)),
	)

	if term := m.snapshot.SearchTerm; term != "" {
		parts = append(parts, styles.AccentText.Render(fmt.Sprintf("filter: %q (%d)", term, len(m.snapshot.Filtered))))
	}

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, styles.MutedText.Render(relativeTime(m.snapshot.LastUpdated)))
	}

	if err := m.snapshot.LastError; err != nil {
		parts = append(parts, styles.DangerText.Render(truncate(err.Error(), 50)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderFooter renders the hint line, the live search input or the
// transient notice.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	if m.searchMode {
		return styles.Footer.Width(m.width).Render("Search: " + m.searchInput.View())
	}
	if m.notice != "" {
		text := m.notice
		if m.noticeErr {
			return styles.Footer.Width(m.width).Render(styles.DangerText.Render(text))
		}
		return styles.Footer.Width(m.width).Render(styles.SuccessText.Render(text))
	}

	hints := "a add • e edit • d delete • i image • / search • r refresh • h help • q quit"
	if m.currentView == ViewForm {
		hints = "enter save • tab next field • esc cancel"
	}
	return styles.Footer.Width(m.width).Render(hints)
}

// relativeTime renders a timestamp with a coarse "ago" suffix.
func relativeTime(t time.Time) string {
	since := time.Since(t)
	stamp := t.Format("15:04:05")
	switch {
	case since < time.Minute:
		return stamp + " (now)"
	case since < time.Hour:
		return fmt.Sprintf("%s (%dm ago)", stamp, int(since.Minutes()))
	case since < 24*time.Hour:
		return fmt.Sprintf("%s (%dh ago)", stamp, int(since.Hours()))
	default:
		return stamp
	}
}

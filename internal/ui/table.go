package ui

import (
	"fmt"
	"strings"

	"github.com/crobledo/vitrina/internal/mutate"
)

// renderCatalog renders the filtered product table with the selection bar.
func (m Model) renderCatalog() string {
	styles := m.theme.Styles()

	if !m.snapshot.Loaded && m.snapshot.Loading {
		return styles.MutedText.Render("  Loading catalog...")
	}
	if len(m.snapshot.Filtered) == 0 {
		if m.snapshot.SearchTerm != "" {
			return styles.MutedText.Render(fmt.Sprintf("  No products match %q", m.snapshot.SearchTerm))
		}
		return styles.MutedText.Render("  No products available")
	}

	nameWidth := 28
	catWidth := 14
	if m.width < 90 {
		nameWidth = 20
		catWidth = 10
	}

	var b strings.Builder
	header := fmt.Sprintf("  %-5s %-*s %-*s %10s %7s  %s",
		"ID", nameWidth, "Name", catWidth, "Category", "Price", "Stock", "Image")
	b.WriteString(styles.MutedText.Bold(true).Render(header))
	b.WriteString("\n")

	visible := m.visibleRows()
	start, end := m.scrollWindow(len(m.snapshot.Filtered), visible)

	for i := start; i < end; i++ {
		p := m.snapshot.Filtered[i]
		row := fmt.Sprintf("  %-5d %-*s %-*s %10s %7d  %s",
			p.ID,
			nameWidth, truncate(p.Name, nameWidth),
			catWidth, truncate(p.Category, catWidth),
			formatMoney(p.Price),
			p.Stock,
			truncate(p.ImageURL, 24),
		)
		if badge := m.statusBadge(p.ID); badge != "" {
			row += "  " + badge
		}
		if i == m.selectedRow {
			b.WriteString(styles.Selected.Render(row))
		} else {
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}

	if end < len(m.snapshot.Filtered) {
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("  … %d more", len(m.snapshot.Filtered)-end)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// statusBadge renders the per-item edit status, when not idle.
func (m Model) statusBadge(id int) string {
	styles := m.theme.Styles()
	es := m.coord.Status(id)
	switch es.Status {
	case mutate.StatusSaving:
		return styles.WarningText.Render("[saving]")
	case mutate.StatusUploadingImage:
		return styles.WarningText.Render("[uploading image]")
	case mutate.StatusError:
		return styles.DangerText.Render("[error]")
	default:
		return ""
	}
}

// visibleRows returns how many table rows fit the current terminal.
func (m Model) visibleRows() int {
	// header bar + column header + footer + padding
	rows := m.height - 5
	if rows < 3 {
		rows = 3
	}
	return rows
}

// scrollWindow keeps the selection inside the rendered slice.
func (m Model) scrollWindow(total, visible int) (int, int) {
	if total <= visible {
		return 0, total
	}
	start := m.selectedRow - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > total {
		start = total - visible
	}
	return start, start + visible
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderDeleteDialog renders the delete confirmation overlay. The product
// stays in the collection until the server confirms the delete.
func (m Model) renderDeleteDialog() string {
	styles := m.theme.Styles()

	name := fmt.Sprintf("#%d", m.deleteTarget)
	if p, ok := m.store.Get(m.deleteTarget); ok {
		name = fmt.Sprintf("%q (#%d)", p.Name, p.ID)
	}

	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Delete product"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(fmt.Sprintf("Permanently delete %s from the catalog?", name)))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("y/enter confirm • n/esc cancel"))

	return m.centerOverlay(styles.BoxFocus.Render(b.String()))
}

// renderImagePrompt renders the in-place image swap prompt.
func (m Model) renderImagePrompt() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Render(fmt.Sprintf("Swap image for product #%d", m.imageTarget)))
	b.WriteString("\n\n")
	b.WriteString(m.imageInput.View())
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("enter upload • esc cancel"))

	return m.centerOverlay(styles.BoxFocus.Render(b.String()))
}

func (m Model) centerOverlay(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

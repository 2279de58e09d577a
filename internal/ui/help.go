package ui

import (
	"strings"
)

// renderHelp renders the full-screen help overlay. Any key closes it.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("vitrina"))
	b.WriteString(styles.MutedText.Render("  storefront admin"))
	b.WriteString("\n\n")

	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			b.WriteString("  ")
			b.WriteString(styles.AccentText.Render(padRight(binding.Help().Key, 12)))
			b.WriteString(styles.Text.Render(binding.Help().Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.MutedText.Render("  press any key to close"))
	return m.centerOverlay(styles.Box.Render(b.String()))
}

package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

const sliderWidth = 20

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title) + "\n")

	labelWidth := 0
	for _, a := range m.result.Adjustments {
		labelWidth = max(labelWidth, lipgloss.Width(a.Label))
	}
	maxFraction := m.maxFraction()

	for i, a := range m.result.Adjustments {
		cursor := "  "
		label := m.theme.Normal.Render(fmt.Sprintf("%-*s", labelWidth, a.Label))
		if i == m.cursor {
			cursor = m.theme.Selected.Render("▸ ")
			label = m.theme.Selected.Render(fmt.Sprintf("%-*s", labelWidth, a.Label))
		}
		fmt.Fprintf(&b, "%s%s  %s %6s  %12s → %12s\n",
			cursor,
			label,
			m.slider(a.Fraction/maxFraction),
			cli.FormatShare(a.Fraction),
			cli.FormatAmount(a.Base, m.format),
			cli.FormatAmount(a.Adjusted, m.format),
		)
	}

	summary := fmt.Sprintf("%s  %s\n%s  %s\n%s  %s",
		m.theme.Subtitle.Render("Base net    "), cli.FormatAmount(m.result.BaseNet, m.format),
		m.theme.Subtitle.Render("Scenario net"), m.theme.Bold.Render(cli.FormatAmount(m.result.Net, m.format)),
		m.theme.Subtitle.Render("Uplift      "), m.theme.Uplift.Render("+"+cli.FormatAmount(m.result.Uplift, m.format)),
	)
	b.WriteString("\n" + m.theme.BorderedBox.Render(summary) + "\n\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

// slider draws a fill bar for a position in [0, 1].
func (m Model) slider(pos float64) string {
	filled := int(pos*sliderWidth + 0.5)
	filled = min(max(filled, 0), sliderWidth)
	return m.theme.SliderFull.Render(strings.Repeat("━", filled)) +
		m.theme.SliderEmpty.Render(strings.Repeat("─", sliderWidth-filled))
}

// Package themes holds the color schemes of the scenario explorer.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Selected    lipgloss.Style
	Muted       lipgloss.Style
	SliderFull  lipgloss.Style
	SliderEmpty lipgloss.Style
	Uplift      lipgloss.Style
	Warning     lipgloss.Style
	BorderedBox lipgloss.Style
	Primary     lipgloss.Color
	Border      lipgloss.Color
	Success     lipgloss.Color
	WarningFg   lipgloss.Color
	MutedFg     lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary:   lipgloss.Color("#7c3aed"),
	Success:   lipgloss.Color("#10b981"),
	WarningFg: lipgloss.Color("#f59e0b"),
	Border:    lipgloss.Color("#404040"),
	MutedFg:   lipgloss.Color("#737373"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	SliderFull: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7c3aed")),
	SliderEmpty: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#404040")),
	Uplift: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10b981")),
	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),
	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
}

// Monochrome renders without colors, for terminals that cannot show them.
var Monochrome = Theme{
	Title:       lipgloss.NewStyle().Bold(true).MarginBottom(1),
	Subtitle:    lipgloss.NewStyle(),
	Normal:      lipgloss.NewStyle(),
	Bold:        lipgloss.NewStyle().Bold(true),
	Selected:    lipgloss.NewStyle().Bold(true).Underline(true),
	Muted:       lipgloss.NewStyle().Faint(true),
	SliderFull:  lipgloss.NewStyle(),
	SliderEmpty: lipgloss.NewStyle().Faint(true),
	Uplift:      lipgloss.NewStyle().Bold(true),
	Warning:     lipgloss.NewStyle().Bold(true),
	BorderedBox: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
}

// ByName returns a theme by name. Unknown names get the default theme.
func ByName(name string) Theme {
	if name == "mono" || name == "monochrome" {
		return Monochrome
	}
	return Default
}

package tui

import (
	"math"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/Veraticus/gross-to-net/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the explorer state. The baseline summary is never modified; every
// slider change reruns the engine against it.
type Model struct {
	fractions scenario.Fractions
	keymap    KeyMap
	theme     themes.Theme
	title     string
	format    cli.NumberFormat
	help      help.Model
	result    scenario.Result
	base      aggregate.Summary
	engine    scenario.Engine
	step      float64
	cursor    int
	width     int
	height    int
	quitting  bool
}

// NewModel creates an explorer for base.
func NewModel(base aggregate.Summary, engine scenario.Engine, step float64, format cli.NumberFormat) Model {
	cfg := DefaultConfig(base)
	cfg.Engine = engine
	cfg.Format = format
	if step > 0 {
		cfg.Step = step
	}
	return newModel(cfg)
}

func newModel(cfg Config) Model {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	m := Model{
		fractions: scenario.Fractions{},
		keymap:    DefaultKeyMap(),
		theme:     cfg.Theme,
		title:     cfg.Title,
		format:    cfg.Format,
		help:      help.New(),
		base:      cfg.Base,
		engine:    cfg.Engine,
		step:      cfg.Step,
		width:     cfg.Width,
		height:    cfg.Height,
	}
	for f, v := range cfg.Initial {
		if f.IsDiscount() {
			m.fractions[f] = v
		}
	}
	m.recompute()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Up):
			m.cursor = (m.cursor - 1 + len(model.DiscountFields)) % len(model.DiscountFields)
		case key.Matches(msg, m.keymap.Down):
			m.cursor = (m.cursor + 1) % len(model.DiscountFields)
		case key.Matches(msg, m.keymap.Increase):
			m.nudge(m.step)
		case key.Matches(msg, m.keymap.Decrease):
			m.nudge(-m.step)
		case key.Matches(msg, m.keymap.Reset):
			m.fractions = scenario.Fractions{}
			m.recompute()
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// nudge moves the selected slider by delta, staying within [0, MaxFraction].
func (m *Model) nudge(delta float64) {
	f := m.Selected()
	next := math.Round((m.fractions[f]+delta)*1e6) / 1e6
	next = math.Min(math.Max(next, 0), m.maxFraction())

	fractions := m.fractions.Clone()
	if next == 0 {
		delete(fractions, f)
	} else {
		fractions[f] = next
	}
	m.fractions = fractions
	m.recompute()
}

func (m *Model) recompute() {
	m.result = m.engine.Apply(m.base, m.fractions)
}

func (m Model) maxFraction() float64 {
	if m.engine.MaxFraction <= 0 {
		return scenario.DefaultMaxFraction
	}
	return m.engine.MaxFraction
}

// Selected returns the discount bucket under the cursor.
func (m Model) Selected() model.Field {
	return model.DiscountFields[m.cursor]
}

// Result returns the scenario for the current slider positions.
func (m Model) Result() scenario.Result {
	return m.result
}

// Fractions returns a copy of the current slider positions.
func (m Model) Fractions() scenario.Fractions {
	return m.fractions.Clone()
}

// Package tui is an interactive scenario explorer: one slider per discount bucket,
// with the waterfall recomputed on every change.
package tui

import (
	"io"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/Veraticus/gross-to-net/internal/tui/themes"
)

// DefaultStep is the slider increment.
const DefaultStep = 0.01

// Config holds TUI configuration.
type Config struct {
	Input   io.Reader
	Output  io.Writer
	Initial scenario.Fractions
	Theme   themes.Theme
	Title   string
	Format  cli.NumberFormat
	Base    aggregate.Summary
	Engine  scenario.Engine
	Step    float64
	Width   int
	Height  int
	// AltScreen runs the program in the terminal's alternate screen.
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// DefaultConfig returns the configuration for exploring base.
func DefaultConfig(base aggregate.Summary) Config {
	return Config{
		Base:      base,
		Engine:    scenario.DefaultEngine(),
		Step:      DefaultStep,
		Format:    cli.DefaultNumberFormat(),
		Theme:     themes.Default,
		Title:     "Scenario explorer",
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// NewConfig applies opts to the default configuration.
func NewConfig(base aggregate.Summary, opts ...Option) Config {
	cfg := DefaultConfig(base)
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithEngine sets the scenario engine.
func WithEngine(e scenario.Engine) Option {
	return func(c *Config) {
		c.Engine = e
	}
}

// WithStep sets the slider increment.
func WithStep(step float64) Option {
	return func(c *Config) {
		if step > 0 {
			c.Step = step
		}
	}
}

// WithInitial starts the sliders at the given fractions.
func WithInitial(f scenario.Fractions) Option {
	return func(c *Config) {
		c.Initial = f.Clone()
	}
}

// WithFormat sets the amount format.
func WithFormat(f cli.NumberFormat) Option {
	return func(c *Config) {
		c.Format = f
	}
}

// WithTheme sets the theme.
func WithTheme(t themes.Theme) Option {
	return func(c *Config) {
		c.Theme = t
	}
}

// WithTitle sets the header line.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithIO replaces stdin and stdout, mainly for tests.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
		c.AltScreen = false
	}
}

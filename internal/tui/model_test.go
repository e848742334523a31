package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/cli"
	"github.com/Veraticus/gross-to-net/internal/model"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/Veraticus/gross-to-net/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSummary() aggregate.Summary {
	rows := []model.CanonicalRow{
		model.NewCanonicalRow(model.Identity{ProductGroup: "Oncology", Customer: "Noord", SKU: "ONC-10", Period: "2024-01"}, map[model.Field]float64{
			model.FieldGross:           2000,
			model.FieldDiscountChannel: 200,
			model.FieldDiscountVolume:  50,
			model.FieldRebateDirect:    50,
		}),
	}
	return aggregate.Aggregate(rows, aggregate.DefaultConfig())
}

func newTestModel() Model {
	return NewModel(baseSummary(), scenario.DefaultEngine(), 0.01, cli.DefaultNumberFormat())
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func repeat(k tea.KeyMsg, n int) []tea.KeyMsg {
	out := make([]tea.KeyMsg, n)
	for i := range out {
		out[i] = k
	}
	return out
}

var (
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_StartsAtBaseline(t *testing.T) {
	m := newTestModel()

	assert.Equal(t, model.FieldDiscountChannel, m.Selected())
	assert.Empty(t, m.Fractions())
	assert.InDelta(t, 1700, m.Result().Net, 1e-9)
	assert.InDelta(t, 0, m.Result().Uplift, 1e-9)
}

func TestModel_IncreaseRecomputes(t *testing.T) {
	m := press(t, newTestModel(), repeat(keyRight, 10)...)

	assert.InDelta(t, 0.10, m.Fractions()[model.FieldDiscountChannel], 1e-12)
	assert.InDelta(t, 1720, m.Result().Net, 1e-9)
	assert.InDelta(t, 20, m.Result().Uplift, 1e-9)
	assert.InDelta(t, 1700, m.Result().BaseNet, 1e-9, "baseline is untouched")
}

func TestModel_SliderBounds(t *testing.T) {
	m := press(t, newTestModel(), repeat(keyRight, 30)...)
	assert.InDelta(t, 0.20, m.Fractions()[model.FieldDiscountChannel], 1e-12)
	assert.Empty(t, m.Result().Clamped)

	m = press(t, m, repeat(keyLeft, 25)...)
	_, present := m.Fractions()[model.FieldDiscountChannel]
	assert.False(t, present, "a slider at zero is not an applied reduction")
	assert.InDelta(t, 1700, m.Result().Net, 1e-9)
}

func TestModel_CursorWraps(t *testing.T) {
	m := press(t, newTestModel(), keyUp)
	assert.Equal(t, model.DiscountFields[len(model.DiscountFields)-1], m.Selected())

	m = press(t, m, keyDown, keyDown, keyDown, keyDown)
	assert.Equal(t, model.FieldDiscountVolume, m.Selected())

	m = press(t, m, keyRight)
	assert.InDelta(t, 0.01, m.Fractions()[model.FieldDiscountVolume], 1e-12)
	assert.InDelta(t, 1700.5, m.Result().Net, 1e-9)
}

func TestModel_ResetAndHelp(t *testing.T) {
	m := press(t, newTestModel(), keyRight, keyRight, keyDown, keyRight)
	require.Len(t, m.Fractions(), 2)

	m = press(t, m, runeKey('r'))
	assert.Empty(t, m.Fractions())
	assert.InDelta(t, 1700, m.Result().Net, 1e-9)

	assert.False(t, m.help.ShowAll)
	m = press(t, m, runeKey('?'))
	assert.True(t, m.help.ShowAll)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel()

	next, cmd := m.Update(runeKey('q'))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Empty(t, next.View())
}

func TestModel_InitialFractions(t *testing.T) {
	cfg := NewConfig(baseSummary(),
		WithInitial(scenario.Fractions{model.FieldDiscountChannel: 0.05, model.FieldRebateDirect: 0.1}),
		WithTheme(themes.Monochrome),
	)

	m := newModel(cfg)

	assert.Equal(t, scenario.Fractions{model.FieldDiscountChannel: 0.05}, m.Fractions())
	assert.InDelta(t, 1710, m.Result().Net, 1e-9)
}

func TestModel_View(t *testing.T) {
	m := press(t, newTestModel(), repeat(keyRight, 10)...)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})

	view := m.View()

	assert.Contains(t, view, "Scenario explorer")
	assert.Contains(t, view, "Channel Discount")
	assert.Contains(t, view, "▸ ")
	assert.Contains(t, view, "10.0%")
	assert.Contains(t, view, "€200")
	assert.Contains(t, view, "€180")
	assert.Contains(t, view, "+€20")
	assert.Contains(t, view, strings.Repeat("━", 10)+strings.Repeat("─", 10))
}

func TestRun_ReturnsFinalScenario(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	cfg := NewConfig(baseSummary(), WithIO(strings.NewReader("lllq"), &out))

	res, err := Run(ctx, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, res.Applied[model.FieldDiscountChannel], 1e-12)
	assert.InDelta(t, 1706, res.Net, 1e-9)
}

package config

import (
	"fmt"

	"github.com/Veraticus/gross-to-net/internal/aggregate"
	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/normalize"
	"github.com/Veraticus/gross-to-net/internal/scenario"
	"github.com/spf13/viper"
)

// DefaultDatabasePath is where imported datasets live unless database.path is set.
const DefaultDatabasePath = "~/.config/gtn/gtn.db"

// Settings is the typed view of the gtn configuration.
type Settings struct {
	DatabasePath      string
	Currency          string
	Thousands         string
	DecimalMark       string
	Theme             string
	LogLevel          string
	LogFormat         string
	RelativeTolerance float64
	AbsoluteTolerance float64
	SKUThresholdPP    float64
	MaxFraction       float64
	ScenarioStep      float64
	TopN              int
	Decimals          int
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("tolerance.relative", normalize.DefaultRelativeTolerance)
	v.SetDefault("tolerance.absolute", normalize.DefaultAbsoluteTolerance)
	v.SetDefault("outliers.top_n", aggregate.DefaultTopN)
	v.SetDefault("outliers.sku_threshold_pp", aggregate.DefaultSKUFlagThreshold)
	v.SetDefault("scenario.max_fraction", scenario.DefaultMaxFraction)
	v.SetDefault("scenario.step", 0.01)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("display.currency", "€")
	v.SetDefault("display.decimals", 0)
	v.SetDefault("display.thousands", ",")
	v.SetDefault("display.decimal_mark", ".")
	v.SetDefault("display.theme", "default")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads settings from the global viper instance.
func Load() (Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates settings from v. Unset keys fall back to defaults.
func LoadFrom(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		DatabasePath:      ExpandPath(v.GetString("database.path")),
		Currency:          v.GetString("display.currency"),
		Thousands:         v.GetString("display.thousands"),
		DecimalMark:       v.GetString("display.decimal_mark"),
		Theme:             v.GetString("display.theme"),
		LogLevel:          v.GetString("logging.level"),
		LogFormat:         v.GetString("logging.format"),
		RelativeTolerance: v.GetFloat64("tolerance.relative"),
		AbsoluteTolerance: v.GetFloat64("tolerance.absolute"),
		SKUThresholdPP:    v.GetFloat64("outliers.sku_threshold_pp"),
		MaxFraction:       v.GetFloat64("scenario.max_fraction"),
		ScenarioStep:      v.GetFloat64("scenario.step"),
		TopN:              v.GetInt("outliers.top_n"),
		Decimals:          v.GetInt("display.decimals"),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the pipeline cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.DatabasePath == "":
		return fmt.Errorf("%w: database.path is empty", common.ErrInvalidConfig)
	case s.RelativeTolerance < 0 || s.AbsoluteTolerance < 0:
		return fmt.Errorf("%w: tolerances cannot be negative", common.ErrInvalidConfig)
	case s.TopN <= 0:
		return fmt.Errorf("%w: outliers.top_n must be positive", common.ErrInvalidConfig)
	case s.MaxFraction <= 0 || s.MaxFraction > 1:
		return fmt.Errorf("%w: scenario.max_fraction must be in (0, 1]", common.ErrInvalidConfig)
	case s.ScenarioStep <= 0 || s.ScenarioStep > s.MaxFraction:
		return fmt.Errorf("%w: scenario.step must be in (0, max_fraction]", common.ErrInvalidConfig)
	case s.Decimals < 0 || s.Decimals > 4:
		return fmt.Errorf("%w: display.decimals must be between 0 and 4", common.ErrInvalidConfig)
	case s.DecimalMark == "":
		return fmt.Errorf("%w: display.decimal_mark is empty", common.ErrInvalidConfig)
	case s.DecimalMark == s.Thousands:
		return fmt.Errorf("%w: display.thousands and display.decimal_mark must differ", common.ErrInvalidConfig)
	}
	_, err := common.ParseLevel(s.LogLevel)
	return err
}

// Tolerance returns the normalizer balance tolerance.
func (s Settings) Tolerance() normalize.Tolerance {
	return normalize.Tolerance{Relative: s.RelativeTolerance, Absolute: s.AbsoluteTolerance}
}

// Aggregate returns the aggregation settings.
func (s Settings) Aggregate() aggregate.Config {
	return aggregate.Config{TopN: s.TopN, SKUFlagThreshold: s.SKUThresholdPP}
}

// Engine returns the scenario engine.
func (s Settings) Engine() scenario.Engine {
	return scenario.Engine{MaxFraction: s.MaxFraction}
}

package config

import (
	"github.com/Veraticus/gross-to-net/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration from viper and the environment.
// Precedence: viper (config file or GTN_ env vars), then GOOGLE_SHEETS_* variables,
// then defaults.
func LoadSheetsConfig() (*sheets.Config, error) {
	return LoadSheetsConfigFrom(viper.GetViper())
}

// LoadSheetsConfigFrom is LoadSheetsConfig against an explicit viper instance.
func LoadSheetsConfigFrom(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	cfg.ServiceAccountPath = ExpandPath(v.GetString("sheets.service_account_path"))
	cfg.ClientID = v.GetString("sheets.client_id")
	cfg.ClientSecret = v.GetString("sheets.client_secret")
	cfg.RefreshToken = v.GetString("sheets.refresh_token")
	cfg.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		cfg.SpreadsheetName = name
	}
	if pattern := v.GetString("sheets.currency_pattern"); pattern != "" {
		cfg.CurrencyPattern = pattern
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		cfg.TimeZone = tz
	}

	cfg.LoadFromEnv()
	cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

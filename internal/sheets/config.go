// Package sheets publishes waterfall reports to Google Sheets.
package sheets

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/gross-to-net/internal/common"
)

// DefaultSpreadsheetName is used when a new spreadsheet has to be created.
const DefaultSpreadsheetName = "Gross-to-Net Waterfall"

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	CurrencyPattern    string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  DefaultSpreadsheetName,
		TimeZone:         "Europe/Amsterdam",
		CurrencyPattern:  "€#,##0",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// LoadFromEnv fills unset fields from GOOGLE_SHEETS_* environment variables.
func (c *Config) LoadFromEnv() {
	setIfEmpty(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setIfEmpty(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setIfEmpty(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setIfEmpty(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	setIfEmpty(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	if c.SpreadsheetName == "" || c.SpreadsheetName == DefaultSpreadsheetName {
		if v := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); v != "" {
			c.SpreadsheetName = v
		}
	}
}

func setIfEmpty(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

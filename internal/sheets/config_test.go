package sheets

import (
	"testing"
	"time"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		errMsg  string
		config  Config
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
		},
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:     "test-client",
				RefreshToken: "test-token",
				BatchSize:    100,
			},
			wantErr: common.ErrMissingConfig,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: common.ErrInvalidConfig,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name:    "invalid batch size",
			config:  Config{ServiceAccountPath: "/key.json"},
			wantErr: common.ErrInvalidConfig,
			errMsg:  "batch size must be positive",
		},
		{
			name: "negative retry delay",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryDelay:         -1 * time.Second,
			},
			wantErr: common.ErrInvalidConfig,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfigLoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/secrets/key.json")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "Q1 Waterfall")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")

	cfg := DefaultConfig()
	cfg.SpreadsheetID = "from-config"
	cfg.LoadFromEnv()

	assert.Equal(t, "/secrets/key.json", cfg.ServiceAccountPath)
	assert.Equal(t, "Q1 Waterfall", cfg.SpreadsheetName)
	assert.Equal(t, "from-config", cfg.SpreadsheetID, "explicit settings win over the environment")
	assert.NoError(t, cfg.Validate())
}

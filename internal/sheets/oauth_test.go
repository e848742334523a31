package sheets

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    bool
	}{
		{name: "success", query: "?state=s1&code=abc", wantStatus: http.StatusOK, wantCode: "abc"},
		{name: "state mismatch", query: "?state=other&code=abc", wantStatus: http.StatusBadRequest, wantErr: true},
		{name: "denied", query: "?state=s1&error=access_denied", wantStatus: http.StatusBadRequest, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeCh := make(chan string, 1)
			errCh := make(chan error, 1)
			rec := httptest.NewRecorder()

			callbackHandler("s1", codeCh, errCh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErr {
				require.Len(t, errCh, 1)
				assert.Empty(t, codeCh)
				return
			}
			require.Len(t, codeCh, 1)
			assert.Equal(t, tt.wantCode, <-codeCh)
		})
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheets", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, loaded.Expiry.Equal(token.Expiry))
}

func TestLoadToken_Missing(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

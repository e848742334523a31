package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// ErrAuthTimeout is returned when the browser flow does not complete in time.
var ErrAuthTimeout = errors.New("authentication timed out")

// OAuth2Config configures the interactive authorization flow.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	Port         int
	Timeout      time.Duration
}

func oauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// Authorize runs the browser OAuth2 flow on a loopback listener and returns a token
// with a refresh token. announce receives the URL the user has to open.
func Authorize(ctx context.Context, cfg OAuth2Config, announce func(url string)) (*oauth2.Token, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client id and secret are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	state, err := randomState()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	conf := oauthConfig(cfg.ClientID, cfg.ClientSecret, fmt.Sprintf("http://%s/callback", listener.Addr()))
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, codeCh, errCh))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server failed: %w", serveErr)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	announce(conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(cfg.Timeout):
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if cfg.TokenFile != "" {
		if err := SaveToken(cfg.TokenFile, token); err != nil {
			slog.Warn("failed to save token", "error", err, "file", cfg.TokenFile)
		}
	}
	return token, nil
}

// callbackHandler receives the authorization redirect.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			trySend(errCh, fmt.Errorf("oauth state mismatch"))
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "no authorization code received", http.StatusBadRequest)
			trySend(errCh, fmt.Errorf("no authorization code received: %s", query.Get("error")))
			return
		}

		select {
		case codeCh <- code:
		default:
		}
		_, _ = fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You can close this window.</p></body></html>")
	})
}

func trySend(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return token, nil
}

// SaveToken writes a token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

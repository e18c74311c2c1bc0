// Package gsuite wraps the Google Workspace APIs behind the narrow
// interfaces the action handlers consume, with a file-backed OAuth
// token.
package gsuite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	tasks "google.golang.org/api/tasks/v1"

	"eva/internal/logger"
)

// ErrAuthRequired is returned when no stored token exists yet. The
// HTTP layer turns it into a pointer to the authorization URL.
var ErrAuthRequired = errors.New("google authorization required")

// ErrCredentialsExpired is returned when the stored token was revoked
// or its refresh failed. Re-authorization is needed.
var ErrCredentialsExpired = errors.New("google credentials expired")

var scopes = []string{
	calendar.CalendarScope,
	gmail.GmailModifyScope,
	gmail.GmailSendScope,
	tasks.TasksScope,
}

// Auth manages the OAuth flow and the persisted token.
type Auth struct {
	mu        sync.Mutex
	config    *oauth2.Config
	tokenFile string
	token     *oauth2.Token
}

// NewAuth reads the client secrets file (the JSON downloaded from the
// Google Cloud console) and loads any previously stored token.
func NewAuth(secretsFile, tokenFile, redirectURL string) (*Auth, error) {
	raw, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	config, err := google.ConfigFromJSON(raw, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	if redirectURL != "" {
		config.RedirectURL = redirectURL
	}

	a := &Auth{config: config, tokenFile: tokenFile}
	if tok, err := a.loadToken(); err == nil {
		a.token = tok
		logger.Debug("gsuite: loaded stored token from %s", tokenFile)
	}
	return a, nil
}

// AuthURL returns the consent-page URL the user must visit.
func (a *Auth) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and persists it.
func (a *Auth) Exchange(ctx context.Context, code string) error {
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = tok
	return a.saveToken(tok)
}

// Invalidate drops the stored token so the next call reports
// ErrAuthRequired.
func (a *Auth) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = nil
	os.Remove(a.tokenFile)
	logger.Warn("gsuite: stored token invalidated")
}

// Authorized reports whether a token is on hand.
func (a *Auth) Authorized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != nil
}

// Client returns an HTTP client that refreshes and re-persists the
// token as needed.
func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == nil {
		return nil, ErrAuthRequired
	}
	src := a.config.TokenSource(ctx, a.token)
	return oauth2.NewClient(ctx, &savingSource{auth: a, src: src, last: a.token}), nil
}

// savingSource persists refreshed tokens back to disk.
type savingSource struct {
	auth *Auth
	src  oauth2.TokenSource
	last *oauth2.Token
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			s.auth.Invalidate()
			return nil, ErrCredentialsExpired
		}
		return nil, err
	}
	if tok.AccessToken != s.last.AccessToken {
		s.auth.mu.Lock()
		s.auth.token = tok
		s.auth.saveToken(tok)
		s.auth.mu.Unlock()
		s.last = tok
	}
	return tok, nil
}

func (a *Auth) loadToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(a.tokenFile)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (a *Auth) saveToken(tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.tokenFile, raw, 0o600); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// mapAPIError converts 401s into ErrCredentialsExpired, invalidating
// the stored token so the user is asked to re-authorize.
func (a *Auth) mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		a.Invalidate()
		return ErrCredentialsExpired
	}
	return err
}

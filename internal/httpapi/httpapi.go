// Package httpapi serves the plain HTTP endpoints next to the chat
// WebSocket: liveness, status, and the Google authorization flow.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"eva/internal/gsuite"
	"eva/internal/logger"
)

// Status is the /api/status payload.
type Status struct {
	Version          string `json:"version"`
	Provider         string `json:"provider"`
	GoogleAuthorized bool   `json:"google_authorized"`
	Actions          int    `json:"actions"`
	StartedAt        string `json:"started_at"`
}

// API carries the handlers' shared state. auth may be nil when the
// Google integration is not configured.
type API struct {
	version   string
	provider  string
	actions   int
	auth      *gsuite.Auth
	startedAt time.Time
	state     string
}

func New(version, provider string, actionCount int, auth *gsuite.Auth) *API {
	return &API{
		version:   version,
		provider:  provider,
		actions:   actionCount,
		auth:      auth,
		startedAt: time.Now(),
		state:     uuid.NewString(),
	}
}

// Register mounts the endpoints on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.health)
	mux.HandleFunc("/api/status", a.status)
	mux.HandleFunc("/authorize_google", a.authorize)
	mux.HandleFunc("/oauth2callback_google", a.callback)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Status{
		Version:          a.version,
		Provider:         a.provider,
		GoogleAuthorized: a.auth != nil && a.auth.Authorized(),
		Actions:          a.actions,
		StartedAt:        a.startedAt.Format(time.RFC3339),
	})
}

// authorize redirects the browser to the Google consent page.
func (a *API) authorize(w http.ResponseWriter, r *http.Request) {
	if a.auth == nil {
		http.Error(w, "google integration not configured", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, a.auth.AuthURL(a.state), http.StatusFound)
}

// callback finishes the OAuth flow with the code Google sends back.
func (a *API) callback(w http.ResponseWriter, r *http.Request) {
	if a.auth == nil {
		http.Error(w, "google integration not configured", http.StatusServiceUnavailable)
		return
	}
	if got := r.URL.Query().Get("state"); got != a.state {
		logger.Warn("httpapi: oauth callback with wrong state")
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	if err := a.auth.Exchange(r.Context(), code); err != nil {
		logger.Error("httpapi: token exchange: %v", err)
		http.Error(w, "authorization failed", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<html><body><p>Autorisation Google terminée. Vous pouvez fermer cet onglet.</p></body></html>"))
}

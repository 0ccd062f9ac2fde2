package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/pkg/httputil"
)

const oauthStateCookie = "massmail_oauth_state"

// GmailConnect starts the consent flow and returns the URL to visit.
//
//	GET /api/gmail/connect
func (h *Handlers) GmailConnect(w http.ResponseWriter, r *http.Request) {
	if h.gmail == nil {
		httputil.NotFound(w, "gmail provider is not configured")
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/gmail",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.OK(w, map[string]any{
		"url":       h.gmail.AuthCodeURL(state),
		"connected": h.gmail.Connected(),
	})
}

// GmailCallback exchanges the consent code for a token and caches it.
//
//	GET /auth/gmail/callback
func (h *Handlers) GmailCallback(w http.ResponseWriter, r *http.Request) {
	if h.gmail == nil {
		httputil.NotFound(w, "gmail provider is not configured")
		return
	}
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		httputil.BadRequest(w, "oauth state mismatch")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.BadRequest(w, "missing code")
		return
	}
	if err := h.gmail.Exchange(r.Context(), code); err != nil {
		httputil.FromError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/gmail", MaxAge: -1})
	httputil.Success(w, "Gmail connected", nil)
}

package api

import (
	"net/http"

	"github.com/ignite/massmail/internal/pkg/httputil"
	"github.com/ignite/massmail/internal/session"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an admin account.
//
//	POST /auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !httputil.Decode(w, r, &req) {
		return
	}
	u, err := h.identity.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, "Admin registered", u)
}

// Login authenticates an admin and starts a session.
//
//	POST /auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !httputil.Decode(w, r, &req) {
		return
	}
	id, err := h.identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	s, err := h.sessions.Start(r.Context(), w, *id)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "Logged in", s)
}

// Logout ends the current session. It succeeds without one.
//
//	POST /auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(r.Context(), w, r)
	httputil.Success(w, "Logged out", nil)
}

// Me returns the current session.
//
//	GET /api/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	httputil.OK(w, s)
}

type selectRequest struct {
	Ref string `json:"ref"`
}

// SelectSender sets the account compose and schedule default to. The ref may
// be an id or a username and must name an enabled user.
//
//	PUT /api/session/sender
func (h *Handlers) SelectSender(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	u, err := h.users.ResolveSender(r.Context(), req.Ref)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	s, _ := session.FromContext(r.Context())
	s.SelectedSender = u.ID
	if err := h.sessions.Save(r.Context(), s); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "Sender selected", s)
}

// SelectTemplateOwner scopes the template list. A blank ref selects the
// shared templates.
//
//	PUT /api/session/template-owner
func (h *Handlers) SelectTemplateOwner(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	owner, err := h.templates.ResolveOwner(r.Context(), req.Ref)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	s, _ := session.FromContext(r.Context())
	s.TemplateOwner = owner
	if err := h.sessions.Save(r.Context(), s); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "Template owner selected", s)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httputil"
	"github.com/ignite/massmail/internal/service/user"
)

// ListUsers returns every account.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.User{}, err)
		return
	}
	httputil.OK(w, users)
}

// ListAdmins returns superuser accounts.
func (h *Handlers) ListAdmins(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAdmins(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.User{}, err)
		return
	}
	httputil.OK(w, users)
}

// ListEnabledUsers returns enabled non-admin accounts, the possible senders.
func (h *Handlers) ListEnabledUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListEnabled(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.User{}, err)
		return
	}
	httputil.OK(w, users)
}

// GetUser returns one account.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, u)
}

// CreateUser adds a non-admin account.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in user.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, "User created", u)
}

// UpdateUser changes the fields present in the body.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in user.UpdateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.users.Update(r.Context(), id, in); err != nil {
		httputil.FromError(w, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "User updated", u)
}

// DeleteUser removes an account. Templates and counters it owns are kept.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "User deleted", nil)
}

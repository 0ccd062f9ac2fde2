package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httputil"
	"github.com/ignite/massmail/internal/session"
)

type templateRequest struct {
	Owner   string `json:"owner"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ListTemplates returns the owner's templates plus the shared ones. The owner
// comes from ?owner= or, when absent, the session's template owner.
//
//	GET /api/templates
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ref, ok := r.URL.Query()["owner"]
	var owner string
	if ok && len(ref) > 0 {
		resolved, err := h.templates.ResolveOwner(r.Context(), ref[0])
		if err != nil {
			httputil.FromError(w, err)
			return
		}
		owner = resolved
	} else if s, ok := session.FromContext(r.Context()); ok && s.TemplateOwner != "" {
		owner = s.TemplateOwner
	} else {
		owner = domain.SharedOwner
	}

	list, err := h.templates.ListForOwner(r.Context(), owner)
	if err != nil {
		httputil.Degraded(w, []domain.Template{}, err)
		return
	}
	httputil.OK(w, list)
}

// ListSharedTemplates returns templates owned by superuser.
func (h *Handlers) ListSharedTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.templates.ListShared(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.Template{}, err)
		return
	}
	httputil.OK(w, list)
}

// CreateTemplate stores a template for an owner. A blank owner shares it.
func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	owner, err := h.templates.ResolveOwner(r.Context(), req.Owner)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	t, err := h.templates.Create(r.Context(), owner, req.Name, req.Content)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, "Template created", t)
}

// UpdateTemplate rewrites every template with the given name.
func (h *Handlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	n, err := h.templates.Update(r.Context(), chi.URLParam(r, "name"), req.Content)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, fmt.Sprintf("%d templates updated", n), map[string]int64{"matched": n})
}

// DeleteTemplate removes every template with the given name.
func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	n, err := h.templates.Delete(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, fmt.Sprintf("%d templates deleted", n), map[string]int64{"removed": n})
}

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httputil"
)

// maxUploadSize caps CSV uploads.
const maxUploadSize = 10 << 20

type contactRequest struct {
	Username string `json:"username"`
}

// ListContacts returns every contact.
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.Contact{}, err)
		return
	}
	httputil.OK(w, contacts)
}

// GetContact returns one contact.
func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.contacts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, c)
}

// CreateContact adds a contact unless the username is already stored.
func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.contacts.Create(r.Context(), req.Username)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, "Contact added", c)
}

// UpdateContact renames a contact.
func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.contacts.Update(r.Context(), id, req.Username); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "Contact updated", nil)
}

// DeleteContact removes a contact.
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "Contact deleted", nil)
}

// ImportContacts reads a multipart CSV upload (field "file") with a username
// column.
//
//	POST /api/contacts/import
func (h *Handlers) ImportContacts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "a CSV file is required in field \"file\"")
		return
	}
	defer file.Close()

	report, err := h.contacts.Import(r.Context(), file)
	if err != nil {
		if report != nil {
			httputil.FromErrorWithData(w, err, report)
			return
		}
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, fmt.Sprintf("%d contacts added", report.Added), report)
}

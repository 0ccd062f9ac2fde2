package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httputil"
)

// ListScheduled returns every scheduled email without its body.
//
//	GET /api/scheduled
func (h *Handlers) ListScheduled(w http.ResponseWriter, r *http.Request) {
	list, err := h.schedule.List(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.ScheduledEmail{}, err)
		return
	}
	httputil.OK(w, list)
}

// DeleteScheduled removes a record and cancels its timer.
//
//	DELETE /api/scheduled/{id}
func (h *Handlers) DeleteScheduled(w http.ResponseWriter, r *http.Request) {
	if err := h.schedule.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "Scheduled email deleted", nil)
}

// RetryScheduled puts a Failed record back to Pending.
//
//	POST /api/scheduled/{id}/retry
func (h *Handlers) RetryScheduled(w http.ResponseWriter, r *http.Request) {
	rec, err := h.schedule.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	rec.Body = ""
	httputil.Success(w, "Scheduled email re-armed", rec)
}

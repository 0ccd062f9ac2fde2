package api

import (
	"net/http"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httputil"
	"github.com/ignite/massmail/internal/service/report"
)

// GetDashboard returns every figure at once. Figures whose store read failed
// are zero and their errors are listed; the response is still 200.
//
//	GET /api/dashboard
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.reports.Dashboard(r.Context()))
}

// GetSummary returns the counter totals, deliverability gauge and breakdown.
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.reports.Summary(r.Context())
	if err != nil {
		httputil.Degraded(w, report.Summary{Breakdown: []report.Breakdown{}}, err)
		return
	}
	httputil.OK(w, sum)
}

// GetPerformance returns total sent per sender, highest first.
func (h *Handlers) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.reports.SenderRanking(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.SenderTotal{}, err)
		return
	}
	httputil.OK(w, ranking)
}

// GetGrowth returns new sender counters per day.
func (h *Handlers) GetGrowth(w http.ResponseWriter, r *http.Request) {
	days, err := h.reports.CampaignGrowth(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.DailyCount{}, err)
		return
	}
	httputil.OK(w, days)
}

// GetScheduledStatus returns scheduled-email counts per status.
func (h *Handlers) GetScheduledStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reports.ScheduledStatusCounts(r.Context())
	if err != nil {
		httputil.Degraded(w, []domain.StatusCount{}, err)
		return
	}
	httputil.OK(w, counts)
}

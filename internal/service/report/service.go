package report

import (
	"context"
	"sort"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// Breakdown is one slice of the Sent/Delivered/Inbox/Spam chart.
type Breakdown struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Summary is the totals card.
type Summary struct {
	domain.StatsSummary
	DeliverabilityScore float64     `json:"deliverability_score"`
	Breakdown           []Breakdown `json:"breakdown"`
}

// Dashboard bundles every figure. Errors lists the figures that fell back
// to zero values.
type Dashboard struct {
	Summary         Summary              `json:"summary"`
	SenderRanking   []domain.SenderTotal `json:"sender_ranking"`
	CampaignGrowth  []domain.DailyCount  `json:"campaign_growth"`
	ScheduledStatus []domain.StatusCount `json:"scheduled_status"`
	Errors          []string             `json:"errors,omitempty"`
}

// Service computes report figures.
type Service struct {
	stats     StatsReader
	scheduled ScheduledCounter
}

// NewService creates a report service.
func NewService(stats StatsReader, scheduled ScheduledCounter) *Service {
	return &Service{stats: stats, scheduled: scheduled}
}

// Summary sums every counter document.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	sum, err := s.stats.Summary(ctx)
	if err != nil {
		logger.Error("report: summary failed", "error", err)
		return newSummary(domain.StatsSummary{}), err
	}
	return newSummary(sum), nil
}

func newSummary(sum domain.StatsSummary) Summary {
	return Summary{
		StatsSummary:        sum,
		DeliverabilityScore: sum.DeliverabilityScore(),
		Breakdown: []Breakdown{
			{Label: "Sent", Value: sum.Sent},
			{Label: "Delivered", Value: sum.Delivered},
			{Label: "Inbox", Value: sum.Inbox},
			{Label: "Spam", Value: sum.Spam},
		},
	}
}

// SenderRanking returns total sent per sender, highest first. Ties keep
// sender id order.
func (s *Service) SenderRanking(ctx context.Context) ([]domain.SenderTotal, error) {
	totals, err := s.stats.TotalsBySender(ctx)
	if err != nil {
		logger.Error("report: sender ranking failed", "error", err)
		return []domain.SenderTotal{}, err
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].TotalSent != totals[j].TotalSent {
			return totals[i].TotalSent > totals[j].TotalSent
		}
		return totals[i].SenderID < totals[j].SenderID
	})
	return totals, nil
}

// CampaignGrowth returns the number of counter documents first seen per day,
// oldest first.
func (s *Service) CampaignGrowth(ctx context.Context) ([]domain.DailyCount, error) {
	days, err := s.stats.CountByDay(ctx)
	if err != nil {
		logger.Error("report: campaign growth failed", "error", err)
		return []domain.DailyCount{}, err
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// ScheduledStatusCounts returns the number of scheduled emails per status.
func (s *Service) ScheduledStatusCounts(ctx context.Context) ([]domain.StatusCount, error) {
	counts, err := s.scheduled.CountByStatus(ctx)
	if err != nil {
		logger.Error("report: scheduled status failed", "error", err)
		return []domain.StatusCount{}, err
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

// Dashboard computes every figure, degrading each failed one independently.
func (s *Service) Dashboard(ctx context.Context) Dashboard {
	var d Dashboard
	var err error

	if d.Summary, err = s.Summary(ctx); err != nil {
		d.Errors = append(d.Errors, "summary: "+err.Error())
	}
	if d.SenderRanking, err = s.SenderRanking(ctx); err != nil {
		d.Errors = append(d.Errors, "sender ranking: "+err.Error())
	}
	if d.CampaignGrowth, err = s.CampaignGrowth(ctx); err != nil {
		d.Errors = append(d.Errors, "campaign growth: "+err.Error())
	}
	if d.ScheduledStatus, err = s.ScheduledStatusCounts(ctx); err != nil {
		d.Errors = append(d.Errors, "scheduled status: "+err.Error())
	}
	return d
}

package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	summary domain.StatsSummary
	totals  []domain.SenderTotal
	days    []domain.DailyCount
	err     error
}

func (f *fakeStats) Summary(context.Context) (domain.StatsSummary, error) { return f.summary, f.err }

func (f *fakeStats) TotalsBySender(context.Context) ([]domain.SenderTotal, error) {
	return f.totals, f.err
}

func (f *fakeStats) CountByDay(context.Context) ([]domain.DailyCount, error) { return f.days, f.err }

type fakeScheduled struct {
	counts []domain.StatusCount
	err    error
}

func (f *fakeScheduled) CountByStatus(context.Context) ([]domain.StatusCount, error) {
	return f.counts, f.err
}

func TestSummary_Deliverability(t *testing.T) {
	svc := report.NewService(&fakeStats{summary: domain.StatsSummary{Sent: 10, Delivered: 8, Inbox: 6}}, &fakeScheduled{})

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 75.0, sum.DeliverabilityScore, 1e-9)
	assert.Equal(t, []report.Breakdown{
		{Label: "Sent", Value: 10},
		{Label: "Delivered", Value: 8},
		{Label: "Inbox", Value: 6},
		{Label: "Spam", Value: 0},
	}, sum.Breakdown)
}

func TestSummary_ZeroDeliveredScoresZero(t *testing.T) {
	svc := report.NewService(&fakeStats{}, &fakeScheduled{})

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.DeliverabilityScore)
}

func TestSenderRanking_SortedDescending(t *testing.T) {
	svc := report.NewService(&fakeStats{totals: []domain.SenderTotal{
		{SenderID: "a", TotalSent: 3},
		{SenderID: "c", TotalSent: 9},
		{SenderID: "b", TotalSent: 3},
	}}, &fakeScheduled{})

	got, err := svc.SenderRanking(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.SenderTotal{
		{SenderID: "c", TotalSent: 9},
		{SenderID: "a", TotalSent: 3},
		{SenderID: "b", TotalSent: 3},
	}, got)
}

func TestCampaignGrowth_OldestFirst(t *testing.T) {
	svc := report.NewService(&fakeStats{days: []domain.DailyCount{
		{Date: "2024-03-02", Count: 1},
		{Date: "2024-03-01", Count: 2},
	}}, &fakeScheduled{})

	got, err := svc.CampaignGrowth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got[0].Date)
}

func TestDashboard_DegradesPerFigure(t *testing.T) {
	svc := report.NewService(
		&fakeStats{err: errors.New("store down")},
		&fakeScheduled{counts: []domain.StatusCount{
			{Status: domain.ScheduledSent, Count: 4},
			{Status: domain.ScheduledPending, Count: 1},
		}},
	)

	d := svc.Dashboard(context.Background())
	assert.Len(t, d.Errors, 3)
	assert.Equal(t, int64(0), d.Summary.Sent)
	assert.Equal(t, 0.0, d.Summary.DeliverabilityScore)
	assert.Empty(t, d.SenderRanking)
	assert.Equal(t, domain.ScheduledPending, d.ScheduledStatus[0].Status)
	assert.Equal(t, int64(4), d.ScheduledStatus[1].Count)
}

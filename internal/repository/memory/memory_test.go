package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/repository/memory"
	"github.com/ignite/massmail/internal/service/schedule"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/ignite/massmail/internal/service/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_MalformedAndMissing(t *testing.T) {
	repo := memory.NewUserRepo()
	ctx := context.Background()

	_, err := repo.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrMalformedID)

	_, err = repo.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, user.ErrNotFound)

	id, err := repo.Create(ctx, &domain.User{Username: "a@x.com"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.User{Username: "a@x.com"})
	assert.ErrorIs(t, err, user.ErrExists)

	enabled := true
	require.NoError(t, repo.Update(ctx, id, user.UpdateFields{IsEnabled: &enabled}))
	list, err := repo.List(ctx, user.ListFilter{Enabled: &enabled})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), user.ErrNotFound)
}

func TestTemplateRepo_BulkByName(t *testing.T) {
	repo := memory.NewTemplateRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Template{OwnerID: "u1", Name: "promo", Content: "a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Template{OwnerID: domain.SharedOwner, Name: "promo", Content: "b", Shared: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Template{OwnerID: "u1", Name: "promo"})
	assert.ErrorIs(t, err, template.ErrExists)

	n, err := repo.UpdateContentByName(ctx, "promo", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := repo.ListByOwners(ctx, "u1", domain.SharedOwner)
	require.NoError(t, err)
	for _, tpl := range list {
		assert.Equal(t, "c", tpl.Content)
	}

	n, err = repo.DeleteByName(ctx, "promo")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestScheduledRepo_ConditionalTransition(t *testing.T) {
	repo := memory.NewScheduledRepo()
	ctx := context.Background()

	rec := &domain.ScheduledEmail{Status: domain.ScheduledPending, FireAt: time.Now()}
	require.NoError(t, repo.Create(ctx, rec))

	now := time.Now()
	ok, err := repo.Transition(ctx, rec.ID, schedule.Transition{
		From: domain.ScheduledPending, To: domain.ScheduledSent, SentAt: &now,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Transition(ctx, rec.ID, schedule.Transition{
		From: domain.ScheduledPending, To: domain.ScheduledFailed,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.StatusCount{{Status: domain.ScheduledSent, Count: 1}}, counts)
}

func TestScheduledRepo_ClaimIsExclusiveUntilExpiry(t *testing.T) {
	repo := memory.NewScheduledRepo()
	ctx := context.Background()

	rec := &domain.ScheduledEmail{Status: domain.ScheduledPending, FireAt: time.Now()}
	require.NoError(t, repo.Create(ctx, rec))

	now := time.Now()
	ok, err := repo.Claim(ctx, rec.ID, schedule.Lease{Owner: "a", Now: now, Until: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Claim(ctx, rec.ID, schedule.Lease{Owner: "b", Now: now, Until: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.False(t, ok, "live lease held by another owner")

	later := now.Add(2 * time.Minute)
	ok, err = repo.Claim(ctx, rec.ID, schedule.Lease{Owner: "b", Now: later, Until: later.Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, ok, "expired lease is taken over")

	_, err = repo.Transition(ctx, rec.ID, schedule.Transition{From: domain.ScheduledPending, To: domain.ScheduledSent})
	require.NoError(t, err)
	ok, err = repo.Claim(ctx, rec.ID, schedule.Lease{Owner: "a", Now: later, Until: later.Add(time.Minute)})
	require.NoError(t, err)
	assert.False(t, ok, "only Pending records can be claimed")

	_, err = repo.Claim(ctx, "bad", schedule.Lease{Owner: "a"})
	assert.ErrorIs(t, err, schedule.ErrMalformedID)
}

func TestStatsRepo_UpsertAndAggregate(t *testing.T) {
	repo := memory.NewStatsRepo()
	ctx := context.Background()
	day1 := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Increment(ctx, "u1", 2, day1))
	require.NoError(t, repo.Increment(ctx, "u1", 3, day2))
	require.NoError(t, repo.Increment(ctx, "u2", 1, day2))

	s := repo.Get("u1")
	require.NotNil(t, s)
	assert.Equal(t, int64(5), s.Sent)
	assert.Equal(t, int64(5), s.Delivered)
	assert.Equal(t, int64(5), s.Inbox)
	assert.Equal(t, int64(0), s.Spam)
	assert.Equal(t, day1, s.FirstSeen)

	sum, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), sum.Sent)

	days, err := repo.CountByDay(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.DailyCount{
		{Date: "2024-03-01", Count: 1},
		{Date: "2024-03-02", Count: 1},
	}, days)
}

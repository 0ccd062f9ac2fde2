package mongo_test

import (
	"context"
	"testing"
	"time"

	"github.com/ignite/massmail/internal/domain"
	massmongo "github.com/ignite/massmail/internal/repository/mongo"
	"github.com/ignite/massmail/internal/service/contact"
	"github.com/ignite/massmail/internal/service/schedule"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/ignite/massmail/internal/service/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestUserRepo(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := massmongo.NewUserRepo(mt.DB)
		_, err := repo.Get(ctx, "not-hex")
		assert.ErrorIs(mt, err, user.ErrMalformedID)
	})

	mt.Run("get decodes original field names", func(mt *mtest.T) {
		repo := massmongo.NewUserRepo(mt.DB)
		oid := primitive.NewObjectID()
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "username", Value: "admin@example.com"},
			{Key: "password", Value: "abc"},
			{Key: "is_superuser", Value: true},
			{Key: "is_enabled", Value: true},
			{Key: "created_at", Value: created},
		}))

		u, err := repo.Get(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), u.ID)
		assert.Equal(mt, "admin@example.com", u.Username)
		assert.Equal(mt, "abc", u.PasswordHash)
		assert.True(mt, u.IsSuperuser)
		assert.True(mt, u.CreatedAt.Equal(created))
	})

	mt.Run("find by username missing", func(mt *mtest.T) {
		repo := massmongo.NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.users", mtest.FirstBatch))

		_, err := repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(mt, err, user.ErrNotFound)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := massmongo.NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := repo.Create(ctx, &domain.User{Username: "dup"})
		assert.ErrorIs(mt, err, user.ErrExists)
	})

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := massmongo.NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &domain.User{Username: "new"}
		id, err := repo.Create(ctx, u)
		require.NoError(mt, err)
		assert.Len(mt, id, 24)
		assert.Equal(mt, id, u.ID)
	})

	mt.Run("update no match", func(mt *mtest.T) {
		repo := massmongo.NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		enabled := false
		err := repo.Update(ctx, primitive.NewObjectID().Hex(), user.UpdateFields{IsEnabled: &enabled})
		assert.ErrorIs(mt, err, user.ErrNotFound)
	})

	mt.Run("delete no match", func(mt *mtest.T) {
		repo := massmongo.NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, user.ErrNotFound)
	})
}

func TestContactRepo(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("list", func(mt *mtest.T) {
		repo := massmongo.NewContactRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.contacts", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "a@x.com"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "b@x.com"}},
		))

		list, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "a@x.com", list[0].Username)
	})

	mt.Run("update malformed", func(mt *mtest.T) {
		repo := massmongo.NewContactRepo(mt.DB)
		err := repo.Update(ctx, "zzz", "a@x.com", time.Now())
		assert.ErrorIs(mt, err, contact.ErrMalformedID)
	})
}

func TestTemplateRepo(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("update by name reports matches", func(mt *mtest.T) {
		repo := massmongo.NewTemplateRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}))

		n, err := repo.UpdateContentByName(ctx, "promo", "new")
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)
	})

	mt.Run("find shared", func(mt *mtest.T) {
		repo := massmongo.NewTemplateRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.templates", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "user_id", Value: "superuser"},
			{Key: "template_name", Value: "promo"},
			{Key: "template_content", Value: "Hi"},
			{Key: "superuser", Value: true},
		}))

		tpl, err := repo.Find(ctx, domain.SharedOwner, "promo")
		require.NoError(mt, err)
		assert.True(mt, tpl.Shared)
		assert.Equal(mt, "Hi", tpl.Content)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := massmongo.NewTemplateRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.templates", mtest.FirstBatch))

		_, err := repo.Find(ctx, "u1", "promo")
		assert.ErrorIs(mt, err, template.ErrNotFound)
	})
}

func TestScheduledRepo(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("transition not pending", func(mt *mtest.T) {
		repo := massmongo.NewScheduledRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		ok, err := repo.Transition(ctx, primitive.NewObjectID().Hex(), schedule.Transition{
			From: domain.ScheduledPending, To: domain.ScheduledSent,
		})
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("claim", func(mt *mtest.T) {
		repo := massmongo.NewScheduledRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)
		id := primitive.NewObjectID().Hex()
		now := time.Now()
		lease := schedule.Lease{Owner: "a", Now: now, Until: now.Add(time.Minute)}

		ok, err := repo.Claim(ctx, id, lease)
		require.NoError(mt, err)
		assert.True(mt, ok)

		ok, err = repo.Claim(ctx, id, schedule.Lease{Owner: "b", Now: now, Until: now.Add(time.Minute)})
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("get decodes html flag", func(mt *mtest.T) {
		repo := massmongo.NewScheduledRepo(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.scheduled_emails", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "user_id", Value: "u1"},
			{Key: "to_emails", Value: "a@x.com"},
			{Key: "body", Value: "<p>hi</p>"},
			{Key: "html", Value: true},
			{Key: "status", Value: "Pending"},
			{Key: "claimed_by", Value: "a"},
		}))

		rec, err := repo.Get(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.True(mt, rec.HTML)
		assert.Equal(mt, domain.ScheduledPending, rec.Status)
	})

	mt.Run("count by status", func(mt *mtest.T) {
		repo := massmongo.NewScheduledRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.scheduled_emails", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Pending"}, {Key: "count", Value: int32(3)}},
			bson.D{{Key: "_id", Value: "Sent"}, {Key: "count", Value: int32(1)}},
		))

		counts, err := repo.CountByStatus(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []domain.StatusCount{
			{Status: domain.ScheduledPending, Count: 3},
			{Status: domain.ScheduledSent, Count: 1},
		}, counts)
	})
}

func TestStatsRepo(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("increment upserts", func(mt *mtest.T) {
		repo := massmongo.NewStatsRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.Increment(ctx, "u1", 2, time.Now()))
	})

	mt.Run("summary", func(mt *mtest.T) {
		repo := massmongo.NewStatsRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.email_stats", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "sent", Value: int64(10)},
			{Key: "delivered", Value: int64(8)},
			{Key: "inbox", Value: int64(6)},
			{Key: "spam", Value: int64(0)},
		}))

		sum, err := repo.Summary(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, domain.StatsSummary{Sent: 10, Delivered: 8, Inbox: 6}, sum)
	})

	mt.Run("summary of empty collection", func(mt *mtest.T) {
		repo := massmongo.NewStatsRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.email_stats", mtest.FirstBatch))

		sum, err := repo.Summary(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, domain.StatsSummary{}, sum)
	})

	mt.Run("count by day", func(mt *mtest.T) {
		repo := massmongo.NewStatsRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "massmaildb.email_stats", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "2024-03-01"}, {Key: "count", Value: int32(2)}},
		))

		days, err := repo.CountByDay(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []domain.DailyCount{{Date: "2024-03-01", Count: 2}}, days)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("duplicate legacy rows do not abort", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)
		assert.NoError(mt, massmongo.NewStore(mt.DB).EnsureIndexes(ctx))
	})

	mt.Run("other failures abort", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}),
		)
		assert.Error(mt, massmongo.NewStore(mt.DB).EnsureIndexes(ctx))
	})
}

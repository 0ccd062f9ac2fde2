package mongo

import (
	"context"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatsRepo implements the counter upsert and the report aggregations on
// email_stats.
type StatsRepo struct {
	coll *mongo.Collection
}

// NewStatsRepo creates an email_stats repository.
func NewStatsRepo(db *mongo.Database) *StatsRepo {
	return &StatsRepo{coll: db.Collection(statsCollection)}
}

// Increment adds n to sent, delivered and inbox in one upsert.
func (r *StatsRepo) Increment(ctx context.Context, senderID string, n int64, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": senderID},
		bson.M{
			"$inc":         bson.M{"sent": n, "delivered": n, "inbox": n},
			"$setOnInsert": bson.M{"spam": int64(0), "timestamp": at},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return wrapErr("increment email stats", err)
	}
	return nil
}

func (r *StatsRepo) Summary(ctx context.Context) (domain.StatsSummary, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "sent", Value: bson.D{{Key: "$sum", Value: "$sent"}}},
			{Key: "delivered", Value: bson.D{{Key: "$sum", Value: "$delivered"}}},
			{Key: "inbox", Value: bson.D{{Key: "$sum", Value: "$inbox"}}},
			{Key: "spam", Value: bson.D{{Key: "$sum", Value: "$spam"}}},
		}}},
	})
	if err != nil {
		return domain.StatsSummary{}, wrapErr("sum email stats", err)
	}
	var rows []struct {
		Sent      int64 `bson:"sent"`
		Delivered int64 `bson:"delivered"`
		Inbox     int64 `bson:"inbox"`
		Spam      int64 `bson:"spam"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return domain.StatsSummary{}, wrapErr("decode email stats sum", err)
	}
	if len(rows) == 0 {
		return domain.StatsSummary{}, nil
	}
	return domain.StatsSummary{
		Sent:      rows[0].Sent,
		Delivered: rows[0].Delivered,
		Inbox:     rows[0].Inbox,
		Spam:      rows[0].Spam,
	}, nil
}

func (r *StatsRepo) TotalsBySender(ctx context.Context) ([]domain.SenderTotal, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "total_sent", Value: bson.D{{Key: "$sum", Value: "$sent"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_sent", Value: -1}}}},
	})
	if err != nil {
		return nil, wrapErr("rank senders", err)
	}
	var rows []struct {
		SenderID  string `bson:"_id"`
		TotalSent int64  `bson:"total_sent"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode sender ranking", err)
	}
	out := make([]domain.SenderTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SenderTotal{SenderID: row.SenderID, TotalSent: row.TotalSent})
	}
	return out, nil
}

func (r *StatsRepo) CountByDay(ctx context.Context) ([]domain.DailyCount, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$timestamp"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, wrapErr("count campaigns by day", err)
	}
	var rows []struct {
		Date  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode campaign growth", err)
	}
	out := make([]domain.DailyCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.DailyCount{Date: row.Date, Count: row.Count})
	}
	return out, nil
}

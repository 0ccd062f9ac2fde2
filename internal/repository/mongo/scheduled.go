package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/schedule"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type scheduledDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	ToEmails     string             `bson:"to_emails"`
	Subject      string             `bson:"subject"`
	Body         string             `bson:"body"`
	HTML         bool               `bson:"html"`
	Cc           string             `bson:"cc"`
	Bcc          string             `bson:"bcc"`
	ScheduleTime time.Time          `bson:"schedule_time"`
	Status       string             `bson:"status"`
	LastError    string             `bson:"last_error,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	SentAt       *time.Time         `bson:"sent_at,omitempty"`
	ClaimedBy    string             `bson:"claimed_by,omitempty"`
	ClaimedUntil *time.Time         `bson:"claimed_until,omitempty"`
}

func (d scheduledDoc) toDomain() domain.ScheduledEmail {
	return domain.ScheduledEmail{
		ID:        d.ID.Hex(),
		SenderID:  d.UserID,
		To:        d.ToEmails,
		Cc:        d.Cc,
		Bcc:       d.Bcc,
		Subject:   d.Subject,
		Body:      d.Body,
		HTML:      d.HTML,
		FireAt:    d.ScheduleTime,
		Status:    domain.ScheduledStatus(d.Status),
		LastError: d.LastError,
		CreatedAt: d.CreatedAt,
		SentAt:    d.SentAt,
	}
}

// ScheduledRepo implements schedule.Repository on scheduled_emails.
type ScheduledRepo struct {
	coll *mongo.Collection
}

// NewScheduledRepo creates a scheduled_emails repository.
func NewScheduledRepo(db *mongo.Database) *ScheduledRepo {
	return &ScheduledRepo{coll: db.Collection(scheduledCollection)}
}

func (r *ScheduledRepo) Create(ctx context.Context, e *domain.ScheduledEmail) error {
	res, err := r.coll.InsertOne(ctx, scheduledDoc{
		UserID:       e.SenderID,
		ToEmails:     e.To,
		Subject:      e.Subject,
		Body:         e.Body,
		HTML:         e.HTML,
		Cc:           e.Cc,
		Bcc:          e.Bcc,
		ScheduleTime: e.FireAt,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt,
	})
	if err != nil {
		return wrapErr("create scheduled email", err)
	}
	e.ID = insertedID(res)
	return nil
}

func (r *ScheduledRepo) Get(ctx context.Context, id string) (*domain.ScheduledEmail, error) {
	oid, err := parseID(id, schedule.ErrMalformedID)
	if err != nil {
		return nil, err
	}
	var doc scheduledDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, schedule.ErrNotFound
		}
		return nil, wrapErr("get scheduled email", err)
	}
	e := doc.toDomain()
	return &e, nil
}

func (r *ScheduledRepo) List(ctx context.Context, f schedule.ListFilter) ([]domain.ScheduledEmail, error) {
	filter := bson.M{}
	if f.Status != nil {
		filter["status"] = string(*f.Status)
	}
	if f.DueBefore != nil {
		filter["schedule_time"] = bson.M{"$lte": *f.DueBefore}
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "schedule_time", Value: 1}}))
	if err != nil {
		return nil, wrapErr("list scheduled emails", err)
	}
	var docs []scheduledDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode scheduled emails", err)
	}
	out := make([]domain.ScheduledEmail, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ScheduledRepo) Transition(ctx context.Context, id string, t schedule.Transition) (bool, error) {
	oid, err := parseID(id, schedule.ErrMalformedID)
	if err != nil {
		return false, err
	}
	set := bson.M{"status": string(t.To), "last_error": t.LastError}
	if t.SentAt != nil {
		set["sent_at"] = *t.SentAt
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "status": string(t.From)}, bson.M{
		"$set":   set,
		"$unset": bson.M{"claimed_by": "", "claimed_until": ""},
	})
	if err != nil {
		return false, wrapErr("transition scheduled email", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *ScheduledRepo) Claim(ctx context.Context, id string, l schedule.Lease) (bool, error) {
	oid, err := parseID(id, schedule.ErrMalformedID)
	if err != nil {
		return false, err
	}
	filter := bson.M{
		"_id":    oid,
		"status": string(domain.ScheduledPending),
		"$or": bson.A{
			bson.M{"claimed_until": nil},
			bson.M{"claimed_until": bson.M{"$lte": l.Now}},
			bson.M{"claimed_by": l.Owner},
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"claimed_by":    l.Owner,
		"claimed_until": l.Until,
	}})
	if err != nil {
		return false, wrapErr("claim scheduled email", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *ScheduledRepo) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, schedule.ErrMalformedID)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr("delete scheduled email", err)
	}
	if res.DeletedCount == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (r *ScheduledRepo) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, wrapErr("count scheduled emails", err)
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode status counts", err)
	}
	out := make([]domain.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.StatusCount{Status: domain.ScheduledStatus(row.Status), Count: row.Count})
	}
	return out, nil
}

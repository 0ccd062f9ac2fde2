package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	usersCollection     = "users"
	contactsCollection  = "contacts"
	templatesCollection = "templates"
	scheduledCollection = "scheduled_emails"
	statsCollection     = "email_stats"
)

// Store bundles one repository per collection over a single client.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Users     *UserRepo
	Contacts  *ContactRepo
	Templates *TemplateRepo
	Scheduled *ScheduledRepo
	Stats     *StatsRepo
}

// Open connects to uri, pings the primary and ensures indexes.
func Open(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongo: %v", domain.ErrUnavailable, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping mongo: %v", domain.ErrUnavailable, err)
	}
	s := NewStore(client.Database(database))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewStore wires repositories over an existing database handle.
func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepo(db),
		Contacts:  NewContactRepo(db),
		Templates: NewTemplateRepo(db),
		Scheduled: NewScheduledRepo(db),
		Stats:     NewStatsRepo(db),
	}
}

// EnsureIndexes creates the uniqueness and lookup indexes. A collection
// that already holds duplicate keys keeps working without its unique index;
// the services still check for an existing row before every insert.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		usersCollection:    {{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		contactsCollection: {{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		templatesCollection: {{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "template_name", Value: 1}},
			Options: unique,
		}},
		scheduledCollection: {{Keys: bson.D{{Key: "status", Value: 1}, {Key: "schedule_time", Value: 1}}}},
		statsCollection:     {{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique}},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.Warn("mongo: duplicate keys block unique index, dedupe the collection",
					"collection", coll, "error", err)
				continue
			}
			return wrapErr("create indexes on "+coll, err)
		}
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// wrapErr adds op context and tags connectivity failures as unavailable.
func wrapErr(op string, err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseID(id string, malformed error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, malformed
	}
	return oid, nil
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}

package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/contact"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type contactDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	AddedAt  time.Time          `bson:"added_at"`
}

func (d contactDoc) toDomain() domain.Contact {
	return domain.Contact{ID: d.ID.Hex(), Username: d.Username, AddedAt: d.AddedAt}
}

// ContactRepo implements contact.Repository on the contacts collection.
type ContactRepo struct {
	coll *mongo.Collection
}

// NewContactRepo creates a contacts repository.
func NewContactRepo(db *mongo.Database) *ContactRepo {
	return &ContactRepo{coll: db.Collection(contactsCollection)}
}

func (r *ContactRepo) findOne(ctx context.Context, filter bson.M) (*domain.Contact, error) {
	var doc contactDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contact.ErrNotFound
		}
		return nil, wrapErr("find contact", err)
	}
	c := doc.toDomain()
	return &c, nil
}

func (r *ContactRepo) Get(ctx context.Context, id string) (*domain.Contact, error) {
	oid, err := parseID(id, contact.ErrMalformedID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ContactRepo) FindByUsername(ctx context.Context, username string) (*domain.Contact, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *ContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}}))
	if err != nil {
		return nil, wrapErr("list contacts", err)
	}
	var docs []contactDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode contacts", err)
	}
	out := make([]domain.Contact, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) (string, error) {
	res, err := r.coll.InsertOne(ctx, contactDoc{Username: c.Username, AddedAt: c.AddedAt})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", contact.ErrExists
		}
		return "", wrapErr("create contact", err)
	}
	c.ID = insertedID(res)
	return c.ID, nil
}

func (r *ContactRepo) Update(ctx context.Context, id, username string, addedAt time.Time) error {
	oid, err := parseID(id, contact.ErrMalformedID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"username": username, "added_at": addedAt}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return contact.ErrExists
		}
		return wrapErr("update contact", err)
	}
	if res.MatchedCount == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, contact.ErrMalformedID)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr("delete contact", err)
	}
	if res.DeletedCount == 0 {
		return contact.ErrNotFound
	}
	return nil
}

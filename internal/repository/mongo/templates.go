package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/template"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type templateDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Name      string             `bson:"template_name"`
	Content   string             `bson:"template_content"`
	Superuser bool               `bson:"superuser"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d templateDoc) toDomain() domain.Template {
	return domain.Template{
		ID:        d.ID.Hex(),
		OwnerID:   d.UserID,
		Name:      d.Name,
		Content:   d.Content,
		Shared:    d.Superuser,
		CreatedAt: d.CreatedAt,
	}
}

// TemplateRepo implements template.Repository on the templates collection.
type TemplateRepo struct {
	coll *mongo.Collection
}

// NewTemplateRepo creates a templates repository.
func NewTemplateRepo(db *mongo.Database) *TemplateRepo {
	return &TemplateRepo{coll: db.Collection(templatesCollection)}
}

func (r *TemplateRepo) Create(ctx context.Context, t *domain.Template) (string, error) {
	res, err := r.coll.InsertOne(ctx, templateDoc{
		UserID:    t.OwnerID,
		Name:      t.Name,
		Content:   t.Content,
		Superuser: t.Shared,
		CreatedAt: t.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", template.ErrExists
		}
		return "", wrapErr("create template", err)
	}
	t.ID = insertedID(res)
	return t.ID, nil
}

func (r *TemplateRepo) Find(ctx context.Context, owner, name string) (*domain.Template, error) {
	var doc templateDoc
	err := r.coll.FindOne(ctx, bson.M{"user_id": owner, "template_name": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, template.ErrNotFound
		}
		return nil, wrapErr("find template", err)
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *TemplateRepo) ListByOwners(ctx context.Context, owners ...string) ([]domain.Template, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user_id": bson.M{"$in": owners}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrapErr("list templates", err)
	}
	var docs []templateDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode templates", err)
	}
	out := make([]domain.Template, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *TemplateRepo) UpdateContentByName(ctx context.Context, name, content string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, bson.M{"template_name": name},
		bson.M{"$set": bson.M{"template_content": content}})
	if err != nil {
		return 0, wrapErr("update templates", err)
	}
	return res.MatchedCount, nil
}

func (r *TemplateRepo) DeleteByName(ctx context.Context, name string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"template_name": name})
	if err != nil {
		return 0, wrapErr("delete templates", err)
	}
	return res.DeletedCount, nil
}

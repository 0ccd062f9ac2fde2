package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	Password    string             `bson:"password"`
	IsSuperuser bool               `bson:"is_superuser"`
	IsEnabled   bool               `bson:"is_enabled"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		IsSuperuser:  d.IsSuperuser,
		IsEnabled:    d.IsEnabled,
		CreatedAt:    d.CreatedAt,
	}
}

// UserRepo implements user.Repository on the users collection.
type UserRepo struct {
	coll *mongo.Collection
}

// NewUserRepo creates a users repository.
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(usersCollection)}
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrNotFound
		}
		return nil, wrapErr("find user", err)
	}
	u := doc.toDomain()
	return &u, nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id, user.ErrMalformedID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepo) List(ctx context.Context, f user.ListFilter) ([]domain.User, error) {
	filter := bson.M{}
	if f.Superuser != nil {
		filter["is_superuser"] = *f.Superuser
	}
	if f.Enabled != nil {
		filter["is_enabled"] = *f.Enabled
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode users", err)
	}
	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (string, error) {
	res, err := r.coll.InsertOne(ctx, userDoc{
		Username:    u.Username,
		Password:    u.PasswordHash,
		IsSuperuser: u.IsSuperuser,
		IsEnabled:   u.IsEnabled,
		CreatedAt:   u.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", user.ErrExists
		}
		return "", wrapErr("create user", err)
	}
	u.ID = insertedID(res)
	return u.ID, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, f user.UpdateFields) error {
	oid, err := parseID(id, user.ErrMalformedID)
	if err != nil {
		return err
	}
	set := bson.M{}
	if f.Username != nil {
		set["username"] = *f.Username
	}
	if f.PasswordHash != nil {
		set["password"] = *f.PasswordHash
	}
	if f.IsEnabled != nil {
		set["is_enabled"] = *f.IsEnabled
	}
	if f.IsSuperuser != nil {
		set["is_superuser"] = *f.IsSuperuser
	}
	if len(set) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrExists
		}
		return wrapErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, user.ErrMalformedID)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr("delete user", err)
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

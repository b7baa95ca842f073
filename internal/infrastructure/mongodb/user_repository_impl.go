package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
)

// userDoc mirrors the stored user document. Role is optional on legacy
// records; it is normalized before the entity leaves this package.
type userDoc struct {
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Name      string    `bson:"name"`
	Role      string    `bson:"role,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d *userDoc) toEntity() *entity.User {
	return &entity.User{
		Email:        d.Email,
		PasswordHash: d.Password,
		Name:         d.Name,
		Role:         entity.NormalizeRole(d.Role),
		CreatedAt:    d.CreatedAt,
	}
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(client *mongo.Client, db, collection string) *UserRepository {
	return &UserRepository{coll: client.Database(db).Collection(collection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	err := r.coll.FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return repository.ErrEmailTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err = r.coll.InsertOne(ctx, userDoc{
		Email:     u.Email,
		Password:  u.PasswordHash,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	})
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

// BackfillRoles normalizes legacy records in place: every document missing a
// role, or carrying an explicit null, becomes "free". Safe to re-run; a
// second pass matches nothing.
func (r *UserRepository) BackfillRoles(ctx context.Context) (repository.BackfillResult, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"$or": bson.A{
			bson.M{"role": bson.M{"$exists": false}},
			bson.M{"role": nil},
		}},
		bson.M{"$set": bson.M{"role": string(entity.RoleFree)}},
	)
	if err != nil {
		return repository.BackfillResult{}, err
	}
	return repository.BackfillResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]entity.User, error) {
	opts := options.Find().SetProjection(bson.M{"email": 1, "name": 1, "role": 1, "_id": 0})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []entity.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		u := doc.toEntity()
		u.PasswordHash = ""
		out = append(out, *u)
	}
	return out, cur.Err()
}

func (r *UserRepository) CountMissingRole(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"role": bson.M{"$exists": false}},
		bson.M{"role": nil},
	}})
}

var _ repository.UserRepository = (*UserRepository)(nil)

package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
)

type postDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Content     []entity.PostBlock `bson:"content"`
	Author      string             `bson:"author"`
	AuthorID    string             `bson:"authorId"`
	Thumbnail   string             `bson:"thumbnail,omitempty"`
	Visibility  string             `bson:"visibility"`
	Keywords    []string           `bson:"keywords,omitempty"`
	IsPublished bool               `bson:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *postDoc) toEntity() entity.Post {
	vis := entity.Visibility(d.Visibility)
	if vis != entity.VisibilityPremium {
		vis = entity.VisibilityPublic
	}
	return entity.Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Content:     d.Content,
		Author:      d.Author,
		AuthorID:    d.AuthorID,
		Thumbnail:   d.Thumbnail,
		Visibility:  vis,
		Keywords:    d.Keywords,
		IsPublished: d.IsPublished,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type PostRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(client *mongo.Client, db, collection string) *PostRepository {
	return &PostRepository{coll: client.Database(db).Collection(collection)}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

func (r *PostRepository) ListPublished(ctx context.Context) ([]entity.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.list(ctx, bson.M{"isPublished": true}, opts)
}

func (r *PostRepository) ListDrafts(ctx context.Context, authorID string) ([]entity.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return r.list(ctx, bson.M{"isPublished": false, "authorId": authorID}, opts)
}

func (r *PostRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Post, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	posts := make([]entity.Post, 0)
	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		posts = append(posts, doc.toEntity())
	}
	return posts, cur.Err()
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p := doc.toEntity()
	return &p, nil
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, postDoc{
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		Author:      p.Author,
		AuthorID:    p.AuthorID,
		Thumbnail:   p.Thumbnail,
		Visibility:  string(p.Visibility),
		Keywords:    p.Keywords,
		IsPublished: p.IsPublished,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	oid, err := objectID(p.ID)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       p.Title,
		"description": p.Description,
		"content":     p.Content,
		"thumbnail":   p.Thumbnail,
		"visibility":  string(p.Visibility),
		"keywords":    p.Keywords,
		"isPublished": p.IsPublished,
		"updatedAt":   p.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Search(ctx context.Context, query string) ([]entity.Post, error) {
	pattern := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{
		"isPublished": true,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"content.content": pattern},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.list(ctx, filter, opts)
}

var _ repository.PostRepository = (*PostRepository)(nil)

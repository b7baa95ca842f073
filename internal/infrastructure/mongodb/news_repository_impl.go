package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
)

type newsDoc struct {
	ID        string `bson:"_id"`
	Title     string `bson:"title"`
	Timestamp string `bson:"timestamp"`
}

type NewsRepository struct {
	coll *mongo.Collection
}

func NewNewsRepository(client *mongo.Client, db, collection string) *NewsRepository {
	return &NewsRepository{coll: client.Database(db).Collection(collection)}
}

func (r *NewsRepository) Latest(ctx context.Context, limit int) ([]entity.NewsItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	items := make([]entity.NewsItem, 0, limit)
	for cur.Next(ctx) {
		var doc newsDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, entity.NewsItem{ID: doc.ID, Title: doc.Title, Timestamp: doc.Timestamp})
	}
	return items, cur.Err()
}

func (r *NewsRepository) Upsert(ctx context.Context, item *entity.NewsItem) error {
	doc := newsDoc{ID: item.ID, Title: item.Title, Timestamp: item.Timestamp}
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

var _ repository.NewsRepository = (*NewsRepository)(nil)

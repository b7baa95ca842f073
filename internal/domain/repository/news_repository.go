package repository

import (
	"context"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
)

// NewsRepository persists ticker headlines.
type NewsRepository interface {
	// Latest returns up to limit items, newest first.
	Latest(ctx context.Context, limit int) ([]entity.NewsItem, error)
	// Upsert inserts or replaces an item by its ID.
	Upsert(ctx context.Context, item *entity.NewsItem) error
}

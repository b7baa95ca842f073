package repository

import (
	"context"
	"errors"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
)

// ErrInvalidID marks a malformed post identifier (not a valid ObjectID hex).
var ErrInvalidID = errors.New("invalid post id")

// PostRepository persists blog posts. GetByID returns drafts too; visibility
// of unpublished posts is the policy layer's concern.
type PostRepository interface {
	ListPublished(ctx context.Context) ([]entity.Post, error)
	ListDrafts(ctx context.Context, authorID string) ([]entity.Post, error)
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Create(ctx context.Context, p *entity.Post) error
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
	// Search matches published posts whose title, description or block
	// content contains the query, case-insensitively.
	Search(ctx context.Context, query string) ([]entity.Post, error)
}

package repository

import (
	"context"
	"errors"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// BackfillResult reports an idempotent bulk role normalization run.
type BackfillResult struct {
	Matched  int64 `json:"matched_count"`
	Modified int64 `json:"modified_count"`
}

// UserRepository defines user-record persistence. Implementations must
// normalize absent or null roles to RoleFree before returning entities.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// BackfillRoles assigns RoleFree to every user record lacking a role.
	BackfillRoles(ctx context.Context) (BackfillResult, error)
	// ListAll returns every user without password hashes, for the admin
	// role report.
	ListAll(ctx context.Context) ([]entity.User, error)
	// CountMissingRole counts records still lacking a role field, i.e. the
	// ones a BackfillRoles run would touch.
	CountMissingRole(ctx context.Context) (int64, error)
}

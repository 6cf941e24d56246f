// Package users persists the user registry, the system of record for
// accounts.
package users

import (
	"context"

	"github.com/OleoMar/alphawave/internal/client/models"
)

// Repository is the registry of user records, ordered by creation time.
//
// Email lookups are case-insensitive; implementations must treat emails as
// already lowercased on write. GetByEmail and GetByID return
// common.ErrNotFound when no record matches.
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)
}

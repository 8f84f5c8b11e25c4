package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AdminRepository describes persistence operations for admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.Admin, error)
	GetByLogin(ctx context.Context, login string) (*model.Admin, error)
	GetByID(ctx context.Context, id int64) (*model.Admin, error)
}

package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/mikios34/customer-admin/entity"
)

// AdminRepository specifies admin related database operations.
type AdminRepository interface {
	// StoreAdmin creates the user and its admin profile atomically.
	StoreAdmin(ctx context.Context, u *entity.User, a *entity.Admin) (*entity.Admin, error)
	GetAdminByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mikios34/customer-admin/entity"
)

var ErrUserNotFound = errors.New("user not found")

// Repository exposes read operations used for authentication.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*entity.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetAdminByUserID(ctx context.Context, userID uuid.UUID) (*entity.Admin, error)
}

package admin

import (
	"context"
	"errors"

	"github.com/mikios34/customer-admin/entity"
)

var ErrEmailTaken = errors.New("admin with this email already exists")

// RegisterAdminRequest carries the data required to register an admin.
type RegisterAdminRequest struct {
	FullName    string
	Email       string
	Phone       string
	Password    string
	FirebaseUID string
	Role        string
}

// AdminService exposes admin-related business operations.
type AdminService interface {
	RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*entity.Admin, error)
	// EnsureBootstrapAdmin registers req unless a user with its email exists.
	EnsureBootstrapAdmin(ctx context.Context, req RegisterAdminRequest) (bool, error)
}

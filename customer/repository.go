package customer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mikios34/customer-admin/entity"
)

var ErrNotFound = errors.New("customer not found")

// ListFilter narrows a customer listing.
type ListFilter struct {
	Page     int
	PageSize int
	Status   entity.CustomerStatus
	Query    string
}

// CustomerRepository specifies customer related database operations.
type CustomerRepository interface {
	StoreCustomer(ctx context.Context, c *entity.Customer) (*entity.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, updates map[string]any) (*entity.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) ([]entity.Customer, int64, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}

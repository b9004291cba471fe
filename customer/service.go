package customer

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/mikios34/customer-admin/entity"
	"github.com/mikios34/customer-admin/intake"
)

var ErrEmailTaken = errors.New("customer with this email already exists")

// ListResult is one page of customers.
type ListResult struct {
	Items      []entity.Customer `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// CustomerService exposes customer-related business operations.
type CustomerService interface {
	CreateCustomer(ctx context.Context, actorID uuid.UUID, p intake.Payload) (*entity.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, p intake.Payload) (*entity.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) (*ListResult, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	ExportCustomers(ctx context.Context, filter ListFilter, w io.Writer) error
}

// SubmitCreate adapts CreateCustomer to an intake submit callback.
func SubmitCreate(svc CustomerService, actorID uuid.UUID) intake.SubmitFunc {
	return func(ctx context.Context, p intake.Payload) error {
		_, err := svc.CreateCustomer(ctx, actorID, p)
		return err
	}
}

// SubmitUpdate adapts UpdateCustomer to an intake submit callback.
func SubmitUpdate(svc CustomerService, id uuid.UUID) intake.SubmitFunc {
	return func(ctx context.Context, p intake.Payload) error {
		_, err := svc.UpdateCustomer(ctx, id, p)
		return err
	}
}

// InitialData builds the edit-flow seed of an intake form from a record.
func InitialData(c *entity.Customer) *intake.InitialData {
	d := intake.Draft{
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
		Gender:   c.Gender,
		Status:   c.Status,
	}
	if !c.DateOfBirth.IsZero() {
		d.DateOfBirth = c.DateOfBirth.UTC().Format(intake.DateLayout)
	}
	return &intake.InitialData{
		CustomerID: c.ID,
		Draft:      d,
		Stored: map[intake.Slot]string{
			intake.SlotProfile:     c.Profile,
			intake.SlotAadharFront: c.AadharFront,
			intake.SlotAadharBack:  c.AadharBack,
			intake.SlotDrivingLic:  c.DrivingLic,
		},
	}
}

package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	customerpkg "github.com/mikios34/customer-admin/customer"
	"github.com/mikios34/customer-admin/entity"
	"gorm.io/gorm"
)

// GormCustomerRepo implements customer.CustomerRepository using GORM.
type GormCustomerRepo struct {
	db *gorm.DB
}

func NewGormCustomerRepo(db *gorm.DB) customerpkg.CustomerRepository {
	return &GormCustomerRepo{db: db}
}

// translateError maps a unique violation on the live email index to
// ErrEmailTaken. It needs a gorm.DB opened with TranslateError.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return customerpkg.ErrEmailTaken
	}
	return err
}

func (r *GormCustomerRepo) StoreCustomer(ctx context.Context, c *entity.Customer) (*entity.Customer, error) {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (r *GormCustomerRepo) UpdateCustomer(ctx context.Context, id uuid.UUID, updates map[string]any) (*entity.Customer, error) {
	res := r.db.WithContext(ctx).Model(&entity.Customer{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, customerpkg.ErrNotFound
	}
	return r.GetCustomerByID(ctx, id)
}

func (r *GormCustomerRepo) GetCustomerByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var c entity.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerpkg.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormCustomerRepo) ListCustomers(ctx context.Context, filter customerpkg.ListFilter) ([]entity.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Customer{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.Customer
	q = q.Order("created_at DESC")
	if filter.PageSize > 0 {
		q = q.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormCustomerRepo) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return customerpkg.ErrNotFound
	}
	return nil
}

// EmailExists only counts live records; soft deleted customers release
// their email.
func (r *GormCustomerRepo) EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&entity.Customer{}).Where("LOWER(email) = LOWER(?)", email)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

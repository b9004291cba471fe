package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	adminpkg "github.com/mikios34/customer-admin/admin"
	"github.com/mikios34/customer-admin/entity"
	"gorm.io/gorm"
)

// GormAdminRepo implements admin.AdminRepository using GORM.
type GormAdminRepo struct {
	db *gorm.DB
}

func NewGormAdminRepo(db *gorm.DB) adminpkg.AdminRepository {
	return &GormAdminRepo{db: db}
}

func (r *GormAdminRepo) StoreAdmin(ctx context.Context, u *entity.User, a *entity.Admin) (*entity.Admin, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		a.UserID = u.ID
		return tx.Create(a).Error
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *GormAdminRepo) GetAdminByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error) {
	var a entity.Admin
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAdminRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	adminpkg "github.com/mikios34/customer-admin/admin"
	"github.com/mikios34/customer-admin/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// adminService implements AdminService.
type adminService struct {
	repo   adminpkg.AdminRepository
	logger *zap.Logger
}

// NewAdminService constructs an AdminService backed by the provided repository.
func NewAdminService(repo adminpkg.AdminRepository, logger *zap.Logger) adminpkg.AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adminService{repo: repo, logger: logger}
}

// RegisterAdmin creates a base User and an Admin profile. The role defaults
// to ADMIN.
func (s *adminService) RegisterAdmin(ctx context.Context, req adminpkg.RegisterAdminRequest) (*entity.Admin, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if req.Password == "" && req.FirebaseUID == "" {
		return nil, errors.New("either password or firebase_uid is required")
	}
	role := req.Role
	if role == "" {
		role = entity.RoleAdmin
	}
	if role != entity.RoleAdmin && role != entity.RoleStaff {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, adminpkg.ErrEmailTaken
	}

	u := &entity.User{
		ID:       uuid.New(),
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		Role:     role,
		Active:   true,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if req.FirebaseUID != "" {
		uid := req.FirebaseUID
		u.FirebaseUID = &uid
	}

	a, err := s.repo.StoreAdmin(ctx, u, &entity.Admin{ID: uuid.New(), Active: true})
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin registered",
		zap.String("admin_id", a.ID.String()),
		zap.String("user_id", u.ID.String()),
		zap.String("role", role),
	)
	return a, nil
}

func (s *adminService) EnsureBootstrapAdmin(ctx context.Context, req adminpkg.RegisterAdminRequest) (bool, error) {
	if strings.TrimSpace(req.Email) == "" {
		return false, nil
	}
	_, err := s.RegisterAdmin(ctx, req)
	if errors.Is(err, adminpkg.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	authpkg "github.com/mikios34/customer-admin/auth"
	"github.com/mikios34/customer-admin/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenConfig controls token signing.
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type authService struct {
	repo     authpkg.Repository
	tokens   authpkg.TokenStore
	firebase authpkg.IDTokenVerifier
	cfg      TokenConfig
	logger   *zap.Logger
}

// NewAuthService builds the login service. firebase may be nil, in which case
// Firebase logins are rejected.
func NewAuthService(repo authpkg.Repository, tokens authpkg.TokenStore, firebase authpkg.IDTokenVerifier, cfg TokenConfig, logger *zap.Logger) authpkg.Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{repo: repo, tokens: tokens, firebase: firebase, cfg: cfg, logger: logger}
}

func (s *authService) Login(ctx context.Context, req authpkg.LoginRequest) (*authpkg.Principal, error) {
	var (
		user *entity.User
		err  error
	)
	switch {
	case req.FirebaseIDToken != "":
		user, err = s.firebaseUser(ctx, req.FirebaseIDToken)
	case req.Email != "" && req.Password != "":
		user, err = s.passwordUser(ctx, req.Email, req.Password)
	default:
		return nil, errors.New("either email and password or firebase_id_token is required")
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, authpkg.ErrInactiveUser
	}
	p, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", p.UserID), zap.String("role", p.Role))
	return p, nil
}

func (s *authService) passwordUser(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, authpkg.ErrUserNotFound) {
		return nil, authpkg.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, authpkg.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, authpkg.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) firebaseUser(ctx context.Context, idToken string) (*entity.User, error) {
	if s.firebase == nil {
		return nil, authpkg.ErrFirebaseDisabled
	}
	tok, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authpkg.ErrInvalidToken, err)
	}
	user, err := s.repo.GetUserByFirebaseUID(ctx, tok.UID)
	if errors.Is(err, authpkg.ErrUserNotFound) {
		return nil, authpkg.ErrInvalidCredentials
	}
	return user, err
}

func (s *authService) issue(ctx context.Context, user *entity.User) (*authpkg.Principal, error) {
	p := &authpkg.Principal{
		UserID:   user.ID.String(),
		Role:     user.Role,
		FullName: user.FullName,
		Email:    user.Email,
	}
	if user.Role == entity.RoleAdmin {
		if a, err := s.repo.GetAdminByUserID(ctx, user.ID); err == nil {
			p.AdminID = a.ID.String()
		}
	}

	refresh, jti, err := authpkg.SignJWT(s.cfg.Secret, s.cfg.Issuer, p, s.cfg.RefreshTTL, authpkg.TokenRefresh)
	if err != nil {
		return nil, err
	}
	access, _, err := authpkg.SignAccessJWT(s.cfg.Secret, s.cfg.Issuer, p, s.cfg.AccessTTL, jti)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SaveRefresh(ctx, jti, p.UserID, s.cfg.RefreshTTL); err != nil {
		return nil, err
	}
	p.Token = access
	p.RefreshToken = refresh
	p.ExpiresIn = int64(s.cfg.AccessTTL.Seconds())
	return p, nil
}

// Refresh exchanges a refresh token for a new token pair. Each refresh token
// can be used once.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*authpkg.Principal, error) {
	claims, err := authpkg.ParseAndValidate(s.cfg.Secret, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != authpkg.TokenRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", authpkg.ErrInvalidToken)
	}
	userID, err := s.tokens.ConsumeRefresh(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", authpkg.ErrInvalidToken)
	}
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, authpkg.ErrInactiveUser
	}
	return s.issue(ctx, user)
}

// Logout revokes the access token until it would have expired and retires
// the refresh token issued with it.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := authpkg.ParseAndValidate(s.cfg.Secret, accessToken)
	if err != nil {
		return err
	}
	if claims.TokenType != authpkg.TokenAccess {
		return fmt.Errorf("%w: not an access token", authpkg.ErrInvalidToken)
	}
	if claims.RefreshID != "" {
		// already used or expired refresh tokens are fine
		if _, err := s.tokens.ConsumeRefresh(ctx, claims.RefreshID); err != nil && !errors.Is(err, authpkg.ErrInvalidToken) {
			return err
		}
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))
	return nil
}

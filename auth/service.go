package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrInactiveUser          = errors.New("user is inactive")
	ErrFirebaseDisabled      = errors.New("firebase auth not configured")
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
)

// LoginRequest supports two modes: email and password, or a Firebase ID token.
type LoginRequest struct {
	Email           string
	Password        string
	FirebaseIDToken string
}

type Principal struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	AdminID      string `json:"admin_id,omitempty"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID    string
	Role      string
	AdminID   string
	TokenID   string
	ExpiresAt time.Time
}

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// TokenStore tracks issued refresh tokens and revoked access tokens.
type TokenStore interface {
	SaveRefresh(ctx context.Context, jti, userID string, ttl time.Duration) error
	// ConsumeRefresh deletes the refresh token and returns its user id.
	ConsumeRefresh(ctx context.Context, jti string) (string, error)
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service provides login, refresh and logout for dashboard users.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Principal, error)
	Refresh(ctx context.Context, refreshToken string) (*Principal, error)
	Logout(ctx context.Context, accessToken string) error
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims carries standard and custom claims for our tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	AdminID   string `json:"admin_id,omitempty"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	// RefreshID is the jti of the refresh token issued with an access token.
	RefreshID string `json:"rid,omitempty"`
	jwt.RegisteredClaims
}

// SignJWT creates a signed HS256 token for principal and returns it with its
// token id.
func SignJWT(secret, issuer string, principal *Principal, ttl time.Duration, tokenType string) (string, string, error) {
	return sign(secret, issuer, principal, ttl, tokenType, "")
}

// SignAccessJWT creates an access token bound to the refresh token refreshID,
// so revoking the session can also retire its refresh token.
func SignAccessJWT(secret, issuer string, principal *Principal, ttl time.Duration, refreshID string) (string, string, error) {
	return sign(secret, issuer, principal, ttl, TokenAccess, refreshID)
}

func sign(secret, issuer string, principal *Principal, ttl time.Duration, tokenType, refreshID string) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		UserID:    principal.UserID,
		Role:      principal.Role,
		AdminID:   principal.AdminID,
		TokenType: tokenType,
		RefreshID: refreshID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{tokenType},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, jti, nil
}

// ParseAndValidate parses a token and validates signature and expiry.
func ParseAndValidate(secret string, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWTVerifier verifies access tokens issued by this service and checks them
// against the revocation list.
type JWTVerifier struct {
	secret string
	tokens TokenStore
}

func NewJWTVerifier(secret string, tokens TokenStore) *JWTVerifier {
	return &JWTVerifier{secret: secret, tokens: tokens}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := ParseAndValidate(v.secret, token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenAccess {
		return nil, fmt.Errorf("%w: %s token used for access", ErrInvalidToken, claims.TokenType)
	}
	if v.tokens != nil {
		revoked, err := v.tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, errors.Join(ErrRevocationUnavailable, err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	id := &Identity{
		UserID:  claims.UserID,
		Role:    claims.Role,
		AdminID: claims.AdminID,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authpkg "github.com/mikios34/customer-admin/auth"
	"github.com/mikios34/customer-admin/layout"
	"go.uber.org/zap"
)

// SessionConfig names where the session token may travel.
type SessionConfig struct {
	CookieName string
}

type sessionService struct {
	cfg       SessionConfig
	verifiers []authpkg.TokenVerifier
	logger    *zap.Logger
}

// NewSessionService resolves dashboard sessions. Verifiers are tried in
// order; the first one to accept the token wins.
func NewSessionService(cfg SessionConfig, logger *zap.Logger, verifiers ...authpkg.TokenVerifier) layout.SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionService{cfg: cfg, verifiers: verifiers, logger: logger}
}

// BearerToken extracts the token from the Authorization header or, failing
// that, from the named cookie.
func BearerToken(c *gin.Context, cookie string) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie != "" {
		if v, err := c.Cookie(cookie); err == nil {
			return v
		}
	}
	return ""
}

func (s *sessionService) Resolve(c *gin.Context, opts layout.Options) layout.Status {
	token := BearerToken(c, s.cfg.CookieName)
	if token == "" {
		if !opts.Required {
			return layout.StateAuthorized
		}
		s.redirect(c, opts)
		return layout.StateUnauthorized
	}

	var (
		id      *authpkg.Identity
		lastErr error
	)
	for _, v := range s.verifiers {
		got, err := v.Verify(c.Request.Context(), token)
		if err == nil {
			id = got
			break
		}
		if errors.Is(err, authpkg.ErrRevocationUnavailable) {
			s.logger.Warn("session not resolvable", zap.Error(err))
			return layout.StateLoading
		}
		lastErr = err
	}
	if id == nil {
		if !opts.Required {
			return layout.StateAuthorized
		}
		s.logger.Debug("session rejected", zap.Error(lastErr))
		s.redirect(c, opts)
		return layout.StateUnauthorized
	}

	if !roleAllowed(id.Role, opts.Roles) {
		s.logger.Info("role not allowed on dashboard",
			zap.String("user_id", id.UserID),
			zap.String("role", id.Role),
		)
		s.redirect(c, opts)
		return layout.StateUnauthorized
	}

	c.Set("user_id", id.UserID)
	c.Set("role", id.Role)
	if id.AdminID != "" {
		c.Set("admin_id", id.AdminID)
	}
	return layout.StateAuthorized
}

func roleAllowed(role string, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// redirect only sends browsers to the login page; API clients get the
// gate's status code.
func (s *sessionService) redirect(c *gin.Context, opts layout.Options) {
	if opts.Redirect == "" {
		return
	}
	if !strings.Contains(c.GetHeader("Accept"), "text/html") {
		return
	}
	c.Redirect(http.StatusFound, opts.Redirect)
}

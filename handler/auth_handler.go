package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	authpkg "github.com/mikios34/customer-admin/auth"
	authsvc "github.com/mikios34/customer-admin/auth/service"
)

type AuthHandler struct {
	service    authpkg.Service
	cookieName string
}

func NewAuthHandler(svc authpkg.Service, cookieName string) *AuthHandler {
	return &AuthHandler{service: svc, cookieName: cookieName}
}

type loginPayload struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	FirebaseIDToken string `json:"firebase_id_token"`
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, p *authpkg.Principal) {
	if h.cookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, p.Token, int(p.ExpiresIn), "/", "", c.Request.TLS != nil, true)
}

func (h *AuthHandler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p loginPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		if p.FirebaseIDToken == "" && (p.Email == "" || p.Password == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "either email and password or firebase_id_token is required"})
			return
		}
		req := authpkg.LoginRequest{Email: p.Email, Password: p.Password, FirebaseIDToken: p.FirebaseIDToken}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		principal, err := h.service.Login(ctx, req)
		if err != nil {
			switch {
			case errors.Is(err, authpkg.ErrInactiveUser):
				c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			case errors.Is(err, authpkg.ErrFirebaseDisabled):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			case errors.Is(err, authpkg.ErrInvalidCredentials), errors.Is(err, authpkg.ErrInvalidToken):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "login failed", "detail": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed", "detail": err.Error()})
			}
			return
		}
		h.setSessionCookie(c, principal)
		c.JSON(http.StatusOK, gin.H{"principal": principal})
	}
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p refreshPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		if p.RefreshToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		principal, err := h.service.Refresh(ctx, p.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh failed", "detail": err.Error()})
			return
		}
		h.setSessionCookie(c, principal)
		c.JSON(http.StatusOK, gin.H{"principal": principal})
	}
}

// Logout revokes the caller's access token and clears the session cookie.
func (h *AuthHandler) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := authsvc.BearerToken(c, h.cookieName)
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no session token"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		if err := h.service.Logout(ctx, token); err != nil {
			if errors.Is(err, authpkg.ErrInvalidToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "logout failed", "detail": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed", "detail": err.Error()})
			return
		}
		if h.cookieName != "" {
			c.SetCookie(h.cookieName, "", -1, "/", "", c.Request.TLS != nil, true)
		}
		c.Status(http.StatusNoContent)
	}
}

// Me returns the identity placed in context by the auth middleware.
func (h *AuthHandler) Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString("user_id"),
			"role":     c.GetString("role"),
			"admin_id": c.GetString("admin_id"),
		})
	}
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	authpkg "github.com/mikios34/customer-admin/auth"
	"github.com/mikios34/customer-admin/auth/repository"
	"github.com/mikios34/customer-admin/entity"
	"github.com/mikios34/customer-admin/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dashboardOpts = layout.Options{Required: true, Redirect: "/auth/login", Roles: []string{entity.RoleAdmin}}

func resolve(t *testing.T, svc layout.SessionService, opts layout.Options, mutate func(r *http.Request)) (layout.Status, *gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if mutate != nil {
		mutate(c.Request)
	}
	return svc.Resolve(c, opts), c, w
}

func login(t *testing.T, tokens authpkg.TokenStore) string {
	t.Helper()
	repo, _ := seedRepo(t)
	svc := NewAuthService(repo, tokens, nil, tokenCfg, nil)
	p, err := svc.Login(context.Background(), authpkg.LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	return p.Token
}

func TestResolveAuthorizedFromBearer(t *testing.T) {
	tokens := repository.NewMemoryTokenStore()
	token := login(t, tokens)
	svc := NewSessionService(SessionConfig{CookieName: "session"}, nil, authpkg.NewJWTVerifier(testSecret, tokens))

	status, c, _ := resolve(t, svc, dashboardOpts, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, layout.StateAuthorized, status)
	assert.NotEmpty(t, c.GetString("user_id"))
	assert.Equal(t, entity.RoleAdmin, c.GetString("role"))
	assert.NotEmpty(t, c.GetString("admin_id"))
}

func TestResolveAuthorizedFromCookie(t *testing.T) {
	tokens := repository.NewMemoryTokenStore()
	token := login(t, tokens)
	svc := NewSessionService(SessionConfig{CookieName: "session"}, nil, authpkg.NewJWTVerifier(testSecret, tokens))

	status, _, _ := resolve(t, svc, dashboardOpts, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "session", Value: token})
	})
	assert.Equal(t, layout.StateAuthorized, status)
}

func TestResolveMissingTokenRedirectsBrowsers(t *testing.T) {
	svc := NewSessionService(SessionConfig{}, nil, authpkg.NewJWTVerifier(testSecret, nil))

	status, _, w := resolve(t, svc, dashboardOpts, func(r *http.Request) {
		r.Header.Set("Accept", "text/html,application/xhtml+xml")
	})
	assert.Equal(t, layout.StateUnauthorized, status)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))

	status, c, _ := resolve(t, svc, dashboardOpts, func(r *http.Request) {
		r.Header.Set("Accept", "application/json")
	})
	assert.Equal(t, layout.StateUnauthorized, status)
	assert.False(t, c.Writer.Written())
}

func TestResolveNotRequired(t *testing.T) {
	svc := NewSessionService(SessionConfig{}, nil, authpkg.NewJWTVerifier(testSecret, nil))

	status, _, _ := resolve(t, svc, layout.Options{}, nil)
	assert.Equal(t, layout.StateAuthorized, status)

	status, _, _ = resolve(t, svc, layout.Options{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, layout.StateAuthorized, status)
}

func TestResolveLoadingWhenRevocationStoreFails(t *testing.T) {
	token := login(t, repository.NewMemoryTokenStore())
	svc := NewSessionService(SessionConfig{}, nil, authpkg.NewJWTVerifier(testSecret, brokenTokens{}))

	status, c, _ := resolve(t, svc, dashboardOpts, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, layout.StateLoading, status)
	assert.Empty(t, c.GetString("user_id"))
}

func TestResolveRejectsRole(t *testing.T) {
	tokens := repository.NewMemoryTokenStore()
	token := login(t, tokens)
	svc := NewSessionService(SessionConfig{}, nil, authpkg.NewJWTVerifier(testSecret, tokens))

	opts := dashboardOpts
	opts.Roles = []string{entity.RoleStaff}
	status, _, _ := resolve(t, svc, opts, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, layout.StateUnauthorized, status)
}

func TestResolveFallsBackToFirebase(t *testing.T) {
	repo, admin := seedRepo(t)
	fb := &fakeFirebase{uids: map[string]string{"firebase-id-token": "fb-uid-1"}}
	svc := NewSessionService(SessionConfig{}, nil,
		authpkg.NewJWTVerifier(testSecret, nil),
		authpkg.NewFirebaseVerifier(fb, repo),
	)

	status, c, _ := resolve(t, svc, dashboardOpts, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer firebase-id-token")
	})
	assert.Equal(t, layout.StateAuthorized, status)
	assert.Equal(t, admin.ID.String(), c.GetString("user_id"))
}

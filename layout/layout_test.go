package layout

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	status   Status
	redirect string
	calls    int
	got      Options
}

func (s *stubSessions) Resolve(c *gin.Context, opts Options) Status {
	s.calls++
	s.got = opts
	if s.redirect != "" {
		c.Redirect(http.StatusFound, s.redirect)
	}
	return s.status
}

func newRouter(sessions SessionService, opts Options, reached *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := NewGate(sessions, opts, nil)
	r.GET("/dashboard", g.Protect(), func(c *gin.Context) {
		*reached = true
		c.String(http.StatusOK, "customers")
	})
	return r
}

func TestDecide(t *testing.T) {
	assert.False(t, Decide(StateLoading))
	assert.True(t, Decide(StateAuthorized))
	assert.False(t, Decide(StateUnauthorized))
}

func TestGateRendersByStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		code     int
		reached  bool
		contains string
	}{
		{name: "loading", status: StateLoading, code: http.StatusOK, contains: PlaceholderHTML},
		{name: "authorized", status: StateAuthorized, code: http.StatusOK, reached: true, contains: "customers"},
		{name: "unauthorized", status: StateUnauthorized, code: http.StatusForbidden, contains: PlaceholderHTML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			sessions := &stubSessions{status: tt.status}
			opts := Options{Required: true, Redirect: "/auth/login", Roles: []string{"ADMIN"}}
			r := newRouter(sessions, opts, &reached)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.reached, reached)
			assert.Contains(t, w.Body.String(), tt.contains)
			assert.Equal(t, 1, sessions.calls)
			assert.Equal(t, opts, sessions.got)
		})
	}
}

func TestGateLoadingNeverRendersContent(t *testing.T) {
	var reached bool
	r := newRouter(&stubSessions{status: StateLoading}, Options{Required: true}, &reached)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.False(t, reached)
	assert.NotContains(t, w.Body.String(), "customers")
}

func TestGateKeepsSessionRedirect(t *testing.T) {
	var reached bool
	sessions := &stubSessions{status: StateUnauthorized, redirect: "/auth/login"}
	r := newRouter(sessions, Options{Required: true, Redirect: "/auth/login"}, &reached)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestPlaceholderImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/static/placeholder.svg", PlaceholderImage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/placeholder.svg", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")
}

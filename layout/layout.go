// Package layout gates the dashboard on the caller's session.
package layout

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status is the resolved session status of a request.
type Status int

const (
	StateLoading Status = iota
	StateAuthorized
	StateUnauthorized
)

func (s Status) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthorized:
		return "authorized"
	case StateUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Options tell the session service what the protected routes require.
type Options struct {
	Required bool
	Redirect string
	Roles    []string
}

// SessionService resolves the session status of a request. Implementations
// may redirect the client themselves; the gate never does.
type SessionService interface {
	Resolve(c *gin.Context, opts Options) Status
}

// Decide reports whether protected content may be rendered for status.
func Decide(status Status) bool {
	return status == StateAuthorized
}

// Gate wraps dashboard routes.
type Gate struct {
	sessions SessionService
	opts     Options
	shell    *Shell
}

// NewGate builds a gate around sessions. shell renders the placeholder page;
// nil means the default shell.
func NewGate(sessions SessionService, opts Options, shell *Shell) *Gate {
	if shell == nil {
		shell = DefaultShell()
	}
	return &Gate{sessions: sessions, opts: opts, shell: shell}
}

// Protect resolves the session once per request and only lets authorized
// requests through. Loading and unauthorized requests get the placeholder.
func (g *Gate) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := g.sessions.Resolve(c, g.opts)
		c.Set("session_status", status.String())
		if Decide(status) {
			c.Next()
			return
		}
		if c.Writer.Written() {
			c.Abort()
			return
		}
		code := http.StatusOK
		if status == StateUnauthorized {
			code = http.StatusForbidden
		}
		g.shell.Placeholder(c, code)
		c.Abort()
	}
}

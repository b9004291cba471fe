package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikios34/customer-admin/entity"
	"github.com/mikios34/customer-admin/layout"
	"github.com/mikios34/customer-admin/middleware"
)

// Handlers groups every route handler of the server.
type Handlers struct {
	Auth      *AuthHandler
	Admin     *AdminHandler
	Customer  *CustomerHandler
	Form      *FormHandler
	WS        *WSHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the public API and the gated dashboard. requireAuth
// guards API routes that need a bearer token.
func RegisterRoutes(r *gin.Engine, h *Handlers, gate *layout.Gate, requireAuth gin.HandlerFunc) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/static/placeholder.svg", layout.PlaceholderImage)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.Auth.Login())
		auth.POST("/refresh", h.Auth.Refresh())
		auth.POST("/logout", h.Auth.Logout())
		auth.GET("/me", requireAuth, h.Auth.Me())
	}

	dash := r.Group("/dashboard", gate.Protect())
	{
		dash.GET("", h.Dashboard.Home())

		dash.GET("/customers", h.Customer.ListCustomers())
		dash.GET("/customers/export", h.Customer.ExportCustomers())
		dash.GET("/customers/:id", h.Customer.GetCustomer())
		dash.DELETE("/customers/:id", h.Customer.DeleteCustomer())

		dash.POST("/customers/forms", h.Form.OpenCreateForm())
		dash.POST("/customers/:id/forms", h.Form.OpenEditForm())
		dash.GET("/forms/:formId", h.Form.GetForm())
		dash.PATCH("/forms/:formId/fields", h.Form.SetField())
		dash.PUT("/forms/:formId/files/:slot", h.Form.SelectFile())
		dash.POST("/forms/:formId/submit", h.Form.Submit())
		dash.DELETE("/forms/:formId", h.Form.Discard())
		dash.GET("/forms/:formId/ws", h.WS.FormSocket())
		dash.GET("/previews/:previewId", h.Form.Preview())

		dash.POST("/admins", middleware.RequireRoles(entity.RoleAdmin), h.Admin.RegisterAdmin())
	}
}

// RegisterDocuments serves locally stored customer documents behind the
// layout gate.
func RegisterDocuments(r *gin.Engine, gate *layout.Gate, prefix, dir string) {
	r.Group(prefix, gate.Protect()).Static("/", dir)
}

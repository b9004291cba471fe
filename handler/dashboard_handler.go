package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikios34/customer-admin/layout"
)

const dashboardHTML = `<section id="customers" data-list="/dashboard/customers" data-export="/dashboard/customers/export" data-new-form="/dashboard/customers/forms">
<h1>Customers</h1>
</section>`

type DashboardHandler struct {
	shell *layout.Shell
}

func NewDashboardHandler(shell *layout.Shell) *DashboardHandler {
	if shell == nil {
		shell = layout.DefaultShell()
	}
	return &DashboardHandler{shell: shell}
}

// Home renders the dashboard shell with the customer section.
func (h *DashboardHandler) Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.shell.Render(c, http.StatusOK, template.HTML(dashboardHTML))
	}
}

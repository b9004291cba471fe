package layout

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/shell.html static/placeholder.svg
var assets embed.FS

// PlaceholderHTML is rendered while the session is loading or denied.
const PlaceholderHTML = "<p>Loading</p>"

// Shell renders the dashboard page frame.
type Shell struct {
	title string
	tmpl  *template.Template
}

// DefaultShell returns the built-in dashboard shell.
func DefaultShell() *Shell {
	return &Shell{
		title: "Customer Admin",
		tmpl:  template.Must(template.ParseFS(assets, "templates/shell.html")),
	}
}

type shellData struct {
	Title   string
	Content template.HTML
}

// Render writes the shell with content in its main area.
func (s *Shell) Render(c *gin.Context, code int, content template.HTML) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, shellData{Title: s.title, Content: content}); err != nil {
		c.String(http.StatusInternalServerError, "render shell: %v", err)
		return
	}
	c.Data(code, "text/html; charset=utf-8", buf.Bytes())
}

// Placeholder renders the shell with the loading placeholder.
func (s *Shell) Placeholder(c *gin.Context, code int) {
	s.Render(c, code, template.HTML(PlaceholderHTML))
}

// PlaceholderImage serves the image shown for empty upload slots.
func PlaceholderImage(c *gin.Context) {
	data, err := assets.ReadFile("static/placeholder.svg")
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", data)
}

package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mikios34/customer-admin/intake"
	"github.com/mikios34/customer-admin/realtime"
)

type WSHandler struct {
	hub      *realtime.Hub
	registry *intake.Registry
	upgrader websocket.Upgrader
}

// NewWSHandler accepts upgrades from the server's own origin and from the
// exact origins listed in allowedOrigins. A "*" entry is ignored since the
// socket rides the session cookie.
func NewWSHandler(hub *realtime.Hub, registry *intake.Registry, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" && o != "*" {
			allowed[strings.ToLower(o)] = struct{}{}
		}
	}
	h := &WSHandler{hub: hub, registry: registry}
	h.upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		return originAllowed(r, allowed)
	}}
	return h
}

func originAllowed(r *http.Request, allowed map[string]struct{}) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	_, ok := allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
	return ok
}

// FormSocket upgrades to WS and streams the events of one form. The first
// message is the current view.
func (h *WSHandler) FormSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		// the layout gate runs before this handler and sets user_id
		form, ok := lookupForm(c, h.registry)
		if !ok {
			return
		}
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		if err := conn.WriteJSON(intake.Event{Type: "form.view", Form: form.ID(), Data: form.View()}); err != nil {
			conn.Close()
			return
		}
		// writes go through the hub from here on
		unsubscribe := h.hub.Subscribe(form.ID(), conn)
		defer unsubscribe()
		// no inbound events are expected; hold the connection until closed
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

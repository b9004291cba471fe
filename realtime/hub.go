package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mikios34/customer-admin/intake"
	"go.uber.org/zap"
)

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// wsConn wraps a websocket connection with a write mutex to serialize writes.
type wsConn struct {
	conn Conn
	mu   sync.Mutex
}

func (c *wsConn) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans form events out to the dashboard tabs watching each form.
type Hub struct {
	logger *zap.Logger

	mu     sync.RWMutex
	byForm map[uuid.UUID]map[*wsConn]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger, byForm: make(map[uuid.UUID]map[*wsConn]struct{})}
}

// Subscribe registers conn for events of formID. The returned func removes
// and closes the subscription.
func (h *Hub) Subscribe(formID uuid.UUID, conn Conn) func() {
	wc := &wsConn{conn: conn}
	h.mu.Lock()
	subs, ok := h.byForm[formID]
	if !ok {
		subs = make(map[*wsConn]struct{})
		h.byForm[formID] = subs
	}
	subs[wc] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.drop(formID, wc) })
	}
}

func (h *Hub) drop(formID uuid.UUID, wc *wsConn) {
	h.mu.Lock()
	if subs, ok := h.byForm[formID]; ok {
		delete(subs, wc)
		if len(subs) == 0 {
			delete(h.byForm, formID)
		}
	}
	h.mu.Unlock()
	wc.conn.Close()
}

// Subscribers returns how many connections watch formID.
func (h *Hub) Subscribers(formID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byForm[formID])
}

// Publish sends e to every subscriber of its form. Connections that fail a
// write are dropped. It can be used directly as a form observer.
func (h *Hub) Publish(e intake.Event) {
	h.mu.RLock()
	subs := make([]*wsConn, 0, len(h.byForm[e.Form]))
	for wc := range h.byForm[e.Form] {
		subs = append(subs, wc)
	}
	h.mu.RUnlock()

	for _, wc := range subs {
		if err := wc.write(e); err != nil {
			h.logger.Warn("ws: drop subscriber",
				zap.String("form_id", e.Form.String()),
				zap.String("event", e.Type),
				zap.Error(err),
			)
			h.drop(e.Form, wc)
		}
	}
}

// CloseForm disconnects every subscriber of formID.
func (h *Hub) CloseForm(formID uuid.UUID) {
	h.mu.Lock()
	subs := h.byForm[formID]
	delete(h.byForm, formID)
	h.mu.Unlock()

	for wc := range subs {
		wc.conn.Close()
	}
}

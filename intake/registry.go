package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrFormNotFound = errors.New("form not found")

type registryEntry struct {
	form    *Form
	owner   string
	touched time.Time
}

// Registry holds the live form sessions of the dashboard. A form is
// discarded after a successful submission, on explicit discard, or once it
// has been idle longer than the registry TTL.
type Registry struct {
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu    sync.Mutex
	forms map[uuid.UUID]*registryEntry
}

// NewRegistry creates a registry. A non-positive ttl disables expiry.
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		forms:  make(map[uuid.UUID]*registryEntry),
	}
}

// Open registers form on behalf of owner.
func (r *Registry) Open(form *Form, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[form.ID()] = &registryEntry{form: form, owner: owner, touched: r.now()}
}

// Get returns the form if it exists and belongs to owner.
func (r *Registry) Get(id uuid.UUID, owner string) (*Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.forms[id]
	if !ok || e.owner != owner {
		return nil, ErrFormNotFound
	}
	e.touched = r.now()
	return e.form, nil
}

// Submit submits the form and discards it when the callback succeeds. A
// failed submission leaves the form open for correction.
func (r *Registry) Submit(ctx context.Context, id uuid.UUID, owner string) error {
	form, err := r.Get(id, owner)
	if err != nil {
		return err
	}
	if err := form.Submit(ctx); err != nil {
		return err
	}
	r.remove(id)
	if err := form.Close(ctx); err != nil {
		r.logger.Warn("release form resources", zap.String("form_id", id.String()), zap.Error(err))
	}
	return nil
}

// Discard closes and forgets the form.
func (r *Registry) Discard(ctx context.Context, id uuid.UUID, owner string) error {
	form, err := r.Get(id, owner)
	if err != nil {
		return err
	}
	r.remove(id)
	return form.Close(ctx)
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.forms, id)
	r.mu.Unlock()
}

// Len returns the number of open forms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Sweep discards forms idle longer than the TTL. Forms with a submission in
// flight are kept.
func (r *Registry) Sweep(ctx context.Context) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Form
	for id, e := range r.forms {
		if e.touched.After(cutoff) || e.form.State() != StateIdle {
			continue
		}
		expired = append(expired, e.form)
		delete(r.forms, id)
	}
	r.mu.Unlock()

	for _, f := range expired {
		if err := f.Close(ctx); err != nil {
			r.logger.Warn("release expired form", zap.String("form_id", f.ID().String()), zap.Error(err))
		}
	}
	if len(expired) > 0 {
		r.logger.Info("expired idle forms", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps on every interval until ctx is done, then closes all forms.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	forms := r.forms
	r.forms = make(map[uuid.UUID]*registryEntry)
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, e := range forms {
		_ = e.form.Close(ctx)
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	customerpkg "github.com/mikios34/customer-admin/customer"
	"github.com/mikios34/customer-admin/intake"
	"github.com/mikios34/customer-admin/preview"
)

// PreviewStore both owns previews for forms and serves their bytes.
type PreviewStore interface {
	intake.PreviewStore
	preview.Reader
}

// Publisher receives form events for live subscribers.
type Publisher interface {
	Publish(e intake.Event)
	CloseForm(formID uuid.UUID)
}

// FormConfig holds the intake limits exposed over HTTP.
type FormConfig struct {
	PlaceholderURL string
	MaxUploadBytes int64
}

// FormHandler serves the customer intake form sessions.
type FormHandler struct {
	registry  *intake.Registry
	customers customerpkg.CustomerService
	schema    intake.Schema
	previews  PreviewStore
	events    Publisher
	cfg       FormConfig
	now       func() time.Time
}

func NewFormHandler(registry *intake.Registry, customers customerpkg.CustomerService, schema intake.Schema, previews PreviewStore, events Publisher, cfg FormConfig) *FormHandler {
	return &FormHandler{
		registry:  registry,
		customers: customers,
		schema:    schema,
		previews:  previews,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (h *FormHandler) newForm(initial *intake.InitialData, submit intake.SubmitFunc, labels intake.Labels) (*intake.Form, error) {
	opts := intake.Options{
		Initial:        initial,
		Submit:         submit,
		Labels:         labels,
		Schema:         h.schema,
		Previews:       h.previews,
		PlaceholderURL: h.cfg.PlaceholderURL,
		Now:            h.now,
	}
	if h.events != nil {
		opts.Observer = h.events.Publish
	}
	return intake.New(opts)
}

func actorID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// lookupForm resolves :formId for the calling user and writes the error
// response when it fails.
func lookupForm(c *gin.Context, registry *intake.Registry) (*intake.Form, bool) {
	id, err := uuid.Parse(c.Param("formId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
		return nil, false
	}
	f, err := registry.Get(id, c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return f, true
}

func (h *FormHandler) lookup(c *gin.Context) (*intake.Form, bool) {
	return lookupForm(c, h.registry)
}

// OpenCreateForm starts a blank customer form.
func (h *FormHandler) OpenCreateForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := h.newForm(nil,
			customerpkg.SubmitCreate(h.customers, actorID(c)),
			intake.Labels{Title: "Add Customer", Submit: "Submit"},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open form", "detail": err.Error()})
			return
		}
		h.registry.Open(f, c.GetString("user_id"))
		c.JSON(http.StatusCreated, gin.H{"form": f.View()})
	}
}

// OpenEditForm starts a form prefilled from an existing customer.
func (h *FormHandler) OpenEditForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		cust, err := h.customers.GetCustomer(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, customerpkg.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer", "detail": err.Error()})
			return
		}
		f, err := h.newForm(customerpkg.InitialData(cust),
			customerpkg.SubmitUpdate(h.customers, cust.ID),
			intake.Labels{Title: "Edit Customer", Submit: "Update"},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open form", "detail": err.Error()})
			return
		}
		h.registry.Open(f, c.GetString("user_id"))
		c.JSON(http.StatusCreated, gin.H{"form": f.View()})
	}
}

func (h *FormHandler) GetForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := h.lookup(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"form": f.View()})
	}
}

type fieldPayload struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SetField applies one field change and returns its inline message.
func (h *FormHandler) SetField() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := h.lookup(c)
		if !ok {
			return
		}
		var p fieldPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		msg, err := f.SetField(intake.Field(p.Field), p.Value)
		if err != nil {
			formError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"field": p.Field, "message": msg, "form": f.View()})
	}
}

// SelectFile replaces the pending file of a slot from the multipart "file" part.
func (h *FormHandler) SelectFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := h.lookup(c)
		if !ok {
			return
		}
		slot := intake.Slot(c.Param("slot"))
		if !slot.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown upload slot %q", slot)})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+1<<20)
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "detail": err.Error()})
			return
		}
		if fh.Size > h.cfg.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": intake.ErrFileTooLarge.Error()})
			return
		}
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "detail": err.Error()})
			return
		}
		defer src.Close()

		handle, err := intake.ReadFileHandle(fh.Filename, fh.Header.Get("Content-Type"), src, h.cfg.MaxUploadBytes)
		if err != nil {
			formError(c, err)
			return
		}
		p, err := f.SelectFile(c.Request.Context(), slot, handle)
		if err != nil {
			formError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"slot": slot, "preview": p, "form": f.View()})
	}
}

// Submit validates the form and hands the payload to the customer service.
// The form is discarded only when the customer service accepted it.
func (h *FormHandler) Submit() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := h.lookup(c)
		if !ok {
			return
		}
		err := h.registry.Submit(c.Request.Context(), f.ID(), c.GetString("user_id"))
		if err != nil {
			formError(c, err)
			return
		}
		if h.events != nil {
			h.events.CloseForm(f.ID())
		}
		if f.Mode() == intake.ModeEdit {
			c.JSON(http.StatusOK, gin.H{"message": "customer updated", "customer_id": f.CustomerID()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "customer created"})
	}
}

// Discard closes the form and releases its previews.
func (h *FormHandler) Discard() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := h.lookup(c)
		if !ok {
			return
		}
		if err := h.registry.Discard(c.Request.Context(), f.ID(), c.GetString("user_id")); err != nil && !errors.Is(err, intake.ErrFormNotFound) {
			c.Error(err)
		}
		if h.events != nil {
			h.events.CloseForm(f.ID())
		}
		c.Status(http.StatusNoContent)
	}
}

// Preview serves the bytes of a local selection.
func (h *FormHandler) Preview() gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := h.previews.Get(c.Request.Context(), c.Param("previewId"))
		if err != nil {
			if errors.Is(err, preview.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preview", "detail": err.Error()})
			return
		}
		c.Header("Cache-Control", "private, no-store")
		c.Data(http.StatusOK, b.ContentType, b.Data)
	}
}

// formError maps form and submission errors to responses. Anything the form
// does not know about came from the submit callback.
func formError(c *gin.Context, err error) {
	var verr *intake.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, intake.ErrSubmitPending), errors.Is(err, intake.ErrFormSubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, intake.ErrFormNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, intake.ErrFormClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, intake.ErrUnknownField), errors.Is(err, intake.ErrUnknownSlot), errors.Is(err, intake.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, intake.ErrNotImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, intake.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, customerpkg.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{
			"error":  "submission failed",
			"detail": err.Error(),
			"fields": intake.FieldErrors{intake.FieldEmail: err.Error()},
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "submission failed", "detail": err.Error()})
	}
}

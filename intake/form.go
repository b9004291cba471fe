package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrUnknownSlot   = errors.New("unknown upload slot")
	ErrSubmitPending = errors.New("a submission is already in flight")
	ErrFormClosed    = errors.New("form is closed")
	ErrFormSubmitted = errors.New("form was already submitted")
	ErrMissingOption = errors.New("missing form option")
)

const invalidDateNotice = "Enter a valid date"

// DefaultPlaceholderURL is shown for slots with neither a selection nor a
// stored reference.
const DefaultPlaceholderURL = "/static/placeholder.svg"

// State is the submission state of a form.
type State int

const (
	StateIdle State = iota
	StateValidating
	StatePending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StatePending:
		return "pending"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SubmitFunc receives the validated payload. Its error is returned to the
// caller of Submit as is.
type SubmitFunc func(ctx context.Context, p Payload) error

// Event types delivered to an Observer.
const (
	EventFieldChanged  = "field.changed"
	EventFileSelected  = "file.selected"
	EventSubmitInvalid = "submit.invalid"
	EventSubmitPending = "submit.pending"
	EventSubmitSettled = "submit.settled"
	EventFormDiscarded = "form.discarded"
)

const (
	submitUpdateLabel  = "Update"
	pendingUpdateLabel = "Updating"
	pendingSubmitLabel = "Submitting"
	defaultSubmitLabel = "Submit"
	defaultEditTitle   = "Edit Customer"
	defaultCreateTitle = "Add Customer"
)

// Event describes a form state change.
type Event struct {
	Type string    `json:"event"`
	Form uuid.UUID `json:"form_id"`
	Data any       `json:"data,omitempty"`
}

// Options configure a Form. Submit, Schema and Previews are required.
type Options struct {
	Initial        *InitialData
	Submit         SubmitFunc
	Labels         Labels
	Schema         Schema
	Previews       PreviewStore
	PlaceholderURL string
	Now            func() time.Time
	Observer       func(Event)
}

// Form is the customer intake form controller. It is safe for concurrent use.
type Form struct {
	id          uuid.UUID
	mode        Mode
	customerID  uuid.UUID
	labels      Labels
	schema      Schema
	previews    PreviewStore
	submit      SubmitFunc
	observer    func(Event)
	placeholder string
	minDOB      string

	mu        sync.Mutex
	state     State
	closed    bool
	done      bool
	draft     Draft
	errors    FieldErrors
	rejected  FieldErrors // input that could not be committed to the draft
	stored    map[Slot]string
	files     map[Slot]*FileHandle
	resources map[Slot]PreviewResource
	submitted int
}

// New initializes a form. With initial data the scalars are prefilled and all
// pending slots start empty; otherwise the scalars are blank and
// date_of_birth defaults to the minimum birth date.
func New(opts Options) (*Form, error) {
	switch {
	case opts.Submit == nil:
		return nil, fmt.Errorf("%w: submit callback", ErrMissingOption)
	case opts.Schema == nil:
		return nil, fmt.Errorf("%w: schema", ErrMissingOption)
	case opts.Previews == nil:
		return nil, fmt.Errorf("%w: preview store", ErrMissingOption)
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	f := &Form{
		id:          uuid.New(),
		labels:      opts.Labels,
		schema:      opts.Schema,
		previews:    opts.Previews,
		submit:      opts.Submit,
		observer:    opts.Observer,
		placeholder: opts.PlaceholderURL,
		minDOB:      DefaultMinimumBirthDate(now()).UTC().Format(DateLayout),
		errors:      FieldErrors{},
		rejected:    FieldErrors{},
		stored:      map[Slot]string{},
		files:       map[Slot]*FileHandle{},
		resources:   map[Slot]PreviewResource{},
	}
	if f.placeholder == "" {
		f.placeholder = DefaultPlaceholderURL
	}

	if opts.Initial != nil {
		f.mode = ModeEdit
		f.customerID = opts.Initial.CustomerID
		f.draft = opts.Initial.Draft
		dob, err := NormalizeBirthDate(f.draft.DateOfBirth)
		if err != nil {
			dob = ""
		}
		f.draft.DateOfBirth = dob
		for slot, ref := range opts.Initial.Stored {
			if slot.Valid() && ref != "" {
				f.stored[slot] = ref
			}
		}
	} else {
		f.mode = ModeCreate
		f.draft = Draft{DateOfBirth: f.minDOB}
	}

	if f.labels.Submit == "" {
		f.labels.Submit = defaultSubmitLabel
	}
	if f.labels.Title == "" {
		if f.mode == ModeEdit {
			f.labels.Title = defaultEditTitle
		} else {
			f.labels.Title = defaultCreateTitle
		}
	}
	return f, nil
}

// ID returns the form identifier.
func (f *Form) ID() uuid.UUID { return f.id }

// Mode returns whether the form creates or edits a record.
func (f *Form) Mode() Mode { return f.mode }

// CustomerID returns the edited record id, uuid.Nil for create forms.
func (f *Form) CustomerID() uuid.UUID { return f.customerID }

// State returns the current submission state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the scalar state.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.clone()
}

// SetField applies a user edit and validates the field. It returns the
// field's validation message, empty when the value is legal.
func (f *Form) SetField(field Field, value string) (string, error) {
	acc, ok := fieldAccess[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return "", ErrFormClosed
	}
	var msg string
	if field == FieldDateOfBirth {
		normalized, err := NormalizeBirthDate(value)
		if err != nil {
			msg = invalidDateNotice
			f.rejected[field] = msg
		} else {
			value = normalized
		}
	}
	if msg == "" {
		delete(f.rejected, field)
		acc.set(&f.draft, value)
		msg = f.schema.ValidateField(f.draft, field)
	}
	if msg == "" {
		delete(f.errors, field)
	} else {
		f.errors[field] = msg
	}
	current := acc.get(&f.draft)
	f.mu.Unlock()

	f.notify(EventFieldChanged, map[string]string{
		"field": string(field),
		"value": current,
		"error": msg,
	})
	return msg, nil
}

// SelectFile stores a replacement file for slot and acquires its preview.
// The slot's previous preview, if any, is released.
func (f *Form) SelectFile(ctx context.Context, slot Slot, h *FileHandle) (Preview, error) {
	if !slot.Valid() {
		return Preview{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if h == nil {
		return Preview{}, ErrEmptyFile
	}
	res, err := f.previews.Acquire(ctx, h)
	if err != nil {
		return Preview{}, fmt.Errorf("acquire preview: %w", err)
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = f.previews.Release(ctx, res.ID)
		return Preview{}, ErrFormClosed
	}
	old, hadOld := f.resources[slot]
	f.files[slot] = h
	f.resources[slot] = res
	f.mu.Unlock()

	if hadOld {
		_ = f.previews.Release(ctx, old.ID)
	}
	p := Preview{Source: PreviewLocal, URL: res.URL}
	f.notify(EventFileSelected, map[string]any{"slot": slot, "preview": p})
	return p, nil
}

// Preview resolves what to display for slot: the local selection, then the
// stored reference, then the placeholder.
func (f *Form) Preview(slot Slot) Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previewLocked(slot)
}

func (f *Form) previewLocked(slot Slot) Preview {
	if res, ok := f.resources[slot]; ok {
		return Preview{Source: PreviewLocal, URL: res.URL}
	}
	if ref := f.stored[slot]; ref != "" {
		return Preview{Source: PreviewStored, URL: ref}
	}
	return Preview{Source: PreviewPlaceholder, URL: f.placeholder}
}

// Submit validates the draft and invokes the submit callback. Only one
// submission runs at a time; a call made while another is in flight returns
// ErrSubmitPending without reaching the callback. Validation failures return
// a *ValidationError and keep every entered value.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if f.done {
		f.mu.Unlock()
		return ErrFormSubmitted
	}
	if f.state != StateIdle {
		f.mu.Unlock()
		return ErrSubmitPending
	}
	f.state = StateValidating
	errs := f.schema.Validate(f.draft)
	for field, msg := range f.rejected {
		if errs == nil {
			errs = FieldErrors{}
		}
		errs[field] = msg
	}
	if len(errs) > 0 {
		f.errors = errs.clone()
		f.state = StateIdle
		f.mu.Unlock()
		f.notify(EventSubmitInvalid, errs)
		return &ValidationError{Fields: errs.clone()}
	}
	f.errors = FieldErrors{}
	payload := f.payloadLocked()
	f.state = StatePending
	f.submitted++
	f.mu.Unlock()

	f.notify(EventSubmitPending, nil)
	err := f.submit(ctx, payload)

	f.mu.Lock()
	f.state = StateIdle
	f.done = err == nil
	f.mu.Unlock()

	settled := map[string]any{"ok": err == nil}
	if err != nil {
		settled["error"] = err.Error()
	}
	f.notify(EventSubmitSettled, settled)
	return err
}

func (f *Form) payloadLocked() Payload {
	p := Payload{Draft: f.draft, CustomerID: f.customerID}
	for slot, h := range f.files {
		p.setFile(slot, h)
	}
	return p
}

// Submissions returns how many times the submit callback was invoked.
func (f *Form) Submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// ButtonView is the state of the submit trigger.
type ButtonView struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// View is a display snapshot of the form.
type View struct {
	ID             uuid.UUID        `json:"id"`
	Mode           Mode             `json:"mode"`
	CustomerID     *uuid.UUID       `json:"customer_id,omitempty"`
	Title          string           `json:"title"`
	Values         map[Field]string `json:"values"`
	Errors         FieldErrors      `json:"errors"`
	Previews       map[Slot]Preview `json:"previews"`
	Selected       map[Slot]string  `json:"selected"`
	State          string           `json:"state"`
	Pending        bool             `json:"pending"`
	Button         ButtonView       `json:"button"`
	MinDateOfBirth string           `json:"min_date_of_birth"`
}

// View renders the current snapshot. An empty date_of_birth displays the
// default minimum birth date.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		ID:             f.id,
		Mode:           f.mode,
		Title:          f.labels.Title,
		Values:         make(map[Field]string, len(Fields)),
		Errors:         f.errors.clone(),
		Previews:       make(map[Slot]Preview, len(Slots)),
		Selected:       map[Slot]string{},
		State:          f.state.String(),
		Pending:        f.state == StatePending,
		MinDateOfBirth: f.minDOB,
	}
	if f.mode == ModeEdit {
		id := f.customerID
		v.CustomerID = &id
	}
	for _, field := range Fields {
		val, _ := f.draft.Value(field)
		if field == FieldDateOfBirth && val == "" {
			val = f.minDOB
		}
		v.Values[field] = val
	}
	for _, slot := range Slots {
		v.Previews[slot] = f.previewLocked(slot)
		if h, ok := f.files[slot]; ok {
			v.Selected[slot] = h.Name
		}
	}
	v.Button = ButtonView{Label: f.labels.Submit, Disabled: v.Pending}
	if v.Pending {
		if f.labels.Submit == submitUpdateLabel {
			v.Button.Label = pendingUpdateLabel
		} else {
			v.Button.Label = pendingSubmitLabel
		}
	}
	return v
}

// Close releases every preview resource and drops pending files. It is safe
// to call more than once.
func (f *Form) Close(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	resources := f.resources
	f.resources = map[Slot]PreviewResource{}
	f.files = map[Slot]*FileHandle{}
	f.mu.Unlock()

	var errs []error
	for _, slot := range Slots {
		if res, ok := resources[slot]; ok {
			if err := f.previews.Release(ctx, res.ID); err != nil {
				errs = append(errs, fmt.Errorf("release %s preview: %w", slot, err))
			}
		}
	}
	f.notify(EventFormDiscarded, nil)
	return errors.Join(errs...)
}

func (f *Form) notify(kind string, data any) {
	if f.observer == nil {
		return
	}
	f.observer(Event{Type: kind, Form: f.id, Data: data})
}

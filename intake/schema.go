package intake

import (
	"sort"
	"strings"
)

// FieldErrors maps a field to its inline validation message.
type FieldErrors map[Field]string

func (e FieldErrors) clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Schema validates drafts. ValidateField returns the message for a single
// field, empty when the field is legal.
type Schema interface {
	ValidateField(d Draft, f Field) string
	Validate(d Draft) FieldErrors
}

// ValidationError is returned by Submit when the schema rejects the draft.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

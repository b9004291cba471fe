package intake

import (
	"github.com/google/uuid"

	"github.com/mikios34/customer-admin/entity"
)

// Field names a scalar member of a Draft.
type Field string

const (
	FieldFullName    Field = "full_name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldAddress     Field = "address"
	FieldGender      Field = "gender"
	FieldStatus      Field = "status"
	FieldDateOfBirth Field = "date_of_birth"
)

// Fields lists every scalar field in display order.
var Fields = []Field{
	FieldFullName,
	FieldPhone,
	FieldEmail,
	FieldAddress,
	FieldGender,
	FieldStatus,
	FieldDateOfBirth,
}

// Draft is the in-progress scalar state of a customer record.
// DateOfBirth is always empty or an ISO date (YYYY-MM-DD).
type Draft struct {
	FullName    string                `json:"full_name"`
	Email       string                `json:"email"`
	Phone       string                `json:"phone"`
	Address     string                `json:"address"`
	Gender      entity.Gender         `json:"gender"`
	Status      entity.CustomerStatus `json:"status"`
	DateOfBirth string                `json:"date_of_birth"`
}

type fieldAccessor struct {
	get func(d *Draft) string
	set func(d *Draft, v string)
}

var fieldAccess = map[Field]fieldAccessor{
	FieldFullName: {
		get: func(d *Draft) string { return d.FullName },
		set: func(d *Draft, v string) { d.FullName = v },
	},
	FieldEmail: {
		get: func(d *Draft) string { return d.Email },
		set: func(d *Draft, v string) { d.Email = v },
	},
	FieldPhone: {
		get: func(d *Draft) string { return d.Phone },
		set: func(d *Draft, v string) { d.Phone = v },
	},
	FieldAddress: {
		get: func(d *Draft) string { return d.Address },
		set: func(d *Draft, v string) { d.Address = v },
	},
	FieldGender: {
		get: func(d *Draft) string { return string(d.Gender) },
		set: func(d *Draft, v string) { d.Gender = entity.Gender(v) },
	},
	FieldStatus: {
		get: func(d *Draft) string { return string(d.Status) },
		set: func(d *Draft, v string) { d.Status = entity.CustomerStatus(v) },
	},
	FieldDateOfBirth: {
		get: func(d *Draft) string { return d.DateOfBirth },
		set: func(d *Draft, v string) { d.DateOfBirth = v },
	},
}

// Valid reports whether f names a known draft field.
func (f Field) Valid() bool {
	_, ok := fieldAccess[f]
	return ok
}

// Value returns the current value of field f.
func (d Draft) Value(f Field) (string, bool) {
	acc, ok := fieldAccess[f]
	if !ok {
		return "", false
	}
	return acc.get(&d), true
}

// InitialData seeds an edit flow with an existing record and its stored
// document references.
type InitialData struct {
	CustomerID uuid.UUID
	Draft      Draft
	Stored     map[Slot]string
}

// Labels are the caller supplied display strings of a form.
type Labels struct {
	Title  string `json:"title"`
	Submit string `json:"submit"`
}

// Mode tells whether a form creates a new record or edits an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Payload is handed to the submit callback. A file field is non-nil only when
// the slot was replaced during this editing session.
type Payload struct {
	Draft
	CustomerID  uuid.UUID   `json:"customer_id,omitempty"`
	Profile     *FileHandle `json:"-"`
	AadharFront *FileHandle `json:"-"`
	AadharBack  *FileHandle `json:"-"`
	DrivingLic  *FileHandle `json:"-"`
}

// File returns the replacement file selected for slot, or nil.
func (p Payload) File(slot Slot) *FileHandle {
	switch slot {
	case SlotProfile:
		return p.Profile
	case SlotAadharFront:
		return p.AadharFront
	case SlotAadharBack:
		return p.AadharBack
	case SlotDrivingLic:
		return p.DrivingLic
	}
	return nil
}

func (p *Payload) setFile(slot Slot, h *FileHandle) {
	switch slot {
	case SlotProfile:
		p.Profile = h
	case SlotAadharFront:
		p.AadharFront = h
	case SlotAadharBack:
		p.AadharBack = h
	case SlotDrivingLic:
		p.DrivingLic = h
	}
}

package customer

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mikios34/customer-admin/intake"
)

// draftRules mirrors intake.Draft with validation tags.
type draftRules struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"required,numeric,len=10"`
	Address     string `json:"address" validate:"required,min=5,max=500"`
	Gender      string `json:"gender" validate:"required,oneof=Male Female Other"`
	Status      string `json:"status" validate:"required,oneof=ACTIVE INACTIVE BLACKLISTED"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02,adult"`
}

var structFields = map[intake.Field]string{
	intake.FieldFullName:    "FullName",
	intake.FieldEmail:       "Email",
	intake.FieldPhone:       "Phone",
	intake.FieldAddress:     "Address",
	intake.FieldGender:      "Gender",
	intake.FieldStatus:      "Status",
	intake.FieldDateOfBirth: "DateOfBirth",
}

var fieldLabels = map[intake.Field]string{
	intake.FieldFullName:    "Full name",
	intake.FieldEmail:       "Email",
	intake.FieldPhone:       "Phone number",
	intake.FieldAddress:     "Address",
	intake.FieldGender:      "Gender",
	intake.FieldStatus:      "Status",
	intake.FieldDateOfBirth: "Date of birth",
}

// Schema validates customer drafts with go-playground/validator tags.
type Schema struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewSchema builds the customer draft schema. now drives the minimum age
// rule; nil means time.Now.
func NewSchema(now func() time.Time) *Schema {
	if now == nil {
		now = time.Now
	}
	s := &Schema{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}
	s.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails for an empty tag or nil func
	_ = s.validate.RegisterValidation("adult", s.isAdult)
	return s
}

func (s *Schema) isAdult(fl validator.FieldLevel) bool {
	dob, err := time.Parse(intake.DateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	limit := intake.DefaultMinimumBirthDate(s.now()).UTC().Format(intake.DateLayout)
	return dob.Format(intake.DateLayout) <= limit
}

func rulesFor(d intake.Draft) draftRules {
	return draftRules{
		FullName:    strings.TrimSpace(d.FullName),
		Email:       strings.TrimSpace(d.Email),
		Phone:       strings.TrimSpace(d.Phone),
		Address:     strings.TrimSpace(d.Address),
		Gender:      string(d.Gender),
		Status:      string(d.Status),
		DateOfBirth: d.DateOfBirth,
	}
}

// ValidateField implements intake.Schema.
func (s *Schema) ValidateField(d intake.Draft, f intake.Field) string {
	name, ok := structFields[f]
	if !ok {
		return ""
	}
	r := rulesFor(d)
	err := s.validate.StructPartial(r, name)
	return s.messages(err)[f]
}

// Validate implements intake.Schema.
func (s *Schema) Validate(d intake.Draft) intake.FieldErrors {
	r := rulesFor(d)
	return s.messages(s.validate.Struct(r))
}

func (s *Schema) messages(err error) intake.FieldErrors {
	out := intake.FieldErrors{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		f := intake.Field(fe.Field())
		if _, seen := out[f]; seen {
			continue
		}
		out[f] = message(f, fe)
	}
	return out
}

func message(f intake.Field, fe validator.FieldError) string {
	label := fieldLabels[f]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "numeric", "len":
		if f == intake.FieldPhone {
			return "Phone number must be 10 digits"
		}
		return label + " must be " + fe.Param() + " characters"
	case "min":
		return label + " must be at least " + fe.Param() + " characters"
	case "max":
		return label + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return "Select a valid " + strings.ToLower(label)
	case "datetime":
		return "Enter a valid date"
	case "adult":
		return "Customer must be at least 18 years old"
	}
	return label + " is invalid"
}

package intake

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical ISO date format of date_of_birth.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// DefaultMinimumBirthDate returns the instant exactly 18 years before now.
func DefaultMinimumBirthDate(now time.Time) time.Time {
	return now.AddDate(-18, 0, 0)
}

// NormalizeBirthDate converts a date or timestamp input into an ISO date in
// UTC. Empty input stays empty.
func NormalizeBirthDate(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC().Format(DateLayout), nil
		}
	}
	return "", ErrInvalidDate
}

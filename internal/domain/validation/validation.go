// Package validation checks player payloads and identifiers before they
// reach storage.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/roster/internal/domain/model"
)

// Field limits.
const (
	MaxNameLength  = 12
	MaxTitleLength = 30
	MaxExperience  = 10_000_000
	MinBirthYear   = 2000
	MaxBirthYear   = 3000
)

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithLocation sets the time zone used to derive the birthday year.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// Validator is stateless apart from its time zone and safe for concurrent use.
type Validator struct {
	loc *time.Location
}

// New creates a Validator using the local time zone unless overridden.
func New(opts ...Option) *Validator {
	v := &Validator{loc: time.Local}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateCreate requires name, title, race, profession, birthday and
// experience, then checks each of them. All violations are joined.
func (v *Validator) ValidateCreate(p model.Payload) error {
	var errs []error
	required := []struct {
		name    string
		missing bool
	}{
		{"name", p.Name == nil},
		{"title", p.Title == nil},
		{"race", p.Race == nil},
		{"profession", p.Profession == nil},
		{"birthday", p.Birthday == nil},
		{"experience", p.Experience == nil},
	}
	for _, r := range required {
		if r.missing {
			errs = append(errs, &model.FieldError{Field: r.name, Reason: "is required"})
		}
	}
	errs = append(errs, v.checkPresent(p)...)
	return errors.Join(errs...)
}

// ValidateUpdate checks only the fields present in p.
func (v *Validator) ValidateUpdate(p model.Payload) error {
	return errors.Join(v.checkPresent(p)...)
}

// ValidateID rejects non-positive identifiers.
func (v *Validator) ValidateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", model.ErrInvalidID, id)
	}
	return nil
}

func (v *Validator) checkPresent(p model.Payload) []error {
	var errs []error
	if p.Name != nil {
		if err := checkLength("name", *p.Name, MaxNameLength); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Title != nil {
		if err := checkLength("title", *p.Title, MaxTitleLength); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Experience != nil {
		if err := CheckExperience(*p.Experience); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Birthday != nil {
		if err := v.CheckBirthday(*p.Birthday); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func checkLength(field, value string, maxLen int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < 1 || n > maxLen {
		return &model.FieldError{Field: field, Reason: fmt.Sprintf("length must be between 1 and %d", maxLen)}
	}
	return nil
}

// CheckExperience accepts values in [0, MaxExperience].
func CheckExperience(experience int64) error {
	if experience < 0 || experience > MaxExperience {
		return &model.FieldError{Field: "experience", Reason: fmt.Sprintf("must be between 0 and %d", MaxExperience)}
	}
	return nil
}

// CheckBirthday accepts non-negative epoch milliseconds whose calendar year,
// in the validator's time zone, lies in [MinBirthYear, MaxBirthYear].
func (v *Validator) CheckBirthday(millis int64) error {
	if millis < 0 {
		return &model.FieldError{Field: "birthday", Reason: "must not precede the epoch"}
	}
	year := time.UnixMilli(millis).In(v.loc).Year()
	if year < MinBirthYear || year > MaxBirthYear {
		return &model.FieldError{Field: "birthday", Reason: fmt.Sprintf("year %d outside %d-%d", year, MinBirthYear, MaxBirthYear)}
	}
	return nil
}

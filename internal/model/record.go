package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrImmutable is returned by the persistence layer when something tries to
// update or delete a stored record.
var ErrImmutable = errors.New("records are immutable once created")

// Record is implemented by every stored category.
type Record interface {
	Category() Category
	// Normalize recomputes derived fields and truncates dates before a write.
	Normalize()
	Validate() error
	Identity() int64
	// ResetIdentity clears the stored columns so the medium assigns them.
	ResetIdentity()
}

// ProjectScoped records carry a project_name reference to an existing project.
type ProjectScoped interface {
	Record
	ProjectRef() string
}

// Base holds the columns every table shares. The field tag hides them from
// form decoding and CSV export.
type Base struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Base) Identity() int64 { return b.ID }

func (b *Base) ResetIdentity() {
	b.ID = 0
	b.CreatedAt = time.Time{}
}

// ValidationError reports a missing required field or a value outside its
// declared range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Date truncates t to a calendar date in UTC.
func Date(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func inRange(field string, value, lo, hi float64) error {
	if !finite(value) || value < lo || value > hi {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be between %g and %g", lo, hi)}
	}
	return nil
}

func nonNegative(field string, value float64) error {
	if !finite(value) {
		return &ValidationError{Field: field, Message: "must be a finite number"}
	}
	if value < 0 {
		return &ValidationError{Field: field, Message: "must not be negative"}
	}
	return nil
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func oneOf[T ~string](field string, value T, allowed ...T) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &ValidationError{Field: field, Message: "must be one of " + strings.Join(names, ", ")}
}

// first returns the first non-nil error.
func first(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

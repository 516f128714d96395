package roster

import (
	"errors"
	"strings"
)

// Business rule constants
const (
	StatusActive    = "active"
	StatusWithdrawn = "withdrawn"
)

// Domain errors
var (
	ErrEmptyName = errors.New("student name cannot be empty")
)

// Student is one enrolled participant of the cohort. The name is the
// unique key joining the roster sheet to form responses; the roster is
// never mutated by any computation, it only sets the denominator for
// completion rates.
type Student struct {
	Name       string
	EnrolledOn string // YYYY-MM-DD as exported, informational
	Status     string
}

// Validate checks if the Student has valid data.
// PRE: Student struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IsActive returns true unless the student has withdrawn.
func (s *Student) IsActive() bool {
	return s.Status != StatusWithdrawn
}

package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Error represents a validation error on a single field
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Error{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return Error{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Error{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return Error{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateHourlyRate rejects negative rates
func ValidateHourlyRate(rate float64) error {
	if !(rate >= 0) || math.IsInf(rate, 1) {
		return Error{Field: "hourlyRate", Message: "hourly rate must be a non-negative number"}
	}
	return nil
}

// ValidateEvent checks the fields an event needs before it can be stored
func ValidateEvent(name, location string, loadIn, loadOut time.Time, hours float64) error {
	if strings.TrimSpace(name) == "" {
		return Error{Field: "name", Message: "event name is required"}
	}
	if strings.TrimSpace(location) == "" {
		return Error{Field: "location", Message: "location is required"}
	}
	if loadIn.IsZero() {
		return Error{Field: "loadIn", Message: "load-in time is required"}
	}
	if loadOut.IsZero() {
		return Error{Field: "loadOut", Message: "load-out time is required"}
	}
	if !loadIn.Before(loadOut) {
		return Error{Field: "loadOut", Message: "load-out must be after load-in"}
	}
	if !(hours > 0) || math.IsInf(hours, 1) {
		return Error{Field: "hours", Message: "hours must be greater than zero"}
	}
	return nil
}

// ValidateIncident checks an incident report
func ValidateIncident(name, description string, start, end time.Time) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if strings.TrimSpace(description) == "" {
		return Error{Field: "description", Message: "description is required"}
	}
	if start.IsZero() || end.IsZero() {
		return Error{Field: "startDate", Message: "start and end dates are required"}
	}
	if end.Before(start) {
		return Error{Field: "endDate", Message: "end date cannot be before start date"}
	}
	return nil
}

package rsvp

import (
	"regexp"
	"strings"

	"agama-events/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     = validator.New()
	phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-().]+$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

func init() {
	// Permissive phone check: allowed symbols only, and at least 10 digits
	// once formatting is stripped.
	validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		if !phonePattern.MatchString(raw) {
			return false
		}
		return len(nonDigits.ReplaceAllString(raw, "")) >= 10
	})
}

// ValidateReservation checks a reservation request and returns a
// ValidationError with per-field messages, or nil.
func ValidateReservation(req models.ReservationRequest) *ValidationError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: map[string]string{"request": "invalid request"}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		fields[field] = messageFor(fe)
	}
	return &ValidationError{Fields: fields}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return "Name is required"
		}
		return "Name must be less than 100 characters"
	case "Email":
		if fe.Tag() == "max" {
			return "Email must be less than 255 characters"
		}
		return "Invalid email address"
	case "Phone":
		switch fe.Tag() {
		case "required":
			return "Phone number is required"
		case "max":
			return "Phone number must be less than 20 characters"
		default:
			return "Phone number must contain at least 10 digits and only numbers, spaces, and symbols: + - ( )"
		}
	case "EventID":
		return "Invalid event ID"
	case "TicketTypeID":
		return "Invalid ticket type ID"
	default:
		return "Invalid value"
	}
}

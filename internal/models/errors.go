package models

import "errors"

var (
	// Validation errors
	ErrInvalidCategory    = errors.New("invalid ticket category")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 100")
	ErrInvalidPreferences = errors.New("invalid dietary preferences")
	ErrInvalidCode        = errors.New("invalid ticket code format")

	// Ticket errors
	ErrTicketNotFound = errors.New("ticket not found")
	ErrDuplicateCode  = errors.New("ticket code already exists")
	ErrCodeExhaustion = errors.New("failed to generate unique ticket code after maximum attempts")

	// Store errors
	ErrStoreUnavailable     = errors.New("ticket store unavailable")
	ErrMalformedPreferences = errors.New("malformed stored dietary needs")
)

// IsValidation reports whether err belongs to the client-input family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPreferences) ||
		errors.Is(err, ErrInvalidCode)
}

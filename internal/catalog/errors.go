package catalog

import "errors"

// Domain errors shared by the catalog and reservation workflow. Ownership
// misses are reported as ErrEventNotFound so organizer routes never leak
// whether an event exists.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventPassed        = errors.New("this event has already passed")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrTicketTypeInactive = errors.New("this ticket type is not available")
	ErrSoldOut            = errors.New("this ticket type is sold out")
	ErrNegativePrice      = errors.New("price cannot be negative")
)

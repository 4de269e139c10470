package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrListingNotFound     = errors.New("listing not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrDateConflict = errors.New("dates overlap an existing reservation")
	ErrInvalidState = errors.New("reservation status does not allow this transition")

	// ErrBusy means the listing's admission lock could not be taken in time.
	ErrBusy = errors.New("listing is busy, try again")
)

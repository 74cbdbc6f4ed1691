package models

import "errors"

// Business errors returned by the booking core. Handlers map these to HTTP
// status codes; anything else is treated as an infrastructure failure.
var (
	// ErrBookingNotFound is returned when the referenced booking does not exist
	ErrBookingNotFound = errors.New("booking not found")

	// ErrExperienceNotFound is returned when the referenced experience does not exist
	ErrExperienceNotFound = errors.New("experience not found")

	// ErrDuplicateBooking is returned when the tourist already has a live
	// request for the same experience and slot
	ErrDuplicateBooking = errors.New("a booking request for this experience and slot already exists")

	// ErrForbidden is returned when the actor is not entitled to the requested transition
	ErrForbidden = errors.New("not authorized to perform this action on the booking")

	// ErrInvalidState is returned when a transition is attempted from a
	// terminal or incompatible status
	ErrInvalidState = errors.New("booking status does not allow this transition")

	// ErrSlotAlreadyConfirmed is returned when a confirmation loses the race:
	// another booking for the same host and slot is already confirmed
	ErrSlotAlreadyConfirmed = errors.New("another booking is already confirmed for this slot")
)

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending            BookingStatus = "pending"
	BookingStatusConfirmed          BookingStatus = "confirmed"
	BookingStatusCancelledByHost    BookingStatus = "cancelled_by_host"
	BookingStatusCancelledByTourist BookingStatus = "cancelled_by_tourist"
	BookingStatusCompleted          BookingStatus = "completed"
)

// CancelActor identifies which party triggered a cancellation
type CancelActor string

const (
	CancelActorHost    CancelActor = "host"
	CancelActorTourist CancelActor = "tourist"
)

// Booking represents a tourist's reservation request for one slot of a
// host's experience. Parties, slot and total price are frozen at creation;
// only status and cancelled_by change afterwards.
type Booking struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	ExperienceID uuid.UUID     `json:"experience_id" db:"experience_id"`
	HostID       uuid.UUID     `json:"host_id" db:"host_id"`
	TouristID    uuid.UUID     `json:"tourist_id" db:"tourist_id"`
	Slot         time.Time     `json:"slot" db:"slot"`
	GuestCount   int           `json:"guest_count" db:"guest_count"`
	TotalPrice   float64       `json:"total_price" db:"total_price"`
	Status       BookingStatus `json:"status" db:"status"`
	CancelledBy  *CancelActor  `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// IsValidStatus reports whether s is a known booking status
func IsValidStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed,
		BookingStatusCancelledByHost, BookingStatusCancelledByTourist,
		BookingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCancelledByHost, BookingStatusCancelledByTourist, BookingStatusCompleted:
		return true
	}
	return false
}

// IsBlocking reports whether a booking in this status removes its slot from
// public availability
func (s BookingStatus) IsBlocking() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// BlockingStatuses are the statuses that occupy a slot on the calendar
func BlockingStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusConfirmed}
}

// CanTransitionTo reports whether the state machine allows moving from s to
// target. Transitions never re-enter pending.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return target == BookingStatusConfirmed ||
			target == BookingStatusCancelledByHost ||
			target == BookingStatusCancelledByTourist
	case BookingStatusConfirmed:
		return target == BookingStatusCancelledByHost ||
			target == BookingStatusCancelledByTourist ||
			target == BookingStatusCompleted
	}
	return false
}

// CancelStatus returns the cancellation status matching the acting party
func (a CancelActor) CancelStatus() BookingStatus {
	if a == CancelActorHost {
		return BookingStatusCancelledByHost
	}
	return BookingStatusCancelledByTourist
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	ExperienceID uuid.UUID `json:"experience_id" binding:"required"`
	Slot         time.Time `json:"slot" binding:"required"`
	GuestCount   int       `json:"guest_count" binding:"required,min=1"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.ExperienceID == uuid.Nil {
		return errors.New("experience_id is required")
	}

	if r.Slot.IsZero() {
		return errors.New("slot is required")
	}

	if r.GuestCount <= 0 {
		return errors.New("guest_count must be at least 1")
	}

	if r.GuestCount > 20 {
		return errors.New("maximum 20 guests per booking")
	}

	return nil
}

// UpdateBookingStatusRequest represents the request to transition a booking's status
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}

// Validate validates the status transition request
func (r *UpdateBookingStatusRequest) Validate() error {
	if !IsValidStatus(r.Status) {
		return fmt.Errorf("unknown status: %s", r.Status)
	}

	if r.Status == BookingStatusPending {
		return errors.New("bookings cannot be moved back to pending")
	}

	return nil
}

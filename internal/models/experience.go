package models

import (
	"time"

	"github.com/google/uuid"
)

// Experience is the catalog entry a booking refers to. The catalog service
// owns this data; the booking core only reads it to resolve the host and to
// freeze the price at creation time.
type Experience struct {
	ID              uuid.UUID `json:"id" db:"id"`
	HostID          uuid.UUID `json:"host_id" db:"host_id"`
	Title           string    `json:"title" db:"title"`
	PricePerGuest   float64   `json:"price_per_guest" db:"price_per_guest"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TotalPriceFor computes the frozen booking price for a guest count
func (e *Experience) TotalPriceFor(guestCount int) float64 {
	return e.PricePerGuest * float64(guestCount)
}

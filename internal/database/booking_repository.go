package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/islandtrails/experience-booking-backend/internal/models"
)

// Partial unique index names from migrations/001_init.sql. Violations are
// translated into the matching business error.
const (
	confirmedSlotIndex = "bookings_confirmed_slot_idx"
	liveRequestIndex   = "bookings_live_request_idx"
)

const bookingColumns = `id, experience_id, host_id, tourist_id, slot,
	       guest_count, total_price, status, cancelled_by, created_at, updated_at`

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking. The bookings_live_request_idx partial unique
// index enforces the duplicate-request rule even when two identical requests
// race; the violation comes back as ErrDuplicateBooking.
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, experience_id, host_id, tourist_id, slot,
			guest_count, total_price, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.ExperienceID, booking.HostID, booking.TouristID,
		booking.Slot, booking.GuestCount, booking.TotalPrice, booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if isUniqueViolation(err, liveRequestIndex) {
		return models.ErrDuplicateBooking
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	var booking models.Booking
	err := r.db.Get(&booking, query, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// GetByHost retrieves all bookings assigned to a host, newest first. An
// empty status returns every booking regardless of status.
func (r *BookingRepository) GetByHost(hostID uuid.UUID, status models.BookingStatus) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE host_id = $1
	`
	args := []interface{}{hostID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get host bookings: %w", err)
	}

	return bookings, nil
}

// GetByTourist retrieves all bookings made by a tourist, newest first
func (r *BookingRepository) GetByTourist(touristID uuid.UUID) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tourist_id = $1
		ORDER BY created_at DESC
	`

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, touristID); err != nil {
		return nil, fmt.Errorf("failed to get tourist bookings: %w", err)
	}

	return bookings, nil
}

// FindConflicting returns other bookings for the same host and slot whose
// status is in the given set, excluding the booking identified by excludeID
func (r *BookingRepository) FindConflicting(
	hostID uuid.UUID,
	slot time.Time,
	excludeID uuid.UUID,
	statuses []models.BookingStatus,
) ([]models.Booking, error) {
	query, args, err := sqlx.In(`
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE host_id = ?
		  AND slot = ?
		  AND id <> ?
		  AND status IN (?)
		ORDER BY created_at
	`, hostID, slot, excludeID, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to build conflict query: %w", err)
	}

	query = r.db.Rebind(query)

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}

	return bookings, nil
}

// HasLiveRequest reports whether the tourist already has a booking for the
// experience and slot that is not self-cancelled. This is the friendly
// pre-check; the bookings_live_request_idx index is the authoritative guard.
func (r *BookingRepository) HasLiveRequest(touristID, experienceID uuid.UUID, slot time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE tourist_id = $1
			  AND experience_id = $2
			  AND slot = $3
			  AND status <> 'cancelled_by_tourist'
		)
	`

	var exists bool
	if err := r.db.Get(&exists, query, touristID, experienceID, slot); err != nil {
		return false, fmt.Errorf("failed to check for live request: %w", err)
	}

	return exists, nil
}

// GetBookedSlots returns every slot of the host occupied by a pending or
// confirmed booking. Cancelled and completed bookings never block a slot.
func (r *BookingRepository) GetBookedSlots(hostID uuid.UUID) ([]time.Time, error) {
	query := `
		SELECT DISTINCT slot
		FROM bookings
		WHERE host_id = $1
		  AND status IN ('pending', 'confirmed')
		ORDER BY slot
	`

	var slots []time.Time
	if err := r.db.Select(&slots, query, hostID); err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}

	return slots, nil
}

// Confirm moves a pending booking to confirmed, re-checking inside the same
// statement that no other confirmed booking holds the same host and slot.
// The check and the write cannot interleave with a concurrent confirmation
// because they are one statement; bookings_confirmed_slot_idx catches the
// residual window between two simultaneous commits.
// Returns the number of rows updated (0 means not pending, gone, or beaten).
func (r *BookingRepository) Confirm(bookingID uuid.UUID) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'confirmed', updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
		  AND NOT EXISTS (
			SELECT 1 FROM bookings other
			WHERE other.host_id = bookings.host_id
			  AND other.slot = bookings.slot
			  AND other.status = 'confirmed'
			  AND other.id <> bookings.id
		  )
	`

	result, err := r.db.Exec(query, bookingID)
	if isUniqueViolation(err, confirmedSlotIndex) {
		return 0, models.ErrSlotAlreadyConfirmed
	}
	if err != nil {
		return 0, fmt.Errorf("failed to confirm booking: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

// Cancel moves a pending or confirmed booking to the cancellation status of
// the acting party. Status and cancelled_by are written in one statement.
// Returns the number of rows updated (0 means the booking was not found or
// already terminal).
func (r *BookingRepository) Cancel(bookingID uuid.UUID, actor models.CancelActor) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $2, cancelled_by = $3, updated_at = NOW()
		WHERE id = $1
		  AND status IN ('pending', 'confirmed')
	`

	result, err := r.db.Exec(query, bookingID, actor.CancelStatus(), actor)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel booking: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

// Complete moves a confirmed booking to completed
func (r *BookingRepository) Complete(bookingID uuid.UUID) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1
		  AND status = 'confirmed'
	`

	result, err := r.db.Exec(query, bookingID)
	if err != nil {
		return 0, fmt.Errorf("failed to complete booking: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

// CompleteElapsed marks every confirmed booking whose slot is before the
// given time as completed. Used by the background sweeper.
func (r *BookingRepository) CompleteElapsed(before time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'confirmed'
		  AND slot < $1
	`

	result, err := r.db.Exec(query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to complete elapsed bookings: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique violation on
// the named constraint (empty name matches any unique violation)
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

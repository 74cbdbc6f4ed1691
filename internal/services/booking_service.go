package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/islandtrails/experience-booking-backend/internal/database"
	"github.com/islandtrails/experience-booking-backend/internal/models"
)

// BookingService is the lifecycle engine for experience bookings: it creates
// requests, authorizes status transitions, and arbitrates slot conflicts at
// confirmation time.
type BookingService struct {
	bookingRepo    *database.BookingRepository
	experienceRepo *database.ExperienceRepository
	logger         *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	experienceRepo *database.ExperienceRepository,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:    bookingRepo,
		experienceRepo: experienceRepo,
		logger:         logger,
	}
}

// CreateBooking files a new pending request on behalf of a tourist. The
// total price is computed from the catalog price at this moment and never
// changes afterwards, regardless of later catalog edits.
func (s *BookingService) CreateBooking(touristID uuid.UUID, req *models.CreateBookingRequest) (*models.Booking, error) {
	experience, err := s.experienceRepo.GetByID(req.ExperienceID)
	if err != nil {
		return nil, err
	}

	// Friendly duplicate check. The partial unique index behind
	// BookingRepository.Create is the authoritative guard when two
	// identical requests race past this read.
	exists, err := s.bookingRepo.HasLiveRequest(touristID, req.ExperienceID, req.Slot)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrDuplicateBooking
	}

	booking := &models.Booking{
		ID:           uuid.New(),
		ExperienceID: experience.ID,
		HostID:       experience.HostID,
		TouristID:    touristID,
		Slot:         req.Slot,
		GuestCount:   req.GuestCount,
		TotalPrice:   experience.TotalPriceFor(req.GuestCount),
		Status:       models.BookingStatusPending,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":    booking.ID,
		"experience_id": booking.ExperienceID,
		"host_id":       booking.HostID,
		"tourist_id":    booking.TouristID,
		"slot":          booking.Slot,
		"total_price":   booking.TotalPrice,
	}).Info("Booking request created")

	return booking, nil
}

// GetBooking returns a booking visible to one of its parties
func (s *BookingService) GetBooking(actorID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.HostID != actorID && booking.TouristID != actorID {
		return nil, models.ErrForbidden
	}

	return booking, nil
}

// ListHostBookings returns the requests assigned to a host, optionally
// filtered by status
func (s *BookingService) ListHostBookings(hostID uuid.UUID, status models.BookingStatus) ([]models.Booking, error) {
	if status != "" && !models.IsValidStatus(status) {
		return nil, fmt.Errorf("unknown status filter: %s", status)
	}

	return s.bookingRepo.GetByHost(hostID, status)
}

// ListTouristBookings returns every booking made by a tourist
func (s *BookingService) ListTouristBookings(touristID uuid.UUID) ([]models.Booking, error) {
	return s.bookingRepo.GetByTourist(touristID)
}

// Availability returns the slots of a host currently blocked by a pending
// or confirmed booking. Derived live from booking statuses so the calendar
// can never drift from the records.
func (s *BookingService) Availability(hostID uuid.UUID) ([]time.Time, error) {
	return s.bookingRepo.GetBookedSlots(hostID)
}

// TransitionStatus applies a status transition on behalf of an actor. The
// actor must be a party to the booking and entitled to the target status;
// confirmations additionally pass through the conflict re-check.
func (s *BookingService) TransitionStatus(
	bookingID, actorID uuid.UUID,
	target models.BookingStatus,
) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(booking, actorID, target); err != nil {
		return nil, err
	}

	// Fast rejection on stale state. The conditional UPDATEs below remain
	// the authoritative check under concurrent writers.
	if !booking.Status.CanTransitionTo(target) {
		return nil, models.ErrInvalidState
	}

	switch target {
	case models.BookingStatusConfirmed:
		err = s.confirm(booking)
	case models.BookingStatusCancelledByHost:
		err = s.cancel(booking, models.CancelActorHost)
	case models.BookingStatusCancelledByTourist:
		err = s.cancel(booking, models.CancelActorTourist)
	case models.BookingStatusCompleted:
		err = s.complete(booking)
	default:
		return nil, models.ErrInvalidState
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": updated.ID,
		"host_id":    updated.HostID,
		"actor_id":   actorID,
		"status":     updated.Status,
	}).Info("Booking status updated")

	return updated, nil
}

// authorizeTransition enforces who may trigger which transition
func authorizeTransition(booking *models.Booking, actorID uuid.UUID, target models.BookingStatus) error {
	switch target {
	case models.BookingStatusConfirmed, models.BookingStatusCancelledByHost, models.BookingStatusCompleted:
		if booking.HostID != actorID {
			return models.ErrForbidden
		}
	case models.BookingStatusCancelledByTourist:
		if booking.TouristID != actorID {
			return models.ErrForbidden
		}
	default:
		return models.ErrInvalidState
	}
	return nil
}

// confirm runs the conflict-arbitrated pending → confirmed transition. When
// the conditional update writes nothing, the booking is re-read to tell
// apart a vanished booking, a stale status, and a lost slot race.
func (s *BookingService) confirm(booking *models.Booking) error {
	rows, err := s.bookingRepo.Confirm(booking.ID)
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	current, err := s.bookingRepo.GetByID(booking.ID)
	if err != nil {
		return err
	}

	if current.Status != models.BookingStatusPending {
		return models.ErrInvalidState
	}

	// Still pending and not updated: another booking for this slot won the
	// confirmation. This one stays pending for the host to decline or the
	// tourist to cancel.
	conflicts, err := s.bookingRepo.FindConflicting(
		current.HostID, current.Slot, current.ID,
		[]models.BookingStatus{models.BookingStatusConfirmed},
	)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		s.logger.WithFields(logrus.Fields{
			"booking_id": current.ID,
			"host_id":    current.HostID,
			"slot":       current.Slot,
			"winner_id":  conflicts[0].ID,
		}).Warn("Confirmation rejected: slot already confirmed")
		return models.ErrSlotAlreadyConfirmed
	}

	return fmt.Errorf("confirmation of booking %s wrote no rows", booking.ID)
}

func (s *BookingService) cancel(booking *models.Booking, actor models.CancelActor) error {
	rows, err := s.bookingRepo.Cancel(booking.ID, actor)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrInvalidState
	}
	return nil
}

func (s *BookingService) complete(booking *models.Booking) error {
	rows, err := s.bookingRepo.Complete(booking.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrInvalidState
	}
	return nil
}

package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/islandtrails/experience-booking-backend/internal/database"
)

// CompletionService periodically moves confirmed bookings whose slot time
// has passed to completed. Pending bookings are deliberately left alone:
// they stay visible until the host declines or the tourist cancels.
type CompletionService struct {
	cron        *cron.Cron
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
	cronSpec    string
}

// NewCompletionService creates a new CompletionService. The cron expression
// uses the 6-field format with seconds.
func NewCompletionService(
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
	cronSpec string,
) *CompletionService {
	return &CompletionService{
		cron:        cron.New(cron.WithSeconds()),
		bookingRepo: bookingRepo,
		logger:      logger,
		cronSpec:    cronSpec,
	}
}

// Start schedules and starts the completion sweep
func (s *CompletionService) Start() error {
	_, err := s.cron.AddFunc(s.cronSpec, s.sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule completion sweep: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Completion sweeper started")

	return nil
}

// Stop stops the sweeper and waits for a running sweep to finish
func (s *CompletionService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Completion sweeper stopped")
}

// sweep marks every confirmed booking with an elapsed slot as completed
func (s *CompletionService) sweep() {
	completed, err := s.bookingRepo.CompleteElapsed(time.Now())
	if err != nil {
		s.logger.WithError(err).Error("Completion sweep failed")
		return
	}

	if completed > 0 {
		s.logger.WithField("count", completed).Info("Marked elapsed bookings completed")
	}
}

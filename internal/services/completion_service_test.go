package services

import (
	"fmt"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/islandtrails/experience-booking-backend/internal/database"
)

func newTestCompletionService(t *testing.T) (*CompletionService, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewCompletionService(database.NewBookingRepository(db), logger, "0 */10 * * * *")
	return service, mock
}

func TestCompletionSweep(t *testing.T) {
	t.Run("Completes Elapsed Confirmed Bookings", func(t *testing.T) {
		service, mock := newTestCompletionService(t)

		mock.ExpectExec(`UPDATE bookings SET status = 'completed'`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))

		service.sweep()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Sweep Survives Database Error", func(t *testing.T) {
		service, mock := newTestCompletionService(t)

		mock.ExpectExec(`UPDATE bookings SET status = 'completed'`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("connection refused"))

		service.sweep()

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompletionServiceLifecycle(t *testing.T) {
	service, _ := newTestCompletionService(t)

	require.NoError(t, service.Start())
	service.Stop()
}

func TestCompletionServiceRejectsBadSpec(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewCompletionService(database.NewBookingRepository(db), logger, "not a cron spec")
	assert.Error(t, service.Start())
}

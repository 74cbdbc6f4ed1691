package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/islandtrails/experience-booking-backend/internal/models"
)

// ExperienceRepository reads the catalog entries bookings refer to. The
// catalog service owns writes; only the price update used by admin tooling
// lives here.
type ExperienceRepository struct {
	db DB
}

// NewExperienceRepository creates a new ExperienceRepository
func NewExperienceRepository(db DB) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

// GetByID retrieves an experience by ID
func (r *ExperienceRepository) GetByID(experienceID uuid.UUID) (*models.Experience, error) {
	query := `
		SELECT id, host_id, title, price_per_guest, duration_minutes,
		       created_at, updated_at
		FROM experiences
		WHERE id = $1
	`

	var experience models.Experience
	err := r.db.Get(&experience, query, experienceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrExperienceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experience: %w", err)
	}

	return &experience, nil
}

// UpdatePrice changes the per-guest price of an experience. Existing
// bookings keep the total they were priced at when created.
func (r *ExperienceRepository) UpdatePrice(experienceID uuid.UUID, pricePerGuest float64) error {
	query := `
		UPDATE experiences
		SET price_per_guest = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, experienceID, pricePerGuest)
	if err != nil {
		return fmt.Errorf("failed to update experience price: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrExperienceNotFound
	}

	return nil
}

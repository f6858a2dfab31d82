package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/beauty-booking-api/internal/models"
)

const settingsColumns = `provider_id, min_advance_booking_hours, max_advance_booking_days, prep_minutes, cleanup_minutes,
	between_appointments_minutes, slot_granularity_minutes, enable_prayer_breaks, prayer_flexibility_minutes,
	auto_adjust_prayer_times, auto_switch_ramadan_schedule, allow_instant_booking, created_at, updated_at`

// AvailabilitySettingsRepository persists the per-provider availability row.
type AvailabilitySettingsRepository struct {
	db *sqlx.DB
}

// NewAvailabilitySettingsRepository constructs the repository.
func NewAvailabilitySettingsRepository(db *sqlx.DB) *AvailabilitySettingsRepository {
	return &AvailabilitySettingsRepository{db: db}
}

// FindByProvider returns the settings row or sql.ErrNoRows.
func (r *AvailabilitySettingsRepository) FindByProvider(ctx context.Context, providerID string) (*models.AvailabilitySettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM availability_settings WHERE provider_id = $1 LIMIT 1`
	var settings models.AvailabilitySettings
	if err := r.db.GetContext(ctx, &settings, query, providerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find availability settings: %w", err)
	}
	return &settings, nil
}

// CreateIfMissing inserts the given row unless one already exists for the provider.
// Concurrent callers race harmlessly; the first insert wins.
func (r *AvailabilitySettingsRepository) CreateIfMissing(ctx context.Context, settings *models.AvailabilitySettings) error {
	if settings == nil || settings.ProviderID == "" {
		return fmt.Errorf("availability settings require provider_id")
	}
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	const query = `INSERT INTO availability_settings (` + settingsColumns + `)
	VALUES (:provider_id, :min_advance_booking_hours, :max_advance_booking_days, :prep_minutes, :cleanup_minutes,
		:between_appointments_minutes, :slot_granularity_minutes, :enable_prayer_breaks, :prayer_flexibility_minutes,
		:auto_adjust_prayer_times, :auto_switch_ramadan_schedule, :allow_instant_booking, :created_at, :updated_at)
	ON CONFLICT (provider_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("create availability settings: %w", err)
	}
	return nil
}

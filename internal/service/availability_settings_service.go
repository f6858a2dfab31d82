package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/models"
)

type availabilitySettingsStore interface {
	FindByProvider(ctx context.Context, providerID string) (*models.AvailabilitySettings, error)
	CreateIfMissing(ctx context.Context, settings *models.AvailabilitySettings) error
}

// AvailabilitySettingsService returns provider settings, creating the default row on first use.
type AvailabilitySettingsService struct {
	store     availabilitySettingsStore
	providers providerReader
	logger    *zap.Logger
}

// NewAvailabilitySettingsService constructs the service. providers may be nil, in which case
// defaults are created without checking the provider exists.
func NewAvailabilitySettingsService(store availabilitySettingsStore, providers providerReader, logger *zap.Logger) *AvailabilitySettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilitySettingsService{store: store, providers: providers, logger: logger}
}

// Get returns the provider's settings.
func (s *AvailabilitySettingsService) Get(ctx context.Context, providerID string) (*models.AvailabilitySettings, error) {
	settings, err := s.store.FindByProvider(ctx, providerID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError(err, "failed to load availability settings")
	}

	if s.providers != nil {
		if _, err := loadProvider(ctx, s.providers, providerID); err != nil {
			return nil, err
		}
	}
	defaults := models.DefaultAvailabilitySettings(providerID)
	if err := s.store.CreateIfMissing(ctx, &defaults); err != nil {
		return nil, storeError(err, "failed to create availability settings")
	}
	s.logger.Info("created default availability settings", zap.String("provider_id", providerID))

	// A concurrent first request may have won the insert; read back whatever is stored.
	settings, err = s.store.FindByProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &defaults, nil
		}
		return nil, storeError(err, "failed to load availability settings")
	}
	return settings, nil
}

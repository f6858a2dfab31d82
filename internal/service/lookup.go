package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
)

type providerReader interface {
	FindByID(ctx context.Context, id string) (*models.Provider, error)
}

type serviceReader interface {
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

type settingsProvider interface {
	Get(ctx context.Context, providerID string) (*models.AvailabilitySettings, error)
}

func storeError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, message)
}

func loadProvider(ctx context.Context, reader providerReader, id string) (*models.Provider, error) {
	provider, err := reader.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, storeError(err, "failed to load provider")
	}
	return provider, nil
}

func loadActiveProvider(ctx context.Context, reader providerReader, id string) (*models.Provider, error) {
	provider, err := loadProvider(ctx, reader, id)
	if err != nil {
		return nil, err
	}
	if !provider.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "provider is not accepting bookings")
	}
	return provider, nil
}

// loadBookableService returns the service when it exists, is active and belongs to the provider.
func loadBookableService(ctx context.Context, reader serviceReader, providerID, serviceID string) (*models.Service, error) {
	svc, err := reader.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "service not found")
		}
		return nil, storeError(err, "failed to load service")
	}
	if svc.ProviderID != providerID {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("service %s is not offered by provider %s", serviceID, providerID))
	}
	if !svc.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service is not active")
	}
	if svc.DurationMinutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service has no duration")
	}
	return svc, nil
}

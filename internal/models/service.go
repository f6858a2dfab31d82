package models

import (
	"time"

	"github.com/noah-isme/beauty-booking-api/pkg/money"
)

// Service is a bookable offering owned by a provider.
type Service struct {
	ID              string       `db:"id" json:"id"`
	ProviderID      string       `db:"provider_id" json:"provider_id"`
	Name            string       `db:"name" json:"name"`
	DurationMinutes int          `db:"duration_minutes" json:"duration_minutes"`
	Price           money.Amount `db:"price_minor" json:"price"`
	Active          bool         `db:"active" json:"active"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

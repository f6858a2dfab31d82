package models

import (
	"strings"
	"time"
)

// GenderPreference declares which customers a provider serves.
type GenderPreference string

const (
	GenderAll   GenderPreference = "all"
	GenderWomen GenderPreference = "women"
	GenderMen   GenderPreference = "men"
)

// ParseGenderPreference normalises a filter value; empty means no filter.
func ParseGenderPreference(raw string) (GenderPreference, bool) {
	switch GenderPreference(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", true
	case GenderAll:
		return GenderAll, true
	case GenderWomen, "female", "f":
		return GenderWomen, true
	case GenderMen, "male", "m":
		return GenderMen, true
	default:
		return "", false
	}
}

// Provider is a salon or freelancer accepting bookings.
type Provider struct {
	ID               string           `db:"id" json:"id"`
	BusinessName     string           `db:"business_name" json:"business_name"`
	City             string           `db:"city" json:"city"`
	Timezone         string           `db:"timezone" json:"timezone"`
	GenderPreference GenderPreference `db:"gender_preference" json:"gender_preference"`
	Active           bool             `db:"active" json:"active"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// Location resolves the provider timezone, falling back when unset or unknown.
func (p Provider) Location(fallback *time.Location) *time.Location {
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}

// Serves reports whether a customer filter matches the provider's clientele.
func (p Provider) Serves(filter GenderPreference) bool {
	if filter == "" || filter == GenderAll {
		return true
	}
	switch p.GenderPreference {
	case "", GenderAll:
		return true
	default:
		return p.GenderPreference == filter
	}
}

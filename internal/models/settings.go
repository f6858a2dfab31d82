package models

import "time"

// AvailabilitySettings is the single per-provider row tuning slot generation.
type AvailabilitySettings struct {
	ProviderID                 string    `db:"provider_id" json:"provider_id"`
	MinAdvanceBookingHours     int       `db:"min_advance_booking_hours" json:"min_advance_booking_hours"`
	MaxAdvanceBookingDays      int       `db:"max_advance_booking_days" json:"max_advance_booking_days"`
	PrepMinutes                int       `db:"prep_minutes" json:"prep_minutes"`
	CleanupMinutes             int       `db:"cleanup_minutes" json:"cleanup_minutes"`
	BetweenAppointmentsMinutes int       `db:"between_appointments_minutes" json:"between_appointments_minutes"`
	SlotGranularityMinutes     int       `db:"slot_granularity_minutes" json:"slot_granularity_minutes"`
	EnablePrayerBreaks         bool      `db:"enable_prayer_breaks" json:"enable_prayer_breaks"`
	PrayerFlexibilityMinutes   int       `db:"prayer_flexibility_minutes" json:"prayer_flexibility_minutes"`
	AutoAdjustPrayerTimes      bool      `db:"auto_adjust_prayer_times" json:"auto_adjust_prayer_times"`
	AutoSwitchRamadanSchedule  bool      `db:"auto_switch_ramadan_schedule" json:"auto_switch_ramadan_schedule"`
	AllowInstantBooking        bool      `db:"allow_instant_booking" json:"allow_instant_booking"`
	CreatedAt                  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultAvailabilitySettings returns the row created for providers that never configured one.
func DefaultAvailabilitySettings(providerID string) AvailabilitySettings {
	return AvailabilitySettings{
		ProviderID:                 providerID,
		MinAdvanceBookingHours:     2,
		MaxAdvanceBookingDays:      30,
		PrepMinutes:                0,
		CleanupMinutes:             10,
		BetweenAppointmentsMinutes: 5,
		SlotGranularityMinutes:     0,
		EnablePrayerBreaks:         true,
		PrayerFlexibilityMinutes:   15,
		AutoAdjustPrayerTimes:      true,
		AutoSwitchRamadanSchedule:  true,
		AllowInstantBooking:        false,
	}
}

// PaddingMinutes is the gap kept on both sides of an existing booking.
func (s AvailabilitySettings) PaddingMinutes() int {
	return s.PrepMinutes + s.CleanupMinutes + s.BetweenAppointmentsMinutes
}

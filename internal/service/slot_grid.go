package service

import (
	"time"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

// occupiedIntervals pads every occupying booking on both sides.
func occupiedIntervals(bookings []models.Booking, padding int) []timerange.Range {
	out := make([]timerange.Range, 0, len(bookings))
	for _, b := range bookings {
		if !b.Status.Occupies() {
			continue
		}
		out = append(out, b.Range().Expand(padding, padding))
	}
	return timerange.Sorted(out)
}

// freeIntervals is workable time minus blackouts minus padded bookings.
func freeIntervals(workable, blackouts []timerange.Range, bookings []models.Booking, padding int) []timerange.Range {
	cuts := make([]timerange.Range, 0, len(blackouts)+len(bookings))
	cuts = append(cuts, blackouts...)
	cuts = append(cuts, occupiedIntervals(bookings, padding)...)
	return timerange.Subtract(workable, cuts)
}

// walkSlots steps through each free interval from its start and keeps every window of
// duration minutes that fits inside the interval and starts no earlier than earliest.
// Steps shorter than duration are widened to it, so the returned windows never overlap.
func walkSlots(free []timerange.Range, duration, step int, earliest timerange.Clock) []timerange.Range {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if step < duration {
		step = duration
	}
	var slots []timerange.Range
	for _, interval := range free {
		for start := interval.Start; start.Add(duration) <= interval.End; start = start.Add(step) {
			if start < earliest {
				continue
			}
			slots = append(slots, timerange.New(start, start.Add(duration)))
		}
	}
	return slots
}

// earliestStart returns the first clock on day a booking may start at, given the advance
// booking window. ok is false when day is outside [today, today+maxAdvanceBookingDays] or
// the minimum advance pushes past the end of day.
func earliestStart(now, day time.Time, settings *models.AvailabilitySettings, instant bool) (timerange.Clock, bool) {
	now = now.In(day.Location())
	today := timerange.DateOf(now)
	maxDays := settings.MaxAdvanceBookingDays
	if maxDays < 0 {
		maxDays = 0
	}
	if !timerange.DateWithin(day, today, today.AddDate(0, 0, maxDays)) {
		return 0, false
	}

	advance := time.Duration(settings.MinAdvanceBookingHours) * time.Hour
	if instant && settings.AllowInstantBooking {
		advance = 0
	}
	earliest := now.Add(advance)
	earliestDay := timerange.DateOf(earliest)
	target := timerange.DateOf(day)
	switch {
	case earliestDay.After(target):
		return 0, false
	case earliestDay.Before(target):
		return timerange.Midnight, true
	}

	clock := timerange.ClockOf(earliest)
	if earliest.Second() > 0 || earliest.Nanosecond() > 0 {
		clock = clock.Add(1)
	}
	return clock, true
}

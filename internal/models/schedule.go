package models

import (
	"time"

	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

// WorkingSchedule groups the weekly shifts of a provider. Only one is active at a time.
type WorkingSchedule struct {
	ID         string    `db:"id" json:"id"`
	ProviderID string    `db:"provider_id" json:"provider_id"`
	Name       string    `db:"name" json:"name"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// WorkShift is a recurring weekly working window. DayOfWeek follows time.Weekday (0 = Sunday).
type WorkShift struct {
	ID         string          `db:"id" json:"id"`
	ScheduleID string          `db:"schedule_id" json:"schedule_id"`
	DayOfWeek  int             `db:"day_of_week" json:"day_of_week"`
	StartTime  timerange.Clock `db:"start_time" json:"start_time"`
	EndTime    timerange.Clock `db:"end_time" json:"end_time"`
	Label      string          `db:"label" json:"label"`
}

// Range returns the shift window. An end of 00:00 closes the day at 24:00; any other end at or
// before the start yields an invalid range.
func (s WorkShift) Range() timerange.Range {
	return timerange.New(s.StartTime, s.EndTime.AsEnd())
}

// TimeOff blocks whole days in [StartDate, EndDate].
type TimeOff struct {
	ID         string    `db:"id" json:"id"`
	ProviderID string    `db:"provider_id" json:"provider_id"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	Reason     string    `db:"reason" json:"reason"`
}

// Covers reports whether the calendar date of day falls inside the time-off.
func (t TimeOff) Covers(day time.Time) bool {
	return timerange.DateWithin(day, t.StartDate, t.EndDate)
}

// RamadanSchedule replaces weekly shifts while Ramadan is in progress.
type RamadanSchedule struct {
	ID                string           `db:"id" json:"id"`
	ProviderID        string           `db:"provider_id" json:"provider_id"`
	Year              int              `db:"year" json:"year"`
	TemplateType      string           `db:"template_type" json:"template_type"`
	EarlyStart        timerange.Clock  `db:"early_start" json:"early_start"`
	EarlyEnd          timerange.Clock  `db:"early_end" json:"early_end"`
	LateStart         *timerange.Clock `db:"late_start" json:"late_start,omitempty"`
	LateEnd           *timerange.Clock `db:"late_end" json:"late_end,omitempty"`
	IftarBreakMinutes int              `db:"iftar_break_minutes" json:"iftar_break_minutes"`
	AutoAdjustMaghrib bool             `db:"auto_adjust_maghrib" json:"auto_adjust_maghrib"`
}

// Windows returns the early window and, when configured, the late window.
// A late window ending at 00:00 ends at 24:00.
func (r RamadanSchedule) Windows() []timerange.Range {
	windows := []timerange.Range{timerange.New(r.EarlyStart, r.EarlyEnd)}
	if r.LateStart != nil && r.LateEnd != nil {
		windows = append(windows, timerange.New(*r.LateStart, r.LateEnd.AsEnd()))
	}
	return windows
}

// RamadanRange is the Gregorian span of one Ramadan, inclusive on both ends. Year is the
// Gregorian year the span starts in and keys the provider's Ramadan schedule.
type RamadanRange struct {
	Year  int       `json:"year"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether day falls within the range.
func (r RamadanRange) Contains(day time.Time) bool {
	return timerange.DateWithin(day, r.Start, r.End)
}

// RamadanContaining returns the span among ranges that contains day.
func RamadanContaining(ranges []RamadanRange, day time.Time) (RamadanRange, bool) {
	for _, rng := range ranges {
		if rng.Contains(day) {
			return rng, true
		}
	}
	return RamadanRange{}, false
}

// ScheduleSource names where a day's workable intervals came from.
type ScheduleSource string

const (
	SourceWeekly  ScheduleSource = "weekly"
	SourceRamadan ScheduleSource = "ramadan"
	SourceTimeOff ScheduleSource = "time_off"
)

// WorkableDay is the resolved working picture for one provider and date.
type WorkableDay struct {
	Date      time.Time         `json:"date"`
	Source    ScheduleSource    `json:"source"`
	Intervals []timerange.Range `json:"intervals"`
	Ramadan   *RamadanSchedule  `json:"ramadan,omitempty"`
	Degraded  []string          `json:"degraded,omitempty"`
}

package models

import (
	"strings"

	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

// PrayerName identifies one of the five daily prayers.
type PrayerName string

const (
	PrayerFajr    PrayerName = "fajr"
	PrayerDhuhr   PrayerName = "dhuhr"
	PrayerAsr     PrayerName = "asr"
	PrayerMaghrib PrayerName = "maghrib"
	PrayerIsha    PrayerName = "isha"
)

// PrayerTimes holds one city's prayer schedule for a date.
type PrayerTimes struct {
	City    string          `json:"city"`
	Date    string          `json:"date"`
	Fajr    timerange.Clock `json:"fajr"`
	Dhuhr   timerange.Clock `json:"dhuhr"`
	Asr     timerange.Clock `json:"asr"`
	Maghrib timerange.Clock `json:"maghrib"`
	Isha    timerange.Clock `json:"isha"`
}

// At returns the time of the named prayer.
func (p PrayerTimes) At(name PrayerName) (timerange.Clock, bool) {
	switch PrayerName(strings.ToLower(string(name))) {
	case PrayerFajr:
		return p.Fajr, true
	case PrayerDhuhr:
		return p.Dhuhr, true
	case PrayerAsr:
		return p.Asr, true
	case PrayerMaghrib:
		return p.Maghrib, true
	case PrayerIsha:
		return p.Isha, true
	default:
		return 0, false
	}
}

// BlackoutKind tells which rule produced a blackout.
type BlackoutKind string

const (
	BlackoutPrayer BlackoutKind = "prayer"
	BlackoutIftar  BlackoutKind = "iftar"
)

// Blackout is a window in which no booking may start or run.
type Blackout struct {
	Kind  BlackoutKind    `json:"kind"`
	Label string          `json:"label"`
	At    timerange.Clock `json:"at"`
	Start timerange.Clock `json:"start"`
	End   timerange.Clock `json:"end"`
}

// Range returns the blackout window.
func (b Blackout) Range() timerange.Range {
	return timerange.New(b.Start, b.End)
}

// PrayerBreaks is the blackout set for a provider and date.
type PrayerBreaks struct {
	City      string     `json:"city"`
	Date      string     `json:"date"`
	Blackouts []Blackout `json:"blackouts"`
	Degraded  bool       `json:"degraded"`
}

// Ranges returns the blackout windows in order.
func (p PrayerBreaks) Ranges() []timerange.Range {
	out := make([]timerange.Range, 0, len(p.Blackouts))
	for _, b := range p.Blackouts {
		out = append(out, b.Range())
	}
	return out
}

// Degradation labels surfaced to callers.
const (
	DegradedPrayerTimes     = "prayer_times"
	DegradedRamadanCalendar = "ramadan_calendar"
)

package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

type scheduleReader interface {
	ListActiveShifts(ctx context.Context, providerID string) ([]models.WorkShift, error)
	ListTimeOff(ctx context.Context, exec sqlx.QueryerContext, providerID string, from, to time.Time) ([]models.TimeOff, error)
	FindRamadanSchedule(ctx context.Context, providerID string, year int) (*models.RamadanSchedule, error)
}

type ramadanCalendar interface {
	RamadanRanges(ctx context.Context, year int) ([]models.RamadanRange, error)
}

// TemporalRulesServiceParams groups the collaborators of TemporalRulesService.
type TemporalRulesServiceParams struct {
	Providers       providerReader
	Settings        settingsProvider
	Schedules       scheduleReader
	Calendar        ramadanCalendar
	Metrics         *MetricsService
	Logger          *zap.Logger
	DefaultLocation *time.Location
}

// TemporalRulesService resolves the workable intervals of a provider on a date.
type TemporalRulesService struct {
	providers  providerReader
	settings   settingsProvider
	schedules  scheduleReader
	calendar   ramadanCalendar
	metrics    *MetricsService
	logger     *zap.Logger
	defaultLoc *time.Location
}

// NewTemporalRulesService constructs the resolver.
func NewTemporalRulesService(params TemporalRulesServiceParams) *TemporalRulesService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.DefaultLocation
	if loc == nil {
		loc = time.UTC
	}
	return &TemporalRulesService{
		providers:  params.Providers,
		settings:   params.Settings,
		schedules:  params.Schedules,
		calendar:   params.Calendar,
		metrics:    params.Metrics,
		logger:     logger,
		defaultLoc: loc,
	}
}

// ResolveWorkableIntervals loads the provider and resolves its workable intervals for a YYYY-MM-DD date.
func (s *TemporalRulesService) ResolveWorkableIntervals(ctx context.Context, providerID, date string) (*models.WorkableDay, error) {
	provider, err := loadProvider(ctx, s.providers, providerID)
	if err != nil {
		return nil, err
	}
	day, err := timerange.ParseDate(date, provider.Location(s.defaultLoc))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	settings, err := s.settings.Get(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, provider, settings, day)
}

// Resolve computes the workable intervals for an already loaded provider.
//
// A time-off covering the date blocks the whole day. Otherwise an active Ramadan schedule
// replaces the weekly shifts of that weekday. The result is sorted; overlapping intervals are
// a configuration error.
func (s *TemporalRulesService) Resolve(ctx context.Context, provider *models.Provider, settings *models.AvailabilitySettings, date time.Time) (*models.WorkableDay, error) {
	result := &models.WorkableDay{Date: date, Source: models.SourceWeekly, Intervals: []timerange.Range{}}

	timeOff, err := s.schedules.ListTimeOff(ctx, nil, provider.ID, date, date)
	if err != nil {
		return nil, storeError(err, "failed to load time off")
	}
	for _, off := range timeOff {
		if off.Covers(date) {
			result.Source = models.SourceTimeOff
			return result, nil
		}
	}

	var intervals []timerange.Range
	if settings == nil || settings.AutoSwitchRamadanSchedule {
		ramadan, degraded, err := s.ActiveRamadan(ctx, provider.ID, date)
		if err != nil {
			return nil, err
		}
		if degraded {
			result.Degraded = append(result.Degraded, models.DegradedRamadanCalendar)
		}
		if ramadan != nil {
			result.Source = models.SourceRamadan
			result.Ramadan = ramadan
			intervals = ramadan.Windows()
		}
	}

	if result.Source == models.SourceWeekly {
		shifts, err := s.schedules.ListActiveShifts(ctx, provider.ID)
		if err != nil {
			return nil, storeError(err, "failed to load working shifts")
		}
		weekday := int(date.Weekday())
		for _, shift := range shifts {
			if shift.DayOfWeek == weekday {
				intervals = append(intervals, shift.Range())
			}
		}
	}

	for _, interval := range intervals {
		if !interval.Valid() {
			s.logger.Error("invalid working interval",
				zap.String("provider_id", provider.ID),
				zap.String("interval", interval.String()),
			)
			return nil, appErrors.Clone(appErrors.ErrValidation, "provider has an invalid working interval "+interval.String())
		}
	}

	intervals = timerange.Sorted(intervals)
	if a, b, overlap := timerange.FirstOverlap(intervals); overlap {
		s.logger.Error("overlapping working intervals",
			zap.String("provider_id", provider.ID),
			zap.String("date", date.Format(timerange.DateLayout)),
			zap.String("first", a.String()),
			zap.String("second", b.String()),
		)
		return nil, appErrors.Clone(appErrors.ErrValidation, "provider has overlapping working intervals "+a.String()+" and "+b.String())
	}
	if intervals != nil {
		result.Intervals = intervals
	}
	return result, nil
}

// ActiveRamadan returns the provider's Ramadan schedule when date is inside Ramadan.
// A calendar failure fails open to the weekly schedule and reports degraded.
func (s *TemporalRulesService) ActiveRamadan(ctx context.Context, providerID string, date time.Time) (*models.RamadanSchedule, bool, error) {
	if s.calendar == nil {
		return nil, false, nil
	}
	ranges, err := s.calendar.RamadanRanges(ctx, date.Year())
	if err != nil {
		s.logger.Warn("ramadan calendar lookup failed",
			zap.String("provider_id", providerID),
			zap.Int("year", date.Year()),
			zap.Bool("degraded", true),
			zap.Error(err),
		)
		s.metrics.RecordDegraded(models.DegradedRamadanCalendar)
		return nil, true, nil
	}
	rng, ok := models.RamadanContaining(ranges, date)
	if !ok {
		return nil, false, nil
	}

	schedule, err := s.schedules.FindRamadanSchedule(ctx, providerID, rng.Year)
	if err != nil {
		return nil, false, storeError(err, "failed to load ramadan schedule")
	}
	return schedule, false, nil
}

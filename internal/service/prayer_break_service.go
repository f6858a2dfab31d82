package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

const defaultPrayerDurationMinutes = 30

var defaultRelevantPrayers = []models.PrayerName{models.PrayerDhuhr, models.PrayerAsr, models.PrayerMaghrib}

type prayerTimesReader interface {
	PrayerTimes(ctx context.Context, city string, date time.Time) (*models.PrayerTimes, error)
}

type ramadanResolver interface {
	ActiveRamadan(ctx context.Context, providerID string, date time.Time) (*models.RamadanSchedule, bool, error)
}

// PrayerBreakConfig shapes the blackout windows.
type PrayerBreakConfig struct {
	Relevant        []models.PrayerName
	DurationMinutes int
}

// PrayerBreakServiceParams groups the collaborators of PrayerBreakService.
type PrayerBreakServiceParams struct {
	Providers       providerReader
	Settings        settingsProvider
	Ramadan         ramadanResolver
	Prayers         prayerTimesReader
	Metrics         *MetricsService
	Logger          *zap.Logger
	DefaultLocation *time.Location
}

// PrayerBreakService produces the prayer blackout windows of a provider day.
type PrayerBreakService struct {
	providers  providerReader
	settings   settingsProvider
	ramadan    ramadanResolver
	prayers    prayerTimesReader
	metrics    *MetricsService
	logger     *zap.Logger
	defaultLoc *time.Location
	cfg        PrayerBreakConfig
}

// NewPrayerBreakService constructs the calculator.
func NewPrayerBreakService(params PrayerBreakServiceParams, cfg PrayerBreakConfig) *PrayerBreakService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.DefaultLocation
	if loc == nil {
		loc = time.UTC
	}
	if len(cfg.Relevant) == 0 {
		cfg.Relevant = defaultRelevantPrayers
	}
	if cfg.DurationMinutes <= 0 {
		cfg.DurationMinutes = defaultPrayerDurationMinutes
	}
	return &PrayerBreakService{
		providers:  params.Providers,
		settings:   params.Settings,
		ramadan:    params.Ramadan,
		prayers:    params.Prayers,
		metrics:    params.Metrics,
		logger:     logger,
		defaultLoc: loc,
		cfg:        cfg,
	}
}

// RelevantPrayers converts configured names, dropping unknown ones.
func RelevantPrayers(names []string) []models.PrayerName {
	var sample models.PrayerTimes
	out := make([]models.PrayerName, 0, len(names))
	for _, name := range names {
		prayer := models.PrayerName(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := sample.At(prayer); ok {
			out = append(out, prayer)
		}
	}
	return out
}

// CalculatePrayerBreaks loads the provider day and returns its blackouts. city defaults to the provider city.
func (s *PrayerBreakService) CalculatePrayerBreaks(ctx context.Context, providerID, date, city string) (*models.PrayerBreaks, error) {
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
	if strings.TrimSpace(city) == "" {
		city = provider.City
	}

	var ramadan *models.RamadanSchedule
	if settings.EnablePrayerBreaks && settings.AutoSwitchRamadanSchedule && s.ramadan != nil {
		ramadan, _, err = s.ramadan.ActiveRamadan(ctx, provider.ID, day)
		if err != nil {
			return nil, err
		}
	}
	return s.Calculate(ctx, settings, city, day, ramadan), nil
}

// Calculate builds the blackouts for an already resolved day. It never fails: when prayer
// times cannot be obtained the result is empty and marked degraded.
func (s *PrayerBreakService) Calculate(ctx context.Context, settings *models.AvailabilitySettings, city string, date time.Time, ramadan *models.RamadanSchedule) *models.PrayerBreaks {
	result := &models.PrayerBreaks{
		City:      city,
		Date:      date.Format(timerange.DateLayout),
		Blackouts: []models.Blackout{},
	}
	if settings == nil || !settings.EnablePrayerBreaks {
		return result
	}

	times, err := s.lookup(ctx, city, date)
	if err != nil {
		s.logger.Warn("prayer times unavailable, skipping prayer breaks",
			zap.String("city", city),
			zap.String("date", result.Date),
			zap.Bool("degraded", true),
			zap.Error(err),
		)
		s.metrics.RecordDegraded(models.DegradedPrayerTimes)
		result.Degraded = true
		return result
	}

	flex := settings.PrayerFlexibilityMinutes
	if flex < 0 {
		flex = 0
	}
	for _, name := range s.cfg.Relevant {
		at, ok := times.At(name)
		if !ok {
			continue
		}
		window := timerange.New(at, at.Add(s.cfg.DurationMinutes)).Expand(flex, flex)
		result.Blackouts = append(result.Blackouts, models.Blackout{
			Kind:  models.BlackoutPrayer,
			Label: string(name),
			At:    at,
			Start: window.Start,
			End:   window.End,
		})
	}

	if ramadan != nil && ramadan.AutoAdjustMaghrib && ramadan.IftarBreakMinutes > 0 {
		window := timerange.New(times.Maghrib, times.Maghrib.Add(ramadan.IftarBreakMinutes))
		if window.Valid() {
			result.Blackouts = append(result.Blackouts, models.Blackout{
				Kind:  models.BlackoutIftar,
				Label: "iftar",
				At:    times.Maghrib,
				Start: window.Start,
				End:   window.End,
			})
		}
	}

	sortBlackouts(result.Blackouts)
	return result
}

func (s *PrayerBreakService) lookup(ctx context.Context, city string, date time.Time) (*models.PrayerTimes, error) {
	if s.prayers == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "no prayer time source configured")
	}
	if strings.TrimSpace(city) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "provider has no city")
	}
	return s.prayers.PrayerTimes(ctx, city, date)
}

func sortBlackouts(blackouts []models.Blackout) {
	sort.SliceStable(blackouts, func(i, j int) bool {
		if blackouts[i].Start != blackouts[j].Start {
			return blackouts[i].Start < blackouts[j].Start
		}
		return blackouts[i].End < blackouts[j].End
	})
}

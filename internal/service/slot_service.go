package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/dto"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

type occupyingBookingReader interface {
	ListOccupying(ctx context.Context, providerID string, date time.Time) ([]models.Booking, error)
}

type workableResolver interface {
	Resolve(ctx context.Context, provider *models.Provider, settings *models.AvailabilitySettings, date time.Time) (*models.WorkableDay, error)
}

type breakCalculator interface {
	Calculate(ctx context.Context, settings *models.AvailabilitySettings, city string, date time.Time, ramadan *models.RamadanSchedule) *models.PrayerBreaks
}

// dayPlan is the resolved working picture of one provider day before bookings are applied.
type dayPlan struct {
	workable *models.WorkableDay
	breaks   *models.PrayerBreaks
}

func planDay(ctx context.Context, rules workableResolver, breaks breakCalculator, provider *models.Provider, settings *models.AvailabilitySettings, city string, day time.Time) (*dayPlan, error) {
	workable, err := rules.Resolve(ctx, provider, settings, day)
	if err != nil {
		return nil, err
	}
	plan := &dayPlan{workable: workable}
	if workable.Source == models.SourceTimeOff || len(workable.Intervals) == 0 {
		plan.breaks = &models.PrayerBreaks{City: city, Date: day.Format(timerange.DateLayout), Blackouts: []models.Blackout{}}
		return plan, nil
	}
	plan.breaks = breaks.Calculate(ctx, settings, city, day, workable.Ramadan)
	return plan, nil
}

// bookable is workable time minus blackouts.
func (p *dayPlan) bookable() []timerange.Range {
	return timerange.Subtract(p.workable.Intervals, p.breaks.Ranges())
}

func (p *dayPlan) degraded() []string {
	out := append([]string(nil), p.workable.Degraded...)
	if p.breaks.Degraded {
		out = append(out, models.DegradedPrayerTimes)
	}
	return out
}

// SlotServiceParams groups the collaborators of SlotService.
type SlotServiceParams struct {
	Providers providerReader
	Services  serviceReader
	Settings  settingsProvider
	Rules     workableResolver
	Breaks    breakCalculator
	Bookings  occupyingBookingReader
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// SlotServiceConfig holds deployment defaults for slot generation.
type SlotServiceConfig struct {
	GranularityMinutes int
	DefaultLocation    *time.Location
}

// SlotService builds the bookable slot grid of a provider day.
type SlotService struct {
	providers providerReader
	services  serviceReader
	settings  settingsProvider
	rules     workableResolver
	breaks    breakCalculator
	bookings  occupyingBookingReader
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       SlotServiceConfig
	now       func() time.Time
}

// NewSlotService constructs the slot generator.
func NewSlotService(params SlotServiceParams, cfg SlotServiceConfig) *SlotService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	return &SlotService{
		providers: params.Providers,
		services:  params.Services,
		settings:  params.Settings,
		rules:     params.Rules,
		breaks:    params.Breaks,
		bookings:  params.Bookings,
		validator: validate,
		metrics:   params.Metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *SlotService) clock(override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	return s.now()
}

// granularity picks the provider step, then the deployment default, then the service duration.
// The step never drops below the duration so consecutive slots do not overlap.
func (s *SlotService) granularity(settings *models.AvailabilitySettings, svc *models.Service) int {
	step := svc.DurationMinutes
	switch {
	case settings.SlotGranularityMinutes > 0:
		step = settings.SlotGranularityMinutes
	case s.cfg.GranularityMinutes > 0:
		step = s.cfg.GranularityMinutes
	}
	if step < svc.DurationMinutes {
		step = svc.DurationMinutes
	}
	return step
}

// GenerateSlots lists the bookable start times of a service on a date in ascending order.
// An empty list is a valid answer.
func (s *SlotService) GenerateSlots(ctx context.Context, query dto.SlotQuery) (*dto.SlotsResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot query")
	}
	started := time.Now()
	defer func() { s.metrics.ObserveSlotGeneration(time.Since(started)) }()

	provider, err := loadActiveProvider(ctx, s.providers, query.ProviderID)
	if err != nil {
		return nil, err
	}
	svc, err := loadBookableService(ctx, s.services, provider.ID, query.ServiceID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	loc := provider.Location(s.cfg.DefaultLocation)
	day, err := timerange.ParseDate(query.Date, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}

	step := s.granularity(settings, svc)
	resp := &dto.SlotsResponse{
		ProviderID:         provider.ID,
		ServiceID:          svc.ID,
		Date:               day.Format(timerange.DateLayout),
		Timezone:           loc.String(),
		DurationMinutes:    svc.DurationMinutes,
		GranularityMinutes: step,
		Slots:              []dto.SlotView{},
	}

	filter, ok := models.ParseGenderPreference(query.Gender)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown gender filter")
	}
	if !provider.Serves(filter) {
		return resp, nil
	}

	earliest, ok := earliestStart(s.clock(query.Now), day, settings, query.IncludeInstant)
	if !ok {
		return resp, nil
	}

	plan, err := planDay(ctx, s.rules, s.breaks, provider, settings, provider.City, day)
	if err != nil {
		return nil, err
	}
	resp.Degraded = plan.degraded()
	if len(plan.workable.Intervals) == 0 {
		return resp, nil
	}

	bookings, err := s.occupying(ctx, provider.ID, day)
	if err != nil {
		return nil, err
	}

	free := freeIntervals(plan.workable.Intervals, plan.breaks.Ranges(), bookings, settings.PaddingMinutes())
	for _, slot := range walkSlots(free, svc.DurationMinutes, step, earliest) {
		resp.Slots = append(resp.Slots, dto.SlotView{StartTime: slot.Start, EndTime: slot.End})
	}

	s.logger.Debug("generated slots",
		zap.String("provider_id", provider.ID),
		zap.String("service_id", svc.ID),
		zap.String("date", resp.Date),
		zap.Int("slots", len(resp.Slots)),
	)
	return resp, nil
}

// DayAvailability explains a provider day: workable intervals, blackouts, padded bookings and what is left.
func (s *SlotService) DayAvailability(ctx context.Context, query dto.DayQuery) (*dto.DayAvailabilityResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	provider, err := loadProvider(ctx, s.providers, query.ProviderID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	loc := provider.Location(s.cfg.DefaultLocation)
	day, err := timerange.ParseDate(query.Date, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	city := query.City
	if city == "" {
		city = provider.City
	}

	plan, err := planDay(ctx, s.rules, s.breaks, provider, settings, city, day)
	if err != nil {
		return nil, err
	}
	bookings, err := s.occupying(ctx, provider.ID, day)
	if err != nil {
		return nil, err
	}

	padding := settings.PaddingMinutes()
	occupied := occupiedIntervals(bookings, padding)
	free := freeIntervals(plan.workable.Intervals, plan.breaks.Ranges(), bookings, padding)
	return &dto.DayAvailabilityResponse{
		ProviderID: provider.ID,
		Date:       day.Format(timerange.DateLayout),
		Timezone:   loc.String(),
		Source:     plan.workable.Source,
		Workable:   plan.workable.Intervals,
		Blackouts:  plan.breaks.Blackouts,
		Occupied:   occupied,
		Free:       free,
		Degraded:   plan.degraded(),
	}, nil
}

func (s *SlotService) occupying(ctx context.Context, providerID string, day time.Time) ([]models.Booking, error) {
	start := time.Now()
	bookings, err := s.bookings.ListOccupying(ctx, providerID, day)
	s.metrics.ObserveDBQuery("bookings_occupying", time.Since(start))
	if err != nil {
		return nil, storeError(err, "failed to load bookings")
	}
	return bookings, nil
}

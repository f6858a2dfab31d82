package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/dto"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/internal/repository"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

type bookingAllocationStore interface {
	InsertIfFree(ctx context.Context, booking *models.Booking, guard repository.BookingGuard) error
}

type bookingEventEmitter interface {
	EmitBookingCreated(booking *models.Booking)
}

// BookingAllocatorServiceParams groups the collaborators of BookingAllocatorService.
type BookingAllocatorServiceParams struct {
	Providers providerReader
	Services  serviceReader
	Settings  settingsProvider
	Rules     workableResolver
	Breaks    breakCalculator
	Store     bookingAllocationStore
	Events    bookingEventEmitter
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// BookingAllocatorConfig tunes allocation.
type BookingAllocatorConfig struct {
	InitialStatus   models.BookingStatus
	MaxRetries      int
	RetryBackoff    time.Duration
	Timeout         time.Duration
	DefaultLocation *time.Location
}

// BookingAllocatorService reserves slots so that overlapping requests have exactly one winner.
type BookingAllocatorService struct {
	providers providerReader
	services  serviceReader
	settings  settingsProvider
	rules     workableResolver
	breaks    breakCalculator
	store     bookingAllocationStore
	events    bookingEventEmitter
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       BookingAllocatorConfig
	now       func() time.Time
}

// NewBookingAllocatorService constructs the allocator.
func NewBookingAllocatorService(params BookingAllocatorServiceParams, cfg BookingAllocatorConfig) *BookingAllocatorService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.InitialStatus.IsInitial() {
		cfg.InitialStatus = models.BookingPending
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries > 3 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 25 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	return &BookingAllocatorService{
		providers: params.Providers,
		services:  params.Services,
		settings:  params.Settings,
		rules:     params.Rules,
		breaks:    params.Breaks,
		store:     params.Store,
		events:    params.Events,
		validator: validate,
		metrics:   params.Metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Allocate validates the request and reserves the window atomically.
// A lost race returns ErrSlotTaken; giving up under contention returns ErrSlotBusy.
func (s *BookingAllocatorService) Allocate(ctx context.Context, req dto.AllocateBookingRequest) (*models.Booking, error) {
	started := time.Now()
	booking, err := s.allocate(ctx, req)
	s.metrics.RecordAllocation(allocationOutcome(err), time.Since(started))
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.EmitBookingCreated(booking)
	}
	return booking, nil
}

func (s *BookingAllocatorService) allocate(ctx context.Context, req dto.AllocateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	start, err := timerange.ParseClock(req.StartTime)
	if err != nil || start >= timerange.EndOfDay {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startTime must use HH:MM")
	}

	provider, err := loadActiveProvider(ctx, s.providers, req.ProviderID)
	if err != nil {
		return nil, err
	}
	svc, err := loadBookableService(ctx, s.services, provider.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	day, err := timerange.ParseDate(req.Date, provider.Location(s.cfg.DefaultLocation))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}

	now := s.now()
	if req.Now != nil {
		now = *req.Now
	}
	earliest, ok := earliestStart(now, day, settings, req.Instant)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is outside the booking window")
	}
	if start < earliest {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("bookings on %s must start at or after %s", req.Date, earliest))
	}

	candidate := timerange.New(start, start.Add(svc.DurationMinutes))
	if !candidate.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service does not fit before the end of the day")
	}

	plan, err := planDay(ctx, s.rules, s.breaks, provider, settings, provider.City, day)
	if err != nil {
		return nil, err
	}
	if !timerange.ContainedIn(candidate, plan.bookable()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requested time is outside working hours or inside a break")
	}

	fee, err := SplitFee(svc.Price)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service has no valid price")
	}

	booking := &models.Booking{
		ID:               uuid.NewString(),
		ProviderID:       provider.ID,
		ServiceID:        svc.ID,
		CustomerID:       req.CustomerID,
		BookingDate:      day,
		StartTime:        candidate.Start,
		EndTime:          candidate.End,
		Status:           s.cfg.InitialStatus,
		Amount:           fee.Amount,
		PlatformFee:      fee.PlatformFee,
		ProviderEarnings: fee.ProviderEarnings,
	}
	guard := allocationGuard(day, candidate, settings.PaddingMinutes())

	if err := s.insert(ctx, booking, guard); err != nil {
		return nil, err
	}
	s.logger.Info("booking allocated",
		zap.String("booking_id", booking.ID),
		zap.String("provider_id", booking.ProviderID),
		zap.String("date", booking.Date()),
		zap.String("window", candidate.String()),
	)
	return booking, nil
}

// allocationGuard re-checks the window against the state committed inside the transaction.
func allocationGuard(day time.Time, candidate timerange.Range, padding int) repository.BookingGuard {
	return func(snapshot models.AllocationSnapshot) error {
		if !snapshot.ProviderActive {
			return appErrors.Clone(appErrors.ErrValidation, "provider is not accepting bookings")
		}
		if !snapshot.ServiceActive {
			return appErrors.Clone(appErrors.ErrValidation, "service is not active")
		}
		for _, off := range snapshot.TimeOff {
			if off.Covers(day) {
				return appErrors.Clone(appErrors.ErrValidation, "provider is unavailable on this date")
			}
		}
		for _, existing := range snapshot.Occupying {
			if !existing.Status.Occupies() {
				continue
			}
			if existing.Range().Expand(padding, padding).Overlaps(candidate) {
				return appErrors.Clone(appErrors.ErrSlotTaken, "slot overlaps booking "+existing.ID)
			}
		}
		return nil
	}
}

func (s *BookingAllocatorService) insert(ctx context.Context, booking *models.Booking, guard repository.BookingGuard) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		start := time.Now()
		err := s.store.InsertIfFree(ctx, booking, guard)
		s.metrics.ObserveDBQuery("bookings_insert_if_free", time.Since(start))
		if err == nil {
			return nil
		}

		var appErr *appErrors.Error
		switch {
		case errors.Is(err, models.ErrBookingOverlap):
			s.logger.Info("booking conflict", zap.String("provider_id", booking.ProviderID), zap.Error(err))
			return appErrors.Clone(appErrors.ErrSlotTaken, "slot is no longer available")
		case errors.As(err, &appErr):
			if appErr.Code == appErrors.ErrSlotTaken.Code {
				s.logger.Info("booking conflict", zap.String("provider_id", booking.ProviderID), zap.String("reason", appErr.Message))
			}
			return appErr
		case errors.Is(err, models.ErrAllocationContention):
			if attempt >= s.cfg.MaxRetries {
				s.logger.Warn("allocation retries exhausted",
					zap.String("provider_id", booking.ProviderID),
					zap.Int("attempts", attempt+1),
				)
				return appErrors.Clone(appErrors.ErrSlotBusy, "slot is being booked by someone else, try again")
			}
			s.metrics.RecordAllocationRetry()
			if waitErr := sleepContext(ctx, s.cfg.RetryBackoff*time.Duration(attempt+1)); waitErr != nil {
				return appErrors.Clone(appErrors.ErrSlotBusy, "allocation timed out")
			}
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return appErrors.Clone(appErrors.ErrSlotBusy, "allocation timed out")
		default:
			s.logger.Error("booking allocation failed", zap.String("provider_id", booking.ProviderID), zap.Error(err))
			return storeError(err, "failed to allocate booking")
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func allocationOutcome(err error) string {
	if err == nil {
		return AllocationSucceeded
	}
	switch {
	case appErrors.Is(err, appErrors.ErrSlotTaken):
		return AllocationTaken
	case appErrors.Is(err, appErrors.ErrSlotBusy):
		return AllocationBusy
	case appErrors.Is(err, appErrors.ErrValidation), appErrors.Is(err, appErrors.ErrNotFound):
		return AllocationRejected
	default:
		return AllocationFailed
	}
}

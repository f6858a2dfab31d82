package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

type prayerTimeSource interface {
	Timings(ctx context.Context, city string, date time.Time) (*models.PrayerTimes, error)
	RamadanRanges(ctx context.Context, year int) ([]models.RamadanRange, error)
}

type prayerCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// PrayerTimeService reads prayer times and Ramadan ranges through the cache.
type PrayerTimeService struct {
	source   prayerTimeSource
	cache    prayerCache
	cacheTTL time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	ramadan map[int][]models.RamadanRange
}

// NewPrayerTimeService constructs the service. cache may be nil.
func NewPrayerTimeService(source prayerTimeSource, cache prayerCache, cacheTTL time.Duration, logger *zap.Logger) *PrayerTimeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * 24 * time.Hour
	}
	return &PrayerTimeService{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		ramadan:  make(map[int][]models.RamadanRange),
	}
}

func prayerCacheKey(city string, date time.Time) string {
	return fmt.Sprintf("prayer:%s:%s", strings.ToLower(city), date.Format(timerange.DateLayout))
}

func ramadanCacheKey(year int) string {
	return fmt.Sprintf("ramadan:%d", year)
}

// PrayerTimes returns the schedule for a city and date. Failures surface as ErrUnavailable.
func (s *PrayerTimeService) PrayerTimes(ctx context.Context, city string, date time.Time) (*models.PrayerTimes, error) {
	key := prayerCacheKey(city, date)
	var cached models.PrayerTimes
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	times, err := s.source.Timings(ctx, city, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "prayer times unavailable")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, times, s.cacheTTL)
	}
	return times, nil
}

// RamadanRanges returns the Ramadan spans that touch a Gregorian year.
func (s *PrayerTimeService) RamadanRanges(ctx context.Context, year int) ([]models.RamadanRange, error) {
	s.mu.RLock()
	memo, ok := s.ramadan[year]
	s.mu.RUnlock()
	if ok {
		return memo, nil
	}

	key := ramadanCacheKey(year)
	var cached []models.RamadanRange
	if s.cache != nil && s.cache.Get(ctx, key, &cached) && len(cached) > 0 {
		s.remember(year, cached)
		return cached, nil
	}

	ranges, err := s.source.RamadanRanges(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "ramadan calendar unavailable")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, ranges, s.cacheTTL)
	}
	s.remember(year, ranges)
	return ranges, nil
}

func (s *PrayerTimeService) remember(year int, ranges []models.RamadanRange) {
	s.mu.Lock()
	s.ramadan[year] = ranges
	s.mu.Unlock()
}

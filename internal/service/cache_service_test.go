package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
)

type stubCacheRepo struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	deleted []string
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	s.ttls[key] = ttl
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func TestCacheServiceRoundTripRecordsMetrics(t *testing.T) {
	repo := newStubCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Hour, zap.NewNop(), true)
	ctx := context.Background()

	var got map[string]string
	assert.False(t, cache.Get(ctx, "prayer:riyadh:2025-06-15", &got))

	cache.Set(ctx, "prayer:riyadh:2025-06-15", map[string]string{"dhuhr": "12:37"}, 0)
	assert.Equal(t, time.Hour, repo.ttls["prayer:riyadh:2025-06-15"])

	require.True(t, cache.Get(ctx, "prayer:riyadh:2025-06-15", &got))
	assert.Equal(t, "12:37", got["dhuhr"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits.WithLabelValues("prayer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses.WithLabelValues("prayer")))

	cache.Invalidate(ctx, "prayer:riyadh:2025-06-15")
	assert.Equal(t, []string{"prayer:riyadh:2025-06-15"}, repo.deleted)
}

func TestCacheServiceTreatsFailuresAsMiss(t *testing.T) {
	repo := newStubCacheRepo()
	repo.getErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, 0, nil, true)

	var got map[string]string
	assert.False(t, cache.Get(context.Background(), "ramadan:2025", &got))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newStubCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)
	ctx := context.Background()

	cache.Set(ctx, "ramadan:2025", "x", time.Minute)
	assert.Empty(t, repo.data)
	assert.False(t, cache.Enabled())

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
}

func TestKeyKind(t *testing.T) {
	assert.Equal(t, "prayer", keyKind("prayer:riyadh:2025-06-15"))
	assert.Equal(t, "plain", keyKind("plain"))
}

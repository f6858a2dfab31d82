package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "booking", nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "prayer:riyadh:2025-03-02", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "prayer:riyadh:2025-03-02", map[string]string{"dhuhr": "12:37"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "prayer:riyadh:2025-03-02"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "booking:x", repo.key("x"))
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "stats:dashboard", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "stats:dashboard", map[string]int{"total": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "stats:*"))
}

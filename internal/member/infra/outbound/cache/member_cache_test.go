package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/memberquery/internal/member/domain"
)

func TestInMemoryCache_SetGetDelete(t *testing.T) {
	c := NewInMemoryCache(time.Minute, 0)
	defer c.Stop()
	ctx := context.Background()

	teamID := int64(2)
	in := domain.Member{ID: 4, Username: "member4", Age: 40, TeamID: &teamID}
	require.NoError(t, c.Set(ctx, domain.CacheKeyByUsername("member4"), in, 0))

	var out domain.Member
	hit, err := c.Get(ctx, domain.CacheKeyByUsername("member4"), &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in, out)

	require.NoError(t, c.Delete(ctx, domain.CacheKeyByUsername("member4")))
	hit, err = c.Get(ctx, domain.CacheKeyByUsername("member4"), &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache(time.Minute, 0)
	defer c.Stop()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set(ctx, "k", "v", time.Second))

	c.now = func() time.Time { return base.Add(2 * time.Second) }
	var out string
	hit, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	c.purgeExpired()
	assert.Equal(t, 0, c.Len())
}

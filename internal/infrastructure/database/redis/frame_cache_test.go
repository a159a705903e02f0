package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/application/panel"
	"github.com/turtacn/facetmap/internal/testutil"
)

func TestFrameCache_RenderThenLatest(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewFrameCache(client, testutil.NewMockLogger(), WithFrameTTL(time.Minute))
	ctx := context.Background()

	f := panel.Frame{
		CycleID: "c1",
		Status:  panel.StatusOK,
		Field:   "country_code",
		Counts:  aggregate.CategoryCounts{"US": 5, "FR": 2},
		Hits:    7,
		At:      time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	cache.Render(ctx, f)

	got, ok, err := cache.Latest(ctx, "country_code")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c1", got.CycleID)
	assert.Equal(t, int64(5), got.Label("US"))
	assert.Equal(t, int64(7), got.Hits)

	ttl := mr.TTL(client.Key("frame", "country_code"))
	assert.True(t, ttl >= 54*time.Second && ttl <= 66*time.Second, "ttl %s", ttl)
}

func TestFrameCache_Miss(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewFrameCache(client, testutil.NewMockLogger())

	_, ok, err := cache.Latest(context.Background(), "country_code")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFrameCache_RenderLogsFailure(t *testing.T) {
	client, _ := newTestClient(t)
	log := testutil.NewMockLogger()
	cache := NewFrameCache(client, log)
	require.NoError(t, client.Close())

	cache.Render(context.Background(), panel.Frame{Field: "country_code", CycleID: "c1"})
	assert.True(t, log.HasMessage("warn", "Failed to cache frame"))
}

//Personal.AI order the ending

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-disaster-prep/internal/models"
)

func TestMemoryAlertCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryAlertCache(clockwork.NewFakeClock())

	got, err := c.GetAlerts(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.SetAlerts(ctx, []models.DisasterAlert{{ID: "da1"}}, time.Minute))
	got, err = c.GetAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "da1", got[0].ID)
}

func TestMemoryAlertCache_Expires(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := NewMemoryAlertCache(clock)

	require.NoError(t, c.SetAlerts(ctx, []models.DisasterAlert{{ID: "da1"}}, time.Minute))
	clock.Advance(59 * time.Second)
	got, _ := c.GetAlerts(ctx)
	assert.Len(t, got, 1)

	clock.Advance(time.Second)
	got, _ = c.GetAlerts(ctx)
	assert.Nil(t, got)
}

func TestMemoryAlertCache_EmptySnapshotIsAHit(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryAlertCache(nil)

	require.NoError(t, c.SetAlerts(ctx, nil, 0))
	got, err := c.GetAlerts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

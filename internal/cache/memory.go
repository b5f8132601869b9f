package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-prep/internal/models"
)

// MemoryAlertCache is the in-process AlertCache used when no redis address
// is configured. It holds a single snapshot.
type MemoryAlertCache struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	alerts  []models.DisasterAlert
	expires time.Time
}

func NewMemoryAlertCache(clock clockwork.Clock) *MemoryAlertCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryAlertCache{clock: clock}
}

func (c *MemoryAlertCache) GetAlerts(_ context.Context) ([]models.DisasterAlert, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.alerts == nil || (!c.expires.IsZero() && !c.clock.Now().Before(c.expires)) {
		return nil, nil
	}
	return slices.Clone(c.alerts), nil
}

// SetAlerts replaces the snapshot. A ttl of zero keeps it until replaced.
func (c *MemoryAlertCache) SetAlerts(_ context.Context, alerts []models.DisasterAlert, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alerts = slices.Clone(alerts)
	if c.alerts == nil {
		c.alerts = []models.DisasterAlert{}
	}
	c.expires = time.Time{}
	if ttl > 0 {
		c.expires = c.clock.Now().Add(ttl)
	}
	return nil
}

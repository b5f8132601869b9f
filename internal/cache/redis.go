// Package cache keeps the last good snapshot of active alerts so readers have
// something to fall back on when the alert store cannot be reached.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mr1hm/go-disaster-prep/internal/models"
)

type AlertCache interface {
	// GetAlerts returns nil, nil on a miss.
	GetAlerts(ctx context.Context) ([]models.DisasterAlert, error)
	SetAlerts(ctx context.Context, alerts []models.DisasterAlert, ttl time.Duration) error
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

type RedisAlertCache struct {
	client *goredis.Client
	key    string
}

// NewRedisAlertCache connects to redis and verifies the connection.
func NewRedisAlertCache(ctx context.Context, cfg Config) (*RedisAlertCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &RedisAlertCache{
		client: client,
		key:    "alerts:active",
	}, nil
}

func (c *RedisAlertCache) GetAlerts(ctx context.Context) ([]models.DisasterAlert, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var alerts []models.DisasterAlert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *RedisAlertCache) SetAlerts(ctx context.Context, alerts []models.DisasterAlert, ttl time.Duration) error {
	b, err := json.Marshal(alerts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, ttl).Err()
}

func (c *RedisAlertCache) Close() error {
	return c.client.Close()
}

// Package service sits between the HTTP layer and the stores. It owns the
// fallback policy: when a store read fails the caller still gets an answer,
// marked Degraded.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mr1hm/go-disaster-prep/internal/cache"
	"github.com/mr1hm/go-disaster-prep/internal/geo"
	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/observability"
	"github.com/mr1hm/go-disaster-prep/internal/repository"
)

type AlertStore interface {
	ListAlerts(ctx context.Context, opts repository.Filter) ([]models.DisasterAlert, error)
}

// AlertResult separates "nothing applies" (empty, not degraded) from
// "could not fetch" (Degraded, possibly empty).
type AlertResult struct {
	Alerts   []models.DisasterAlert `json:"alerts"`
	Degraded bool                   `json:"degraded"`
}

type AlertService struct {
	store    AlertStore
	cache    cache.AlertCache
	cacheTTL time.Duration
	metrics  *observability.Metrics
}

// NewAlertService builds the service. cache may be nil, in which case a failed
// fetch degrades straight to an empty list.
func NewAlertService(store AlertStore, c cache.AlertCache, cacheTTL time.Duration, metrics *observability.Metrics) *AlertService {
	return &AlertService{
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  metrics,
	}
}

// ActiveAlerts lists alerts matching filter, newest first.
func (s *AlertService) ActiveAlerts(ctx context.Context, filter repository.Filter) AlertResult {
	alerts, err := s.store.ListAlerts(ctx, filter)
	if err == nil {
		if filter == (repository.Filter{}) {
			s.refreshCache(ctx, alerts)
		}
		return AlertResult{Alerts: alerts}
	}

	slog.Warn("alert store unavailable, using cached alerts", "error", err)
	if s.metrics != nil {
		s.metrics.AlertFetchErrors.Inc()
		s.metrics.DegradedReplies.WithLabelValues("alerts").Inc()
	}
	return AlertResult{Alerts: applyFilter(s.cached(ctx), filter), Degraded: true}
}

// LocalAlerts returns the active alerts relevant to loc.
func (s *AlertService) LocalAlerts(ctx context.Context, loc models.Location) AlertResult {
	res := s.ActiveAlerts(ctx, repository.Filter{})
	res.Alerts = geo.FilterLocalAlerts(loc, res.Alerts)
	return res
}

func (s *AlertService) refreshCache(ctx context.Context, alerts []models.DisasterAlert) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetAlerts(ctx, alerts, s.cacheTTL); err != nil {
		slog.Warn("alert cache refresh failed", "error", err)
	}
}

func (s *AlertService) cached(ctx context.Context) []models.DisasterAlert {
	if s.cache == nil {
		return []models.DisasterAlert{}
	}
	alerts, err := s.cache.GetAlerts(ctx)
	switch {
	case err != nil:
		slog.Warn("alert cache read failed", "error", err)
		s.countCacheRead("error")
		return []models.DisasterAlert{}
	case alerts == nil:
		s.countCacheRead("miss")
		return []models.DisasterAlert{}
	}
	s.countCacheRead("hit")
	return alerts
}

func (s *AlertService) countCacheRead(result string) {
	if s.metrics != nil {
		s.metrics.AlertCacheReads.WithLabelValues(result).Inc()
	}
}

// applyFilter mirrors the store's filtering for cached snapshots, which are
// already ordered newest first.
func applyFilter(alerts []models.DisasterAlert, f repository.Filter) []models.DisasterAlert {
	out := make([]models.DisasterAlert, 0, len(alerts))
	for _, a := range alerts {
		if f.Type != "" && !strings.EqualFold(a.Type, f.Type) {
			continue
		}
		if f.Severity != nil && a.Severity != *f.Severity {
			continue
		}
		if f.Since != nil && a.Timestamp.Before(*f.Since) {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

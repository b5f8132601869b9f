package service

import (
	"context"
	"log/slog"

	"github.com/mr1hm/go-disaster-prep/internal/geo"
	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/observability"
	"github.com/mr1hm/go-disaster-prep/internal/repository"
	"github.com/mr1hm/go-disaster-prep/internal/seed"
)

type ResourceStore interface {
	ListResources(ctx context.Context, opts repository.ResourceFilter) ([]models.Resource, error)
}

type ResourceResult struct {
	Resources []geo.RankedResource `json:"resources"`
	Degraded  bool                 `json:"degraded"`
}

type ResourceService struct {
	store   ResourceStore
	metrics *observability.Metrics
}

func NewResourceService(store ResourceStore, metrics *observability.Metrics) *ResourceService {
	return &ResourceService{store: store, metrics: metrics}
}

// Nearby returns resources of type t (all types when empty), nearest to
// origin first. A nil origin keeps store order. When the store fails or holds
// nothing the built-in sample resources are served instead.
func (s *ResourceService) Nearby(ctx context.Context, origin *models.Coordinate, t models.ResourceType) ResourceResult {
	resources, err := s.store.ListResources(ctx, repository.ResourceFilter{})
	degraded := false
	switch {
	case err != nil:
		slog.Warn("resource store unavailable, serving samples", "error", err)
		if s.metrics != nil {
			s.metrics.DegradedReplies.WithLabelValues("resources").Inc()
		}
		resources = seed.Resources()
		degraded = true
	case len(resources) == 0:
		resources = seed.Resources()
	}

	return ResourceResult{
		Resources: geo.RankWithDistance(origin, geo.FilterResourcesByType(t, resources)),
		Degraded:  degraded,
	}
}

// Package checklist resolves per-user preparedness checklists, creating them
// from a fixed template the first time a user opens one.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/observability"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

// Store is the persistence the resolver needs. CreateChecklistItems must be
// idempotent on (userID, disasterType, task) and store all tasks or none.
// An empty disasterType lists items of every type.
type Store interface {
	ListChecklistItems(ctx context.Context, userID, disasterType string) ([]models.ChecklistItem, error)
	CreateChecklistItems(ctx context.Context, userID, disasterType string, tasks []string) ([]models.ChecklistItem, error)
	SetChecklistItemCompletion(ctx context.Context, id string, completed bool) error
}

// Service is shared by every request. It owns the single-flight group that
// keeps concurrent first-time loads for the same user and type from creating
// the template twice.
type Service struct {
	store   Store
	metrics *observability.Metrics
	flights singleflight.Group
}

func NewService(store Store, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
	}
}

// ForUser returns a resolver bound to userID. An empty userID is an anonymous caller.
func (s *Service) ForUser(userID string) *Resolver {
	return &Resolver{
		svc:    s,
		userID: userID,
		known:  make(map[string]models.ChecklistItem),
	}
}

// Checklist is the result of a lookup. Persisted is false for anonymous
// callers and for template fallbacks; Degraded marks a fallback caused by
// the store being unavailable.
type Checklist struct {
	DisasterType string                 `json:"disaster_type"`
	Items        []models.ChecklistItem `json:"items"`
	Persisted    bool                   `json:"persisted"`
	Degraded     bool                   `json:"degraded"`
}

// Resolver serves one user. It remembers every item it has returned so that
// toggles can be checked locally before touching the store.
type Resolver struct {
	svc    *Service
	userID string

	mu    sync.Mutex
	known map[string]models.ChecklistItem
}

func (r *Resolver) UserID() string {
	return r.userID
}

// GetChecklistForDisaster returns the user's checklist for disasterType.
// Persisted items are returned as stored and never mixed with template
// defaults. When nothing is persisted yet the template is materialized.
func (r *Resolver) GetChecklistForDisaster(ctx context.Context, disasterType string) (Checklist, error) {
	if r.userID == "" {
		return Checklist{DisasterType: disasterType, Items: Template(disasterType)}, nil
	}
	// the store reads "" as every type
	if disasterType == "" {
		return Checklist{Items: []models.ChecklistItem{}}, nil
	}

	items, err := r.svc.store.ListChecklistItems(ctx, r.userID, disasterType)
	if err != nil {
		return r.fallback(disasterType, err)
	}
	if len(items) > 0 {
		r.remember(items)
		return Checklist{DisasterType: disasterType, Items: items, Persisted: true}, nil
	}

	if !hasTemplate(disasterType) {
		return Checklist{DisasterType: disasterType, Items: []models.ChecklistItem{}}, nil
	}

	items, err = r.svc.materialize(ctx, r.userID, disasterType)
	if err != nil {
		return r.fallback(disasterType, err)
	}
	r.remember(items)
	return Checklist{DisasterType: disasterType, Items: items, Persisted: true}, nil
}

func (r *Resolver) fallback(disasterType string, err error) (Checklist, error) {
	if !errors.Is(err, e.ErrStoreUnavailable) {
		return Checklist{}, err
	}
	slog.Warn("checklist store unavailable, serving template",
		"user_id", r.userID, "disaster_type", disasterType, "error", err)
	if r.svc.metrics != nil {
		r.svc.metrics.DegradedReplies.WithLabelValues("checklist").Inc()
	}
	return Checklist{DisasterType: disasterType, Items: Template(disasterType), Degraded: true}, nil
}

func (s *Service) materialize(ctx context.Context, userID, disasterType string) ([]models.ChecklistItem, error) {
	key := userID + "\x00" + disasterType

	v, err, _ := s.flights.Do(key, func() (any, error) {
		// other callers may share this result, so one caller's cancel must not abort it
		ctx := context.WithoutCancel(ctx)

		existing, err := s.store.ListChecklistItems(ctx, userID, disasterType)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing, nil
		}

		created, err := s.store.CreateChecklistItems(ctx, userID, disasterType, templates[disasterType])
		if err != nil {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.ChecklistMaterialized.Inc()
		}
		slog.Info("checklist materialized", "user_id", userID, "disaster_type", disasterType, "items", len(created))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]models.ChecklistItem)), nil
}

// Load fetches all of the user's items so they can be toggled without first
// opening each checklist. Anonymous resolvers have nothing to load.
func (r *Resolver) Load(ctx context.Context) error {
	const op = "checklist.Resolver.Load"

	if r.userID == "" {
		return nil
	}
	items, err := r.svc.store.ListChecklistItems(ctx, r.userID, "")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	r.remember(items)
	return nil
}

// ToggleChecklistItem flips the completion flag of a known item and persists
// it. Calling it twice restores the original value. A retried call after a
// lost response flips the item back; use SetCompletion when that matters.
func (r *Resolver) ToggleChecklistItem(ctx context.Context, id string) (models.ChecklistItem, error) {
	const op = "checklist.Resolver.ToggleChecklistItem"

	if r.userID == "" {
		return models.ChecklistItem{}, fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.known[id]
	if !ok {
		r.countToggle("not_found")
		return models.ChecklistItem{}, fmt.Errorf("%s: item %s: %w", op, id, e.ErrNotFound)
	}
	return r.persistCompletion(ctx, op, item, !item.IsCompleted)
}

// SetCompletion sets the completion flag to an explicit value. Unlike
// ToggleChecklistItem it is safe to retry.
func (r *Resolver) SetCompletion(ctx context.Context, id string, completed bool) (models.ChecklistItem, error) {
	const op = "checklist.Resolver.SetCompletion"

	if r.userID == "" {
		return models.ChecklistItem{}, fmt.Errorf("%s: %w", op, e.ErrUnauthenticated)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.known[id]
	if !ok {
		r.countToggle("not_found")
		return models.ChecklistItem{}, fmt.Errorf("%s: item %s: %w", op, id, e.ErrNotFound)
	}
	return r.persistCompletion(ctx, op, item, completed)
}

// persistCompletion must be called with r.mu held.
func (r *Resolver) persistCompletion(ctx context.Context, op string, item models.ChecklistItem, completed bool) (models.ChecklistItem, error) {
	if err := r.svc.store.SetChecklistItemCompletion(ctx, item.ID, completed); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			delete(r.known, item.ID)
			r.countToggle("not_found")
		} else {
			r.countToggle("error")
		}
		return models.ChecklistItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item.IsCompleted = completed
	r.known[item.ID] = item
	r.countToggle("ok")
	return item, nil
}

func (r *Resolver) remember(items []models.ChecklistItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.known[it.ID] = it
	}
}

func (r *Resolver) countToggle(outcome string) {
	if r.svc.metrics != nil {
		r.svc.metrics.ChecklistToggles.WithLabelValues(outcome).Inc()
	}
}

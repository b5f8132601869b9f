package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-disaster-prep/internal/cache"
	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/observability"
	"github.com/mr1hm/go-disaster-prep/internal/repository"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

var errDown = fmt.Errorf("sqlite: %w", e.ErrStoreUnavailable)

type stubAlertStore struct {
	alerts []models.DisasterAlert
	err    error
}

func (s *stubAlertStore) ListAlerts(_ context.Context, _ repository.Filter) ([]models.DisasterAlert, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.alerts, nil
}

type stubResourceStore struct {
	resources []models.Resource
	err       error
}

func (s *stubResourceStore) ListResources(_ context.Context, _ repository.ResourceFilter) ([]models.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resources, nil
}

func indiaAlerts() []models.DisasterAlert {
	return []models.DisasterAlert{
		{ID: "da1", Type: "Flood", Severity: models.SeverityHigh, Location: "Mumbai, Maharashtra"},
		{ID: "da2", Type: "Cyclone", Severity: models.SeverityHigh, Location: "Chennai, Tamil Nadu"},
		{ID: "da4", Type: "Heatwave", Severity: models.SeverityMedium, Location: "Rajasthan"},
	}
}

func TestLocalAlerts_FiltersByLocation(t *testing.T) {
	svc := NewAlertService(&stubAlertStore{alerts: indiaAlerts()}, nil, 0, observability.NewMetricsForTesting())

	res := svc.LocalAlerts(context.Background(), models.Location{City: "Mumbai", State: "Maharashtra"})
	assert.False(t, res.Degraded)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "da1", res.Alerts[0].ID)

	res = svc.LocalAlerts(context.Background(), models.Location{City: "Kochi", State: "Kerala"})
	assert.False(t, res.Degraded, "no match is not a failure")
	assert.Empty(t, res.Alerts)
}

func TestLocalAlerts_FallsBackToCache(t *testing.T) {
	ctx := context.Background()
	store := &stubAlertStore{alerts: indiaAlerts()}
	c := cache.NewMemoryAlertCache(clockwork.NewFakeClock())
	svc := NewAlertService(store, c, time.Hour, observability.NewMetricsForTesting())

	// a good read primes the cache
	svc.ActiveAlerts(ctx, repository.Filter{})

	store.err = errDown
	res := svc.LocalAlerts(ctx, models.Location{City: "Chennai", State: "Tamil Nadu"})
	assert.True(t, res.Degraded)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "da2", res.Alerts[0].ID)
}

func TestLocalAlerts_FailureWithoutCacheIsEmptyAndDegraded(t *testing.T) {
	svc := NewAlertService(&stubAlertStore{err: errDown}, nil, 0, nil)

	res := svc.LocalAlerts(context.Background(), models.Location{State: "Maharashtra"})
	assert.True(t, res.Degraded)
	assert.NotNil(t, res.Alerts)
	assert.Empty(t, res.Alerts)

	empty := cache.NewMemoryAlertCache(nil)
	svc = NewAlertService(&stubAlertStore{err: errDown}, empty, time.Hour, nil)
	res = svc.LocalAlerts(context.Background(), models.Location{State: "Maharashtra"})
	assert.True(t, res.Degraded)
	assert.Empty(t, res.Alerts)
}

func TestActiveAlerts_FilteredReadDoesNotOverwriteCache(t *testing.T) {
	ctx := context.Background()
	store := &stubAlertStore{alerts: indiaAlerts()}
	c := cache.NewMemoryAlertCache(nil)
	svc := NewAlertService(store, c, 0, nil)

	svc.ActiveAlerts(ctx, repository.Filter{})
	store.alerts = indiaAlerts()[:1]
	svc.ActiveAlerts(ctx, repository.Filter{Type: "Flood"})

	cached, err := c.GetAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 3)
}

func TestActiveAlerts_CachedSnapshotIsFiltered(t *testing.T) {
	ctx := context.Background()
	store := &stubAlertStore{alerts: indiaAlerts()}
	svc := NewAlertService(store, cache.NewMemoryAlertCache(nil), 0, nil)
	svc.ActiveAlerts(ctx, repository.Filter{})

	store.err = errDown
	high := models.SeverityHigh
	res := svc.ActiveAlerts(ctx, repository.Filter{Severity: &high, Limit: 1})
	assert.True(t, res.Degraded)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "da1", res.Alerts[0].ID)

	res = svc.ActiveAlerts(ctx, repository.Filter{Type: "heatwave"})
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "da4", res.Alerts[0].ID)
}

func TestNearby_RanksStoreResources(t *testing.T) {
	store := &stubResourceStore{resources: []models.Resource{
		{ID: "far", Type: models.ResourceFood, Location: models.ResourceLocation{Coordinate: models.Coordinate{Latitude: 19.07, Longitude: 72.87}}},
		{ID: "near", Type: models.ResourceFood, Location: models.ResourceLocation{Coordinate: models.Coordinate{Latitude: 28.61, Longitude: 77.20}}},
		{ID: "water", Type: models.ResourceWater, Location: models.ResourceLocation{Coordinate: models.Coordinate{Latitude: 28.60, Longitude: 77.20}}},
	}}
	svc := NewResourceService(store, nil)
	origin := &models.Coordinate{Latitude: 28.6139, Longitude: 77.2090}

	res := svc.Nearby(context.Background(), origin, models.ResourceFood)
	assert.False(t, res.Degraded)
	require.Len(t, res.Resources, 2)
	assert.Equal(t, "near", res.Resources[0].ID)
	assert.Equal(t, "far", res.Resources[1].ID)
	require.NotNil(t, res.Resources[0].DistanceKm)
}

func TestNearby_FallsBackToSamples(t *testing.T) {
	svc := NewResourceService(&stubResourceStore{err: errDown}, observability.NewMetricsForTesting())

	res := svc.Nearby(context.Background(), nil, "")
	assert.True(t, res.Degraded)
	assert.Len(t, res.Resources, 4)
	assert.Equal(t, "r1", res.Resources[0].ID)
	assert.Nil(t, res.Resources[0].DistanceKm)

	res = svc.Nearby(context.Background(), nil, models.ResourceWater)
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "r4", res.Resources[0].ID)

	empty := NewResourceService(&stubResourceStore{}, nil)
	res = empty.Nearby(context.Background(), nil, "")
	assert.False(t, res.Degraded)
	assert.Len(t, res.Resources, 4)
}

type memCommunity struct {
	contacts []models.EmergencyContact
	messages []models.CommunityMessage
}

func (m *memCommunity) ListContacts(_ context.Context, userID string) ([]models.EmergencyContact, error) {
	var out []models.EmergencyContact
	for _, c := range m.contacts {
		if c.Owner == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCommunity) AddContact(_ context.Context, c *models.EmergencyContact) error {
	c.ID = fmt.Sprintf("c%d", len(m.contacts)+1)
	m.contacts = append(m.contacts, *c)
	return nil
}

func (m *memCommunity) RemoveContact(_ context.Context, userID, id string) error {
	for i, c := range m.contacts {
		if c.ID == id && c.Owner == userID {
			m.contacts = append(m.contacts[:i], m.contacts[i+1:]...)
			return nil
		}
	}
	return e.ErrNotFound
}

func (m *memCommunity) ListMessages(_ context.Context, _ int) ([]models.CommunityMessage, error) {
	return m.messages, nil
}

func (m *memCommunity) AddMessage(_ context.Context, msg *models.CommunityMessage) error {
	msg.ID = "m1"
	m.messages = append([]models.CommunityMessage{*msg}, m.messages...)
	return nil
}

func TestCommunity_ContactsRequireUser(t *testing.T) {
	store := &memCommunity{}
	svc := NewCommunityService(store, store)
	ctx := context.Background()

	_, err := svc.AddContact(ctx, "", models.EmergencyContact{Name: "Asha", Phone: "112"})
	assert.ErrorIs(t, err, e.ErrUnauthenticated)
	assert.ErrorIs(t, svc.RemoveContact(ctx, "", "c1"), e.ErrUnauthenticated)

	contacts, err := svc.Contacts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, contacts)

	c, err := svc.AddContact(ctx, "u1", models.EmergencyContact{Name: " Asha ", Phone: "112", Relationship: "Sister"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", c.Name)
	assert.Equal(t, "u1", c.Owner)

	_, err = svc.AddContact(ctx, "u1", models.EmergencyContact{Name: "No Phone"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	err = svc.RemoveContact(ctx, "u2", c.ID)
	assert.True(t, errors.Is(err, e.ErrNotFound))
	require.NoError(t, svc.RemoveContact(ctx, "u1", c.ID))
}

func TestCommunity_PostMessage(t *testing.T) {
	store := &memCommunity{}
	svc := NewCommunityService(store, store)
	ctx := context.Background()

	_, err := svc.PostMessage(ctx, "", models.CommunityMessage{UserName: "Ravi", Message: "hi"})
	assert.ErrorIs(t, err, e.ErrUnauthenticated)

	_, err = svc.PostMessage(ctx, "u1", models.CommunityMessage{UserName: "Ravi", Message: "   "})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	m, err := svc.PostMessage(ctx, "u1", models.CommunityMessage{UserName: "Ravi", Message: "Shelter open", Location: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, "u1", m.UserID)

	msgs, err := svc.Messages(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

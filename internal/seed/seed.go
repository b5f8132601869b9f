// Package seed holds the built-in sample alerts and resources used to
// populate an empty database and to answer when the store is unreachable.
package seed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/repository"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

// Alerts returns the sample alerts stamped with now.
func Alerts(now time.Time) []models.DisasterAlert {
	return []models.DisasterAlert{
		{
			ID:          "da1",
			Source:      "seed",
			Type:        models.DisasterTypeFlood,
			Severity:    models.SeverityHigh,
			Location:    "Mumbai, Maharashtra",
			Timestamp:   now,
			Description: "Heavy rainfall causing severe flooding in multiple areas of Mumbai. Local authorities advise staying indoors.",
			Instructions: []string{
				"Move to higher ground immediately",
				"Avoid walking or driving through flood waters",
				"Follow evacuation orders if issued",
				"Keep emergency supplies ready",
			},
		},
		{
			ID:          "da2",
			Source:      "seed",
			Type:        models.DisasterTypeCyclone,
			Severity:    models.SeverityHigh,
			Location:    "Chennai, Tamil Nadu",
			Timestamp:   now,
			Description: "Cyclone approaching the eastern coast. Expected to make landfall within 24 hours.",
			Instructions: []string{
				"Secure loose items outside your home",
				"Stay indoors and away from windows",
				"Keep battery-powered radio for updates",
				"Prepare emergency kit with food, water and medicines",
			},
		},
		{
			ID:          "da3",
			Source:      "seed",
			Type:        models.DisasterTypeEarthquake,
			Severity:    models.SeverityMedium,
			Location:    "Delhi NCR",
			Timestamp:   now,
			Description: "5.2 magnitude earthquake detected. Aftershocks possible in the coming hours.",
			Instructions: []string{
				"Drop, cover, and hold on",
				"Stay away from buildings and power lines",
				"Check for injuries and damage",
				"Be prepared for aftershocks",
			},
		},
		{
			ID:          "da4",
			Source:      "seed",
			Type:        models.DisasterTypeHeatwave,
			Severity:    models.SeverityMedium,
			Location:    "Rajasthan",
			Timestamp:   now,
			Description: "Extreme temperatures exceeding 45°C expected for the next 5 days.",
			Instructions: []string{
				"Stay hydrated and drink plenty of water",
				"Avoid going outside during peak hours (11am-4pm)",
				"Wear light-colored loose clothing",
				"Check on elderly neighbors and vulnerable individuals",
			},
		},
		{
			ID:          "da5",
			Source:      "seed",
			Type:        models.DisasterTypeLandslide,
			Severity:    models.SeverityHigh,
			Location:    "Shimla, Himachal Pradesh",
			Timestamp:   now,
			Description: "Heavy rainfall has triggered landslides in multiple locations. Roads blocked and evacuations in progress.",
			Instructions: []string{
				"Evacuate the area immediately if advised",
				"Watch for signs like cracking trees, soil, or rocks",
				"Listen for unusual sounds that might indicate moving debris",
				"Contact local emergency services if stranded",
			},
		},
	}
}

// Instructions returns the default safety instructions for a disaster type,
// taken from the matching sample alert. Unknown types get nil.
func Instructions(disasterType string) []string {
	for _, a := range Alerts(time.Time{}) {
		if a.Type == disasterType {
			return a.Instructions
		}
	}
	return nil
}

// Resources returns the sample aid points around Delhi NCR.
func Resources() []models.Resource {
	return []models.Resource{
		{
			ID:          "r1",
			Type:        models.ResourceShelter,
			Name:        "Government High School Shelter",
			Description: "Temporary shelter with capacity for 500 people",
			Location: models.ResourceLocation{
				Coordinate: models.Coordinate{Latitude: 28.7041, Longitude: 77.1025},
				Address:    "Sector 4, New Delhi",
			},
			Availability: models.AvailabilityHigh,
		},
		{
			ID:          "r2",
			Type:        models.ResourceFood,
			Name:        "Community Kitchen",
			Description: "Hot meals available 3 times daily",
			Location: models.ResourceLocation{
				Coordinate: models.Coordinate{Latitude: 28.6139, Longitude: 77.2090},
				Address:    "Near India Gate, New Delhi",
			},
			Availability: models.AvailabilityMedium,
		},
		{
			ID:          "r3",
			Type:        models.ResourceMedical,
			Name:        "Emergency Medical Camp",
			Description: "Basic medical aid and supplies",
			Location: models.ResourceLocation{
				Coordinate: models.Coordinate{Latitude: 28.6692, Longitude: 77.4538},
				Address:    "Sector 62, Noida",
			},
			Availability: models.AvailabilityHigh,
		},
		{
			ID:          "r4",
			Type:        models.ResourceWater,
			Name:        "Water Distribution Center",
			Description: "Clean drinking water available",
			Location: models.ResourceLocation{
				Coordinate: models.Coordinate{Latitude: 28.5355, Longitude: 77.3910},
				Address:    "Sector 18, Noida",
			},
			Availability: models.AvailabilityLow,
		},
	}
}

// Apply writes the sample alerts and resources into stores that hold none yet.
func Apply(ctx context.Context, alerts repository.AlertRepository, resources repository.ResourceRepository, now time.Time) error {
	existing, err := alerts.ListAlerts(ctx, repository.Filter{Limit: 1})
	if err != nil {
		return e.Wrap("seed: checking alerts", err)
	}
	if len(existing) == 0 {
		for _, a := range Alerts(now) {
			if err := alerts.Add(ctx, &a); err != nil && !errors.Is(err, e.ErrConflict) {
				return e.Wrap("seed: alert "+a.ID, err)
			}
		}
		slog.Info("seeded sample alerts")
	}

	rs, err := resources.ListResources(ctx, repository.ResourceFilter{})
	if err != nil {
		return e.Wrap("seed: checking resources", err)
	}
	if len(rs) == 0 {
		for _, r := range Resources() {
			if err := resources.AddResource(ctx, &r); err != nil {
				return e.Wrap("seed: resource "+r.ID, err)
			}
		}
		slog.Info("seeded sample resources")
	}
	return nil
}

package api

import (
	"github.com/mr1hm/go-disaster-prep/internal/geo"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Degraded bool      `json:"degraded"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(resources []geo.RankedResource, degraded bool) FeatureCollection {
	features := make([]Feature, 0, len(resources))

	for _, r := range resources {
		props := map[string]any{
			"id":           r.ID,
			"type":         string(r.Type),
			"name":         r.Name,
			"description":  r.Description,
			"address":      r.Location.Address,
			"availability": string(r.Availability),
		}
		if r.DistanceKm != nil {
			props["distance_km"] = *r.DistanceKm
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{r.Location.Longitude, r.Location.Latitude},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Degraded: degraded,
	}
}

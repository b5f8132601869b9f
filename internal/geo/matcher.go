// Package geo decides which alerts are local to a user and orders resources
// by distance. Everything here is pure and safe for concurrent use.
package geo

import (
	"math"
	"slices"
	"strings"

	"github.com/mr1hm/go-disaster-prep/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// FilterLocalAlerts returns the alerts whose location text contains the user's
// state or city, compared case-insensitively. An empty state yields no alerts,
// even when the city would match. Input order is preserved.
//
// Matching is plain substring containment, so "igarh" would match "Chandigarh".
func FilterLocalAlerts(loc models.Location, alerts []models.DisasterAlert) []models.DisasterAlert {
	if loc.State == "" {
		return []models.DisasterAlert{}
	}

	state := strings.ToLower(loc.State)
	city := strings.ToLower(loc.City)

	local := make([]models.DisasterAlert, 0, len(alerts))
	for _, a := range alerts {
		if matches(strings.ToLower(a.Location), state, city) {
			local = append(local, a)
		}
	}
	return local
}

// MatchesLocation reports whether a single alert is local to loc, using the
// same rules as FilterLocalAlerts.
func MatchesLocation(loc models.Location, alert models.DisasterAlert) bool {
	if loc.State == "" {
		return false
	}
	return matches(strings.ToLower(alert.Location), strings.ToLower(loc.State), strings.ToLower(loc.City))
}

func matches(where, state, city string) bool {
	if strings.Contains(where, state) {
		return true
	}
	return city != "" && strings.Contains(where, city)
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b models.Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// float drift can push h just outside [0,1] for antipodal points
	h = math.Max(0, math.Min(1, h))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RankResourcesByProximity returns resources ordered nearest first. Equal
// distances keep their input order. A nil origin returns the input order
// unchanged. No resource is ever dropped.
func RankResourcesByProximity(origin *models.Coordinate, resources []models.Resource) []models.Resource {
	ranked := RankWithDistance(origin, resources)
	out := make([]models.Resource, len(ranked))
	for i, r := range ranked {
		out[i] = r.Resource
	}
	return out
}

// RankedResource pairs a resource with its distance from the origin.
// DistanceKm is nil when no origin was known.
type RankedResource struct {
	models.Resource
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func RankWithDistance(origin *models.Coordinate, resources []models.Resource) []RankedResource {
	ranked := make([]RankedResource, len(resources))
	for i, r := range resources {
		ranked[i] = RankedResource{Resource: r}
	}
	if origin == nil {
		return ranked
	}

	for i := range ranked {
		d := Distance(*origin, ranked[i].Location.Coordinate)
		ranked[i].DistanceKm = &d
	}
	slices.SortStableFunc(ranked, func(x, y RankedResource) int {
		switch {
		case *x.DistanceKm < *y.DistanceKm:
			return -1
		case *x.DistanceKm > *y.DistanceKm:
			return 1
		}
		return 0
	})
	return ranked
}

// FilterResourcesByType keeps resources of type t. An empty t keeps everything.
func FilterResourcesByType(t models.ResourceType, resources []models.Resource) []models.Resource {
	if t == "" {
		return resources
	}
	out := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

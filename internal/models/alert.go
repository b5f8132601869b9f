package models

import "time"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Disaster category tags. Alerts and checklists share these strings.
const (
	DisasterTypeFlood      = "Flood"
	DisasterTypeCyclone    = "Cyclone"
	DisasterTypeEarthquake = "Earthquake"
	DisasterTypeHeatwave   = "Heatwave"
	DisasterTypeLandslide  = "Landslide"
	DisasterTypeTsunami    = "Tsunami"
	DisasterTypeVolcano    = "Volcano"
	DisasterTypeWildfire   = "Wildfire"
	DisasterTypeDrought    = "Drought"
	DisasterTypeUnknown    = "Unknown"
)

// DisasterAlert is an append-only hazard notice. Location is free text
// describing the affected area (e.g. "Mumbai, Maharashtra").
type DisasterAlert struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"` // "usgs", "gdacs", "seed"
	Type         string    `json:"type"`
	Severity     Severity  `json:"severity"`
	Location     string    `json:"location"`
	Timestamp    time.Time `json:"timestamp"`
	Description  string    `json:"description"`
	Instructions []string  `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
}

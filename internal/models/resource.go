package models

type ResourceType string

const (
	ResourceFood    ResourceType = "food"
	ResourceWater   ResourceType = "water"
	ResourceShelter ResourceType = "shelter"
	ResourceMedical ResourceType = "medical"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceFood, ResourceWater, ResourceShelter, ResourceMedical:
		return true
	}
	return false
}

type Availability string

const (
	AvailabilityHigh   Availability = "high"
	AvailabilityMedium Availability = "medium"
	AvailabilityLow    Availability = "low"
)

type ResourceLocation struct {
	Coordinate
	Address string `json:"address"`
}

type Resource struct {
	ID           string           `json:"id"`
	Type         ResourceType     `json:"type"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Location     ResourceLocation `json:"location"`
	Availability Availability     `json:"availability"`
}

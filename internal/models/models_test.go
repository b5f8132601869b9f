package models

import (
	"strings"
	"testing"
)

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"delhi", Coordinate{Latitude: 28.6139, Longitude: 77.2090}, false},
		{"poles and antimeridian", Coordinate{Latitude: -90, Longitude: 180}, false},
		{"latitude too high", Coordinate{Latitude: 90.5, Longitude: 0}, true},
		{"longitude too low", Coordinate{Latitude: 0, Longitude: -180.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmergencyContact_Validate(t *testing.T) {
	ok := EmergencyContact{Name: "Asha", Phone: "112"}
	if err := ok.Validate(); err != nil {
		t.Errorf("expected valid contact, got %v", err)
	}

	for _, c := range []EmergencyContact{
		{Phone: "112"},
		{Name: "Asha"},
		{Name: "Asha", Phone: strings.Repeat("9", 21)},
	} {
		if err := c.Validate(); err == nil {
			t.Errorf("expected %+v to be invalid", c)
		}
	}
}

func TestSeverityAndResourceType_Valid(t *testing.T) {
	if !SeverityHigh.Valid() || Severity("extreme").Valid() {
		t.Error("unexpected severity validity")
	}
	if !ResourceMedical.Valid() || ResourceType("fuel").Valid() {
		t.Error("unexpected resource type validity")
	}
}

package checklist

import (
	"fmt"
	"strings"

	"github.com/mr1hm/go-disaster-prep/internal/models"
)

var templates = map[string][]string{
	models.DisasterTypeFlood: {
		"Move valuables to higher levels",
		"Prepare emergency kit with food, water, and medications",
		"Disconnect electrical appliances",
		"Fill bathtub and containers with clean water",
		"Keep important documents in waterproof container",
	},
	models.DisasterTypeCyclone: {
		"Secure loose items in your yard/balcony",
		"Cover windows with storm shutters or plywood",
		"Charge mobile phones and power banks",
		"Prepare emergency lighting",
		"Store extra drinking water",
	},
	models.DisasterTypeEarthquake: {
		"Identify safe spots in each room",
		"Secure heavy furniture to walls",
		"Keep emergency whistle accessible",
		"Know how to shut off gas/water/electricity",
		"Prepare first aid kit",
	},
	models.DisasterTypeHeatwave: {
		"Stock up on oral rehydration salts",
		"Prepare cooling arrangements",
		"Plan daily activities to avoid midday heat",
		"Keep emergency contact numbers ready",
		"Check on elderly/vulnerable people",
	},
	models.DisasterTypeLandslide: {
		"Know evacuation routes",
		"Prepare emergency go-bag",
		"Monitor local news for warnings",
		"Keep documents ready for evacuation",
		"Have a family emergency plan",
	},
}

// DisasterTypes lists the categories that have a checklist template.
func DisasterTypes() []string {
	return []string{
		models.DisasterTypeFlood,
		models.DisasterTypeCyclone,
		models.DisasterTypeEarthquake,
		models.DisasterTypeHeatwave,
		models.DisasterTypeLandslide,
	}
}

// Template returns a fresh, unowned copy of the default checklist for
// disasterType with every item incomplete. Unknown types return an empty slice.
func Template(disasterType string) []models.ChecklistItem {
	tasks := templates[disasterType]
	items := make([]models.ChecklistItem, len(tasks))
	prefix := strings.ToLower(disasterType)
	for i, task := range tasks {
		items[i] = models.ChecklistItem{
			ID:           fmt.Sprintf("%s-%d", prefix, i+1),
			Task:         task,
			DisasterType: disasterType,
		}
	}
	return items
}

func hasTemplate(disasterType string) bool {
	_, ok := templates[disasterType]
	return ok
}

package ingestion

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/seed"
)

type gdacsRSS struct {
	Channel gdacsChannel `xml:"channel"`
}
type gdacsChannel struct {
	Items []gdacsItem `xml:"item"`
}
type gdacsItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	EventType   string `xml:"http://www.gdacs.org eventtype"`
	AlertLevel  string `xml:"http://www.gdacs.org alertlevel"`
	EventID     string `xml:"http://www.gdacs.org eventid"`
	Country     string `xml:"http://www.gdacs.org country"`
}

func (m *Manager) fetchGDACS(ctx context.Context, url string) ([]*models.DisasterAlert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data gdacsRSS
	if err := xml.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	now := m.clock.Now()
	alerts := make([]*models.DisasterAlert, 0, len(data.Channel.Items))
	for _, item := range data.Channel.Items {
		disasterType := mapGDACSEventType(item.EventType)
		timestamp, err := time.Parse(time.RFC1123, item.PubDate)
		if err != nil {
			slog.Warn("GDACS timestamp parsing failed", "id", item.EventID, "error", err.Error())
			timestamp = now
		}

		location := strings.TrimSpace(item.Country)
		if location == "" {
			location = item.Title
		}

		alerts = append(alerts, &models.DisasterAlert{
			ID:           "gdacs_" + item.EventID,
			Source:       sourceGDACS,
			Type:         disasterType,
			Severity:     alertLevelSeverity(item.AlertLevel),
			Location:     location,
			Timestamp:    timestamp.UTC(),
			Description:  strings.TrimSpace(item.Description),
			Instructions: seed.Instructions(disasterType),
			CreatedAt:    now,
		})
	}

	return alerts, nil
}

func mapGDACSEventType(eventType string) string {
	switch strings.ToUpper(eventType) {
	case "EQ":
		return models.DisasterTypeEarthquake
	case "TC":
		return models.DisasterTypeCyclone
	case "FL":
		return models.DisasterTypeFlood
	case "VO":
		return models.DisasterTypeVolcano
	case "TS":
		return models.DisasterTypeTsunami
	case "WF":
		return models.DisasterTypeWildfire
	case "DR":
		return models.DisasterTypeDrought
	default:
		return models.DisasterTypeUnknown
	}
}

func alertLevelSeverity(level string) models.Severity {
	switch strings.ToLower(level) {
	case "red":
		return models.SeverityHigh
	case "orange":
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/seed"
)

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
}
type usgsProperties struct {
	Mag     float64 `json:"mag"`
	Place   string  `json:"place"`
	Time    int64   `json:"time"` // unix millis
	Title   string  `json:"title"`
	Tsunami int     `json:"tsunami"` // 0 or 1
}

func (m *Manager) fetchUSGS(ctx context.Context, url string) ([]*models.DisasterAlert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	now := m.clock.Now()
	alerts := make([]*models.DisasterAlert, 0, len(data.Features))
	for _, f := range data.Features {
		alerts = append(alerts, &models.DisasterAlert{
			ID:           "usgs_" + f.ID,
			Source:       sourceUSGS,
			Type:         models.DisasterTypeEarthquake,
			Severity:     magnitudeSeverity(f.Properties.Mag, f.Properties.Tsunami == 1),
			Location:     f.Properties.Place,
			Timestamp:    time.UnixMilli(f.Properties.Time).UTC(),
			Description:  f.Properties.Title,
			Instructions: seed.Instructions(models.DisasterTypeEarthquake),
			CreatedAt:    now,
		})
	}

	return alerts, nil
}

func magnitudeSeverity(mag float64, tsunami bool) models.Severity {
	switch {
	case mag >= 6 || tsunami:
		return models.SeverityHigh
	case mag >= 4.5:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-prep/internal/broadcast"
	"github.com/mr1hm/go-disaster-prep/internal/config"
	"github.com/mr1hm/go-disaster-prep/internal/geo"
	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/observability"
	"github.com/mr1hm/go-disaster-prep/internal/worker"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

const (
	sourceUSGS  = "usgs"
	sourceGDACS = "gdacs"
)

type AlertStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Add(ctx context.Context, a *models.DisasterAlert) error
}

type Option func(*Manager)

func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.client = c }
}

func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// Manager polls the external feeds and pushes new alerts through a worker
// pool that dedupes, persists and broadcasts them.
type Manager struct {
	cfg         *config.Config
	store       AlertStore
	broadcaster *broadcast.Broadcaster
	metrics     *observability.Metrics
	client      *http.Client
	clock       clockwork.Clock
	pool        *worker.Pool[*models.DisasterAlert]
	wg          sync.WaitGroup
}

func NewManager(cfg *config.Config, store AlertStore, broadcaster *broadcast.Broadcaster, metrics *observability.Metrics, opts ...Option) *Manager {
	m := &Manager{
		cfg:         cfg,
		store:       store,
		broadcaster: broadcaster,
		metrics:     metrics,
		client:      &http.Client{Timeout: 15 * time.Second},
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewPool("ingestion", m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.process)
	m.pool.Start(ctx)

	if m.cfg.Sources.USGSEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, sourceUSGS, m.cfg.Sources.USGSURL, m.cfg.Sources.USGSPollInterval)
	}

	if m.cfg.Sources.GDACSEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, sourceGDACS, m.cfg.Sources.GDACSURL, m.cfg.Sources.GDACSPollInterval)
	}
}

func (m *Manager) process(ctx context.Context, alert *models.DisasterAlert) error {
	exists, err := m.store.Exists(ctx, alert.ID)
	if err != nil {
		slog.Error("error checking existence", "id", alert.ID, "error", err)
		return err
	}
	if exists {
		return nil
	}

	if err := m.store.Add(ctx, alert); err != nil {
		if errors.Is(err, e.ErrConflict) {
			return nil
		}
		slog.Error("error adding alert", "id", alert.ID, "error", err)
		return err
	}

	if m.metrics != nil {
		m.metrics.AlertsIngested.WithLabelValues(alert.Source).Inc()
	}
	if m.broadcaster != nil && shouldBroadcast(alert) {
		m.broadcaster.Broadcast(alert)
	}

	slog.Info("added alert", "id", alert.ID, "type", alert.Type, "source", alert.Source, "location", alert.Location)
	return nil
}

func (m *Manager) runPoller(ctx context.Context, source, url string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", source, "interval", interval)

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	m.poll(ctx, source, url)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", source)
			return
		case <-ticker.Chan():
			m.poll(ctx, source, url)
		}
	}
}

func (m *Manager) poll(ctx context.Context, source, url string) {
	slog.Debug("polling", "source", source)
	start := m.clock.Now()

	var (
		alerts []*models.DisasterAlert
		err    error
	)

	switch source {
	case sourceUSGS:
		alerts, err = m.fetchUSGS(ctx, url)
	case sourceGDACS:
		alerts, err = m.fetchGDACS(ctx, url)
	}
	if m.metrics != nil {
		m.metrics.PollDuration.WithLabelValues(source).Observe(m.clock.Since(start).Seconds())
	}
	if err != nil {
		slog.Error("poll failed", "source", source, "error", err)
		return
	}

	submitted := m.Ingest(ctx, alerts)
	slog.Debug("poll complete", "source", source, "fetched", len(alerts), "submitted", submitted)
}

// Ingest queues the alerts that fall inside the configured region and
// returns how many were queued. Before Start nothing is queued.
func (m *Manager) Ingest(ctx context.Context, alerts []*models.DisasterAlert) int {
	if m.pool == nil {
		slog.Warn("ingestion manager not started, dropping alerts", "count", len(alerts))
		return 0
	}
	n := 0
	for _, a := range alerts {
		if !m.inRegion(a) {
			continue
		}
		if err := m.pool.Submit(ctx, a); err != nil {
			slog.Warn("dropping alert", "id", a.ID, "error", err)
			return n
		}
		n++
	}
	return n
}

func (m *Manager) inRegion(a *models.DisasterAlert) bool {
	region := m.cfg.Sources.Region
	if region == "" {
		return true
	}
	return geo.MatchesLocation(models.Location{State: region}, *a)
}

// Stop waits for the pollers to exit, then drains the pool.
func (m *Manager) Stop() {
	m.wg.Wait()
	if m.pool != nil {
		m.pool.Stop()
	}
	slog.Info("ingestion manager stopped")
}

// shouldBroadcast keeps low severity alerts off the live stream.
func shouldBroadcast(a *models.DisasterAlert) bool {
	return a.Severity == models.SeverityMedium || a.Severity == models.SeverityHigh
}

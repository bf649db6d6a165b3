// Package dashboard is the view-model behind the live dashboard: an
// aggregate snapshot with a best-effort fallback, plus the activity
// feed fed by the realtime channel.
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

const (
	cacheKey = "dashboard_metrics"
	cacheTTL = 30 * time.Second

	feedLimit = 20
)

// API is the slice of the transport client the dashboard consumes.
type API interface {
	DashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error)
	ListPatients(ctx context.Context) ([]domain.Patient, error)
	ListBackups(ctx context.Context) ([]domain.Backup, error)
}

type Model struct {
	api    API
	cache  *gocache.Cache
	logger *slog.Logger

	mu   sync.Mutex
	feed []domain.ActivityEvent
}

func New(api API, logger *slog.Logger) *Model {
	return &Model{
		api:    api,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: logger.With("component", "dashboard"),
	}
}

// Metrics returns the dashboard aggregate. The primary source is
// GET /metrics; when that fails the model deliberately swallows the
// error and falls back to plain list counts, so the dashboard renders
// something rather than nothing. Results are cached briefly so bursts
// of realtime events don't hammer the API.
func (m *Model) Metrics(ctx context.Context) domain.DashboardMetrics {
	if v, ok := m.cache.Get(cacheKey); ok {
		return v.(domain.DashboardMetrics)
	}

	if agg, err := m.api.DashboardMetrics(ctx); err == nil {
		m.seedFeed(agg.Activity)
		m.cache.SetDefault(cacheKey, *agg)
		return *agg
	} else {
		m.logger.Warn("aggregate metrics unavailable, falling back to counts", "error", err)
	}

	out := m.fallback(ctx)
	m.cache.SetDefault(cacheKey, out)
	return out
}

// fallback mirrors the web dashboard's behavior when /metrics is
// missing: count the lists and take the newest backup date, ignoring
// individual failures.
func (m *Model) fallback(ctx context.Context) domain.DashboardMetrics {
	var out domain.DashboardMetrics

	if patients, err := m.api.ListPatients(ctx); err == nil {
		out.Patients = len(patients)
	}
	if backups, err := m.api.ListBackups(ctx); err == nil {
		out.Backups = len(backups)
		for i := range backups {
			at := backups[i].BackupDate
			if out.LastBackup == nil || at.After(*out.LastBackup) {
				t := at
				out.LastBackup = &t
			}
		}
	}
	return out
}

// Apply folds a pushed activity event into the feed and invalidates
// the cached aggregate, since the counts it reported are now stale.
func (m *Model) Apply(ev domain.ActivityEvent) {
	m.mu.Lock()
	m.feed = append([]domain.ActivityEvent{ev}, m.feed...)
	if len(m.feed) > feedLimit {
		m.feed = m.feed[:feedLimit]
	}
	m.mu.Unlock()

	m.cache.Delete(cacheKey)
}

// HandleRaw adapts Apply to the realtime channel's handler signature.
func (m *Model) HandleRaw(data json.RawMessage) {
	var ev domain.ActivityEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		m.logger.Warn("activity payload not understood", "error", err)
		return
	}
	m.Apply(ev)
}

// Feed returns a snapshot of the activity feed, newest first.
func (m *Model) Feed() []domain.ActivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ActivityEvent, len(m.feed))
	copy(out, m.feed)
	return out
}

// seedFeed takes the aggregate's bundled activity only while the feed
// is empty; pushed events stay authoritative afterwards.
func (m *Model) seedFeed(activity []domain.ActivityEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.feed) == 0 && len(activity) > 0 {
		m.feed = append(m.feed, activity...)
		if len(m.feed) > feedLimit {
			m.feed = m.feed[:feedLimit]
		}
	}
}

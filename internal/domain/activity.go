package domain

import "time"

// ActivityEvent is a server-pushed notification delivered over the
// realtime channel ("activity_update") and embedded in the dashboard
// aggregate's feed.
type ActivityEvent struct {
	Type    string    `json:"type"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// DashboardMetrics is the GET /metrics aggregate.
type DashboardMetrics struct {
	Patients   int               `json:"patients"`
	Backups    int               `json:"backups"`
	LastBackup *time.Time        `json:"lastBackup,omitempty"`
	Health     map[string]string `json:"health,omitempty"`
	Activity   []ActivityEvent   `json:"activity,omitempty"`
}

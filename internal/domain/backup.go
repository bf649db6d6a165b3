package domain

import "time"

// BackupScope selects how much data a triggered backup covers.
// The server accepts anything but "full" is the only scope the UI exposes.
type BackupScope string

const ScopeFull BackupScope = "full"

type Backup struct {
	ID          string      `json:"_id"`
	Scope       BackupScope `json:"scope,omitempty"`
	Status      string      `json:"status"`
	SnapshotKey string      `json:"snapshotKey,omitempty"`
	SizeBytes   int64       `json:"size,omitempty"`
	BackupDate  time.Time   `json:"backupDate"`
}

// Completed reports whether the backup artifact is downloadable.
func (b Backup) Completed() bool {
	return b.Status == "completed" || b.Status == "Completed"
}

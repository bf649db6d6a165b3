package transport

import (
	"context"
	"net/http"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

func (c *Client) ListBackups(ctx context.Context) ([]domain.Backup, error) {
	var out []domain.Backup
	if err := c.do(ctx, http.MethodGet, "/backups", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type runBackupRequest struct {
	Scope domain.BackupScope `json:"scope"`
}

// RunBackup triggers a backup. An empty scope defaults to "full".
func (c *Client) RunBackup(ctx context.Context, scope domain.BackupScope) (*domain.Backup, error) {
	if scope == "" {
		scope = domain.ScopeFull
	}

	var out domain.Backup
	if err := c.do(ctx, http.MethodPost, "/backups", runBackupRequest{Scope: scope}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadBackup fetches a completed backup artifact.
func (c *Client) DownloadBackup(ctx context.Context, id string) (*Blob, error) {
	return c.blob(ctx, "/backups/"+id+"/download")
}

// DashboardMetrics reads the aggregate the dashboard renders: counts,
// health map and recent activity.
func (c *Client) DashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	if err := c.do(ctx, http.MethodGet, "/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

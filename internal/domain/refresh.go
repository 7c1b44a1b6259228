package domain

import "time"

// RefreshJob re-runs a dataset's source import on a cron schedule.
// Only database and mongo datasets are refreshable; file uploads have
// no source to go back to.
type RefreshJob struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	DatasetID string    `json:"datasetId"`
	Schedule  string    `json:"schedule"` // cron expression
	Enabled   bool      `json:"enabled"`
	LastRunAt time.Time `json:"lastRunAt"`
	LastError string    `json:"lastError"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RefreshJobStore interface {
	CreateJob(j *RefreshJob) error
	GetJob(id string) (*RefreshJob, error)
	ListJobs(ownerID string) ([]RefreshJob, error)
	ListEnabledJobs() ([]RefreshJob, error)
	SetJobEnabled(id string, enabled bool) error
	MarkJobRun(id string, at time.Time, runErr string) error
	DeleteJob(id string) error
	DeleteJobsByDataset(datasetID string) error
}

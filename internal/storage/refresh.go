package storage

import (
	"database/sql"
	"fmt"
	"time"

	"chartdesk/internal/domain"
)

// RefreshJobStore implements domain.RefreshJobStore using SQLite.
type RefreshJobStore struct {
	db *DB
}

func NewRefreshJobStore(db *DB) *RefreshJobStore {
	return &RefreshJobStore{db: db}
}

const jobCols = `id, owner_id, dataset_id, schedule, enabled, last_run_at, last_error, created_at, updated_at`

func (s *RefreshJobStore) CreateJob(j *domain.RefreshJob) error {
	now := time.Now()
	j.CreatedAt = now
	j.UpdatedAt = now
	enabled := 0
	if j.Enabled {
		enabled = 1
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO refresh_jobs (id, owner_id, dataset_id, schedule, enabled, last_error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '', ?, ?)`,
		j.ID, j.OwnerID, j.DatasetID, j.Schedule, enabled, j.CreatedAt, j.UpdatedAt,
	)
	return err
}

func (s *RefreshJobStore) GetJob(id string) (*domain.RefreshJob, error) {
	row := s.db.conn.QueryRow(`SELECT `+jobCols+` FROM refresh_jobs WHERE id = ?`, id)
	j, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh job: %w", err)
	}
	return j, nil
}

func (s *RefreshJobStore) ListJobs(ownerID string) ([]domain.RefreshJob, error) {
	return s.list(`SELECT `+jobCols+` FROM refresh_jobs WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (s *RefreshJobStore) ListEnabledJobs() ([]domain.RefreshJob, error) {
	return s.list(`SELECT ` + jobCols + ` FROM refresh_jobs WHERE enabled = 1`)
}

func (s *RefreshJobStore) list(query string, args ...any) ([]domain.RefreshJob, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.RefreshJob
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func scanJob(scan func(...any) error) (*domain.RefreshJob, error) {
	j := &domain.RefreshJob{}
	var enabled int
	var lastRun sql.NullTime
	err := scan(&j.ID, &j.OwnerID, &j.DatasetID, &j.Schedule, &enabled, &lastRun, &j.LastError, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Enabled = enabled == 1
	if lastRun.Valid {
		j.LastRunAt = lastRun.Time
	}
	return j, nil
}

func (s *RefreshJobStore) SetJobEnabled(id string, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	_, err := s.db.conn.Exec(
		`UPDATE refresh_jobs SET enabled = ?, updated_at = ? WHERE id = ?`,
		v, time.Now(), id,
	)
	return err
}

func (s *RefreshJobStore) MarkJobRun(id string, at time.Time, runErr string) error {
	_, err := s.db.conn.Exec(
		`UPDATE refresh_jobs SET last_run_at = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		at, runErr, time.Now(), id,
	)
	return err
}

func (s *RefreshJobStore) DeleteJob(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM refresh_jobs WHERE id = ?`, id)
	return err
}

func (s *RefreshJobStore) DeleteJobsByDataset(datasetID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM refresh_jobs WHERE dataset_id = ?`, datasetID)
	return err
}

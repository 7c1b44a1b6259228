package storage

import (
	"database/sql"
	"fmt"
	"time"

	"chartdesk/internal/domain"
)

// ChartStore implements domain.ChartStore using SQLite.
type ChartStore struct {
	db *DB
}

func NewChartStore(db *DB) *ChartStore {
	return &ChartStore{db: db}
}

const chartCols = `id, owner_id, dataset_id, title, chart_type, x_axis, y_axis, series_json, created_at, updated_at`

func (s *ChartStore) CreateChart(c *domain.Chart) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.SeriesJSON == "" {
		c.SeriesJSON = "{}"
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO charts (`+chartCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.DatasetID, c.Title, c.Type, c.XAxis, c.YAxis, c.SeriesJSON, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *ChartStore) GetChart(id string) (*domain.Chart, error) {
	c := &domain.Chart{}
	err := s.db.conn.QueryRow(
		`SELECT `+chartCols+` FROM charts WHERE id = ?`, id,
	).Scan(&c.ID, &c.OwnerID, &c.DatasetID, &c.Title, &c.Type, &c.XAxis, &c.YAxis, &c.SeriesJSON, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chart: %w", err)
	}
	return c, nil
}

func (s *ChartStore) ListCharts(ownerID string) ([]domain.Chart, error) {
	return s.list(`SELECT `+chartCols+` FROM charts WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (s *ChartStore) ListChartsByDataset(datasetID string) ([]domain.Chart, error) {
	return s.list(`SELECT `+chartCols+` FROM charts WHERE dataset_id = ? ORDER BY created_at DESC`, datasetID)
}

func (s *ChartStore) list(query string, arg any) ([]domain.Chart, error) {
	rows, err := s.db.conn.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charts []domain.Chart
	for rows.Next() {
		var c domain.Chart
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.DatasetID, &c.Title, &c.Type, &c.XAxis, &c.YAxis, &c.SeriesJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

func (s *ChartStore) DeleteChart(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM charts WHERE id = ?`, id)
	return err
}

func (s *ChartStore) DeleteChartsByDataset(datasetID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM charts WHERE dataset_id = ?`, datasetID)
	return err
}

package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"chartdesk/internal/domain"
)

// DatasetStore implements domain.DatasetStore using SQLite. Row payloads
// are stored as JSON in a side table keyed by dataset id.
type DatasetStore struct {
	db *DB
}

func NewDatasetStore(db *DB) *DatasetStore {
	return &DatasetStore{db: db}
}

func (s *DatasetStore) CreateDataset(m *domain.DatasetMeta) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	columnsJSON, err := json.Marshal(m.Columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	if m.SourceConfig == "" {
		m.SourceConfig = "{}"
	}

	_, err = s.db.conn.Exec(
		`INSERT INTO datasets (id, owner_id, name, file_name, source_type, source_config, columns_json, row_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, m.Name, m.FileName, m.SourceType, m.SourceConfig, string(columnsJSON), m.RowCount, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (s *DatasetStore) GetDataset(id string) (*domain.DatasetMeta, error) {
	m := &domain.DatasetMeta{}
	var columnsJSON string
	err := s.db.conn.QueryRow(
		`SELECT id, owner_id, name, file_name, source_type, source_config, columns_json, row_count, created_at, updated_at
		 FROM datasets WHERE id = ?`, id,
	).Scan(&m.ID, &m.OwnerID, &m.Name, &m.FileName, &m.SourceType, &m.SourceConfig, &columnsJSON, &m.RowCount, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	if err := json.Unmarshal([]byte(columnsJSON), &m.Columns); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	return m, nil
}

func (s *DatasetStore) ListDatasets(ownerID string) ([]domain.DatasetMeta, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, owner_id, name, file_name, source_type, source_config, columns_json, row_count, created_at, updated_at
		 FROM datasets WHERE owner_id = ? ORDER BY created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []domain.DatasetMeta
	for rows.Next() {
		var m domain.DatasetMeta
		var columnsJSON string
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.FileName, &m.SourceType, &m.SourceConfig, &columnsJSON, &m.RowCount, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(columnsJSON), &m.Columns); err != nil {
			return nil, fmt.Errorf("unmarshal columns: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (s *DatasetStore) RenameDataset(id, name string) error {
	_, err := s.db.conn.Exec(
		`UPDATE datasets SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now(), id,
	)
	return err
}

func (s *DatasetStore) DeleteDataset(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM dataset_rows WHERE dataset_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	return err
}

func (s *DatasetStore) PutRows(datasetID string, columns []string, rowData []map[string]any) error {
	columnsJSON, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	rowsJSON, err := json.Marshal(rowData)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	_, err = s.db.conn.Exec(
		`INSERT INTO dataset_rows (dataset_id, rows_json) VALUES (?, ?)
		 ON CONFLICT(dataset_id) DO UPDATE SET rows_json = excluded.rows_json`,
		datasetID, string(rowsJSON),
	)
	if err != nil {
		return err
	}

	_, err = s.db.conn.Exec(
		`UPDATE datasets SET columns_json = ?, row_count = ?, updated_at = ? WHERE id = ?`,
		string(columnsJSON), len(rowData), time.Now(), datasetID,
	)
	return err
}

func (s *DatasetStore) GetRows(datasetID string) ([]string, []map[string]any, error) {
	m, err := s.GetDataset(datasetID)
	if err != nil {
		return nil, nil, err
	}

	var rowsJSON string
	err = s.db.conn.QueryRow(
		`SELECT rows_json FROM dataset_rows WHERE dataset_id = ?`, datasetID,
	).Scan(&rowsJSON)
	if err == sql.ErrNoRows {
		return m.Columns, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get rows: %w", err)
	}

	var rowData []map[string]any
	if err := json.Unmarshal([]byte(rowsJSON), &rowData); err != nil {
		return nil, nil, fmt.Errorf("unmarshal rows: %w", err)
	}
	return m.Columns, rowData, nil
}

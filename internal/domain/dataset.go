package domain

import "time"

// DatasetMeta describes an uploaded or imported dataset. The decoded rows
// live in a separate payload table and are loaded on demand.
type DatasetMeta struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	FileName     string    `json:"fileName"`
	SourceType   string    `json:"sourceType"` // "xlsx" | "csv" | "database" | "mongo"
	SourceConfig string    `json:"-"`          // JSON, for refreshable sources; may hold credentials
	Columns      []string  `json:"columns"`
	RowCount     int       `json:"rowCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type DatasetStore interface {
	CreateDataset(m *DatasetMeta) error
	GetDataset(id string) (*DatasetMeta, error)
	ListDatasets(ownerID string) ([]DatasetMeta, error)
	RenameDataset(id, name string) error
	DeleteDataset(id string) error

	// PutRows replaces the stored payload and updates the meta's
	// columns and row count.
	PutRows(datasetID string, columns []string, rows []map[string]any) error
	GetRows(datasetID string) ([]string, []map[string]any, error)
}

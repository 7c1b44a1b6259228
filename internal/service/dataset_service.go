package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"chartdesk/internal/chart"
	"chartdesk/internal/domain"
	"chartdesk/internal/importer"
	"chartdesk/internal/summary"
)

// ─────────────────────────────────────────────────────────────
// Dataset Service — upload, import, preview, CRUD
// ─────────────────────────────────────────────────────────────

// DatasetService owns dataset lifecycle: decoding uploads through the
// importer, persisting rows, and building previews.
type DatasetService struct {
	store   domain.DatasetStore
	charts  domain.ChartStore
	jobs    domain.RefreshJobStore
	dataDir string
}

func NewDatasetService(store domain.DatasetStore, charts domain.ChartStore, jobs domain.RefreshJobStore, dataDir string) *DatasetService {
	return &DatasetService{store: store, charts: charts, jobs: jobs, dataDir: dataDir}
}

// sourceTypeForFile maps an uploaded file name to a registered source type.
func sourceTypeForFile(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	case ".csv":
		return "csv", nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
	}
}

// CreateFromUpload stores the uploaded file under the data directory,
// decodes it through the matching source, and persists the dataset.
func (s *DatasetService) CreateFromUpload(ctx context.Context, ownerID, fileName string, r io.Reader) (*domain.DatasetMeta, error) {
	sourceType, err := sourceTypeForFile(fileName)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	dir := filepath.Join(s.dataDir, "uploads", ownerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, id+filepath.Ext(fileName))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	f.Close()

	cfg := importer.SourceConfig{"filePath": path}
	ds, err := importer.Collect(ctx, sourceType, cfg)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}

	cfgJSON, _ := json.Marshal(cfg)
	meta := &domain.DatasetMeta{
		ID:           id,
		OwnerID:      ownerID,
		Name:         strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		FileName:     fileName,
		SourceType:   sourceType,
		SourceConfig: string(cfgJSON),
		Columns:      ds.Columns,
		RowCount:     len(ds.Rows),
	}
	if err := s.persist(meta, ds); err != nil {
		os.Remove(path)
		return nil, err
	}
	return meta, nil
}

// CreateFromSource imports a dataset from a non-file source (database,
// mongo). The config is kept so refresh jobs can re-run the import.
func (s *DatasetService) CreateFromSource(ctx context.Context, ownerID, name, sourceType string, cfg importer.SourceConfig) (*domain.DatasetMeta, error) {
	ds, err := importer.Collect(ctx, sourceType, cfg)
	if err != nil {
		return nil, fmt.Errorf("import from %s: %w", sourceType, err)
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal source config: %w", err)
	}

	meta := &domain.DatasetMeta{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Name:         name,
		SourceType:   sourceType,
		SourceConfig: string(cfgJSON),
		Columns:      ds.Columns,
		RowCount:     len(ds.Rows),
	}
	if err := s.persist(meta, ds); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *DatasetService) persist(meta *domain.DatasetMeta, ds chart.Dataset) error {
	if err := s.store.CreateDataset(meta); err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := s.store.PutRows(meta.ID, ds.Columns, ds.Rows); err != nil {
		return fmt.Errorf("store rows: %w", err)
	}
	return nil
}

// Reimport re-runs a dataset's stored source config and replaces its
// rows. Used by refresh jobs.
func (s *DatasetService) Reimport(ctx context.Context, datasetID string) error {
	meta, err := s.store.GetDataset(datasetID)
	if err != nil {
		return err
	}

	var cfg importer.SourceConfig
	if err := json.Unmarshal([]byte(meta.SourceConfig), &cfg); err != nil {
		return fmt.Errorf("parse source config: %w", err)
	}

	ds, err := importer.Collect(ctx, meta.SourceType, cfg)
	if err != nil {
		return fmt.Errorf("reimport %s: %w", meta.Name, err)
	}
	return s.store.PutRows(meta.ID, ds.Columns, ds.Rows)
}

// PreviewResult is the first page of a dataset plus per-column stats.
type PreviewResult struct {
	Columns  []string                `json:"columns"`
	Rows     []map[string]any        `json:"rows"`
	RowCount int                     `json:"rowCount"`
	Summary  []summary.ColumnSummary `json:"summary"`
}

// Preview returns up to limit rows and column summaries over all rows.
func (s *DatasetService) Preview(ownerID, datasetID string, limit int) (*PreviewResult, error) {
	meta, err := s.getOwned(ownerID, datasetID)
	if err != nil {
		return nil, err
	}

	columns, rowData, err := s.store.GetRows(meta.ID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	page := rowData
	if len(page) > limit {
		page = page[:limit]
	}
	if page == nil {
		page = []map[string]any{}
	}

	return &PreviewResult{
		Columns:  columns,
		Rows:     page,
		RowCount: len(rowData),
		Summary:  summary.Summarize(columns, rowData),
	}, nil
}

func (s *DatasetService) List(ownerID string) ([]domain.DatasetMeta, error) {
	return s.store.ListDatasets(ownerID)
}

func (s *DatasetService) Get(ownerID, datasetID string) (*domain.DatasetMeta, error) {
	return s.getOwned(ownerID, datasetID)
}

func (s *DatasetService) Rename(ownerID, datasetID, name string) error {
	if _, err := s.getOwned(ownerID, datasetID); err != nil {
		return err
	}
	return s.store.RenameDataset(datasetID, name)
}

// Delete removes a dataset along with its saved charts and refresh jobs.
func (s *DatasetService) Delete(ownerID, datasetID string) error {
	if _, err := s.getOwned(ownerID, datasetID); err != nil {
		return err
	}
	if err := s.charts.DeleteChartsByDataset(datasetID); err != nil {
		return fmt.Errorf("delete charts: %w", err)
	}
	if err := s.jobs.DeleteJobsByDataset(datasetID); err != nil {
		return fmt.Errorf("delete refresh jobs: %w", err)
	}
	return s.store.DeleteDataset(datasetID)
}

// Rows loads the full dataset for aggregation.
func (s *DatasetService) Rows(ownerID, datasetID string) (chart.Dataset, error) {
	meta, err := s.getOwned(ownerID, datasetID)
	if err != nil {
		return chart.Dataset{}, err
	}
	columns, rowData, err := s.store.GetRows(meta.ID)
	if err != nil {
		return chart.Dataset{}, err
	}
	return chart.Dataset{Columns: columns, Rows: rowData}, nil
}

func (s *DatasetService) getOwned(ownerID, datasetID string) (*domain.DatasetMeta, error) {
	meta, err := s.store.GetDataset(datasetID)
	if err != nil {
		return nil, err
	}
	if meta.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return meta, nil
}

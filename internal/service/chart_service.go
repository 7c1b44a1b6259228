package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"chartdesk/internal/chart"
	"chartdesk/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Chart Service — aggregation and saved chart CRUD
// ─────────────────────────────────────────────────────────────

// ChartService runs aggregations over stored datasets and manages
// saved charts.
type ChartService struct {
	datasets *DatasetService
	store    domain.ChartStore
}

func NewChartService(datasets *DatasetService, store domain.ChartStore) *ChartService {
	return &ChartService{datasets: datasets, store: store}
}

// AggregateResult pairs the computed series with a renderable config.
type AggregateResult struct {
	Series chart.Series   `json:"series"`
	Config map[string]any `json:"config"`
}

// Aggregate loads the dataset and computes an ephemeral series for req.
func (s *ChartService) Aggregate(ownerID, datasetID string, req chart.Request) (*AggregateResult, error) {
	ds, err := s.datasets.Rows(ownerID, datasetID)
	if err != nil {
		return nil, err
	}

	series := chart.Aggregate(ds, req)
	return &AggregateResult{
		Series: series,
		Config: chart.BuildConfig(req, series),
	}, nil
}

// Save aggregates and persists the chart with a snapshot of its series.
func (s *ChartService) Save(ownerID, datasetID string, req chart.Request) (*domain.Chart, error) {
	result, err := s.Aggregate(ownerID, datasetID, req)
	if err != nil {
		return nil, err
	}

	seriesJSON, err := json.Marshal(result.Series)
	if err != nil {
		return nil, fmt.Errorf("marshal series: %w", err)
	}

	c := &domain.Chart{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		DatasetID:  datasetID,
		Title:      req.Title,
		Type:       req.Type,
		XAxis:      req.XAxis,
		YAxis:      req.YAxis,
		SeriesJSON: string(seriesJSON),
	}
	if err := s.store.CreateChart(c); err != nil {
		return nil, fmt.Errorf("create chart: %w", err)
	}
	return c, nil
}

func (s *ChartService) List(ownerID string) ([]domain.Chart, error) {
	return s.store.ListCharts(ownerID)
}

// SavedChart is a chart plus its decoded series snapshot.
type SavedChart struct {
	domain.Chart
	Series chart.Series   `json:"series"`
	Config map[string]any `json:"config"`
}

func (s *ChartService) Get(ownerID, chartID string) (*SavedChart, error) {
	c, err := s.getOwned(ownerID, chartID)
	if err != nil {
		return nil, err
	}

	var series chart.Series
	if err := json.Unmarshal([]byte(c.SeriesJSON), &series); err != nil {
		return nil, fmt.Errorf("unmarshal series: %w", err)
	}

	req := chart.Request{Type: c.Type, XAxis: c.XAxis, YAxis: c.YAxis, Title: c.Title}
	return &SavedChart{
		Chart:  *c,
		Series: series,
		Config: chart.BuildConfig(req, series),
	}, nil
}

func (s *ChartService) Delete(ownerID, chartID string) error {
	if _, err := s.getOwned(ownerID, chartID); err != nil {
		return err
	}
	return s.store.DeleteChart(chartID)
}

func (s *ChartService) getOwned(ownerID, chartID string) (*domain.Chart, error) {
	c, err := s.store.GetChart(chartID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

package domain

import "time"

// Chart is a saved chart configuration plus a snapshot of the series it
// produced when saved. The snapshot keeps saved charts renderable even
// after the source dataset is refreshed.
type Chart struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	DatasetID  string    `json:"datasetId"`
	Title      string    `json:"title"`
	Type       string    `json:"chartType"`
	XAxis      string    `json:"xAxis"`
	YAxis      string    `json:"yAxis"`
	SeriesJSON string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ChartStore interface {
	CreateChart(c *Chart) error
	GetChart(id string) (*Chart, error)
	ListCharts(ownerID string) ([]Chart, error)
	ListChartsByDataset(datasetID string) ([]Chart, error)
	DeleteChart(id string) error
	DeleteChartsByDataset(datasetID string) error
}

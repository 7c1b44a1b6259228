package importer

import (
	"context"

	"chartdesk/internal/chart"
)

// Collect discovers the schema of a source, drains its record channel,
// and assembles the result into a dataset ready for aggregation.
// Column order follows the discovered schema.
func Collect(ctx context.Context, sourceType string, cfg SourceConfig) (chart.Dataset, error) {
	src, err := GetSource(sourceType)
	if err != nil {
		return chart.Dataset{}, err
	}

	schema, err := src.Discover(ctx, cfg)
	if err != nil {
		return chart.Dataset{}, err
	}

	records, errCh := src.Read(ctx, cfg)

	ds := chart.Dataset{Columns: schema.FieldNames(), Rows: []chart.Row{}}
	for rec := range records {
		ds.Rows = append(ds.Rows, rec.Data)
	}
	if err := <-errCh; err != nil {
		return chart.Dataset{}, err
	}
	if err := ctx.Err(); err != nil {
		return chart.Dataset{}, err
	}

	return ds, nil
}

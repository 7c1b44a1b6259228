package sources

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"chartdesk/internal/importer"
)

// ── XLSX File Source ────────────────────────────────────────
// Reads records from an uploaded Excel workbook. Only the configured
// sheet (default: the first one) is imported; the first row supplies
// column names.

type xlsxFileSource struct{}

func init() { importer.RegisterSource(&xlsxFileSource{}) }

func (s *xlsxFileSource) Spec() importer.SourceSpec {
	return importer.SourceSpec{
		Type:  "xlsx",
		Label: "Excel Workbook",
		ConfigFields: []importer.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Absolute path to the .xlsx file"},
			{Key: "sheet", Label: "Sheet", Type: "string", Required: false, Help: "Sheet name (default: first sheet)"},
		},
	}
}

func (s *xlsxFileSource) Discover(ctx context.Context, cfg importer.SourceConfig) (*importer.Schema, error) {
	headers, _, err := readXLSXFile(cfg)
	if err != nil {
		return nil, err
	}

	schema := &importer.Schema{Fields: make([]importer.Field, len(headers))}
	for i, h := range headers {
		schema.Fields[i] = importer.Field{Name: h, Type: "text"}
	}
	return schema, nil
}

func (s *xlsxFileSource) Read(ctx context.Context, cfg importer.SourceConfig) (<-chan importer.Record, <-chan error) {
	out := make(chan importer.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		headers, rows, err := readXLSXFile(cfg)
		if err != nil {
			errCh <- err
			return
		}

		for _, row := range rows {
			data := make(map[string]any, len(headers))
			for j, h := range headers {
				if j < len(row) {
					data[h] = inferValue(row[j])
				}
			}
			select {
			case out <- importer.Record{Data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errCh
}

func readXLSXFile(cfg importer.SourceConfig) ([]string, [][]string, error) {
	filePath, _ := cfg["filePath"].(string)
	if filePath == "" {
		return nil, nil, fmt.Errorf("filePath is required")
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, _ := cfg["sheet"].(string)
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// GetRows returns cells as formatted strings, which keeps the value
	// inference shared with the csv source.
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	headers := records[0]
	for i, h := range headers {
		if h == "" {
			headers[i] = fmt.Sprintf("col_%d", i+1)
		}
	}

	return headers, records[1:], nil
}

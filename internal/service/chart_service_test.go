package service_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"chartdesk/internal/chart"
	"chartdesk/internal/domain"
	_ "chartdesk/internal/importer/sources"
)

const salesCSV = "region,sales\nA,10\nB,20\nA,5\n"

func TestDatasetService_UploadAndPreview(t *testing.T) {
	_, auth, datasets, _, _, _ := newTestStack(t)
	u, err := auth.Register("u@x.io", "password123")
	if err != nil {
		t.Fatal(err)
	}

	meta, err := datasets.CreateFromUpload(context.Background(), u.ID, "sales.csv", strings.NewReader(salesCSV))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if meta.Name != "sales" {
		t.Errorf("name = %q, want file name without extension", meta.Name)
	}
	if meta.RowCount != 3 {
		t.Errorf("row count = %d, want 3", meta.RowCount)
	}
	if !reflect.DeepEqual(meta.Columns, []string{"region", "sales"}) {
		t.Errorf("columns = %v", meta.Columns)
	}

	preview, err := datasets.Preview(u.ID, meta.ID, 2)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(preview.Rows) != 2 {
		t.Errorf("preview rows = %d, want limit 2", len(preview.Rows))
	}
	if preview.RowCount != 3 {
		t.Errorf("preview row count = %d, want 3", preview.RowCount)
	}
	// Summary covers all rows, not just the preview page.
	for _, col := range preview.Summary {
		if col.Name == "sales" && col.Sum.String() != "35" {
			t.Errorf("sales sum = %s, want 35", col.Sum)
		}
	}
}

func TestDatasetService_RejectsUnknownExtension(t *testing.T) {
	_, auth, datasets, _, _, _ := newTestStack(t)
	u, _ := auth.Register("u@x.io", "password123")

	_, err := datasets.CreateFromUpload(context.Background(), u.ID, "notes.pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}

func TestDatasetService_OwnershipEnforced(t *testing.T) {
	_, auth, datasets, _, _, _ := newTestStack(t)
	owner, _ := auth.Register("owner@x.io", "password123")
	other, _ := auth.Register("other@x.io", "password123")

	meta, err := datasets.CreateFromUpload(context.Background(), owner.ID, "sales.csv", strings.NewReader(salesCSV))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := datasets.Preview(other.ID, meta.ID, 10); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("preview err = %v, want ErrForbidden", err)
	}
	if err := datasets.Delete(other.ID, meta.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("delete err = %v, want ErrForbidden", err)
	}
}

func TestChartService_AggregateAndSave(t *testing.T) {
	_, auth, datasets, charts, _, _ := newTestStack(t)
	u, _ := auth.Register("u@x.io", "password123")

	meta, err := datasets.CreateFromUpload(context.Background(), u.ID, "sales.csv", strings.NewReader(salesCSV))
	if err != nil {
		t.Fatal(err)
	}

	req := chart.Request{Type: chart.TypePie, XAxis: "region", YAxis: "sales", Title: "By region"}
	result, err := charts.Aggregate(u.ID, meta.ID, req)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !reflect.DeepEqual(result.Series.Labels, []string{"A", "B"}) {
		t.Errorf("labels = %v", result.Series.Labels)
	}
	if !reflect.DeepEqual(result.Series.Values, []float64{15, 20}) {
		t.Errorf("values = %v", result.Series.Values)
	}

	saved, err := charts.Save(u.ID, meta.ID, req)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := charts.Get(u.ID, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got.Series, result.Series) {
		t.Errorf("series snapshot = %+v, want %+v", got.Series, result.Series)
	}
	if got.Title != "By region" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestDatasetService_DeleteCascadesCharts(t *testing.T) {
	_, auth, datasets, charts, _, _ := newTestStack(t)
	u, _ := auth.Register("u@x.io", "password123")

	meta, err := datasets.CreateFromUpload(context.Background(), u.ID, "sales.csv", strings.NewReader(salesCSV))
	if err != nil {
		t.Fatal(err)
	}
	req := chart.Request{Type: chart.TypeBar, XAxis: "region", YAxis: "sales"}
	if _, err := charts.Save(u.ID, meta.ID, req); err != nil {
		t.Fatal(err)
	}

	if err := datasets.Delete(u.ID, meta.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := charts.List(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("charts after dataset delete = %d, want 0", len(remaining))
	}
}

func TestRefreshService_UploadNotRefreshable(t *testing.T) {
	_, auth, datasets, _, refresh, _ := newTestStack(t)
	u, _ := auth.Register("u@x.io", "password123")

	meta, err := datasets.CreateFromUpload(context.Background(), u.ID, "sales.csv", strings.NewReader(salesCSV))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := refresh.CreateJob(u.ID, meta.ID, "@hourly"); err == nil {
		t.Fatal("expected error scheduling refresh for an uploaded file")
	}
}

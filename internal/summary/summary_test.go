package summary_test

import (
	"testing"

	"chartdesk/internal/summary"
)

func TestSummarize_NumericColumn(t *testing.T) {
	rows := []map[string]any{
		{"amount": "0.1"},
		{"amount": "0.2"},
		{"amount": "0.3"},
	}

	got := summary.Summarize([]string{"amount"}, rows)
	if len(got) != 1 {
		t.Fatalf("summaries = %d, want 1", len(got))
	}

	s := got[0]
	if s.Count != 3 || s.Numeric != 3 {
		t.Errorf("count/numeric = %d/%d, want 3/3", s.Count, s.Numeric)
	}
	// Exact decimal sum, not 0.6000000000000001.
	if s.Sum.String() != "0.6" {
		t.Errorf("sum = %s, want 0.6", s.Sum)
	}
	if s.Mean.String() != "0.2" {
		t.Errorf("mean = %s, want 0.2", s.Mean)
	}
	if s.Min.String() != "0.1" || s.Max.String() != "0.3" {
		t.Errorf("min/max = %s/%s", s.Min, s.Max)
	}
}

func TestSummarize_MixedColumn(t *testing.T) {
	rows := []map[string]any{
		{"v": "10"},
		{"v": "n/a"},
		{"v": nil},
		{"v": float64(5)},
	}

	s := summary.Summarize([]string{"v"}, rows)[0]
	if s.Count != 3 {
		t.Errorf("count = %d, want 3 (nil excluded)", s.Count)
	}
	if s.Numeric != 2 {
		t.Errorf("numeric = %d, want 2", s.Numeric)
	}
	if s.Sum.String() != "15" {
		t.Errorf("sum = %s, want 15", s.Sum)
	}
}

func TestSummarize_TextColumn(t *testing.T) {
	rows := []map[string]any{{"name": "alpha"}, {"name": "beta"}}

	s := summary.Summarize([]string{"name"}, rows)[0]
	if s.Count != 2 || s.Numeric != 0 {
		t.Errorf("count/numeric = %d/%d, want 2/0", s.Count, s.Numeric)
	}
	if !s.Sum.IsZero() {
		t.Errorf("sum = %s, want 0", s.Sum)
	}
}

func TestSummarize_EmptyDataset(t *testing.T) {
	got := summary.Summarize([]string{"a", "b"}, nil)
	if len(got) != 2 {
		t.Fatalf("summaries = %d, want one per column", len(got))
	}
	for _, s := range got {
		if s.Count != 0 {
			t.Errorf("column %s count = %d, want 0", s.Name, s.Count)
		}
	}
}

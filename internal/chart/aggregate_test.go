package chart_test

import (
	"reflect"
	"testing"

	"chartdesk/internal/chart"
)

func salesDataset() chart.Dataset {
	return chart.Dataset{
		Columns: []string{"region", "sales"},
		Rows: []chart.Row{
			{"region": "A", "sales": "10"},
			{"region": "B", "sales": "20"},
			{"region": "A", "sales": "5"},
		},
	}
}

func TestAggregate_PieSumsByKey(t *testing.T) {
	s := chart.Aggregate(salesDataset(), chart.Request{Type: chart.TypePie, XAxis: "region", YAxis: "sales"})

	if !reflect.DeepEqual(s.Labels, []string{"A", "B"}) {
		t.Fatalf("labels = %v, want [A B]", s.Labels)
	}
	if !reflect.DeepEqual(s.Values, []float64{15, 20}) {
		t.Fatalf("values = %v, want [15 20]", s.Values)
	}
}

func TestAggregate_PieKeyOrderIsFirstSeen(t *testing.T) {
	ds := chart.Dataset{Rows: []chart.Row{
		{"k": "z", "v": 1},
		{"k": "a", "v": 2},
		{"k": "z", "v": 3},
		{"k": "m", "v": 4},
	}}
	s := chart.Aggregate(ds, chart.Request{Type: chart.TypePie, XAxis: "k", YAxis: "v"})

	if !reflect.DeepEqual(s.Labels, []string{"z", "a", "m"}) {
		t.Fatalf("labels = %v, want first-seen order [z a m]", s.Labels)
	}
}

func TestAggregate_PieTotalMatchesColumnTotal(t *testing.T) {
	ds := chart.Dataset{Rows: []chart.Row{
		{"k": "a", "v": "1.5"},
		{"k": "b", "v": 2},
		{"k": "a", "v": "junk"}, // counts as 0
		{"k": "c", "v": nil},    // counts as 0
	}}
	s := chart.Aggregate(ds, chart.Request{Type: chart.TypePie, XAxis: "k", YAxis: "v"})

	var total float64
	for _, v := range s.Values {
		total += v
	}
	if total != 3.5 {
		t.Errorf("total = %v, want 3.5", total)
	}
	if len(s.Labels) != 3 {
		t.Errorf("distinct keys = %d, want 3", len(s.Labels))
	}
}

func TestAggregate_BarKeepsDuplicateLabels(t *testing.T) {
	s := chart.Aggregate(salesDataset(), chart.Request{Type: chart.TypeBar, XAxis: "region", YAxis: "sales"})

	if !reflect.DeepEqual(s.Labels, []string{"A", "B", "A"}) {
		t.Fatalf("labels = %v, want [A B A] with no merging", s.Labels)
	}
	if !reflect.DeepEqual(s.Values, []float64{10, 20, 5}) {
		t.Fatalf("values = %v, want [10 20 5]", s.Values)
	}
}

func TestAggregate_PointChartsEmitOnePointPerRow(t *testing.T) {
	ds := salesDataset()
	for _, typ := range []string{chart.TypeBar, chart.TypeLine, chart.TypeScatter} {
		s := chart.Aggregate(ds, chart.Request{Type: typ, XAxis: "region", YAxis: "sales"})
		if len(s.Labels) != len(ds.Rows) || len(s.Values) != len(ds.Rows) {
			t.Errorf("%s: got %d labels / %d values, want %d each", typ, len(s.Labels), len(s.Values), len(ds.Rows))
		}
	}
}

func TestAggregate_NonNumericCellCountsAsZero(t *testing.T) {
	ds := chart.Dataset{Rows: []chart.Row{
		{"region": "A", "sales": "abc"},
		{"region": "B", "sales": "20"},
	}}

	bar := chart.Aggregate(ds, chart.Request{Type: chart.TypeBar, XAxis: "region", YAxis: "sales"})
	if bar.Values[0] != 0 {
		t.Errorf("bar value for unparseable cell = %v, want 0", bar.Values[0])
	}

	pie := chart.Aggregate(ds, chart.Request{Type: chart.TypePie, XAxis: "region", YAxis: "sales"})
	if pie.Values[0] != 0 {
		t.Errorf("pie sum for unparseable cell = %v, want 0", pie.Values[0])
	}
}

func TestAggregate_MissingCells(t *testing.T) {
	ds := chart.Dataset{Rows: []chart.Row{
		{"region": "A"},          // y absent
		{"sales": "7"},           // x absent
		{"region": "A", "sales": "3"},
	}}
	s := chart.Aggregate(ds, chart.Request{Type: chart.TypeBar, XAxis: "region", YAxis: "sales"})

	if !reflect.DeepEqual(s.Labels, []string{"A", "", "A"}) {
		t.Errorf("labels = %v, want [A  A] with empty label for missing x", s.Labels)
	}
	if !reflect.DeepEqual(s.Values, []float64{0, 7, 3}) {
		t.Errorf("values = %v, want [0 7 3]", s.Values)
	}
}

func TestAggregate_IncompleteConfigIsEmpty(t *testing.T) {
	ds := salesDataset()
	cases := []chart.Request{
		{Type: chart.TypeBar, YAxis: "sales"},
		{Type: chart.TypeBar, XAxis: "region"},
		{Type: "sunburst", XAxis: "region", YAxis: "sales"},
	}
	for _, req := range cases {
		s := chart.Aggregate(ds, req)
		if len(s.Labels) != 0 || len(s.Values) != 0 {
			t.Errorf("request %+v: got %d points, want empty series", req, len(s.Values))
		}
	}
}

func TestAggregate_EmptyDataset(t *testing.T) {
	s := chart.Aggregate(chart.Dataset{}, chart.Request{Type: chart.TypePie, XAxis: "k", YAxis: "v"})
	if len(s.Labels) != 0 || len(s.Values) != 0 {
		t.Fatalf("empty dataset produced %d points", len(s.Values))
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	ds := salesDataset()
	req := chart.Request{Type: chart.TypePie, XAxis: "region", YAxis: "sales"}

	first := chart.Aggregate(ds, req)
	second := chart.Aggregate(ds, req)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregate is not idempotent: %+v vs %+v", first, second)
	}
}

func TestAggregate_LabelCoercion(t *testing.T) {
	ds := chart.Dataset{Rows: []chart.Row{
		{"x": 3.5, "y": 1},
		{"x": true, "y": 1},
		{"x": "plain", "y": 1},
	}}
	s := chart.Aggregate(ds, chart.Request{Type: chart.TypeLine, XAxis: "x", YAxis: "y"})

	want := []string{"3.5", "true", "plain"}
	if !reflect.DeepEqual(s.Labels, want) {
		t.Fatalf("labels = %v, want %v", s.Labels, want)
	}
}

package chart

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ── Aggregator ──────────────────────────────────────────────
// Pure transform from a row-oriented dataset plus an axis selection
// into a chart-ready series. No I/O, no shared state; safe to call
// from any number of goroutines.

// Chart types accepted by Aggregate.
const (
	TypeBar     = "bar"
	TypeLine    = "line"
	TypePie     = "pie"
	TypeScatter = "scatter"
)

// Row is one decoded spreadsheet row. Rows in the same dataset are not
// guaranteed to share identical column sets.
type Row = map[string]any

// Dataset is an ordered sequence of rows plus the column names reported
// by the decoder (header order for csv/xlsx, first document for mongo).
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Request is a user-chosen chart type and axis-column mapping.
type Request struct {
	Type  string `json:"chartType"`
	XAxis string `json:"xAxis"`
	YAxis string `json:"yAxis"`
	Title string `json:"title"`
}

// Series holds parallel label/value slices. For bar, line and scatter
// charts there is one point per source row, in row order. For pie charts
// Labels holds each distinct x value once, in first-seen order, and
// Values the per-label sum.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Aggregate computes the series for req over ds. An unselected axis or an
// unknown chart type yields an empty series rather than an error: the
// config is simply not complete enough to chart yet.
func Aggregate(ds Dataset, req Request) Series {
	if req.XAxis == "" || req.YAxis == "" {
		return Series{}
	}

	switch req.Type {
	case TypePie:
		return aggregatePie(ds, req)
	case TypeBar, TypeLine, TypeScatter:
		return aggregatePoints(ds, req)
	default:
		return Series{}
	}
}

// aggregatePie groups rows by the string form of the x cell, keeping
// first-seen key order, and sums the coerced y cell per key.
func aggregatePie(ds Dataset, req Request) Series {
	sums := make(map[string]float64)
	order := make([]string, 0, len(ds.Rows))

	for _, row := range ds.Rows {
		key := cellLabel(row[req.XAxis])
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += cellNumber(row[req.YAxis])
	}

	s := Series{Labels: order, Values: make([]float64, len(order))}
	for i, key := range order {
		s.Values[i] = sums[key]
	}
	return s
}

// aggregatePoints emits one point per row in row order. Duplicate labels
// are not merged; that is the pie chart's job, not this one's.
func aggregatePoints(ds Dataset, req Request) Series {
	s := Series{
		Labels: make([]string, 0, len(ds.Rows)),
		Values: make([]float64, 0, len(ds.Rows)),
	}
	for _, row := range ds.Rows {
		s.Labels = append(s.Labels, cellLabel(row[req.XAxis]))
		s.Values = append(s.Values, cellNumber(row[req.YAxis]))
	}
	return s
}

// cellNumber coerces a cell to float64. Anything that does not parse as
// a number counts as zero; malformed cells never abort an aggregation.
func cellNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// cellLabel renders a cell as a label. An absent cell becomes "".
func cellLabel(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

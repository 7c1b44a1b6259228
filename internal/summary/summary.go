// Package summary computes per-column statistics for dataset previews.
// Sums and means use decimal arithmetic so money columns don't pick up
// float drift in the preview totals.
package summary

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ColumnSummary describes one column of a dataset.
type ColumnSummary struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`   // cells present (non-nil)
	Numeric int             `json:"numeric"` // cells that parsed as numbers
	Sum     decimal.Decimal `json:"sum"`
	Mean    decimal.Decimal `json:"mean"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
}

// Summarize computes a ColumnSummary per column, in column order.
// Non-numeric cells count toward Count but not toward the numeric stats;
// a column with no numeric cells reports zero Sum/Mean/Min/Max.
func Summarize(columns []string, rows []map[string]any) []ColumnSummary {
	out := make([]ColumnSummary, len(columns))
	for i, col := range columns {
		out[i] = summarizeColumn(col, rows)
	}
	return out
}

func summarizeColumn(col string, rows []map[string]any) ColumnSummary {
	s := ColumnSummary{Name: col}

	for _, row := range rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		s.Count++

		d, ok := cellDecimal(v)
		if !ok {
			continue
		}

		if s.Numeric == 0 {
			s.Min = d
			s.Max = d
		} else {
			if d.LessThan(s.Min) {
				s.Min = d
			}
			if d.GreaterThan(s.Max) {
				s.Max = d
			}
		}
		s.Numeric++
		s.Sum = s.Sum.Add(d)
	}

	if s.Numeric > 0 {
		s.Mean = s.Sum.DivRound(decimal.NewFromInt(int64(s.Numeric)), 6)
	}
	return s
}

func cellDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

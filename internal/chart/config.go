package chart

// ── Chart.js config builder ─────────────────────────────────
// The frontend renders whatever this emits verbatim, so the shape
// follows the Chart.js data/options contract.

var palette = []string{
	"rgba(59, 130, 246, 0.6)",
	"rgba(16, 185, 129, 0.6)",
	"rgba(249, 115, 22, 0.6)",
	"rgba(139, 92, 246, 0.6)",
	"rgba(236, 72, 153, 0.6)",
	"rgba(234, 179, 8, 0.6)",
}

// BuildConfig maps an aggregated series into a renderable Chart.js
// configuration. Pie charts get one color per slice; the other types
// use a single series color.
func BuildConfig(req Request, s Series) map[string]any {
	dataset := map[string]any{
		"label": req.YAxis,
		"data":  s.Values,
	}
	if req.Type == TypePie {
		colors := make([]string, len(s.Values))
		for i := range colors {
			colors[i] = palette[i%len(palette)]
		}
		dataset["backgroundColor"] = colors
	} else {
		dataset["backgroundColor"] = palette[0]
	}

	return map[string]any{
		"type": req.Type,
		"data": map[string]any{
			"labels":   s.Labels,
			"datasets": []map[string]any{dataset},
		},
		"options": map[string]any{
			"responsive": true,
			"plugins": map[string]any{
				"title": map[string]any{
					"display": req.Title != "",
					"text":    req.Title,
				},
			},
			"scales": axisTitles(req),
		},
	}
}

func axisTitles(req Request) map[string]any {
	if req.Type == TypePie {
		return map[string]any{}
	}
	return map[string]any{
		"x": map[string]any{
			"title": map[string]any{"display": true, "text": req.XAxis},
		},
		"y": map[string]any{
			"title": map[string]any{"display": true, "text": req.YAxis},
		},
	}
}

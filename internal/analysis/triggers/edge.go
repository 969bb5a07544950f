package triggers

import (
	"github.com/montanaflynn/stats"

	"MakerLens/internal/domain/models"
)

// ExecutionQuality measures fill prices against the external price log:
// positive edge means the fill was cheaper than the market was showing.
type ExecutionQuality struct {
	FillsWithEdge int     `json:"fills_with_edge"`
	Better        int     `json:"better"`
	Worse         int     `json:"worse"`
	Equal         int     `json:"equal"`
	MeanEdge      float64 `json:"mean_edge"`
	MedianEdge    float64 `json:"median_edge"`
	BetterFrac    float64 `json:"better_frac"`
}

// AnalyzeExecutionQuality aggregates per-fill edge over resolved fills.
// Fills without a price-log observation near their timestamp carry no edge
// and are excluded.
func AnalyzeExecutionQuality(fills []models.ClassifiedFill) *ExecutionQuality {
	q := &ExecutionQuality{}
	var edges []float64
	for i := range fills {
		f := &fills[i]
		if !f.Resolved() || f.EdgeVsMarket == nil {
			continue
		}
		q.FillsWithEdge++
		e := *f.EdgeVsMarket
		edges = append(edges, e)
		switch {
		case e > 0:
			q.Better++
		case e < 0:
			q.Worse++
		default:
			q.Equal++
		}
	}
	if q.FillsWithEdge == 0 {
		return q
	}
	q.MeanEdge, _ = stats.Mean(edges)
	q.MedianEdge, _ = stats.Median(edges)
	q.BetterFrac = float64(q.Better) / float64(q.FillsWithEdge)
	return q
}

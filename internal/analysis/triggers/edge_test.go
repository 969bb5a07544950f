package triggers

import (
	"math"
	"testing"

	"MakerLens/internal/domain/models"
)

func edgeFill(label models.Label, edge *float64) models.ClassifiedFill {
	return models.ClassifiedFill{Label: label, EdgeVsMarket: edge}
}

func edgePtr(v float64) *float64 { return &v }

func TestAnalyzeExecutionQuality(t *testing.T) {
	fills := []models.ClassifiedFill{
		edgeFill(models.Maker, edgePtr(0.02)),
		edgeFill(models.Maker, edgePtr(0.01)),
		edgeFill(models.Taker, edgePtr(-0.01)),
		edgeFill(models.Maker, edgePtr(0)),
		// no price log near this fill
		edgeFill(models.Taker, nil),
		// unresolved fills carry no execution signal
		edgeFill(models.Unclassified, edgePtr(0.5)),
	}

	q := AnalyzeExecutionQuality(fills)
	if q.FillsWithEdge != 4 {
		t.Fatalf("fills with edge = %d, want 4", q.FillsWithEdge)
	}
	if q.Better != 2 || q.Worse != 1 || q.Equal != 1 {
		t.Fatalf("better/worse/equal = %d/%d/%d, want 2/1/1", q.Better, q.Worse, q.Equal)
	}
	if math.Abs(q.MeanEdge-0.005) > 1e-9 {
		t.Fatalf("mean edge = %v, want 0.005", q.MeanEdge)
	}
	if math.Abs(q.MedianEdge-0.005) > 1e-9 {
		t.Fatalf("median edge = %v, want 0.005", q.MedianEdge)
	}
	if q.BetterFrac != 0.5 {
		t.Fatalf("better frac = %v, want 0.5", q.BetterFrac)
	}
}

func TestAnalyzeExecutionQualityEmpty(t *testing.T) {
	q := AnalyzeExecutionQuality(nil)
	if q == nil || q.FillsWithEdge != 0 || q.MeanEdge != 0 {
		t.Fatalf("empty input: %+v", q)
	}
}

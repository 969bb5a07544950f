package triggers

import (
	"testing"

	"MakerLens/internal/domain/models"
)

func cfill(label models.Label, imbalance, elapsed float64) *models.ClassifiedFill {
	return &models.ClassifiedFill{
		Label:       label,
		Imbalance:   imbalance,
		ElapsedFrac: elapsed,
	}
}

func TestBucketsIndex(t *testing.T) {
	b := Buckets{Edges: []float64{0.05, 0.15, 0.30}}

	tests := []struct {
		v    float64
		want int
	}{
		{0, 0},
		{0.049, 0},
		{0.05, 1}, // half-open: the edge belongs to the upper bucket
		{0.15, 2},
		{0.29, 2},
		{0.30, 3},
		{5.0, 3},
	}
	for _, tt := range tests {
		if got := b.Index(tt.v); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
	if b.Count() != 4 {
		t.Errorf("Count() = %d, want 4", b.Count())
	}
}

func TestBucketsLabel(t *testing.T) {
	b := Buckets{Edges: []float64{0.05, 0.15}}
	want := []string{"[0.00, 0.05)", "[0.05, 0.15)", "[0.15, +)"}
	for i, w := range want {
		if got := b.Label(i); got != w {
			t.Errorf("Label(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestAggressionTableAdd(t *testing.T) {
	imb := Buckets{Edges: []float64{0.1, 0.3}}
	tim := Buckets{Edges: []float64{0.5}}
	tbl := NewAggressionTable(imb, tim)

	tbl.Add(cfill(models.Taker, 0.05, 0.2))
	tbl.Add(cfill(models.Maker, 0.05, 0.2))
	tbl.Add(cfill(models.Taker, 0.35, 0.8))
	tbl.Add(cfill(models.Unclassified, 0.05, 0.2)) // excluded

	if got := tbl.ByImbalance[0].Rate(); got != 0.5 {
		t.Errorf("low-imbalance rate = %v, want 0.5", got)
	}
	if tbl.ByImbalance[0].Resolved != 2 {
		t.Errorf("low-imbalance resolved = %d, want 2 (unclassified excluded)", tbl.ByImbalance[0].Resolved)
	}
	if got := tbl.Cross[2][1].Rate(); got != 1.0 {
		t.Errorf("high-imbalance late rate = %v, want 1.0", got)
	}
}

// Reducing per-window partials in any order gives the same table as a
// single sequential accumulation.
func TestAggressionTableMergeOrderIndependent(t *testing.T) {
	imb := Buckets{Edges: []float64{0.1, 0.3}}
	tim := Buckets{Edges: []float64{0.33, 0.66}}

	fills := []*models.ClassifiedFill{
		cfill(models.Taker, 0.05, 0.1),
		cfill(models.Maker, 0.2, 0.4),
		cfill(models.Taker, 0.5, 0.9),
		cfill(models.Maker, 0.05, 0.7),
		cfill(models.Taker, 0.2, 0.2),
	}

	sequential := NewAggressionTable(imb, tim)
	for _, f := range fills {
		sequential.Add(f)
	}

	partialA := NewAggressionTable(imb, tim)
	partialB := NewAggressionTable(imb, tim)
	for i, f := range fills {
		if i%2 == 0 {
			partialA.Add(f)
		} else {
			partialB.Add(f)
		}
	}

	mergedAB := NewAggressionTable(imb, tim)
	mergedAB.Merge(partialA)
	mergedAB.Merge(partialB)
	mergedBA := NewAggressionTable(imb, tim)
	mergedBA.Merge(partialB)
	mergedBA.Merge(partialA)

	for _, merged := range []*AggressionTable{mergedAB, mergedBA} {
		for i := range sequential.ByImbalance {
			if merged.ByImbalance[i] != sequential.ByImbalance[i] {
				t.Fatalf("ByImbalance[%d] = %+v, want %+v", i, merged.ByImbalance[i], sequential.ByImbalance[i])
			}
		}
		for i := range sequential.ByTime {
			if merged.ByTime[i] != sequential.ByTime[i] {
				t.Fatalf("ByTime[%d] = %+v, want %+v", i, merged.ByTime[i], sequential.ByTime[i])
			}
		}
		for i := range sequential.Cross {
			for j := range sequential.Cross[i] {
				if merged.Cross[i][j] != sequential.Cross[i][j] {
					t.Fatalf("Cross[%d][%d] = %+v, want %+v", i, j, merged.Cross[i][j], sequential.Cross[i][j])
				}
			}
		}
	}
}

package triggers

import (
	"testing"

	"MakerLens/internal/domain/models"
)

func series(prices ...float64) models.PriceSeries {
	out := make(models.PriceSeries, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{
			Timestamp: float64(1700000000 + i*10),
			YesPrice:  p,
			NoPrice:   1 - p,
		}
	}
	return out
}

func flat(p float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestClassifyRegimePriority(t *testing.T) {
	// A pinned window is RESOLVED even when its features also look volatile.
	f := RegimeFeatures{PinnedFraction: 0.8, ReturnVol: 0.1, MeanAbsReturn: 0.1}
	if got := ClassifyRegime(f); got != models.RegimeResolved {
		t.Errorf("ClassifyRegime = %s, want RESOLVED to win over VOLATILE", got)
	}
	// Volatility beats trend.
	f = RegimeFeatures{ReturnVol: 0.05, NetMove: 0.3, SignPersistence: 0.9}
	if got := ClassifyRegime(f); got != models.RegimeVolatile {
		t.Errorf("ClassifyRegime = %s, want VOLATILE to win over TRENDING", got)
	}
}

func TestLabelWindow(t *testing.T) {
	trending := func() []float64 {
		out := make([]float64, 40)
		for i := range out {
			out[i] = 0.40 + float64(i)*0.005 // steady drift 0.40 -> 0.595
		}
		return out
	}()

	volatile := func() []float64 {
		out := make([]float64, 40)
		for i := range out {
			if i%2 == 0 {
				out[i] = 0.45
			} else {
				out[i] = 0.55
			}
		}
		return out
	}()

	ranging := func() []float64 {
		out := make([]float64, 40)
		for i := range out {
			out[i] = 0.50 + 0.005*float64(i%3)
		}
		return out
	}()

	tests := []struct {
		name   string
		prices []float64
		want   models.Regime
	}{
		{"pinned high resolves", flat(0.97, 40), models.RegimeResolved},
		{"pinned low resolves", flat(0.03, 40), models.RegimeResolved},
		{"steady drift trends", trending, models.RegimeTrending},
		{"oscillation is volatile", volatile, models.RegimeVolatile},
		{"tight chop ranges", ranging, models.RegimeRanging},
		{"too short is unknown", []float64{0.5, 0.5}, models.RegimeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LabelWindow(series(tt.prices...)); got != tt.want {
				t.Errorf("LabelWindow = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractFeatures(t *testing.T) {
	f, ok := ExtractFeatures(series(0.40, 0.45, 0.50, 0.55, 0.60))
	if !ok {
		t.Fatal("ExtractFeatures rejected a 5-point series")
	}
	if diff := f.NetMove - 0.2; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("net move = %v, want 0.2", f.NetMove)
	}
	if diff := f.PriceRange - 0.2; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("price range = %v, want 0.2", f.PriceRange)
	}
	if f.SignPersistence != 1.0 {
		t.Errorf("sign persistence = %v, want 1.0 for a monotone path", f.SignPersistence)
	}
	if f.PinnedFraction != 0 {
		t.Errorf("pinned fraction = %v, want 0", f.PinnedFraction)
	}

	if _, ok := ExtractFeatures(series(0.5, 0.5)); ok {
		t.Error("ExtractFeatures accepted a 2-point series")
	}
}

package triggers

import (
	"testing"

	"MakerLens/internal/domain/models"
)

func openSeries(open float64, yes float64) models.PriceSeries {
	return models.PriceSeries{
		{Timestamp: open + 1, YesPrice: yes, NoPrice: 1 - yes},
		{Timestamp: open + 300, YesPrice: yes, NoPrice: 1 - yes},
	}
}

func TestAnalyzeSkips(t *testing.T) {
	// Four consecutive windows: traded, skipped, skipped, traded. The
	// skipped ones open far from fair value.
	priceLog := map[string]models.PriceSeries{
		"btc-up-15m-1000": openSeries(1000, 0.50),
		"btc-up-15m-1900": openSeries(1900, 0.85),
		"btc-up-15m-2800": openSeries(2800, 0.20),
		"btc-up-15m-3700": openSeries(3700, 0.52),
	}
	traded := map[string]struct{}{
		"btc-up-15m-1000": {},
		"btc-up-15m-3700": {},
	}

	a := AnalyzeSkips(priceLog, traded, 5)

	if a.WindowsWithPrices != 4 || a.WindowsTraded != 2 || a.WindowsSkipped != 2 {
		t.Fatalf("counts = %d/%d/%d, want 4/2/2",
			a.WindowsWithPrices, a.WindowsTraded, a.WindowsSkipped)
	}
	if a.SkipRate != 0.5 {
		t.Errorf("skip rate = %v, want 0.5", a.SkipRate)
	}
	if a.MeanOpenDistTraded >= a.MeanOpenDistSkipped {
		t.Errorf("traded dist %v not below skipped dist %v",
			a.MeanOpenDistTraded, a.MeanOpenDistSkipped)
	}
	if a.OpenDistCorrelation <= 0 {
		t.Errorf("open-distance correlation = %v, want positive", a.OpenDistCorrelation)
	}
	if len(a.SkipStreaks) != 1 || a.SkipStreaks[0] != 2 {
		t.Errorf("streaks = %v, want [2]", a.SkipStreaks)
	}
	if a.MaxSkipStreak != 2 || a.MeanSkipStreak != 2 {
		t.Errorf("streak stats = max %d mean %v, want 2/2", a.MaxSkipStreak, a.MeanSkipStreak)
	}
}

func TestAnalyzeSkipsEmpty(t *testing.T) {
	a := AnalyzeSkips(map[string]models.PriceSeries{}, nil, 5)
	if a.WindowsWithPrices != 0 || a.SkipRate != 0 {
		t.Errorf("empty analysis = %+v, want zeros", a)
	}
}

func TestAnalyzeSkipsTrailingStreak(t *testing.T) {
	priceLog := map[string]models.PriceSeries{
		"w-1000": openSeries(1000, 0.50),
		"w-1900": openSeries(1900, 0.70),
		"w-2800": openSeries(2800, 0.70),
		"w-3700": openSeries(3700, 0.70),
	}
	traded := map[string]struct{}{"w-1000": {}}

	a := AnalyzeSkips(priceLog, traded, 5)
	if a.MaxSkipStreak != 3 {
		t.Errorf("trailing streak = %d, want 3", a.MaxSkipStreak)
	}
}

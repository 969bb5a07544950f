package aggregate

import (
	"math"
	"testing"

	"MakerLens/internal/domain/models"
)

func fill(ts float64, outcome models.Outcome, price, size float64, label models.Label) models.ClassifiedFill {
	return models.ClassifiedFill{
		Trade: models.Trade{
			Timestamp: ts,
			Side:      models.BUY,
			Outcome:   outcome,
			Price:     price,
			Size:      size,
			WindowID:  "btc-up-15m-1700000000",
		},
		Label:       label,
		SecsIntoWin: ts - 1700000000,
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// 520 UP at $0.50 average against 480 DOWN at $0.49 average: 480 matched
// pairs at $0.99 combined, 40 orphan UP shares at the $0.50 basis.
func TestSummarizePairAccounting(t *testing.T) {
	w := &models.Window{ID: "btc-up-15m-1700000000", OpenTime: 1700000000, CloseTime: 1700000900}
	fills := []models.ClassifiedFill{
		fill(1700000100, models.UP, 0.50, 520, models.Maker),
		fill(1700000200, models.DOWN, 0.49, 480, models.Maker),
	}
	s := Summarize(w, fills, nil)

	if s.MatchedPairs != 480 {
		t.Errorf("matched pairs = %v, want 480", s.MatchedPairs)
	}
	if !approx(s.CombinedPairCost, 0.99) {
		t.Errorf("combined pair cost = %v, want 0.99", s.CombinedPairCost)
	}
	if s.OrphanSide != models.UP || s.OrphanShares != 40 {
		t.Errorf("orphan = %v x %v, want 40 UP", s.OrphanShares, s.OrphanSide)
	}
	if !approx(s.OrphanCostBasis, 0.50) {
		t.Errorf("orphan cost basis = %v, want 0.50", s.OrphanCostBasis)
	}
	if s.OutcomeKnown {
		t.Error("outcome marked known without a price log")
	}
	if !s.Win {
		t.Error("pairs locked in under a dollar should count as a win under the proxy")
	}
}

// Matched pairs never exceed the smaller side and orphans are exactly the
// absolute side difference, at every trajectory step.
func TestSummarizePairInvariant(t *testing.T) {
	w := &models.Window{ID: "btc-up-15m-1700000000", OpenTime: 1700000000, CloseTime: 1700000900}
	var fills []models.ClassifiedFill
	sizes := []float64{100, 40, 250, 10, 80, 300, 5}
	for i, sz := range sizes {
		outcome := models.UP
		if i%2 == 1 {
			outcome = models.DOWN
		}
		fills = append(fills, fill(1700000050+float64(i)*60, outcome, 0.50, sz, models.Taker))
	}
	s := Summarize(w, fills, nil)

	for i, step := range s.Trajectory {
		smaller := step.UpShares
		if step.DownShares < smaller {
			smaller = step.DownShares
		}
		if step.MatchedPairs > smaller {
			t.Errorf("step %d: matched pairs %v exceed min side %v", i, step.MatchedPairs, smaller)
		}
	}
	wantOrphan := math.Abs(s.UpShares - s.DownShares)
	if !approx(s.OrphanShares, wantOrphan) {
		t.Errorf("orphan shares = %v, want |up-down| = %v", s.OrphanShares, wantOrphan)
	}
}

func TestSummarizeCounts(t *testing.T) {
	w := &models.Window{ID: "btc-up-15m-1700000000", OpenTime: 1700000000, CloseTime: 1700000900}
	fills := []models.ClassifiedFill{
		fill(1700000100, models.UP, 0.50, 100, models.Maker),
		fill(1700000150, models.DOWN, 0.48, 100, models.Maker),
		fill(1700000200, models.UP, 0.51, 50, models.Taker),
		fill(1700000250, models.UP, 0.52, 50, models.Unclassified),
	}
	s := Summarize(w, fills, nil)

	if s.FillCount != 4 || s.ClassifiedCount != 3 {
		t.Errorf("counts = %d total / %d classified, want 4 / 3", s.FillCount, s.ClassifiedCount)
	}
	// Unclassified fills stay out of the maker fraction denominator.
	want := 2.0 / 3.0
	if !approx(s.MakerFraction, want) {
		t.Errorf("maker fraction = %v, want %v", s.MakerFraction, want)
	}
	if s.FirstFillSecs != 100 || s.FirstSide != models.UP {
		t.Errorf("first fill = %vs on %s, want 100s on UP", s.FirstFillSecs, s.FirstSide)
	}
	if s.SideSwitches != 2 {
		t.Errorf("side switches = %d, want 2", s.SideSwitches)
	}
}

func TestSummarizeTimeToSubDollar(t *testing.T) {
	w := &models.Window{ID: "btc-up-15m-1700000000", OpenTime: 1700000000, CloseTime: 1700000900}
	fills := []models.ClassifiedFill{
		fill(1700000100, models.UP, 0.60, 100, models.Maker),
		// 0.60 + 0.55 = 1.15, still over a dollar.
		fill(1700000200, models.DOWN, 0.55, 100, models.Maker),
		// DOWN average drops to 0.39: 0.60 + 0.39 = 0.99.
		fill(1700000300, models.DOWN, 0.23, 100, models.Maker),
	}
	s := Summarize(w, fills, nil)
	if s.TimeToSubDollar != 300 {
		t.Errorf("time to sub-dollar = %v, want 300", s.TimeToSubDollar)
	}

	never := Summarize(w, fills[:2], nil)
	if never.TimeToSubDollar != -1 {
		t.Errorf("time to sub-dollar = %v, want -1 when never reached", never.TimeToSubDollar)
	}
}

func TestSummarizeSettlement(t *testing.T) {
	w := &models.Window{ID: "btc-up-15m-1700000000", OpenTime: 1700000000, CloseTime: 1700000900}
	fills := []models.ClassifiedFill{
		fill(1700000100, models.UP, 0.50, 100, models.Maker),
		fill(1700000200, models.DOWN, 0.45, 100, models.Maker),
	}
	prices := models.PriceSeries{
		{Timestamp: 1700000100, YesPrice: 0.52, NoPrice: 0.48},
		{Timestamp: 1700000890, YesPrice: 0.97, NoPrice: 0.03},
	}
	s := Summarize(w, fills, prices)

	if !s.OutcomeKnown || s.Outcome != models.UP {
		t.Fatalf("outcome = (%v, %s), want known UP", s.OutcomeKnown, s.Outcome)
	}
	// 100 UP shares pay out $100 against $95 total cost.
	if !approx(s.RealizedPnL, 5.0) {
		t.Errorf("realized pnl = %v, want 5.0", s.RealizedPnL)
	}
	if !s.Win {
		t.Error("positive pnl not marked as win")
	}
}

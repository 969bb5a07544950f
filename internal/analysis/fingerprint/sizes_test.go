package fingerprint

import (
	"testing"

	"MakerLens/internal/domain/models"
)

func makerFill(outcome models.Outcome, price, size, imbalance float64) models.ClassifiedFill {
	return models.ClassifiedFill{
		Trade:     models.Trade{Outcome: outcome, Price: price, Size: size, Side: models.BUY},
		Label:     models.Maker,
		Imbalance: imbalance,
	}
}

func TestExtractSizes(t *testing.T) {
	var fills []models.ClassifiedFill
	for i := 0; i < 6; i++ {
		fills = append(fills, makerFill(models.UP, 0.50, 100, 0))
	}
	for i := 0; i < 3; i++ {
		fills = append(fills, makerFill(models.UP, 0.50, 250, 0))
	}
	fills = append(fills, makerFill(models.UP, 0.50, 40, 0))
	unresolved := makerFill(models.UP, 0.50, 999, 0)
	unresolved.Label = models.Unclassified
	fills = append(fills, unresolved)

	sig := ExtractSizes(fills, 2)

	if sig.Fills != 10 {
		t.Fatalf("fills = %d, want 10 (unclassified excluded)", sig.Fills)
	}
	if len(sig.Modes) != 2 {
		t.Fatalf("modes = %d, want trimmed to 2", len(sig.Modes))
	}
	if sig.Modes[0].Size != 100 || sig.Modes[0].Count != 6 {
		t.Errorf("dominant mode = %v x%d, want 100 x6", sig.Modes[0].Size, sig.Modes[0].Count)
	}
	if sig.Modes[0].Fraction != 0.6 {
		t.Errorf("dominant fraction = %v, want 0.6", sig.Modes[0].Fraction)
	}
	if sig.Modes[1].Size != 250 {
		t.Errorf("second mode = %v, want 250", sig.Modes[1].Size)
	}
	if sig.Median != 100 {
		t.Errorf("median = %v, want 100", sig.Median)
	}
}

func TestExtractSizesModeTieBreak(t *testing.T) {
	fills := []models.ClassifiedFill{
		makerFill(models.UP, 0.50, 200, 0),
		makerFill(models.UP, 0.50, 50, 0),
	}
	sig := ExtractSizes(fills, 0)
	if len(sig.Modes) != 2 || sig.Modes[0].Size != 50 {
		t.Errorf("modes = %+v, want size ascending on equal counts", sig.Modes)
	}
}

func TestExtractSizesEmpty(t *testing.T) {
	sig := ExtractSizes(nil, 3)
	if sig.Fills != 0 || len(sig.Modes) != 0 {
		t.Errorf("empty signature = %+v", sig)
	}
}

package fingerprint

import (
	"testing"

	"MakerLens/internal/domain/models"
)

func replWindow(snaps []models.Snapshot) *models.Window {
	return &models.Window{
		ID:        "btc-up-15m-1700000000",
		OpenTime:  1700000000,
		CloseTime: 1700000900,
		Snapshots: map[models.Outcome][]models.Snapshot{models.UP: snaps},
	}
}

func bookAt(ts float64, bids []models.PriceLevel) models.Snapshot {
	return models.Snapshot{
		Outcome:   models.UP,
		Kind:      models.EventBook,
		Timestamp: ts,
		Bids:      bids,
		Asks:      []models.PriceLevel{{Price: 0.60, Size: 500}},
	}
}

func TestAnalyzeReplenishment(t *testing.T) {
	cfg := ReplenishConfig{TickSize: 0.01, HorizonSecs: 30, MaxGapSecs: 5}
	fill := models.ClassifiedFill{
		Trade: models.Trade{
			Timestamp: 1700000100, Side: models.BUY, Outcome: models.UP,
			Price: 0.48, Size: 200,
		},
		Label: models.Maker,
	}

	tests := []struct {
		name    string
		snaps   []models.Snapshot
		want    ReplenishKind
		latency float64
	}{
		{
			name: "requote at the same price",
			snaps: []models.Snapshot{
				bookAt(1700000099, []models.PriceLevel{{Price: 0.48, Size: 200}}),
				bookAt(1700000102, nil),
				bookAt(1700000110, []models.PriceLevel{{Price: 0.48, Size: 200}}),
			},
			want:    ReplenishSamePrice,
			latency: 10,
		},
		{
			name: "requote one tick lower",
			snaps: []models.Snapshot{
				bookAt(1700000099, []models.PriceLevel{{Price: 0.48, Size: 200}}),
				bookAt(1700000102, nil),
				bookAt(1700000115, []models.PriceLevel{{Price: 0.47, Size: 200}}),
			},
			want:    ReplenishShifted,
			latency: 15,
		},
		{
			name: "no requote inside the horizon",
			snaps: []models.Snapshot{
				bookAt(1700000099, []models.PriceLevel{{Price: 0.48, Size: 200}}),
				bookAt(1700000102, nil),
				bookAt(1700000120, nil),
				bookAt(1700000200, []models.PriceLevel{{Price: 0.48, Size: 200}}),
			},
			want:    ReplenishAbandoned,
			latency: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := AnalyzeReplenishment(replWindow(tt.snaps), []models.ClassifiedFill{fill}, cfg)
			if len(events) != 1 {
				t.Fatalf("events = %d, want 1", len(events))
			}
			if events[0].Kind != tt.want {
				t.Errorf("kind = %s, want %s", events[0].Kind, tt.want)
			}
			if events[0].LatencySecs != tt.latency {
				t.Errorf("latency = %v, want %v", events[0].LatencySecs, tt.latency)
			}
		})
	}
}

func TestAnalyzeReplenishmentSkipsNonEmptying(t *testing.T) {
	cfg := ReplenishConfig{TickSize: 0.01, HorizonSecs: 30, MaxGapSecs: 5}
	fill := models.ClassifiedFill{
		Trade: models.Trade{
			Timestamp: 1700000100, Side: models.BUY, Outcome: models.UP,
			Price: 0.48, Size: 200,
		},
		Label: models.Maker,
	}
	// The level still holds depth after the fill: not an emptying fill.
	snaps := []models.Snapshot{
		bookAt(1700000099, []models.PriceLevel{{Price: 0.48, Size: 800}}),
		bookAt(1700000102, []models.PriceLevel{{Price: 0.48, Size: 600}}),
	}
	if events := AnalyzeReplenishment(replWindow(snaps), []models.ClassifiedFill{fill}, cfg); len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}
}

func TestSummarizeReplenishment(t *testing.T) {
	events := []ReplenishEvent{
		{Kind: ReplenishSamePrice, LatencySecs: 4},
		{Kind: ReplenishSamePrice, LatencySecs: 8},
		{Kind: ReplenishShifted, LatencySecs: 20},
		{Kind: ReplenishAbandoned},
	}
	s := SummarizeReplenishment(events)
	if s.SamePrice != 2 || s.Shifted != 1 || s.Abandoned != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", s.SamePrice, s.Shifted, s.Abandoned)
	}
	if s.MedianLatency != 8 {
		t.Errorf("median latency = %v, want 8", s.MedianLatency)
	}
}

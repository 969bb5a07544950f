package fingerprint

import (
	"math"

	"github.com/montanaflynn/stats"

	"MakerLens/internal/analysis/classify"
	"MakerLens/internal/domain/models"
)

// ReplenishKind classifies what happened after a maker fill emptied a
// price level.
type ReplenishKind string

const (
	ReplenishSamePrice ReplenishKind = "SAME_PRICE"
	ReplenishShifted   ReplenishKind = "SHIFTED"
	ReplenishAbandoned ReplenishKind = "ABANDONED"
)

// ReplenishEvent is one observed level-emptying maker fill and its sequel.
type ReplenishEvent struct {
	WindowID    string        `json:"window_id"`
	Price       float64       `json:"price"`
	Kind        ReplenishKind `json:"kind"`
	LatencySecs float64       `json:"latency_secs"` // 0 for ABANDONED
}

// ReplenishStats aggregates replenishment behavior across windows.
type ReplenishStats struct {
	Events        []ReplenishEvent `json:"-"`
	SamePrice     int              `json:"same_price"`
	Shifted       int              `json:"shifted"`
	Abandoned     int              `json:"abandoned"`
	MedianLatency float64          `json:"median_latency_secs"`
}

// ReplenishConfig tunes the reappearance search.
type ReplenishConfig struct {
	TickSize    float64 // adjacent-level distance, venue tick
	HorizonSecs float64 // how long to wait for a requote
	MaxGapSecs  float64 // snapshot lookup bound around the fill
}

// AnalyzeReplenishment measures, for each maker fill that emptied its
// price level, how long until the participant requoted at the same or an
// adjacent level. Requires the window's book timelines.
func AnalyzeReplenishment(w *models.Window, fills []models.ClassifiedFill, cfg ReplenishConfig) []ReplenishEvent {
	timelines := map[models.Outcome]*classify.Timeline{
		models.UP:   classify.NewTimeline(w.Snapshots[models.UP]),
		models.DOWN: classify.NewTimeline(w.Snapshots[models.DOWN]),
	}

	var events []ReplenishEvent
	for i := range fills {
		f := &fills[i]
		if f.Label != models.Maker {
			continue
		}
		tl := timelines[f.Outcome]
		after := tl.After(f.Timestamp, cfg.MaxGapSecs)
		if after == nil || !levelEmpty(after, f) {
			continue
		}

		ev := ReplenishEvent{WindowID: w.ID, Price: f.Price, Kind: ReplenishAbandoned}
		deadline := f.Timestamp + cfg.HorizonSecs
		for ts := after.Timestamp; ts <= deadline; {
			next := tl.After(ts, cfg.HorizonSecs)
			if next == nil || next.Timestamp > deadline {
				break
			}
			if depthAt(next, f, f.Price) > 0 {
				ev.Kind = ReplenishSamePrice
				ev.LatencySecs = next.Timestamp - f.Timestamp
				break
			}
			if depthAt(next, f, f.Price-cfg.TickSize) > 0 || depthAt(next, f, f.Price+cfg.TickSize) > 0 {
				ev.Kind = ReplenishShifted
				ev.LatencySecs = next.Timestamp - f.Timestamp
				break
			}
			ts = next.Timestamp
		}
		events = append(events, ev)
	}
	return events
}

// SummarizeReplenishment folds per-window events into the cross-window
// stat block.
func SummarizeReplenishment(events []ReplenishEvent) *ReplenishStats {
	s := &ReplenishStats{Events: events}
	var latencies []float64
	for _, ev := range events {
		switch ev.Kind {
		case ReplenishSamePrice:
			s.SamePrice++
			latencies = append(latencies, ev.LatencySecs)
		case ReplenishShifted:
			s.Shifted++
			latencies = append(latencies, ev.LatencySecs)
		case ReplenishAbandoned:
			s.Abandoned++
		}
	}
	if len(latencies) > 0 {
		s.MedianLatency, _ = stats.Median(latencies)
	}
	return s
}

// levelEmpty reports whether the fill's own side holds nothing at the fill
// price anymore.
func levelEmpty(snap *models.Snapshot, f *models.ClassifiedFill) bool {
	return depthAt(snap, f, f.Price) == 0
}

// depthAt reads the resting depth on the side the maker was quoting: a
// maker BUY was a resting bid, a maker SELL a resting ask.
func depthAt(snap *models.Snapshot, f *models.ClassifiedFill, price float64) float64 {
	price = math.Round(price*100) / 100
	if f.Side == models.BUY {
		return snap.BidAt(price)
	}
	return snap.AskAt(price)
}

package ingest

import (
	"MakerLens/internal/domain/models"
)

// BuildWindow assembles one Window from its normalized inputs. The open
// time comes from the slug's epoch suffix; captures that predate the slug
// convention fall back to the earliest observed event.
func BuildWindow(slug string, trades []models.Trade, snaps *SnapshotResult, durationSecs float64) *models.Window {
	fallback := earliestEvent(trades, snaps)
	open := WindowOpenTime(slug, fallback)

	w := &models.Window{
		ID:        slug,
		OpenTime:  open,
		CloseTime: open + durationSecs,
		Trades:    trades,
		Snapshots: map[models.Outcome][]models.Snapshot{},
	}
	if snaps != nil {
		w.Snapshots = snaps.ByOutcome
	}
	return w
}

func earliestEvent(trades []models.Trade, snaps *SnapshotResult) float64 {
	earliest := 0.0
	if len(trades) > 0 {
		earliest = trades[0].Timestamp
	}
	if snaps != nil {
		for _, seq := range snaps.ByOutcome {
			if len(seq) > 0 && (earliest == 0 || seq[0].Timestamp < earliest) {
				earliest = seq[0].Timestamp
			}
		}
	}
	return earliest
}

package classify

import (
	"MakerLens/internal/domain/models"
)

// CoverageConfig gates which windows are eligible for classification.
// Classifying against a sparse or gappy book is worse than not classifying.
type CoverageConfig struct {
	MinDurationSecs  float64
	GapToleranceSecs float64
	MinSnapshotCount int
}

// Evaluate checks one window's capture against the coverage criteria,
// per outcome leg and then combined. The first failed criterion wins so
// skip reasons stay deterministic: capture presence, then side presence,
// then snapshot count, then duration, then gap.
func Evaluate(w *models.Window, cfg CoverageConfig) (eligible bool, reason models.SkipReason) {
	if !w.HasCapture() {
		return false, models.SkipNoCapture
	}

	for _, outcome := range []models.Outcome{models.UP, models.DOWN} {
		tl := NewTimeline(w.Snapshots[outcome])
		if tl.Len() == 0 {
			return false, models.SkipMissingSide
		}
		if tl.Len() < cfg.MinSnapshotCount {
			return false, models.SkipTooFewSnapshots
		}
		if tl.Span() < cfg.MinDurationSecs {
			return false, models.SkipDurationShort
		}
		if tl.MaxGap() > cfg.GapToleranceSecs {
			return false, models.SkipGapExceeded
		}
	}
	return true, models.SkipNone
}

package models

// SkipReason explains why a window was excluded from fill classification.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipNoCapture       SkipReason = "NO_CAPTURE"
	SkipDurationShort   SkipReason = "DURATION_SHORT"
	SkipGapExceeded     SkipReason = "GAP_EXCEEDED"
	SkipMissingSide     SkipReason = "MISSING_SIDE"
	SkipTooFewSnapshots SkipReason = "TOO_FEW_SNAPSHOTS"
)

// Regime is the coarse behavioral classification of a window's price path.
type Regime string

const (
	RegimeUnknown  Regime = "UNKNOWN"
	RegimeTrending Regime = "TRENDING"
	RegimeRanging  Regime = "RANGING"
	RegimeVolatile Regime = "VOLATILE"
	RegimeResolved Regime = "RESOLVED"
)

// Window is one fixed-duration binary market instance with everything the
// pipeline knows about it: the participant's fills and the per-outcome
// snapshot sequences. Inputs are immutable once a Window is assembled.
type Window struct {
	ID        string
	OpenTime  float64 // epoch seconds, parsed from the window slug
	CloseTime float64 // OpenTime + configured duration
	Trades    []Trade // timestamp-sorted, deduplicated
	Snapshots map[Outcome][]Snapshot
}

// HasCapture reports whether any book snapshots were captured at all.
func (w *Window) HasCapture() bool {
	for _, seq := range w.Snapshots {
		if len(seq) > 0 {
			return true
		}
	}
	return false
}

// PricePoint is one observation from the external price log.
type PricePoint struct {
	Timestamp float64
	YesPrice  float64
	NoPrice   float64
	Spread    float64
}

// PriceSeries is the per-window price log, sorted by timestamp.
type PriceSeries []PricePoint

// SettlementOutcome derives the winning side from the final price log
// observation: a side settling at >= 0.95 is treated as resolved. Returns
// false when the log ends before the market converged.
func (ps PriceSeries) SettlementOutcome() (Outcome, bool) {
	if len(ps) == 0 {
		return "", false
	}
	last := ps[len(ps)-1]
	if last.YesPrice >= 0.95 {
		return UP, true
	}
	if last.NoPrice >= 0.95 {
		return DOWN, true
	}
	return "", false
}

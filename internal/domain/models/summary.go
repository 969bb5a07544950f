package models

// TrajectoryStep is the running position after one fill.
type TrajectoryStep struct {
	Timestamp    float64
	UpShares     float64
	DownShares   float64
	UpCost       float64
	DownCost     float64
	MatchedPairs float64
	Imbalance    float64
	CombinedCost float64 // 0 until both sides hold shares
}

// WindowSummary is the immutable per-window rollup built once from the
// window's classified fills.
type WindowSummary struct {
	WindowID  string  `json:"window_id"`
	OpenTime  float64 `json:"open_time"`
	CloseTime float64 `json:"close_time"`

	FillCount        int     `json:"fill_count"`
	ClassifiedCount  int     `json:"classified_count"`
	MakerCount       int     `json:"maker_count"`
	TakerCount       int     `json:"taker_count"`
	MakerFraction    float64 `json:"maker_fraction"` // over resolved fills
	UpShares         float64 `json:"up_shares"`
	DownShares       float64 `json:"down_shares"`
	UpCost           float64 `json:"up_cost"`
	DownCost         float64 `json:"down_cost"`
	Imbalance        float64 `json:"imbalance"`
	MatchedPairs     float64 `json:"matched_pairs"`
	CombinedPairCost float64 `json:"combined_pair_cost"` // avg UP + avg DOWN

	// Orphans are the unmatched excess on one side; their value depends on
	// settlement, tracked at their own cost basis.
	OrphanSide      Outcome `json:"orphan_side"`
	OrphanShares    float64 `json:"orphan_shares"`
	OrphanCostBasis float64 `json:"orphan_cost_basis"` // avg cost per orphan share

	// Settlement-dependent fields. OutcomeKnown is false when no external
	// resolution was available; Win then falls back to the pair-cost proxy.
	OutcomeKnown bool    `json:"outcome_known"`
	Outcome      Outcome `json:"outcome"`
	RealizedPnL  float64 `json:"realized_pnl"`
	Win          bool    `json:"win"`

	Skipped    bool       `json:"skipped"`
	SkipReason SkipReason `json:"skip_reason"`
	Regime     Regime     `json:"regime"`

	// Entry-pattern stats.
	FirstFillSecs   float64 `json:"first_fill_secs"` // seconds into window
	FirstSide       Outcome `json:"first_side"`
	SideSwitches    int     `json:"side_switches"`
	TimeToSubDollar float64 `json:"time_to_sub_dollar"` // -1 when never reached

	Trajectory []TrajectoryStep `json:"-"`
}

// PairsBelow reports whether the matched portion locked in guaranteed
// profit (combined pair cost under one dollar).
func (s *WindowSummary) PairsBelow(threshold float64) bool {
	return s.MatchedPairs > 0 && s.CombinedPairCost < threshold
}

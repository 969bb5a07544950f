package models

// Label is the provenance classification of a single fill.
type Label string

const (
	Maker        Label = "MAKER"
	Taker        Label = "TAKER"
	Unclassified Label = "UNCLASSIFIED"
)

// Method names the strategy that produced the primary label.
type Method string

const (
	MethodNone     Method = ""
	MethodBBO      Method = "BBO"
	MethodBookDiff Method = "BOOK_DIFF"
)

// BookContext carries the microstructure state observed at the preceding
// snapshot of a fill. Zero-valued when no snapshot was within the gap bound.
type BookContext struct {
	BestBid       float64 `json:"best_bid"`
	BestAsk       float64 `json:"best_ask"`
	Spread        float64 `json:"spread"`
	Mid           float64 `json:"mid"`
	Microprice    float64 `json:"microprice"`
	BidDepth      float64 `json:"bid_depth"` // top-5 levels
	AskDepth      float64 `json:"ask_depth"` // top-5 levels
	BookImbalance float64 `json:"book_imbalance"`
	FlowImbalance float64 `json:"flow_imbalance"` // OFI across the fill
}

// ClassifiedFill is a Trade plus its provenance labels and the position
// state observed just before the fill executed.
type ClassifiedFill struct {
	Trade

	Label  Label  `json:"label"`
	Method Method `json:"method"`

	// MatchRatio is vanished-quantity / fill-size from the book-diff
	// strategy, nil when that strategy did not resolve.
	MatchRatio *float64 `json:"match_ratio"`

	// SoleRestingOrder is true when the vanished quantity matches the fill
	// size within the sole-order band, meaning nobody else was quoting that
	// level. Nil when book-diff did not resolve.
	SoleRestingOrder *bool `json:"sole_resting_order"`

	// Disagreement is set when both strategies resolved and produced
	// different labels. Never silently reconciled.
	Disagreement bool `json:"disagreement"`

	// Position state before this fill.
	RunningUp    float64 `json:"running_up"`
	RunningDown  float64 `json:"running_down"`
	Imbalance    float64 `json:"imbalance"`   // |up-down|/(up+down)
	ElapsedFrac  float64 `json:"pct_elapsed"` // fraction of window elapsed
	SecsIntoWin  float64 `json:"secs_into_window"`
	Book         BookContext
	EdgeVsMarket *float64 `json:"edge"` // market price - fill price, nil without price log
}

// Resolved reports whether the fill carries a usable maker/taker label.
func (f *ClassifiedFill) Resolved() bool {
	return f.Label == Maker || f.Label == Taker
}

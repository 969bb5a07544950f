package models

import "fmt"

// Side is the direction of a fill: BUY or SELL.
type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Outcome identifies one leg of a binary market.
type Outcome string

const (
	UP   Outcome = "UP"
	DOWN Outcome = "DOWN"
)

// Trade is a single fill from the participant's public trade history.
// Trades are immutable after ingestion.
type Trade struct {
	Timestamp    float64 `json:"timestamp"` // fractional seconds since epoch
	Wallet       string  `json:"wallet"`
	WindowID     string  `json:"window_slug"`
	Side         Side    `json:"side"`
	Outcome      Outcome `json:"outcome"`
	Price        float64 `json:"price"` // in (0,1)
	Size         float64 `json:"size"`  // shares, > 0
	TxHash       string  `json:"tx_hash"`
	ConditionID  string  `json:"condition_id"`
	OutcomeIndex int     `json:"outcome_index"`

	// Seq is the ingestion order, used as the deterministic tiebreak when
	// two fills share a timestamp.
	Seq int `json:"-"`
}

// DedupKey is the composite identity of a fill. Two records with the same
// key are the same fill seen through overlapping pagination, never two
// distinct fills.
func (t Trade) DedupKey() string {
	return fmt.Sprintf("%s|%s|%d|%s|%.6f|%.6f|%.3f",
		t.TxHash, t.ConditionID, t.OutcomeIndex, t.Side, t.Price, t.Size, t.Timestamp)
}

// Cost is the notional spent on this fill.
func (t Trade) Cost() float64 {
	return t.Price * t.Size
}

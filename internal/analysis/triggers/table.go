// Package triggers derives state-conditioned behavioral statistics from
// classified fills and aggregated windows: aggression-rate tables, regime
// labeling, and skip/selection analysis.
package triggers

import (
	"MakerLens/internal/domain/models"
)

// Buckets maps a continuous state variable onto half-open intervals
// [0,e0), [e0,e1), ..., [eN,inf). Edges must be strictly increasing,
// validated at config load.
type Buckets struct {
	Edges []float64
}

// Index returns the bucket index for a value.
func (b Buckets) Index(v float64) int {
	for i, edge := range b.Edges {
		if v < edge {
			return i
		}
	}
	return len(b.Edges)
}

// Count is the number of buckets, the overflow bucket included.
func (b Buckets) Count() int { return len(b.Edges) + 1 }

// Label renders a bucket's interval for reporting.
func (b Buckets) Label(i int) string {
	switch {
	case i == 0:
		return formatInterval(0, b.Edges[0])
	case i < len(b.Edges):
		return formatInterval(b.Edges[i-1], b.Edges[i])
	default:
		return formatOpenInterval(b.Edges[len(b.Edges)-1])
	}
}

// Cell is one accumulator cell: taker count over resolved count.
type Cell struct {
	Taker    int `json:"taker"`
	Resolved int `json:"resolved"`
}

// Rate is the taker (aggression) fraction in the cell.
func (c Cell) Rate() float64 {
	if c.Resolved == 0 {
		return 0
	}
	return float64(c.Taker) / float64(c.Resolved)
}

// AggressionTable accumulates taker fractions over a one- or
// two-dimensional bucketing of fill state. Add and Merge are associative
// and commutative, so per-window partial tables can be reduced in any
// order across workers.
type AggressionTable struct {
	Imbalance Buckets `json:"-"`
	Time      Buckets `json:"-"`

	ByImbalance []Cell   `json:"by_imbalance"`
	ByTime      []Cell   `json:"by_time"`
	Cross       [][]Cell `json:"cross"` // [imbalance][time]
}

// NewAggressionTable allocates an empty table over the given bucketings.
func NewAggressionTable(imbalance, elapsed Buckets) *AggressionTable {
	t := &AggressionTable{
		Imbalance:   imbalance,
		Time:        elapsed,
		ByImbalance: make([]Cell, imbalance.Count()),
		ByTime:      make([]Cell, elapsed.Count()),
		Cross:       make([][]Cell, imbalance.Count()),
	}
	for i := range t.Cross {
		t.Cross[i] = make([]Cell, elapsed.Count())
	}
	return t
}

// Add folds one classified fill into the table. Unresolved fills are
// excluded from ratio statistics by construction.
func (t *AggressionTable) Add(f *models.ClassifiedFill) {
	if !f.Resolved() {
		return
	}
	ib := t.Imbalance.Index(f.Imbalance)
	tb := t.Time.Index(f.ElapsedFrac)
	taker := 0
	if f.Label == models.Taker {
		taker = 1
	}

	t.ByImbalance[ib].Resolved++
	t.ByImbalance[ib].Taker += taker
	t.ByTime[tb].Resolved++
	t.ByTime[tb].Taker += taker
	t.Cross[ib][tb].Resolved++
	t.Cross[ib][tb].Taker += taker
}

// Merge folds another table (same bucketing) into this one.
func (t *AggressionTable) Merge(o *AggressionTable) {
	for i := range t.ByImbalance {
		t.ByImbalance[i].Taker += o.ByImbalance[i].Taker
		t.ByImbalance[i].Resolved += o.ByImbalance[i].Resolved
	}
	for i := range t.ByTime {
		t.ByTime[i].Taker += o.ByTime[i].Taker
		t.ByTime[i].Resolved += o.ByTime[i].Resolved
	}
	for i := range t.Cross {
		for j := range t.Cross[i] {
			t.Cross[i][j].Taker += o.Cross[i][j].Taker
			t.Cross[i][j].Resolved += o.Cross[i][j].Resolved
		}
	}
}

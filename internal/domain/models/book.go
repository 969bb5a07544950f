package models

// EventKind distinguishes the two record types in an L2 capture file.
type EventKind string

const (
	EventBook  EventKind = "book"
	EventTrade EventKind = "trade"
)

// PriceLevel is one (price, size) entry on a book side.
type PriceLevel struct {
	Price float64
	Size  float64
}

// Snapshot is a full-depth order book observation for one outcome leg at
// one instant. Levels are unique by price; bids descend, asks ascend.
type Snapshot struct {
	WindowID  string
	Outcome   Outcome
	Kind      EventKind
	Timestamp float64
	Bids      []PriceLevel
	Asks      []PriceLevel
}

// BestBid returns the highest resting bid, or 0 when the side is empty.
func (s *Snapshot) BestBid() float64 {
	best := 0.0
	for _, l := range s.Bids {
		if l.Price > best {
			best = l.Price
		}
	}
	return best
}

// BestAsk returns the lowest resting ask, or 1 when the side is empty.
func (s *Snapshot) BestAsk() float64 {
	best := 1.0
	found := false
	for _, l := range s.Asks {
		if !found || l.Price < best {
			best = l.Price
			found = true
		}
	}
	return best
}

// BidAt returns resting bid size at an exact price level.
func (s *Snapshot) BidAt(price float64) float64 {
	for _, l := range s.Bids {
		if l.Price == price {
			return l.Size
		}
	}
	return 0
}

// AskAt returns resting ask size at an exact price level.
func (s *Snapshot) AskAt(price float64) float64 {
	for _, l := range s.Asks {
		if l.Price == price {
			return l.Size
		}
	}
	return 0
}

// Crossed reports whether any bid meets or exceeds the best ask. A crossed
// book is a capture artifact and the snapshot must be discarded.
func (s *Snapshot) Crossed() bool {
	if len(s.Bids) == 0 || len(s.Asks) == 0 {
		return false
	}
	return s.BestBid() >= s.BestAsk()
}

// Mid is the midpoint of the BBO.
func (s *Snapshot) Mid() float64 {
	return (s.BestBid() + s.BestAsk()) / 2
}

// Spread is the BBO spread in price units.
func (s *Snapshot) Spread() float64 {
	return s.BestAsk() - s.BestBid()
}

// Microprice is the depth-weighted midpoint using BBO sizes.
func (s *Snapshot) Microprice() float64 {
	bb, ba := s.BestBid(), s.BestAsk()
	bidSz := s.BidAt(bb)
	askSz := s.AskAt(ba)
	total := bidSz + askSz
	if total == 0 {
		return (bb + ba) / 2
	}
	return (bb*askSz + ba*bidSz) / total
}

// BidDepth sums resting size across the top n bid levels.
func (s *Snapshot) BidDepth(n int) float64 {
	return topDepth(s.Bids, n, true)
}

// AskDepth sums resting size across the top n ask levels.
func (s *Snapshot) AskDepth(n int) float64 {
	return topDepth(s.Asks, n, false)
}

func topDepth(levels []PriceLevel, n int, descending bool) float64 {
	if len(levels) == 0 || n <= 0 {
		return 0
	}
	// Selection over a copy keeps the snapshot immutable.
	prices := make([]PriceLevel, len(levels))
	copy(prices, levels)
	for i := 0; i < len(prices) && i < n; i++ {
		best := i
		for j := i + 1; j < len(prices); j++ {
			if descending && prices[j].Price > prices[best].Price {
				best = j
			}
			if !descending && prices[j].Price < prices[best].Price {
				best = j
			}
		}
		prices[i], prices[best] = prices[best], prices[i]
	}
	sum := 0.0
	for i := 0; i < len(prices) && i < n; i++ {
		sum += prices[i].Size
	}
	return sum
}

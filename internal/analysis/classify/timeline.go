// Package classify gates windows on capture completeness and assigns
// maker/taker provenance to each fill using two strategies: best-bid/offer
// comparison and book-diff vanished-quantity matching.
package classify

import (
	"sort"

	"MakerLens/internal/domain/models"
)

// Timeline is an immutable, timestamp-sorted index over one outcome leg's
// book snapshots. Lookups are binary searches; nothing is mutated after
// construction, so a Timeline is safe to share across goroutines.
type Timeline struct {
	snaps []models.Snapshot
	ts    []float64
}

// NewTimeline indexes the book-event snapshots of one sequence. Trade
// events are dropped: only full book states can be diffed.
func NewTimeline(snaps []models.Snapshot) *Timeline {
	books := make([]models.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if s.Kind == models.EventBook {
			books = append(books, s)
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].Timestamp < books[j].Timestamp
	})
	ts := make([]float64, len(books))
	for i, s := range books {
		ts[i] = s.Timestamp
	}
	return &Timeline{snaps: books, ts: ts}
}

// Len returns the number of indexed book snapshots.
func (t *Timeline) Len() int { return len(t.snaps) }

// Span returns the covered duration in seconds.
func (t *Timeline) Span() float64 {
	if len(t.ts) < 2 {
		return 0
	}
	return t.ts[len(t.ts)-1] - t.ts[0]
}

// MaxGap returns the largest gap between consecutive snapshots.
func (t *Timeline) MaxGap() float64 {
	gap := 0.0
	for i := 1; i < len(t.ts); i++ {
		if d := t.ts[i] - t.ts[i-1]; d > gap {
			gap = d
		}
	}
	return gap
}

// Before returns the snapshot with the largest timestamp not exceeding ts,
// provided it is within maxGap seconds. Nil otherwise.
func (t *Timeline) Before(ts, maxGap float64) *models.Snapshot {
	idx := sort.SearchFloat64s(t.ts, ts)
	// SearchFloat64s returns the first index >= ts; an exact hit counts as
	// "not exceeding".
	if idx < len(t.ts) && t.ts[idx] == ts {
		return &t.snaps[idx]
	}
	if idx == 0 {
		return nil
	}
	cand := &t.snaps[idx-1]
	if ts-cand.Timestamp > maxGap {
		return nil
	}
	return cand
}

// After returns the first snapshot strictly after ts within maxGap seconds.
func (t *Timeline) After(ts, maxGap float64) *models.Snapshot {
	idx := sort.Search(len(t.ts), func(i int) bool {
		return t.ts[i] > ts
	})
	if idx >= len(t.ts) {
		return nil
	}
	cand := &t.snaps[idx]
	if cand.Timestamp-ts > maxGap {
		return nil
	}
	return cand
}

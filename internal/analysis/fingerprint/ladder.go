package fingerprint

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"MakerLens/internal/domain/models"
)

// LadderLevel is one reconstructed quoting level.
type LadderLevel struct {
	Price    float64 `json:"price"`
	Fills    int     `json:"fills"`
	MeanSize float64 `json:"mean_size"`
}

// Ladder is the reconstructed resting-order structure for one outcome leg,
// built purely from MAKER fills (taker fills say nothing about where the
// participant was quoting).
type Ladder struct {
	Outcome       models.Outcome `json:"outcome"`
	Levels        []LadderLevel  `json:"levels"` // ascending by price
	MedianSpacing float64        `json:"median_spacing"`

	// LevelsByImbalance tracks how many distinct levels were active inside
	// each imbalance band, showing whether the ladder tightens or widens as
	// inventory skews.
	LevelsByImbalance map[string]int `json:"levels_by_imbalance"`
}

// imbalanceBand coarsens imbalance for the level-shift view.
func imbalanceBand(v float64) string {
	switch {
	case v < 0.05:
		return "balanced"
	case v < 0.15:
		return "skewed"
	default:
		return "stretched"
	}
}

// ReconstructLadders clusters maker-fill prices into discrete levels per
// outcome leg. Prices are quantized to the cent, matching the venue's tick.
func ReconstructLadders(fills []models.ClassifiedFill) []*Ladder {
	type levelAcc struct {
		count int
		size  float64
	}
	byOutcome := map[models.Outcome]map[float64]*levelAcc{}
	bandLevels := map[models.Outcome]map[string]map[float64]struct{}{}

	for i := range fills {
		f := &fills[i]
		if f.Label != models.Maker {
			continue
		}
		price := math.Round(f.Price*100) / 100
		if byOutcome[f.Outcome] == nil {
			byOutcome[f.Outcome] = map[float64]*levelAcc{}
			bandLevels[f.Outcome] = map[string]map[float64]struct{}{}
		}
		acc := byOutcome[f.Outcome][price]
		if acc == nil {
			acc = &levelAcc{}
			byOutcome[f.Outcome][price] = acc
		}
		acc.count++
		acc.size += f.Size

		band := imbalanceBand(f.Imbalance)
		if bandLevels[f.Outcome][band] == nil {
			bandLevels[f.Outcome][band] = map[float64]struct{}{}
		}
		bandLevels[f.Outcome][band][price] = struct{}{}
	}

	ladders := make([]*Ladder, 0, 2)
	for _, outcome := range []models.Outcome{models.UP, models.DOWN} {
		levels := byOutcome[outcome]
		if len(levels) < 2 {
			continue
		}
		l := &Ladder{Outcome: outcome, LevelsByImbalance: map[string]int{}}

		prices := make([]float64, 0, len(levels))
		for p := range levels {
			prices = append(prices, p)
		}
		sort.Float64s(prices)
		for _, p := range prices {
			acc := levels[p]
			l.Levels = append(l.Levels, LadderLevel{
				Price:    p,
				Fills:    acc.count,
				MeanSize: acc.size / float64(acc.count),
			})
		}

		spacings := make([]float64, 0, len(prices)-1)
		for i := 1; i < len(prices); i++ {
			spacings = append(spacings, math.Round((prices[i]-prices[i-1])*100)/100)
		}
		l.MedianSpacing, _ = stats.Median(spacings)

		for band, set := range bandLevels[outcome] {
			l.LevelsByImbalance[band] = len(set)
		}
		ladders = append(ladders, l)
	}
	return ladders
}

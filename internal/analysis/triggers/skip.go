package triggers

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"MakerLens/internal/analysis/ingest"
	"MakerLens/internal/domain/models"
)

// SkipAnalysis reports whether untraded windows look like deliberate
// selection rather than data absence. A participant sitting out is a
// signal: it correlates with opening prices far from fair value and runs
// in streaks while capital is locked in pending settlement.
type SkipAnalysis struct {
	WindowsWithPrices int     `json:"windows_with_prices"`
	WindowsTraded     int     `json:"windows_traded"`
	WindowsSkipped    int     `json:"windows_skipped"`
	SkipRate          float64 `json:"skip_rate"`

	// Opening-price distance from fair value (|open - 0.5|), split by
	// traded vs skipped. A gap between the two means selection.
	MeanOpenDistTraded  float64 `json:"mean_open_dist_traded"`
	MeanOpenDistSkipped float64 `json:"mean_open_dist_skipped"`
	// Point-biserial correlation between skip occurrence and distance.
	OpenDistCorrelation float64 `json:"open_dist_correlation"`

	// Streaks of consecutive skipped windows, ordered by open time.
	SkipStreaks    []int   `json:"skip_streaks"`
	MaxSkipStreak  int     `json:"max_skip_streak"`
	MeanSkipStreak float64 `json:"mean_skip_streak"`
}

// AnalyzeSkips computes the selection statistics. priceLog must cover both
// traded and untraded windows; traded holds the slugs the participant
// filled in. maxLookup bounds the opening-price search near the window
// open.
func AnalyzeSkips(priceLog map[string]models.PriceSeries, traded map[string]struct{}, maxLookup float64) *SkipAnalysis {
	a := &SkipAnalysis{}

	type obs struct {
		open    float64
		skipped bool
		dist    float64
		hasDist bool
	}
	observations := make([]obs, 0, len(priceLog))

	for slug, series := range priceLog {
		if len(series) == 0 {
			continue
		}
		_, isTraded := traded[slug]
		o := obs{skipped: !isTraded}
		o.open = ingest.WindowOpenTime(slug, series[0].Timestamp)
		if p := ingest.NearestPrice(series, o.open, maxLookup); p != nil {
			o.dist = math.Abs(p.YesPrice - 0.5)
			o.hasDist = true
		}
		observations = append(observations, o)

		a.WindowsWithPrices++
		if isTraded {
			a.WindowsTraded++
		} else {
			a.WindowsSkipped++
		}
	}
	if a.WindowsWithPrices == 0 {
		return a
	}
	a.SkipRate = float64(a.WindowsSkipped) / float64(a.WindowsWithPrices)

	var distTraded, distSkipped, skipFlags, dists []float64
	for _, o := range observations {
		if !o.hasDist {
			continue
		}
		dists = append(dists, o.dist)
		if o.skipped {
			skipFlags = append(skipFlags, 1)
			distSkipped = append(distSkipped, o.dist)
		} else {
			skipFlags = append(skipFlags, 0)
			distTraded = append(distTraded, o.dist)
		}
	}
	if m, err := stats.Mean(distTraded); err == nil {
		a.MeanOpenDistTraded = m
	}
	if m, err := stats.Mean(distSkipped); err == nil {
		a.MeanOpenDistSkipped = m
	}
	if len(dists) >= 3 {
		if c, err := stats.Correlation(skipFlags, dists); err == nil {
			a.OpenDistCorrelation = c
		}
	}

	// Streaks need windows in open-time order.
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].open < observations[j].open
	})
	streak := 0
	for _, o := range observations {
		if o.skipped {
			streak++
			continue
		}
		if streak > 0 {
			a.SkipStreaks = append(a.SkipStreaks, streak)
		}
		streak = 0
	}
	if streak > 0 {
		a.SkipStreaks = append(a.SkipStreaks, streak)
	}
	var total int
	for _, s := range a.SkipStreaks {
		total += s
		if s > a.MaxSkipStreak {
			a.MaxSkipStreak = s
		}
	}
	if len(a.SkipStreaks) > 0 {
		a.MeanSkipStreak = float64(total) / float64(len(a.SkipStreaks))
	}
	return a
}

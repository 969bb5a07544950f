package triggers

import (
	"math"

	"github.com/montanaflynn/stats"

	"MakerLens/internal/domain/models"
)

// RegimeFeatures is the fixed feature vector a window's price path reduces
// to. The classifier is a pure function over this vector: same features,
// same regime.
type RegimeFeatures struct {
	ReturnVol       float64 `json:"return_vol"`
	TrendSlope      float64 `json:"trend_slope"`
	SignPersistence float64 `json:"sign_persistence"` // fraction of returns sharing the majority sign
	Autocorr        float64 `json:"lag1_autocorr"`
	PriceRange      float64 `json:"price_range"`
	MeanSpread      float64 `json:"mean_spread"`
	NetMove         float64 `json:"net_move"`
	MeanAbsReturn   float64 `json:"mean_abs_return"`
	PinnedFraction  float64 `json:"pinned_fraction"` // time spent beyond 0.90/0.10
}

// Rule thresholds, tuned on the reference capture set. Fixed constants so
// a feature vector always maps to the same label.
const (
	pinnedLevel        = 0.90
	resolvedPinnedFrac = 0.50
	volatileVol        = 0.030
	volatileAbsReturn  = 0.015
	trendingNetMove    = 0.15
	trendingPersist    = 0.62
)

// ExtractFeatures reduces a window's YES-price series to the regime
// feature vector. Returns false when the series is too short to say
// anything.
func ExtractFeatures(series models.PriceSeries) (RegimeFeatures, bool) {
	var f RegimeFeatures
	if len(series) < 3 {
		return f, false
	}

	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.YesPrice
		f.MeanSpread += p.Spread
	}
	f.MeanSpread /= float64(len(series))

	returns := make([]float64, 0, len(prices)-1)
	var pos, neg int
	pinned := 0
	lo, hi := prices[0], prices[0]
	for i, p := range prices {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
		if p >= pinnedLevel || p <= 1-pinnedLevel {
			pinned++
		}
		if i == 0 {
			continue
		}
		r := p - prices[i-1]
		returns = append(returns, r)
		f.MeanAbsReturn += math.Abs(r)
		if r > 0 {
			pos++
		} else if r < 0 {
			neg++
		}
	}
	f.MeanAbsReturn /= float64(len(returns))
	f.PriceRange = hi - lo
	f.NetMove = prices[len(prices)-1] - prices[0]
	f.PinnedFraction = float64(pinned) / float64(len(prices))
	if signed := pos + neg; signed > 0 {
		f.SignPersistence = float64(max(pos, neg)) / float64(signed)
	}

	if sd, err := stats.StandardDeviationSample(returns); err == nil {
		f.ReturnVol = sd
	}
	if len(returns) >= 3 {
		if ac, err := stats.Correlation(returns[:len(returns)-1], returns[1:]); err == nil {
			f.Autocorr = ac
		}
	}

	// Least-squares slope of price against observation index.
	xy := make([]stats.Coordinate, len(prices))
	for i, p := range prices {
		xy[i] = stats.Coordinate{X: float64(i), Y: p}
	}
	if reg, err := stats.LinearRegression(xy); err == nil && len(reg) >= 2 {
		f.TrendSlope = reg[1].Y - reg[0].Y
	}

	return f, true
}

// ClassifyRegime maps a feature vector onto the closed regime set. Rules
// are checked in priority order: a window pinned at a settled price is
// RESOLVED regardless of how it got there; unsettled windows split on
// volatility first, then trend.
func ClassifyRegime(f RegimeFeatures) models.Regime {
	if f.PinnedFraction >= resolvedPinnedFrac {
		return models.RegimeResolved
	}
	if f.ReturnVol >= volatileVol || f.MeanAbsReturn >= volatileAbsReturn {
		return models.RegimeVolatile
	}
	if math.Abs(f.NetMove) >= trendingNetMove && f.SignPersistence >= trendingPersist {
		return models.RegimeTrending
	}
	return models.RegimeRanging
}

// LabelWindow is the convenience composition used by the pipeline.
func LabelWindow(series models.PriceSeries) models.Regime {
	f, ok := ExtractFeatures(series)
	if !ok {
		return models.RegimeUnknown
	}
	return ClassifyRegime(f)
}

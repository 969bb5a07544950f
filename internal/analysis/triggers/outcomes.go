package triggers

import (
	"github.com/montanaflynn/stats"

	"MakerLens/internal/domain/models"
)

// CohortStats compares fill behavior between two window cohorts.
type CohortStats struct {
	Windows       int     `json:"windows"`
	MeanFills     float64 `json:"mean_fills"`
	MeanTakerFrac float64 `json:"mean_taker_frac"`
	MeanEntryFrac float64 `json:"mean_entry_frac"` // first fill, fraction of window elapsed
	MeanBalance   float64 `json:"mean_balance"`    // UP / total shares
	MeanPairCost  float64 `json:"mean_pair_cost"`
	TotalPnL      float64 `json:"total_pnl"`
}

// OutcomeBreakdown conditions behavior on whether the window won.
type OutcomeBreakdown struct {
	Wins   CohortStats `json:"wins"`
	Losses CohortStats `json:"losses"`
}

// CombinedCostStats summarizes combined pair cost achievement across
// windows that held both sides.
type CombinedCostStats struct {
	Windows     int     `json:"windows"`
	UnderDollar int     `json:"under_1_00"`
	Under95     int     `json:"under_0_95"`
	Under90     int     `json:"under_0_90"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Best        float64 `json:"best"`
	Worst       float64 `json:"worst"`
	Stdev       float64 `json:"stdev"`
}

// EntryPatternStats captures timing habits across windows with fills.
type EntryPatternStats struct {
	MedianFirstFillSecs float64 `json:"median_first_fill_secs"`
	FirstSideUpFrac     float64 `json:"first_side_up_frac"`
	MeanFillsPerWindow  float64 `json:"mean_fills_per_window"`
	MeanSideSwitches    float64 `json:"mean_side_switches"`
	MedianTimeToSubUSD  float64 `json:"median_time_to_sub_dollar"` // -1 when never reached
}

// AnalyzeOutcomes conditions behavior on win/loss across summarized,
// non-skipped windows.
func AnalyzeOutcomes(summaries []*models.WindowSummary) *OutcomeBreakdown {
	var wins, losses []*models.WindowSummary
	for _, s := range summaries {
		if s.Skipped || s.FillCount == 0 {
			continue
		}
		if s.Win {
			wins = append(wins, s)
		} else {
			losses = append(losses, s)
		}
	}
	return &OutcomeBreakdown{
		Wins:   cohort(wins),
		Losses: cohort(losses),
	}
}

func cohort(ws []*models.WindowSummary) CohortStats {
	c := CohortStats{Windows: len(ws)}
	if len(ws) == 0 {
		return c
	}
	for _, s := range ws {
		c.MeanFills += float64(s.FillCount)
		if s.ClassifiedCount > 0 {
			c.MeanTakerFrac += float64(s.TakerCount) / float64(s.ClassifiedCount)
		}
		dur := s.CloseTime - s.OpenTime
		if dur > 0 {
			c.MeanEntryFrac += s.FirstFillSecs / dur
		}
		if total := s.UpShares + s.DownShares; total > 0 {
			c.MeanBalance += s.UpShares / total
		}
		c.MeanPairCost += s.CombinedPairCost
		c.TotalPnL += s.RealizedPnL
	}
	n := float64(len(ws))
	c.MeanFills /= n
	c.MeanTakerFrac /= n
	c.MeanEntryFrac /= n
	c.MeanBalance /= n
	c.MeanPairCost /= n
	return c
}

// AnalyzeCombinedCost measures how often the participant locked the pair
// in under a dollar, and by how much.
func AnalyzeCombinedCost(summaries []*models.WindowSummary) *CombinedCostStats {
	var costs []float64
	for _, s := range summaries {
		if s.Skipped || s.MatchedPairs == 0 {
			continue
		}
		costs = append(costs, s.CombinedPairCost)
	}
	c := &CombinedCostStats{Windows: len(costs)}
	if len(costs) == 0 {
		return c
	}
	for _, v := range costs {
		if v < 1.00 {
			c.UnderDollar++
		}
		if v < 0.95 {
			c.Under95++
		}
		if v < 0.90 {
			c.Under90++
		}
	}
	c.Mean, _ = stats.Mean(costs)
	c.Median, _ = stats.Median(costs)
	c.Best, _ = stats.Min(costs)
	c.Worst, _ = stats.Max(costs)
	if len(costs) > 1 {
		c.Stdev, _ = stats.StandardDeviationSample(costs)
	}
	return c
}

// AnalyzeEntryPatterns summarizes entry timing and side habits.
func AnalyzeEntryPatterns(summaries []*models.WindowSummary) *EntryPatternStats {
	var firstSecs, subDollar []float64
	var upFirst, withFills, switches, fills int
	for _, s := range summaries {
		if s.Skipped || s.FillCount == 0 {
			continue
		}
		withFills++
		fills += s.FillCount
		switches += s.SideSwitches
		firstSecs = append(firstSecs, s.FirstFillSecs)
		if s.FirstSide == models.UP {
			upFirst++
		}
		if s.TimeToSubDollar >= 0 {
			subDollar = append(subDollar, s.TimeToSubDollar)
		}
	}
	e := &EntryPatternStats{MedianTimeToSubUSD: -1}
	if withFills == 0 {
		return e
	}
	e.MedianFirstFillSecs, _ = stats.Median(firstSecs)
	e.FirstSideUpFrac = float64(upFirst) / float64(withFills)
	e.MeanFillsPerWindow = float64(fills) / float64(withFills)
	e.MeanSideSwitches = float64(switches) / float64(withFills)
	if len(subDollar) > 0 {
		e.MedianTimeToSubUSD, _ = stats.Median(subDollar)
	}
	return e
}

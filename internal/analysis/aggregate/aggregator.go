// Package aggregate folds a window's classified fills into inventory
// trajectories, combined pair cost, and the window outcome.
package aggregate

import (
	"MakerLens/internal/domain/models"
)

// Summarize builds the immutable WindowSummary for one window. Fills must
// already be in timestamp order. The settlement outcome is optional: when
// absent, win/loss falls back to the combined-pair-cost proxy (matched
// pairs under a dollar lock in profit regardless of direction).
func Summarize(w *models.Window, fills []models.ClassifiedFill, prices models.PriceSeries) *models.WindowSummary {
	s := &models.WindowSummary{
		WindowID:        w.ID,
		OpenTime:        w.OpenTime,
		CloseTime:       w.CloseTime,
		FillCount:       len(fills),
		TimeToSubDollar: -1,
		Regime:          models.RegimeUnknown,
	}

	var upShares, downShares, upCost, downCost float64
	var prevSide models.Outcome
	s.Trajectory = make([]models.TrajectoryStep, 0, len(fills))

	for i := range fills {
		f := &fills[i]

		if f.Resolved() {
			s.ClassifiedCount++
			if f.Label == models.Maker {
				s.MakerCount++
			} else {
				s.TakerCount++
			}
		}

		switch f.Outcome {
		case models.UP:
			upShares += f.Size
			upCost += f.Cost()
		case models.DOWN:
			downShares += f.Size
			downCost += f.Cost()
		}

		if i == 0 {
			s.FirstFillSecs = f.SecsIntoWin
			s.FirstSide = f.Outcome
		} else if f.Outcome != prevSide {
			s.SideSwitches++
		}
		prevSide = f.Outcome

		step := models.TrajectoryStep{
			Timestamp:    f.Timestamp,
			UpShares:     upShares,
			DownShares:   downShares,
			UpCost:       upCost,
			DownCost:     downCost,
			MatchedPairs: min(upShares, downShares),
			Imbalance:    imbalance(upShares, downShares),
		}
		if upShares > 0 && downShares > 0 {
			step.CombinedCost = upCost/upShares + downCost/downShares
			if s.TimeToSubDollar < 0 && step.CombinedCost < 1.0 {
				s.TimeToSubDollar = f.SecsIntoWin
			}
		}
		s.Trajectory = append(s.Trajectory, step)
	}

	s.UpShares = upShares
	s.DownShares = downShares
	s.UpCost = upCost
	s.DownCost = downCost
	s.Imbalance = imbalance(upShares, downShares)
	s.MatchedPairs = min(upShares, downShares)
	if s.ClassifiedCount > 0 {
		s.MakerFraction = float64(s.MakerCount) / float64(s.ClassifiedCount)
	}

	// Combined pair cost over the matched portion: one UP plus one DOWN
	// share at each side's average cost.
	if s.MatchedPairs > 0 {
		s.CombinedPairCost = upCost/upShares + downCost/downShares
	}

	// Orphans: the unmatched excess, carried at that side's average cost.
	switch {
	case upShares > downShares:
		s.OrphanSide = models.UP
		s.OrphanShares = upShares - downShares
		s.OrphanCostBasis = avg(upCost, upShares)
	case downShares > upShares:
		s.OrphanSide = models.DOWN
		s.OrphanShares = downShares - upShares
		s.OrphanCostBasis = avg(downCost, downShares)
	}

	settle(s, prices)
	return s
}

func settle(s *models.WindowSummary, prices models.PriceSeries) {
	outcome, known := prices.SettlementOutcome()
	if !known {
		// Pair-cost proxy: guaranteed-profit pairs decide, orphans pending.
		s.Win = s.PairsBelow(1.0)
		return
	}
	s.OutcomeKnown = true
	s.Outcome = outcome

	payout := s.DownShares
	if outcome == models.UP {
		payout = s.UpShares
	}
	s.RealizedPnL = payout - (s.UpCost + s.DownCost)
	s.Win = s.RealizedPnL > 0
}

func imbalance(up, down float64) float64 {
	total := up + down
	if total == 0 {
		return 0
	}
	diff := up - down
	if diff < 0 {
		diff = -diff
	}
	return diff / total
}

func avg(cost, shares float64) float64 {
	if shares == 0 {
		return 0
	}
	return cost / shares
}

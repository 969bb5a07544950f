package classify

import (
	"MakerLens/internal/analysis/ingest"
	"MakerLens/internal/domain/models"
)

// Config is the classifier's immutable tuning, threaded explicitly so the
// pipeline stays deterministic and testable per component.
type Config struct {
	// TimingOffsetSecs corrects the systematic lag between on-chain trade
	// timestamps and matching-engine execution time. Applied to fill
	// timestamps before any snapshot lookup.
	TimingOffsetSecs  float64
	GapToleranceSecs  float64
	VanishedTolerance float64
	SoleOrderBand     float64
}

// Classifier composes the two strategies with the reconciliation policy:
// BBO provides the primary label (higher coverage), book-diff is the
// higher-confidence cross-check and the sole-resting-order detector.
// Disagreement between the two is recorded, never silently resolved.
type Classifier struct {
	cfg      Config
	bbo      BBOStrategy
	bookDiff BookDiffStrategy
}

func New(cfg Config) *Classifier {
	return &Classifier{
		cfg: cfg,
		bookDiff: BookDiffStrategy{
			Tolerance: cfg.VanishedTolerance,
			SoleBand:  cfg.SoleOrderBand,
		},
	}
}

// WindowResult is the classified output for one eligible window.
type WindowResult struct {
	Fills         []models.ClassifiedFill
	Disagreements int
}

// ClassifyWindow labels every fill of an eligible window. Fills are
// processed in strict timestamp order; the running-position state attached
// to each classified fill is the state before that fill executed.
func (c *Classifier) ClassifyWindow(w *models.Window, prices models.PriceSeries) *WindowResult {
	timelines := map[models.Outcome]*Timeline{
		models.UP:   NewTimeline(w.Snapshots[models.UP]),
		models.DOWN: NewTimeline(w.Snapshots[models.DOWN]),
	}

	res := &WindowResult{Fills: make([]models.ClassifiedFill, 0, len(w.Trades))}
	duration := w.CloseTime - w.OpenTime
	var upShares, downShares float64

	for i := range w.Trades {
		fill := &w.Trades[i]
		cf := models.ClassifiedFill{
			Trade:       *fill,
			Label:       models.Unclassified,
			RunningUp:   upShares,
			RunningDown: downShares,
			SecsIntoWin: fill.Timestamp - w.OpenTime,
		}
		if total := upShares + downShares; total > 0 {
			diff := upShares - downShares
			if diff < 0 {
				diff = -diff
			}
			cf.Imbalance = diff / total
		}
		if duration > 0 {
			cf.ElapsedFrac = (fill.Timestamp - w.OpenTime) / duration
		}

		ctx := &FillContext{
			Timeline: timelines[fill.Outcome],
			LookupTS: fill.Timestamp + c.cfg.TimingOffsetSecs,
			MaxGap:   c.cfg.GapToleranceSecs,
		}

		primary := c.bbo.Classify(fill, ctx)
		cross := c.bookDiff.Classify(fill, ctx)

		switch {
		case primary.Label != models.Unclassified:
			cf.Label = primary.Label
			cf.Method = models.MethodBBO
		case cross.Label != models.Unclassified:
			// BBO out of range but the diff resolved: take the
			// higher-precision answer rather than dropping the fill.
			cf.Label = cross.Label
			cf.Method = models.MethodBookDiff
		}
		if cross.Label != models.Unclassified {
			ratio := cross.MatchRatio
			sole := cross.SoleRestingOrder
			cf.MatchRatio = &ratio
			cf.SoleRestingOrder = &sole
			if primary.Label != models.Unclassified && primary.Label != cross.Label {
				cf.Disagreement = true
				res.Disagreements++
			}
		}

		cf.Book = bookContext(ctx)
		if p := ingest.NearestPrice(prices, fill.Timestamp, c.cfg.GapToleranceSecs); p != nil {
			market := p.YesPrice
			if fill.Outcome == models.DOWN {
				market = p.NoPrice
			}
			edge := market - fill.Price
			cf.EdgeVsMarket = &edge
		}

		res.Fills = append(res.Fills, cf)

		switch fill.Outcome {
		case models.UP:
			upShares += fill.Size
		case models.DOWN:
			downShares += fill.Size
		}
	}
	return res
}

// bookContext captures the microstructure state at the preceding snapshot
// plus the order-flow imbalance across the fill when an after snapshot is
// in range.
func bookContext(ctx *FillContext) models.BookContext {
	before := ctx.Timeline.Before(ctx.LookupTS, ctx.MaxGap)
	if before == nil {
		return models.BookContext{}
	}
	const depthLevels = 5
	bd := before.BidDepth(depthLevels)
	ad := before.AskDepth(depthLevels)
	bc := models.BookContext{
		BestBid:    before.BestBid(),
		BestAsk:    before.BestAsk(),
		Spread:     before.Spread(),
		Mid:        before.Mid(),
		Microprice: before.Microprice(),
		BidDepth:   bd,
		AskDepth:   ad,
	}
	if total := bd + ad; total > 0 {
		bc.BookImbalance = (bd - ad) / total
	}
	if after := ctx.Timeline.After(ctx.LookupTS, ctx.MaxGap); after != nil {
		bc.FlowImbalance = (after.BidDepth(depthLevels) - bd) - (after.AskDepth(depthLevels) - ad)
	}
	return bc
}

// OffsetSensitivity is the maker fraction observed at one timing offset.
type OffsetSensitivity struct {
	OffsetSecs    float64 `json:"offset_secs"`
	MakerFraction float64 `json:"maker_fraction"`
	Classified    int     `json:"classified"`
	Total         int     `json:"total"`
}

// SweepOffsets re-runs classification across a range of timing offsets and
// reports the maker-fraction estimate at each, bounding how sensitive the
// maker/taker conclusion is to on-chain timestamp lag.
func SweepOffsets(cfg Config, offsets []float64, windows []*models.Window, prices map[string]models.PriceSeries) []OffsetSensitivity {
	out := make([]OffsetSensitivity, 0, len(offsets))
	for _, off := range offsets {
		c := cfg
		c.TimingOffsetSecs = off
		clf := New(c)

		var maker, classified, total int
		for _, w := range windows {
			res := clf.ClassifyWindow(w, prices[w.ID])
			for i := range res.Fills {
				total++
				if res.Fills[i].Resolved() {
					classified++
					if res.Fills[i].Label == models.Maker {
						maker++
					}
				}
			}
		}
		s := OffsetSensitivity{OffsetSecs: off, Classified: classified, Total: total}
		if classified > 0 {
			s.MakerFraction = float64(maker) / float64(classified)
		}
		out = append(out, s)
	}
	return out
}

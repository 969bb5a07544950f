package classify

import (
	"MakerLens/internal/domain/models"
)

// Result is one strategy's verdict on a single fill.
type Result struct {
	Label models.Label
	// MatchRatio is vanished quantity over fill size; meaningful only for
	// the book-diff strategy.
	MatchRatio float64
	// SoleRestingOrder is true when the vanished quantity matched the fill
	// size closely enough that no other participant was quoting the level.
	SoleRestingOrder bool
}

// FillContext is everything a strategy may consult for one fill: the
// snapshot timeline of the fill's outcome leg and the (offset-corrected)
// lookup timestamp.
type FillContext struct {
	Timeline *Timeline
	LookupTS float64
	MaxGap   float64
}

// Strategy assigns a provenance label to one fill. Implementations must be
// pure: same fill and context, same result.
type Strategy interface {
	Name() models.Method
	Classify(fill *models.Trade, ctx *FillContext) Result
}

// BBOStrategy labels fills by comparing the execution price against the
// best bid/offer at the nearest preceding snapshot. High coverage, coarse
// precision: a BUY at or through the best ask lifted the offer (taker),
// below it a resting bid must have been hit (maker).
type BBOStrategy struct{}

func (BBOStrategy) Name() models.Method { return models.MethodBBO }

func (BBOStrategy) Classify(fill *models.Trade, ctx *FillContext) Result {
	before := ctx.Timeline.Before(ctx.LookupTS, ctx.MaxGap)
	if before == nil {
		return Result{Label: models.Unclassified}
	}
	switch fill.Side {
	case models.BUY:
		if fill.Price >= before.BestAsk() {
			return Result{Label: models.Taker}
		}
		return Result{Label: models.Maker}
	case models.SELL:
		if fill.Price <= before.BestBid() {
			return Result{Label: models.Taker}
		}
		return Result{Label: models.Maker}
	}
	return Result{Label: models.Unclassified}
}

// BookDiffStrategy labels fills by diffing the book around the fill: the
// side whose resting quantity at the fill price vanished tells who was
// resting. Lower coverage (needs both a before and an after snapshot in
// range) but higher precision, and the only strategy that can establish
// sole-resting-order evidence.
type BookDiffStrategy struct {
	// Tolerance is the minimum vanished/fill-size ratio to accept a side's
	// depth change as explaining the fill. 0.8 tolerates partial decay.
	Tolerance float64
	// SoleBand is the half-width around ratio 1.0 inside which the resting
	// order is judged to have been alone at the level.
	SoleBand float64
}

func (BookDiffStrategy) Name() models.Method { return models.MethodBookDiff }

func (s BookDiffStrategy) Classify(fill *models.Trade, ctx *FillContext) Result {
	before := ctx.Timeline.Before(ctx.LookupTS, ctx.MaxGap)
	after := ctx.Timeline.After(ctx.LookupTS, ctx.MaxGap)
	if before == nil || after == nil {
		return Result{Label: models.Unclassified}
	}

	askVanished := before.AskAt(fill.Price) - after.AskAt(fill.Price)
	bidVanished := before.BidAt(fill.Price) - after.BidAt(fill.Price)
	threshold := fill.Size * s.Tolerance

	// A fill at exactly the tolerance boundary classifies: >= keeps the
	// boundary case deterministic across runs.
	var vanished, restingBefore float64
	var label models.Label
	switch fill.Side {
	case models.BUY:
		// Consumed asks = crossed the spread; own resting bid hit = maker.
		if askVanished >= threshold {
			vanished, restingBefore, label = askVanished, before.AskAt(fill.Price), models.Taker
		} else if bidVanished >= threshold {
			vanished, restingBefore, label = bidVanished, before.BidAt(fill.Price), models.Maker
		}
	case models.SELL:
		if bidVanished >= threshold {
			vanished, restingBefore, label = bidVanished, before.BidAt(fill.Price), models.Taker
		} else if askVanished >= threshold {
			vanished, restingBefore, label = askVanished, before.AskAt(fill.Price), models.Maker
		}
	}
	if label == "" {
		return Result{Label: models.Unclassified}
	}

	ratio := vanished / fill.Size
	// Sole resting order: the vanished quantity matches the fill AND the
	// level held nothing beyond the fill itself beforehand. Depth that
	// exceeds the fill means someone else was quoting the same price.
	sole := ratio >= 1-s.SoleBand && ratio <= 1+s.SoleBand &&
		restingBefore <= fill.Size*(1+s.SoleBand)
	return Result{
		Label:            label,
		MatchRatio:       ratio,
		SoleRestingOrder: sole,
	}
}

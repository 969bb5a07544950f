package models

// NormalizationReport counts what the ingest stage accepted and rejected.
// Emitted with every run so classification quality can be audited.
type NormalizationReport struct {
	TradesParsed     int `json:"trades_parsed"`
	TradesDuplicate  int `json:"trades_duplicate"`
	TradesMalformed  int `json:"trades_malformed"`
	SnapshotsParsed  int `json:"snapshots_parsed"`
	SnapshotsCrossed int `json:"snapshots_crossed"`
	SnapshotsBad     int `json:"snapshots_malformed"`
	PriceRowsParsed  int `json:"price_rows_parsed"`
	PriceRowsBad     int `json:"price_rows_malformed"`
}

// Merge folds another report into this one. Associative and commutative so
// per-window partials can be reduced in any order.
func (r *NormalizationReport) Merge(o NormalizationReport) {
	r.TradesParsed += o.TradesParsed
	r.TradesDuplicate += o.TradesDuplicate
	r.TradesMalformed += o.TradesMalformed
	r.SnapshotsParsed += o.SnapshotsParsed
	r.SnapshotsCrossed += o.SnapshotsCrossed
	r.SnapshotsBad += o.SnapshotsBad
	r.PriceRowsParsed += o.PriceRowsParsed
	r.PriceRowsBad += o.PriceRowsBad
}

// QualityReport aggregates classification quality for one run.
type QualityReport struct {
	WindowsTotal      int                `json:"windows_total"`
	WindowsEligible   int                `json:"windows_eligible"`
	WindowsSkipped    map[SkipReason]int `json:"windows_skipped"`
	FillsTotal        int                `json:"fills_total"`
	FillsClassified   int                `json:"fills_classified"`
	FillsUnclassified int                `json:"fills_unclassified"`
	Disagreements     int                `json:"strategy_disagreements"`
	MakerFills        int                `json:"maker_fills"`
	TakerFills        int                `json:"taker_fills"`
	SoleRestingFills  int                `json:"sole_resting_fills"`
}

// NewQualityReport returns a report with the skip map initialized.
func NewQualityReport() QualityReport {
	return QualityReport{WindowsSkipped: make(map[SkipReason]int)}
}

// ClassificationRate is the fraction of fills carrying a resolved label.
func (q *QualityReport) ClassificationRate() float64 {
	if q.FillsTotal == 0 {
		return 0
	}
	return float64(q.FillsClassified) / float64(q.FillsTotal)
}

// MakerFraction is the maker share among resolved fills.
func (q *QualityReport) MakerFraction() float64 {
	resolved := q.MakerFills + q.TakerFills
	if resolved == 0 {
		return 0
	}
	return float64(q.MakerFills) / float64(resolved)
}

// Merge folds another quality report into this one.
func (q *QualityReport) Merge(o QualityReport) {
	q.WindowsTotal += o.WindowsTotal
	q.WindowsEligible += o.WindowsEligible
	for reason, n := range o.WindowsSkipped {
		q.WindowsSkipped[reason] += n
	}
	q.FillsTotal += o.FillsTotal
	q.FillsClassified += o.FillsClassified
	q.FillsUnclassified += o.FillsUnclassified
	q.Disagreements += o.Disagreements
	q.MakerFills += o.MakerFills
	q.TakerFills += o.TakerFills
	q.SoleRestingFills += o.SoleRestingFills
}

package usecase

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"MakerLens/internal/analysis/aggregate"
	"MakerLens/internal/analysis/classify"
	"MakerLens/internal/analysis/fingerprint"
	"MakerLens/internal/analysis/ingest"
	"MakerLens/internal/analysis/triggers"
	"MakerLens/internal/domain/models"
	domrepo "MakerLens/internal/domain/repository"
	"MakerLens/pkg/config"
	applogger "MakerLens/pkg/logger"
)

// RunResult is everything one pass over the capture produces: per-fill
// labels, per-window rollups, and the run-level behavioral reports.
type RunResult struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	ElapsedSecs float64   `json:"elapsed_secs"`

	Fills     []models.ClassifiedFill `json:"-"`
	Summaries []*models.WindowSummary `json:"summaries"`

	Normalization models.NormalizationReport  `json:"normalization"`
	Quality       models.QualityReport        `json:"quality"`
	Aggression    *triggers.AggressionTable   `json:"aggression"`
	Skips         *triggers.SkipAnalysis      `json:"skips"`
	Outcomes      *triggers.OutcomeBreakdown  `json:"outcomes"`
	CombinedCost  *triggers.CombinedCostStats `json:"combined_cost"`
	Entries       *triggers.EntryPatternStats `json:"entries"`
	Execution     *triggers.ExecutionQuality  `json:"execution"`

	Sizes       *fingerprint.SizeSignature   `json:"sizes"`
	Ladders     []*fingerprint.Ladder        `json:"ladders"`
	Replenish   *fingerprint.ReplenishStats  `json:"replenish"`
	OffsetSweep []classify.OffsetSensitivity `json:"offset_sweep"`
}

// Pipeline reconstructs fill provenance for every window found in the
// trade history: ingest, completeness gating, classification, aggregation,
// then the run-level trigger and fingerprint analyses. Windows are
// independent, so classification fans out over a worker pool and the
// partial tables are merged afterwards; merge order never affects the
// result.
type Pipeline struct {
	cfg     *config.Config
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewPipeline(cfg *config.Config, metrics domrepo.Metrics, l *applogger.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, metrics: metrics, l: l}
}

// windowJob carries one eligible window through the pool.
type windowJob struct {
	idx    int
	window *models.Window
	prices models.PriceSeries
}

// windowOutput is the per-window partial, reduced after the pool drains.
type windowOutput struct {
	summary   *models.WindowSummary
	fills     []models.ClassifiedFill
	table     *triggers.AggressionTable
	replenish []fingerprint.ReplenishEvent
	quality   models.QualityReport
}

// Run executes the full pipeline over the configured inputs.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	res := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Quality:   models.NewQualityReport(),
	}
	start := time.Now()

	p.l.Info("run starting",
		applogger.String("run_id", res.RunID),
		applogger.String("trades", p.cfg.Data.TradesFile),
		applogger.String("l2_dir", p.cfg.Data.L2Dir),
	)

	trades, priceLog, err := p.loadInputs()
	if err != nil {
		p.metrics.RecordError("ingest")
		return nil, err
	}
	res.Normalization = trades.Report
	if priceLog != nil {
		res.Normalization.Merge(priceLog.Report)
	}

	windows, err := p.assembleWindows(ctx, trades, res)
	if err != nil {
		return nil, err
	}

	eligible := p.gateWindows(windows, res)
	outputs := p.classifyAll(ctx, eligible, priceLog)
	p.reduce(outputs, res)

	p.analyzeRun(res, eligible, priceLog, trades)

	res.ElapsedSecs = time.Since(start).Seconds()
	p.metrics.RecordMakerFraction(res.Quality.MakerFraction())
	p.metrics.RecordClassificationRate(res.Quality.ClassificationRate())

	p.l.Info("run finished",
		applogger.String("run_id", res.RunID),
		applogger.Int("windows", res.Quality.WindowsTotal),
		applogger.Int("eligible", res.Quality.WindowsEligible),
		applogger.Int("fills", res.Quality.FillsTotal),
		applogger.Float64("maker_fraction", res.Quality.MakerFraction()),
		applogger.Float64("elapsed_secs", res.ElapsedSecs),
	)
	return res, nil
}

func (p *Pipeline) loadInputs() (*ingest.TradeResult, *ingest.PriceLogResult, error) {
	f, err := os.Open(p.cfg.Data.TradesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open trades: %w", err)
	}
	defer f.Close()

	trades, err := ingest.ReadTrades(f)
	if err != nil {
		return nil, nil, err
	}
	p.metrics.RecordRecords("trades", trades.Report.TradesParsed,
		trades.Report.TradesDuplicate+trades.Report.TradesMalformed)

	var priceLog *ingest.PriceLogResult
	if p.cfg.Data.PriceLogFile != "" {
		pf, err := os.Open(p.cfg.Data.PriceLogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open price log: %w", err)
		}
		defer pf.Close()

		// nil slug filter: untraded windows must survive for skip analysis.
		priceLog, err = ingest.ReadPriceLog(pf, nil)
		if err != nil {
			return nil, nil, err
		}
		p.metrics.RecordRecords("price_rows", priceLog.Report.PriceRowsParsed, priceLog.Report.PriceRowsBad)
	}
	return trades, priceLog, nil
}

func (p *Pipeline) assembleWindows(ctx context.Context, trades *ingest.TradeResult, res *RunResult) ([]*models.Window, error) {
	slugs := make([]string, 0, len(trades.ByWindow))
	for slug := range trades.ByWindow {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	captures := ingest.NewSnapshotDir(p.cfg.Data.L2Dir)
	windows := make([]*models.Window, 0, len(slugs))
	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snaps, err := captures.Load(slug)
		if err != nil {
			return nil, err
		}
		res.Normalization.Merge(snaps.Report)
		p.metrics.RecordRecords("snapshots", snaps.Report.SnapshotsParsed,
			snaps.Report.SnapshotsCrossed+snaps.Report.SnapshotsBad)

		windows = append(windows, ingest.BuildWindow(slug, trades.ByWindow[slug], snaps, p.cfg.Analysis.WindowDurationSecs))
	}
	return windows, nil
}

// gateWindows applies the completeness filter. Skipped windows still get a
// summary row so the skip reasons survive into the report.
func (p *Pipeline) gateWindows(windows []*models.Window, res *RunResult) []*models.Window {
	cov := classify.CoverageConfig{
		MinDurationSecs:  p.cfg.Analysis.MinDurationSecs,
		MinSnapshotCount: p.cfg.Analysis.MinSnapshotCount,
		GapToleranceSecs: p.cfg.Analysis.GapToleranceSecs,
	}

	eligible := make([]*models.Window, 0, len(windows))
	for _, w := range windows {
		res.Quality.WindowsTotal++
		ok, reason := classify.Evaluate(w, cov)
		if !ok {
			res.Quality.WindowsSkipped[reason]++
			p.metrics.RecordWindowSkipped(string(reason))
			res.Summaries = append(res.Summaries, &models.WindowSummary{
				WindowID:   w.ID,
				OpenTime:   w.OpenTime,
				CloseTime:  w.CloseTime,
				FillCount:  len(w.Trades),
				Skipped:    true,
				SkipReason: reason,
			})
			p.l.Debug("window skipped",
				applogger.String("window", w.ID),
				applogger.String("reason", string(reason)),
			)
			continue
		}
		res.Quality.WindowsEligible++
		eligible = append(eligible, w)
	}
	return eligible
}

func (p *Pipeline) classifyAll(ctx context.Context, windows []*models.Window, priceLog *ingest.PriceLogResult) []windowOutput {
	clf := classify.New(classify.Config{
		TimingOffsetSecs:  p.cfg.Analysis.TimingOffsetSecs,
		GapToleranceSecs:  p.cfg.Analysis.GapToleranceSecs,
		VanishedTolerance: p.cfg.Analysis.VanishedTolerance,
		SoleOrderBand:     p.cfg.Analysis.SoleOrderBand,
	})
	imbBuckets := triggers.Buckets{Edges: p.cfg.Analysis.ImbalanceEdges}
	timeBuckets := triggers.Buckets{Edges: p.cfg.Analysis.TimeEdges}
	replCfg := fingerprint.ReplenishConfig{
		TickSize:    0.01,
		HorizonSecs: 30,
		MaxGapSecs:  p.cfg.Analysis.GapToleranceSecs,
	}

	outputs := make([]windowOutput, len(windows))
	jobs := make(chan windowJob)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Analysis.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				outputs[job.idx] = p.processWindow(clf, imbBuckets, timeBuckets, replCfg, job)
			}
		}()
	}

	for i, w := range windows {
		var prices models.PriceSeries
		if priceLog != nil {
			prices = priceLog.ByWindow[w.ID]
		}
		select {
		case jobs <- windowJob{idx: i, window: w, prices: prices}:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return outputs[:0]
		}
	}
	close(jobs)
	wg.Wait()
	return outputs
}

func (p *Pipeline) processWindow(clf *classify.Classifier, imb, tm triggers.Buckets, replCfg fingerprint.ReplenishConfig, job windowJob) windowOutput {
	start := time.Now()
	w := job.window

	cr := clf.ClassifyWindow(w, job.prices)

	out := windowOutput{
		fills:   cr.Fills,
		table:   triggers.NewAggressionTable(imb, tm),
		quality: models.NewQualityReport(),
	}
	out.quality.Disagreements = cr.Disagreements

	for i := range cr.Fills {
		f := &cr.Fills[i]
		out.quality.FillsTotal++
		p.metrics.RecordFill(string(f.Label))
		switch f.Label {
		case models.Maker:
			out.quality.FillsClassified++
			out.quality.MakerFills++
		case models.Taker:
			out.quality.FillsClassified++
			out.quality.TakerFills++
		default:
			out.quality.FillsUnclassified++
		}
		if f.SoleRestingOrder != nil && *f.SoleRestingOrder {
			out.quality.SoleRestingFills++
		}
		out.table.Add(f)
	}

	out.summary = aggregate.Summarize(w, cr.Fills, job.prices)
	out.summary.Regime = triggers.LabelWindow(job.prices)
	out.replenish = fingerprint.AnalyzeReplenishment(w, cr.Fills, replCfg)

	p.metrics.RecordWindowLatency(time.Since(start).Seconds())
	return out
}

func (p *Pipeline) reduce(outputs []windowOutput, res *RunResult) {
	var replenish []fingerprint.ReplenishEvent
	for i := range outputs {
		o := &outputs[i]
		if o.summary == nil {
			continue
		}
		res.Summaries = append(res.Summaries, o.summary)
		res.Fills = append(res.Fills, o.fills...)
		res.Quality.Merge(o.quality)
		replenish = append(replenish, o.replenish...)
		if res.Aggression == nil {
			res.Aggression = o.table
		} else {
			res.Aggression.Merge(o.table)
		}
	}
	res.Replenish = fingerprint.SummarizeReplenishment(replenish)
	sort.Slice(res.Summaries, func(i, j int) bool {
		return res.Summaries[i].OpenTime < res.Summaries[j].OpenTime
	})
}

func (p *Pipeline) analyzeRun(res *RunResult, eligible []*models.Window, priceLog *ingest.PriceLogResult, trades *ingest.TradeResult) {
	analyzed := make([]*models.WindowSummary, 0, len(res.Summaries))
	for _, s := range res.Summaries {
		if !s.Skipped {
			analyzed = append(analyzed, s)
		}
	}

	res.Outcomes = triggers.AnalyzeOutcomes(analyzed)
	res.CombinedCost = triggers.AnalyzeCombinedCost(analyzed)
	res.Entries = triggers.AnalyzeEntryPatterns(analyzed)
	res.Execution = triggers.AnalyzeExecutionQuality(res.Fills)

	res.Sizes = fingerprint.ExtractSizes(res.Fills, 5)
	res.Ladders = fingerprint.ReconstructLadders(res.Fills)

	if priceLog != nil {
		traded := make(map[string]struct{}, len(trades.ByWindow))
		for slug := range trades.ByWindow {
			traded[slug] = struct{}{}
		}
		res.Skips = triggers.AnalyzeSkips(priceLog.ByWindow, traded, p.cfg.Analysis.GapToleranceSecs)
	}

	if len(p.cfg.Analysis.OffsetSweepSecs) > 0 && len(eligible) > 0 {
		prices := map[string]models.PriceSeries{}
		if priceLog != nil {
			prices = priceLog.ByWindow
		}
		res.OffsetSweep = classify.SweepOffsets(classify.Config{
			TimingOffsetSecs:  p.cfg.Analysis.TimingOffsetSecs,
			GapToleranceSecs:  p.cfg.Analysis.GapToleranceSecs,
			VanishedTolerance: p.cfg.Analysis.VanishedTolerance,
			SoleOrderBand:     p.cfg.Analysis.SoleOrderBand,
		}, p.cfg.Analysis.OffsetSweepSecs, eligible, prices)
	}
}

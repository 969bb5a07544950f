package usecase

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"MakerLens/internal/domain/models"
	"MakerLens/pkg/config"
	applogger "MakerLens/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordRecords(string, int, int)   {}
func (nopMetrics) RecordFill(string)                {}
func (nopMetrics) RecordWindowSkipped(string)       {}
func (nopMetrics) RecordWindowLatency(float64)      {}
func (nopMetrics) RecordMakerFraction(float64)      {}
func (nopMetrics) RecordClassificationRate(float64) {}
func (nopMetrics) RecordError(string)               {}

const (
	tradedSlug   = "btc-updown-1700000000"
	noCaptSlug   = "btc-updown-1700000900"
	untradedSlug = "btc-updown-1700001800"
	openTS       = 1700000000.0
)

func testConfig(t *testing.T, dataDir string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Data.TradesFile = filepath.Join(dataDir, "trades.json")
	cfg.Data.L2Dir = filepath.Join(dataDir, "l2")
	cfg.Data.PriceLogFile = filepath.Join(dataDir, "prices.csv")
	cfg.Analysis.WindowDurationSecs = 900
	cfg.Analysis.MinDurationSecs = 850
	cfg.Analysis.MinSnapshotCount = 10
	cfg.Analysis.GapToleranceSecs = 5
	cfg.Analysis.TimingOffsetSecs = -1
	cfg.Analysis.VanishedTolerance = 0.8
	cfg.Analysis.SoleOrderBand = 0.05
	cfg.Analysis.ImbalanceEdges = []float64{0.05, 0.10, 0.15, 0.20, 0.30, 0.50}
	cfg.Analysis.TimeEdges = []float64{0.1, 0.25, 0.5, 0.75, 0.9}
	cfg.Analysis.OffsetSweepSecs = []float64{-3, -2, -1, 0, 1, 2, 3}
	cfg.Analysis.Workers = 2
	return cfg
}

func writeTrades(t *testing.T, path string) {
	t.Helper()
	type rec struct {
		Timestamp  float64 `json:"timestamp"`
		Side       string  `json:"side"`
		Outcome    string  `json:"outcome"`
		Price      float64 `json:"price"`
		Size       float64 `json:"size"`
		WindowSlug string  `json:"window_slug"`
		TxHash     string  `json:"tx_hash"`
	}
	records := []rec{
		{openTS + 100, "BUY", "UP", 0.52, 100, tradedSlug, "0xa1"},
		{openTS + 200, "BUY", "UP", 0.48, 100, tradedSlug, "0xa2"},
		{openTS + 300, "BUY", "DOWN", 0.47, 80, tradedSlug, "0xa3"},
		// overlapping pagination repeats the first fill
		{openTS + 100, "BUY", "UP", 0.52, 100, tradedSlug, "0xa1"},
		// second window traded but never captured
		{openTS + 950, "BUY", "UP", 0.50, 50, noCaptSlug, "0xb1"},
	}
	b, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal trades: %v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write trades: %v", err)
	}
}

func writeCapture(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir l2: %v", err)
	}
	f, err := os.Create(filepath.Join(dir, tradedSlug+".jsonl.gz"))
	if err != nil {
		t.Fatalf("create capture: %v", err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	defer gz.Close()

	line := func(asset string, ts float64, bids, asks string) {
		fmt.Fprintf(gz, `{"asset":%q,"event":"book","ts":%.1f,"bids":%s,"asks":%s}`+"\n",
			asset, ts, bids, asks)
	}
	for ts := openTS; ts <= openTS+900; ts += 4 {
		line("up", ts, "[[0.48,500],[0.45,300]]", "[[0.52,500],[0.55,300]]")
		line("dn", ts, "[[0.47,500],[0.44,300]]", "[[0.51,500],[0.54,300]]")
	}
}

func writePriceLog(t *testing.T, path string) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("timestamp,market_id,yes_price,no_price\n")
	row := func(slug string, ts, yes float64) {
		fmt.Fprintf(&sb, "%.1f,%s,%.2f,%.2f\n", ts, slug, yes, 1-yes)
	}
	// traded window drifts up and settles pinned
	yes := []float64{0.50, 0.55, 0.60, 0.68, 0.75, 0.82, 0.88, 0.93, 0.96, 0.97}
	for i, v := range yes {
		row(tradedSlug, openTS+2+float64(i*98), v)
	}
	// untraded window opens far from fair value
	for i := 0; i < 5; i++ {
		row(untradedSlug, openTS+1802+float64(i*100), 0.80)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write price log: %v", err)
	}
}

func runPipeline(t *testing.T) *RunResult {
	t.Helper()
	dir := t.TempDir()
	writeTrades(t, filepath.Join(dir, "trades.json"))
	writeCapture(t, filepath.Join(dir, "l2"))
	writePriceLog(t, filepath.Join(dir, "prices.csv"))

	p := NewPipeline(testConfig(t, dir), nopMetrics{}, applogger.Nop())
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestPipelineEndToEnd(t *testing.T) {
	res := runPipeline(t)

	if res.RunID == "" {
		t.Fatal("empty run id")
	}
	q := res.Quality
	if q.WindowsTotal != 2 || q.WindowsEligible != 1 {
		t.Fatalf("windows total=%d eligible=%d, want 2/1", q.WindowsTotal, q.WindowsEligible)
	}
	if got := q.WindowsSkipped[models.SkipNoCapture]; got != 1 {
		t.Fatalf("NO_CAPTURE skips = %d, want 1", got)
	}
	if q.FillsTotal != 3 || q.FillsClassified != 3 {
		t.Fatalf("fills total=%d classified=%d, want 3/3", q.FillsTotal, q.FillsClassified)
	}
	// BUY at the ask is the one taker fill; the two passive bids are makers.
	if q.MakerFills != 2 || q.TakerFills != 1 {
		t.Fatalf("maker=%d taker=%d, want 2/1", q.MakerFills, q.TakerFills)
	}
	if res.Normalization.TradesDuplicate != 1 {
		t.Fatalf("duplicates = %d, want 1", res.Normalization.TradesDuplicate)
	}
}

func TestPipelineSummaryRollup(t *testing.T) {
	res := runPipeline(t)

	var traded *models.WindowSummary
	for _, s := range res.Summaries {
		if s.WindowID == tradedSlug {
			traded = s
		}
	}
	if traded == nil {
		t.Fatal("no summary for traded window")
	}
	if traded.Skipped {
		t.Fatal("traded window marked skipped")
	}
	if traded.UpShares != 200 || traded.DownShares != 80 {
		t.Fatalf("shares up=%v down=%v, want 200/80", traded.UpShares, traded.DownShares)
	}
	if traded.MatchedPairs != 80 {
		t.Fatalf("matched pairs = %v, want 80", traded.MatchedPairs)
	}
	// avg UP 0.50, avg DOWN 0.47
	if math.Abs(traded.CombinedPairCost-0.97) > 1e-9 {
		t.Fatalf("combined pair cost = %v, want 0.97", traded.CombinedPairCost)
	}
	if !traded.OutcomeKnown || traded.Outcome != models.UP {
		t.Fatalf("settlement known=%v outcome=%v, want UP", traded.OutcomeKnown, traded.Outcome)
	}
	if traded.Regime == models.RegimeUnknown || traded.Regime == "" {
		t.Fatalf("regime not labeled: %q", traded.Regime)
	}

	var skipped *models.WindowSummary
	for _, s := range res.Summaries {
		if s.WindowID == noCaptSlug {
			skipped = s
		}
	}
	if skipped == nil || !skipped.Skipped || skipped.SkipReason != models.SkipNoCapture {
		t.Fatalf("no-capture window summary = %+v", skipped)
	}
}

func TestPipelineRunReports(t *testing.T) {
	res := runPipeline(t)

	if res.Aggression == nil {
		t.Fatal("nil aggression table")
	}
	if res.Skips == nil {
		t.Fatal("nil skip analysis")
	}
	if res.Skips.WindowsWithPrices != 2 || res.Skips.WindowsSkipped != 1 {
		t.Fatalf("skip analysis priced=%d skipped=%d, want 2/1",
			res.Skips.WindowsWithPrices, res.Skips.WindowsSkipped)
	}

	if len(res.OffsetSweep) != 7 {
		t.Fatalf("offset sweep points = %d, want 7", len(res.OffsetSweep))
	}
	// the book is dense and static, so the conclusion must not move with
	// the timing offset
	for _, pt := range res.OffsetSweep {
		if math.Abs(pt.MakerFraction-2.0/3.0) > 1e-9 {
			t.Fatalf("offset %v: maker fraction %v, want 2/3", pt.OffsetSecs, pt.MakerFraction)
		}
	}

	if res.Execution == nil || res.Execution.FillsWithEdge != 3 {
		t.Fatalf("execution quality = %+v", res.Execution)
	}
	if res.Sizes == nil || res.Sizes.Fills != 3 {
		t.Fatalf("size signature = %+v", res.Sizes)
	}
	if res.Replenish == nil {
		t.Fatal("nil replenishment stats")
	}
}

func TestResultProcessorBackends(t *testing.T) {
	p := NewResultProcessor(nil, nil, nopMetrics{}, "none", 100, applogger.Nop())
	if err := p.Process(context.Background(), &RunResult{RunID: "r1"}); err != nil {
		t.Fatalf("none backend: %v", err)
	}
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatal("nil result accepted")
	}

	bad := NewResultProcessor(nil, nil, nopMetrics{}, "postgres", 100, applogger.Nop())
	if err := bad.Process(context.Background(), &RunResult{RunID: "r2"}); err == nil {
		t.Fatal("unknown backend accepted")
	}
}

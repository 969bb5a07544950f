package usecase

import (
	"context"
	"fmt"
	"time"

	"MakerLens/internal/domain/models"
	domrepo "MakerLens/internal/domain/repository"
	applogger "MakerLens/pkg/logger"
)

// ResultProcessor routes a finished run to the configured backend. The
// "none" backend is valid and common: single-shot analyses that only need
// the API surface or stdout report.
type ResultProcessor struct {
	pub     domrepo.Publisher
	store   domrepo.ResultStore
	metrics domrepo.Metrics
	backend string
	batchSz int
	l       *applogger.Logger
}

func NewResultProcessor(
	pub domrepo.Publisher,
	store domrepo.ResultStore,
	metrics domrepo.Metrics,
	backend string,
	batchSz int,
	l *applogger.Logger,
) *ResultProcessor {
	return &ResultProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		l:       l,
	}
}

// Process persists one run's fills and summaries.
func (p *ResultProcessor) Process(ctx context.Context, res *RunResult) error {
	if res == nil {
		return fmt.Errorf("run result is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "none":
		p.l.Debug("backend disabled, run kept in memory", applogger.String("run_id", res.RunID))
		return nil
	case "kafka":
		err = p.processKafka(ctx, res)
	case "clickhouse":
		err = p.processClickHouse(ctx, res)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_run")
		return fmt.Errorf("process run %s: %w", res.RunID, err)
	}

	p.l.Info("run persisted",
		applogger.String("run_id", res.RunID),
		applogger.String("backend", p.backend),
		applogger.Int("fills", len(res.Fills)),
		applogger.Int("summaries", len(res.Summaries)),
		applogger.Duration("took", time.Since(start)),
	)
	return nil
}

func (p *ResultProcessor) processKafka(ctx context.Context, res *RunResult) error {
	for lo := 0; lo < len(res.Fills); lo += p.batchSz {
		hi := lo + p.batchSz
		if hi > len(res.Fills) {
			hi = len(res.Fills)
		}
		if err := p.pub.PublishFills(ctx, res.RunID, res.Fills[lo:hi]); err != nil {
			return err
		}
	}
	for _, s := range res.Summaries {
		if err := p.pub.PublishSummary(ctx, res.RunID, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *ResultProcessor) processClickHouse(ctx context.Context, res *RunResult) error {
	if err := p.store.StoreFills(ctx, res.RunID, res.Fills); err != nil {
		return err
	}
	summaries := make([]models.WindowSummary, 0, len(res.Summaries))
	for _, s := range res.Summaries {
		summaries = append(summaries, *s)
	}
	return p.store.StoreSummaries(ctx, res.RunID, summaries)
}

// Close releases whichever backend resources were wired.
func (p *ResultProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

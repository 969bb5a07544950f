// Package repository provides the concrete result-store, publisher, and
// cache implementations behind the domain interfaces.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MakerLens/internal/domain/models"
	domrepo "MakerLens/internal/domain/repository"
	pkgch "MakerLens/pkg/clickhouse"
	applogger "MakerLens/pkg/logger"
)

// The run tables live in their own database; MergeTree ordered for the
// read API's window-range queries.
var schemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS makerlens`,
	`CREATE TABLE IF NOT EXISTS makerlens.classified_fills (
        run_id String,
        window_id String,
        ts Float64,
        side String,
        outcome String,
        price Float64,
        size Float64,
        label String,
        method String,
        match_ratio Nullable(Float64),
        sole_resting Nullable(UInt8),
        disagreement UInt8,
        imbalance Float64,
        secs_into_window Float64,
        best_bid Float64,
        best_ask Float64,
        inserted_at DateTime DEFAULT now()
    ) ENGINE = MergeTree()
    ORDER BY (run_id, window_id, ts)`,
	`CREATE TABLE IF NOT EXISTS makerlens.window_summaries (
        run_id String,
        window_id String,
        open_time Float64,
        close_time Float64,
        fill_count Int32,
        classified_count Int32,
        maker_count Int32,
        taker_count Int32,
        maker_fraction Float64,
        up_shares Float64,
        down_shares Float64,
        up_cost Float64,
        down_cost Float64,
        matched_pairs Float64,
        combined_pair_cost Float64,
        orphan_side String,
        orphan_shares Float64,
        orphan_cost_basis Float64,
        outcome_known UInt8,
        outcome String,
        realized_pnl Float64,
        win UInt8,
        skipped UInt8,
        skip_reason String,
        regime String,
        first_fill_secs Float64,
        first_side String,
        side_switches Int32,
        time_to_sub_dollar Float64,
        inserted_at DateTime DEFAULT now()
    ) ENGINE = MergeTree()
    ORDER BY (run_id, open_time, window_id)`,
}

// CHResultStore implements ResultStore backed by ClickHouse.
type CHResultStore struct {
	db *sql.DB
	ch *pkgch.Client
	l  *applogger.Logger
}

func NewCHResultStore(ch *pkgch.Client, l *applogger.Logger) domrepo.ResultStore {
	return &CHResultStore{db: ch.DB(), ch: ch, l: l}
}

func (s *CHResultStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schemaStatements)
}

func (s *CHResultStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHResultStore) Close() error {
	return s.ch.Close()
}

// StoreFills batch-inserts classified fills. Chunked multi-row VALUES
// inserts keep round-trips low without loading the whole run in one
// statement.
func (s *CHResultStore) StoreFills(ctx context.Context, runID string, fills []models.ClassifiedFill) error {
	if len(fills) == 0 {
		return nil
	}
	const chunkSize = 2000
	const cols = 16

	start := time.Now()
	for lo := 0; lo < len(fills); lo += chunkSize {
		hi := lo + chunkSize
		if hi > len(fills) {
			hi = len(fills)
		}

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*cols)
		for i := lo; i < hi; i++ {
			f := &fills[i]
			var sole interface{}
			if f.SoleRestingOrder != nil {
				sole = boolToUint8(*f.SoleRestingOrder)
			}
			var ratio interface{}
			if f.MatchRatio != nil {
				ratio = *f.MatchRatio
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				runID, f.WindowID, f.Timestamp,
				string(f.Side), string(f.Outcome), f.Price, f.Size,
				string(f.Label), string(f.Method), ratio, sole,
				boolToUint8(f.Disagreement), f.Imbalance, f.SecsIntoWin,
				f.Book.BestBid, f.Book.BestAsk,
			)
		}

		q := "INSERT INTO makerlens.classified_fills (run_id, window_id, ts, side, outcome, price, size, label, method, match_ratio, sole_resting, disagreement, imbalance, secs_into_window, best_bid, best_ask) VALUES " +
			strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store fills: %w", err)
		}
	}
	s.l.Debug("clickhouse fills stored",
		applogger.String("run_id", runID),
		applogger.Int("rows", len(fills)),
		applogger.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *CHResultStore) StoreSummaries(ctx context.Context, runID string, summaries []models.WindowSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	const cols = 29

	values := make([]string, 0, len(summaries))
	args := make([]interface{}, 0, len(summaries)*cols)
	for i := range summaries {
		sm := &summaries[i]
		values = append(values, "("+strings.TrimSuffix(strings.Repeat("?, ", cols), ", ")+")")
		args = append(args,
			runID, sm.WindowID, sm.OpenTime, sm.CloseTime,
			sm.FillCount, sm.ClassifiedCount, sm.MakerCount, sm.TakerCount, sm.MakerFraction,
			sm.UpShares, sm.DownShares, sm.UpCost, sm.DownCost,
			sm.MatchedPairs, sm.CombinedPairCost,
			string(sm.OrphanSide), sm.OrphanShares, sm.OrphanCostBasis,
			boolToUint8(sm.OutcomeKnown), string(sm.Outcome), sm.RealizedPnL, boolToUint8(sm.Win),
			boolToUint8(sm.Skipped), string(sm.SkipReason), string(sm.Regime),
			sm.FirstFillSecs, string(sm.FirstSide), sm.SideSwitches, sm.TimeToSubDollar,
		)
	}

	q := "INSERT INTO makerlens.window_summaries (run_id, window_id, open_time, close_time, fill_count, classified_count, maker_count, taker_count, maker_fraction, up_shares, down_shares, up_cost, down_cost, matched_pairs, combined_pair_cost, orphan_side, orphan_shares, orphan_cost_basis, outcome_known, outcome, realized_pnl, win, skipped, skip_reason, regime, first_fill_secs, first_side, side_switches, time_to_sub_dollar) VALUES " +
		strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store summaries: %w", err)
	}
	return nil
}

func (s *CHResultStore) QuerySummaries(ctx context.Context, runID string, limit int) ([]models.WindowSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
        SELECT window_id, open_time, close_time,
               fill_count, classified_count, maker_count, taker_count, maker_fraction,
               up_shares, down_shares, up_cost, down_cost,
               matched_pairs, combined_pair_cost,
               orphan_side, orphan_shares, orphan_cost_basis,
               outcome_known, outcome, realized_pnl, win,
               skipped, skip_reason, regime,
               first_fill_secs, first_side, side_switches, time_to_sub_dollar
        FROM makerlens.window_summaries
        WHERE run_id = ?
        ORDER BY open_time ASC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	out := make([]models.WindowSummary, 0, limit)
	for rows.Next() {
		sm, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHResultStore) QuerySummary(ctx context.Context, runID, windowID string) (*models.WindowSummary, error) {
	const q = `
        SELECT window_id, open_time, close_time,
               fill_count, classified_count, maker_count, taker_count, maker_fraction,
               up_shares, down_shares, up_cost, down_cost,
               matched_pairs, combined_pair_cost,
               orphan_side, orphan_shares, orphan_cost_basis,
               outcome_known, outcome, realized_pnl, win,
               skipped, skip_reason, regime,
               first_fill_secs, first_side, side_switches, time_to_sub_dollar
        FROM makerlens.window_summaries
        WHERE run_id = ? AND window_id = ?
        LIMIT 1
    `
	rows, err := s.db.QueryContext(ctx, q, runID, windowID)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
		return nil, nil
	}
	return scanSummary(rows)
}

func scanSummary(rows *sql.Rows) (*models.WindowSummary, error) {
	var sm models.WindowSummary
	var orphanSide, outcome, skipReason, regime, firstSide string
	var outcomeKnown, win, skipped uint8
	if err := rows.Scan(
		&sm.WindowID, &sm.OpenTime, &sm.CloseTime,
		&sm.FillCount, &sm.ClassifiedCount, &sm.MakerCount, &sm.TakerCount, &sm.MakerFraction,
		&sm.UpShares, &sm.DownShares, &sm.UpCost, &sm.DownCost,
		&sm.MatchedPairs, &sm.CombinedPairCost,
		&orphanSide, &sm.OrphanShares, &sm.OrphanCostBasis,
		&outcomeKnown, &outcome, &sm.RealizedPnL, &win,
		&skipped, &skipReason, &regime,
		&sm.FirstFillSecs, &firstSide, &sm.SideSwitches, &sm.TimeToSubDollar,
	); err != nil {
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	sm.OrphanSide = models.Outcome(orphanSide)
	sm.Outcome = models.Outcome(outcome)
	sm.SkipReason = models.SkipReason(skipReason)
	sm.Regime = models.Regime(regime)
	sm.FirstSide = models.Outcome(firstSide)
	sm.OutcomeKnown = outcomeKnown != 0
	sm.Win = win != 0
	sm.Skipped = skipped != 0
	return &sm, nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

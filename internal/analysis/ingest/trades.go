// Package ingest normalizes raw trade records, L2 snapshot captures, and
// price logs into the canonical model types. Readers are streaming: no
// input file is held in memory whole.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"MakerLens/internal/domain/models"
)

type rawTrade struct {
	Timestamp    float64 `json:"timestamp"`
	Wallet       string  `json:"wallet"`
	Side         string  `json:"side"`
	Outcome      string  `json:"outcome"`
	Price        float64 `json:"price"`
	Size         float64 `json:"size"`
	WindowSlug   string  `json:"window_slug"`
	Slug         string  `json:"slug"` // older exports use this name
	TxHash       string  `json:"tx_hash"`
	ConditionID  string  `json:"condition_id"`
	OutcomeIndex int     `json:"outcome_index"`
}

// TradeResult is the output of trade normalization: deduplicated fills
// grouped per window plus the audit counters.
type TradeResult struct {
	ByWindow map[string][]models.Trade
	Report   models.NormalizationReport
}

// ReadTrades consumes trade records from r, which may be either a JSON
// array (export format) or newline-delimited JSON objects. Duplicate
// records from overlapping pagination keep the first-seen copy; same
// timestamp fills at different prices are distinct and all retained.
func ReadTrades(r io.Reader) (*TradeResult, error) {
	br := bufio.NewReader(r)
	first, err := peekFirstByte(br)
	if err != nil {
		return nil, fmt.Errorf("read trades: %w", err)
	}

	res := &TradeResult{ByWindow: make(map[string][]models.Trade)}
	seen := make(map[string]struct{})
	seq := 0

	accept := func(raw rawTrade) {
		t, ok := normalizeTrade(raw)
		if !ok {
			res.Report.TradesMalformed++
			return
		}
		key := t.DedupKey()
		if _, dup := seen[key]; dup {
			res.Report.TradesDuplicate++
			return
		}
		seen[key] = struct{}{}
		t.Seq = seq
		seq++
		res.Report.TradesParsed++
		res.ByWindow[t.WindowID] = append(res.ByWindow[t.WindowID], t)
	}

	if first == '[' {
		dec := json.NewDecoder(br)
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("read trades array: %w", err)
		}
		for dec.More() {
			var raw rawTrade
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("decode trade: %w", err)
			}
			accept(raw)
		}
	} else {
		scanner := bufio.NewScanner(br)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var raw rawTrade
			if err := json.Unmarshal([]byte(line), &raw); err != nil {
				res.Report.TradesMalformed++
				continue
			}
			accept(raw)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan trades: %w", err)
		}
	}

	// Timestamp sort with ingestion-order tiebreak keeps re-runs
	// byte-for-byte reproducible.
	for slug := range res.ByWindow {
		trades := res.ByWindow[slug]
		sort.SliceStable(trades, func(i, j int) bool {
			if trades[i].Timestamp != trades[j].Timestamp {
				return trades[i].Timestamp < trades[j].Timestamp
			}
			return trades[i].Seq < trades[j].Seq
		})
	}
	return res, nil
}

func peekFirstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func normalizeTrade(raw rawTrade) (models.Trade, bool) {
	slug := raw.WindowSlug
	if slug == "" {
		slug = raw.Slug
	}
	t := models.Trade{
		Timestamp:    raw.Timestamp,
		Wallet:       raw.Wallet,
		WindowID:     slug,
		Price:        raw.Price,
		Size:         raw.Size,
		TxHash:       raw.TxHash,
		ConditionID:  raw.ConditionID,
		OutcomeIndex: raw.OutcomeIndex,
	}
	switch strings.ToUpper(raw.Side) {
	case "BUY":
		t.Side = models.BUY
	case "SELL":
		t.Side = models.SELL
	default:
		return t, false
	}
	switch strings.ToUpper(raw.Outcome) {
	case "UP", "YES":
		t.Outcome = models.UP
	case "DOWN", "DN", "NO":
		t.Outcome = models.DOWN
	default:
		return t, false
	}
	if t.WindowID == "" || t.Timestamp <= 0 || t.Size <= 0 {
		return t, false
	}
	if t.Price <= 0 || t.Price >= 1 {
		return t, false
	}
	return t, true
}

// WindowOpenTime extracts the open epoch from a window slug; the gatherer
// names windows "<market>-<epoch>". Falls back to the given timestamp when
// the slug has no epoch suffix.
func WindowOpenTime(slug string, fallback float64) float64 {
	idx := strings.LastIndex(slug, "-")
	if idx >= 0 && idx < len(slug)-1 {
		if epoch, err := strconv.ParseInt(slug[idx+1:], 10, 64); err == nil {
			return float64(epoch)
		}
	}
	return fallback
}

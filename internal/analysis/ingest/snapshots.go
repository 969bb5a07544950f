package ingest

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"MakerLens/internal/domain/models"
)

type rawSnapshot struct {
	Asset string       `json:"asset"`
	Event string       `json:"event"`
	TS    float64      `json:"ts"`
	Bids  [][2]float64 `json:"bids"`
	Asks  [][2]float64 `json:"asks"`
}

// SnapshotResult holds per-outcome snapshot sequences for one window,
// sorted by timestamp, plus discard counters.
type SnapshotResult struct {
	ByOutcome map[models.Outcome][]models.Snapshot
	Report    models.NormalizationReport
}

// SnapshotDir loads L2 capture files named "<slug>.jsonl.gz".
type SnapshotDir struct {
	dir string
}

func NewSnapshotDir(dir string) *SnapshotDir {
	return &SnapshotDir{dir: dir}
}

// Load reads the capture for one window. A missing file is not an error:
// it returns an empty result, which the completeness filter marks as
// NO_CAPTURE downstream.
func (d *SnapshotDir) Load(slug string) (*SnapshotResult, error) {
	path := filepath.Join(d.dir, slug+".jsonl.gz")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &SnapshotResult{ByOutcome: map[models.Outcome][]models.Snapshot{}}, nil
		}
		return nil, fmt.Errorf("open capture %s: %w", slug, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip capture %s: %w", slug, err)
	}
	defer gz.Close()

	return ReadSnapshots(gz, slug)
}

// ReadSnapshots streams line-delimited snapshot events. Captures cut off
// mid-write are common (the recorder is killed at window close), so a
// truncated gzip stream terminates the read cleanly with whatever decoded.
func ReadSnapshots(r io.Reader, slug string) (*SnapshotResult, error) {
	res := &SnapshotResult{ByOutcome: map[models.Outcome][]models.Snapshot{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw rawSnapshot
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			res.Report.SnapshotsBad++
			continue
		}
		snap, ok := normalizeSnapshot(raw, slug)
		if !ok {
			res.Report.SnapshotsBad++
			continue
		}
		if snap.Crossed() {
			res.Report.SnapshotsCrossed++
			continue
		}
		res.Report.SnapshotsParsed++
		res.ByOutcome[snap.Outcome] = append(res.ByOutcome[snap.Outcome], snap)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("scan capture %s: %w", slug, err)
	}

	for outcome := range res.ByOutcome {
		seq := res.ByOutcome[outcome]
		sort.SliceStable(seq, func(i, j int) bool {
			return seq[i].Timestamp < seq[j].Timestamp
		})
	}
	return res, nil
}

func normalizeSnapshot(raw rawSnapshot, slug string) (models.Snapshot, bool) {
	snap := models.Snapshot{
		WindowID:  slug,
		Timestamp: raw.TS,
	}
	switch strings.ToLower(raw.Asset) {
	case "up", "yes":
		snap.Outcome = models.UP
	case "dn", "down", "no":
		snap.Outcome = models.DOWN
	default:
		return snap, false
	}
	switch strings.ToLower(raw.Event) {
	case "book":
		snap.Kind = models.EventBook
	case "trade":
		snap.Kind = models.EventTrade
	default:
		return snap, false
	}
	if snap.Timestamp <= 0 {
		return snap, false
	}

	snap.Bids = dedupLevels(raw.Bids)
	snap.Asks = dedupLevels(raw.Asks)
	return snap, true
}

// dedupLevels enforces the one-entry-per-price invariant; later entries for
// a repeated price win, matching how the recorder emits book corrections.
func dedupLevels(pairs [][2]float64) []models.PriceLevel {
	if len(pairs) == 0 {
		return nil
	}
	byPrice := make(map[float64]float64, len(pairs))
	order := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		price, size := p[0], p[1]
		if price <= 0 || price >= 1 || size < 0 {
			continue
		}
		if _, ok := byPrice[price]; !ok {
			order = append(order, price)
		}
		byPrice[price] = size
	}
	levels := make([]models.PriceLevel, 0, len(order))
	for _, price := range order {
		levels = append(levels, models.PriceLevel{Price: price, Size: byPrice[price]})
	}
	return levels
}

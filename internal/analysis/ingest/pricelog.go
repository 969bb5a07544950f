package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"MakerLens/internal/domain/models"
)

// PriceLogResult maps each window slug to its sorted price series.
type PriceLogResult struct {
	ByWindow map[string]models.PriceSeries
	Report   models.NormalizationReport
}

// ReadPriceLog streams the CSV price log, keeping only rows for the given
// window slugs. Pass nil to keep every window (needed for skip analysis,
// where untraded windows are exactly the interesting ones).
func ReadPriceLog(r io.Reader, slugs map[string]struct{}) (*PriceLogResult, error) {
	res := &PriceLogResult{ByWindow: make(map[string]models.PriceSeries)}

	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read price log header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"timestamp", "market_id", "yes_price", "no_price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("price log missing column %q", required)
		}
	}
	spreadCol, hasSpread := col["spread"]

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A mangled row is a data error: count and continue.
			res.Report.PriceRowsBad++
			continue
		}

		slug := rec[col["market_id"]]
		if slugs != nil {
			if _, want := slugs[slug]; !want {
				continue
			}
		}

		ts, ok := parseTimestamp(rec[col["timestamp"]])
		if !ok {
			res.Report.PriceRowsBad++
			continue
		}
		yes, err1 := strconv.ParseFloat(rec[col["yes_price"]], 64)
		no, err2 := strconv.ParseFloat(rec[col["no_price"]], 64)
		if err1 != nil || err2 != nil {
			res.Report.PriceRowsBad++
			continue
		}
		p := models.PricePoint{Timestamp: ts, YesPrice: yes, NoPrice: no}
		if hasSpread {
			if s, err := strconv.ParseFloat(rec[spreadCol], 64); err == nil {
				p.Spread = s
			}
		}
		res.Report.PriceRowsParsed++
		res.ByWindow[slug] = append(res.ByWindow[slug], p)
	}

	for slug := range res.ByWindow {
		series := res.ByWindow[slug]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Timestamp < series[j].Timestamp
		})
	}
	return res, nil
}

// parseTimestamp accepts either RFC3339/ISO strings or epoch seconds; the
// logger switched formats partway through the capture campaign.
func parseTimestamp(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, "T") || strings.Contains(s, "-") && strings.Contains(s, ":") {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return float64(t.UTC().UnixNano()) / 1e9, true
			}
		}
		return 0, false
	}
	ts, err := strconv.ParseFloat(s, 64)
	if err != nil || ts <= 0 {
		return 0, false
	}
	return ts, true
}

// NearestPrice binary-searches the series for the observation closest to
// ts, bounded by maxDiff seconds. Returns nil when nothing is close enough.
func NearestPrice(series models.PriceSeries, ts, maxDiff float64) *models.PricePoint {
	if len(series) == 0 {
		return nil
	}
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].Timestamp >= ts
	})

	best := -1
	bestDiff := maxDiff
	for _, cand := range []int{idx - 1, idx} {
		if cand < 0 || cand >= len(series) {
			continue
		}
		diff := series[cand].Timestamp - ts
		if diff < 0 {
			diff = -diff
		}
		if diff <= bestDiff {
			bestDiff = diff
			best = cand
		}
	}
	if best < 0 {
		return nil
	}
	p := series[best]
	return &p
}

// Package fingerprint computes cross-window behavioral signatures: the
// participant's default order sizes, ladder geometry, and replenishment
// habits. These are stable across windows and usable for attribution.
package fingerprint

import (
	"sort"

	"github.com/montanaflynn/stats"

	"MakerLens/internal/domain/models"
)

// SizeMode is one peak of the fill-size histogram.
type SizeMode struct {
	Size     float64 `json:"size"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

// SizeSignature is the fill-size distribution fingerprint. The dominant
// mode is the participant's default order size.
type SizeSignature struct {
	Fills  int        `json:"fills"`
	Mean   float64    `json:"mean"`
	Median float64    `json:"median"`
	Stdev  float64    `json:"stdev"`
	Modes  []SizeMode `json:"modes"` // descending by count
}

// ExtractSizes builds the size signature over resolved fills. Sizes are
// bucketed to whole shares; sub-share dust does not carry signal.
func ExtractSizes(fills []models.ClassifiedFill, topModes int) *SizeSignature {
	sig := &SizeSignature{}
	var sizes []float64
	counts := make(map[int]int)
	for i := range fills {
		if !fills[i].Resolved() {
			continue
		}
		sig.Fills++
		sizes = append(sizes, fills[i].Size)
		counts[int(fills[i].Size)]++
	}
	if sig.Fills == 0 {
		return sig
	}

	sig.Mean, _ = stats.Mean(sizes)
	sig.Median, _ = stats.Median(sizes)
	if len(sizes) > 1 {
		sig.Stdev, _ = stats.StandardDeviationSample(sizes)
	}

	modes := make([]SizeMode, 0, len(counts))
	for size, count := range counts {
		modes = append(modes, SizeMode{
			Size:     float64(size),
			Count:    count,
			Fraction: float64(count) / float64(sig.Fills),
		})
	}
	sort.SliceStable(modes, func(i, j int) bool {
		if modes[i].Count != modes[j].Count {
			return modes[i].Count > modes[j].Count
		}
		return modes[i].Size < modes[j].Size // deterministic tie-break
	})
	if topModes > 0 && len(modes) > topModes {
		modes = modes[:topModes]
	}
	sig.Modes = modes
	return sig
}

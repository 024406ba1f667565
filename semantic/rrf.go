package semantic

import "math"

// RRFOptions configures reciprocal rank fusion (§4.5.3 "Hybrid
// search"). A zero K falls back to 60; the weights fall back to 0.5
// each only when both are zero.
type RRFOptions struct {
	K              float64 // default 60
	FTSWeight      float64 // default 0.5
	SemanticWeight float64 // default 0.5
}

// DefaultRRFOptions returns k=60, ftsWeight=semanticWeight=0.5.
func DefaultRRFOptions() RRFOptions {
	return RRFOptions{K: 60, FTSWeight: 0.5, SemanticWeight: 0.5}
}

func (o RRFOptions) withDefaults() RRFOptions {
	if o.K == 0 {
		o.K = 60
	}
	if o.FTSWeight == 0 && o.SemanticWeight == 0 {
		o.FTSWeight = 0.5
		o.SemanticWeight = 0.5
	}
	return o
}

// RRFScore computes rrf = ftsWeight/(k+ftsRank) + semanticWeight/(k+semanticRank),
// with ranks 1-based and math.Inf(1) meaning "absent from that
// ranking" (contributes 0 to that term).
func RRFScore(ftsRank, semanticRank float64, opts RRFOptions) float64 {
	opts = opts.withDefaults()
	var score float64
	if !math.IsInf(ftsRank, 1) {
		score += opts.FTSWeight / (opts.K + ftsRank)
	}
	if !math.IsInf(semanticRank, 1) {
		score += opts.SemanticWeight / (opts.K + semanticRank)
	}
	return score
}

// RankOf returns the 1-based rank of id within an ordered id list, or
// +Inf if absent — matching the "∞ when absent" rule from §4.5.3.
func RankOf(orderedIDs []string, id string) float64 {
	for i, v := range orderedIDs {
		if v == id {
			return float64(i + 1)
		}
	}
	return math.Inf(1)
}

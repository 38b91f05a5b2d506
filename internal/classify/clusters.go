package classify

import (
	"strings"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/textutil"
)

// MatchSemanticBackbone matches the message against the configured semantic
// clusters and aggregates their tone and context biases, each scaled by the
// cluster's confidence calibration. No matches yields an empty result with
// no primary cluster and no side effects.
func MatchSemanticBackbone(text string, clusters []domain.SemanticCluster) domain.BackboneResult {
	result := domain.EmptyBackboneResult()
	if text == "" || len(clusters) == 0 {
		return result
	}

	norm := textutil.Normalize(text)
	tokens := textutil.Tokenize(text)
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}

	var bestScore float64
	for _, cluster := range clusters {
		var matched []string
		for _, kw := range cluster.Keywords {
			if tokenSet[textutil.Normalize(kw)] {
				matched = append(matched, kw)
			}
		}
		for _, phrase := range cluster.Phrases {
			p := textutil.Normalize(phrase)
			if p != "" && strings.Contains(norm, p) {
				matched = append(matched, phrase)
			}
		}
		if len(matched) == 0 {
			continue
		}

		calibration := domain.Clamp01(domain.SafeFloat(cluster.ConfidenceCalibration))
		if calibration == 0 {
			calibration = 1
		}
		score := float64(len(matched)) * calibration

		result.Matches = append(result.Matches, domain.ClusterMatch{
			ClusterID: cluster.ID,
			Terms:     matched,
			Score:     score,
		})
		if score > bestScore {
			bestScore = score
			result.PrimaryCluster = cluster.ID
		}

		for tone, bias := range cluster.ToneBias {
			result.ToneBias[tone] += domain.SafeFloat(bias) * calibration
		}
		for ctx, bias := range cluster.ContextBias {
			result.ContextBias[ctx] += domain.SafeFloat(bias) * calibration
		}
	}
	return result
}

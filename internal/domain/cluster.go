package domain

// SemanticCluster groups related keywords and phrases that bias the tone
// distribution and context scores when matched.
type SemanticCluster struct {
	ID       string
	Keywords []string // single tokens
	Phrases  []string // multi-word literals matched against normalized text

	// ConfidenceCalibration scales the cluster's contribution, 0..1.
	ConfidenceCalibration float64

	ToneBias    map[Tone]float64
	ContextBias map[ContextID]float64
}

// ClusterMatch records one cluster that matched the input text.
type ClusterMatch struct {
	ClusterID string
	Terms     []string // the keywords/phrases that matched
	Score     float64  // matched-term count scaled by calibration
}

// BackboneResult is the aggregate of all cluster matches for a message.
type BackboneResult struct {
	PrimaryCluster string // empty when nothing matched
	Matches        []ClusterMatch
	ToneBias       map[Tone]float64
	ContextBias    map[ContextID]float64
}

// EmptyBackboneResult is the no-match result: nil-safe maps, no primary.
func EmptyBackboneResult() BackboneResult {
	return BackboneResult{
		Matches:     []ClusterMatch{},
		ToneBias:    map[Tone]float64{},
		ContextBias: map[ContextID]float64{},
	}
}

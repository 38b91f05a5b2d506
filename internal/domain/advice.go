package domain

// AdviceItem is one immutable micro-advice snippet from the corpus.
type AdviceItem struct {
	ID   string
	Text string

	// TriggerTones restricts the item to specific tone buckets. Empty means
	// the item is compatible with any tone.
	TriggerTones []Tone

	// Contexts the item directly applies to. Empty means general advice.
	Contexts []ContextID

	// ContextLinks are soft-bonus contexts: not a strict match requirement,
	// but overlap with active contexts raises the item's final score.
	ContextLinks []ContextID

	// Styles the advice is written for.
	Styles []AttachmentStyle

	// Patterns are attachment-pattern tags (e.g. "protest_behavior",
	// "stonewalling") used for alignment bonuses.
	Patterns []string

	// Intents the advice addresses, used by the fit-verification backstop.
	Intents []string

	// StyleTuning holds per-style score deltas applied when the learned
	// primary style matches.
	StyleTuning map[AttachmentStyle]float64

	// SeverityThreshold declares a minimum active score per tone; items whose
	// threshold the current tone fails to meet take a soft penalty.
	SeverityThreshold map[Tone]float64

	BoostSources []string
}

// MatchesTone reports whether the item accepts the given tone bucket.
func (a AdviceItem) MatchesTone(t Tone) bool {
	if len(a.TriggerTones) == 0 {
		return true
	}
	for _, tt := range a.TriggerTones {
		if tt == t {
			return true
		}
	}
	return false
}

// RankedAdvice pairs an advice item with its final ranking score.
type RankedAdvice struct {
	Item  AdviceItem
	Score float64
}

// NLIResult holds entailment-style scores for a premise/hypothesis pair.
// The three values need not sum to 1.
type NLIResult struct {
	Entail  float64
	Contra  float64
	Neutral float64
}

// DegradedNLIResult is the neutral-leaning result returned when the model
// backend is unavailable, disabled, or times out.
func DegradedNLIResult() NLIResult {
	return NLIResult{Entail: 0.33, Contra: 0.33, Neutral: 0.34}
}

package domain

import "sort"

// AttachmentStyle is a behavioral-science classification the profile learns
// over time.
type AttachmentStyle string

const (
	StyleAnxious      AttachmentStyle = "anxious"
	StyleAvoidant     AttachmentStyle = "avoidant"
	StyleDisorganized AttachmentStyle = "disorganized"
	StyleSecure       AttachmentStyle = "secure"
)

// AttachmentStyles lists all styles in canonical order.
var AttachmentStyles = []AttachmentStyle{
	StyleAnxious, StyleAvoidant, StyleDisorganized, StyleSecure,
}

// ValidAttachmentStyles is the canonical set of accepted style strings.
var ValidAttachmentStyles = map[string]bool{
	"anxious": true, "avoidant": true, "disorganized": true, "secure": true,
}

// AttachmentScores holds one non-negative score per style. Depending on
// context the scores are either unnormalized cumulative evidence or a
// normalized distribution summing to 1.
type AttachmentScores struct {
	Anxious      float64
	Avoidant     float64
	Disorganized float64
	Secure       float64
}

// Get returns the score for the given style.
func (s AttachmentScores) Get(style AttachmentStyle) float64 {
	switch style {
	case StyleAnxious:
		return s.Anxious
	case StyleAvoidant:
		return s.Avoidant
	case StyleDisorganized:
		return s.Disorganized
	case StyleSecure:
		return s.Secure
	}
	return 0
}

// Add increases the score for the given style by delta.
func (s *AttachmentScores) Add(style AttachmentStyle, delta float64) {
	switch style {
	case StyleAnxious:
		s.Anxious += delta
	case StyleAvoidant:
		s.Avoidant += delta
	case StyleDisorganized:
		s.Disorganized += delta
	case StyleSecure:
		s.Secure += delta
	}
}

// Sum returns the total mass across all styles.
func (s AttachmentScores) Sum() float64 {
	return s.Anxious + s.Avoidant + s.Disorganized + s.Secure
}

// Scale multiplies every style score by factor and returns the result.
func (s AttachmentScores) Scale(factor float64) AttachmentScores {
	return AttachmentScores{
		Anxious:      s.Anxious * factor,
		Avoidant:     s.Avoidant * factor,
		Disorganized: s.Disorganized * factor,
		Secure:       s.Secure * factor,
	}
}

// Sanitize coerces non-finite or negative values to 0.
func (s AttachmentScores) Sanitize() AttachmentScores {
	return AttachmentScores{
		Anxious:      SafeNonNeg(s.Anxious),
		Avoidant:     SafeNonNeg(s.Avoidant),
		Disorganized: SafeNonNeg(s.Disorganized),
		Secure:       SafeNonNeg(s.Secure),
	}
}

// Normalize returns the scores scaled to sum to 1. With zero total evidence
// it falls back to the secure-dominant default rather than dividing by zero.
func (s AttachmentScores) Normalize() AttachmentScores {
	clean := s.Sanitize()
	total := clean.Sum()
	if total <= 0 {
		return SecureFallbackScores()
	}
	return clean.Scale(1 / total)
}

// SecureFallbackScores is the defined zero-evidence default: all mass on
// secure.
func SecureFallbackScores() AttachmentScores {
	return AttachmentScores{Secure: 1}
}

// StyleScore pairs a style with its score, for ordered reporting.
type StyleScore struct {
	Style AttachmentStyle
	Score float64
}

// Sorted returns style/score pairs ordered by score descending, breaking
// ties by canonical style order so ordering stays deterministic.
func (s AttachmentScores) Sorted() []StyleScore {
	out := make([]StyleScore, 0, len(AttachmentStyles))
	for _, style := range AttachmentStyles {
		out = append(out, StyleScore{Style: style, Score: s.Get(style)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// AttachmentEstimate is the point-in-time read of a learning profile.
type AttachmentEstimate struct {
	Primary        AttachmentStyle // empty when evidence is insufficient
	Secondary      AttachmentStyle
	Scores         AttachmentScores // normalized
	Confidence     float64
	DaysObserved   int
	WindowComplete bool
	PriorWeight    float64 // effective local-prior share at read time, 0 if no prior
}

// InsufficientEvidenceEstimate is the degraded default returned when stored
// profile data is missing or invalid.
func InsufficientEvidenceEstimate() AttachmentEstimate {
	return AttachmentEstimate{
		Scores:     SecureFallbackScores(),
		Confidence: 0,
	}
}

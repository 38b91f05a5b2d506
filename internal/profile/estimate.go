package profile

import (
	"math"

	"github.com/alexanderramin/attune/internal/domain"
)

// Estimate computes the point-in-time attachment estimate for a profile:
// normalized learned evidence blended with the decayed local prior, primary
// and secondary styles by sorted score, and a confidence derived from
// evidence volume and score separation. A nil profile degrades to the
// insufficient-evidence default.
func Estimate(p *domain.CommunicatorProfile, cfg Config) domain.AttachmentEstimate {
	if p == nil {
		return domain.InsufficientEvidenceEstimate()
	}
	cfg = cfg.sanitized()

	learned := p.Scores.Sanitize()
	evidenceVolume := learned.Sum()

	var blended domain.AttachmentScores
	var priorWeight float64
	switch {
	case p.LocalPrior != nil && evidenceVolume <= 0:
		// No organic evidence yet: the prior carries the whole estimate.
		priorWeight = 1
		blended = p.LocalPrior.Scores.Normalize()
	case p.LocalPrior != nil:
		priorWeight = EffectivePriorWeight(p.DaysObserved, cfg)
		prior := p.LocalPrior.Scores.Normalize()
		organic := learned.Normalize()
		blended = prior.Scale(priorWeight)
		for _, style := range domain.AttachmentStyles {
			blended.Add(style, organic.Get(style)*(1-priorWeight))
		}
	case evidenceVolume <= 0:
		return domain.AttachmentEstimate{
			Scores:         domain.SecureFallbackScores(),
			Confidence:     0,
			DaysObserved:   p.DaysObserved,
			WindowComplete: p.DaysObserved >= cfg.LearningDays,
		}
	default:
		blended = learned.Normalize()
	}

	sorted := blended.Sorted()
	primary := sorted[0]
	secondary := sorted[1]

	return domain.AttachmentEstimate{
		Primary:        primary.Style,
		Secondary:      secondary.Style,
		Scores:         blended,
		Confidence:     confidence(evidenceVolume, primary.Score, secondary.Score, priorWeight),
		DaysObserved:   p.DaysObserved,
		WindowComplete: p.DaysObserved >= cfg.LearningDays,
		PriorWeight:    priorWeight,
	}
}

// confidence grows with evidence volume (saturating) and with the separation
// between the top two styles, and is floored at a small value when a prior
// is present so a freshly seeded profile is not reported as zero-confidence.
func confidence(volume, top, second, priorWeight float64) float64 {
	volumeTerm := 1 - math.Exp(-volume/3)
	separation := domain.Clamp01(top - second)
	conf := 0.6*volumeTerm + 0.4*separation
	if priorWeight > 0 && conf < 0.25 {
		conf = 0.25
	}
	return domain.Clamp01(conf)
}

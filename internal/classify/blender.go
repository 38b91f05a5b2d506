package classify

import (
	"github.com/alexanderramin/attune/internal/domain"
)

// Weights are the configurable blend shares. They are meant to sum to ≤ 1;
// the remainder is reserved for the attachment and preference deltas.
type Weights struct {
	Trigger    float64
	Context    float64
	Intensity  float64
	NegSar     float64
	Attachment float64
	Preference float64
}

// DefaultWeights returns the default blend shares.
func DefaultWeights() Weights {
	return Weights{
		Trigger:    0.45,
		Context:    0.20,
		Intensity:  0.12,
		NegSar:     0.08,
		Attachment: 0.10,
		Preference: 0.05,
	}
}

// BandRange maps a winning-tone confidence interval to a severity band.
// Min is inclusive, Max exclusive.
type BandRange struct {
	Band domain.Band
	Min  float64
	Max  float64
}

// BlendConfig bounds and tunes the blending step.
type BlendConfig struct {
	Weights Weights

	// BucketMin/BucketMax clamp each tone bucket before renormalization to
	// avoid degenerate all-or-nothing outputs.
	BucketMin float64
	BucketMax float64

	// SecondaryMargin is the maximum gap for reporting a secondary tone.
	SecondaryMargin float64

	// HysteresisMargin keeps the previous band when the new confidence sits
	// within this distance of a band boundary.
	HysteresisMargin float64

	// Bands holds per-tone band ranges over the normalized winner share.
	// Unmatched confidence falls to "low".
	Bands map[domain.Tone][]BandRange
}

// DefaultBlendConfig returns the default blender configuration.
func DefaultBlendConfig() BlendConfig {
	return BlendConfig{
		Weights:          DefaultWeights(),
		BucketMin:        0.30,
		BucketMax:        0.85,
		SecondaryMargin:  0.03,
		HysteresisMargin: 0.02,
		Bands: map[domain.Tone][]BandRange{
			domain.ToneAlert: {
				{Band: domain.BandLow, Min: 0, Max: 0.36},
				{Band: domain.BandMed, Min: 0.36, Max: 0.44},
				{Band: domain.BandHigh, Min: 0.44, Max: 1.01},
			},
			domain.ToneCaution: {
				{Band: domain.BandLow, Min: 0, Max: 0.35},
				{Band: domain.BandMed, Min: 0.35, Max: 0.42},
				{Band: domain.BandHigh, Min: 0.42, Max: 1.01},
			},
			domain.ToneClear: {
				{Band: domain.BandLow, Min: 0, Max: 0.35},
				{Band: domain.BandMed, Min: 0.35, Max: 0.45},
				{Band: domain.BandHigh, Min: 0.45, Max: 1.01},
			},
		},
	}
}

// AttachmentDelta is the small constant sensitivity adjustment per learned
// style, applied to the caution bucket.
var AttachmentDelta = map[domain.AttachmentStyle]float64{
	domain.StyleAnxious:      0.02,
	domain.StyleAvoidant:     -0.01,
	domain.StyleDisorganized: 0.03,
	domain.StyleSecure:       0,
}

// BlendInput carries every signal entering the blender. All numeric fields
// are sanitized before use; callers may pass raw values.
type BlendInput struct {
	TriggerHits  []domain.TriggerHit // automaton hits, already capped
	RegexHits    []domain.TriggerHit // regex bank hits, already capped
	ContextScore float64
	Intensity    float64
	NegSar       float64
	ToneBias     map[domain.Tone]float64 // phrase-edge and cluster bias

	AttachmentStyle domain.AttachmentStyle // zero value means unknown
	Preferences     map[domain.Tone]float64

	// PrevBand enables hysteresis across consecutive classifications of the
	// same conversation. Empty disables it.
	PrevBand domain.Band
}

// Blend combines all signals into a tone classification. The returned
// distribution always sums to 1 and every bucket is in [0,1].
func Blend(in BlendInput, cfg BlendConfig) domain.ToneClassification {
	// 1. Per-tone raw totals, clamped independently.
	var raw domain.Distribution
	for _, h := range in.TriggerHits {
		raw.Set(h.Tone, raw.Get(h.Tone)+domain.SafeNonNeg(h.Weight))
	}
	for _, h := range in.RegexHits {
		raw.Set(h.Tone, raw.Get(h.Tone)+domain.SafeNonNeg(h.Weight))
	}
	for _, t := range domain.Tones {
		raw.Set(t, domain.Clamp01(raw.Get(t)))
	}

	// 2. Single scalar mix from the weighted signal set.
	maxRaw := 0.0
	for _, t := range domain.Tones {
		if raw.Get(t) > maxRaw {
			maxRaw = raw.Get(t)
		}
	}
	w := cfg.Weights
	mix := w.Trigger*maxRaw +
		w.Context*domain.Clamp01(domain.SafeFloat(in.ContextScore)) +
		w.Intensity*domain.Clamp01(domain.SafeFloat(in.Intensity)) +
		w.NegSar*domain.Clamp01(domain.SafeFloat(in.NegSar))

	// 3. Distribute mix proportionally to raw totals; with no raw evidence
	// at all, spread it evenly. Then clamp each bucket into the configured
	// band to avoid all-or-nothing outputs.
	var dist domain.Distribution
	rawSum := raw.Sum()
	for _, t := range domain.Tones {
		share := mix / 3
		if rawSum > 0 {
			share = mix * raw.Get(t) / rawSum
		}
		share += domain.SafeFloat(in.ToneBias[t])
		dist.Set(t, domain.Clamp(share, cfg.BucketMin, cfg.BucketMax))
	}

	// 4. Attachment and preference deltas, clamped again.
	if delta, ok := AttachmentDelta[in.AttachmentStyle]; ok {
		dist.Caution = domain.Clamp(dist.Caution+w.Attachment*delta, cfg.BucketMin, cfg.BucketMax)
	}
	for _, t := range domain.Tones {
		pref := domain.SafeFloat(in.Preferences[t])
		if pref != 0 {
			dist.Set(t, domain.Clamp(dist.Get(t)+w.Preference*pref, cfg.BucketMin, cfg.BucketMax))
		}
	}

	// Renormalize so the output is a valid probability distribution for any
	// configured weight combination.
	total := dist.Sum()
	if total <= 0 {
		dist = domain.Distribution{Alert: 1.0 / 3, Caution: 1.0 / 3, Clear: 1.0 / 3}
	} else {
		for _, t := range domain.Tones {
			dist.Set(t, dist.Get(t)/total)
		}
	}

	// 5. Winner and secondary. Tones iterates in tie-break priority order
	// (caution > clear > alert), so a strict > comparison resolves ties.
	primary := domain.Tones[0]
	for _, t := range domain.Tones[1:] {
		if dist.Get(t) > dist.Get(primary) {
			primary = t
		}
	}
	var secondary domain.Tone
	for _, t := range domain.Tones {
		if t == primary {
			continue
		}
		if dist.Get(primary)-dist.Get(t) <= cfg.SecondaryMargin {
			if secondary == "" || dist.Get(t) > dist.Get(secondary) {
				secondary = t
			}
		}
	}

	confidence := dist.Get(primary)
	band := lookupBand(cfg.Bands[primary], confidence)
	band = applyHysteresis(band, in.PrevBand, cfg.Bands[primary], confidence, cfg.HysteresisMargin)

	return domain.ToneClassification{
		Primary:      primary,
		Secondary:    secondary,
		Confidence:   confidence,
		Distribution: dist,
		Band:         band,
	}
}

func lookupBand(ranges []BandRange, confidence float64) domain.Band {
	for _, r := range ranges {
		if confidence >= r.Min && confidence < r.Max {
			return r.Band
		}
	}
	return domain.BandLow
}

// applyHysteresis keeps the previous band when the confidence landed within
// the margin of the boundary it just crossed, so the surfaced severity does
// not flap between keystrokes.
func applyHysteresis(band, prev domain.Band, ranges []BandRange, confidence, margin float64) domain.Band {
	if prev == "" || band == prev || margin <= 0 {
		return band
	}
	for _, r := range ranges {
		if r.Band != prev {
			continue
		}
		if confidence >= r.Min-margin && confidence < r.Max+margin {
			return prev
		}
	}
	return band
}

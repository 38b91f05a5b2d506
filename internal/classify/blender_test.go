package classify

import (
	"math"
	"testing"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValidDistribution(t *testing.T, d domain.Distribution) {
	t.Helper()
	for _, tone := range domain.Tones {
		v := d.Get(tone)
		assert.GreaterOrEqual(t, v, 0.0, "bucket %s below 0", tone)
		assert.LessOrEqual(t, v, 1.0, "bucket %s above 1", tone)
	}
	assert.InDelta(t, 1.0, d.Sum(), 1e-6, "distribution must sum to 1")
}

func TestBlend_NoSignalsDefaultsToCaution(t *testing.T) {
	tc := Blend(BlendInput{}, DefaultBlendConfig())

	assertValidDistribution(t, tc.Distribution)
	assert.Equal(t, domain.ToneCaution, tc.Primary, "tie-break order is caution > clear > alert")
	assert.Equal(t, domain.BandLow, tc.Band)
}

func TestBlend_AlertDominatesWithStrongTriggers(t *testing.T) {
	in := BlendInput{
		TriggerHits: []domain.TriggerHit{
			{Tone: domain.ToneAlert, Weight: 0.9, Label: "hostility"},
			{Tone: domain.ToneAlert, Weight: 1.0, Label: "hostility"},
			{Tone: domain.ToneAlert, Weight: 0.9, Label: "finality"},
		},
		Intensity: 0.3,
		ToneBias:  map[domain.Tone]float64{domain.ToneAlert: 0.05},
	}
	tc := Blend(in, DefaultBlendConfig())

	assertValidDistribution(t, tc.Distribution)
	assert.Equal(t, domain.ToneAlert, tc.Primary)
	assert.Equal(t, domain.BandHigh, tc.Band)
}

func TestBlend_SecondaryOnlyWithinMargin(t *testing.T) {
	in := BlendInput{
		TriggerHits: []domain.TriggerHit{
			{Tone: domain.ToneAlert, Weight: 1.0},
		},
	}
	tc := Blend(in, DefaultBlendConfig())

	require.Equal(t, domain.ToneAlert, tc.Primary)
	assert.Empty(t, tc.Secondary, "runner-up trails by more than the margin")
}

func TestBlend_SecondaryReportedOnCloseRace(t *testing.T) {
	in := BlendInput{
		TriggerHits: []domain.TriggerHit{
			{Tone: domain.ToneAlert, Weight: 1.0},
			{Tone: domain.ToneCaution, Weight: 1.0},
		},
		ContextScore: 0.9,
		Intensity:    0.9,
		NegSar:       0.9,
	}
	tc := Blend(in, DefaultBlendConfig())

	assert.Equal(t, domain.ToneCaution, tc.Primary)
	assert.Equal(t, domain.ToneAlert, tc.Secondary)
}

func TestBlend_NonFiniteInputsCoerced(t *testing.T) {
	in := BlendInput{
		TriggerHits:  []domain.TriggerHit{{Tone: domain.ToneAlert, Weight: math.NaN()}},
		ContextScore: math.Inf(1),
		Intensity:    math.NaN(),
		NegSar:       math.Inf(-1),
		ToneBias:     map[domain.Tone]float64{domain.ToneClear: math.NaN()},
	}
	tc := Blend(in, DefaultBlendConfig())

	assertValidDistribution(t, tc.Distribution)
}

func TestBlend_AttachmentDeltaRaisesCaution(t *testing.T) {
	base := Blend(BlendInput{
		TriggerHits: []domain.TriggerHit{{Tone: domain.ToneClear, Weight: 0.6}},
	}, DefaultBlendConfig())

	adjusted := Blend(BlendInput{
		TriggerHits:     []domain.TriggerHit{{Tone: domain.ToneClear, Weight: 0.6}},
		AttachmentStyle: domain.StyleDisorganized,
	}, DefaultBlendConfig())

	assert.Greater(t, adjusted.Distribution.Caution, base.Distribution.Caution)
	assertValidDistribution(t, adjusted.Distribution)
}

func TestBlend_HysteresisHoldsPreviousBandNearBoundary(t *testing.T) {
	cfg := DefaultBlendConfig()

	in := BlendInput{
		TriggerHits: []domain.TriggerHit{
			{Tone: domain.ToneAlert, Weight: 0.55},
		},
	}
	first := Blend(in, cfg)

	// Re-classifying with the previous band supplied must never produce a
	// band further than one boundary-margin away from it.
	in.PrevBand = first.Band
	second := Blend(in, cfg)
	assert.Equal(t, first.Band, second.Band)
}

// TestBlend_DistributionValidAcrossWeightRange property-tests the §4.3
// renormalization: any weight combination in the configured range must
// still yield a valid probability distribution.
func TestBlend_DistributionValidAcrossWeightRange(t *testing.T) {
	steps := []float64{0, 0.15, 0.3, 0.45, 0.6}
	hits := []domain.TriggerHit{
		{Tone: domain.ToneAlert, Weight: 0.8},
		{Tone: domain.ToneCaution, Weight: 0.4},
	}

	for _, wt := range steps {
		for _, wc := range steps {
			for _, wi := range steps {
				cfg := DefaultBlendConfig()
				cfg.Weights.Trigger = wt
				cfg.Weights.Context = wc
				cfg.Weights.Intensity = wi

				tc := Blend(BlendInput{
					TriggerHits:  hits,
					ContextScore: 0.7,
					Intensity:    0.5,
					NegSar:       0.4,
				}, cfg)

				assertValidDistribution(t, tc.Distribution)
			}
		}
	}
}

func TestBlend_Deterministic(t *testing.T) {
	in := BlendInput{
		TriggerHits:  []domain.TriggerHit{{Tone: domain.ToneCaution, Weight: 0.6}},
		ContextScore: 0.35,
		Intensity:    0.2,
	}
	first := Blend(in, DefaultBlendConfig())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Blend(in, DefaultBlendConfig()))
	}
}

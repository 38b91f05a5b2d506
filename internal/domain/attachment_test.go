package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentScores_Normalize(t *testing.T) {
	s := AttachmentScores{Anxious: 2, Avoidant: 1, Disorganized: 1, Secure: 0}
	n := s.Normalize()

	assert.InDelta(t, 1.0, n.Sum(), 1e-6)
	assert.InDelta(t, 0.5, n.Anxious, 1e-6)
	assert.InDelta(t, 0.25, n.Avoidant, 1e-6)
}

func TestAttachmentScores_Normalize_ZeroEvidenceFallsBackToSecure(t *testing.T) {
	n := AttachmentScores{}.Normalize()

	assert.Equal(t, SecureFallbackScores(), n)
	assert.InDelta(t, 1.0, n.Sum(), 1e-6)
}

func TestAttachmentScores_Normalize_CoercesNonFiniteValues(t *testing.T) {
	s := AttachmentScores{Anxious: math.NaN(), Avoidant: math.Inf(1), Secure: 3}
	n := s.Normalize()

	assert.InDelta(t, 1.0, n.Sum(), 1e-6)
	assert.InDelta(t, 1.0, n.Secure, 1e-6)
	assert.Zero(t, n.Anxious)
	assert.Zero(t, n.Avoidant)
}

func TestAttachmentScores_Sorted_DeterministicTieBreak(t *testing.T) {
	s := AttachmentScores{Anxious: 0.4, Avoidant: 0.4, Disorganized: 0.1, Secure: 0.1}
	sorted := s.Sorted()

	// Anxious precedes avoidant in canonical order, so it wins the tie.
	assert.Equal(t, StyleAnxious, sorted[0].Style)
	assert.Equal(t, StyleAvoidant, sorted[1].Style)
}

func TestDistribution_GetSet(t *testing.T) {
	var d Distribution
	d.Set(ToneAlert, 0.5)
	d.Set(ToneCaution, 0.3)
	d.Set(ToneClear, 0.2)

	assert.InDelta(t, 0.5, d.Get(ToneAlert), 1e-9)
	assert.InDelta(t, 1.0, d.Sum(), 1e-9)
}

func TestSafeFloat(t *testing.T) {
	assert.Zero(t, SafeFloat(math.NaN()))
	assert.Zero(t, SafeFloat(math.Inf(-1)))
	assert.Equal(t, 0.7, SafeFloat(0.7))
	assert.Zero(t, SafeNonNeg(-0.2))
}

package profile

import (
	"testing"
	"time"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_NilProfileDegrades(t *testing.T) {
	est := Estimate(nil, DefaultConfig())

	assert.Empty(t, est.Primary)
	assert.Zero(t, est.Confidence)
	assert.Equal(t, domain.SecureFallbackScores(), est.Scores)
}

func TestEstimate_ZeroEvidenceNoPrior(t *testing.T) {
	p := newTestProfile()

	est := Estimate(p, DefaultConfig())

	assert.Empty(t, est.Primary)
	assert.Zero(t, est.Confidence)
	assert.Equal(t, domain.SecureFallbackScores(), est.Scores)
	assert.False(t, est.WindowComplete)
}

func TestEstimate_LearnedEvidenceOnly(t *testing.T) {
	p := newTestProfile()
	Observe(p, map[domain.AttachmentStyle]float64{
		domain.StyleAnxious:  2.0,
		domain.StyleAvoidant: 0.5,
	}, "s", "2026-03-10", testAt, DefaultConfig())

	est := Estimate(p, DefaultConfig())

	assert.Equal(t, domain.StyleAnxious, est.Primary)
	assert.Equal(t, domain.StyleAvoidant, est.Secondary)
	assert.InDelta(t, 1.0, est.Scores.Sum(), 1e-6)
	assert.Greater(t, est.Confidence, 0.0)
	assert.Zero(t, est.PriorWeight)
}

func TestEstimate_PriorDominatesFreshProfile(t *testing.T) {
	p := newTestProfile()
	SeedPrior(p, domain.AttachmentScores{Avoidant: 4, Secure: 1}, testAt)

	est := Estimate(p, DefaultConfig())

	assert.Equal(t, domain.StyleAvoidant, est.Primary)
	assert.Equal(t, 1.0, est.PriorWeight)
	assert.GreaterOrEqual(t, est.Confidence, 0.25)
}

func TestEstimate_PriorBlendShrinksAsEvidenceAccumulates(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestProfile()
	SeedPrior(p, domain.AttachmentScores{Avoidant: 1}, testAt)

	day := testAt
	observeOnce := func() {
		day = day.AddDate(0, 0, 1)
		Observe(p, map[domain.AttachmentStyle]float64{domain.StyleAnxious: 1.0},
			"s", DayKeyFor(day, nil), day, cfg)
	}

	var lastAvoidant = 1.0
	for i := 1; i < cfg.LearningDays; i++ {
		observeOnce()
		est := Estimate(p, cfg)
		assert.Less(t, est.Scores.Avoidant, lastAvoidant,
			"prior-styled mass must shrink as organic anxious evidence accumulates")
		lastAvoidant = est.Scores.Avoidant
	}

	observeOnce()
	est := Estimate(p, cfg)
	assert.True(t, est.WindowComplete)
	assert.Equal(t, cfg.PriorFloor, est.PriorWeight)
	assert.Equal(t, domain.StyleAnxious, est.Primary)
}

func TestEstimate_ScoresAlwaysNormalized(t *testing.T) {
	p := newTestProfile()
	SeedPrior(p, domain.AttachmentScores{Disorganized: 2, Anxious: 1}, testAt)
	Observe(p, map[domain.AttachmentStyle]float64{domain.StyleSecure: 0.7}, "s", "2026-03-11", testAt.AddDate(0, 0, 1), DefaultConfig())

	est := Estimate(p, DefaultConfig())

	assert.InDelta(t, 1.0, est.Scores.Sum(), 1e-6)
	for _, style := range domain.AttachmentStyles {
		assert.GreaterOrEqual(t, est.Scores.Get(style), 0.0)
	}
}

func TestDetectSignals(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		tone  domain.Tone
		style domain.AttachmentStyle
	}{
		{"reassurance seeking", "are we okay? you'd tell me right", domain.ToneCaution, domain.StyleAnxious},
		{"distancing", "I need some space right now", domain.ToneCaution, domain.StyleAvoidant},
		{"overwhelm", "I don't know what I want, everything is too much", domain.ToneCaution, domain.StyleDisorganized},
		{"owned feeling", "I felt hurt when you cancelled", domain.ToneClear, domain.StyleSecure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := DetectSignals(tt.text, tt.tone)
			require.NotEmpty(t, signals)
			assert.Equal(t, tt.style, signals[0].Style)
			assert.Greater(t, signals[0].Strength, 0.0)
		})
	}
}

func TestDetectSignals_NoMatches(t *testing.T) {
	assert.Nil(t, DetectSignals("the meeting is at noon", domain.ToneClear))
	assert.Nil(t, DetectSignals("", domain.ToneClear))
}

func TestDetectSignals_ToneScaling(t *testing.T) {
	alert := DetectSignals("don't leave me", domain.ToneAlert)
	caution := DetectSignals("don't leave me", domain.ToneCaution)

	require.NotEmpty(t, alert)
	require.NotEmpty(t, caution)
	assert.Greater(t, alert[0].Strength, caution[0].Strength)
}

func TestEvidence_FoldsSignals(t *testing.T) {
	ev := Evidence([]Signal{
		{ID: "a", Style: domain.StyleAnxious, Strength: 0.5},
		{ID: "b", Style: domain.StyleAnxious, Strength: 0.25},
		{ID: "c", Style: domain.StyleSecure, Strength: 0.3},
	})

	assert.InDelta(t, 0.75, ev[domain.StyleAnxious], 1e-9)
	assert.InDelta(t, 0.3, ev[domain.StyleSecure], 1e-9)
	assert.Nil(t, Evidence(nil))
}

func TestObserve_WithRealClockSequence(t *testing.T) {
	// Simulates the engine's usage: day keys derived from a moving clock.
	cfg := DefaultConfig()
	p := domain.NewCommunicatorProfile("u-2", DayKeyFor(testAt, nil), testAt)

	now := testAt
	for day := 0; day < 3; day++ {
		for i := 0; i < cfg.DailyLimit+2; i++ {
			Observe(p, map[domain.AttachmentStyle]float64{domain.StyleSecure: 0.4},
				"sec_repair", DayKeyFor(now, nil), now, cfg)
		}
		now = now.Add(24 * time.Hour)
	}

	assert.Equal(t, 2, p.DaysObserved)
	est := Estimate(p, cfg)
	assert.Equal(t, domain.StyleSecure, est.Primary)
}

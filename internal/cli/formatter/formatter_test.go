package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/attune/internal/domain"
)

func TestFormatClassification(t *testing.T) {
	tc := domain.ToneClassification{
		Primary:    domain.ToneAlert,
		Secondary:  domain.ToneCaution,
		Confidence: 0.82,
		Band:       domain.BandHigh,
		Distribution: domain.Distribution{
			Alert: 0.6, Caution: 0.3, Clear: 0.1,
		},
	}
	out := FormatClassification(tc, map[domain.ContextID]float64{
		domain.ContextConflict: 0.5,
	})

	assert.Contains(t, out, "ALERT")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "leaning caution")
	assert.Contains(t, out, "conflict 0.50")
}

func TestFormatClassificationNoContexts(t *testing.T) {
	tc := domain.ToneClassification{
		Primary: domain.ToneClear,
		Band:    domain.BandLow,
		Distribution: domain.Distribution{
			Clear: 1,
		},
	}
	out := FormatClassification(tc, nil)

	assert.Contains(t, out, "CLEAR")
	assert.NotContains(t, out, "contexts:")
}

func TestActiveContextLineOrdering(t *testing.T) {
	line := activeContextLine(map[domain.ContextID]float64{
		domain.ContextRepair:   0.2,
		domain.ContextConflict: 0.7,
	})

	conflictAt := strings.Index(line, "conflict")
	repairAt := strings.Index(line, "repair")
	assert.GreaterOrEqual(t, conflictAt, 0)
	assert.Greater(t, repairAt, conflictAt)
}

func TestFormatEstimate(t *testing.T) {
	est := domain.AttachmentEstimate{
		Primary:      domain.StyleAnxious,
		Secondary:    domain.StyleSecure,
		Scores:       domain.AttachmentScores{Anxious: 0.6, Secure: 0.4},
		Confidence:   0.5,
		DaysObserved: 3,
	}
	out := FormatEstimate(est, 7)

	assert.Contains(t, out, "Anxious")
	assert.Contains(t, out, "day 3 of 7")
	assert.NotContains(t, out, "prior weight")
}

func TestFormatEstimateInsufficient(t *testing.T) {
	out := FormatEstimate(domain.InsufficientEvidenceEstimate(), 7)
	assert.Contains(t, out, "Not enough evidence")
}

func TestFormatEstimateWindowComplete(t *testing.T) {
	est := domain.AttachmentEstimate{
		Primary:        domain.StyleSecure,
		Secondary:      domain.StyleAnxious,
		Scores:         domain.AttachmentScores{Secure: 0.8, Anxious: 0.2},
		DaysObserved:   9,
		WindowComplete: true,
		PriorWeight:    0.2,
	}
	out := FormatEstimate(est, 7)

	assert.Contains(t, out, "window complete")
	assert.Contains(t, out, "prior weight 0.20")
}

func TestFormatRanked(t *testing.T) {
	ranked := []domain.RankedAdvice{
		{Item: domain.AdviceItem{ID: "adv-a", Text: "pause before sending"}, Score: 0.91},
		{Item: domain.AdviceItem{ID: "adv-b", Text: "name the feeling"}, Score: 0.52},
	}
	out := FormatRanked(ranked)

	assert.Contains(t, out, "pause before sending")
	assert.Contains(t, out, "adv-b")
	assert.Contains(t, out, "0.910")
}

func TestFormatRankedEmpty(t *testing.T) {
	out := FormatRanked(nil)
	assert.Contains(t, out, "reads fine")
}

func TestFormatHistory(t *testing.T) {
	events := []domain.ProfileEvent{
		{DayKey: "2026-03-10", Type: domain.EventEvidence, Style: domain.StyleAnxious, Weight: 0.8, SignalID: "anx_reassurance"},
		{DayKey: "2026-03-09", Type: domain.EventReset},
	}
	out := FormatHistory(events)

	assert.Contains(t, out, "anx_reassurance")
	assert.Contains(t, out, "reset")
	assert.Contains(t, out, "0.80")
}

func TestRenderMeterClamps(t *testing.T) {
	full := RenderMeter(1.5, 8, StyleGreen)
	empty := RenderMeter(-0.2, 8, StyleRed)

	assert.Contains(t, full, "100%")
	assert.Contains(t, empty, "0%")
	assert.NotContains(t, empty, filledBlock)
}

func TestRenderTableAlignment(t *testing.T) {
	out := RenderTable(
		[]string{"DAY", "EVENT"},
		[][]string{{"2026-03-10", "evidence"}},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "evidence")
}

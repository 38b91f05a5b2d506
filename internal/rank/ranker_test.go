package rank

import (
	"testing"

	"github.com/alexanderramin/attune/internal/classify"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCorpus() []domain.AdviceItem {
	return []domain.AdviceItem{
		{
			ID:           "adv-pause",
			Text:         "Ask for a pause before the conflict escalates further.",
			TriggerTones: []domain.Tone{domain.ToneAlert, domain.ToneCaution},
			Contexts:     []domain.ContextID{domain.ContextConflict},
			Patterns:     []string{"protest_behavior", "escalation"},
			Intents:      []string{"de-escalate"},
		},
		{
			ID:           "adv-repair",
			Text:         "Lead with what you appreciate before raising the hard part.",
			TriggerTones: []domain.Tone{domain.ToneClear},
			Contexts:     []domain.ContextID{domain.ContextRepair},
			Intents:      []string{"repair"},
		},
		{
			ID:           "adv-feelings",
			Text:         "Name the feeling you are having instead of blaming.",
			Contexts:     []domain.ContextID{domain.ContextGeneral},
			ContextLinks: []domain.ContextID{domain.ContextConflict},
			StyleTuning:  map[domain.AttachmentStyle]float64{domain.StyleAnxious: 0.08},
		},
		{
			ID:                "adv-timeout",
			Text:              "Agree on a twenty minute timeout and a time to resume.",
			Contexts:          []domain.ContextID{domain.ContextConflict},
			SeverityThreshold: map[domain.Tone]float64{domain.ToneAlert: 0.5},
		},
	}
}

func newTestRanker(t *testing.T, cfg Config) *Ranker {
	t.Helper()
	contexts := classify.NewContextClassifier(classify.DefaultContextDefs(), nil)
	r := New(testCorpus(), contexts, cfg)
	require.Equal(t, len(testCorpus()), r.Len())
	return r
}

func TestRank_FiltersByToneAndContext(t *testing.T) {
	r := newTestRanker(t, DefaultConfig())

	out := r.Rank(Request{
		Text:    "you never listen and this always turns into a fight",
		Context: domain.ContextConflict,
		Tone:    domain.ToneAlert,
	})

	require.NotEmpty(t, out)
	for _, ranked := range out {
		assert.NotEqual(t, "adv-repair", ranked.Item.ID,
			"clear-only advice must not surface for an alert message")
	}
}

func TestRank_LexicalRelevanceOrdersResults(t *testing.T) {
	r := newTestRanker(t, DefaultConfig())

	out := r.Rank(Request{
		Text:    "can we pause before this escalates",
		Context: domain.ContextConflict,
		Tone:    domain.ToneCaution,
	})

	require.NotEmpty(t, out)
	assert.Equal(t, "adv-pause", out[0].Item.ID)
}

func TestRank_ContextLinkBonus(t *testing.T) {
	r := newTestRanker(t, DefaultConfig())

	req := Request{
		Text:    "stop yelling at me",
		Context: domain.ContextConflict,
		Tone:    domain.ToneCaution,
	}

	without := scoreOf(r.Rank(req), "adv-feelings")
	req.ContextScores = map[domain.ContextID]float64{domain.ContextConflict: 0.4}
	with := scoreOf(r.Rank(req), "adv-feelings")

	assert.Greater(t, with, without,
		"overlap with the top active contexts must raise linked items")
}

func TestRank_PatternBonusDividedAcrossDeclaredPatterns(t *testing.T) {
	cfg := DefaultConfig()
	r := newTestRanker(t, cfg)

	req := Request{
		Text:    "this always happens",
		Context: domain.ContextConflict,
		Tone:    domain.ToneCaution,
	}

	base := scoreOf(r.Rank(req), "adv-pause")

	req.ActivePatterns = []string{"escalation"}
	one := scoreOf(r.Rank(req), "adv-pause")
	assert.InDelta(t, cfg.PatternBonusCap/2, one-base, 1e-9,
		"one of two declared patterns earns half the cap")

	req.ActivePatterns = []string{"escalation", "protest_behavior"}
	both := scoreOf(r.Rank(req), "adv-pause")
	assert.InDelta(t, cfg.PatternBonusCap, both-base, 1e-9)
}

func TestRank_StyleTuningBonus(t *testing.T) {
	r := newTestRanker(t, DefaultConfig())

	req := Request{
		Text:    "i am worried",
		Context: domain.ContextConflict,
		Tone:    domain.ToneCaution,
	}

	base := scoreOf(r.Rank(req), "adv-feelings")
	req.Estimate = &domain.AttachmentEstimate{Primary: domain.StyleAnxious}
	tuned := scoreOf(r.Rank(req), "adv-feelings")

	assert.InDelta(t, 0.08, tuned-base, 1e-9)
}

func TestRank_SeverityPenalty(t *testing.T) {
	cfg := DefaultConfig()
	r := newTestRanker(t, cfg)

	req := Request{
		Text:      "we need a break",
		Context:   domain.ContextConflict,
		Tone:      domain.ToneAlert,
		ToneScore: 0.3,
	}
	below := scoreOf(r.Rank(req), "adv-timeout")

	req.ToneScore = 0.6
	met := scoreOf(r.Rank(req), "adv-timeout")

	assert.InDelta(t, cfg.SeverityPenalty, met-below, 1e-9)
}

func TestRank_DeterministicWithIDTieBreak(t *testing.T) {
	contexts := classify.NewContextClassifier(classify.DefaultContextDefs(), nil)
	items := []domain.AdviceItem{
		{ID: "b", Text: "identical words here"},
		{ID: "a", Text: "identical words here"},
		{ID: "c", Text: "identical words here"},
	}
	r := New(items, contexts, DefaultConfig())

	req := Request{Text: "identical words", Tone: domain.ToneCaution}
	first := r.Rank(req)
	second := r.Rank(req)

	require.Len(t, first, 3)
	assert.Equal(t, "a", first[0].Item.ID)
	assert.Equal(t, "b", first[1].Item.ID)
	assert.Equal(t, "c", first[2].Item.ID)
	assert.Equal(t, first, second)
}

func TestRank_LimitTruncates(t *testing.T) {
	r := newTestRanker(t, DefaultConfig())

	out := r.Rank(Request{
		Text:    "pause the conflict",
		Context: domain.ContextConflict,
		Tone:    domain.ToneCaution,
		Limit:   1,
	})

	assert.Len(t, out, 1)
}

func TestRank_EmbeddingBonusRequiresWarmCacheAndQueryVector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmbedBonusWeight = 0.10
	r := newTestRanker(t, cfg)

	req := Request{
		Text:    "can we pause",
		Context: domain.ContextConflict,
		Tone:    domain.ToneCaution,
	}
	cold := scoreOf(r.Rank(req), "adv-pause")

	r.SetEmbedding("adv-pause", []float64{1, 0, 0})
	req.QueryEmbedding = []float64{1, 0, 0}
	warm := scoreOf(r.Rank(req), "adv-pause")

	assert.InDelta(t, 0.10, warm-cold, 1e-9, "aligned vectors earn the full bonus")

	req.QueryEmbedding = nil
	assert.InDelta(t, cold, scoreOf(r.Rank(req), "adv-pause"), 1e-9,
		"no query vector, no bonus")
}

func TestRank_EmptyCorpus(t *testing.T) {
	contexts := classify.NewContextClassifier(classify.DefaultContextDefs(), nil)
	r := New(nil, contexts, DefaultConfig())

	assert.Empty(t, r.Rank(Request{Text: "anything", Tone: domain.ToneCaution}))
}

func scoreOf(ranked []domain.RankedAdvice, id string) float64 {
	for _, r := range ranked {
		if r.Item.ID == id {
			return r.Score
		}
	}
	return -1
}

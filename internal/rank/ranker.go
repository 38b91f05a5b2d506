package rank

import (
	"math"
	"sort"

	"github.com/alexanderramin/attune/internal/classify"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/textutil"
)

// Config holds the re-scoring weights. Zero values fall back to defaults so
// a partially filled config stays usable.
type Config struct {
	// BM25Weight scales the lexical relevance share of the final score.
	BM25Weight float64

	// ContextLinkBonus is the maximum bonus for overlap between an item's
	// linked contexts and the top active contexts.
	ContextLinkBonus float64

	// PatternBonusCap is the maximum pattern-alignment bonus per item,
	// divided evenly across the item's declared patterns.
	PatternBonusCap float64

	// SeverityPenalty is subtracted when the item declares a severity
	// threshold the current tone's active score fails to meet.
	SeverityPenalty float64

	// EmbedBonusWeight scales the cosine-similarity bonus for items with a
	// warm embedding cache entry. Zero disables the bonus.
	EmbedBonusWeight float64

	// ContextRepeat is how many times the request context token is repeated
	// in the lexical query.
	ContextRepeat int

	// Limit is the default result count.
	Limit int
}

func DefaultConfig() Config {
	return Config{
		BM25Weight:       0.55,
		ContextLinkBonus: 0.10,
		PatternBonusCap:  0.15,
		SeverityPenalty:  0.10,
		EmbedBonusWeight: 0,
		ContextRepeat:    3,
		Limit:            8,
	}
}

func (c Config) sanitized() Config {
	if c.BM25Weight <= 0 {
		c.BM25Weight = 0.55
	}
	if c.ContextLinkBonus <= 0 {
		c.ContextLinkBonus = 0.10
	}
	if c.PatternBonusCap <= 0 {
		c.PatternBonusCap = 0.15
	}
	if c.SeverityPenalty <= 0 {
		c.SeverityPenalty = 0.10
	}
	if c.ContextRepeat <= 0 {
		c.ContextRepeat = 3
	}
	if c.Limit <= 0 {
		c.Limit = 8
	}
	return c
}

// Request carries one ranking call's inputs.
type Request struct {
	Text          string
	Context       domain.ContextID
	Tone          domain.Tone
	ContextScores map[domain.ContextID]float64

	// ToneScore is the requested tone's share of the blended distribution,
	// tested against per-item severity thresholds.
	ToneScore float64

	// Estimate is the caller's attachment estimate; nil skips style tuning.
	Estimate *domain.AttachmentEstimate

	// ActivePatterns are the attachment-pattern tags detected for this
	// message, used for the alignment bonus.
	ActivePatterns []string

	// QueryEmbedding is the message's embedding vector; empty skips the
	// cosine bonus even when the cache is warm.
	QueryEmbedding []float64

	// Limit overrides the configured default when positive.
	Limit int
}

// Ranker scores the advice corpus for a message. The index is built once in
// New; Rank is pure and safe for concurrent use.
type Ranker struct {
	items    []domain.AdviceItem
	index    *BM25Index
	contexts *classify.ContextClassifier
	cfg      Config

	// embeddings maps advice id to a unit-normalized vector; populated by
	// warm-up, may stay empty.
	embeddings map[string][]float64
}

// New indexes the corpus. contexts supplies the appropriateness check; it
// must not be nil.
func New(items []domain.AdviceItem, contexts *classify.ContextClassifier, cfg Config) *Ranker {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}
	return &Ranker{
		items:      items,
		index:      BuildBM25Index(texts),
		contexts:   contexts,
		cfg:        cfg.sanitized(),
		embeddings: map[string][]float64{},
	}
}

// Len returns the corpus size.
func (r *Ranker) Len() int { return len(r.items) }

// Items returns the indexed corpus.
func (r *Ranker) Items() []domain.AdviceItem { return r.items }

// SetEmbedding stores a pre-computed advice embedding for the cosine bonus.
// Call during warm-up only; Rank reads the map without locking.
func (r *Ranker) SetEmbedding(adviceID string, vec []float64) {
	r.embeddings[adviceID] = unitNorm(vec)
}

// Rank filters the corpus by tone and context appropriateness, scores the
// survivors, and returns them ordered by final score descending with id
// ascending as the tie-break.
func (r *Ranker) Rank(req Request) []domain.RankedAdvice {
	query := r.buildQuery(req)
	bm25 := r.index.Score(query)

	var queryVec []float64
	if r.cfg.EmbedBonusWeight > 0 && len(r.embeddings) > 0 {
		queryVec = unitNorm(req.QueryEmbedding)
	}

	topActive := classify.TopContexts(req.ContextScores, 3)

	out := make([]domain.RankedAdvice, 0, len(r.items))
	for i, item := range r.items {
		if !item.MatchesTone(req.Tone) {
			continue
		}
		if !r.contexts.Appropriate(item, req.Context, req.ContextScores) {
			continue
		}

		score := r.cfg.BM25Weight * bm25[i]
		score += r.contextLinkBonus(item, topActive)
		score += r.patternBonus(item, req.ActivePatterns)
		score += styleTuningBonus(item, req.Estimate)
		score -= r.severityPenalty(item, req.Tone, req.ToneScore)
		score += r.embedBonus(item.ID, queryVec)

		out = append(out, domain.RankedAdvice{Item: item, Score: domain.SafeFloat(score)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Item.ID < out[j].Item.ID
	})

	limit := req.Limit
	if limit <= 0 {
		limit = r.cfg.Limit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// buildQuery assembles the lexical query: the message's content words, the
// request context token repeated for weight, the tone token, and the top-3
// active context keys.
func (r *Ranker) buildQuery(req Request) []string {
	query := textutil.ContentWords(req.Text, 3)
	if req.Context != "" {
		for i := 0; i < r.cfg.ContextRepeat; i++ {
			query = append(query, string(req.Context))
		}
	}
	if req.Tone != "" {
		query = append(query, string(req.Tone))
	}
	for _, ctx := range classify.TopContexts(req.ContextScores, 3) {
		query = append(query, string(ctx))
	}
	return query
}

// contextLinkBonus scales with the overlap between the item's linked
// contexts and the top active contexts.
func (r *Ranker) contextLinkBonus(item domain.AdviceItem, topActive []domain.ContextID) float64 {
	if len(item.ContextLinks) == 0 || len(topActive) == 0 {
		return 0
	}
	active := make(map[domain.ContextID]bool, len(topActive))
	for _, ctx := range topActive {
		active[ctx] = true
	}
	overlap := 0
	for _, ctx := range item.ContextLinks {
		if active[ctx] {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}
	return r.cfg.ContextLinkBonus * float64(overlap) / float64(len(item.ContextLinks))
}

// patternBonus divides the cap evenly across the item's declared patterns
// and awards each declared pattern that is active.
func (r *Ranker) patternBonus(item domain.AdviceItem, active []string) float64 {
	if len(item.Patterns) == 0 || len(active) == 0 {
		return 0
	}
	activeSet := make(map[string]bool, len(active))
	for _, p := range active {
		activeSet[p] = true
	}
	per := r.cfg.PatternBonusCap / float64(len(item.Patterns))
	var bonus float64
	for _, p := range item.Patterns {
		if activeSet[p] {
			bonus += per
		}
	}
	if bonus > r.cfg.PatternBonusCap {
		bonus = r.cfg.PatternBonusCap
	}
	return bonus
}

func styleTuningBonus(item domain.AdviceItem, est *domain.AttachmentEstimate) float64 {
	if est == nil || est.Primary == "" || len(item.StyleTuning) == 0 {
		return 0
	}
	return item.StyleTuning[est.Primary]
}

// severityPenalty applies when the item declares a threshold for the current
// tone and the tone's blended score falls short.
func (r *Ranker) severityPenalty(item domain.AdviceItem, tone domain.Tone, toneScore float64) float64 {
	threshold, ok := item.SeverityThreshold[tone]
	if !ok {
		return 0
	}
	if toneScore >= threshold {
		return 0
	}
	return r.cfg.SeverityPenalty
}

func (r *Ranker) embedBonus(adviceID string, queryVec []float64) float64 {
	if len(queryVec) == 0 {
		return 0
	}
	vec, ok := r.embeddings[adviceID]
	if !ok {
		return 0
	}
	sim := cosine(queryVec, vec)
	if sim <= 0 {
		return 0
	}
	return r.cfg.EmbedBonusWeight * sim
}

func unitNorm(vec []float64) []float64 {
	if len(vec) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return nil
	}
	out := make([]float64, len(vec))
	inv := 1 / math.Sqrt(sum)
	for i, v := range vec {
		out[i] = v * inv
	}
	return out
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

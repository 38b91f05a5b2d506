// Package classify turns a normalized message into a tone classification:
// context detection, semantic-backbone matching, and signal blending into a
// 3-bucket distribution with banded severity.
package classify

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/patterns"
)

// ContextDef declares one detectable conversational context as a list of
// literal cue words. The classifier builds a single word-boundary
// alternation regex per context.
type ContextDef struct {
	ID    domain.ContextID
	Cues  []string
	Boost float64 // confidence boost contributed when the context matches
}

// DefaultContextDefs returns the built-in context definitions in priority
// order: the first matching context wins as top context.
func DefaultContextDefs() []ContextDef {
	return []ContextDef{
		{ID: domain.ContextConflict, Boost: 0.35, Cues: []string{
			"fight", "fighting", "argument", "arguing", "yelling", "screaming",
			"furious", "angry", "mad", "blowup", "shouting",
		}},
		{ID: domain.ContextRepair, Boost: 0.3, Cues: []string{
			"sorry", "apologize", "apology", "forgive", "make it right",
			"make this up", "reconnect", "miss you",
		}},
		{ID: domain.ContextBoundary, Boost: 0.3, Cues: []string{
			"space", "boundary", "boundaries", "limit", "too far",
			"not okay", "back off", "need time",
		}},
		{ID: domain.ContextPlanning, Boost: 0.25, Cues: []string{
			"plan", "plans", "schedule", "weekend", "tonight", "tomorrow",
			"dinner", "trip", "appointment", "calendar",
		}},
		{ID: domain.ContextGeneral, Boost: 0.1, Cues: []string{
			"hey", "hi", "hello", "how are you", "what's up",
		}},
	}
}

type compiledContext struct {
	def ContextDef
	re  *regexp.Regexp
}

// ContextMatch is one detected context with its confidence boost.
type ContextMatch struct {
	Context domain.ContextID
	Boost   float64
}

// ContextClassifier detects conversational contexts from cue alternation
// regexes and judges context appropriateness for advice items.
type ContextClassifier struct {
	contexts []compiledContext

	// MinActiveScore is the floor an externally scored context must exceed
	// for the soft appropriateness fallback.
	MinActiveScore float64

	// Strict disables the soft fallback rules entirely.
	Strict bool
}

// NewContextClassifier compiles cue lists into per-context alternation
// regexes. Contexts whose alternation fails to compile are skipped and
// logged.
func NewContextClassifier(defs []ContextDef, logger *slog.Logger) *ContextClassifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cc := &ContextClassifier{MinActiveScore: 0.18}
	for _, def := range defs {
		if len(def.Cues) == 0 {
			continue
		}
		escaped := make([]string, 0, len(def.Cues))
		for _, cue := range def.Cues {
			if cue == "" {
				continue
			}
			escaped = append(escaped, regexp.QuoteMeta(cue))
		}
		re, err := regexp.Compile(`\b(?:` + strings.Join(escaped, "|") + `)\b`)
		if err != nil {
			logger.Warn("skipping context with invalid cue alternation", "context", def.ID, "error", err)
			continue
		}
		cc.contexts = append(cc.contexts, compiledContext{def: def, re: re})
	}
	return cc
}

// Detect returns up to two matching contexts in priority order. The first is
// the top context used for regex-cue boosting.
func (c *ContextClassifier) Detect(normText string) []ContextMatch {
	var matches []ContextMatch
	for _, cc := range c.contexts {
		if cc.re.MatchString(normText) {
			matches = append(matches, ContextMatch{Context: cc.def.ID, Boost: cc.def.Boost})
			if len(matches) == 2 {
				break
			}
		}
	}
	return matches
}

// Score combines cue-regex matches from the bank with the detected contexts
// to produce a per-context score map and the scalar fed into the blender.
// The scalar is the maximum boost across all matched cues for the top
// context.
func (c *ContextClassifier) Score(normText string, cueHits []patterns.CueHit) (map[domain.ContextID]float64, float64) {
	scores := map[domain.ContextID]float64{}
	for _, m := range c.Detect(normText) {
		if m.Boost > scores[m.Context] {
			scores[m.Context] = m.Boost
		}
	}
	for _, hit := range cueHits {
		for ctx, boost := range hit.Boosts {
			if boost > scores[ctx] {
				scores[ctx] = boost
			}
		}
	}

	var top float64
	for _, v := range scores {
		if v > top {
			top = v
		}
	}
	return scores, top
}

// TopContexts returns up to n context keys ordered by score descending, ties
// broken alphabetically for deterministic output.
func TopContexts(scores map[domain.ContextID]float64, n int) []domain.ContextID {
	type kv struct {
		ctx   domain.ContextID
		score float64
	}
	pairs := make([]kv, 0, len(scores))
	for ctx, score := range scores {
		pairs = append(pairs, kv{ctx, score})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].ctx < pairs[j].ctx
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]domain.ContextID, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.ctx)
	}
	return out
}

// Appropriate reports whether an advice item fits the request context.
// Acceptance ladder: no declared contexts (general advice), explicit
// "general", direct or linked context match, then (unless strict mode is on)
// a soft fallback admitting items whose declared or linked contexts
// overlap the top-scored active context above the minimum threshold, with
// conflict-family cross-admission.
func (c *ContextClassifier) Appropriate(item domain.AdviceItem, reqCtx domain.ContextID, active map[domain.ContextID]float64) bool {
	if len(item.Contexts) == 0 {
		return true
	}
	for _, ctx := range item.Contexts {
		if ctx == domain.ContextGeneral {
			return true
		}
		if ctx == reqCtx {
			return true
		}
	}
	for _, ctx := range item.ContextLinks {
		if ctx == reqCtx {
			return true
		}
	}

	if c.Strict {
		return false
	}

	top, score := topActiveContext(active)
	if top == "" || score < c.MinActiveScore {
		return false
	}
	for _, ctx := range item.Contexts {
		if ctx == top {
			return true
		}
	}
	for _, ctx := range item.ContextLinks {
		if ctx == top {
			return true
		}
	}

	// Conflict-ish cross-admission: when the top active context is in the
	// conflict family, conflict-flavored advice is admitted too.
	if domain.ConflictFamily[top] {
		for _, ctx := range item.Contexts {
			if domain.ConflictFamily[ctx] {
				return true
			}
		}
	}
	return false
}

func topActiveContext(active map[domain.ContextID]float64) (domain.ContextID, float64) {
	var top domain.ContextID
	var best float64
	for ctx, score := range active {
		if score > best || (score == best && top != "" && ctx < top) {
			top = ctx
			best = score
		}
	}
	return top, best
}

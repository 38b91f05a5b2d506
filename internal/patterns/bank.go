// Package patterns holds the compiled regex bank: nuanced tone patterns,
// phrase-edge intensity boosts, negation and sarcasm indicators, and context
// cues. Entries are matched against the full normalized text because these
// patterns span multi-word idioms and punctuation.
package patterns

import (
	"log/slog"
	"regexp"

	"github.com/alexanderramin/attune/internal/domain"
)

// TonePatternConfig declares a regex that votes for a tone bucket.
type TonePatternConfig struct {
	Pattern    string
	Tone       domain.Tone
	Confidence float64 // 0..1
	Label      string
}

// PhraseEdgeConfig declares an intensity-boosting phrase, optionally biased
// toward specific tones.
type PhraseEdgeConfig struct {
	Pattern  string
	Boost    float64
	Category string
	ToneBias map[domain.Tone]float64
}

// IndicatorConfig declares a negation or sarcasm indicator with its impact.
type IndicatorConfig struct {
	Pattern string
	Impact  float64
}

// ContextCueConfig declares a cue regex for a conversational context with a
// per-context confidence-boost map.
type ContextCueConfig struct {
	Pattern string
	Context domain.ContextID
	Boosts  map[domain.ContextID]float64
}

// BankConfig is the full declarative input for a Bank. Invalid regex entries
// are skipped with a logged warning, never fatal.
type BankConfig struct {
	TonePatterns []TonePatternConfig
	PhraseEdges  []PhraseEdgeConfig
	Negations    []IndicatorConfig
	Sarcasm      []IndicatorConfig
	ContextCues  []ContextCueConfig

	// MaxToneHits caps regex tone hits per message to bound runaway scores
	// from repeated matches.
	MaxToneHits int
}

type tonePattern struct {
	re         *regexp.Regexp
	tone       domain.Tone
	confidence float64
	label      string
}

type phraseEdge struct {
	re       *regexp.Regexp
	boost    float64
	category string
	toneBias map[domain.Tone]float64
}

type indicator struct {
	re     *regexp.Regexp
	impact float64
}

type contextCue struct {
	re      *regexp.Regexp
	context domain.ContextID
	boosts  map[domain.ContextID]float64
}

// CueHit is one matched context cue.
type CueHit struct {
	Context domain.ContextID
	Boosts  map[domain.ContextID]float64
}

// Bank holds the compiled pattern sets. Construction compiles everything
// once; matching is pure and allocation-light.
type Bank struct {
	tones       []tonePattern
	edges       []phraseEdge
	negations   []indicator
	sarcasm     []indicator
	cues        []contextCue
	maxToneHits int
}

// NewBank compiles cfg into a Bank. Entries whose regex fails to compile are
// skipped and logged through logger; the rest of the bank stays usable.
func NewBank(cfg BankConfig, logger *slog.Logger) *Bank {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &Bank{maxToneHits: cfg.MaxToneHits}
	if b.maxToneHits <= 0 {
		b.maxToneHits = 6
	}

	for _, tp := range cfg.TonePatterns {
		re, err := regexp.Compile(tp.Pattern)
		if err != nil {
			logger.Warn("skipping invalid tone pattern", "pattern", tp.Pattern, "error", err)
			continue
		}
		b.tones = append(b.tones, tonePattern{
			re:         re,
			tone:       tp.Tone,
			confidence: domain.Clamp01(domain.SafeFloat(tp.Confidence)),
			label:      tp.Label,
		})
	}

	for _, pe := range cfg.PhraseEdges {
		re, err := regexp.Compile(pe.Pattern)
		if err != nil {
			logger.Warn("skipping invalid phrase edge", "pattern", pe.Pattern, "error", err)
			continue
		}
		b.edges = append(b.edges, phraseEdge{
			re:       re,
			boost:    domain.SafeNonNeg(pe.Boost),
			category: pe.Category,
			toneBias: pe.ToneBias,
		})
	}

	b.negations = compileIndicators(cfg.Negations, "negation", logger)
	b.sarcasm = compileIndicators(cfg.Sarcasm, "sarcasm", logger)

	for _, cc := range cfg.ContextCues {
		re, err := regexp.Compile(cc.Pattern)
		if err != nil {
			logger.Warn("skipping invalid context cue", "pattern", cc.Pattern, "error", err)
			continue
		}
		b.cues = append(b.cues, contextCue{re: re, context: cc.Context, boosts: cc.Boosts})
	}

	return b
}

func compileIndicators(cfgs []IndicatorConfig, kind string, logger *slog.Logger) []indicator {
	var out []indicator
	for _, ic := range cfgs {
		re, err := regexp.Compile(ic.Pattern)
		if err != nil {
			logger.Warn("skipping invalid indicator", "kind", kind, "pattern", ic.Pattern, "error", err)
			continue
		}
		out = append(out, indicator{re: re, impact: domain.SafeNonNeg(ic.Impact)})
	}
	return out
}

// ToneHits returns regex tone matches against the normalized text, capped at
// the configured per-message limit.
func (b *Bank) ToneHits(text string) []domain.TriggerHit {
	var hits []domain.TriggerHit
	for _, tp := range b.tones {
		if len(hits) >= b.maxToneHits {
			break
		}
		if tp.re.MatchString(text) {
			hits = append(hits, domain.TriggerHit{
				Tone:   tp.tone,
				Weight: tp.confidence,
				Label:  tp.label,
			})
		}
	}
	return hits
}

// Intensity sums phrase-edge boosts for the text and aggregates any per-tone
// bias the matched edges declare.
func (b *Bank) Intensity(text string) (float64, map[domain.Tone]float64) {
	var total float64
	bias := map[domain.Tone]float64{}
	for _, pe := range b.edges {
		if !pe.re.MatchString(text) {
			continue
		}
		total += pe.boost
		for tone, v := range pe.toneBias {
			bias[tone] += domain.SafeFloat(v)
		}
	}
	return total, bias
}

// NegationImpact returns the summed impact of matched negation indicators.
func (b *Bank) NegationImpact(text string) float64 {
	return sumIndicator(b.negations, text)
}

// SarcasmImpact returns the summed impact of matched sarcasm indicators.
func (b *Bank) SarcasmImpact(text string) float64 {
	return sumIndicator(b.sarcasm, text)
}

func sumIndicator(inds []indicator, text string) float64 {
	var total float64
	for _, ind := range inds {
		if ind.re.MatchString(text) {
			total += ind.impact
		}
	}
	return total
}

// ContextHits returns cues whose regex matched, in configuration order.
func (b *Bank) ContextHits(text string) []CueHit {
	var hits []CueHit
	for _, cc := range b.cues {
		if cc.re.MatchString(text) {
			hits = append(hits, CueHit{Context: cc.context, Boosts: cc.boosts})
		}
	}
	return hits
}

package classify

import (
	"log/slog"
	"strings"

	"github.com/alexanderramin/attune/internal/automaton"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/patterns"
	"github.com/alexanderramin/attune/internal/textutil"
)

// Config tunes the classification pipeline.
type Config struct {
	Blend BlendConfig

	// MaxTriggerHits caps automaton matches per message to bound tail
	// influence from repeated trigger words.
	MaxTriggerHits int

	// SoftenerRelief is the per-softener multiplicative relief applied to
	// the profanity-derived penalty.
	SoftenerRelief float64
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		Blend:          DefaultBlendConfig(),
		MaxTriggerHits: 6,
		SoftenerRelief: 0.15,
	}
}

// Request carries one classification request. Only Text is required.
type Request struct {
	Text    string
	Context domain.ContextID // externally supplied conversation context, optional

	AttachmentStyle domain.AttachmentStyle
	Preferences     map[domain.Tone]float64
	PrevBand        domain.Band
}

// Result is a tone classification plus the intermediate signals the advice
// ranker consumes.
type Result struct {
	Classification domain.ToneClassification
	ContextScores  map[domain.ContextID]float64
	Backbone       domain.BackboneResult
}

// Classifier is the deterministic tone engine: pure and stateless per
// request once constructed, safe to call on every keystroke.
type Classifier struct {
	triggers  *automaton.Automaton[domain.TriggerHit]
	profanity *automaton.Automaton[float64]
	softeners *automaton.Automaton[struct{}]
	bank      *patterns.Bank
	contexts  *ContextClassifier
	clusters  []domain.SemanticCluster
	cfg       Config
}

// NewClassifier builds all matchers once. lex and bankCfg entries that fail
// validation are skipped; construction never fails.
func NewClassifier(lex patterns.Lexicon, bankCfg patterns.BankConfig, defs []ContextDef, clusters []domain.SemanticCluster, cfg Config, logger *slog.Logger) *Classifier {
	if cfg.MaxTriggerHits <= 0 {
		cfg.MaxTriggerHits = 6
	}
	if cfg.SoftenerRelief <= 0 {
		cfg.SoftenerRelief = 0.15
	}

	c := &Classifier{
		triggers:  automaton.New[domain.TriggerHit](),
		profanity: automaton.New[float64](),
		softeners: automaton.New[struct{}](),
		bank:      patterns.NewBank(bankCfg, logger),
		contexts:  NewContextClassifier(defs, logger),
		clusters:  clusters,
		cfg:       cfg,
	}

	for _, trig := range lex.Triggers {
		c.triggers.AddPattern(textutil.Tokenize(trig.Phrase), domain.TriggerHit{
			Tone:   trig.Tone,
			Weight: domain.Clamp01(domain.SafeFloat(trig.Weight)),
			Label:  trig.Label,
		})
	}
	for _, prof := range lex.Profanity {
		c.profanity.AddPattern(textutil.Tokenize(prof.Phrase), domain.SafeNonNeg(prof.Severity))
	}
	for _, soft := range lex.Softeners {
		c.softeners.AddPattern(textutil.Tokenize(soft), struct{}{})
	}
	c.triggers.Build()
	c.profanity.Build()
	c.softeners.Build()

	return c
}

// Classify runs the full pipeline for one message.
func (c *Classifier) Classify(req Request) Result {
	norm := textutil.Normalize(req.Text)
	tokens := textutil.Tokenize(req.Text)

	triggerHits := c.triggerHits(tokens)
	regexHits := c.bank.ToneHits(norm)

	intensity, toneBias := c.bank.Intensity(norm)

	// Negation discounts hostile evidence; sarcasm discounts positive
	// evidence and reads as caution.
	negImpact := c.bank.NegationImpact(norm)
	sarImpact := c.bank.SarcasmImpact(norm)
	if negImpact > 0 {
		discountTone(triggerHits, domain.ToneAlert, negImpact)
		discountTone(regexHits, domain.ToneAlert, negImpact)
	}
	if sarImpact > 0 {
		discountTone(triggerHits, domain.ToneClear, sarImpact)
		discountTone(regexHits, domain.ToneClear, sarImpact)
		toneBias[domain.ToneCaution] += 0.5 * sarImpact
	}

	negSar := c.negSarScore(negImpact, sarImpact, tokens)

	backbone := MatchSemanticBackbone(req.Text, c.clusters)
	for tone, bias := range backbone.ToneBias {
		toneBias[tone] += bias
	}

	ctxScores, ctxScore := c.contexts.Score(norm, c.bank.ContextHits(norm))
	for ctx, bias := range backbone.ContextBias {
		ctxScores[ctx] += bias
		if ctxScores[ctx] > ctxScore {
			ctxScore = ctxScores[ctx]
		}
	}
	if req.Context != "" && req.Context != domain.ContextGeneral {
		// An externally supplied context counts as an active context even
		// without lexical cues.
		if ctxScores[req.Context] < 0.2 {
			ctxScores[req.Context] = 0.2
		}
		if ctxScores[req.Context] > ctxScore {
			ctxScore = ctxScores[req.Context]
		}
	}

	classification := Blend(BlendInput{
		TriggerHits:     triggerHits,
		RegexHits:       regexHits,
		ContextScore:    ctxScore,
		Intensity:       intensity,
		NegSar:          negSar,
		ToneBias:        toneBias,
		AttachmentStyle: req.AttachmentStyle,
		Preferences:     req.Preferences,
		PrevBand:        req.PrevBand,
	}, c.cfg.Blend)

	return Result{
		Classification: classification,
		ContextScores:  ctxScores,
		Backbone:       backbone,
	}
}

// ContextScores exposes context detection alone, for callers that need the
// active-context map without a full classification.
func (c *Classifier) ContextScores(text string) map[domain.ContextID]float64 {
	norm := textutil.Normalize(text)
	scores, _ := c.contexts.Score(norm, c.bank.ContextHits(norm))
	return scores
}

// Contexts returns the context classifier for appropriateness checks.
func (c *Classifier) Contexts() *ContextClassifier {
	return c.contexts
}

// MatchBackbone exposes semantic-backbone matching on its own.
func (c *Classifier) MatchBackbone(text string) domain.BackboneResult {
	return MatchSemanticBackbone(text, c.clusters)
}

func (c *Classifier) triggerHits(tokens []string) []domain.TriggerHit {
	matches := c.triggers.Find(tokens)
	hits := make([]domain.TriggerHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, m.Payload)
		if len(hits) == c.cfg.MaxTriggerHits {
			break
		}
	}
	return hits
}

// discountTone scales hits of the given tone by (1 - impact), capped so no
// single indicator can fully erase evidence.
func discountTone(hits []domain.TriggerHit, tone domain.Tone, impact float64) {
	relief := 1 - domain.Clamp(impact, 0, 0.8)
	for i := range hits {
		if hits[i].Tone == tone {
			hits[i].Weight *= relief
		}
	}
}

// negSarScore derives the negation/sarcasm penalty: profanity severity from
// the automaton layer plus regex negation and sarcasm impacts, softened
// multiplicatively per matched softener term.
func (c *Classifier) negSarScore(negImpact, sarImpact float64, tokens []string) float64 {
	var severity float64
	for _, m := range c.profanity.Find(tokens) {
		severity += m.Payload
	}
	severity += negImpact + sarImpact

	softenCount := len(c.softeners.Find(tokens))
	relief := 1 - c.cfg.SoftenerRelief*float64(softenCount)
	if relief < 0 {
		relief = 0
	}
	return domain.Clamp01(severity * relief)
}

// DescribeBand is a display helper: "alert/high" style labels.
func DescribeBand(tc domain.ToneClassification) string {
	return strings.Join([]string{string(tc.Primary), string(tc.Band)}, "/")
}

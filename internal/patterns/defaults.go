package patterns

import "github.com/alexanderramin/attune/internal/domain"

// TriggerWordConfig declares a literal token-sequence trigger for the
// automaton layer.
type TriggerWordConfig struct {
	Phrase string // space-separated tokens, matched after normalization
	Tone   domain.Tone
	Weight float64
	Label  string
}

// ProfanityConfig declares a profanity term and its severity contribution to
// the negation/sarcasm penalty.
type ProfanityConfig struct {
	Phrase   string
	Severity float64
}

// Lexicon bundles the literal pattern sets fed to the automaton layer.
type Lexicon struct {
	Triggers  []TriggerWordConfig
	Profanity []ProfanityConfig
	Softeners []string // terms that soften the profanity-derived penalty
}

// DefaultLexicon returns the built-in literal pattern sets. A corpus file can
// replace or extend them at load time.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Triggers: []TriggerWordConfig{
			// alert: hostility, finality, contempt
			{Phrase: "hate", Tone: domain.ToneAlert, Weight: 0.9, Label: "hostility"},
			{Phrase: "i hate you", Tone: domain.ToneAlert, Weight: 1.0, Label: "hostility"},
			{Phrase: "this is over", Tone: domain.ToneAlert, Weight: 0.9, Label: "finality"},
			{Phrase: "we're done", Tone: domain.ToneAlert, Weight: 0.9, Label: "finality"},
			{Phrase: "i'm done", Tone: domain.ToneAlert, Weight: 0.8, Label: "finality"},
			{Phrase: "shut up", Tone: domain.ToneAlert, Weight: 0.85, Label: "dismissal"},
			{Phrase: "leave me alone", Tone: domain.ToneAlert, Weight: 0.7, Label: "withdrawal"},
			{Phrase: "never talk to me again", Tone: domain.ToneAlert, Weight: 1.0, Label: "finality"},
			{Phrase: "worthless", Tone: domain.ToneAlert, Weight: 0.9, Label: "contempt"},
			{Phrase: "pathetic", Tone: domain.ToneAlert, Weight: 0.85, Label: "contempt"},
			{Phrase: "disgusting", Tone: domain.ToneAlert, Weight: 0.8, Label: "contempt"},
			{Phrase: "can't stand you", Tone: domain.ToneAlert, Weight: 0.9, Label: "hostility"},

			// caution: blame, absolutes, pressure
			{Phrase: "you always", Tone: domain.ToneCaution, Weight: 0.6, Label: "absolutes"},
			{Phrase: "you never", Tone: domain.ToneCaution, Weight: 0.6, Label: "absolutes"},
			{Phrase: "your fault", Tone: domain.ToneCaution, Weight: 0.65, Label: "blame"},
			{Phrase: "whatever", Tone: domain.ToneCaution, Weight: 0.5, Label: "dismissal"},
			{Phrase: "fine", Tone: domain.ToneCaution, Weight: 0.3, Label: "deflection"},
			{Phrase: "you don't care", Tone: domain.ToneCaution, Weight: 0.6, Label: "accusation"},
			{Phrase: "you made me", Tone: domain.ToneCaution, Weight: 0.55, Label: "blame"},
			{Phrase: "calm down", Tone: domain.ToneCaution, Weight: 0.5, Label: "invalidating"},
			{Phrase: "why do you always", Tone: domain.ToneCaution, Weight: 0.65, Label: "absolutes"},
			{Phrase: "you should", Tone: domain.ToneCaution, Weight: 0.35, Label: "pressure"},
			{Phrase: "if you loved me", Tone: domain.ToneCaution, Weight: 0.7, Label: "pressure"},

			// clear: ownership, appreciation, repair
			{Phrase: "i feel", Tone: domain.ToneClear, Weight: 0.5, Label: "ownership"},
			{Phrase: "i appreciate", Tone: domain.ToneClear, Weight: 0.7, Label: "appreciation"},
			{Phrase: "thank you", Tone: domain.ToneClear, Weight: 0.6, Label: "appreciation"},
			{Phrase: "i'm sorry", Tone: domain.ToneClear, Weight: 0.7, Label: "repair"},
			{Phrase: "i hear you", Tone: domain.ToneClear, Weight: 0.65, Label: "validation"},
			{Phrase: "let's talk", Tone: domain.ToneClear, Weight: 0.55, Label: "repair"},
			{Phrase: "i understand", Tone: domain.ToneClear, Weight: 0.55, Label: "validation"},
			{Phrase: "i love you", Tone: domain.ToneClear, Weight: 0.6, Label: "affection"},
			{Phrase: "that makes sense", Tone: domain.ToneClear, Weight: 0.5, Label: "validation"},
		},
		Profanity: []ProfanityConfig{
			{Phrase: "damn", Severity: 0.2},
			{Phrase: "hell", Severity: 0.2},
			{Phrase: "crap", Severity: 0.25},
			{Phrase: "screw you", Severity: 0.6},
			{Phrase: "piss off", Severity: 0.55},
			{Phrase: "shit", Severity: 0.45},
			{Phrase: "asshole", Severity: 0.7},
			{Phrase: "fuck", Severity: 0.7},
			{Phrase: "fucking", Severity: 0.6},
			{Phrase: "bitch", Severity: 0.75},
			{Phrase: "bastard", Severity: 0.6},
			{Phrase: "idiot", Severity: 0.5},
			{Phrase: "stupid", Severity: 0.4},
		},
		Softeners: []string{
			"maybe", "perhaps", "kind of", "sort of", "a little", "i guess",
			"honestly", "just", "please", "gently", "no offense",
		},
	}
}

// DefaultBankConfig returns the built-in regex bank configuration.
func DefaultBankConfig() BankConfig {
	return BankConfig{
		MaxToneHits: 6,
		TonePatterns: []TonePatternConfig{
			{Pattern: `\b(never|don'?t ever) (want|wanna) (to )?(see|talk to|hear from) you\b`, Tone: domain.ToneAlert, Confidence: 0.95, Label: "cutoff"},
			{Pattern: `\byou'?re (such|so|the) (a |an )?\w+\b.*\b(loser|failure|joke|problem)\b`, Tone: domain.ToneAlert, Confidence: 0.85, Label: "character_attack"},
			{Pattern: `\b(i'?m|we'?re|it'?s) (so )?(over|finished|through)\b`, Tone: domain.ToneAlert, Confidence: 0.8, Label: "finality"},
			{Pattern: `\bget (out|lost|away from me)\b`, Tone: domain.ToneAlert, Confidence: 0.8, Label: "ejection"},
			{Pattern: `\byou (always|never|constantly) \w+`, Tone: domain.ToneCaution, Confidence: 0.6, Label: "absolutes"},
			{Pattern: `\bwhy (can'?t|won'?t|don'?t) you (ever|just)\b`, Tone: domain.ToneCaution, Confidence: 0.6, Label: "exasperation"},
			{Pattern: `\bif you (really|actually|truly) (cared|loved|listened)\b`, Tone: domain.ToneCaution, Confidence: 0.7, Label: "conditional_love"},
			{Pattern: `\b(not|no) (a )?big deal but\b`, Tone: domain.ToneCaution, Confidence: 0.4, Label: "minimizing"},
			{Pattern: `\bi (hear|see|get) (you|that|it)\b`, Tone: domain.ToneClear, Confidence: 0.6, Label: "validation"},
			{Pattern: `\b(can|could) we (talk|find time|figure this out)\b`, Tone: domain.ToneClear, Confidence: 0.6, Label: "invitation"},
			{Pattern: `\bi feel \w+ when\b`, Tone: domain.ToneClear, Confidence: 0.7, Label: "i_statement"},
			{Pattern: `\bthank you for\b`, Tone: domain.ToneClear, Confidence: 0.6, Label: "appreciation"},
		},
		PhraseEdges: []PhraseEdgeConfig{
			{Pattern: `!{2,}`, Boost: 0.15, Category: "punctuation"},
			{Pattern: `\?{2,}`, Boost: 0.1, Category: "punctuation"},
			{Pattern: `\b(so|really|extremely|absolutely|totally|completely) \w+`, Boost: 0.1, Category: "intensifier"},
			{Pattern: `\b(always|never|every single time|not once)\b`, Boost: 0.12, Category: "absolutes", ToneBias: map[domain.Tone]float64{domain.ToneCaution: 0.05}},
			{Pattern: `\b(right now|immediately|this instant)\b`, Boost: 0.1, Category: "urgency"},
			{Pattern: `\b(hate|despise|furious|enraged|livid)\b`, Boost: 0.15, Category: "hostility", ToneBias: map[domain.Tone]float64{domain.ToneAlert: 0.05}},
		},
		Negations: []IndicatorConfig{
			{Pattern: `\b(don'?t|do not|never|no way) (hate|blame|mean|want to hurt)\b`, Impact: 0.3},
			{Pattern: `\bnot (angry|mad|upset|trying to)\b`, Impact: 0.25},
			{Pattern: `\bi didn'?t mean\b`, Impact: 0.3},
			{Pattern: `\bnot (that|like that|what i meant)\b`, Impact: 0.2},
		},
		Sarcasm: []IndicatorConfig{
			{Pattern: `\boh (great|wonderful|perfect|fantastic)\b`, Impact: 0.3},
			{Pattern: `\b(sure|right|fine),? whatever\b`, Impact: 0.35},
			{Pattern: `\byeah,? right\b`, Impact: 0.3},
			{Pattern: `\bthanks a lot\b`, Impact: 0.2},
			{Pattern: `\bgood (for|job) you\b`, Impact: 0.2},
		},
		ContextCues: []ContextCueConfig{
			{
				Pattern: `\b(fight|fighting|argument|arguing|yelling|screaming|mad at|angry (at|with))\b`,
				Context: domain.ContextConflict,
				Boosts:  map[domain.ContextID]float64{domain.ContextConflict: 0.35, domain.ContextEscalation: 0.2},
			},
			{
				Pattern: `\b(sorry|apologize|apology|make (it|this) (up|right)|didn'?t mean|forgive)\b`,
				Context: domain.ContextRepair,
				Boosts:  map[domain.ContextID]float64{domain.ContextRepair: 0.35},
			},
			{
				Pattern: `\b(need (some )?space|boundar(y|ies)|not (okay|ok) with|too far|my limit)\b`,
				Context: domain.ContextBoundary,
				Boosts:  map[domain.ContextID]float64{domain.ContextBoundary: 0.35, domain.ContextWithdrawal: 0.15},
			},
			{
				Pattern: `\b(plan|plans|schedule|weekend|tonight|tomorrow|dinner|trip|when (are|should) we)\b`,
				Context: domain.ContextPlanning,
				Boosts:  map[domain.ContextID]float64{domain.ContextPlanning: 0.3},
			},
			{
				Pattern: `\b(jealous|jealousy|flirting|who (was|is) (that|she|he))\b`,
				Context: domain.ContextJealousy,
				Boosts:  map[domain.ContextID]float64{domain.ContextJealousy: 0.3, domain.ContextConflict: 0.15},
			},
			{
				Pattern: `\b(blame|blaming|your fault|because of you)\b`,
				Context: domain.ContextBlame,
				Boosts:  map[domain.ContextID]float64{domain.ContextBlame: 0.3, domain.ContextConflict: 0.2},
			},
		},
	}
}

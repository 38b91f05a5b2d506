package verify

import (
	"regexp"
	"strings"

	"github.com/alexanderramin/attune/internal/textutil"
)

// contextFloor is the minimum active score a context needs before it counts
// as rule-(b) evidence.
const contextFloor = 0.25

// intentRule maps a text pattern to a communication intent. positive marks
// intents whose matches are down-weighted under heavy negation ("I'm not
// sorry" is not a repair signal).
type intentRule struct {
	intent   string
	re       *regexp.Regexp
	positive bool
}

var intentRules = []intentRule{
	{"repair", regexp.MustCompile(`\b(i'?m sorry|apolog\w*|make (it|this) right|my fault|i was wrong)\b`), true},
	{"reassure", regexp.MustCompile(`\b(are we (ok|okay)|still love|i'?m here|not going anywhere)\b`), true},
	{"appreciate", regexp.MustCompile(`\b(thank you|i appreciate|grateful|means a lot)\b`), true},
	{"de-escalate", regexp.MustCompile(`\b(calm( down)?|take a (break|breath|pause)|step back|cool off|time[- ]?out)\b`), false},
	{"set-boundary", regexp.MustCompile(`\b(i need|boundar|not (ok|okay) with|please stop|don'?t talk to me like)\b`), false},
	{"plan", regexp.MustCompile(`\b(let'?s (plan|schedule)|what time|when (can|should) we|this weekend|tomorrow)\b`), false},
	{"vent", regexp.MustCompile(`\b(so (angry|frustrated|tired of)|fed up|sick of|can'?t believe)\b`), false},
}

var negationWords = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "won't": true,
	"can't": true, "isn't": true, "wasn't": true, "didn't": true, "doesn't": true,
}

// detectIntents returns the intents whose patterns match the text, in rule
// order.
func detectIntents(text string) []string {
	norm := textutil.Normalize(text)
	if norm == "" {
		return nil
	}
	var out []string
	for _, rule := range intentRules {
		if rule.re.MatchString(norm) {
			out = append(out, rule.intent)
		}
	}
	return out
}

// heavyNegation reports whether the text carries enough negation to distrust
// positive-intent matches.
func heavyNegation(tokens []string) bool {
	count := 0
	for _, tok := range tokens {
		if negationWords[tok] {
			count++
		}
	}
	return count >= 2
}

// rulesAccept is the deterministic backstop: intent overlap, context match
// above the confidence floor, sentiment alignment, then last-resort keyword
// overlap.
func rulesAccept(premise string, req Request) bool {
	tokens := textutil.Tokenize(premise)

	// (a) intent overlap, down-weighting positive intents under negation.
	if len(req.Item.Intents) > 0 {
		declared := make(map[string]bool, len(req.Item.Intents))
		for _, intent := range req.Item.Intents {
			declared[strings.ToLower(intent)] = true
		}
		negated := heavyNegation(tokens)
		var overlap float64
		for _, rule := range intentRules {
			if !declared[rule.intent] || !rule.re.MatchString(textutil.Normalize(premise)) {
				continue
			}
			if rule.positive && negated {
				overlap += 0.5
				continue
			}
			overlap++
		}
		if overlap >= 1 {
			return true
		}
	}

	// (b) declared or linked context active above the floor.
	for _, ctx := range req.Item.Contexts {
		if req.ContextScores[ctx] >= contextFloor || ctx == req.Context {
			return true
		}
	}
	for _, ctx := range req.Item.ContextLinks {
		if req.ContextScores[ctx] >= contextFloor {
			return true
		}
	}

	// (c) sentiment alignment: the item explicitly declares the detected
	// tone bucket. An empty tone list is not evidence.
	if req.Tone != "" && len(req.Item.TriggerTones) > 0 && req.Item.MatchesTone(req.Tone) {
		return true
	}

	// (d) last resort: shared content words.
	return sharedContentWords(premise, req.Item.Text) >= 2
}

// sharedContentWords counts distinct words of at least 4 characters that
// appear in both texts.
func sharedContentWords(a, b string) int {
	aWords := map[string]bool{}
	for _, w := range textutil.ContentWords(a, 4) {
		aWords[w] = true
	}
	seen := map[string]bool{}
	count := 0
	for _, w := range textutil.ContentWords(b, 4) {
		if aWords[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}

package profile

import (
	"regexp"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/textutil"
)

// styleSignal is one lexical cue for an attachment style.
type styleSignal struct {
	id     string
	re     *regexp.Regexp
	style  domain.AttachmentStyle
	weight float64
}

var styleSignals = []styleSignal{
	// anxious: reassurance seeking, abandonment fear, protest behavior
	{"anx_reassurance", regexp.MustCompile(`\b(are we (ok|okay)|do you still (love|like) me|promise me|you'?d tell me)\b`), domain.StyleAnxious, 0.8},
	{"anx_abandonment", regexp.MustCompile(`\b(don'?t leave|please don'?t go|can'?t lose you|leaving me)\b`), domain.StyleAnxious, 0.9},
	{"anx_monitoring", regexp.MustCompile(`\b(why (haven'?t|didn'?t) you (text|texted|call|called|answer)|you took (so long|hours) to (reply|respond)|seen my message)\b`), domain.StyleAnxious, 0.7},
	{"anx_protest", regexp.MustCompile(`\b(if you (really|actually) loved me|i guess i don'?t matter|you'?d rather be)\b`), domain.StyleAnxious, 0.75},

	// avoidant: distancing, deactivation, self-reliance
	{"avo_space", regexp.MustCompile(`\b(i need (some )?space|need to be alone|back off|stop (crowding|smothering) me)\b`), domain.StyleAvoidant, 0.85},
	{"avo_deflect", regexp.MustCompile(`\b(it'?s fine|i'?m fine|doesn'?t matter|forget (it|about it)|drop it)\b`), domain.StyleAvoidant, 0.5},
	{"avo_selfreliance", regexp.MustCompile(`\b(i (can|will) handle (it|this) myself|don'?t need (your |any )?help|i'?ll deal with it)\b`), domain.StyleAvoidant, 0.6},
	{"avo_exit", regexp.MustCompile(`\b(i'?m (leaving|done talking|out)|this conversation is over)\b`), domain.StyleAvoidant, 0.7},

	// disorganized: approach-avoid swings, hot-cold within one message
	{"dis_pushpull", regexp.MustCompile(`\b(come here.*go away|i (hate|can'?t stand) you.*((don'?t leave)|(i love you))|leave me alone.*don'?t go)\b`), domain.StyleDisorganized, 0.9},
	{"dis_chaos", regexp.MustCompile(`\b(i don'?t know what i want|everything is (falling apart|too much)|can'?t (think|breathe) right now)\b`), domain.StyleDisorganized, 0.65},

	// secure: owned feelings, curiosity, repair initiation
	{"sec_istatement", regexp.MustCompile(`\bi (feel|felt) \w+ when\b`), domain.StyleSecure, 0.8},
	{"sec_repair", regexp.MustCompile(`\b(i'?m sorry|let'?s (talk|work (this|it) out)|i want to understand|help me understand)\b`), domain.StyleSecure, 0.7},
	{"sec_appreciation", regexp.MustCompile(`\b(thank you for|i appreciate|that means a lot)\b`), domain.StyleSecure, 0.6},
}

// Signal is one detected style cue with its evidence strength.
type Signal struct {
	ID       string
	Style    domain.AttachmentStyle
	Strength float64
}

// DetectSignals extracts attachment-style evidence from a message. The
// detected tone scales the evidence: alert-toned messages carry stronger
// insecure-style signal, clear-toned messages stronger secure signal.
func DetectSignals(text string, tone domain.Tone) []Signal {
	norm := textutil.Normalize(text)
	if norm == "" {
		return nil
	}

	var out []Signal
	for _, sig := range styleSignals {
		if !sig.re.MatchString(norm) {
			continue
		}
		strength := sig.weight * toneMultiplier(sig.style, tone)
		out = append(out, Signal{ID: sig.id, Style: sig.style, Strength: strength})
	}
	return out
}

// Evidence folds detected signals into the per-style evidence map consumed
// by Observe. Returns nil when nothing matched.
func Evidence(signals []Signal) map[domain.AttachmentStyle]float64 {
	if len(signals) == 0 {
		return nil
	}
	out := map[domain.AttachmentStyle]float64{}
	for _, sig := range signals {
		out[sig.Style] += sig.Strength
	}
	return out
}

func toneMultiplier(style domain.AttachmentStyle, tone domain.Tone) float64 {
	switch tone {
	case domain.ToneAlert:
		if style == domain.StyleSecure {
			return 0.5
		}
		return 1.2
	case domain.ToneClear:
		if style == domain.StyleSecure {
			return 1.2
		}
		return 0.7
	default:
		return 1.0
	}
}

package domain

// Tone is the coarse classification bucket surfaced to the end user.
type Tone string

const (
	ToneAlert   Tone = "alert"
	ToneCaution Tone = "caution"
	ToneClear   Tone = "clear"
)

// Tones lists all buckets in tie-break priority order: when two buckets
// score identically, caution wins over clear, which wins over alert.
var Tones = []Tone{ToneCaution, ToneClear, ToneAlert}

// ValidTones is the canonical set of accepted tone strings.
var ValidTones = map[string]bool{
	"alert": true, "caution": true, "clear": true,
}

// Band is the severity level within a winning tone bucket.
type Band string

const (
	BandLow  Band = "low"
	BandMed  Band = "med"
	BandHigh Band = "high"
)

// ContextID identifies a detected conversational context.
type ContextID string

const (
	ContextConflict ContextID = "conflict"
	ContextRepair   ContextID = "repair"
	ContextBoundary ContextID = "boundary"
	ContextPlanning ContextID = "planning"
	ContextGeneral  ContextID = "general"

	// Extended contexts used by advice tagging and the conflict-ish
	// cross-admission family.
	ContextEscalation ContextID = "escalation"
	ContextRupture    ContextID = "rupture"
	ContextBlame      ContextID = "blame"
	ContextDefense    ContextID = "defense"
	ContextWithdrawal ContextID = "withdrawal"
	ContextJealousy   ContextID = "jealousy"
	ContextSafety     ContextID = "safety"
	ContextPresence   ContextID = "presence"
)

// ConflictFamily is the set of contexts that cross-admit conflict-flavored
// advice when the top active context belongs to the family.
var ConflictFamily = map[ContextID]bool{
	ContextConflict:   true,
	ContextEscalation: true,
	ContextRupture:    true,
	ContextBlame:      true,
	ContextDefense:    true,
	ContextBoundary:   true,
	ContextWithdrawal: true,
	ContextJealousy:   true,
	ContextSafety:     true,
	ContextPresence:   true,
}

// TriggerHit is a single lexical or regex match contributing to a tone bucket.
type TriggerHit struct {
	Tone   Tone
	Weight float64 // 0..1
	Label  string
}

// Distribution is the 3-way tone probability distribution. Values sum to 1
// after blending.
type Distribution struct {
	Alert   float64
	Caution float64
	Clear   float64
}

// Get returns the score for the given tone.
func (d Distribution) Get(t Tone) float64 {
	switch t {
	case ToneAlert:
		return d.Alert
	case ToneCaution:
		return d.Caution
	case ToneClear:
		return d.Clear
	}
	return 0
}

// Set overwrites the score for the given tone.
func (d *Distribution) Set(t Tone, v float64) {
	switch t {
	case ToneAlert:
		d.Alert = v
	case ToneCaution:
		d.Caution = v
	case ToneClear:
		d.Clear = v
	}
}

// Sum returns the total mass across all three buckets.
func (d Distribution) Sum() float64 {
	return d.Alert + d.Caution + d.Clear
}

// ToneClassification is the blended result for a single message.
type ToneClassification struct {
	Primary      Tone
	Secondary    Tone // empty unless within the secondary margin of Primary
	Confidence   float64
	Distribution Distribution
	Band         Band
}

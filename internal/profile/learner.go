// Package profile maintains the per-user attachment learning state: daily
// evidence accumulation with admission control, day-key rollover with decay,
// and local-prior seeding. The caller guarantees single-writer semantics per
// user; nothing here is thread-safe across concurrent mutations of the same
// profile.
package profile

import (
	"time"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/google/uuid"
)

// Config bounds the learning window.
type Config struct {
	// DailyLimit caps accepted evidence events per calendar day.
	DailyLimit int

	// LearningDays is the observation window length in days.
	LearningDays int

	// DailyDecay multiplies cumulative scores on each day rollover so stale
	// evidence fades as the window advances.
	DailyDecay float64

	// PriorFloor is the minimum effective weight a seeded prior retains.
	PriorFloor float64
}

// DefaultConfig returns the default learning configuration.
func DefaultConfig() Config {
	return Config{
		DailyLimit:   5,
		LearningDays: 7,
		DailyDecay:   0.95,
		PriorFloor:   0.2,
	}
}

func (c Config) sanitized() Config {
	if c.DailyLimit <= 0 {
		c.DailyLimit = 5
	}
	if c.LearningDays <= 0 {
		c.LearningDays = 7
	}
	if c.DailyDecay <= 0 || c.DailyDecay > 1 {
		c.DailyDecay = 0.95
	}
	if c.PriorFloor <= 0 || c.PriorFloor > 1 {
		c.PriorFloor = 0.2
	}
	return c
}

// RollDay advances the profile to dayKey if it differs from the stored one:
// the daily counter resets, daysObserved advances, and cumulative scores
// decay once per elapsed rollover.
func RollDay(p *domain.CommunicatorProfile, dayKey string, cfg Config) {
	cfg = cfg.sanitized()
	if p.DayKey == dayKey {
		return
	}
	p.DayKey = dayKey
	p.IncrementsToday = 0
	p.DaysObserved++
	p.Scores = p.Scores.Sanitize().Scale(cfg.DailyDecay)
}

// Observe applies one evidence event. evidence maps each style to
// weight × signalStrength. Returns the history events recorded, or nil when
// the daily limit already admitted its quota. Dropping is a soft
// admission-control policy, not an error.
func Observe(p *domain.CommunicatorProfile, evidence map[domain.AttachmentStyle]float64, signalID, dayKey string, at time.Time, cfg Config) []domain.ProfileEvent {
	cfg = cfg.sanitized()
	RollDay(p, dayKey, cfg)

	if p.IncrementsToday >= cfg.DailyLimit {
		return nil
	}

	var events []domain.ProfileEvent
	for _, style := range domain.AttachmentStyles {
		delta := domain.SafeNonNeg(evidence[style])
		if delta == 0 {
			continue
		}
		p.Scores.Add(style, delta)
		events = append(events, domain.ProfileEvent{
			ID:       uuid.NewString(),
			UserID:   p.UserID,
			Type:     domain.EventEvidence,
			Style:    style,
			Weight:   delta,
			SignalID: signalID,
			DayKey:   dayKey,
			At:       at,
		})
	}
	if len(events) == 0 {
		return nil
	}

	p.IncrementsToday++
	p.UpdatedAt = at
	return events
}

// SeedPrior stores a device-assessment prior once. Raw scores are normalized
// at seed time; the stored weight starts at 1.0 and its effective share is
// recomputed at read time. Seeding when a prior already exists is a no-op.
func SeedPrior(p *domain.CommunicatorProfile, raw domain.AttachmentScores, at time.Time) *domain.ProfileEvent {
	if p.LocalPrior != nil {
		return nil
	}
	p.LocalPrior = &domain.LocalPrior{
		Scores:   raw.Normalize(),
		Weight:   1.0,
		SeededAt: at,
	}
	p.UpdatedAt = at
	return &domain.ProfileEvent{
		ID:     uuid.NewString(),
		UserID: p.UserID,
		Type:   domain.EventPriorSeeded,
		Weight: 1.0,
		DayKey: p.DayKey,
		At:     at,
	}
}

// EffectivePriorWeight decays the prior's influence linearly over the
// learning window, never below the configured floor.
func EffectivePriorWeight(daysObserved int, cfg Config) float64 {
	cfg = cfg.sanitized()
	w := 1 - float64(daysObserved)/float64(cfg.LearningDays)
	if w < cfg.PriorFloor {
		return cfg.PriorFloor
	}
	return w
}

// Reset reinitializes all learned state for the profile, keeping identity
// fields. Explicit reset is the only way a profile loses its history.
func Reset(p *domain.CommunicatorProfile, dayKey string, at time.Time) domain.ProfileEvent {
	p.Scores = domain.AttachmentScores{}
	p.DaysObserved = 0
	p.IncrementsToday = 0
	p.DayKey = dayKey
	p.FirstSeenDay = dayKey
	p.LocalPrior = nil
	p.UpdatedAt = at
	return domain.ProfileEvent{
		ID:     uuid.NewString(),
		UserID: p.UserID,
		Type:   domain.EventReset,
		DayKey: dayKey,
		At:     at,
	}
}

// DayKeyFor formats the calendar day for now in loc. A nil location is
// treated as UTC.
func DayKeyFor(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(domain.DayKeyLayout)
}

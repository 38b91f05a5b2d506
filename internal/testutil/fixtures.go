package testutil

import (
	"time"

	"github.com/alexanderramin/attune/internal/domain"
	"github.com/google/uuid"
)

// FixedNow is the reference instant used by fixtures; tests that care about
// time pass their own clock instead.
var FixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// ProfileOption mutates a fixture profile.
type ProfileOption func(*domain.CommunicatorProfile)

func WithScores(s domain.AttachmentScores) ProfileOption {
	return func(p *domain.CommunicatorProfile) {
		p.Scores = s
	}
}

func WithDaysObserved(days int) ProfileOption {
	return func(p *domain.CommunicatorProfile) {
		p.DaysObserved = days
	}
}

func WithPrior(scores domain.AttachmentScores) ProfileOption {
	return func(p *domain.CommunicatorProfile) {
		p.LocalPrior = &domain.LocalPrior{
			Scores:   scores.Normalize(),
			Weight:   1.0,
			SeededAt: FixedNow,
		}
	}
}

// NewProfile builds a fixture profile observed first on FixedNow's day.
func NewProfile(userID string, opts ...ProfileOption) *domain.CommunicatorProfile {
	if userID == "" {
		userID = uuid.NewString()
	}
	p := domain.NewCommunicatorProfile(userID, FixedNow.Format(domain.DayKeyLayout), FixedNow)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AdviceOption mutates a fixture advice item.
type AdviceOption func(*domain.AdviceItem)

func WithTones(tones ...domain.Tone) AdviceOption {
	return func(a *domain.AdviceItem) {
		a.TriggerTones = tones
	}
}

func WithContexts(ctxs ...domain.ContextID) AdviceOption {
	return func(a *domain.AdviceItem) {
		a.Contexts = ctxs
	}
}

func WithIntents(intents ...string) AdviceOption {
	return func(a *domain.AdviceItem) {
		a.Intents = intents
	}
}

// NewAdvice builds a fixture advice item.
func NewAdvice(id, text string, opts ...AdviceOption) domain.AdviceItem {
	a := domain.AdviceItem{ID: id, Text: text}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

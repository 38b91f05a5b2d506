package domain

import "time"

// DayKeyLayout formats calendar dates used for daily counters.
const DayKeyLayout = "2006-01-02"

// LocalPrior is a device-seeded initial attachment estimate. Its influence
// decays over the learning window; Weight stores the seeded value and the
// effective share is recomputed at read time.
type LocalPrior struct {
	Scores        AttachmentScores // normalized at seed time
	Weight        float64          // 0..1, 1.0 when seeded
	SeededAt      time.Time
	LastUpdatedAt *time.Time
}

// CommunicatorProfile is the per-user attachment learning state. The caller
// guarantees single-writer semantics per user; the struct itself carries no
// locking.
type CommunicatorProfile struct {
	UserID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FirstSeenDay    string // day key of first observation
	DaysObserved    int
	Scores          AttachmentScores // unnormalized cumulative evidence
	DayKey          string           // calendar day the counter below refers to
	IncrementsToday int
	LocalPrior      *LocalPrior
}

// NewCommunicatorProfile creates a fresh profile for the first observation.
func NewCommunicatorProfile(userID, dayKey string, now time.Time) *CommunicatorProfile {
	return &CommunicatorProfile{
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		FirstSeenDay: dayKey,
		DayKey:       dayKey,
	}
}

// ProfileEventType categorizes history log entries.
type ProfileEventType string

const (
	EventEvidence    ProfileEventType = "evidence"
	EventPriorSeeded ProfileEventType = "prior_seeded"
	EventReset       ProfileEventType = "reset"
)

// ProfileEvent is one append-only history entry for a profile.
type ProfileEvent struct {
	ID       string
	UserID   string
	Type     ProfileEventType
	Style    AttachmentStyle
	Weight   float64
	SignalID string
	DayKey   string
	At       time.Time
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/attune/internal/db"
	"github.com/alexanderramin/attune/internal/domain"
)

// SQLiteProfileRepo implements ProfileRepo using a SQLite database.
type SQLiteProfileRepo struct {
	db db.DBTX
}

// NewSQLiteProfileRepo creates a new SQLiteProfileRepo.
func NewSQLiteProfileRepo(conn db.DBTX) *SQLiteProfileRepo {
	return &SQLiteProfileRepo{db: conn}
}

func (r *SQLiteProfileRepo) Get(ctx context.Context, userID string) (*domain.CommunicatorProfile, error) {
	query := `SELECT user_id, created_at, updated_at, first_seen_day, day_key,
		days_observed, increments_today,
		anxious, avoidant, disorganized, secure,
		prior_anxious, prior_avoidant, prior_disorganized, prior_secure,
		prior_weight, prior_seeded_at
		FROM communicator_profiles WHERE user_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID)

	var p domain.CommunicatorProfile
	var createdAt, updatedAt string
	var priorAnx, priorAvo, priorDis, priorSec, priorWeight sql.NullFloat64
	var priorSeededAt sql.NullString

	err := row.Scan(
		&p.UserID,
		&createdAt,
		&updatedAt,
		&p.FirstSeenDay,
		&p.DayKey,
		&p.DaysObserved,
		&p.IncrementsToday,
		&p.Scores.Anxious,
		&p.Scores.Avoidant,
		&p.Scores.Disorganized,
		&p.Scores.Secure,
		&priorAnx,
		&priorAvo,
		&priorDis,
		&priorSec,
		&priorWeight,
		&priorSeededAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	if priorWeight.Valid {
		p.LocalPrior = &domain.LocalPrior{
			Scores: domain.AttachmentScores{
				Anxious:      priorAnx.Float64,
				Avoidant:     priorAvo.Float64,
				Disorganized: priorDis.Float64,
				Secure:       priorSec.Float64,
			},
			Weight: priorWeight.Float64,
		}
		if priorSeededAt.Valid {
			p.LocalPrior.SeededAt = parseTime(priorSeededAt.String)
		}
	}
	return &p, nil
}

func (r *SQLiteProfileRepo) Upsert(ctx context.Context, p *domain.CommunicatorProfile) error {
	var priorAnx, priorAvo, priorDis, priorSec, priorWeight any
	var priorSeededAt any
	if p.LocalPrior != nil {
		priorAnx = p.LocalPrior.Scores.Anxious
		priorAvo = p.LocalPrior.Scores.Avoidant
		priorDis = p.LocalPrior.Scores.Disorganized
		priorSec = p.LocalPrior.Scores.Secure
		priorWeight = p.LocalPrior.Weight
		priorSeededAt = formatTime(p.LocalPrior.SeededAt)
	}

	query := `INSERT OR REPLACE INTO communicator_profiles
		(user_id, created_at, updated_at, first_seen_day, day_key,
		 days_observed, increments_today,
		 anxious, avoidant, disorganized, secure,
		 prior_anxious, prior_avoidant, prior_disorganized, prior_secure,
		 prior_weight, prior_seeded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.UserID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		p.FirstSeenDay,
		p.DayKey,
		p.DaysObserved,
		p.IncrementsToday,
		p.Scores.Anxious,
		p.Scores.Avoidant,
		p.Scores.Disorganized,
		p.Scores.Secure,
		priorAnx,
		priorAvo,
		priorDis,
		priorSec,
		priorWeight,
		priorSeededAt,
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

func (r *SQLiteProfileRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM communicator_profiles WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteProfileRepo) AppendEvents(ctx context.Context, events []domain.ProfileEvent) error {
	for _, e := range events {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO profile_events (id, user_id, type, style, weight, signal_id, day_key, at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.UserID, string(e.Type), string(e.Style), e.Weight, e.SignalID, e.DayKey,
			formatTime(e.At),
		)
		if err != nil {
			return fmt.Errorf("appending profile event %s: %w", e.ID, err)
		}
	}
	return nil
}

func (r *SQLiteProfileRepo) ListEvents(ctx context.Context, userID string, limit int) ([]domain.ProfileEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, style, weight, signal_id, day_key, at
		 FROM profile_events WHERE user_id = ?
		 ORDER BY at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing profile events: %w", err)
	}
	defer rows.Close()

	var events []domain.ProfileEvent
	for rows.Next() {
		var e domain.ProfileEvent
		var eventType, style, at string
		if err := rows.Scan(&e.ID, &e.UserID, &eventType, &style, &e.Weight, &e.SignalID, &e.DayKey, &at); err != nil {
			return nil, fmt.Errorf("scanning profile event: %w", err)
		}
		e.Type = domain.ProfileEventType(eventType)
		e.Style = domain.AttachmentStyle(style)
		e.At = parseTime(at)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile events: %w", err)
	}
	return events, nil
}

func (r *SQLiteProfileRepo) PruneEvents(ctx context.Context, userID string, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM profile_events WHERE user_id = ? AND id NOT IN (
			SELECT id FROM profile_events WHERE user_id = ?
			ORDER BY at DESC, id DESC LIMIT ?
		)`, userID, userID, keep)
	if err != nil {
		return fmt.Errorf("pruning profile events: %w", err)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

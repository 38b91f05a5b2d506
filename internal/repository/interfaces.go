package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/attune/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProfileRepo persists communicator profiles and their append-only history.
type ProfileRepo interface {
	Get(ctx context.Context, userID string) (*domain.CommunicatorProfile, error)
	Upsert(ctx context.Context, p *domain.CommunicatorProfile) error
	Delete(ctx context.Context, userID string) error

	AppendEvents(ctx context.Context, events []domain.ProfileEvent) error

	// ListEvents returns the most recent events for a user, newest first.
	ListEvents(ctx context.Context, userID string, limit int) ([]domain.ProfileEvent, error)

	// PruneEvents drops all but the most recent keep events for a user.
	PruneEvents(ctx context.Context, userID string, keep int) error
}

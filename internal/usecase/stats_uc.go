package usecase

import (
	"context"
	"time"

	"telegram-bingo-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// ActiveWindow is how far back a player's last interaction may be for
// the stats report to count them as active.
const ActiveWindow = 7 * 24 * time.Hour

// Stats is a point-in-time snapshot of the player directory.
type Stats struct {
	TotalUsers  int
	ActiveUsers int
	TakenAt     time.Time
}

type StatsUseCase interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	users repository.UserDirectory
	now   func() time.Time
	log   *zerolog.Logger
}

func NewStatsUseCase(users repository.UserDirectory, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, now: time.Now, log: logger}
}

func (s *statsUC) Snapshot(ctx context.Context) (*Stats, error) {
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	active, err := s.users.CountActiveSince(ctx, now.Add(-ActiveWindow))
	if err != nil {
		return nil, err
	}
	return &Stats{TotalUsers: total, ActiveUsers: active, TakenAt: now}, nil
}

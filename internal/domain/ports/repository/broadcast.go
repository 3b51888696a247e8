package repository

import (
	"context"

	"telegram-bingo-bot/internal/domain/model"
)

// BroadcastStore holds staged broadcast payloads between creation and
// admin confirmation. Stage assigns a fresh collision-resistant ID and
// returns it; Fetch returns domain.ErrBroadcastNotFound for unknown IDs
// or an unreadable store, never a fatal error.
type BroadcastStore interface {
	Stage(ctx context.Context, b *model.Broadcast) (string, error)
	Fetch(ctx context.Context, id string) (*model.Broadcast, error)
}

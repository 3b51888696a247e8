package repository

import (
	"context"
	"time"

	"telegram-bingo-bot/internal/domain/model"
)

// -----------------------------
// User directory
// -----------------------------

// UserDirectory tracks every user the bot has ever seen. Upsert is called
// on each inbound event and must merge non-destructively; implementations
// refresh the record's last-interaction timestamp on every call.
type UserDirectory interface {
	Upsert(ctx context.Context, partial *model.User) error
	FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	All(ctx context.Context) ([]*model.User, error)
	CountUsers(ctx context.Context) (int, error)
	CountActiveSince(ctx context.Context, since time.Time) (int, error)
}

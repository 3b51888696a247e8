package jsonfile

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/repository"
)

var _ repository.UserDirectory = (*UserRepo)(nil)

// UserRepo is the file-backed user directory: one JSON object keyed by
// Telegram ID. Persistence is deliberately best-effort; a failed write is
// logged and swallowed so a disk hiccup never takes the bot down.
type UserRepo struct {
	mu   sync.Mutex
	path string
	log  *zerolog.Logger
	now  func() time.Time
}

func NewUserRepo(dataDir string, logger *zerolog.Logger) *UserRepo {
	return &UserRepo{
		path: filepath.Join(dataDir, "users.json"),
		log:  logger,
		now:  time.Now,
	}
}

// WithClock overrides the timestamp source; tests use this to make
// last-interaction deterministic.
func (r *UserRepo) WithClock(now func() time.Time) *UserRepo {
	r.now = now
	return r
}

func (r *UserRepo) load() map[string]*model.User {
	users := map[string]*model.User{}
	if err := loadFile(r.path, &users); err != nil {
		// Best-effort read: treat a corrupt or unreadable file as empty.
		r.log.Error().Err(err).Str("path", r.path).Msg("failed to load user directory")
		return map[string]*model.User{}
	}
	return users
}

func key(tgID int64) string { return strconv.FormatInt(tgID, 10) }

func (r *UserRepo) Upsert(ctx context.Context, partial *model.User) error {
	if partial.IsZero() {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.load()
	now := r.now()

	rec, ok := users[key(partial.TelegramID)]
	if !ok {
		rec = model.NewUser(partial.TelegramID, partial.ChatID)
		rec.FirstSeenAt = now
		users[key(partial.TelegramID)] = rec
	}
	rec.Merge(partial)
	rec.Touch(now)

	if err := saveFile(r.path, users); err != nil {
		// Write failures degrade to a no-op; the directory catches up
		// on the next interaction.
		r.log.Error().Err(err).Int64("tg_id", partial.TelegramID).Msg("failed to persist user directory")
	}
	return nil
}

func (r *UserRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.load()[key(tgID)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// All snapshots the directory for enumeration. Order is unspecified.
func (r *UserRepo) All(ctx context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := r.load()
	out := make([]*model.User, 0, len(users))
	for _, u := range users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *UserRepo) CountUsers(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.load()), nil
}

func (r *UserRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.load() {
		if !u.LastInteraction.Before(since) {
			n++
		}
	}
	return n, nil
}

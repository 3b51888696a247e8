package jsonfile

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/repository"
)

var _ repository.BroadcastStore = (*BroadcastRepo)(nil)

// BroadcastRepo stages broadcast payloads in a single JSON object keyed
// by broadcast ID. Payloads are retained indefinitely; restaging an ID
// overwrites. Unlike the user directory, a staging write failure IS
// surfaced: the admin must know their broadcast was not saved.
type BroadcastRepo struct {
	mu   sync.Mutex
	path string
	log  *zerolog.Logger
	now  func() time.Time
}

func NewBroadcastRepo(dataDir string, logger *zerolog.Logger) *BroadcastRepo {
	return &BroadcastRepo{
		path: filepath.Join(dataDir, "broadcasts.json"),
		log:  logger,
		now:  time.Now,
	}
}

func (r *BroadcastRepo) load() (map[string]*model.Broadcast, error) {
	m := map[string]*model.Broadcast{}
	if err := loadFile(r.path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *BroadcastRepo) Stage(ctx context.Context, b *model.Broadcast) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		// The store file being corrupt must not block new broadcasts;
		// start a fresh map and let the atomic write replace it.
		r.log.Error().Err(err).Str("path", r.path).Msg("broadcast store unreadable, resetting")
		m = map[string]*model.Broadcast{}
	}

	cp := *b
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.StagedAt = r.now()
	m[cp.ID] = &cp

	if err := saveFile(r.path, m); err != nil {
		return "", err
	}
	return cp.ID, nil
}

func (r *BroadcastRepo) Fetch(ctx context.Context, id string) (*model.Broadcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		// A missing or unreadable store means the payload is gone; the
		// caller reports "expired or not found" to the admin.
		r.log.Warn().Err(err).Str("broadcast_id", id).Msg("broadcast store unreadable")
		return nil, domain.ErrBroadcastNotFound
	}
	b, ok := m[id]
	if !ok {
		return nil, domain.ErrBroadcastNotFound
	}
	cp := *b
	return &cp, nil
}

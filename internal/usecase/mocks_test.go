//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/adapter"
	"telegram-bingo-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- UserDirectory ---

var _ repository.UserDirectory = (*mockUserDirectory)(nil)

type mockUserDirectory struct {
	mu    sync.Mutex
	users map[int64]*model.User

	UpsertFunc           func(ctx context.Context, partial *model.User) error
	AllFunc              func(ctx context.Context) ([]*model.User, error)
	CountActiveSinceFunc func(ctx context.Context, since time.Time) (int, error)
}

func newMockUserDirectory() *mockUserDirectory {
	return &mockUserDirectory{users: make(map[int64]*model.User)}
}

func (m *mockUserDirectory) Upsert(ctx context.Context, partial *model.User) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, partial)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[partial.TelegramID]
	if !ok {
		cur = model.NewUser(partial.TelegramID, partial.ChatID)
		m.users[partial.TelegramID] = cur
	}
	cur.Merge(partial)
	cur.Touch(time.Now())
	return nil
}

func (m *mockUserDirectory) FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[tgID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserDirectory) All(ctx context.Context) ([]*model.User, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserDirectory) CountUsers(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *mockUserDirectory) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	if m.CountActiveSinceFunc != nil {
		return m.CountActiveSinceFunc(ctx, since)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if !u.LastInteraction.Before(since) {
			n++
		}
	}
	return n, nil
}

// --- BroadcastStore ---

var _ repository.BroadcastStore = (*mockBroadcastStore)(nil)

type mockBroadcastStore struct {
	mu     sync.Mutex
	staged map[string]*model.Broadcast

	StageFunc func(ctx context.Context, b *model.Broadcast) (string, error)
	FetchFunc func(ctx context.Context, id string) (*model.Broadcast, error)
}

func newMockBroadcastStore() *mockBroadcastStore {
	return &mockBroadcastStore{staged: make(map[string]*model.Broadcast)}
}

func (m *mockBroadcastStore) Stage(ctx context.Context, b *model.Broadcast) (string, error) {
	if m.StageFunc != nil {
		return m.StageFunc(ctx, b)
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = "bc-test"
	}
	m.staged[b.ID] = b
	return b.ID, nil
}

func (m *mockBroadcastStore) Fetch(ctx context.Context, id string) (*model.Broadcast, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.staged[id]
	if !ok {
		return nil, domain.ErrBroadcastNotFound
	}
	return b, nil
}

// --- ReferralStage ---

var _ repository.ReferralStage = (*mockReferralStage)(nil)

type mockReferralStage struct {
	mu    sync.Mutex
	codes map[int64]string

	PeekFunc  func(ctx context.Context, tgID int64) (string, error)
	ClearFunc func(ctx context.Context, tgID int64) error
}

func newMockReferralStage() *mockReferralStage {
	return &mockReferralStage{codes: make(map[int64]string)}
}

func (m *mockReferralStage) Stage(ctx context.Context, tgID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[tgID] = code
	return nil
}

func (m *mockReferralStage) Peek(ctx context.Context, tgID int64) (string, error) {
	if m.PeekFunc != nil {
		return m.PeekFunc(ctx, tgID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[tgID]
	if !ok {
		return "", domain.ErrReferralNotFound
	}
	return code, nil
}

func (m *mockReferralStage) Clear(ctx context.Context, tgID int64) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, tgID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, tgID)
	return nil
}

// --- MessageSender ---

var _ adapter.MessageSender = (*mockSender)(nil)

type sentMessage struct {
	ChatID   int64
	Text     string
	ImageRef string
	Buttons  [][]model.Button
}

type mockSender struct {
	mu   sync.Mutex
	sent []sentMessage

	SendTextFunc  func(ctx context.Context, chatID int64, text string, buttons [][]model.Button) error
	SendImageFunc func(ctx context.Context, chatID int64, imageRef, caption string, buttons [][]model.Button) error
}

func (m *mockSender) record(msg sentMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *mockSender) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *mockSender) SendText(ctx context.Context, chatID int64, text string, buttons [][]model.Button) error {
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, chatID, text, buttons)
	}
	m.record(sentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	return nil
}

func (m *mockSender) SendImage(ctx context.Context, chatID int64, imageRef, caption string, buttons [][]model.Button) error {
	if m.SendImageFunc != nil {
		return m.SendImageFunc(ctx, chatID, imageRef, caption, buttons)
	}
	m.record(sentMessage{ChatID: chatID, Text: caption, ImageRef: imageRef, Buttons: buttons})
	return nil
}

func (m *mockSender) EditText(ctx context.Context, chatID int64, messageID int, text string, buttons [][]model.Button) error {
	m.record(sentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	return nil
}

func (m *mockSender) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	return nil
}

func (m *mockSender) SetCommands(ctx context.Context, cmds []adapter.BotCommand) error {
	return nil
}

package telegram

import (
	"context"

	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/adapter"
)

var _ adapter.MessageSender = (*NoopBot)(nil)

// NoopBot swallows all sends. Useful for dry runs and wiring tests.
type NoopBot struct{}

func NewNoopBot() *NoopBot { return &NoopBot{} }

func (n *NoopBot) SendText(ctx context.Context, chatID int64, text string, buttons [][]model.Button) error {
	return nil
}

func (n *NoopBot) SendImage(ctx context.Context, chatID int64, imageRef, caption string, buttons [][]model.Button) error {
	return nil
}

func (n *NoopBot) EditText(ctx context.Context, chatID int64, messageID int, text string, buttons [][]model.Button) error {
	return nil
}

func (n *NoopBot) AnswerCallback(ctx context.Context, callbackID, text string) error { return nil }

func (n *NoopBot) SetCommands(ctx context.Context, cmds []adapter.BotCommand) error { return nil }

package adapter

import (
	"context"

	"telegram-bingo-bot/internal/domain/model"
)

// BotCommand is one entry of the bot's global command menu.
type BotCommand struct {
	Command     string
	Description string
}

// MessageSender is the delivery primitive the broadcast engine and the
// facade talk to. Buttons are rows of the domain's tagged button variant;
// a nil slice means no keyboard.
type MessageSender interface {
	SendText(ctx context.Context, chatID int64, text string, buttons [][]model.Button) error
	SendImage(ctx context.Context, chatID int64, imageRef, caption string, buttons [][]model.Button) error
	EditText(ctx context.Context, chatID int64, messageID int, text string, buttons [][]model.Button) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SetCommands(ctx context.Context, cmds []BotCommand) error
}

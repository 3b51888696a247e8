package telegram

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-bingo-bot/internal/application"
	"telegram-bingo-bot/internal/config"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/adapter"
	"telegram-bingo-bot/internal/infra/metrics"
	red "telegram-bingo-bot/internal/infra/redis"
)

var _ adapter.MessageSender = (*Bot)(nil)

// Bot polls Telegram for updates and delegates everything to the
// facade. It also implements adapter.MessageSender for the broadcast
// engine, so player menus and broadcast deliveries share one client.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewBot(cfg *config.BotConfig, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	return &Bot{
		api:           api,
		cfg:           cfg,
		rateLimiter:   rateLimiter,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// Bind attaches the facade. The bot doubles as the broadcast engine's
// sender, so it is constructed before the facade exists.
func (b *Bot) Bind(facade *application.BotFacade) { b.facade = facade }

// StartPolling registers the command menu and consumes updates until
// ctx ends. Updates fan out over a small worker set so one slow
// handler cannot stall the queue.
func (b *Bot) StartPolling(ctx context.Context) error {
	if b.facade == nil {
		return errors.New("bot facade is not bound")
	}
	if err := b.SetCommands(ctx, commandMenu()); err != nil {
		b.log.Warn().Err(err).Msg("Failed to register command menu")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := b.handleUpdate(ctx, up); err != nil {
						b.log.Error().Err(err).Int("worker", id).Msg("Failed to handle update")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (b *Bot) StopPolling() {
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

func commandMenu() []adapter.BotCommand {
	return []adapter.BotCommand{
		{Command: "start", Description: "🚀 እንኳን ደህና መጡ"},
		{Command: "play", Description: "🎮 ወደ ጌም ይሂዱ"},
		{Command: "rules", Description: "📋 ህግጋት"},
		{Command: "support", Description: "💬 Contact Support"},
		{Command: "about", Description: "ℹ️ ስለ እኛ"},
	}
}

// --- adapter.MessageSender ---

func (b *Bot) SendText(ctx context.Context, chatID int64, text string, buttons [][]model.Button) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup := keyboard(buttons); markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendImage(ctx context.Context, chatID int64, imageRef, caption string, buttons [][]model.Button) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewPhoto(chatID, imageFile(imageRef))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup := keyboard(buttons); markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) EditText(ctx context.Context, chatID int64, messageID int, text string, buttons [][]model.Button) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if markup := keyboard(buttons); markup != nil {
		edit.ReplyMarkup = markup
	}
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := b.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

func (b *Bot) SetCommands(ctx context.Context, cmds []adapter.BotCommand) error {
	out := make([]tgbotapi.BotCommand, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, tgbotapi.BotCommand{Command: c.Command, Description: c.Description})
	}
	_, err := b.api.Request(tgbotapi.NewSetMyCommands(out...))
	return err
}

// imageRef is either a URL (upload endpoint output) or a local path.
func imageFile(ref string) tgbotapi.RequestFileData {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tgbotapi.FileURL(ref)
	}
	return tgbotapi.FilePath(ref)
}

// keyboard converts button rows to a Telegram inline keyboard. Rows
// keep their staged order; a blank label falls back to a bullet.
func keyboard(rows [][]model.Button) *tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Label)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.WebAppURL != "":
				kb = tgbotapi.NewInlineKeyboardButtonWebApp(label, tgbotapi.WebAppInfo{URL: btn.WebAppURL})
			case btn.CallbackToken != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.CallbackToken)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			r = append(r, kb)
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	return &markup
}

// forward sends a facade Reply; messageID is used when the reply wants
// an in-place edit.
func (b *Bot) forward(ctx context.Context, chatID int64, messageID int, reply application.Reply) error {
	if reply.Empty() {
		return nil
	}
	if reply.Edit && messageID != 0 {
		return b.EditText(ctx, chatID, messageID, reply.Text, reply.Buttons)
	}
	if reply.ImageRef != "" {
		return b.SendImage(ctx, chatID, reply.ImageRef, reply.Text, reply.Buttons)
	}
	return b.SendText(ctx, chatID, reply.Text, reply.Buttons)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return b.handleQuery(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	tgID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.WebAppData != nil {
		reply := b.facade.HandleWebAppData(ctx, tgID, chatID, msg.WebAppData.Data)
		return b.forward(ctx, chatID, 0, reply)
	}
	if msg.Contact != nil {
		reply := b.facade.HandleContact(ctx, tgID, chatID, msg.Contact.UserID, msg.Contact.PhoneNumber)
		return b.forward(ctx, chatID, 0, reply)
	}
	if !msg.IsCommand() {
		return nil
	}

	command := msg.Command()
	if !b.allow(ctx, tgID, "/"+command) {
		return b.SendText(ctx, chatID, "Rate limit exceeded. Please try again later.", nil)
	}
	metrics.IncTelegramCommand(command)

	switch command {
	case "start":
		reply := b.facade.HandleStart(ctx, tgID, chatID, msg.From.FirstName, msg.From.UserName, msg.CommandArguments())
		return b.forward(ctx, chatID, 0, reply)
	case "play":
		return b.forward(ctx, chatID, 0, b.facade.HandlePlay(ctx, tgID, chatID))
	case "rules":
		return b.forward(ctx, chatID, 0, b.facade.HandleRules(ctx, tgID, chatID))
	case "support":
		return b.forward(ctx, chatID, 0, b.facade.HandleSupport(ctx, tgID, chatID, msg.From.FirstName))
	case "about":
		return b.forward(ctx, chatID, 0, b.facade.HandleAbout(ctx, tgID, chatID))
	case "admin":
		reply := b.facade.HandleAdminPanel(ctx, tgID, false)
		metrics.IncAdminCommand("admin", adminStatus(reply))
		return b.forward(ctx, chatID, 0, reply)
	case "stats":
		reply := b.facade.HandleStats(ctx, tgID)
		metrics.IncAdminCommand("stats", adminStatus(reply))
		return b.forward(ctx, chatID, 0, reply)
	default:
		return nil
	}
}

func adminStatus(reply application.Reply) string {
	if reply.Empty() || strings.Contains(reply.Text, "Unauthorized") {
		return "denied"
	}
	return "ok"
}

// allow consults the optional Redis rate limiter; with no limiter (or
// a Redis fault) traffic passes.
func (b *Bot) allow(ctx context.Context, tgID int64, command string) bool {
	if b.rateLimiter == nil {
		return true
	}
	allowed, err := b.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), 20, time.Minute)
	if err != nil {
		b.log.Warn().Err(err).Msg("Rate limiter unavailable")
		return true
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
	}
	return allowed
}

type cbHandler func(ctx context.Context, q *tgbotapi.CallbackQuery) error

// Exact-match callbacks
func (b *Bot) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"start": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			return b.sendWelcome(ctx, q.From.ID, q.Message.Chat.ID, q.From.FirstName)
		},
		"main_menu": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			reply := b.facade.HandleMainMenu(ctx, q.From.ID, q.Message.Chat.ID, q.From.FirstName, true)
			return b.forward(ctx, q.Message.Chat.ID, q.Message.MessageID, reply)
		},
		"rules": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			return b.forward(ctx, q.Message.Chat.ID, 0, b.facade.HandleRules(ctx, q.From.ID, q.Message.Chat.ID))
		},
		"quick_rules": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			return b.forward(ctx, q.Message.Chat.ID, 0, b.facade.HandleQuickRules(ctx, q.From.ID, q.Message.Chat.ID))
		},
		"support": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			return b.forward(ctx, q.Message.Chat.ID, 0, b.facade.HandleSupport(ctx, q.From.ID, q.Message.Chat.ID, q.From.FirstName))
		},
		"bonuses": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			return b.forward(ctx, q.Message.Chat.ID, 0, b.facade.HandleBonuses(ctx, q.From.ID, q.Message.Chat.ID))
		},
		"admin_panel": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			reply := b.facade.HandleAdminPanel(ctx, q.From.ID, true)
			return b.forward(ctx, q.Message.Chat.ID, q.Message.MessageID, reply)
		},
		"admin_broadcast": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			return b.forward(ctx, q.Message.Chat.ID, 0, b.facade.HandleAdminBroadcastPrompt(ctx, q.From.ID))
		},
		"admin_stats": func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
			return b.forward(ctx, q.Message.Chat.ID, 0, b.facade.HandleStats(ctx, q.From.ID))
		},
	}
}

// Prefix-match callbacks
func (b *Bot) cbPrefixRoutes() []struct {
	Prefix string
	Fn     cbHandler
} {
	return []struct {
		Prefix string
		Fn     cbHandler
	}{
		{
			Prefix: application.ConfirmCallbackPrefix,
			Fn: func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
				reply := b.facade.HandleBroadcastConfirm(ctx, q.From.ID, q.Message.Chat.ID, q.Data)
				return b.forward(ctx, q.Message.Chat.ID, q.Message.MessageID, reply)
			},
		},
	}
}

func (b *Bot) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil || query.Message == nil {
		return errors.New("invalid callback query")
	}

	// Always stop the Telegram spinner, whatever the handler does.
	defer func() { _ = b.AnswerCallback(ctx, query.ID, "") }()

	data := strings.TrimSpace(query.Data)
	if !b.allow(ctx, query.From.ID, "cb:"+data) {
		return b.SendText(ctx, query.Message.Chat.ID, "Rate limit exceeded. Please try again later.", nil)
	}

	if fn, ok := b.cbRoutes()[data]; ok {
		return fn(ctx, query)
	}
	for _, pr := range b.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) {
			return pr.Fn(ctx, query)
		}
	}
	b.log.Debug().Str("data", data).Msg("Unknown callback data")
	return nil
}

// sendWelcome shows the logo with a caption when the asset exists and
// falls back to a text banner otherwise, then the main menu.
func (b *Bot) sendWelcome(ctx context.Context, tgID, chatID int64, firstName string) error {
	banner := b.facade.WelcomeBanner(firstName)
	if b.cfg.LogoPath != "" {
		if _, err := os.Stat(b.cfg.LogoPath); err == nil {
			if err := b.SendImage(ctx, chatID, b.cfg.LogoPath, banner, nil); err != nil {
				b.log.Warn().Err(err).Msg("Failed to send logo, falling back to text")
				_ = b.SendText(ctx, chatID, banner, nil)
			}
		} else {
			_ = b.SendText(ctx, chatID, banner, nil)
		}
	} else {
		_ = b.SendText(ctx, chatID, banner, nil)
	}
	return b.forward(ctx, chatID, 0, b.facade.HandleMainMenu(ctx, tgID, chatID, firstName, false))
}

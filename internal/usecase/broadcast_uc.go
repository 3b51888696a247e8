package usecase

import (
	"context"
	"fmt"
	"time"

	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/adapter"
	"telegram-bingo-bot/internal/domain/ports/repository"
	"telegram-bingo-bot/internal/infra/logging"
	"telegram-bingo-bot/internal/infra/metrics"
	"telegram-bingo-bot/internal/infra/worker"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ BroadcastUseCase = (*broadcastUC)(nil)

// BroadcastUseCase stages admin broadcasts and fans them out to every
// tracked player.
type BroadcastUseCase interface {
	// Stage validates and persists a draft, returning its id for the
	// later confirm step.
	Stage(ctx context.Context, b *model.Broadcast) (string, error)
	Fetch(ctx context.Context, id string) (*model.Broadcast, error)
	// Execute delivers the staged broadcast to all recipients in one
	// paced pass and reports per-recipient accounting to the initiator.
	Execute(ctx context.Context, id string, initiatorChatID int64) (*model.BroadcastReport, error)
	// Enqueue schedules Execute on the broadcast worker so the bot
	// dispatcher is not blocked for the duration of the send loop.
	Enqueue(id string, initiatorChatID int64) error
}

type broadcastUC struct {
	store      repository.BroadcastStore
	users      repository.UserDirectory
	sender     adapter.MessageSender
	workerPool *worker.Pool
	sendDelay  time.Duration
	log        *zerolog.Logger
}

func NewBroadcastUseCase(
	store repository.BroadcastStore,
	users repository.UserDirectory,
	sender adapter.MessageSender,
	pool *worker.Pool,
	sendDelay time.Duration,
	logger *zerolog.Logger,
) *broadcastUC {
	if sendDelay <= 0 {
		sendDelay = 50 * time.Millisecond
	}
	return &broadcastUC{
		store:      store,
		users:      users,
		sender:     sender,
		workerPool: pool,
		sendDelay:  sendDelay,
		log:        logger,
	}
}

func (uc *broadcastUC) Stage(ctx context.Context, b *model.Broadcast) (string, error) {
	id, err := uc.store.Stage(ctx, b)
	if err != nil {
		return "", err
	}
	metrics.IncBroadcastStaged()
	uc.log.Info().Str("broadcast_id", id).Int("buttons", len(b.Buttons)).Msg("Broadcast staged")
	return id, nil
}

func (uc *broadcastUC) Fetch(ctx context.Context, id string) (*model.Broadcast, error) {
	return uc.store.Fetch(ctx, id)
}

func (uc *broadcastUC) Execute(ctx context.Context, id string, initiatorChatID int64) (*model.BroadcastReport, error) {
	defer logging.TraceDuration(uc.log, "BroadcastUC.Execute")()
	started := time.Now()

	b, err := uc.store.Fetch(ctx, id)
	if err != nil {
		uc.log.Error().Err(err).Str("broadcast_id", id).Msg("Staged broadcast not found")
		return nil, err
	}

	// Snapshot the directory once; players who register mid-send are
	// picked up by the next broadcast.
	recipients, err := uc.users.All(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("Failed to list broadcast recipients")
		return nil, err
	}

	report := &model.BroadcastReport{Total: len(recipients)}
	uc.log.Info().Str("broadcast_id", id).Int("recipients", report.Total).Msg("Starting broadcast")

	// Throttle to stay under Telegram's bulk-send limits.
	throttle := time.NewTicker(uc.sendDelay)
	defer throttle.Stop()

	for _, user := range recipients {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-throttle.C:
		}

		if err := uc.deliver(ctx, user.ChatID, b); err != nil {
			report.Failed++
			metrics.IncDelivery("failed")
			uc.log.Warn().Err(err).Int64("chat_id", user.ChatID).Str("broadcast_id", id).Msg("Broadcast delivery failed")
			continue
		}
		report.Sent++
		metrics.IncDelivery("sent")
	}

	metrics.ObserveBroadcastDuration(time.Since(started))
	uc.log.Info().
		Str("broadcast_id", id).
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Msg("Broadcast finished")

	if initiatorChatID != 0 {
		summary := fmt.Sprintf("✅ Broadcast completed!\n\n📤 Sent: %d\n❌ Failed: %d\n👥 Total users: %d",
			report.Sent, report.Failed, report.Total)
		if err := uc.sender.SendText(ctx, initiatorChatID, summary, nil); err != nil {
			uc.log.Warn().Err(err).Int64("chat_id", initiatorChatID).Msg("Failed to send broadcast summary")
		}
	}
	return report, nil
}

func (uc *broadcastUC) Enqueue(id string, initiatorChatID int64) error {
	return uc.workerPool.Submit(func(ctx context.Context) error {
		_, err := uc.Execute(ctx, id, initiatorChatID)
		return err
	})
}

// deliver picks the message shape from the staged content: captioned
// image, bare image, or text. Buttons ride along in staged order.
func (uc *broadcastUC) deliver(ctx context.Context, chatID int64, b *model.Broadcast) error {
	rows := buttonRows(b.Buttons)
	if b.HasImage() {
		return uc.sender.SendImage(ctx, chatID, b.ImageRef, b.Text, rows)
	}
	return uc.sender.SendText(ctx, chatID, b.Text, rows)
}

// buttonRows lays buttons out one per row, preserving staged order.
func buttonRows(buttons []model.Button) [][]model.Button {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]model.Button, 0, len(buttons))
	for _, btn := range buttons {
		rows = append(rows, []model.Button{btn})
	}
	return rows
}

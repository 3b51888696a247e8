package usecase

import (
	"context"
	"errors"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/repository"
	"telegram-bingo-bot/internal/infra/logging"
	"telegram-bingo-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase records player interactions and runs phone verification.
type UserUseCase interface {
	// Track merges a partial user observed on any inbound event into
	// the directory. Tracking failures never surface to the player.
	Track(ctx context.Context, partial *model.User)
	// Verify records a shared phone number. A staged referral code, if
	// one is pending for the account, is folded into the same write and
	// cleared only after the write succeeds.
	Verify(ctx context.Context, tgID, chatID int64, phone string) (*model.User, error)
	Get(ctx context.Context, tgID int64) (*model.User, error)
	StageReferral(ctx context.Context, tgID int64, code string) error
}

type userUC struct {
	users     repository.UserDirectory
	referrals repository.ReferralStage
	log       *zerolog.Logger
}

func NewUserUseCase(users repository.UserDirectory, referrals repository.ReferralStage, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, referrals: referrals, log: logger}
}

func (u *userUC) Track(ctx context.Context, partial *model.User) {
	if partial == nil || partial.IsZero() {
		return
	}
	if err := u.users.Upsert(ctx, partial); err != nil {
		u.log.Error().Err(err).Int64("tg_id", partial.TelegramID).Msg("Failed to track user")
		return
	}
	metrics.IncUserTracked()
}

func (u *userUC) Verify(ctx context.Context, tgID, chatID int64, phone string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Verify")()

	if phone == "" {
		return nil, domain.ErrInvalidArgument
	}

	partial := model.NewUser(tgID, chatID)
	partial.Phone = phone
	partial.Verified = true

	code, err := u.referrals.Peek(ctx, tgID)
	switch {
	case err == nil:
		partial.ReferralCode = code
	case errors.Is(err, domain.ErrReferralNotFound):
		// No pending referral; plain verification.
	default:
		u.log.Warn().Err(err).Int64("tg_id", tgID).Msg("Referral lookup failed; verifying without code")
	}

	if err := u.users.Upsert(ctx, partial); err != nil {
		u.log.Error().Err(err).Int64("tg_id", tgID).Msg("Failed to persist verification")
		return nil, err
	}
	if partial.ReferralCode != "" {
		if err := u.referrals.Clear(ctx, tgID); err != nil {
			u.log.Warn().Err(err).Int64("tg_id", tgID).Msg("Failed to clear staged referral")
		}
	}
	return u.users.FindByTelegramID(ctx, tgID)
}

func (u *userUC) Get(ctx context.Context, tgID int64) (*model.User, error) {
	return u.users.FindByTelegramID(ctx, tgID)
}

func (u *userUC) StageReferral(ctx context.Context, tgID int64, code string) error {
	if code == "" {
		return domain.ErrInvalidArgument
	}
	return u.referrals.Stage(ctx, tgID, code)
}

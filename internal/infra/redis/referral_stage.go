package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/ports/repository"
)

var _ repository.ReferralStage = (*ReferralStageRepo)(nil)

// ReferralStageRepo keeps pending referral codes in Redis so staging
// survives restarts and is shared when the bot runs more than one
// replica. Expiry rides on the key TTL.
type ReferralStageRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewReferralStageRepo(client RedisClient, ttl time.Duration) *ReferralStageRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ReferralStageRepo{client: client, ttl: ttl}
}

func (s *ReferralStageRepo) key(tgID int64) string {
	return fmt.Sprintf("referral_stage:%d", tgID)
}

func (s *ReferralStageRepo) Stage(ctx context.Context, tgID int64, code string) error {
	if code == "" {
		return domain.ErrInvalidArgument
	}
	return s.client.Set(ctx, s.key(tgID), code, s.ttl)
}

func (s *ReferralStageRepo) Peek(ctx context.Context, tgID int64) (string, error) {
	code, err := s.client.Get(ctx, s.key(tgID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrReferralNotFound
		}
		return "", err
	}
	return code, nil
}

func (s *ReferralStageRepo) Clear(ctx context.Context, tgID int64) error {
	return s.client.Del(ctx, s.key(tgID))
}

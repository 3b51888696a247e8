package usecase

import (
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AdminGate = (*adminGate)(nil)

// AdminGate answers whether a Telegram account may use admin surfaces.
// Authorization is a pure membership check against the configured
// allow-list; denied calls must leave no state behind.
type AdminGate interface {
	IsAdmin(tgID int64) bool
}

type adminGate struct {
	allowed map[int64]struct{}
	log     *zerolog.Logger
}

func NewAdminGate(adminIDs []int64, logger *zerolog.Logger) *adminGate {
	allowed := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		allowed[id] = struct{}{}
	}
	if len(allowed) == 0 {
		logger.Warn().Msg("No admin IDs configured; admin surfaces are disabled")
	}
	return &adminGate{allowed: allowed, log: logger}
}

func (g *adminGate) IsAdmin(tgID int64) bool {
	_, ok := g.allowed[tgID]
	return ok
}

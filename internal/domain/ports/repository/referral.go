package repository

import "context"

// ReferralStage is the short-lived holding area for deep-link referral
// codes captured at first contact. At most one pending code per user;
// entries expire after a fixed window if never consumed.
//
// Peek is deliberately non-destructive: the verification flow reads the
// code, persists it into the user profile, and only then calls Clear, so
// a crash between the two never loses the code.
type ReferralStage interface {
	Stage(ctx context.Context, tgID int64, code string) error
	Peek(ctx context.Context, tgID int64) (string, error)
	Clear(ctx context.Context, tgID int64) error
}

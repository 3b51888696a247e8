package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/domain/ports/repository"
)

var _ repository.UserDirectory = (*PostgresUserRepo)(nil)

// PostgresUserRepo is the remote-database user directory, for
// deployments that outgrow the JSON file. The upsert mirrors the file
// store's merge semantics: COALESCE/NULLIF keep previously recorded
// fields when the partial leaves them empty, and last_interaction is
// always refreshed.
type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Upsert(ctx context.Context, partial *model.User) error {
	if partial.IsZero() {
		return domain.ErrInvalidArgument
	}
	profile, err := json.Marshal(partial.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	const q = `
INSERT INTO users (
  telegram_id, chat_id, first_name, username, phone, referral_code,
  verified, profile, first_seen_at, last_interaction
) VALUES (
  $1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''),
  $7, $8, now(), now()
) ON CONFLICT (telegram_id) DO UPDATE SET
  chat_id          = CASE WHEN EXCLUDED.chat_id <> 0 THEN EXCLUDED.chat_id ELSE users.chat_id END,
  first_name       = COALESCE(EXCLUDED.first_name, users.first_name),
  username         = COALESCE(EXCLUDED.username, users.username),
  phone            = COALESCE(EXCLUDED.phone, users.phone),
  referral_code    = COALESCE(EXCLUDED.referral_code, users.referral_code),
  verified         = users.verified OR EXCLUDED.verified,
  profile          = users.profile || EXCLUDED.profile,
  last_interaction = now();
`
	_, err = r.pool.Exec(ctx, q,
		partial.TelegramID, partial.ChatID, partial.FirstName, partial.Username,
		partial.Phone, partial.ReferralCode, partial.Verified, profile)
	return err
}

const userColumns = `telegram_id, chat_id, COALESCE(first_name,''), COALESCE(username,''),
       COALESCE(phone,''), COALESCE(referral_code,''), verified, profile,
       first_seen_at, last_interaction`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var profile []byte
	if err := row.Scan(&u.TelegramID, &u.ChatID, &u.FirstName, &u.Username,
		&u.Phone, &u.ReferralCode, &u.Verified, &profile,
		&u.FirstSeenAt, &u.LastInteraction); err != nil {
		return nil, err
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &u.Profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
	}
	return &u, nil
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id=$1;`, tgID)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *PostgresUserRepo) All(ctx context.Context) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE last_interaction >= $1;`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active: %w", err)
	}
	return n, nil
}

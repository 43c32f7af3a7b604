package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Quotas() store.Quotas       { return &quotas{db: s.db} }
func (s *pgStore) Premiums() store.Premiums   { return &premiums{db: s.db} }
func (s *pgStore) UsageLogs() store.UsageLogs { return &usageLogs{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Quotas ---
type quotas struct{ db *sql.DB }

func (q *quotas) Get(ctx context.Context, wallet string) (*model.Quota, error) {
	var out model.Quota
	row := q.db.QueryRowContext(ctx, `
        SELECT wallet_address, remaining_credits, created_at, updated_at
        FROM user_quotas WHERE wallet_address=$1
    `, wallet)
	if err := row.Scan(&out.WalletAddress, &out.RemainingCredits, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (q *quotas) CreateIfAbsent(ctx context.Context, wallet string, credits int) (*model.Quota, error) {
	if _, err := q.db.ExecContext(ctx, `
        INSERT INTO user_quotas (wallet_address, remaining_credits)
        VALUES ($1, $2)
        ON CONFLICT (wallet_address) DO NOTHING
    `, wallet, credits); err != nil {
		return nil, err
	}
	return q.Get(ctx, wallet)
}

func (q *quotas) Decrement(ctx context.Context, wallet string) (int, error) {
	var left int
	row := q.db.QueryRowContext(ctx, `
        UPDATE user_quotas
        SET remaining_credits = remaining_credits - 1, updated_at = now()
        WHERE wallet_address=$1 AND remaining_credits > 0
        RETURNING remaining_credits
    `, wallet)
	err := row.Scan(&left)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if _, gerr := q.Get(ctx, wallet); gerr != nil {
		return 0, gerr
	}
	return 0, model.ErrInsufficientQuota
}

// --- Premiums ---
type premiums struct{ db *sql.DB }

func (p *premiums) Upsert(ctx context.Context, rec *model.PremiumRecord) (*model.PremiumRecord, error) {
	out := *rec
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO premium_users (wallet_address, is_premium, premium_expiry)
        VALUES ($1, $2, $3)
        ON CONFLICT (wallet_address) DO UPDATE
        SET is_premium = EXCLUDED.is_premium,
            premium_expiry = EXCLUDED.premium_expiry,
            updated_at = now()
        RETURNING created_at, updated_at
    `, rec.WalletAddress, rec.IsPremium, rec.PremiumExpiry)
	if err := row.Scan(&out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *premiums) Get(ctx context.Context, wallet string) (*model.PremiumRecord, error) {
	var out model.PremiumRecord
	var exp sql.NullTime
	row := p.db.QueryRowContext(ctx, `
        SELECT wallet_address, is_premium, premium_expiry, created_at, updated_at
        FROM premium_users WHERE wallet_address=$1
    `, wallet)
	if err := row.Scan(&out.WalletAddress, &out.IsPremium, &exp, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if exp.Valid {
		t := exp.Time
		out.PremiumExpiry = &t
	}
	return &out, nil
}

// --- Usage logs ---
type usageLogs struct{ db *sql.DB }

func (u *usageLogs) Append(ctx context.Context, e *model.UsageLog) (*model.UsageLog, error) {
	out := *e
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	if _, err := u.db.ExecContext(ctx, `
        INSERT INTO usage_logs (id, wallet_address, topic, selected_hook, created_at)
        VALUES ($1,$2,$3,$4,$5)
    `, out.ID, out.WalletAddress, out.Topic, out.SelectedHook, out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *usageLogs) ListByWallet(ctx context.Context, wallet string, limit int) ([]*model.UsageLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := u.db.QueryContext(ctx, `
        SELECT id, wallet_address, topic, selected_hook, created_at
        FROM usage_logs WHERE wallet_address=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `, wallet, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.UsageLog
	for rows.Next() {
		var e model.UsageLog
		if err := rows.Scan(&e.ID, &e.WalletAddress, &e.Topic, &e.SelectedHook, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

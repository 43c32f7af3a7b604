// Package sqlite is the local row store driver (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
)

// Fixed-width so lexical order on the TEXT column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens (or creates) a SQLite database at path. ":memory:" gives a
// private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=busy_timeout(5000)"
	} else {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the hooklab tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_quotas (
            wallet_address TEXT PRIMARY KEY,
            remaining_credits INTEGER NOT NULL DEFAULT 5 CHECK (remaining_credits >= 0),
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS premium_users (
            wallet_address TEXT PRIMARY KEY,
            is_premium INTEGER NOT NULL DEFAULT 0,
            premium_expiry TEXT,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS usage_logs (
            id TEXT PRIMARY KEY,
            wallet_address TEXT NOT NULL,
            topic TEXT NOT NULL,
            selected_hook TEXT NOT NULL,
            created_at TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS usage_logs_wallet_created_idx ON usage_logs (wallet_address, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewWithDB constructs a SQLite store on an open database with the schema applied.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Quotas() store.Quotas       { return &quotas{db: s.db} }
func (s *liteStore) Premiums() store.Premiums   { return &premiums{db: s.db} }
func (s *liteStore) UsageLogs() store.UsageLogs { return &usageLogs{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func now() string { return time.Now().UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// --- Quotas ---
type quotas struct{ db *sql.DB }

func (q *quotas) Get(ctx context.Context, wallet string) (*model.Quota, error) {
	var out model.Quota
	var created, updated string
	row := q.db.QueryRowContext(ctx, `
        SELECT wallet_address, remaining_credits, created_at, updated_at
        FROM user_quotas WHERE wallet_address=?
    `, wallet)
	if err := row.Scan(&out.WalletAddress, &out.RemainingCredits, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	var err error
	if out.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if out.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (q *quotas) CreateIfAbsent(ctx context.Context, wallet string, credits int) (*model.Quota, error) {
	ts := now()
	if _, err := q.db.ExecContext(ctx, `
        INSERT INTO user_quotas (wallet_address, remaining_credits, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (wallet_address) DO NOTHING
    `, wallet, credits, ts, ts); err != nil {
		return nil, err
	}
	return q.Get(ctx, wallet)
}

func (q *quotas) Decrement(ctx context.Context, wallet string) (int, error) {
	var left int
	row := q.db.QueryRowContext(ctx, `
        UPDATE user_quotas
        SET remaining_credits = remaining_credits - 1, updated_at = ?
        WHERE wallet_address=? AND remaining_credits > 0
        RETURNING remaining_credits
    `, now(), wallet)
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
	var exp *string
	if rec.PremiumExpiry != nil {
		s := rec.PremiumExpiry.UTC().Format(timeLayout)
		exp = &s
	}
	ts := now()
	var created, updated string
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO premium_users (wallet_address, is_premium, premium_expiry, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (wallet_address) DO UPDATE
        SET is_premium = excluded.is_premium,
            premium_expiry = excluded.premium_expiry,
            updated_at = excluded.updated_at
        RETURNING created_at, updated_at
    `, rec.WalletAddress, rec.IsPremium, exp, ts, ts)
	if err := row.Scan(&created, &updated); err != nil {
		return nil, err
	}
	var err error
	if out.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if out.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *premiums) Get(ctx context.Context, wallet string) (*model.PremiumRecord, error) {
	var out model.PremiumRecord
	var exp sql.NullString
	var created, updated string
	row := p.db.QueryRowContext(ctx, `
        SELECT wallet_address, is_premium, premium_expiry, created_at, updated_at
        FROM premium_users WHERE wallet_address=?
    `, wallet)
	if err := row.Scan(&out.WalletAddress, &out.IsPremium, &exp, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if exp.Valid {
		t, err := parseTime(exp.String)
		if err != nil {
			return nil, err
		}
		out.PremiumExpiry = &t
	}
	var err error
	if out.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if out.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
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
        VALUES (?, ?, ?, ?, ?)
    `, out.ID, out.WalletAddress, out.Topic, out.SelectedHook, out.CreatedAt.UTC().Format(timeLayout)); err != nil {
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
        FROM usage_logs WHERE wallet_address=?
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `, wallet, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.UsageLog
	for rows.Next() {
		var e model.UsageLog
		var created string
		if err := rows.Scan(&e.ID, &e.WalletAddress, &e.Topic, &e.SelectedHook, &created); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

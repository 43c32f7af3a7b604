package store

import (
	"context"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Quotas() Quotas
	Premiums() Premiums
	UsageLogs() UsageLogs
}

// Quotas holds per-wallet free-tier balances.
type Quotas interface {
	// Get returns model.ErrNotFound when the wallet has no record.
	Get(ctx context.Context, wallet string) (*model.Quota, error)
	// CreateIfAbsent inserts a record with the given credits unless one exists,
	// and returns the stored record either way.
	CreateIfAbsent(ctx context.Context, wallet string, credits int) (*model.Quota, error)
	// Decrement subtracts one credit if the balance is positive and returns the
	// new balance. It fails with model.ErrInsufficientQuota at zero and with
	// model.ErrNotFound when no record exists.
	Decrement(ctx context.Context, wallet string) (int, error)
}

type Premiums interface {
	Upsert(ctx context.Context, p *model.PremiumRecord) (*model.PremiumRecord, error)
	Get(ctx context.Context, wallet string) (*model.PremiumRecord, error)
}

type UsageLogs interface {
	Append(ctx context.Context, u *model.UsageLog) (*model.UsageLog, error)
	// ListByWallet returns newest first.
	ListByWallet(ctx context.Context, wallet string, limit int) ([]*model.UsageLog, error)
}

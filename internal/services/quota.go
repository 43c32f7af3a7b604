package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
)

// QuotaLedger is the free-tier credit book keyed by wallet.
type QuotaLedger struct {
	store          store.Store
	defaultCredits int
}

func NewQuotaLedger(s store.Store, defaultCredits int) *QuotaLedger {
	return &QuotaLedger{store: s, defaultCredits: defaultCredits}
}

// GetQuota returns the balance, creating the record with the default
// allowance on first access.
func (l *QuotaLedger) GetQuota(ctx context.Context, wallet string) (int, error) {
	q, err := l.store.Quotas().CreateIfAbsent(ctx, wallet, l.defaultCredits)
	if err != nil {
		return 0, fmt.Errorf("get quota: %w", err)
	}
	return q.RemainingCredits, nil
}

// Deduct spends one credit and returns the new balance. At zero it fails
// with model.ErrInsufficientQuota and the balance stays zero.
func (l *QuotaLedger) Deduct(ctx context.Context, wallet string) (int, error) {
	left, err := l.store.Quotas().Decrement(ctx, wallet)
	if errors.Is(err, model.ErrNotFound) {
		if _, err = l.store.Quotas().CreateIfAbsent(ctx, wallet, l.defaultCredits); err != nil {
			return 0, fmt.Errorf("deduct quota: %w", err)
		}
		left, err = l.store.Quotas().Decrement(ctx, wallet)
	}
	if err != nil {
		if errors.Is(err, model.ErrInsufficientQuota) {
			return 0, err
		}
		return 0, fmt.Errorf("deduct quota: %w", err)
	}
	return left, nil
}

// LogUsage appends a usage record. It is independent of Deduct: a failure
// here never restores a spent credit.
func (l *QuotaLedger) LogUsage(ctx context.Context, wallet, topic, hook string) error {
	if _, err := l.store.UsageLogs().Append(ctx, &model.UsageLog{
		WalletAddress: wallet,
		Topic:         topic,
		SelectedHook:  hook,
	}); err != nil {
		return fmt.Errorf("log usage: %w", err)
	}
	return nil
}

// History lists the most recent usage records of a wallet, newest first.
func (l *QuotaLedger) History(ctx context.Context, wallet string, limit int) ([]*model.UsageLog, error) {
	return l.store.UsageLogs().ListByWallet(ctx, wallet, limit)
}

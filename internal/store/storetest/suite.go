// Package storetest holds the compliance suite every store.Store driver must pass.
package storetest

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
)

// Wallet returns a fresh, well-formed lower-case address.
func Wallet() string {
	id := uuid.New()
	return "0x" + hex.EncodeToString(id[:]) + "00000000"
}

// Run exercises the store contract. makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("QuotaLazyCreate", func(t *testing.T) {
		s := makeStore(t)
		w := Wallet()

		_, err := s.Quotas().Get(ctx, w)
		require.ErrorIs(t, err, model.ErrNotFound)

		q, err := s.Quotas().CreateIfAbsent(ctx, w, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, q.RemainingCredits)
		assert.Equal(t, w, q.WalletAddress)
		assert.False(t, q.UpdatedAt.IsZero())

		// a second create never resets the balance
		_, err = s.Quotas().Decrement(ctx, w)
		require.NoError(t, err)
		q, err = s.Quotas().CreateIfAbsent(ctx, w, 5)
		require.NoError(t, err)
		assert.Equal(t, 4, q.RemainingCredits)
	})

	t.Run("QuotaDecrementToZero", func(t *testing.T) {
		s := makeStore(t)
		w := Wallet()

		_, err := s.Quotas().Decrement(ctx, w)
		require.ErrorIs(t, err, model.ErrNotFound)

		_, err = s.Quotas().CreateIfAbsent(ctx, w, 1)
		require.NoError(t, err)

		left, err := s.Quotas().Decrement(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, 0, left)

		_, err = s.Quotas().Decrement(ctx, w)
		require.ErrorIs(t, err, model.ErrInsufficientQuota)

		q, err := s.Quotas().Get(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, 0, q.RemainingCredits)
	})

	t.Run("QuotaConcurrentDecrement", func(t *testing.T) {
		s := makeStore(t)
		w := Wallet()
		const credits, workers = 3, 12

		_, err := s.Quotas().CreateIfAbsent(ctx, w, credits)
		require.NoError(t, err)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			refused   int
			other     []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Quotas().Decrement(ctx, w)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, model.ErrInsufficientQuota):
					refused++
				default:
					other = append(other, err)
				}
			}()
		}
		wg.Wait()

		require.Empty(t, other)
		assert.Equal(t, credits, succeeded)
		assert.Equal(t, workers-credits, refused)

		q, err := s.Quotas().Get(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, 0, q.RemainingCredits)
	})

	t.Run("PremiumUpsert", func(t *testing.T) {
		s := makeStore(t)
		w := Wallet()

		_, err := s.Premiums().Get(ctx, w)
		require.ErrorIs(t, err, model.ErrNotFound)

		exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		p, err := s.Premiums().Upsert(ctx, &model.PremiumRecord{WalletAddress: w, IsPremium: true, PremiumExpiry: &exp})
		require.NoError(t, err)
		assert.True(t, p.IsPremium)

		got, err := s.Premiums().Get(ctx, w)
		require.NoError(t, err)
		require.NotNil(t, got.PremiumExpiry)
		assert.True(t, exp.Equal(*got.PremiumExpiry))

		_, err = s.Premiums().Upsert(ctx, &model.PremiumRecord{WalletAddress: w, IsPremium: false})
		require.NoError(t, err)
		got, err = s.Premiums().Get(ctx, w)
		require.NoError(t, err)
		assert.False(t, got.IsPremium)
		assert.Nil(t, got.PremiumExpiry)
	})

	t.Run("UsageLogAppendAndList", func(t *testing.T) {
		s := makeStore(t)
		w := Wallet()
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

		for i, hook := range []string{"first", "second", "third"} {
			u, err := s.UsageLogs().Append(ctx, &model.UsageLog{
				WalletAddress: w,
				Topic:         "DeFi",
				SelectedHook:  hook,
				CreatedAt:     base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
			assert.NotEmpty(t, u.ID)
		}
		_, err := s.UsageLogs().Append(ctx, &model.UsageLog{WalletAddress: Wallet(), Topic: "NFTs", SelectedHook: "other"})
		require.NoError(t, err)

		logs, err := s.UsageLogs().ListByWallet(ctx, w, 2)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "third", logs[0].SelectedHook)
		assert.Equal(t, "second", logs[1].SelectedHook)
		assert.Equal(t, "DeFi", logs[0].Topic)

		all, err := s.UsageLogs().ListByWallet(ctx, w, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

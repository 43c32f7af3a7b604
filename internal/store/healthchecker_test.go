package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store/sqlite"
)

// quotaOnlyStore has no HealthPing, forcing the keyed-read fallback.
type quotaOnlyStore struct {
	store.Store
	getErr error
}

type failingQuotas struct {
	store.Quotas
	err error
}

func (f failingQuotas) Get(context.Context, string) (*model.Quota, error) { return nil, f.err }

func (s quotaOnlyStore) Quotas() store.Quotas { return failingQuotas{err: s.getErr} }

func runOnce(t *testing.T, s store.Store) bool {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hc := store.NewStoreHealthChecker(s, zerolog.Nop(), 100*time.Millisecond)
	done := make(chan struct{})
	go func() { hc.Start(ctx, time.Hour); close(done) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
	return hc.IsHealthy()
}

func TestStoreHealthChecker_Ping(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, sqlite.EnsureSchema(ctx, db))
	t.Cleanup(func() { _ = db.Close() })

	assert.True(t, runOnce(t, sqlite.NewWithDB(db)))
}

func TestStoreHealthChecker_Fallback(t *testing.T) {
	assert.True(t, runOnce(t, quotaOnlyStore{getErr: model.ErrNotFound}))
	assert.False(t, runOnce(t, quotaOnlyStore{getErr: errors.New("connection refused")}))
}

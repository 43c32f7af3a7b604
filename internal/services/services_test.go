package services

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielnoveno/hackathon-hooklabai/internal/hooks"
	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store/sqlite"
)

var (
	walletA = "0x" + strings.Repeat("a", 40)
	walletB = "0x" + strings.Repeat("b", 40)
	walletP = "0x" + strings.Repeat("c", 40)
)

// --- Fakes ---

type fakeOracle struct {
	mu        sync.Mutex
	premium   map[string]bool
	expiry    map[string]int64
	err       error
	expiryErr error
	priceErr  error
	calls     int
}

func (f *fakeOracle) IsPremiumActive(_ context.Context, addr string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.premium[addr], nil
}

func (f *fakeOracle) Expiry(_ context.Context, addr string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.expiryErr != nil {
		return 0, f.expiryErr
	}
	return f.expiry[addr], nil
}

func (f *fakeOracle) MonthlyPrice(context.Context) (*big.Int, error) {
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return big.NewInt(5_000_000_000_000_000), nil
}

type fakeModel struct {
	text string
	err  error
}

func (m fakeModel) Generate(context.Context, string, llm.Params) (string, error) { return m.text, m.err }

type fakeTrends struct {
	summary   string
	available bool
}

func (f fakeTrends) Summary(context.Context) (string, bool) { return f.summary, f.available }

// countingQuotas wraps a real Quotas to count decrements.
type countingStore struct {
	store.Store
	decrements atomic.Int32
	logErr     error
}

type countingQuotas struct {
	store.Quotas
	parent *countingStore
}

func (c countingQuotas) Decrement(ctx context.Context, wallet string) (int, error) {
	c.parent.decrements.Add(1)
	return c.Quotas.Decrement(ctx, wallet)
}

type failingLogs struct {
	store.UsageLogs
	err error
}

func (f failingLogs) Append(context.Context, *model.UsageLog) (*model.UsageLog, error) {
	return nil, f.err
}

func (c *countingStore) Quotas() store.Quotas { return countingQuotas{Quotas: c.Store.Quotas(), parent: c} }

func (c *countingStore) UsageLogs() store.UsageLogs {
	if c.logErr != nil {
		return failingLogs{UsageLogs: c.Store.UsageLogs(), err: c.logErr}
	}
	return c.Store.UsageLogs()
}

func newStore(t *testing.T) *countingStore {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(ctx, db))
	return &countingStore{Store: sqlite.NewWithDB(db)}
}

type fixture struct {
	store  *countingStore
	oracle *fakeOracle
	ledger *QuotaLedger
	prem   *PremiumService
	wf     *Workflow
}

func newFixture(t *testing.T, m llm.Model) *fixture {
	t.Helper()
	log := zerolog.Nop()
	s := newStore(t)
	o := &fakeOracle{premium: map[string]bool{walletP: true}, expiry: map[string]int64{walletP: 1893456000}}
	ledger := NewQuotaLedger(s, 5)
	prem := NewPremiumService(o, s, log)
	wf := NewWorkflow(prem, ledger, hooks.NewGenerator(m, log), hooks.NewExpander(m, log), fakeTrends{summary: "trends", available: true}, log)
	return &fixture{store: s, oracle: o, ledger: ledger, prem: prem, wf: wf}
}

// --- Quota ledger ---

func TestQuotaLedger_FirstAccessGrantsDefault(t *testing.T) {
	f := newFixture(t, fakeModel{})
	n, err := f.ledger.GetQuota(context.Background(), walletA)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.ledger.GetQuota(context.Background(), walletA)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestQuotaLedger_DeductUntilEmpty(t *testing.T) {
	f := newFixture(t, fakeModel{})
	ctx := context.Background()

	for want := 4; want >= 0; want-- {
		got, err := f.ledger.Deduct(ctx, walletA)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := f.ledger.Deduct(ctx, walletA)
	require.ErrorIs(t, err, model.ErrInsufficientQuota)

	n, err := f.ledger.GetQuota(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQuotaLedger_LogUsageAndHistory(t *testing.T) {
	f := newFixture(t, fakeModel{})
	ctx := context.Background()
	require.NoError(t, f.ledger.LogUsage(ctx, walletA, "DeFi", "hook one"))
	require.NoError(t, f.ledger.LogUsage(ctx, walletA, "DeFi", "hook two"))

	logs, err := f.ledger.History(ctx, walletA, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

// --- Premium ---

func TestPremiumService_VerifyMirrors(t *testing.T) {
	f := newFixture(t, fakeModel{})
	ctx := context.Background()

	st := f.prem.Verify(ctx, walletP)
	assert.True(t, st.IsPremium)
	assert.True(t, st.OracleAvailable)
	assert.Equal(t, int64(1893456000), st.ExpiryTimestamp)

	rec, err := f.store.Premiums().Get(ctx, walletP)
	require.NoError(t, err)
	assert.True(t, rec.IsPremium)
	require.NotNil(t, rec.PremiumExpiry)
	assert.Equal(t, int64(1893456000), rec.PremiumExpiry.Unix())
}

func TestPremiumService_StatusDoesNotMirror(t *testing.T) {
	f := newFixture(t, fakeModel{})
	ctx := context.Background()

	st := f.prem.Status(ctx, walletP)
	assert.True(t, st.IsPremium)
	_, err := f.store.Premiums().Get(ctx, walletP)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPremiumService_OracleDownIsFreeTier(t *testing.T) {
	f := newFixture(t, fakeModel{})
	f.oracle.err = errors.New("rpc timeout")
	ctx := context.Background()

	st := f.prem.Verify(ctx, walletP)
	assert.False(t, st.IsPremium)
	assert.False(t, st.OracleAvailable)
	assert.Zero(t, st.ExpiryTimestamp)

	_, err := f.store.Premiums().Get(ctx, walletP)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPremiumService_ExpiryFailureOnly(t *testing.T) {
	f := newFixture(t, fakeModel{})
	f.oracle.expiryErr = errors.New("reverted")

	st := f.prem.Status(context.Background(), walletP)
	assert.True(t, st.IsPremium)
	assert.False(t, st.OracleAvailable)
	assert.Zero(t, st.ExpiryTimestamp)
}

func TestPremiumService_MonthlyPrice(t *testing.T) {
	f := newFixture(t, fakeModel{})
	p, ok := f.prem.MonthlyPrice(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "5000000000000000", p.String())

	f.oracle.priceErr = errors.New("down")
	p, ok = f.prem.MonthlyPrice(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "1000000000000000", p.String())
}

// --- Workflow ---

func TestWorkflow_Hooks(t *testing.T) {
	f := newFixture(t, fakeModel{text: "1. one\n2. two"})
	out, err := f.wf.Hooks(context.Background(), " DeFi ")
	require.NoError(t, err)
	assert.Equal(t, hooks.SourceGenerated, out.Source)
	assert.True(t, out.TrendDataAvailable)
	assert.Len(t, out.Hooks, 2)

	_, err = f.wf.Hooks(context.Background(), "  ")
	assert.True(t, model.IsValidationError(err))
}

func TestWorkflow_HooksFallback(t *testing.T) {
	f := newFixture(t, fakeModel{err: errors.New("model down")})
	out, err := f.wf.Hooks(context.Background(), "DeFi")
	require.NoError(t, err)
	assert.Equal(t, hooks.SourceFallback, out.Source)
	assert.Len(t, out.Hooks, 5)
}

// Wallet with one credit: the first reveal spends it, the next is refused.
func TestWorkflow_LastCreditThenRefused(t *testing.T) {
	f := newFixture(t, fakeModel{text: "Base summer is here. Build onchain."})
	ctx := context.Background()
	_, err := f.store.Quotas().CreateIfAbsent(ctx, walletA, 1)
	require.NoError(t, err)

	out, err := f.wf.Select(ctx, SelectRequest{Wallet: walletA, Topic: "Base", Hook: "Base summer is here."})
	require.NoError(t, err)
	assert.Equal(t, 0, out.RemainingCredits)
	assert.False(t, out.IsPremium)
	assert.True(t, out.UsageLogged)
	assert.Equal(t, hooks.SourceGenerated, out.Source)
	assert.Equal(t, []State{StateCheckingPremium, StateQuotaPath, StateGenerating, StateDone}, out.Trace)

	out, err = f.wf.Select(ctx, SelectRequest{Wallet: walletA, Topic: "Base", Hook: "Base summer is here."})
	require.ErrorIs(t, err, model.ErrInsufficientQuota)
	require.NotNil(t, out)
	assert.Equal(t, []State{StateCheckingPremium, StateQuotaPath, StateFailed}, out.Trace)

	_, err = f.ledger.Deduct(ctx, walletA)
	assert.ErrorIs(t, err, model.ErrInsufficientQuota)
}

// Oracle failure is treated as free tier and the run still completes.
func TestWorkflow_OracleFailureUsesQuota(t *testing.T) {
	f := newFixture(t, fakeModel{err: errors.New("model down")})
	f.oracle.err = errors.New("execution reverted")

	out, err := f.wf.Select(context.Background(), SelectRequest{Wallet: walletB, Topic: "NFTs", Hook: "NFTs are back"})
	require.NoError(t, err)
	assert.False(t, out.IsPremium)
	assert.Equal(t, 4, out.RemainingCredits)
	assert.Equal(t, hooks.SourceFallback, out.Source)
	assert.True(t, strings.HasPrefix(out.Content.FullContent, "NFTs are back"))
	assert.Equal(t, StateDone, out.Trace[len(out.Trace)-1])
}

func TestWorkflow_PremiumNeverDeducts(t *testing.T) {
	f := newFixture(t, fakeModel{text: "post"})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		out, err := f.wf.Select(ctx, SelectRequest{Wallet: walletP, Topic: "DeFi", Hook: "hook"})
		require.NoError(t, err)
		assert.True(t, out.IsPremium)
		assert.Equal(t, Unlimited, out.RemainingCredits)
		assert.Equal(t, []State{StateCheckingPremium, StatePremiumPath, StateGenerating, StateDone}, out.Trace)

		c, err := f.wf.Consume(ctx, walletP, "DeFi", "hook")
		require.NoError(t, err)
		assert.Equal(t, Unlimited, c.RemainingCredits)
	}
	assert.Zero(t, f.store.decrements.Load())
	_, err := f.store.Quotas().Get(ctx, walletP)
	assert.ErrorIs(t, err, model.ErrNotFound)

	logs, err := f.ledger.History(ctx, walletP, 100)
	require.NoError(t, err)
	assert.Len(t, logs, 20)
}

func TestWorkflow_UsageLogFailureKeepsReveal(t *testing.T) {
	f := newFixture(t, fakeModel{text: "post"})
	f.store.logErr = errors.New("disk full")

	out, err := f.wf.Select(context.Background(), SelectRequest{Wallet: walletA, Topic: "DeFi", Hook: "hook"})
	require.NoError(t, err)
	assert.False(t, out.UsageLogged)
	assert.Equal(t, 4, out.RemainingCredits)
	assert.Equal(t, StateDone, out.Trace[len(out.Trace)-1])
}

func TestWorkflow_ConsumeWithoutHookSkipsLog(t *testing.T) {
	f := newFixture(t, fakeModel{})
	ctx := context.Background()

	out, err := f.wf.Consume(ctx, walletA, "", "")
	require.NoError(t, err)
	assert.Equal(t, 4, out.RemainingCredits)
	assert.False(t, out.UsageLogged)

	logs, err := f.ledger.History(ctx, walletA, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestWorkflow_Quota(t *testing.T) {
	f := newFixture(t, fakeModel{})
	ctx := context.Background()

	v, err := f.wf.Quota(ctx, "0x"+strings.Repeat("A", 40))
	require.NoError(t, err)
	assert.Equal(t, 5, v.RemainingCredits)

	v, err = f.wf.Quota(ctx, walletP)
	require.NoError(t, err)
	assert.True(t, v.IsPremium)
	assert.Equal(t, Unlimited, v.RemainingCredits)

	_, err = f.wf.Quota(ctx, "not-a-wallet")
	assert.True(t, model.IsValidationError(err))
}

func TestWorkflow_SelectValidation(t *testing.T) {
	f := newFixture(t, fakeModel{})
	ctx := context.Background()

	for _, req := range []SelectRequest{
		{Wallet: "", Topic: "t", Hook: "h"},
		{Wallet: walletA, Topic: "", Hook: "h"},
		{Wallet: walletA, Topic: "t", Hook: " "},
	} {
		_, err := f.wf.Select(ctx, req)
		assert.True(t, model.IsValidationError(err), "%+v", req)
	}
	assert.Zero(t, f.store.decrements.Load())
}

func TestWorkflow_ConcurrentSelectsSpendEachCreditOnce(t *testing.T) {
	f := newFixture(t, fakeModel{text: "post"})
	ctx := context.Background()
	_, err := f.store.Quotas().CreateIfAbsent(ctx, walletA, 2)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.wf.Select(ctx, SelectRequest{Wallet: walletA, Topic: "DeFi", Hook: "hook"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, model.ErrInsufficientQuota) {
				refused++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, ok)
	assert.Equal(t, 6, refused)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielnoveno/hackathon-hooklabai/internal/hooks"
	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
	"github.com/danielnoveno/hackathon-hooklabai/internal/services"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store/sqlite"
)

var (
	freeWallet    = "0x" + strings.Repeat("1", 40)
	premiumWallet = "0x" + strings.Repeat("2", 40)
)

type stubOracle struct {
	down bool
}

func (o stubOracle) IsPremiumActive(_ context.Context, addr string) (bool, error) {
	if o.down {
		return false, errors.New("rpc unreachable")
	}
	return addr == premiumWallet, nil
}

func (o stubOracle) Expiry(_ context.Context, addr string) (int64, error) {
	if o.down {
		return 0, errors.New("rpc unreachable")
	}
	if addr == premiumWallet {
		return 4102444800, nil
	}
	return 0, nil
}

func (o stubOracle) MonthlyPrice(context.Context) (*big.Int, error) {
	if o.down {
		return nil, errors.New("rpc unreachable")
	}
	return big.NewInt(2_000_000_000_000_000), nil
}

type stubModel struct{ err error }

func (m stubModel) Generate(_ context.Context, prompt string, _ llm.Params) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "1. First hook\n2. Second hook\n3. Third hook", nil
}

type stubTrends struct{}

func (stubTrends) Summary(context.Context) (string, bool) { return "1. gm (strength: 0.500)", true }

type stubHealth struct{ ok bool }

func (s stubHealth) IsHealthy() bool { return s.ok }
func (s stubHealth) Components() map[string]bool {
	return map[string]bool{"store": s.ok, "chain": true}
}

func newTestRouter(t *testing.T, oracle stubOracle, m llm.Model) *mux.Router {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(ctx, db))
	st := sqlite.NewWithDB(db)

	log := zerolog.Nop()
	ledger := services.NewQuotaLedger(st, 2)
	premium := services.NewPremiumService(oracle, st, log)
	wf := services.NewWorkflow(premium, ledger, hooks.NewGenerator(m, log), hooks.NewExpander(m, log), stubTrends{}, log)

	return NewRouter(Deps{
		Workflow:     wf,
		Premium:      premium,
		Ledger:       ledger,
		Health:       stubHealth{ok: true},
		SubscribeURL: "/subscribe",
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestGenerateHooks(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})

	rr := doJSON(t, r, http.MethodPost, "/api/hooks/generate", map[string]string{"topic": "DeFi"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "generated", body["source"])
	assert.Equal(t, true, body["trendDataAvailable"])
	assert.Len(t, body["hooks"], 3)
}

func TestGenerateHooks_FallbackWhenModelDown(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{err: errors.New("503")})

	rr := doJSON(t, r, http.MethodPost, "/api/hooks/generate", map[string]string{"topic": "NFTs"})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "fallback", body["source"])
	assert.Len(t, body["hooks"], 5)
}

func TestGenerateHooks_Validation(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})

	rr := doJSON(t, r, http.MethodPost, "/api/hooks/generate", map[string]string{"topic": " "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/hooks/generate", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid JSON")
}

func TestGenerateContent_SpendsCreditsThenRefuses(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})
	req := map[string]string{"walletAddress": freeWallet, "topic": "DeFi", "selectedHook": "Second hook"}

	for _, want := range []float64{1, 0} {
		rr := doJSON(t, r, http.MethodPost, "/api/content/generate", req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		body := decode(t, rr)
		assert.Equal(t, want, body["remainingCredits"])
		assert.Equal(t, false, body["isPremium"])
		assert.Equal(t, "Second hook", body["hook"])
		assert.Equal(t, true, body["usageLogged"])
	}

	rr := doJSON(t, r, http.MethodPost, "/api/content/generate", req)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{
		"error": "Insufficient quota",
		"isPremium": false,
		"remainingCredits": 0,
		"message": "Subscribe to get unlimited access",
		"subscribeUrl": "/subscribe"
	}`, rr.Body.String())

	rr = doJSON(t, r, http.MethodGet, "/api/usage?walletAddress="+freeWallet, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(2), decode(t, rr)["count"])
}

func TestGenerateContent_PremiumUnlimited(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{err: errors.New("quota exceeded")})
	req := map[string]string{"walletAddress": premiumWallet, "topic": "Base", "selectedHook": "gm"}

	for i := 0; i < 4; i++ {
		rr := doJSON(t, r, http.MethodPost, "/api/content/generate", req)
		require.Equal(t, http.StatusOK, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, true, body["isPremium"])
		assert.Equal(t, float64(services.Unlimited), body["remainingCredits"])
		assert.Equal(t, "fallback", body["source"])
		assert.True(t, strings.HasPrefix(body["fullContent"].(string), "gm"))
	}
}

func TestGenerateContent_BadWallet(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})
	rr := doJSON(t, r, http.MethodPost, "/api/content/generate",
		map[string]string{"walletAddress": "vitalik.eth", "topic": "DeFi", "selectedHook": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuota_ConsumeAndRead(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})

	rr := doJSON(t, r, http.MethodGet, "/api/quota?walletAddress="+freeWallet, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"isPremium":false,"remainingCredits":2}`, rr.Body.String())

	rr = doJSON(t, r, http.MethodPost, "/api/quota", map[string]string{"walletAddress": freeWallet})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, float64(1), body["remainingCredits"])
	assert.Equal(t, "Quota deducted. 1 credits remaining.", body["message"])

	rr = doJSON(t, r, http.MethodPost, "/api/quota", map[string]string{"walletAddress": premiumWallet})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Premium user - unlimited access", decode(t, rr)["message"])

	rr = doJSON(t, r, http.MethodGet, "/api/quota?walletAddress="+premiumWallet, nil)
	assert.JSONEq(t, `{"isPremium":true,"remainingCredits":-1}`, rr.Body.String())

	rr = doJSON(t, r, http.MethodGet, "/api/quota", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuota_OracleDownIsFreeTier(t *testing.T) {
	r := newTestRouter(t, stubOracle{down: true}, stubModel{})

	for _, want := range []int{http.StatusOK, http.StatusOK, http.StatusForbidden} {
		rr := doJSON(t, r, http.MethodPost, "/api/quota", map[string]string{"walletAddress": premiumWallet})
		assert.Equal(t, want, rr.Code)
	}
}

func TestPremiumVerify(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})

	rr := doJSON(t, r, http.MethodPost, "/api/premium/verify", map[string]string{"walletAddress": premiumWallet})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, true, body["isPremium"])
	assert.Equal(t, float64(4102444800), body["expiryTimestamp"])
	assert.Equal(t, "2100-01-01T00:00:00Z", body["expiryDate"])
	assert.Equal(t, "January 1, 2100", body["expiryLabel"])
	assert.Equal(t, true, body["oracleAvailable"])

	rr = doJSON(t, r, http.MethodGet, "/api/premium/verify?walletAddress="+freeWallet, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode(t, rr)
	assert.Equal(t, false, body["isPremium"])
	assert.Nil(t, body["expiryDate"])
	assert.Equal(t, "Never subscribed", body["expiryLabel"])
}

func TestPremiumVerify_OracleDown(t *testing.T) {
	r := newTestRouter(t, stubOracle{down: true}, stubModel{})

	rr := doJSON(t, r, http.MethodPost, "/api/premium/verify", map[string]string{"walletAddress": premiumWallet})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["isPremium"])
	assert.Equal(t, false, body["oracleAvailable"])
}

func TestPremiumPrice(t *testing.T) {
	rr := doJSON(t, newTestRouter(t, stubOracle{}, stubModel{}), http.MethodGet, "/api/premium/price", nil)
	assert.JSONEq(t, `{"priceWei":"2000000000000000","source":"contract"}`, rr.Body.String())

	rr = doJSON(t, newTestRouter(t, stubOracle{down: true}, stubModel{}), http.MethodGet, "/api/premium/price", nil)
	assert.JSONEq(t, `{"priceWei":"1000000000000000","source":"default"}`, rr.Body.String())
}

func TestUsage_Validation(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})

	rr := doJSON(t, r, http.MethodGet, "/api/usage?walletAddress="+freeWallet+"&limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/api/usage?walletAddress="+freeWallet, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"walletAddress":"`+freeWallet+`","logs":[],"count":0}`, rr.Body.String())
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(stubHealth{ok: false}).CheckHealth(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "unhealthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, map[string]interface{}{"store": false, "chain": true}, body["components"])
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})
	cases := []struct{ method, path string }{
		{http.MethodDelete, "/api/quota"},
		{http.MethodPost, "/api/premium/price"},
		{http.MethodGet, "/api/content/generate"},
		{http.MethodPut, "/api/hooks/generate"},
		{http.MethodPost, "/metrics"},
	}
	for _, tc := range cases {
		rr := doJSON(t, r, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, tc.method+" "+tc.path)
	}

	rr := doJSON(t, r, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, stubOracle{}, stubModel{})
	rr := doJSON(t, r, http.MethodPost, "/api/hooks/generate", map[string]string{"topic": "DeFi"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `hooklab_hook_batches_total{source="generated"}`)
}

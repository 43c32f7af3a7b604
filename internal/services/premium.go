package services

import (
	"context"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/store"
)

// DefaultMonthlyPriceWei is 0.001 ether, reported when the contract cannot be read.
var DefaultMonthlyPriceWei = big.NewInt(1_000_000_000_000_000)

// PremiumOracle is the authoritative source of subscription state.
type PremiumOracle interface {
	IsPremiumActive(ctx context.Context, addr string) (bool, error)
	Expiry(ctx context.Context, addr string) (int64, error)
	MonthlyPrice(ctx context.Context) (*big.Int, error)
}

// PremiumService reads subscription state and mirrors it for display.
// Oracle failures degrade to the free tier, never to unlimited access.
type PremiumService struct {
	oracle PremiumOracle
	store  store.Store
	log    zerolog.Logger
}

func NewPremiumService(o PremiumOracle, s store.Store, log zerolog.Logger) *PremiumService {
	return &PremiumService{oracle: o, store: s, log: log}
}

// IsPremium asks the contract for the premium flag. ok is false when the
// read failed and the wallet was treated as free tier.
func (p *PremiumService) IsPremium(ctx context.Context, wallet string) (premium, ok bool) {
	active, err := p.oracle.IsPremiumActive(ctx, wallet)
	if err != nil {
		p.log.Warn().Err(err).Str("wallet", wallet).Msg("premium check failed; treating wallet as free tier")
		return false, false
	}
	return active, true
}

// Status reads the flag and expiry without touching the store.
func (p *PremiumService) Status(ctx context.Context, wallet string) model.PremiumStatus {
	st := model.PremiumStatus{WalletAddress: wallet}

	active, ok := p.IsPremium(ctx, wallet)
	st.IsPremium = active
	st.OracleAvailable = ok

	exp, err := p.oracle.Expiry(ctx, wallet)
	if err != nil {
		p.log.Warn().Err(err).Str("wallet", wallet).Msg("expiry read failed")
		st.OracleAvailable = false
		exp = 0
	}
	st.ExpiryTimestamp = exp
	return st
}

// Verify is Status plus a best-effort mirror of a clean read into the
// premium record. Mirror failures are logged only.
func (p *PremiumService) Verify(ctx context.Context, wallet string) model.PremiumStatus {
	st := p.Status(ctx, wallet)
	if !st.OracleAvailable {
		return st
	}
	if _, err := p.store.Premiums().Upsert(ctx, &model.PremiumRecord{
		WalletAddress: wallet,
		IsPremium:     st.IsPremium,
		PremiumExpiry: st.ExpiryTime(),
	}); err != nil {
		p.log.Warn().Err(err).Str("wallet", wallet).Msg("premium mirror write failed")
	}
	return st
}

// MonthlyPrice returns the subscription price in wei and whether it came
// from the contract.
func (p *PremiumService) MonthlyPrice(ctx context.Context) (*big.Int, bool) {
	price, err := p.oracle.MonthlyPrice(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("price read failed; using default")
		return new(big.Int).Set(DefaultMonthlyPriceWei), false
	}
	return price, true
}

package api

import (
	"net/http"
	"time"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api/respond"
	"github.com/danielnoveno/hackathon-hooklabai/internal/api/validate"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/services"
)

type PremiumHandler struct {
	premium *services.PremiumService
	now     func() time.Time
}

func NewPremiumHandler(p *services.PremiumService) *PremiumHandler {
	return &PremiumHandler{premium: p, now: time.Now}
}

type verifyPremiumRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type premiumStatusResponse struct {
	Success         bool       `json:"success"`
	WalletAddress   string     `json:"walletAddress"`
	IsPremium       bool       `json:"isPremium"`
	ExpiryTimestamp int64      `json:"expiryTimestamp"`
	ExpiryDate      *time.Time `json:"expiryDate"`
	ExpiryLabel     string     `json:"expiryLabel"`
	OracleAvailable bool       `json:"oracleAvailable"`
}

type priceResponse struct {
	PriceWei string `json:"priceWei"`
	Source   string `json:"source"`
}

func (h *PremiumHandler) statusBody(st model.PremiumStatus) premiumStatusResponse {
	return premiumStatusResponse{
		Success:         true,
		WalletAddress:   st.WalletAddress,
		IsPremium:       st.IsPremium,
		ExpiryTimestamp: st.ExpiryTimestamp,
		ExpiryDate:      st.ExpiryTime(),
		ExpiryLabel:     st.ExpiryLabel(h.now()),
		OracleAvailable: st.OracleAvailable,
	}
}

// Verify handles POST /api/premium/verify and mirrors a clean read.
func (h *PremiumHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyPremiumRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wallet, err := validate.Wallet(req.WalletAddress)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.statusBody(h.premium.Verify(r.Context(), wallet)))
}

// Status handles GET /api/premium/verify?walletAddress= without writing.
func (h *PremiumHandler) Status(w http.ResponseWriter, r *http.Request) {
	wallet, err := validate.Wallet(r.URL.Query().Get("walletAddress"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.statusBody(h.premium.Status(r.Context(), wallet)))
}

// Price handles GET /api/premium/price.
func (h *PremiumHandler) Price(w http.ResponseWriter, r *http.Request) {
	price, fromContract := h.premium.MonthlyPrice(r.Context())
	src := "contract"
	if !fromContract {
		src = "default"
	}
	respond.WriteJSON(w, http.StatusOK, priceResponse{PriceWei: price.String(), Source: src})
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api/respond"
	"github.com/danielnoveno/hackathon-hooklabai/internal/api/validate"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/services"
)

type QuotaHandler struct {
	wf           *services.Workflow
	subscribeURL string
}

func NewQuotaHandler(wf *services.Workflow, subscribeURL string) *QuotaHandler {
	return &QuotaHandler{wf: wf, subscribeURL: subscribeURL}
}

type consumeQuotaRequest struct {
	WalletAddress string `json:"walletAddress"`
	Topic         string `json:"topic,omitempty"`
	SelectedHook  string `json:"selectedHook,omitempty"`
}

type consumeQuotaResponse struct {
	Success          bool   `json:"success"`
	IsPremium        bool   `json:"isPremium"`
	RemainingCredits int    `json:"remainingCredits"`
	Message          string `json:"message"`
}

type quotaResponse struct {
	IsPremium        bool `json:"isPremium"`
	RemainingCredits int  `json:"remainingCredits"`
}

// ConsumeQuota handles POST /api/quota.
func (h *QuotaHandler) ConsumeQuota(w http.ResponseWriter, r *http.Request) {
	var req consumeQuotaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := validate.Wallet(req.WalletAddress); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.Topic != "" {
		if err := validate.MaxLen("topic", req.Topic, validate.MaxTopicLen); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}
	if req.SelectedHook != "" {
		if err := validate.MaxLen("selectedHook", req.SelectedHook, validate.MaxHookLen); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}

	out, err := h.wf.Consume(r.Context(), req.WalletAddress, req.Topic, req.SelectedHook)
	if errors.Is(err, model.ErrInsufficientQuota) {
		writeQuotaExhausted(w, h.subscribeURL)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("wallet", req.WalletAddress).Msg("quota consume failed")
		writeServiceError(w, err)
		return
	}

	msg := "Premium user - unlimited access"
	if !out.IsPremium {
		msg = fmt.Sprintf("Quota deducted. %d credits remaining.", out.RemainingCredits)
	}
	respond.WriteJSON(w, http.StatusOK, consumeQuotaResponse{
		Success:          true,
		IsPremium:        out.IsPremium,
		RemainingCredits: out.RemainingCredits,
		Message:          msg,
	})
}

// GetQuota handles GET /api/quota?walletAddress=.
func (h *QuotaHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("walletAddress")
	if _, err := validate.Wallet(wallet); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	view, err := h.wf.Quota(r.Context(), wallet)
	if err != nil {
		log.Error().Err(err).Str("wallet", wallet).Msg("quota read failed")
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, quotaResponse{IsPremium: view.IsPremium, RemainingCredits: view.RemainingCredits})
}

package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api/respond"
	"github.com/danielnoveno/hackathon-hooklabai/internal/api/validate"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/services"
)

const defaultUsageLimit = 20

type UsageHandler struct {
	ledger *services.QuotaLedger
}

func NewUsageHandler(l *services.QuotaLedger) *UsageHandler {
	return &UsageHandler{ledger: l}
}

type usageResponse struct {
	WalletAddress string            `json:"walletAddress"`
	Logs          []*model.UsageLog `json:"logs"`
	Count         int               `json:"count"`
}

// ListUsage handles GET /api/usage?walletAddress=&limit=.
func (h *UsageHandler) ListUsage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	wallet, err := validate.Wallet(q.Get("walletAddress"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	limit, err := validate.Limit(q.Get("limit"), defaultUsageLimit)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	logs, err := h.ledger.History(r.Context(), wallet, limit)
	if err != nil {
		log.Error().Err(err).Str("wallet", wallet).Msg("usage history read failed")
		writeServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []*model.UsageLog{}
	}
	respond.WriteJSON(w, http.StatusOK, usageResponse{WalletAddress: wallet, Logs: logs, Count: len(logs)})
}

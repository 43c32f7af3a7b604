package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api/respond"
	"github.com/danielnoveno/hackathon-hooklabai/internal/api/validate"
	"github.com/danielnoveno/hackathon-hooklabai/internal/hooks"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
	"github.com/danielnoveno/hackathon-hooklabai/internal/services"
)

// QuotaExhaustedResponse is the 403 body sent when a free wallet has no credits left.
type QuotaExhaustedResponse struct {
	Error            string `json:"error"`
	IsPremium        bool   `json:"isPremium"`
	RemainingCredits int    `json:"remainingCredits"`
	Message          string `json:"message"`
	SubscribeURL     string `json:"subscribeUrl"`
}

func writeQuotaExhausted(w http.ResponseWriter, subscribeURL string) {
	quotaRefusedTotal.Inc()
	respond.WriteJSON(w, http.StatusForbidden, QuotaExhaustedResponse{
		Error:        "Insufficient quota",
		Message:      "Subscribe to get unlimited access",
		SubscribeURL: subscribeURL,
	})
}

// GenerationHandler serves the two blind-selection phases.
type GenerationHandler struct {
	wf           *services.Workflow
	subscribeURL string
}

func NewGenerationHandler(wf *services.Workflow, subscribeURL string) *GenerationHandler {
	return &GenerationHandler{wf: wf, subscribeURL: subscribeURL}
}

type generateHooksRequest struct {
	Topic string `json:"topic"`
}

type generateHooksResponse struct {
	Success            bool                  `json:"success"`
	Hooks              []model.HookCandidate `json:"hooks"`
	Source             hooks.Source          `json:"source"`
	TrendDataAvailable bool                  `json:"trendDataAvailable"`
}

// GenerateHooks handles POST /api/hooks/generate. No credit is spent.
func (h *GenerationHandler) GenerateHooks(w http.ResponseWriter, r *http.Request) {
	var req generateHooksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Topic(req.Topic); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.wf.Hooks(r.Context(), req.Topic)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	hooksGeneratedTotal.WithLabelValues(string(out.Source)).Inc()
	respond.WriteJSON(w, http.StatusOK, generateHooksResponse{
		Success:            true,
		Hooks:              out.Hooks,
		Source:             out.Source,
		TrendDataAvailable: out.TrendDataAvailable,
	})
}

type generateContentRequest struct {
	WalletAddress string `json:"walletAddress"`
	Topic         string `json:"topic"`
	SelectedHook  string `json:"selectedHook"`
}

type generateContentResponse struct {
	Success          bool         `json:"success"`
	Hook             string       `json:"hook"`
	FullContent      string       `json:"fullContent"`
	Source           hooks.Source `json:"source"`
	IsPremium        bool         `json:"isPremium"`
	RemainingCredits int          `json:"remainingCredits"`
	UsageLogged      bool         `json:"usageLogged"`
}

// GenerateContent handles POST /api/content/generate: gate, then reveal.
func (h *GenerationHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req generateContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := validate.Wallet(req.WalletAddress); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Topic(req.Topic); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.SelectedHook(req.SelectedHook); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.wf.Select(r.Context(), services.SelectRequest{
		Wallet: req.WalletAddress,
		Topic:  req.Topic,
		Hook:   req.SelectedHook,
	})
	if errors.Is(err, model.ErrInsufficientQuota) {
		writeQuotaExhausted(w, h.subscribeURL)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("wallet", req.WalletAddress).Msg("content generation failed")
		writeServiceError(w, err)
		return
	}

	contentRevealedTotal.WithLabelValues(string(out.Source), tier(out.IsPremium)).Inc()
	respond.WriteJSON(w, http.StatusOK, generateContentResponse{
		Success:          true,
		Hook:             out.Content.Hook,
		FullContent:      out.Content.FullContent,
		Source:           out.Source,
		IsPremium:        out.IsPremium,
		RemainingCredits: out.RemainingCredits,
		UsageLogged:      out.UsageLogged,
	})
}

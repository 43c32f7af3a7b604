// Package api exposes the hook generation workflow over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api/recovery"
	"github.com/danielnoveno/hackathon-hooklabai/internal/services"
)

// Deps are the services the router wires into handlers.
type Deps struct {
	Workflow     *services.Workflow
	Premium      *services.PremiumService
	Ledger       *services.QuotaLedger
	Health       HealthSource
	SubscribeURL string
}

// NewRouter builds the HTTP routes.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware)

	gen := NewGenerationHandler(d.Workflow, d.SubscribeURL)
	quota := NewQuotaHandler(d.Workflow, d.SubscribeURL)
	premium := NewPremiumHandler(d.Premium)
	usage := NewUsageHandler(d.Ledger)
	health := NewHealthHandler(d.Health)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/health", health.CheckHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/hooks/generate", gen.GenerateHooks).Methods(http.MethodPost)
	r.HandleFunc("/api/content/generate", gen.GenerateContent).Methods(http.MethodPost)

	r.HandleFunc("/api/quota", quota.ConsumeQuota).Methods(http.MethodPost)
	r.HandleFunc("/api/quota", quota.GetQuota).Methods(http.MethodGet)

	r.HandleFunc("/api/premium/verify", premium.Verify).Methods(http.MethodPost)
	r.HandleFunc("/api/premium/verify", premium.Status).Methods(http.MethodGet)
	r.HandleFunc("/api/premium/price", premium.Price).Methods(http.MethodGet)

	r.HandleFunc("/api/usage", usage.ListUsage).Methods(http.MethodGet)

	return r
}

// Package factory builds the service's dependencies from config.
package factory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/danielnoveno/hackathon-hooklabai/internal/chain"
	"github.com/danielnoveno/hackathon-hooklabai/internal/config"
	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
	"github.com/danielnoveno/hackathon-hooklabai/internal/llm/gemini"
	"github.com/danielnoveno/hackathon-hooklabai/internal/llm/openai"
	"github.com/danielnoveno/hackathon-hooklabai/internal/trends"
)

// NewModel creates the generative model client named by cfg.LLMProvider.
// The provider is validated by config.ResolveDefaults; anything but openai
// selects Gemini.
func NewModel(cfg *config.Config, log zerolog.Logger) llm.Model {
	if cfg.LLMProvider == "openai" {
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("HOOKLAB_OPENAI_API_KEY is empty; generation will use templates")
		}
		return openai.New(openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			Timeout:    cfg.UpstreamTimeout(),
			MaxRetries: 1,
		})
	}

	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("HOOKLAB_GEMINI_API_KEY is empty; generation will use templates")
	}
	return gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.UpstreamTimeout())
}

// NewOracle creates the subscription contract reader and launches an async
// price read so a misconfigured contract shows up in the startup logs.
func NewOracle(ctx context.Context, cfg *config.Config, log zerolog.Logger) *chain.Oracle {
	o := chain.NewOracle(cfg.ChainRPCURL, cfg.SubscriptionContract, cfg.UpstreamTimeout())
	if cfg.SubscriptionContract == "" {
		log.Warn().Msg("HOOKLAB_SUBSCRIPTION_CONTRACT is empty; every wallet is free tier")
		return o
	}

	go func() {
		warmupCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout(cfg))
		defer cancel()

		if price, err := o.MonthlyPrice(warmupCtx); err != nil {
			log.Warn().Err(err).Str("rpc_url", cfg.ChainRPCURL).Str("contract", cfg.SubscriptionContract).
				Msg("subscription contract warmup failed")
		} else {
			log.Debug().Str("price_wei", price.String()).Msg("subscription contract warmup completed")
		}
	}()
	return o
}

// NewTrendService wires the feed with the optional Redis cache. The cache is
// nil when HOOKLAB_REDIS_ADDR is empty; the caller closes it otherwise.
func NewTrendService(cfg *config.Config, log zerolog.Logger) (*trends.Service, *trends.RedisCache) {
	feed := trends.NewNeynarFeed(cfg.NeynarBaseURL, cfg.NeynarAPIKey, cfg.UpstreamTimeout())
	if cfg.NeynarAPIKey == "" {
		log.Warn().Msg("HOOKLAB_NEYNAR_API_KEY is empty; trend summaries will be unavailable")
	}

	if cfg.RedisAddr == "" {
		return trends.NewService(feed, nil, 0, cfg.TrendChannel, cfg.TrendLimit, log), nil
	}
	cache := trends.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	return trends.NewService(feed, cache, cfg.TrendCacheTTL(), cfg.TrendChannel, cfg.TrendLimit, log), cache
}

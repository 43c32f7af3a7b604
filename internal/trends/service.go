package trends

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service produces the trend summary fed into prompts.
type Service struct {
	feed    Feed
	cache   Cache // optional
	ttl     time.Duration
	channel string
	limit   int
	log     zerolog.Logger
}

// NewService builds a Service. cache may be nil.
func NewService(feed Feed, cache Cache, ttl time.Duration, channel string, limit int, log zerolog.Logger) *Service {
	if channel == "" {
		channel = "base"
	}
	if limit <= 0 {
		limit = 50
	}
	return &Service{feed: feed, cache: cache, ttl: ttl, channel: channel, limit: limit, log: log}
}

// Summary returns the digest for the configured channel. available is false
// when the feed could not be read; the summary is then UnavailableSummary.
func (s *Service) Summary(ctx context.Context) (string, bool) {
	key := fmt.Sprintf("%s:%d", s.channel, s.limit)
	if s.cache != nil {
		v, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("trend cache read failed")
		} else if ok {
			return v, true
		}
	}

	posts, err := s.feed.FetchChannelPosts(ctx, s.channel, s.limit)
	if err != nil {
		s.log.Warn().Err(err).Str("channel", s.channel).Msg("trend feed unavailable")
		return UnavailableSummary, false
	}
	summary := Summarize(posts)

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("trend cache write failed")
		}
	}
	return summary, true
}

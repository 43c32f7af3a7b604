package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

const DefaultNeynarBaseURL = "https://api.neynar.com"

// Feed returns recent posts of a channel.
type Feed interface {
	FetchChannelPosts(ctx context.Context, channel string, limit int) ([]model.Post, error)
}

// NeynarFeed reads Farcaster channel feeds from the Neynar v2 API.
type NeynarFeed struct {
	client *resty.Client
}

func NewNeynarFeed(baseURL, apiKey string, timeout time.Duration) *NeynarFeed {
	if baseURL == "" {
		baseURL = DefaultNeynarBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("api_key", apiKey).
		SetHeader("x-api-key", apiKey).
		SetTimeout(timeout)
	return &NeynarFeed{client: c}
}

// Wire shapes. Every nested object is optional upstream.
type castAuthor struct {
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	FollowerCount *int   `json:"follower_count"`
}

type cast struct {
	Hash      string      `json:"hash"`
	Text      string      `json:"text"`
	Author    *castAuthor `json:"author"`
	Reactions *struct {
		LikesCount   int `json:"likes_count"`
		RecastsCount int `json:"recasts_count"`
	} `json:"reactions"`
	Replies *struct {
		Count int `json:"count"`
	} `json:"replies"`
	Timestamp string `json:"timestamp"`
}

type feedResponse struct {
	Casts []cast `json:"casts"`
}

func (f *NeynarFeed) FetchChannelPosts(ctx context.Context, channel string, limit int) ([]model.Post, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"channel_ids":  channel,
			"limit":        fmt.Sprint(limit),
			"with_recasts": "false",
		}).
		Get("/v2/farcaster/feed/channels")
	if err != nil {
		return nil, fmt.Errorf("neynar request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("neynar status %d", resp.StatusCode())
	}
	var fr feedResponse
	if err := json.Unmarshal(resp.Body(), &fr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return normalizeCasts(fr.Casts), nil
}

// normalizeCasts drops casts without text and fills defaults for missing counters.
func normalizeCasts(casts []cast) []model.Post {
	out := make([]model.Post, 0, len(casts))
	for _, c := range casts {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		p := model.Post{Hash: c.Hash, Text: c.Text, Author: model.Author{FollowerCount: 1}}
		if c.Author != nil {
			p.Author.Username = c.Author.Username
			p.Author.DisplayName = c.Author.DisplayName
			if c.Author.FollowerCount != nil && *c.Author.FollowerCount > 0 {
				p.Author.FollowerCount = *c.Author.FollowerCount
			}
		}
		if c.Reactions != nil {
			p.Likes = nonNegative(c.Reactions.LikesCount)
			p.Recasts = nonNegative(c.Reactions.RecastsCount)
		}
		if c.Replies != nil {
			p.Replies = nonNegative(c.Replies.Count)
		}
		if ts, err := time.Parse(time.RFC3339, c.Timestamp); err == nil {
			p.Timestamp = ts
		}
		out = append(out, p)
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

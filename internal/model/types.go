package model

import "time"

// Quota is the free-tier credit balance of one wallet.
type Quota struct {
	WalletAddress    string    `json:"walletAddress"`
	RemainingCredits int       `json:"remainingCredits"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PremiumRecord mirrors the last successful subscription read for a wallet.
// It is advisory only; gating always asks the chain.
type PremiumRecord struct {
	WalletAddress string     `json:"walletAddress"`
	IsPremium     bool       `json:"isPremium"`
	PremiumExpiry *time.Time `json:"premiumExpiry,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// UsageLog is one append-only record of a revealed hook.
type UsageLog struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	Topic         string    `json:"topic"`
	SelectedHook  string    `json:"selectedHook"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HookCandidate is a teaser line offered during blind selection.
type HookCandidate struct {
	ID   string `json:"id"`
	Hook string `json:"hook"`
}

// GeneratedContent is the full post revealed after a credited selection.
type GeneratedContent struct {
	Hook        string `json:"hook"`
	FullContent string `json:"fullContent"`
}

// Author of a feed post.
type Author struct {
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	FollowerCount int    `json:"followerCount"`
}

// Post is a social feed item with its engagement counters.
type Post struct {
	Hash      string    `json:"hash"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	Likes     int       `json:"likes"`
	Recasts   int       `json:"recasts"`
	Replies   int       `json:"replies"`
	Timestamp time.Time `json:"timestamp"`
}

// PremiumStatus is the result of a subscription check.
type PremiumStatus struct {
	WalletAddress   string `json:"walletAddress"`
	IsPremium       bool   `json:"isPremium"`
	ExpiryTimestamp int64  `json:"expiryTimestamp"`
	// False when the chain could not be read and the status defaulted to free tier.
	OracleAvailable bool `json:"oracleAvailable"`
}

// ExpiryLabel renders the expiry for display relative to now.
func (p PremiumStatus) ExpiryLabel(now time.Time) string {
	if p.ExpiryTimestamp == 0 {
		return "Never subscribed"
	}
	exp := time.Unix(p.ExpiryTimestamp, 0).UTC()
	if exp.Before(now) {
		return "Expired"
	}
	return exp.Format("January 2, 2006")
}

// ExpiryTime returns the expiry as a time, nil when never subscribed.
func (p PremiumStatus) ExpiryTime() *time.Time {
	if p.ExpiryTimestamp == 0 {
		return nil
	}
	t := time.Unix(p.ExpiryTimestamp, 0).UTC()
	return &t
}

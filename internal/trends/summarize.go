// Package trends reduces a social feed to a ranked digest of high-engagement
// phrasing, used only as prompt context.
package trends

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

const (
	maxHookLen     = 120
	keepPatterns   = 20
	reportPatterns = 10

	// NoPatternsSummary is used when no post has any engagement.
	NoPatternsSummary = "No trending patterns found. Generate generic crypto-native hooks."
	// UnavailableSummary is used when the feed could not be read.
	UnavailableSummary = "Unable to fetch trend data. Generate generic hooks."
)

var sentenceEnd = regexp.MustCompile(`[.!?]\s`)

// Pattern is a post reduced to its opening line and engagement score.
type Pattern struct {
	Hook       string  `json:"hook"`
	Strength   float64 `json:"strength"`
	Engagement int     `json:"engagement"`
}

// ExtractHook returns the first sentence of text, or its first 120
// characters plus "..." when that sentence is longer.
func ExtractHook(text string) string {
	first := sentenceEnd.Split(text, 2)[0]
	if utf8.RuneCountInString(first) <= maxHookLen {
		return first
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:maxHookLen])) + "..."
}

func engagement(p model.Post) int { return p.Likes + p.Recasts + p.Replies }

// Strength is engagement per follower; follower counts below one count as one.
func Strength(p model.Post) float64 {
	followers := p.Author.FollowerCount
	if followers < 1 {
		followers = 1
	}
	return float64(engagement(p)) / float64(followers)
}

// ExtractPatterns drops zero-engagement posts and returns the 20 strongest.
func ExtractPatterns(posts []model.Post) []Pattern {
	out := make([]Pattern, 0, len(posts))
	for _, p := range posts {
		e := engagement(p)
		if e <= 0 {
			continue
		}
		out = append(out, Pattern{Hook: ExtractHook(p.Text), Strength: Strength(p), Engagement: e})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	if len(out) > keepPatterns {
		out = out[:keepPatterns]
	}
	return out
}

// Summarize formats the ten strongest patterns for inclusion in a prompt.
func Summarize(posts []model.Post) string {
	patterns := ExtractPatterns(posts)
	if len(patterns) == 0 {
		return NoPatternsSummary
	}
	if len(patterns) > reportPatterns {
		patterns = patterns[:reportPatterns]
	}

	var b strings.Builder
	b.WriteString("Top performing hook patterns from Base channel:\n")
	for i, p := range patterns {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. \"%s\" (strength: %.3f)", i+1, p.Hook, p.Strength)
	}
	b.WriteString("\n\nUse these patterns as inspiration for structure and tone, but generate original content.")
	return b.String()
}

package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

// MaxContentLen is the Farcaster cast limit in characters.
const MaxContentLen = 320

const ellipsis = "..."

// Expander turns a selected hook into a full post.
type Expander struct {
	model  llm.Model
	params llm.Params
	log    zerolog.Logger
}

func NewExpander(m llm.Model, log zerolog.Logger) *Expander {
	return &Expander{model: m, params: llm.DefaultParams(), log: log}
}

// Expand asks the model for the full post and cuts it to MaxContentLen.
func (e *Expander) Expand(ctx context.Context, hook, topic, trendSummary string) (string, error) {
	text, err := e.model.Generate(ctx, contentPrompt(hook, topic, trendSummary), e.params)
	if err != nil {
		return "", fmt.Errorf("expand hook: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("expand hook: empty content")
	}
	return Truncate(text), nil
}

// ExpandContent never fails: on model error the templated post is returned.
func (e *Expander) ExpandContent(ctx context.Context, hook, topic, trendSummary string) Result[model.GeneratedContent] {
	full, err := e.Expand(ctx, hook, topic, trendSummary)
	if err != nil {
		e.log.Warn().Err(err).Str("topic", topic).Str("source", string(SourceFallback)).Msg("content expansion fell back to template")
		return Fallback(model.GeneratedContent{Hook: hook, FullContent: Truncate(FallbackContent(hook, topic))}, err)
	}
	return Generated(model.GeneratedContent{Hook: hook, FullContent: full})
}

// FallbackContent is the hook followed by a fixed sentence about topic.
func FallbackContent(hook, topic string) string {
	return fmt.Sprintf("%s\n\nThe Base ecosystem is evolving fast, and %s is at the center of it. Don't sleep on this opportunity.", hook, topic)
}

// Truncate cuts s to MaxContentLen runes, ending in "..." when shortened.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxContentLen {
		return s
	}
	return string(r[:MaxContentLen-len(ellipsis)]) + ellipsis
}

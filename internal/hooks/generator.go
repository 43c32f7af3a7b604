// Package hooks turns a topic into teaser hooks and a selected hook into a full post.
package hooks

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

const (
	MaxHookLen = 120
	maxHooks   = 5
)

var (
	ordinalLine   = regexp.MustCompile(`^\d+\.`)
	ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)
)

// Generator produces hook candidates with a generative model.
type Generator struct {
	model  llm.Model
	params llm.Params
	log    zerolog.Logger
}

func NewGenerator(m llm.Model, log zerolog.Logger) *Generator {
	return &Generator{model: m, params: llm.DefaultParams(), log: log}
}

// GenerateHooks asks the model for numbered hooks and parses them. It fails
// with model.ErrNoValidHooks when nothing usable comes back.
func (g *Generator) GenerateHooks(ctx context.Context, topic, trendSummary string) ([]model.HookCandidate, error) {
	text, err := g.model.Generate(ctx, hookPrompt(topic, trendSummary), g.params)
	if err != nil {
		return nil, fmt.Errorf("generate hooks: %w", err)
	}
	lines := ParseHooks(text)
	if len(lines) == 0 {
		return nil, model.ErrNoValidHooks
	}
	out := make([]model.HookCandidate, len(lines))
	for i, h := range lines {
		out[i] = model.HookCandidate{ID: "hook-" + uuid.NewString(), Hook: h}
	}
	return out, nil
}

// Generate never fails: model errors and unparsable output yield FallbackHooks.
func (g *Generator) Generate(ctx context.Context, topic, trendSummary string) Result[[]model.HookCandidate] {
	hooks, err := g.GenerateHooks(ctx, topic, trendSummary)
	if err != nil {
		g.log.Warn().Err(err).Str("topic", topic).Str("source", string(SourceFallback)).Msg("hook generation fell back to templates")
		return Fallback(FallbackHooks(topic), err)
	}
	return Generated(hooks)
}

// ParseHooks keeps numbered lines, strips the ordinal and drops empty or
// over-long entries. At most five hooks are returned.
func ParseHooks(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !ordinalLine.MatchString(line) {
			continue
		}
		h := strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, ""))
		if h == "" || utf8.RuneCountInString(h) > MaxHookLen {
			continue
		}
		out = append(out, h)
		if len(out) == maxHooks {
			break
		}
	}
	return out
}

// FallbackHooks returns five fixed templates built around topic.
func FallbackHooks(topic string) []model.HookCandidate {
	templates := []string{
		fmt.Sprintf("%s is heating up on Base 🔥", topic),
		fmt.Sprintf("Just discovered something wild about %s", topic),
		fmt.Sprintf("Why %s matters for the Base ecosystem", topic),
		fmt.Sprintf("Hot take: %s is underrated", topic),
		fmt.Sprintf("The %s meta is shifting", topic),
	}
	out := make([]model.HookCandidate, len(templates))
	for i, h := range templates {
		out[i] = model.HookCandidate{ID: fmt.Sprintf("fallback-%d", i), Hook: h}
	}
	return out
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danielnoveno/hackathon-hooklabai/internal/hooks"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

// State is a step of one gated generation run.
type State string

const (
	StateCheckingPremium State = "checking_premium"
	StatePremiumPath     State = "premium_path"
	StateQuotaPath       State = "quota_path"
	StateGenerating      State = "generating"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Unlimited is the balance reported for premium wallets.
const Unlimited = -1

// TrendSource provides prompt context. available is false when the feed was down.
type TrendSource interface {
	Summary(ctx context.Context) (summary string, available bool)
}

// Workflow runs blind selection: hooks are free to browse, revealing the
// full post costs a credit unless the wallet is premium.
type Workflow struct {
	premium  *PremiumService
	ledger   *QuotaLedger
	gen      *hooks.Generator
	expander *hooks.Expander
	trends   TrendSource
	log      zerolog.Logger
}

func NewWorkflow(premium *PremiumService, ledger *QuotaLedger, gen *hooks.Generator, expander *hooks.Expander, trends TrendSource, log zerolog.Logger) *Workflow {
	return &Workflow{premium: premium, ledger: ledger, gen: gen, expander: expander, trends: trends, log: log}
}

type HooksOutcome struct {
	Hooks              []model.HookCandidate
	Source             hooks.Source
	TrendDataAvailable bool
}

type SelectRequest struct {
	Wallet string
	Topic  string
	Hook   string
}

type SelectOutcome struct {
	Content          model.GeneratedContent
	Source           hooks.Source
	IsPremium        bool
	RemainingCredits int
	// False when the usage record could not be written; the reveal still stands.
	UsageLogged bool
	Trace       []State
}

type ConsumeOutcome struct {
	IsPremium        bool
	RemainingCredits int
	UsageLogged      bool
	Trace            []State
}

type QuotaView struct {
	IsPremium        bool
	RemainingCredits int
}

// Hooks is the ungated first phase: trend context plus hook candidates.
func (w *Workflow) Hooks(ctx context.Context, topic string) (*HooksOutcome, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, model.NewValidationError("topic", "required")
	}
	summary, available := w.trends.Summary(ctx)
	res := w.gen.Generate(ctx, topic, summary)
	return &HooksOutcome{Hooks: res.Value, Source: res.Source, TrendDataAvailable: available}, nil
}

// Select gates and reveals the full post for a chosen hook. When the gate
// refuses, the returned outcome still carries the trace and err wraps
// model.ErrInsufficientQuota.
func (w *Workflow) Select(ctx context.Context, req SelectRequest) (*SelectOutcome, error) {
	wallet, topic, hook, err := validateSelection(req.Wallet, req.Topic, req.Hook, true)
	if err != nil {
		return nil, err
	}

	run := &SelectOutcome{}
	premium, remaining, err := w.gate(ctx, wallet, &run.Trace)
	if err != nil {
		return run, err
	}
	run.IsPremium = premium
	run.RemainingCredits = remaining

	run.Trace = append(run.Trace, StateGenerating)
	summary, _ := w.trends.Summary(ctx)
	res := w.expander.ExpandContent(ctx, hook, topic, summary)
	run.Content = res.Value
	run.Source = res.Source

	run.UsageLogged = w.logUsage(ctx, wallet, topic, hook)
	run.Trace = append(run.Trace, StateDone)
	return run, nil
}

// Consume applies the gate without generating anything. Usage is logged
// when both topic and hook are given.
func (w *Workflow) Consume(ctx context.Context, wallet, topic, hook string) (*ConsumeOutcome, error) {
	wallet, topic, hook, err := validateSelection(wallet, topic, hook, false)
	if err != nil {
		return nil, err
	}

	run := &ConsumeOutcome{}
	premium, remaining, err := w.gate(ctx, wallet, &run.Trace)
	if err != nil {
		return run, err
	}
	run.IsPremium = premium
	run.RemainingCredits = remaining
	if topic != "" && hook != "" {
		run.UsageLogged = w.logUsage(ctx, wallet, topic, hook)
	}
	run.Trace = append(run.Trace, StateDone)
	return run, nil
}

// Quota reports the balance; premium wallets get Unlimited and no record.
func (w *Workflow) Quota(ctx context.Context, wallet string) (*QuotaView, error) {
	wallet, err := model.ValidateWallet(wallet)
	if err != nil {
		return nil, err
	}
	if premium, _ := w.premium.IsPremium(ctx, wallet); premium {
		return &QuotaView{IsPremium: true, RemainingCredits: Unlimited}, nil
	}
	left, err := w.ledger.GetQuota(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &QuotaView{RemainingCredits: left}, nil
}

// gate walks CheckingPremium then PremiumPath or QuotaPath.
func (w *Workflow) gate(ctx context.Context, wallet string, trace *[]State) (bool, int, error) {
	*trace = append(*trace, StateCheckingPremium)
	premium, _ := w.premium.IsPremium(ctx, wallet)
	if premium {
		*trace = append(*trace, StatePremiumPath)
		return true, Unlimited, nil
	}

	*trace = append(*trace, StateQuotaPath)
	left, err := w.ledger.Deduct(ctx, wallet)
	if err != nil {
		*trace = append(*trace, StateFailed)
		if errors.Is(err, model.ErrInsufficientQuota) {
			w.log.Info().Str("wallet", wallet).Msg("quota exhausted")
		} else {
			w.log.Error().Err(err).Str("wallet", wallet).Msg("quota deduction failed")
		}
		return false, 0, err
	}
	return false, left, nil
}

func (w *Workflow) logUsage(ctx context.Context, wallet, topic, hook string) bool {
	if err := w.ledger.LogUsage(ctx, wallet, topic, hook); err != nil {
		w.log.Warn().Err(err).Str("wallet", wallet).Str("topic", topic).Msg("usage log write failed")
		return false
	}
	return true
}

func validateSelection(wallet, topic, hook string, required bool) (string, string, string, error) {
	wallet, err := model.ValidateWallet(wallet)
	if err != nil {
		return "", "", "", err
	}
	topic = strings.TrimSpace(topic)
	hook = strings.TrimSpace(hook)
	if required {
		if topic == "" {
			return "", "", "", model.NewValidationError("topic", "required")
		}
		if hook == "" {
			return "", "", "", model.NewValidationError("selectedHook", "required")
		}
	}
	return wallet, topic, hook, nil
}

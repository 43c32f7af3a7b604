package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type clientFunc func() *apiClient

func runAndPrint(cmd *cobra.Command, call func() ([]byte, error)) error {
	body, err := call()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), body)
}

func newQuotaCmd(client clientFunc) *cobra.Command {
	quotaCmd := &cobra.Command{Use: "quota", Short: "Free-tier credit operations"}

	getCmd := &cobra.Command{
		Use:   "get WALLET",
		Short: "Show remaining credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAndPrint(cmd, func() ([]byte, error) {
				return client().get("/api/quota", map[string]string{"walletAddress": args[0]})
			})
		},
	}

	var topic, hook string
	consumeCmd := &cobra.Command{
		Use:   "consume WALLET",
		Short: "Spend one credit (no-op for premium wallets)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"walletAddress": args[0]}
			if topic != "" {
				payload["topic"] = topic
			}
			if hook != "" {
				payload["selectedHook"] = hook
			}
			return runAndPrint(cmd, func() ([]byte, error) { return client().postJSON("/api/quota", payload) })
		},
	}
	consumeCmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic to record in the usage log")
	consumeCmd.Flags().StringVar(&hook, "hook", "", "Selected hook to record in the usage log")

	quotaCmd.AddCommand(getCmd, consumeCmd)
	return quotaCmd
}

func newPremiumCmd(client clientFunc) *cobra.Command {
	premiumCmd := &cobra.Command{Use: "premium", Short: "Subscription status"}

	premiumCmd.AddCommand(
		&cobra.Command{
			Use:   "verify WALLET",
			Short: "Read the subscription from the contract and record it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAndPrint(cmd, func() ([]byte, error) {
					return client().postJSON("/api/premium/verify", map[string]string{"walletAddress": args[0]})
				})
			},
		},
		&cobra.Command{
			Use:   "status WALLET",
			Short: "Read the subscription without recording it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAndPrint(cmd, func() ([]byte, error) {
					return client().get("/api/premium/verify", map[string]string{"walletAddress": args[0]})
				})
			},
		},
		&cobra.Command{
			Use:   "price",
			Short: "Show the monthly subscription price in wei",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAndPrint(cmd, func() ([]byte, error) { return client().get("/api/premium/price", nil) })
			},
		},
	)
	return premiumCmd
}

func newHooksCmd(client clientFunc) *cobra.Command {
	hooksCmd := &cobra.Command{Use: "hooks", Short: "Hook candidates"}

	var topic string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate hook candidates for a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAndPrint(cmd, func() ([]byte, error) {
				return client().postJSON("/api/hooks/generate", map[string]string{"topic": topic})
			})
		},
	}
	generateCmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic (required)")
	_ = generateCmd.MarkFlagRequired("topic")

	hooksCmd.AddCommand(generateCmd)
	return hooksCmd
}

func newContentCmd(client clientFunc) *cobra.Command {
	contentCmd := &cobra.Command{Use: "content", Short: "Full post generation"}

	var wallet, topic, hook string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Reveal the full post for a selected hook (spends a credit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"walletAddress": wallet, "topic": topic, "selectedHook": hook}
			return runAndPrint(cmd, func() ([]byte, error) { return client().postJSON("/api/content/generate", payload) })
		},
	}
	generateCmd.Flags().StringVarP(&wallet, "wallet", "w", "", "Wallet address (required)")
	generateCmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic (required)")
	generateCmd.Flags().StringVar(&hook, "hook", "", "Selected hook (required)")
	for _, f := range []string{"wallet", "topic", "hook"} {
		_ = generateCmd.MarkFlagRequired(f)
	}

	contentCmd.AddCommand(generateCmd)
	return contentCmd
}

func newUsageCmd(client clientFunc) *cobra.Command {
	usageCmd := &cobra.Command{Use: "usage", Short: "Usage history"}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list WALLET",
		Short: "List recent usage log entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive")
			}
			return runAndPrint(cmd, func() ([]byte, error) {
				return client().get("/api/usage", map[string]string{
					"walletAddress": args[0],
					"limit":         strconv.Itoa(limit),
				})
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")

	usageCmd.AddCommand(listCmd)
	return usageCmd
}

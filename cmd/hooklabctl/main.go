package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var apiURL string
	root := &cobra.Command{
		Use:           "hooklabctl",
		Short:         "CLI client for the hooklab REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&apiURL, "api", "a", "http://localhost:8080", "Hooklab service base URL")

	client := func() *apiClient { return newAPIClient(apiURL) }
	root.AddCommand(
		newQuotaCmd(client),
		newPremiumCmd(client),
		newHooksCmd(client),
		newContentCmd(client),
		newUsageCmd(client),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

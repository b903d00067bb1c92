package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ragtools/internal/metrics"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run a web search and print the flattened results",
	Long: `The search command sends the query to Tavily and prints one line per result.
Without a configured API key it prints the disabled message.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	metrics.RegisterSearchMetrics()

	out := a.search.Search(cmd.Context(), strings.Join(args, " "))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// Package cmd defines and implements the CLI commands for the wikicrawler
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikicrawler",
		Short: "A resumable breadth-first crawler for a single wiki site.",
		Long: `wikicrawler walks a wiki site breadth-first from a seed URL, keeps the
pages its classifier accepts, and checkpoints its frontier so an
interrupted crawl resumes where it left off instead of starting over.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults and env vars apply otherwise)")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

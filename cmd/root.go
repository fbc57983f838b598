// Package cmd defines and implements the CLI commands for the recipecrawler
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "recipecrawler",
		Short: "Crawls recipe pages into a property graph.",
		Long: `recipecrawler reads a list of recipe page URLs, extracts their
schema.org Recipe JSON-LD and writes recipes, authors, images and the
rest of the recipe graph to Neo4j or Memgraph. Re-running the same list
skips pages that were already ingested.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	cmd.AddCommand(newCrawlCmd(&cfgFile))
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "recipecrawler:", err)
		os.Exit(1)
	}
}

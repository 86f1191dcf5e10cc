// Command benchmark runs the two-pass nearest-neighbor benchmark against a
// flat vector data/query file pair from the command line, the direct
// successor of the original tool's `--dataFile`/`--queryFile` CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Nearest-neighbor method benchmark runner",
	Long: `benchmark drives the two-pass nearest-neighbor evaluation protocol
against a data/query file pair: pass 1 measures parallel search efficiency,
pass 2 measures search effectiveness against an exhaustive gold standard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("benchmark %s (%s)\n", version, commit)
	},
}

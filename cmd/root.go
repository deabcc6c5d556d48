// Package cmd provides the command-line interface for cachereplay.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachereplay",
	Short: "Cachereplay estimates cache hit rates by replaying memory access logs.",
	Long: `Cachereplay replays a recorded sequence of memory accesses against a ` +
		`simulated three-level cache hierarchy, with one private L1 cache per ` +
		`thread and shared L2 and L3 caches, and reports the hits and misses ` +
		`observed at each level.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

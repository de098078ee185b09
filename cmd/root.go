// Package cmd implements the command-line entry points for nanokv,
// structured the way the pack's packet-analysis repo structures its own
// cmd/ package: one file per subcommand, package-level *cobra.Command
// vars wired together in init().
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nanokv",
	Short: "nanokv is a single-threaded, zero-copy in-memory key-value server",
	Long: `nanokv speaks a small subset of the RESP protocol over TCP.

It holds its keyspace entirely in memory behind a bump allocator with no
per-key free, serving all connections from a single epoll event-loop
goroutine.`,
}

// Execute runs the root command, exiting the process with status 1 on
// error the way a cobra CLI conventionally reports failures.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version/gitHash/buildTime are set via -ldflags at build time, the
// same package-level var + ldflags pattern the pack's packet-analysis
// repo uses for its own buildinfo.
var (
	version   = "dev"
	gitHash   = "unknown"
	buildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nanokv %s (commit %s, built %s)\n", version, gitHash, buildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

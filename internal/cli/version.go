package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information - can be set during build with ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information for resumeparser",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "resumeparser version %s\n", Version)
		_, _ = fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
		_, _ = fmt.Fprintf(out, "Build date: %s\n", BuildDate)
	},
}

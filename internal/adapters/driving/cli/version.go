package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("tgindex version %s\n", version)
		if verbose {
			cmd.Printf("  go:       %s\n", runtime.Version())
			cmd.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		}
	},

	Annotations: map[string]string{annotationNoServices: "true"},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

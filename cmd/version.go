package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"

	"splice.dev/pkg/splice/internal/adapter"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long: `Displays the splice build version, the Go version used to build it and the
config and lock file formats it reads and writes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			version := "unknown"

			info, ok := debug.ReadBuildInfo()
			if ok && info.Main.Version != "" {
				version = info.Main.Version
			}

			cmd.Println("splice\t\t", version)

			if ok {
				cmd.Println("go\t\t", info.GoVersion)
			}

			cmd.Println("config format\t", currentConfigVersion)
			cmd.Println("lock format\t", adapter.LockFileVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}

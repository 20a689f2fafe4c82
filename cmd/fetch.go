package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fetchParallelFlag int

// fetchCmd represents the fetch command.
var fetchCmd = newFetchCmd()

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch dependencies and pin them in the lock file",
		Long: `Download the configured maven dependencies from the mirrors into the
local cache, verify them against the lock file and record their checksums.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setupArgs()
			if err != nil {
				return err
			}

			return workflow.Fetch(cmd.Context(), args)
		},
	}

	cmd.Flags().IntVarP(&fetchParallelFlag, parallelFlagName, "p", viper.GetInt(fetchParallelConfigKey), "number of parallel downloads")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), fetchParallelConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

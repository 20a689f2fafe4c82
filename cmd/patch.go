package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"splice.dev/pkg/splice/internal/domain"
	m "splice.dev/pkg/splice/internal/model"
)

var patchParallelFlag int
var patchDiffFlag bool

// patchCmd represents the patch command.
var patchCmd = newPatchCmd()

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch [classes...]",
		Short: "Patch classes and write them to the output directory",
		Long:  patchLongDescription,
		RunE: func(cmd *cobra.Command, classes []string) error {
			args, err := setupArgs()
			if err != nil {
				return err
			}

			return workflow.Patch(cmd.Context(), domain.PatchArgs{
				SetupArgs: args,
				Classes:   classes,
				Output:    m.Path(viper.GetString(outputFlagName)),
				Diff:      patchDiffFlag,
				Parallel:  viper.GetInt(patchParallelConfigKey),
			})
		},
	}

	configurePatchFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(patchCmd)
}

func configurePatchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&patchParallelFlag, parallelFlagName, "p", viper.GetInt(patchParallelConfigKey), "number of classes patched in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), patchParallelConfigKey)
	cmd.Flags().BoolVar(&patchDiffFlag, "diff", false, "show a listing diff for every patched class")
}

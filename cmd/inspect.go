package cmd

import (
	"github.com/spf13/cobra"

	"splice.dev/pkg/splice/internal/domain"
)

var inspectPatchedFlag bool

// inspectCmd represents the inspect command.
var inspectCmd = newInspectCmd()

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <class>",
		Short: "Print a readable listing of a class",
		Long: `Print the members and instructions of a class from the search path,
optionally after the applicable mixes were merged into it.

` + classNamesHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, classes []string) error {
			args, err := setupArgs()
			if err != nil {
				return err
			}

			return workflow.Inspect(cmd.Context(), domain.InspectArgs{
				SetupArgs: args,
				Class:     classes[0],
				Patched:   inspectPatchedFlag,
				Writer:    cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().BoolVar(&inspectPatchedFlag, "patched", false, "list the class after merging its mixes")

	return cmd
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"splice.dev/pkg/splice/internal/domain"
	m "splice.dev/pkg/splice/internal/model"
)

var materializeStdoutFlag bool

// materializeCmd represents the materialize command.
var materializeCmd = newMaterializeCmd()

func newMaterializeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materialize <class>",
		Short: "Produce the patched bytes of a single class",
		Long: `Materialize one class as the loader would see it. Classes without
applicable mixes come back unchanged.

` + classNamesHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, classes []string) error {
			args, err := setupArgs()
			if err != nil {
				return err
			}

			materializeArgs := domain.MaterializeArgs{
				SetupArgs: args,
				Class:     classes[0],
				Output:    m.Path(viper.GetString(outputFlagName)),
			}

			if materializeStdoutFlag {
				materializeArgs.Output = ""
				materializeArgs.Writer = cmd.OutOrStdout()
			}

			return workflow.Materialize(cmd.Context(), materializeArgs)
		},
	}

	cmd.Flags().BoolVar(&materializeStdoutFlag, "stdout", false, "write the class bytes to standard output")

	return cmd
}

func init() {
	rootCmd.AddCommand(materializeCmd)
}

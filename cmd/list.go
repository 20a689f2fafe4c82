package cmd

import (
	"github.com/spf13/cobra"

	"splice.dev/pkg/splice/internal/controller"
	"splice.dev/pkg/splice/internal/domain"
)

var listFormatFlag string

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered mixes",
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setupArgs()
			if err != nil {
				return err
			}

			return workflow.List(cmd.Context(), domain.ListArgs{
				SetupArgs: args,
				Format:    listFormatFlag,
			})
		},
	}

	cmd.Flags().StringVarP(&listFormatFlag, "format", "f", controller.FormatTable, "output format: table or yaml")

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}

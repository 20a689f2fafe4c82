package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default splice.yaml configuration file",
		Long: `Create a splice.yaml in the current working directory holding the class
path, mixes, dependencies, mirrors and log settings currently in effect, so the
patch setup can be edited and committed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			if err := viper.SafeWriteConfigAs(targetPath); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("wrote %s (config version %d)\n", targetPath, viper.GetInt(configVersionKey))

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}

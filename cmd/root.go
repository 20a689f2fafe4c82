// Package cmd provides the root command and CLI setup for splice.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"splice.dev/pkg/splice/internal/adapter"
	"splice.dev/pkg/splice/internal/controller"
	"splice.dev/pkg/splice/internal/domain"
	m "splice.dev/pkg/splice/internal/model"
)

var searchPath *adapter.SearchPath
var codec adapter.ClassFileAdapter
var fetcher adapter.ArtifactFetcher
var lockStore adapter.LockStore
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that write classes.
var outputDirFlag string

var classpathFlag []string
var mixFlag []string
var dependencyFlag []string
var lockPathFlag string
var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	var err error

	searchPath, err = adapter.NewSearchPath()
	cobra.CheckErr(err)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	codec = adapter.NewLocalClassFileAdapter()
	fetcher = adapter.NewHTTPArtifactFetcher(m.Path(viper.GetString(cacheDirConfigKey))).
		WithTimeout(fetchTimeout())
	lockStore = adapter.NewTOMLLockStore()
	workflow = domain.NewWorkflow(
		searchPath,
		codec,
		fetcher,
		lockStore,
		ui,
	)
}

const classNamesHelp = `Classes are named in internal form (demo/Counter) or in dotted form
(demo.Counter). Mixes are registered by name with --mix and target
classes declared with @Mixin.`

const rootLongDescription = `Splice patches JVM class files at build time by merging mix classes into
their target classes: fields are copied, methods are added or replaced,
and code fragments are injected at the head, tail or returns of existing
methods.

` + classNamesHelp

const patchLongDescription = `Patch the given classes (default: every class with applicable mixes)
and write the results to the output directory.

` + classNamesHelp

const listLongDescription = `List the registered mixes and what they change.

` + classNamesHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "splice",
		Short: "JVM class file mixin patcher",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd builds a root command with its persistent flags; subcommands are
// added by the caller.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for patched class files",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&classpathFlag, classpathFlagName, "c", viper.GetStringSlice(classpathConfigKey), "class path root, directory or jar (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(classpathFlagName), classpathConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&mixFlag, mixFlagName, "m", viper.GetStringSlice(mixinsConfigKey), "mix class to register (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(mixFlagName), mixinsConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&dependencyFlag, dependencyFlagName, "d", viper.GetStringSlice(dependenciesConfigKey), "maven coordinate group:artifact:version[:classifier] to fetch (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(dependencyFlagName), dependenciesConfigKey)

	cmd.PersistentFlags().StringVar(&lockPathFlag, lockFlagName, viper.GetString(lockPathConfigKey), "lock file pinning fetched dependencies")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(lockFlagName), lockPathConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if searchPath != nil {
		_ = searchPath.Close()
	}

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

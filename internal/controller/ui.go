// Package controller provides the output adapters that present splice
// results on the terminal.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "splice.dev/pkg/splice/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeFetch StartMode = iota
	ModePatch
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	total int
}

// WithFetchMode sets the UI to dependency fetch mode for total artifacts.
func WithFetchMode(total int) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeFetch
		c.total = total
	}
}

// WithPatchMode sets the UI to patch mode for total classes.
func WithPatchMode(total int) StartOption {
	return func(c *StartConfig) {
		c.mode = ModePatch
		c.total = total
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModePatch}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// Output formats accepted by DisplayRegistry.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// UI defines how workflow progress and results are shown.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish rendering
	DisplayFetchResult(ctx context.Context, result m.FetchResult, err error)
	DisplayRegistry(ctx context.Context, defs []*m.MixDefinition, format string) error
	DisplayMaterialized(ctx context.Context, result m.Materialized, written m.Path)
	DisplayClassError(ctx context.Context, class string, err error)
	DisplayDiff(ctx context.Context, class string, diff string)
	DisplayPatchSummary(ctx context.Context, summary PatchSummary)
}

// PatchSummary totals one patch run.
type PatchSummary struct {
	Scanned int
	Patched int
	Failed  int
	Output  m.Path
}

// NewUI picks the interactive TUI on terminals and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

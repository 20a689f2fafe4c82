package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "splice.dev/pkg/splice/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	if cfg.mode == ModeFetch && cfg.total > 0 {
		s.printf("Resolving %d dependencies\n", cfg.total)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayFetchResult prints the outcome of one artifact fetch.
func (s *SimpleUI) DisplayFetchResult(ctx context.Context, result m.FetchResult, err error) {
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		s.printf("✗ %v\n", err)
		return
	}

	s.printf("%s\n", formatFetchResult(result))
}

func formatFetchResult(result m.FetchResult) string {
	source := result.Mirror
	if result.Cached {
		source = "cache"
	}

	line := fmt.Sprintf("✓ %s (%s) %s", result.Coordinate, source, shortHash(result.SHA256))
	if n := len(result.Failures); n > 0 {
		line += fmt.Sprintf(" after %d failed mirror(s)", n)
	}

	return line
}

func shortHash(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}

	return sum
}

// DisplayRegistry prints the registered mix definitions as a table or YAML.
func (s *SimpleUI) DisplayRegistry(ctx context.Context, defs []*m.MixDefinition, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "", FormatTable:
		s.printf("%s", renderRegistryTable(defs))
	case FormatYAML:
		out, err := renderRegistryYAML(defs)
		if err != nil {
			return err
		}

		s.printf("%s", out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	return nil
}

type registryEntry struct {
	Mix        string            `yaml:"mix"`
	Target     string            `yaml:"target"`
	Interfaces []string          `yaml:"interfaces,omitempty"`
	Shadows    map[string]string `yaml:"shadows,omitempty"`
	Modifiers  []string          `yaml:"modifiers,omitempty"`
}

func registryEntries(defs []*m.MixDefinition) []registryEntry {
	entries := make([]registryEntry, 0, len(defs))

	for _, def := range defs {
		e := registryEntry{
			Mix:        def.Name(),
			Target:     def.Target,
			Interfaces: def.RequiredInterfaces,
		}

		if len(def.Shadows) > 0 {
			e.Shadows = def.Shadows
		}

		for _, mod := range def.Modifiers {
			e.Modifiers = append(e.Modifiers, mod.String())
		}

		entries = append(entries, e)
	}

	return entries
}

func renderRegistryYAML(defs []*m.MixDefinition) (string, error) {
	out, err := yaml.Marshal(registryEntries(defs))
	if err != nil {
		return "", fmt.Errorf("encode registry: %w", err)
	}

	return string(out), nil
}

func renderRegistryTable(defs []*m.MixDefinition) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Mix", "Target", "Shadows", "Modifiers"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	targets := map[string]bool{}

	for _, e := range registryEntries(defs) {
		targets[e.Target] = true

		mods := "-"
		if len(e.Modifiers) > 0 {
			mods = strings.Join(e.Modifiers, "\n")
		}

		table.Append([]string{e.Mix, e.Target, fmt.Sprintf("%d", len(e.Shadows)), mods})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Mixes %d", len(defs)),
		fmt.Sprintf("%d targets", len(targets)),
		"",
		"",
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayMaterialized prints one materialized class.
func (s *SimpleUI) DisplayMaterialized(ctx context.Context, result m.Materialized, written m.Path) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s\n", formatMaterialized(result, written))

	for _, r := range result.Reports {
		for _, skipped := range r.InjectionsSkipped {
			s.printf("  ! %s: injection target %s not found\n", r.Mix, skipped)
		}
	}
}

func formatMaterialized(result m.Materialized, written m.Path) string {
	if !result.Patched {
		return fmt.Sprintf("= %s unchanged", result.Class)
	}

	sites := 0
	for _, r := range result.Reports {
		for _, inj := range r.Injections {
			sites += inj.Sites
		}
	}

	line := fmt.Sprintf("+ %s patched by %d mix report(s), %d injection site(s)", result.Class, len(result.Reports), sites)
	if written != "" {
		line += " -> " + string(written)
	}

	return line
}

// DisplayClassError prints a per-class failure.
func (s *SimpleUI) DisplayClassError(ctx context.Context, class string, err error) {
	if ctx.Err() != nil {
		return
	}

	s.printf("✗ %s: %v\n", class, err)
}

// DisplayDiff prints a unified diff of a class listing.
func (s *SimpleUI) DisplayDiff(ctx context.Context, class string, diff string) {
	if ctx.Err() != nil || diff == "" {
		return
	}

	s.printf("%s", diff)
}

// DisplayPatchSummary prints the totals of a patch run.
func (s *SimpleUI) DisplayPatchSummary(ctx context.Context, summary PatchSummary) {
	if ctx.Err() != nil {
		return
	}

	s.printf("\n%s", renderPatchSummary(summary))
}

func renderPatchSummary(summary PatchSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Scanned", "Patched", "Failed", "Output"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.Append([]string{
		fmt.Sprintf("%d", summary.Scanned),
		fmt.Sprintf("%d", summary.Patched),
		fmt.Sprintf("%d", summary.Failed),
		string(summary.Output),
	})
	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

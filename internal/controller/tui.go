package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "splice.dev/pkg/splice/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea: a spinner with progress counts while
// work runs, result lines printed above it.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress program.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runningLocked() != nil {
		return nil
	}

	cfg := newStartConfig(options)

	t.program = tea.NewProgram(newProgressModel(cfg), tea.WithOutput(t.output), tea.WithInput(nil))
	t.done = make(chan struct{})

	go func(p *tea.Program, done chan struct{}) {
		defer close(done)

		_, _ = p.Run()
	}(t.program, t.done)

	return nil
}

// Close asks the progress program to finish.
func (t *TUI) Close(_ context.Context) {
	t.send(quitMsg{})
}

// Wait blocks until the progress program has exited.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
		return
	}

	t.mu.Lock()
	if t.done == done {
		t.program, t.done = nil, nil
	}
	t.mu.Unlock()
}

// DisplayFetchResult reports one artifact fetch.
func (t *TUI) DisplayFetchResult(_ context.Context, result m.FetchResult, err error) {
	if err != nil {
		t.progress(result.Coordinate.String(), errStyle.Render(fmt.Sprintf("✗ %v", err)), true)
		return
	}

	t.progress(result.Coordinate.String(), okStyle.Render(formatFetchResult(result)), false)
}

// DisplayRegistry renders the registry once; it does not need Start.
func (t *TUI) DisplayRegistry(ctx context.Context, defs []*m.MixDefinition, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var out string

	switch strings.ToLower(format) {
	case "", FormatTable:
		out = titleStyle.Render("Registered mixes") + "\n\n" + renderRegistryTable(defs)
	case FormatYAML:
		yml, err := renderRegistryYAML(defs)
		if err != nil {
			return err
		}

		out = yml
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	_, err := fmt.Fprint(t.output, out)

	return err
}

// DisplayMaterialized reports one materialized class.
func (t *TUI) DisplayMaterialized(_ context.Context, result m.Materialized, written m.Path) {
	line := formatMaterialized(result, written)
	if result.Patched {
		line = okStyle.Render(line)
	} else {
		line = dimStyle.Render(line)
	}

	t.progress(result.Class, line, false)
}

// DisplayClassError reports a per-class failure.
func (t *TUI) DisplayClassError(_ context.Context, class string, err error) {
	t.progress(class, errStyle.Render(fmt.Sprintf("✗ %s: %v", class, err)), true)
}

// DisplayDiff prints a unified diff above the progress line.
func (t *TUI) DisplayDiff(_ context.Context, _ string, diff string) {
	if diff == "" {
		return
	}

	t.println(strings.TrimRight(diff, "\n"))
}

// DisplayPatchSummary records the totals shown when the program exits.
func (t *TUI) DisplayPatchSummary(_ context.Context, summary PatchSummary) {
	if !t.send(summaryMsg(summary)) {
		_, _ = fmt.Fprintln(t.output, renderSummaryLine(summary))
	}
}

func (t *TUI) progress(item, line string, failed bool) {
	if !t.send(progressMsg{item: item, line: line, failed: failed}) {
		_, _ = fmt.Fprintln(t.output, line)
	}
}

func (t *TUI) println(text string) {
	// Send returns once the program has exited; Println would block.
	if !t.send(tea.Println(text)()) {
		_, _ = fmt.Fprintln(t.output, text)
	}
}

// send delivers msg to a running program and reports whether one exists.
func (t *TUI) send(msg tea.Msg) bool {
	t.mu.Lock()
	p := t.runningLocked()
	t.mu.Unlock()

	if p == nil {
		return false
	}

	p.Send(msg)

	return true
}

// runningLocked returns the live program, forgetting one that has exited.
func (t *TUI) runningLocked() *tea.Program {
	if t.program == nil {
		return nil
	}

	select {
	case <-t.done:
		t.program, t.done = nil, nil
		return nil
	default:
		return t.program
	}
}

type progressMsg struct {
	item   string
	line   string
	failed bool
}

type summaryMsg PatchSummary

type quitMsg struct{}

// progressModel is the Bubble Tea model behind TUI.
type progressModel struct {
	spinner   spinner.Model
	mode      StartMode
	total     int
	completed int
	failed    int
	current   string
	summary   *PatchSummary
	quitting  bool
}

func newProgressModel(cfg StartConfig) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return progressModel{spinner: s, mode: cfg.mode, total: cfg.total}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		pm.completed++
		pm.current = msg.item

		if msg.failed {
			pm.failed++
		}

		return pm, tea.Println(msg.line)
	case summaryMsg:
		s := PatchSummary(msg)
		pm.summary = &s

		return pm, nil
	case quitMsg:
		pm.quitting = true
		return pm, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			pm.quitting = true
			return pm, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) View() string {
	if pm.quitting {
		if pm.summary != nil {
			return renderSummaryLine(*pm.summary) + "\n"
		}

		return ""
	}

	label := "Patching"
	if pm.mode == ModeFetch {
		label = "Fetching"
	}

	counts := fmt.Sprintf("%d", pm.completed)
	if pm.total > 0 {
		counts = fmt.Sprintf("%d/%d", pm.completed, pm.total)
	}

	line := fmt.Sprintf("%s %s %s", pm.spinner.View(), titleStyle.Render(label), counts)
	if pm.failed > 0 {
		line += " " + errStyle.Render(fmt.Sprintf("(%d failed)", pm.failed))
	}

	if pm.current != "" {
		line += " " + dimStyle.Render(pm.current)
	}

	return line + "\n"
}

func renderSummaryLine(s PatchSummary) string {
	line := fmt.Sprintf("%d scanned, %d patched", s.Scanned, s.Patched)
	if s.Failed > 0 {
		line += ", " + errStyle.Render(fmt.Sprintf("%d failed", s.Failed))
	}

	if s.Output != "" {
		line += " -> " + string(s.Output)
	}

	return titleStyle.Render("Done: ") + line
}

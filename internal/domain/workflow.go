package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"splice.dev/pkg/splice/internal/adapter"
	"splice.dev/pkg/splice/internal/controller"
	m "splice.dev/pkg/splice/internal/model"
)

// SetupArgs describes how the engine is initialized before any class is
// materialized.
type SetupArgs struct {
	Classpath    []m.Path
	Mixins       []string
	Dependencies []string
	Mirrors      []m.MirrorConfig
	Parallel     int
	LockPath     m.Path
}

// PatchArgs configures a patch run. An empty class list patches every class
// on the search path that has applicable mixes.
type PatchArgs struct {
	SetupArgs
	Classes  []string
	Output   m.Path
	Diff     bool
	Parallel int
}

// MaterializeArgs configures a single materialization. The bytes go to
// Output when set, to Writer otherwise.
type MaterializeArgs struct {
	SetupArgs
	Class  string
	Output m.Path
	Writer io.Writer
}

// ListArgs configures the registry listing.
type ListArgs struct {
	SetupArgs
	Format string
}

// InspectArgs configures a class listing.
type InspectArgs struct {
	SetupArgs
	Class   string
	Patched bool
	Writer  io.Writer
}

// Workflow drives the engine for the CLI commands.
type Workflow interface {
	Fetch(ctx context.Context, args SetupArgs) error
	List(ctx context.Context, args ListArgs) error
	Patch(ctx context.Context, args PatchArgs) error
	Materialize(ctx context.Context, args MaterializeArgs) error
	Inspect(ctx context.Context, args InspectArgs) error
}

type workflow struct {
	adapter.SearchPathAdapter
	adapter.ClassFileAdapter
	adapter.ArtifactFetcher
	adapter.LockStore
	controller.UI
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	searchPath adapter.SearchPathAdapter,
	codec adapter.ClassFileAdapter,
	fetcher adapter.ArtifactFetcher,
	lockStore adapter.LockStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		SearchPathAdapter: searchPath,
		ClassFileAdapter:  codec,
		ArtifactFetcher:   fetcher,
		LockStore:         lockStore,
		UI:                ui,
	}
}

type engine struct {
	registry Registry
	shim     Shim
}

// setup extends and freezes the search path, then builds the registry and
// the shim.
func (w *workflow) setup(ctx context.Context, args SetupArgs) (*engine, error) {
	for _, root := range args.Classpath {
		if err := w.Extend(root); err != nil {
			return nil, err
		}
	}

	if err := w.resolve(ctx, args); err != nil {
		return nil, err
	}

	w.Freeze()

	registry := NewRegistry(w.SearchPathAdapter, w.ClassFileAdapter)

	for _, mixin := range args.Mixins {
		if err := registry.Register(ctx, mixin); err != nil {
			return nil, fmt.Errorf("register mixes: %w", err)
		}
	}

	registry.Freeze()

	slog.Info("engine ready",
		"roots", len(w.Roots()),
		"mixes", len(registry.Definitions()),
		"targets", len(registry.Targets()))

	return &engine{
		registry: registry,
		shim:     NewShim(w.SearchPathAdapter, w.ClassFileAdapter, registry, NewMergeEngine()),
	}, nil
}

func (w *workflow) resolve(ctx context.Context, args SetupArgs) error {
	if len(args.Dependencies) == 0 {
		return nil
	}

	if err := w.Start(ctx, controller.WithFetchMode(len(args.Dependencies))); err != nil {
		return err
	}

	resolver := NewDependencyResolver(w.ArtifactFetcher, w.LockStore, w.SearchPathAdapter)

	_, err := resolver.Resolve(ctx, ResolveArgs{
		Coordinates: args.Dependencies,
		Mirrors:     args.Mirrors,
		Parallel:    args.Parallel,
		LockPath:    args.LockPath,
		OnResult: func(_ int, result m.FetchResult, err error) {
			w.DisplayFetchResult(ctx, result, err)
		},
	})

	w.Close(ctx)
	w.Wait(ctx)

	if err != nil {
		slog.Error("dependency resolution failed", "error", err)
		return fmt.Errorf("resolve dependencies: %w", err)
	}

	return nil
}

func (w *workflow) Fetch(ctx context.Context, args SetupArgs) error {
	_, err := w.setup(ctx, args)
	return err
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	eng, err := w.setup(ctx, args.SetupArgs)
	if err != nil {
		return err
	}

	return w.DisplayRegistry(ctx, eng.registry.Definitions(), args.Format)
}

func (w *workflow) Materialize(ctx context.Context, args MaterializeArgs) error {
	eng, err := w.setup(ctx, args.SetupArgs)
	if err != nil {
		return err
	}

	result, err := eng.shim.Materialize(ctx, args.Class)
	if err != nil {
		return err
	}

	if args.Output != "" {
		path, err := adapter.WriteClassFile(args.Output, result.Class, result.Bytes)
		if err != nil {
			return fmt.Errorf("write %s: %w", result.Class, err)
		}

		w.DisplayMaterialized(ctx, result, path)

		return nil
	}

	if args.Writer == nil {
		return errors.New("materialize: no output configured")
	}

	_, err = args.Writer.Write(result.Bytes)

	return err
}

func (w *workflow) Inspect(ctx context.Context, args InspectArgs) error {
	eng, err := w.setup(ctx, args.SetupArgs)
	if err != nil {
		return err
	}

	data, err := w.Open(args.Class)
	if err != nil {
		return err
	}

	if args.Patched {
		result, err := eng.shim.Materialize(ctx, args.Class)
		if err != nil {
			return err
		}

		data = result.Bytes
	}

	unit, err := w.Read(data)
	if err != nil {
		return err
	}

	return w.Disassemble(args.Writer, unit)
}

type patchOutcome struct {
	result  m.Materialized
	written m.Path
	diff    string
	err     error
}

func (w *workflow) Patch(ctx context.Context, args PatchArgs) error {
	eng, err := w.setup(ctx, args.SetupArgs)
	if err != nil {
		return err
	}

	classes := args.Classes
	if len(classes) == 0 {
		classes, err = w.patchCandidates(eng)
		if err != nil {
			return err
		}
	}

	if err := w.Start(ctx, controller.WithPatchMode(len(classes))); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	outcomes := w.patchAll(ctx, eng, classes, args)

	summary := controller.PatchSummary{Scanned: len(classes), Output: args.Output}

	var errs []error

	for i, o := range outcomes {
		if o.err != nil {
			summary.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", classes[i], o.err))
			w.DisplayClassError(ctx, classes[i], o.err)

			continue
		}

		if o.result.Patched {
			summary.Patched++
		}

		w.DisplayMaterialized(ctx, o.result, o.written)

		if o.diff != "" {
			w.DisplayDiff(ctx, o.result.Class, o.diff)
		}
	}

	w.DisplayPatchSummary(ctx, summary)
	w.Close(ctx)
	w.Wait(ctx)

	return errors.Join(errs...)
}

// patchCandidates lists the search path classes that have applicable mixes.
func (w *workflow) patchCandidates(eng *engine) ([]string, error) {
	all, err := w.Classes()
	if err != nil {
		return nil, err
	}

	var classes []string

	for _, name := range all {
		if len(eng.shim.Applicable(name)) > 0 {
			classes = append(classes, name)
		}
	}

	return classes, nil
}

func (w *workflow) patchAll(ctx context.Context, eng *engine, classes []string, args PatchArgs) []patchOutcome {
	outcomes := make([]patchOutcome, len(classes))

	var (
		group   errgroup.Group
		writeMu sync.Mutex
	)

	if args.Parallel > 0 {
		group.SetLimit(args.Parallel)
	}

	for i, class := range classes {
		group.Go(func() error {
			o := patchOutcome{}

			o.result, o.err = eng.shim.Materialize(ctx, class)
			if o.err == nil && o.result.Patched && args.Output != "" {
				writeMu.Lock()
				o.written, o.err = adapter.WriteClassFile(args.Output, o.result.Class, o.result.Bytes)
				writeMu.Unlock()
			}

			if o.err == nil && o.result.Patched && args.Diff {
				o.diff, o.err = w.diff(o.result)
			}

			outcomes[i] = o

			return nil
		})
	}

	_ = group.Wait()

	return outcomes
}

// diff renders a unified diff between the listings of the original and the
// patched class.
func (w *workflow) diff(result m.Materialized) (string, error) {
	original, err := w.Open(result.Class)
	if err != nil {
		return "", err
	}

	before, err := w.listing(original)
	if err != nil {
		return "", err
	}

	after, err := w.listing(result.Bytes)
	if err != nil {
		return "", err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + m.ClassResource(result.Class),
		ToFile:   "b/" + m.ClassResource(result.Class),
		Context:  3,
	})
}

func (w *workflow) listing(data []byte) (string, error) {
	unit, err := w.Read(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := w.Disassemble(&buf, unit); err != nil {
		return "", err
	}

	return buf.String(), nil
}

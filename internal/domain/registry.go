// Package domain holds the mix engine: the registry of mix definitions, the
// merge engine that applies them, the loading shim and the dependency
// resolver that prepares the search path.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"splice.dev/pkg/splice/internal/adapter"
	m "splice.dev/pkg/splice/internal/model"
)

// Registry indexes mix definitions by target class name. It is built once
// during initialization; after Freeze it only serves concurrent reads.
type Registry interface {
	// Register loads the named mix source and records its definition. A
	// source without a target marker is skipped and logged.
	Register(ctx context.Context, sourceName string) error
	// Freeze ends the registration phase.
	Freeze()
	// Lookup returns the definitions bound to target in registration order.
	Lookup(target string) []*m.MixDefinition
	// Targets returns every target name in first-registration order.
	Targets() []string
	// Definitions returns every definition in registration order.
	Definitions() []*m.MixDefinition
}

type registry struct {
	source adapter.ClassSource
	codec  adapter.ClassFileAdapter

	mu       sync.Mutex
	frozen   atomic.Bool
	byTarget map[string][]*m.MixDefinition
	targets  []string
	ordered  []*m.MixDefinition
}

// NewRegistry creates an empty registry that resolves mix sources through
// source.
func NewRegistry(source adapter.ClassSource, codec adapter.ClassFileAdapter) Registry {
	return &registry{
		source:   source,
		codec:    codec,
		byTarget: map[string][]*m.MixDefinition{},
	}
}

func (r *registry) Register(ctx context.Context, sourceName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("%w: cannot register %s", m.ErrRegistryFrozen, sourceName)
	}

	name := m.InternalName(sourceName)

	for _, def := range r.ordered {
		if def.Name() == name {
			slog.Debug("mix already registered", "mix", name)
			return nil
		}
	}

	data, err := r.source.Open(name)
	if err != nil {
		return fmt.Errorf("load mix %s: %w", name, err)
	}

	unit, err := r.codec.Read(data)
	if err != nil {
		return fmt.Errorf("parse mix %s: %w", name, err)
	}

	def, ok := ExtractMixDefinition(unit)
	if !ok {
		slog.Info("mix skipped: no target declared", "mix", name)
		return nil
	}

	if _, seen := r.byTarget[def.Target]; !seen {
		r.targets = append(r.targets, def.Target)
	}

	r.byTarget[def.Target] = append(r.byTarget[def.Target], def)
	r.ordered = append(r.ordered, def)

	slog.Debug("mix registered",
		"mix", name,
		"target", def.Target,
		"shadows", len(def.Shadows),
		"modifiers", len(def.Modifiers))

	return nil
}

func (r *registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

func (r *registry) Lookup(target string) []*m.MixDefinition {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	return slices.Clone(r.byTarget[m.InternalName(target)])
}

func (r *registry) Targets() []string {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	return slices.Clone(r.targets)
}

func (r *registry) Definitions() []*m.MixDefinition {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	return slices.Clone(r.ordered)
}

// ExtractMixDefinition reads the declarative markers of a mix source unit.
// It reports false when the unit declares no target.
func ExtractMixDefinition(unit *m.BinaryUnit) (*m.MixDefinition, bool) {
	target, ok := mixTarget(unit)
	if !ok {
		return nil, false
	}

	def := &m.MixDefinition{
		Source:             unit,
		Target:             target,
		RequiredInterfaces: slices.Clone(unit.Interfaces),
		Shadows:            map[string]string{},
	}

	for _, f := range unit.Fields {
		ann, ok := m.FindAnnotation(f.Annotations, m.ShadowMarker)
		if !ok {
			continue
		}

		mapped, ok := ann.String("value")
		if !ok || mapped == "" {
			mapped = f.Name
		}

		def.Shadows[f.Name] = mapped
	}

	for _, method := range unit.Methods {
		mod, ok := methodModifier(unit.Name, method)
		if ok {
			def.Modifiers = append(def.Modifiers, mod)
		}
	}

	return def, true
}

func mixTarget(unit *m.BinaryUnit) (string, bool) {
	ann, ok := m.FindAnnotation(unit.Annotations, m.MixMarker)
	if !ok {
		return "", false
	}

	for _, key := range []string{"target", "value"} {
		if s, ok := ann.String(key); ok && strings.TrimSpace(s) != "" {
			return m.InternalName(strings.TrimSpace(s)), true
		}

		if v, ok := ann.Value(key); ok && v.Tag == 'c' && strings.HasPrefix(v.Class, "L") {
			return strings.TrimSuffix(strings.TrimPrefix(v.Class, "L"), ";"), true
		}
	}

	return "", false
}

// methodModifier derives the single modifier of a declared method. Inject
// wins over Replace, which wins over Add.
func methodModifier(mix string, method *m.MethodUnit) (m.MethodModifier, bool) {
	mod := m.MethodModifier{Method: method.Key()}

	if ann, ok := m.FindAnnotation(method.Annotations, m.InjectMarker); ok {
		target, _ := ann.String("method")
		desc, _ := ann.String("descriptor")
		at, _ := ann.Enum("at")

		loc, err := m.ParseLocation(at)
		if target == "" || desc == "" || err != nil {
			slog.Warn("inject marker incomplete, method ignored",
				"mix", mix, "method", method.Key().String(), "target", target, "descriptor", desc, "at", at)

			return m.MethodModifier{}, false
		}

		mod.Kind = m.ModifierInject
		mod.Inject = &m.InjectPoint{Method: target, Desc: desc, At: loc}

		return mod, true
	}

	if ann, ok := m.FindAnnotation(method.Annotations, m.ReplaceMarker); ok {
		mod.Kind = m.ModifierReplace
		mod.Rename, _ = ann.String("rename")

		return mod, true
	}

	if ann, ok := m.FindAnnotation(method.Annotations, m.AddMarker); ok {
		mod.Kind = m.ModifierAdd
		mod.Rename, _ = ann.String("rename")

		if replace, ok := ann.Bool("replace"); ok && replace {
			mod.Kind = m.ModifierReplace
		}

		return mod, true
	}

	return m.MethodModifier{}, false
}

package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"splice.dev/pkg/splice/internal/adapter"
	m "splice.dev/pkg/splice/internal/model"
)

// Shim materializes classes for the runtime: it loads their bytes, merges
// the applicable mix definitions and re-emits the unit.
type Shim interface {
	// Materialize returns the bytes to link for className. Classes without
	// applicable mixes pass through unchanged. Missing classes wrap
	// model.ErrResourceNotFound.
	Materialize(ctx context.Context, className string) (m.Materialized, error)
	// Applicable returns the definitions that patch className, in
	// registration order.
	Applicable(className string) []*m.MixDefinition
}

type shim struct {
	source   adapter.ClassSource
	codec    adapter.ClassFileAdapter
	registry Registry
	engine   MergeEngine

	// superOf maps each registered target to its loadable superclass.
	superOf   map[string]string
	hierarchy *storeHierarchy
}

// NewShim builds a Shim over a frozen registry. Each registered target is
// read once to find its superclass; a superclass that source cannot load is
// not resolvable and receives no mixes.
func NewShim(source adapter.ClassSource, codec adapter.ClassFileAdapter, registry Registry, engine MergeEngine) Shim {
	s := &shim{
		source:    source,
		codec:     codec,
		registry:  registry,
		engine:    engine,
		superOf:   map[string]string{},
		hierarchy: newStoreHierarchy(source, codec),
	}

	for _, target := range registry.Targets() {
		super, _, ok := s.hierarchy.Lookup(target)
		if !ok {
			slog.Debug("mix target not on search path", "target", target)
			continue
		}

		if super == "" {
			continue
		}

		if _, _, ok := s.hierarchy.Lookup(super); !ok {
			slog.Debug("superclass not resolvable, mixes stay on target", "target", target, "super", super)
			continue
		}

		s.superOf[target] = super
	}

	return s
}

func (s *shim) Applicable(className string) []*m.MixDefinition {
	name := m.InternalName(className)

	var defs []*m.MixDefinition

	for _, def := range s.registry.Definitions() {
		if def.Target == name || s.superOf[def.Target] == name {
			defs = append(defs, def)
		}
	}

	return defs
}

func (s *shim) Materialize(ctx context.Context, className string) (m.Materialized, error) {
	if err := ctx.Err(); err != nil {
		return m.Materialized{}, err
	}

	name := m.InternalName(className)
	opID := uuid.NewString()

	data, err := s.source.Open(name)
	if err != nil {
		return m.Materialized{}, err
	}

	defs := s.Applicable(name)
	if len(defs) == 0 {
		slog.Debug("materialize pass-through", "op", opID, "class", name)
		return m.Materialized{Class: name, Bytes: data}, nil
	}

	unit, err := s.codec.Read(data)
	if err != nil {
		return m.Materialized{}, fmt.Errorf("materialize %s: %w", name, err)
	}

	arena := m.NewArena(unit)

	var reports []m.MergeReport

	for _, def := range defs {
		if def.Target == name {
			reports = append(reports, s.engine.Merge(arena, name, []*m.MixDefinition{def})...)
			continue
		}

		// Inherited through a registered subclass: load the subclass next to
		// this unit so the engine resolves the superclass through the arena.
		if _, loaded := arena[def.Target]; !loaded {
			sub, err := s.load(def.Target)
			if err != nil {
				return m.Materialized{}, fmt.Errorf("materialize %s: %w", name, err)
			}

			arena[sub.Name] = sub
		}

		for _, r := range s.engine.Merge(arena, def.Target, []*m.MixDefinition{def}) {
			if r.Target == name {
				reports = append(reports, r)
			}
		}
	}

	out, err := s.codec.Write(unit, s.hierarchy.with(unit))
	if err != nil {
		return m.Materialized{}, fmt.Errorf("materialize %s: %w", name, err)
	}

	slog.Info("class materialized", "op", opID, "class", name, "mixes", len(defs), "bytes", len(out))

	return m.Materialized{Class: name, Bytes: out, Patched: true, Reports: reports}, nil
}

func (s *shim) load(name string) (*m.BinaryUnit, error) {
	data, err := s.source.Open(name)
	if err != nil {
		return nil, err
	}

	return s.codec.Read(data)
}

type hierarchyEntry struct {
	super       string
	isInterface bool
	ok          bool
}

// storeHierarchy answers superclass questions for frame computation by
// reading classes from the search path. Results are cached for the life of
// the shim.
type storeHierarchy struct {
	source adapter.ClassSource
	codec  adapter.ClassFileAdapter
	cache  sync.Map
}

func newStoreHierarchy(source adapter.ClassSource, codec adapter.ClassFileAdapter) *storeHierarchy {
	return &storeHierarchy{source: source, codec: codec}
}

func (h *storeHierarchy) Lookup(name string) (string, bool, bool) {
	if v, ok := h.cache.Load(name); ok {
		e := v.(hierarchyEntry)
		return e.super, e.isInterface, e.ok
	}

	e := hierarchyEntry{}

	data, err := h.source.Open(name)
	if err == nil {
		unit, readErr := h.codec.Read(data)
		if readErr == nil {
			e = hierarchyEntry{super: unit.Super, isInterface: unit.IsInterface(), ok: true}
		} else {
			slog.Debug("hierarchy lookup unreadable", "class", name, "error", readErr)
		}
	} else if !errors.Is(err, m.ErrResourceNotFound) {
		slog.Debug("hierarchy lookup failed", "class", name, "error", err)
	}

	h.cache.Store(name, e)

	return e.super, e.isInterface, e.ok
}

// with answers for unit itself from memory, since its patched form is not
// on the search path.
func (h *storeHierarchy) with(unit *m.BinaryUnit) *unitHierarchy {
	return &unitHierarchy{unit: unit, next: h}
}

type unitHierarchy struct {
	unit *m.BinaryUnit
	next *storeHierarchy
}

func (u *unitHierarchy) Lookup(name string) (string, bool, bool) {
	if name == u.unit.Name {
		return u.unit.Super, u.unit.IsInterface(), true
	}

	return u.next.Lookup(name)
}

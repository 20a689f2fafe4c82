package domain

import (
	"log/slog"

	m "splice.dev/pkg/splice/internal/model"
)

// MergeEngine applies mix definitions to structural units. Skips are never
// errors: they are logged and listed in the returned reports.
type MergeEngine interface {
	// Merge applies defs in order to the unit named target and, when the
	// arena holds it, to that unit's direct superclass.
	Merge(arena m.Arena, target string, defs []*m.MixDefinition) []m.MergeReport
	// Applicable returns the units def applies to for target.
	Applicable(arena m.Arena, target *m.BinaryUnit, def *m.MixDefinition) []*m.BinaryUnit
	// Apply runs field injection, add/replace and injection of def on unit.
	Apply(unit *m.BinaryUnit, def *m.MixDefinition) m.MergeReport
}

type mergeEngine struct{}

// NewMergeEngine creates a MergeEngine.
func NewMergeEngine() MergeEngine {
	return &mergeEngine{}
}

func (e *mergeEngine) Merge(arena m.Arena, target string, defs []*m.MixDefinition) []m.MergeReport {
	unit, ok := arena[m.InternalName(target)]
	if !ok {
		slog.Debug("merge target not loaded", "target", target)
		return nil
	}

	var reports []m.MergeReport

	for _, def := range defs {
		for _, u := range e.Applicable(arena, unit, def) {
			reports = append(reports, e.Apply(u, def))
		}
	}

	return reports
}

func (e *mergeEngine) Applicable(arena m.Arena, target *m.BinaryUnit, def *m.MixDefinition) []*m.BinaryUnit {
	// The target itself always applies; required interfaces do not narrow it.
	units := []*m.BinaryUnit{target}

	if super, ok := arena.Super(target); ok && super.Name != target.Name {
		units = append(units, super)
	}

	return units
}

func (e *mergeEngine) Apply(unit *m.BinaryUnit, def *m.MixDefinition) m.MergeReport {
	report := m.MergeReport{Mix: def.Name(), Target: unit.Name}

	e.injectFields(unit, def, &report)
	e.addMethods(unit, def, &report)
	e.injectMethods(unit, def, &report)

	slog.Debug("mix applied",
		"mix", report.Mix,
		"target", report.Target,
		"fields", len(report.FieldsAdded),
		"added", len(report.MethodsAdded),
		"replaced", len(report.MethodsReplaced),
		"injections", len(report.Injections))

	return report
}

func (e *mergeEngine) injectFields(unit *m.BinaryUnit, def *m.MixDefinition, report *m.MergeReport) {
	present := make(map[string]bool, len(unit.Fields))
	for _, f := range unit.Fields {
		present[f.Name] = true
	}

	for _, f := range def.Source.Fields {
		name := def.PublicFieldName(f.Name)

		if present[name] {
			slog.Debug("field exists, skipped", "mix", def.Name(), "target", unit.Name, "field", name)
			report.FieldsSkipped = append(report.FieldsSkipped, name)

			continue
		}

		field := f.Clone()
		field.Name = name
		field.Annotations = m.WithoutAnnotations(field.Annotations, m.Markers...)

		unit.Fields = append(unit.Fields, field)
		present[name] = true
		report.FieldsAdded = append(report.FieldsAdded, name)
	}
}

func (e *mergeEngine) addMethods(unit *m.BinaryUnit, def *m.MixDefinition, report *m.MergeReport) {
	for _, mod := range def.Modifiers {
		if mod.Kind != m.ModifierAdd && mod.Kind != m.ModifierReplace {
			continue
		}

		decl := def.Source.Method(mod.Method.Name, mod.Method.Desc)
		if decl == nil {
			continue
		}

		if decl.IsConstructor() {
			slog.Debug("constructor not copied", "mix", def.Name(), "target", unit.Name, "method", mod.Method.String())
			report.MethodsSkipped = append(report.MethodsSkipped, mod.Method.String())

			continue
		}

		key := m.MethodKey{Name: mod.ResolvedName(), Desc: decl.Desc}
		existing := methodIndex(unit, key)

		if mod.Kind == m.ModifierAdd && existing >= 0 {
			slog.Debug("method exists, add skipped", "mix", def.Name(), "target", unit.Name, "method", key.String())
			report.MethodsSkipped = append(report.MethodsSkipped, key.String())

			continue
		}

		if existing >= 0 {
			unit.Methods = append(unit.Methods[:existing], unit.Methods[existing+1:]...)
			report.MethodsReplaced = append(report.MethodsReplaced, key.String())
		} else {
			report.MethodsAdded = append(report.MethodsAdded, key.String())
		}

		method := decl.Clone()
		method.Name = key.Name
		method.Annotations = m.WithoutAnnotations(method.Annotations, m.Markers...)
		method.Instructions = remapShadows(method.Instructions, def, unit.Name)

		unit.Methods = append(unit.Methods, method)
	}
}

func (e *mergeEngine) injectMethods(unit *m.BinaryUnit, def *m.MixDefinition, report *m.MergeReport) {
	for _, mod := range def.Modifiers {
		if mod.Kind != m.ModifierInject || mod.Inject == nil {
			continue
		}

		point := *mod.Inject
		target := mod.Inject.Method + mod.Inject.Desc

		decl := def.Source.Method(mod.Method.Name, mod.Method.Desc)
		if decl == nil || !decl.HasCode() {
			report.InjectionsSkipped = append(report.InjectionsSkipped, target)
			continue
		}

		host := unit.Method(point.Method, point.Desc)
		if host == nil || !host.HasCode() {
			slog.Debug("injection target not found, skipped",
				"mix", def.Name(), "target", unit.Name, "method", target, "at", point.At)
			report.InjectionsSkipped = append(report.InjectionsSkipped, target)

			continue
		}

		sites := splice(host, newFragment(decl, def, host, unit.Name), point.At)

		report.Injections = append(report.Injections, m.Injection{
			Source: mod.Method.String(),
			Target: target,
			At:     point.At,
			Sites:  sites,
		})
	}
}

func methodIndex(unit *m.BinaryUnit, key m.MethodKey) int {
	for i, method := range unit.Methods {
		if method.Name == key.Name && method.Desc == key.Desc {
			return i
		}
	}

	return -1
}

// remapShadows points accesses to shadowed fields of the mix source at the
// host unit under the mapped name. Other accesses are left as they are.
func remapShadows(insns []m.Instruction, def *m.MixDefinition, host string) []m.Instruction {
	for i, insn := range insns {
		field, ok := insn.(m.FieldInsn)
		if !ok || field.Owner != def.Name() {
			continue
		}

		mapped, ok := def.Shadows[field.Name]
		if !ok {
			continue
		}

		field.Owner = host
		field.Name = mapped
		insns[i] = field
	}

	return insns
}

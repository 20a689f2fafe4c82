package domain_test

import (
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"splice.dev/pkg/splice/internal/classfile"
	"splice.dev/pkg/splice/internal/domain"
	m "splice.dev/pkg/splice/internal/model"
)

const (
	counterClass = "demo/Counter"
	mixClass     = "demo/CounterMix"
)

// memorySource serves class bytes from memory.
type memorySource map[string][]byte

func newMemorySource(t *testing.T, units ...*m.BinaryUnit) memorySource {
	t.Helper()

	src := memorySource{}
	for _, u := range units {
		src.put(t, u)
	}

	return src
}

func (s memorySource) put(t *testing.T, unit *m.BinaryUnit) {
	t.Helper()

	data, err := classfile.Write(unit)
	require.NoError(t, err, "write %s", unit.Name)

	s[unit.Name] = data
}

func (s memorySource) Open(className string) ([]byte, error) {
	data, ok := s[m.InternalName(className)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", m.ErrResourceNotFound, className)
	}

	return data, nil
}

func (s memorySource) Classes() ([]string, error) {
	return slices.Sorted(maps.Keys(s)), nil
}

func (s memorySource) Roots() []m.Path { return nil }

func aload0() m.Instruction { return m.VarInsn{Opcode: m.ALOAD, Var: 0} }

func field(op m.Opcode, owner, name string) m.Instruction {
	return m.FieldInsn{Opcode: op, Owner: owner, Name: name, Desc: "I"}
}

// counterUnit is the usual patch target: a counter with a tick method that
// returns once and a sign method that returns twice.
func counterUnit() *m.BinaryUnit {
	return &m.BinaryUnit{
		MajorVersion: 52,
		Access:       m.AccPublic | m.AccSuper,
		Name:         counterClass,
		Super:        m.ObjectClass,
		Fields: []*m.FieldUnit{
			{Access: m.AccPrivate, Name: "count", Desc: "I"},
		},
		Methods: []*m.MethodUnit{
			{
				Access: m.AccPublic,
				Name:   m.ConstructorName,
				Desc:   "()V",
				Instructions: []m.Instruction{
					aload0(),
					m.MethodInsn{Opcode: m.INVOKESPECIAL, Owner: m.ObjectClass, Name: m.ConstructorName, Desc: "()V"},
					m.Insn{Opcode: m.RETURN},
				},
			},
			{
				Access: m.AccPublic,
				Name:   "tick",
				Desc:   "()V",
				Instructions: []m.Instruction{
					aload0(),
					m.Insn{Opcode: m.DUP},
					field(m.GETFIELD, counterClass, "count"),
					m.Insn{Opcode: m.ICONST_1},
					m.Insn{Opcode: m.IADD},
					field(m.PUTFIELD, counterClass, "count"),
					m.Insn{Opcode: m.RETURN},
				},
			},
			{
				Access: m.AccPublic,
				Name:   "get",
				Desc:   "()I",
				Instructions: []m.Instruction{
					aload0(),
					field(m.GETFIELD, counterClass, "count"),
					m.Insn{Opcode: m.IRETURN},
				},
			},
			{
				Access: m.AccPublic,
				Name:   "sign",
				Desc:   "(I)I",
				Instructions: []m.Instruction{
					m.VarInsn{Opcode: m.ILOAD, Var: 1},
					m.JumpInsn{Opcode: m.IFEQ, Target: 1},
					m.Insn{Opcode: m.ICONST_1},
					m.Insn{Opcode: m.IRETURN},
					m.LabelInsn{Label: 1},
					m.Insn{Opcode: m.ICONST_0},
					m.Insn{Opcode: m.IRETURN},
				},
			},
		},
	}
}

func mixMarker(target string) m.Annotation {
	return m.Annotation{Desc: m.MixMarker, Elements: []m.AnnotationElement{strElem("target", target)}}
}

func shadowMarker(rename string) m.Annotation {
	a := m.Annotation{Desc: m.ShadowMarker}
	if rename != "" {
		a.Elements = []m.AnnotationElement{strElem("value", rename)}
	}

	return a
}

func injectMarker(method, desc string, at m.Location) m.Annotation {
	return m.Annotation{Desc: m.InjectMarker, Elements: []m.AnnotationElement{
		strElem("method", method),
		strElem("descriptor", desc),
		{Name: "at", Value: m.ElementValue{Tag: 'e', EnumType: m.AtEnum, EnumName: string(at)}},
	}}
}

func addMarker(rename string, replace bool) m.Annotation {
	a := m.Annotation{Desc: m.AddMarker}
	if rename != "" {
		a.Elements = append(a.Elements, strElem("rename", rename))
	}

	if replace {
		a.Elements = append(a.Elements, m.AnnotationElement{Name: "replace", Value: m.ElementValue{Tag: 'Z', Const: int32(1)}})
	}

	return a
}

func replaceMarker(rename string) m.Annotation {
	a := m.Annotation{Desc: m.ReplaceMarker}
	if rename != "" {
		a.Elements = []m.AnnotationElement{strElem("rename", rename)}
	}

	return a
}

func strElem(name, value string) m.AnnotationElement {
	return m.AnnotationElement{Name: name, Value: m.ElementValue{Tag: 's', Const: value}}
}

func method(name, desc string, ann m.Annotation, insns ...m.Instruction) *m.MethodUnit {
	return &m.MethodUnit{
		Access:       m.AccPublic,
		Name:         name,
		Desc:         desc,
		Annotations:  []m.Annotation{ann},
		Instructions: insns,
	}
}

// mixUnit builds a mix source targeting target. Its fields are a shadow of
// the counter's count under the name value, and a fresh calls field.
func mixUnit(target string, methods ...*m.MethodUnit) *m.BinaryUnit {
	return &m.BinaryUnit{
		MajorVersion: 52,
		Access:       m.AccPublic | m.AccSuper,
		Name:         mixClass,
		Super:        m.ObjectClass,
		Annotations:  []m.Annotation{mixMarker(target)},
		Fields: []*m.FieldUnit{
			{Access: m.AccPrivate, Name: "value", Desc: "I", Annotations: []m.Annotation{shadowMarker("count")}},
			{Access: m.AccPrivate, Name: "calls", Desc: "I"},
		},
		Methods: methods,
	}
}

// bumpCalls increments the mix's own calls field; it has no shadow mapping.
func bumpCalls() []m.Instruction {
	return []m.Instruction{
		aload0(),
		m.Insn{Opcode: m.DUP},
		field(m.GETFIELD, mixClass, "calls"),
		m.Insn{Opcode: m.ICONST_1},
		m.Insn{Opcode: m.IADD},
		field(m.PUTFIELD, mixClass, "calls"),
		m.Insn{Opcode: m.RETURN},
	}
}

// resetValue clears the shadowed value field.
func resetValue() []m.Instruction {
	return []m.Instruction{
		aload0(),
		m.Insn{Opcode: m.ICONST_0},
		field(m.PUTFIELD, mixClass, "value"),
		m.Insn{Opcode: m.RETURN},
	}
}

func mustDefinition(t *testing.T, unit *m.BinaryUnit) *m.MixDefinition {
	t.Helper()

	def, ok := domain.ExtractMixDefinition(unit)
	require.True(t, ok, "no definition extracted from %s", spew.Sdump(unit.Annotations))

	return def
}

// realInsns drops labels and line markers.
func realInsns(insns []m.Instruction) []m.Instruction {
	var out []m.Instruction

	for _, insn := range insns {
		if !insn.Op().IsPseudo() {
			out = append(out, insn)
		}
	}

	return out
}

func returnIndexes(insns []m.Instruction) []int {
	var out []int

	for i, insn := range insns {
		if insn.Op().IsReturn() {
			out = append(out, i)
		}
	}

	return out
}

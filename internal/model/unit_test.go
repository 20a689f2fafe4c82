package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethodDescriptor(t *testing.T) {
	params, ret, err := ParseMethodDescriptor("(IJ[Ljava/lang/String;D)Ljava/lang/Object;")
	require.NoError(t, err)
	assert.Equal(t, []string{"I", "J", "[Ljava/lang/String;", "D"}, params)
	assert.Equal(t, "Ljava/lang/Object;", ret)

	_, _, err = ParseMethodDescriptor("(I")
	assert.Error(t, err)

	_, _, err = ParseMethodDescriptor("I)V")
	assert.Error(t, err)

	assert.Equal(t, 7, ArgumentSlots("(IJ[Ljava/lang/String;D)V", false))
	assert.Equal(t, 6, ArgumentSlots("(IJ[Ljava/lang/String;D)V", true))
	assert.Equal(t, 1, ArgumentSlots("()V", false))
}

func TestMethodUnit_NewLabel(t *testing.T) {
	m := &MethodUnit{
		Name: "run",
		Desc: "()V",
		Instructions: []Instruction{
			LabelInsn{Label: 3},
			JumpInsn{Opcode: GOTO, Target: 7},
			LabelInsn{Label: 7},
			Insn{Opcode: RETURN},
		},
		TryCatch: []TryCatchBlock{{Start: 3, End: 7, Handler: 9}},
	}

	assert.Equal(t, Label(10), m.NewLabel())
	assert.Equal(t, Label(11), m.NewLabel())
}

func TestMethodUnit_CloneIsIndependent(t *testing.T) {
	m := &MethodUnit{
		Name: "sw",
		Desc: "(I)V",
		Instructions: []Instruction{
			TableSwitchInsn{Min: 0, Max: 1, Default: 1, Targets: []Label{2, 3}},
		},
	}

	c := m.Clone()
	sw := c.Instructions[0].(TableSwitchInsn)
	sw.Targets[0] = 99

	orig := m.Instructions[0].(TableSwitchInsn)
	assert.Equal(t, Label(2), orig.Targets[0])
}

func TestArena_Super(t *testing.T) {
	parent := &BinaryUnit{Name: "a/Parent", Super: ObjectClass}
	child := &BinaryUnit{Name: "a/Child", Super: "a/Parent"}
	self := &BinaryUnit{Name: "a/Self", Super: "a/Self"}

	arena := NewArena(parent, child, self)

	got, ok := arena.Super(child)
	require.True(t, ok)
	assert.Same(t, parent, got)

	_, ok = arena.Super(parent)
	assert.False(t, ok, "platform superclass is not resolvable")

	_, ok = arena.Super(self)
	assert.False(t, ok)
}

func TestAnnotation_Accessors(t *testing.T) {
	ann := Annotation{
		Desc: InjectMarker,
		Elements: []AnnotationElement{
			{Name: "method", Value: ElementValue{Tag: 's', Const: "tick"}},
			{Name: "at", Value: ElementValue{Tag: 'e', EnumType: AtEnum, EnumName: "RETURN"}},
			{Name: "replace", Value: ElementValue{Tag: 'Z', Const: int32(1)}},
		},
	}

	s, ok := ann.String("method")
	assert.True(t, ok)
	assert.Equal(t, "tick", s)

	e, ok := ann.Enum("at")
	assert.True(t, ok)
	assert.Equal(t, "RETURN", e)

	b, ok := ann.Bool("replace")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = ann.String("missing")
	assert.False(t, ok)

	stripped := WithoutAnnotations([]Annotation{ann, {Desc: "Ljava/lang/Deprecated;"}}, Markers...)
	require.Len(t, stripped, 1)
	assert.Equal(t, "Ljava/lang/Deprecated;", stripped[0].Desc)
}

package domain_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splice.dev/pkg/splice/internal/classfile"
	"splice.dev/pkg/splice/internal/domain"
	m "splice.dev/pkg/splice/internal/model"
)

func methodsWithKey(unit *m.BinaryUnit, name, desc string) int {
	n := 0

	for _, method := range unit.Methods {
		if method.Name == name && method.Desc == desc {
			n++
		}
	}

	return n
}

func fieldsNamed(unit *m.BinaryUnit, name string) int {
	n := 0

	for _, f := range unit.Fields {
		if f.Name == name {
			n++
		}
	}

	return n
}

func TestMergeEngine_FieldInjectionIsIdempotent(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass))

	first := engine.Apply(unit, def)
	second := engine.Apply(unit, def)

	assert.Equal(t, []string{"calls"}, first.FieldsAdded)
	assert.Equal(t, []string{"count"}, first.FieldsSkipped)
	assert.Empty(t, second.FieldsAdded)
	assert.Equal(t, []string{"count", "calls"}, second.FieldsSkipped)

	assert.Equal(t, 1, fieldsNamed(unit, "calls"))
	assert.Equal(t, 1, fieldsNamed(unit, "count"))
	assert.Zero(t, fieldsNamed(unit, "value"), "shadow fields resolve to their mapped name")

	added := unit.Field("calls")
	require.NotNil(t, added)
	assert.Equal(t, "I", added.Desc)
	assert.True(t, first.Changed())
	assert.False(t, second.Changed())
}

func TestMergeEngine_ReplaceLeavesExactlyOneMethod(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	body := []m.Instruction{m.Insn{Opcode: m.ICONST_5}, m.Insn{Opcode: m.IRETURN}}
	def := mustDefinition(t, mixUnit(counterClass, method("get", "()I", replaceMarker(""), body...)))

	before := len(unit.Methods)

	for range 2 {
		report := engine.Apply(unit, def)
		assert.Equal(t, []string{"get()I"}, report.MethodsReplaced)
		assert.Empty(t, report.MethodsAdded)
	}

	assert.Len(t, unit.Methods, before)
	assert.Equal(t, 1, methodsWithKey(unit, "get", "()I"))
	assert.Equal(t, body, unit.Method("get", "()I").Instructions)
	assert.Empty(t, unit.Method("get", "()I").Annotations, "markers are stripped from copies")
}

func TestMergeEngine_ReplaceWithRenameAddsWhenAbsent(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass,
		method("get", "()I", replaceMarker("total"), m.Insn{Opcode: m.ICONST_5}, m.Insn{Opcode: m.IRETURN})))

	report := engine.Apply(unit, def)

	assert.Equal(t, []string{"total()I"}, report.MethodsAdded)
	assert.Empty(t, report.MethodsReplaced)
	assert.NotNil(t, unit.Method("total", "()I"))
	assert.Equal(t, counterUnit().Method("get", "()I").Instructions, unit.Method("get", "()I").Instructions)
}

func TestMergeEngine_AddNeverRemovesExisting(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	original := counterUnit().Method("get", "()I")
	def := mustDefinition(t, mixUnit(counterClass,
		method("get", "()I", addMarker("", false), m.Insn{Opcode: m.ICONST_5}, m.Insn{Opcode: m.IRETURN})))

	report := engine.Apply(unit, def)

	assert.Equal(t, []string{"get()I"}, report.MethodsSkipped)
	assert.Empty(t, report.MethodsAdded)
	assert.Equal(t, 1, methodsWithKey(unit, "get", "()I"))
	assert.Equal(t, original, unit.Method("get", "()I"), spew.Sdump(unit.Method("get", "()I")))
}

func TestMergeEngine_AddRenamed(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass, method("reset", "()V", addMarker("clear", false), resetValue()...)))

	report := engine.Apply(unit, def)

	assert.Equal(t, []string{"clear()V"}, report.MethodsAdded)

	added := unit.Method("clear", "()V")
	require.NotNil(t, added)
	assert.Nil(t, unit.Method("reset", "()V"))
	assert.Equal(t, field(m.PUTFIELD, counterClass, "count"), added.Instructions[2], "shadowed access is remapped")
}

func TestMergeEngine_AddWithReplaceFlag(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	body := []m.Instruction{m.Insn{Opcode: m.ICONST_0}, m.Insn{Opcode: m.IRETURN}}
	def := mustDefinition(t, mixUnit(counterClass, method("get", "()I", addMarker("", true), body...)))

	report := engine.Apply(unit, def)

	assert.Equal(t, []string{"get()I"}, report.MethodsReplaced)
	assert.Equal(t, body, unit.Method("get", "()I").Instructions)
}

func TestMergeEngine_ConstructorNeverCopied(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	ctor := method(m.ConstructorName, "()V", addMarker("", true),
		aload0(),
		m.MethodInsn{Opcode: m.INVOKESPECIAL, Owner: m.ObjectClass, Name: m.ConstructorName, Desc: "()V"},
		m.Insn{Opcode: m.RETURN},
	)
	def := mustDefinition(t, mixUnit(counterClass, ctor))

	report := engine.Apply(unit, def)

	assert.Equal(t, []string{"<init>()V"}, report.MethodsSkipped)
	assert.Empty(t, report.MethodsReplaced)
	assert.Equal(t, counterUnit().Methods[0], unit.Method(m.ConstructorName, "()V"))
}

func TestMergeEngine_InertMethodIgnored(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass,
		method("helper", "()V", m.Annotation{Desc: "Ldemo/Other;"}, m.Insn{Opcode: m.RETURN})))

	require.Empty(t, def.Modifiers)

	report := engine.Apply(unit, def)

	assert.Nil(t, unit.Method("helper", "()V"))
	assert.Empty(t, report.MethodsAdded)
}

func TestMergeEngine_InjectHeadPrecedesOriginal(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	original := counterUnit().Method("sign", "(I)I").Instructions
	def := mustDefinition(t, mixUnit(counterClass, method("onSign", "()V", injectMarker("sign", "(I)I", m.LocationHead), resetValue()...)))

	report := engine.Apply(unit, def)

	require.Len(t, report.Injections, 1)
	assert.Equal(t, m.Injection{Source: "onSign()V", Target: "sign(I)I", At: m.LocationHead, Sites: 1}, report.Injections[0])

	insns := unit.Method("sign", "(I)I").Instructions
	require.Len(t, insns, len(original)+3)
	assert.Equal(t, aload0(), insns[0])
	assert.Equal(t, field(m.PUTFIELD, counterClass, "count"), insns[2])
	assert.Equal(t, original, insns[3:], "original body follows the fragment")
}

func TestMergeEngine_InjectReturnCopiesPerExit(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	guard := method("guard", "()V", injectMarker("sign", "(I)I", m.LocationReturn),
		aload0(),
		field(m.GETFIELD, mixClass, "value"),
		m.JumpInsn{Opcode: m.IFNE, Target: 1},
		aload0(),
		m.Insn{Opcode: m.ICONST_1},
		field(m.PUTFIELD, mixClass, "value"),
		m.LabelInsn{Label: 1},
		m.Insn{Opcode: m.RETURN},
	)
	def := mustDefinition(t, mixUnit(counterClass, guard))

	report := engine.Apply(unit, def)

	require.Len(t, report.Injections, 1)
	assert.Equal(t, 2, report.Injections[0].Sites)

	insns := unit.Method("sign", "(I)I").Instructions
	returns := returnIndexes(insns)
	require.Len(t, returns, 2, spew.Sdump(insns))

	var labels []m.Label

	for _, idx := range returns {
		require.GreaterOrEqual(t, idx, 7)

		end, ok := insns[idx-1].(m.LabelInsn)
		require.True(t, ok, "fragment ends right before the return")

		branch, ok := insns[idx-5].(m.JumpInsn)
		require.True(t, ok)
		assert.Equal(t, m.IFNE, branch.Opcode)
		assert.Equal(t, end.Label, branch.Target, "each copy branches to its own label")
		assert.Equal(t, aload0(), insns[idx-7])
		assert.Equal(t, field(m.GETFIELD, counterClass, "count"), insns[idx-6])

		labels = append(labels, end.Label)
	}

	assert.NotEqual(t, labels[0], labels[1])
	assert.NotEqual(t, m.Label(1), labels[0])

	// The mix source keeps its own body.
	assert.Len(t, def.Source.Method("guard", "()V").Instructions, 8)
	assert.Equal(t, field(m.GETFIELD, mixClass, "value"), def.Source.Method("guard", "()V").Instructions[1])
}

// guardedReset sets the shadowed count inside a try block whose handler
// drops the exception.
func guardedReset(at m.Location) *m.MethodUnit {
	guard := method("guard", "()V", injectMarker("sign", "(I)I", at),
		m.LabelInsn{Label: 1},
		aload0(),
		m.Insn{Opcode: m.ICONST_1},
		field(m.PUTFIELD, mixClass, "value"),
		m.LabelInsn{Label: 2},
		m.JumpInsn{Opcode: m.GOTO, Target: 4},
		m.LabelInsn{Label: 3},
		m.Insn{Opcode: m.POP},
		m.LabelInsn{Label: 4},
		m.Insn{Opcode: m.RETURN},
	)
	guard.TryCatch = []m.TryCatchBlock{{Start: 1, End: 2, Handler: 3, Type: "java/lang/RuntimeException"}}

	return guard
}

func TestMergeEngine_GuardedFragmentParksReturnValue(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass, guardedReset(m.LocationReturn)))

	report := engine.Apply(unit, def)

	require.Len(t, report.Injections, 1)
	assert.Equal(t, 2, report.Injections[0].Sites)

	sign := unit.Method("sign", "(I)I")
	assert.Len(t, sign.TryCatch, 2)

	returns := returnIndexes(sign.Instructions)
	require.Len(t, returns, 2, spew.Sdump(sign.Instructions))

	for _, idx := range returns {
		assert.Equal(t, m.VarInsn{Opcode: m.ILOAD, Var: 2}, sign.Instructions[idx-1])
	}

	assert.Contains(t, sign.Instructions, m.Instruction(m.VarInsn{Opcode: m.ISTORE, Var: 2}))

	data, err := classfile.Write(unit)
	require.NoError(t, err)

	written, err := classfile.Read(data)
	require.NoError(t, err)
	assert.Len(t, written.Method("sign", "(I)I").TryCatch, 2)
}

func TestMergeEngine_GuardedFragmentAtHeadDoesNotPark(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass, guardedReset(m.LocationHead)))

	engine.Apply(unit, def)

	for _, insn := range unit.Method("sign", "(I)I").Instructions {
		assert.NotEqual(t, m.ISTORE, insn.Op())
	}

	_, err := classfile.Write(unit)
	require.NoError(t, err)
}

func TestMergeEngine_InjectTailBypassedByEarlyReturn(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass, method("onSign", "()V", injectMarker("sign", "(I)I", m.LocationTail), resetValue()...)))

	report := engine.Apply(unit, def)

	require.Len(t, report.Injections, 1)
	assert.Equal(t, 1, report.Injections[0].Sites)

	insns := unit.Method("sign", "(I)I").Instructions
	returns := returnIndexes(insns)
	require.Len(t, returns, 2)

	// The early return runs without the fragment.
	assert.Equal(t, 3, returns[0])
	assert.Equal(t, m.Insn{Opcode: m.ICONST_1}, insns[returns[0]-1])

	// The structurally last instruction gets it.
	last := returns[1]
	assert.Equal(t, len(insns)-1, last)
	assert.Equal(t, field(m.PUTFIELD, counterClass, "count"), insns[last-1])
}

func TestMergeEngine_ShadowRemapping(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	body := append(resetValue()[:3:3], bumpCalls()...)
	def := mustDefinition(t, mixUnit(counterClass, method("onTick", "()V", injectMarker("tick", "()V", m.LocationHead), body...)))

	engine.Apply(unit, def)

	insns := unit.Method("tick", "()V").Instructions
	assert.Equal(t, field(m.PUTFIELD, counterClass, "count"), insns[2], "shadowed field targets the host")
	assert.Equal(t, field(m.GETFIELD, mixClass, "calls"), insns[5], "unmapped field is copied unchanged")
	assert.Equal(t, field(m.PUTFIELD, mixClass, "calls"), insns[8])
}

func TestMergeEngine_TickScenario(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	original := counterUnit().Method("tick", "()V").Instructions
	def := mustDefinition(t, mixUnit(counterClass,
		method("onTickHead", "()V", injectMarker("tick", "()V", m.LocationHead), bumpCalls()...),
		method("onTickReturn", "()V", injectMarker("tick", "()V", m.LocationReturn), bumpCalls()...),
	))

	report := engine.Apply(unit, def)
	require.Len(t, report.Injections, 2)

	fragment := bumpCalls()[:6]
	insns := unit.Method("tick", "()V").Instructions

	require.Len(t, insns, len(original)+2*len(fragment))
	assert.Equal(t, fragment, insns[:6], "HEAD fragment first")
	assert.Equal(t, original[:6], insns[6:12])
	assert.Equal(t, fragment, insns[12:18], "RETURN fragment right before the sole return")
	assert.Equal(t, m.Insn{Opcode: m.RETURN}, insns[18])
}

func TestMergeEngine_FragmentReturnsJumpPastFragment(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	original := counterUnit().Method("tick", "()V").Instructions
	probe := method("probe", "()I", injectMarker("tick", "()V", m.LocationHead),
		aload0(),
		field(m.GETFIELD, mixClass, "value"),
		m.JumpInsn{Opcode: m.IFEQ, Target: 1},
		m.Insn{Opcode: m.ICONST_1},
		m.Insn{Opcode: m.IRETURN},
		m.LabelInsn{Label: 1},
		m.Insn{Opcode: m.ICONST_0},
		m.Insn{Opcode: m.IRETURN},
	)
	def := mustDefinition(t, mixUnit(counterClass, probe))

	engine.Apply(unit, def)

	insns := unit.Method("tick", "()V").Instructions
	require.Len(t, insns, 10+len(original), spew.Sdump(insns))

	branch, ok := insns[2].(m.JumpInsn)
	require.True(t, ok)
	assert.Equal(t, m.LabelInsn{Label: branch.Target}, insns[6])

	assert.Equal(t, m.Insn{Opcode: m.POP}, insns[4], "returned value is discarded")

	exit, ok := insns[5].(m.JumpInsn)
	require.True(t, ok)
	assert.Equal(t, m.GOTO, exit.Opcode)
	assert.Equal(t, m.LabelInsn{Label: exit.Target}, insns[9])
	assert.NotEqual(t, branch.Target, exit.Target)

	assert.Equal(t, m.Insn{Opcode: m.POP}, insns[8])
	assert.Equal(t, original, insns[10:])
	assert.Len(t, returnIndexes(insns), 1)
}

func TestMergeEngine_FragmentLocalsMoveAboveHost(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass, method("scratch", "()V", injectMarker("sign", "(I)I", m.LocationHead),
		m.Insn{Opcode: m.ICONST_5},
		m.VarInsn{Opcode: m.ISTORE, Var: 1},
		m.IincInsn{Var: 1, Increment: 1},
		m.Insn{Opcode: m.RETURN},
	)))

	engine.Apply(unit, def)

	insns := unit.Method("sign", "(I)I").Instructions
	assert.Equal(t, []m.Instruction{
		m.Insn{Opcode: m.ICONST_5},
		m.VarInsn{Opcode: m.ISTORE, Var: 2},
		m.IincInsn{Var: 2, Increment: 1},
		m.VarInsn{Opcode: m.ILOAD, Var: 1},
	}, insns[:4])
}

func TestMergeEngine_MissingInjectionTargetSkipped(t *testing.T) {
	engine := domain.NewMergeEngine()
	unit := counterUnit()
	def := mustDefinition(t, mixUnit(counterClass, method("onGone", "()V", injectMarker("gone", "()V", m.LocationHead), resetValue()...)))

	report := engine.Apply(unit, def)

	assert.Empty(t, report.Injections)
	assert.Equal(t, []string{"gone()V"}, report.InjectionsSkipped)
	assert.Len(t, unit.Methods, len(counterUnit().Methods))
}

func TestMergeEngine_MergeReachesDirectSuperclass(t *testing.T) {
	engine := domain.NewMergeEngine()
	def := mustDefinition(t, mixUnit(counterClass))

	base := &m.BinaryUnit{MajorVersion: 52, Access: m.AccPublic | m.AccSuper, Name: "demo/Base", Super: m.ObjectClass}
	root := &m.BinaryUnit{MajorVersion: 52, Access: m.AccPublic | m.AccSuper, Name: "demo/Root", Super: "demo/Base"}
	unit := counterUnit()
	unit.Super = "demo/Root"

	reports := engine.Merge(m.NewArena(unit, root, base), "demo.Counter", []*m.MixDefinition{def})

	require.Len(t, reports, 2)
	assert.Equal(t, counterClass, reports[0].Target)
	assert.Equal(t, "demo/Root", reports[1].Target)
	assert.NotNil(t, root.Field("calls"))
	assert.Nil(t, base.Field("calls"), "only one level up")
}

func TestMergeEngine_MergeWithoutLoadedSuperclass(t *testing.T) {
	engine := domain.NewMergeEngine()
	def := mustDefinition(t, mixUnit(counterClass))

	reports := engine.Merge(m.NewArena(counterUnit()), counterClass, []*m.MixDefinition{def})
	assert.Len(t, reports, 1)

	assert.Nil(t, engine.Merge(m.NewArena(counterUnit()), "demo/Missing", []*m.MixDefinition{def}))
}

func TestMergeEngine_ApplicableDeduplicatesSelfSuper(t *testing.T) {
	engine := domain.NewMergeEngine()
	def := mustDefinition(t, mixUnit(counterClass))

	unit := counterUnit()
	unit.Super = counterClass

	units := engine.Applicable(m.NewArena(unit), unit, def)
	assert.Equal(t, []*m.BinaryUnit{unit}, units)
}

func TestMergeEngine_ApplicableIgnoresRequiredInterfaces(t *testing.T) {
	engine := domain.NewMergeEngine()

	mix := mixUnit(counterClass)
	mix.Interfaces = []string{"demo/Tickable"}
	def := mustDefinition(t, mix)
	require.Equal(t, []string{"demo/Tickable"}, def.RequiredInterfaces)

	unit := counterUnit()
	require.Empty(t, unit.Interfaces)

	units := engine.Applicable(m.NewArena(unit), unit, def)
	assert.Equal(t, []*m.BinaryUnit{unit}, units)
}

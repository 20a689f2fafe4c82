package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "splice.dev/pkg/splice/internal/model"
)

type stubHierarchy map[string]string

func (h stubHierarchy) Lookup(name string) (string, bool, bool) {
	if name == "demo/Shape" {
		return m.ObjectClass, true, true
	}

	super, ok := h[name]

	return super, false, ok
}

func frameBytes(t *testing.T, unit *m.BinaryUnit, method *m.MethodUnit) ([]byte, *analysis) {
	t.Helper()

	w := &writer{unit: unit, cp: newPoolBuilder()}

	asm, err := w.assemble(method)
	require.NoError(t, err)

	an, err := w.analyze(method, asm)
	require.NoError(t, err)

	body, _ := w.stackMapTable(an, asm)

	return body, an
}

func TestStackMapTable_SameFrame(t *testing.T) {
	method := staticMethod("sign", "(I)I",
		m.VarInsn{Opcode: m.ILOAD, Var: 0},
		m.JumpInsn{Opcode: m.IFEQ, Target: 1},
		m.Insn{Opcode: m.ICONST_1},
		m.Insn{Opcode: m.IRETURN},
		m.LabelInsn{Label: 1},
		m.Insn{Opcode: m.ICONST_0},
		m.Insn{Opcode: m.IRETURN},
	)

	body, an := frameBytes(t, unitWith(method), method)

	// One same_frame at offset 6.
	assert.Equal(t, []byte{0, 1, 6}, body)
	assert.Equal(t, 1, an.maxStack)
}

func TestStackMapTable_AppendFrame(t *testing.T) {
	method := staticMethod("loop", "()V",
		m.Insn{Opcode: m.ICONST_0},
		m.VarInsn{Opcode: m.ISTORE, Var: 0},
		m.LabelInsn{Label: 1},
		m.VarInsn{Opcode: m.ILOAD, Var: 0},
		m.IntInsn{Opcode: m.BIPUSH, Operand: 10},
		m.JumpInsn{Opcode: m.IF_ICMPGE, Target: 2},
		m.IincInsn{Var: 0, Increment: 1},
		m.JumpInsn{Opcode: m.GOTO, Target: 1},
		m.LabelInsn{Label: 2},
		m.Insn{Opcode: m.RETURN},
	)

	body, an := frameBytes(t, unitWith(method), method)

	// append_frame [int] at offset 2, then same_frame at offset 14.
	assert.Equal(t, []byte{0, 2, 252, 0, 2, itemInteger, 11}, body)
	assert.Equal(t, 2, an.maxStack)
}

func TestStackMapTable_HandlerFrame(t *testing.T) {
	unit := counterUnit()
	method := &m.MethodUnit{
		Access: m.AccPublic,
		Name:   "guarded",
		Desc:   "()V",
		Instructions: []m.Instruction{
			m.LabelInsn{Label: 1},
			m.VarInsn{Opcode: m.ALOAD, Var: 0},
			m.MethodInsn{Opcode: m.INVOKEVIRTUAL, Owner: "demo/Counter", Name: "run", Desc: "()V"},
			m.LabelInsn{Label: 2},
			m.JumpInsn{Opcode: m.GOTO, Target: 4},
			m.LabelInsn{Label: 3},
			m.VarInsn{Opcode: m.ASTORE, Var: 1},
			m.LabelInsn{Label: 4},
			m.Insn{Opcode: m.RETURN},
		},
		TryCatch: []m.TryCatchBlock{{Start: 1, End: 2, Handler: 3, Type: "java/lang/RuntimeException"}},
	}

	body, an := frameBytes(t, unit, method)
	require.GreaterOrEqual(t, len(body), 6)

	assert.Equal(t, []byte{0, 2}, body[:2])
	// same_locals_1_stack_item at offset 7 holding the exception.
	assert.Equal(t, byte(64+7), body[2])
	assert.Equal(t, byte(itemObject), body[3])
	// The join point drops the handler's local again: same_frame, delta 0.
	assert.Equal(t, byte(0), body[len(body)-1])
	assert.Equal(t, 1, an.maxStack)
}

func TestStackMapTable_ConstructorStartsUninitialized(t *testing.T) {
	unit := counterUnit()
	init := unit.Methods[0]

	w := &writer{unit: unit, cp: newPoolBuilder()}
	asm, err := w.assemble(init)
	require.NoError(t, err)

	an, err := w.analyze(init, asm)
	require.NoError(t, err)

	assert.Equal(t, vUninitThis, an.in[0].locals[0].kind)
	assert.Equal(t, object("demo/Counter"), an.in[2].locals[0])
}

func TestAnalysis_CommonSuper(t *testing.T) {
	h := stubHierarchy{
		"demo/Circle": "demo/Round",
		"demo/Round":  m.ObjectClass,
		"demo/Oval":   "demo/Round",
		"demo/Square": m.ObjectClass,
	}

	an := &analysis{w: &writer{unit: &m.BinaryUnit{Name: "demo/Main", Super: m.ObjectClass}, hierarchy: h}}

	tests := []struct {
		a, b, want string
	}{
		{"demo/Circle", "demo/Oval", "demo/Round"},
		{"demo/Circle", "demo/Round", "demo/Round"},
		{"demo/Circle", "demo/Square", m.ObjectClass},
		{"demo/Circle", "demo/Unknown", m.ObjectClass},
		{"demo/Circle", "demo/Shape", m.ObjectClass},
		{"[Ldemo/Circle;", "[Ldemo/Oval;", "[Ldemo/Round;"},
		{"[I", "[J", m.ObjectClass},
		{"[I", "demo/Circle", m.ObjectClass},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, an.commonSuper(tt.a, tt.b), "%s ^ %s", tt.a, tt.b)
	}
}

func TestAssemble_WidensGoto(t *testing.T) {
	insns := []m.Instruction{m.JumpInsn{Opcode: m.GOTO, Target: 1}}
	for range 40000 {
		insns = append(insns, m.Insn{Opcode: m.NOP})
	}

	insns = append(insns, m.LabelInsn{Label: 1}, m.Insn{Opcode: m.RETURN})
	method := staticMethod("far", "()V", insns...)

	w := &writer{unit: unitWith(method), cp: newPoolBuilder()}
	asm, err := w.assemble(method)
	require.NoError(t, err)

	assert.True(t, asm.wide[0])
	assert.Equal(t, 5+40000+1, asm.offsets[len(asm.insns)])

	got := roundTrip(t, unitWith(method))
	assert.Equal(t, m.JumpInsn{Opcode: m.GOTO, Target: 1}, got.Methods[0].Instructions[0])
}

func TestAssemble_InvertsFarConditional(t *testing.T) {
	insns := []m.Instruction{
		m.VarInsn{Opcode: m.ILOAD, Var: 0},
		m.JumpInsn{Opcode: m.IFEQ, Target: 1},
	}
	for range 40000 {
		insns = append(insns, m.Insn{Opcode: m.NOP})
	}

	insns = append(insns, m.LabelInsn{Label: 1}, m.Insn{Opcode: m.RETURN})
	method := staticMethod("farIf", "(I)V", insns...)

	w := &writer{unit: unitWith(method), cp: newPoolBuilder()}
	asm, err := w.assemble(method)
	require.NoError(t, err)

	assert.Equal(t, m.JumpInsn{Opcode: m.IFNE, Target: 2}, asm.insns[1])
	assert.Equal(t, m.JumpInsn{Opcode: m.GOTO, Target: 1}, asm.insns[2])
	assert.Equal(t, m.LabelInsn{Label: 2}, asm.insns[3])
	assert.True(t, asm.wide[2])

	_, err = Write(unitWith(method))
	require.NoError(t, err)
}

func TestInvertBranch(t *testing.T) {
	pairs := map[m.Opcode]m.Opcode{
		m.IFEQ:      m.IFNE,
		m.IFLT:      m.IFGE,
		m.IFGT:      m.IFLE,
		m.IF_ICMPEQ: m.IF_ICMPNE,
		m.IF_ICMPLT: m.IF_ICMPGE,
		m.IF_ICMPGT: m.IF_ICMPLE,
		m.IF_ACMPEQ: m.IF_ACMPNE,
		m.IFNULL:    m.IFNONNULL,
	}

	for op, inv := range pairs {
		assert.Equal(t, inv, invertBranch(op), op.String())
		assert.Equal(t, op, invertBranch(inv), inv.String())
	}
}

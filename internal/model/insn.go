package model

// Label identifies a position inside one method's instruction sequence.
// Labels are unique per method; copies of a fragment get fresh ones.
type Label int

// Instruction is one element of a method body. Implementations are plain
// values: rewriting an instruction means building a new one.
type Instruction interface {
	Op() Opcode
}

// Insn is an instruction without operands (arithmetic, array access,
// returns, monitor, stack manipulation).
type Insn struct {
	Opcode Opcode
}

// IntInsn carries an immediate operand (bipush, sipush, newarray).
type IntInsn struct {
	Opcode  Opcode
	Operand int32
}

// VarInsn loads or stores a local variable slot, or is a ret.
type VarInsn struct {
	Opcode Opcode
	Var    int
}

// IincInsn increments a local int variable.
type IincInsn struct {
	Var       int
	Increment int32
}

// TypeInsn references a class by internal name (new, anewarray, checkcast,
// instanceof).
type TypeInsn struct {
	Opcode Opcode
	Type   string
}

// FieldInsn reads or writes a field.
type FieldInsn struct {
	Opcode Opcode
	Owner  string
	Name   string
	Desc   string
}

// MethodInsn invokes a method.
type MethodInsn struct {
	Opcode    Opcode
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// InvokeDynamicInsn is an invokedynamic call site.
type InvokeDynamicInsn struct {
	Name      string
	Desc      string
	Bootstrap Handle
	Args      []any
}

// JumpInsn transfers control to a label (conditional branches, goto, jsr).
type JumpInsn struct {
	Opcode Opcode
	Target Label
}

// LdcInsn pushes a constant: int32, float32, int64, float64, string,
// ClassConst, MethodTypeConst, Handle or DynamicConst.
type LdcInsn struct {
	Value any
}

// TableSwitchInsn is a dense switch over [Min, Max].
type TableSwitchInsn struct {
	Min     int32
	Max     int32
	Default Label
	Targets []Label
}

// LookupSwitchInsn is a sparse switch; Keys are sorted ascending on write.
type LookupSwitchInsn struct {
	Default Label
	Keys    []int32
	Targets []Label
}

// MultiANewArrayInsn allocates a multi-dimensional array.
type MultiANewArrayInsn struct {
	Desc string
	Dims int
}

// LabelInsn anchors a label at its position.
type LabelInsn struct {
	Label Label
}

// LineInsn associates a source line with the instruction following Start.
type LineInsn struct {
	Line  int
	Start Label
}

func (i Insn) Op() Opcode { return i.Opcode }
func (i IntInsn) Op() Opcode { return i.Opcode }
func (i VarInsn) Op() Opcode { return i.Opcode }
func (IincInsn) Op() Opcode { return IINC }
func (i TypeInsn) Op() Opcode { return i.Opcode }
func (i FieldInsn) Op() Opcode { return i.Opcode }
func (i MethodInsn) Op() Opcode { return i.Opcode }
func (InvokeDynamicInsn) Op() Opcode { return INVOKEDYNAMIC }
func (i JumpInsn) Op() Opcode { return i.Opcode }
func (LdcInsn) Op() Opcode { return LDC }
func (TableSwitchInsn) Op() Opcode { return TABLESWITCH }
func (LookupSwitchInsn) Op() Opcode { return LOOKUPSWITCH }
func (MultiANewArrayInsn) Op() Opcode { return MULTIANEWARRAY }
func (LabelInsn) Op() Opcode { return OpLabel }
func (LineInsn) Op() Opcode { return OpLine }

// IsWrite reports whether the field access stores into the field.
func (i FieldInsn) IsWrite() bool {
	return i.Opcode == PUTFIELD || i.Opcode == PUTSTATIC
}

// IsStatic reports whether the field access targets a static field.
func (i FieldInsn) IsStatic() bool {
	return i.Opcode == GETSTATIC || i.Opcode == PUTSTATIC
}

// ClassConst is a class literal pushed by ldc (internal name or array
// descriptor).
type ClassConst struct {
	Name string
}

// MethodTypeConst is a method type constant.
type MethodTypeConst struct {
	Desc string
}

// Handle is a method handle constant.
type Handle struct {
	Kind      uint8
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// DynamicConst is a dynamically-computed constant (condy).
type DynamicConst struct {
	Name      string
	Desc      string
	Bootstrap Handle
	Args      []any
}

// Method handle reference kinds.
const (
	RefGetField         uint8 = 1
	RefGetStatic        uint8 = 2
	RefPutField         uint8 = 3
	RefPutStatic        uint8 = 4
	RefInvokeVirtual    uint8 = 5
	RefInvokeStatic     uint8 = 6
	RefInvokeSpecial    uint8 = 7
	RefNewInvokeSpecial uint8 = 8
	RefInvokeInterface  uint8 = 9
)

// TryCatchBlock is one exception table entry. An empty Type catches
// everything (finally).
type TryCatchBlock struct {
	Start   Label
	End     Label
	Handler Label
	Type    string
}

// CloneConstant copies constants that hold slices.
func CloneConstant(v any) any {
	if d, ok := v.(DynamicConst); ok {
		d.Args = cloneArgs(d.Args)
		return d
	}

	return v
}

func cloneArgs(args []any) []any {
	if args == nil {
		return nil
	}

	out := make([]any, len(args))
	for i, a := range args {
		out[i] = CloneConstant(a)
	}

	return out
}

// CloneInstruction returns an instruction sharing no slices with insn.
func CloneInstruction(insn Instruction) Instruction {
	switch in := insn.(type) {
	case InvokeDynamicInsn:
		in.Args = cloneArgs(in.Args)
		return in
	case LdcInsn:
		in.Value = CloneConstant(in.Value)
		return in
	case TableSwitchInsn:
		in.Targets = append([]Label(nil), in.Targets...)
		return in
	case LookupSwitchInsn:
		in.Keys = append([]int32(nil), in.Keys...)
		in.Targets = append([]Label(nil), in.Targets...)
		return in
	}

	return insn
}

// CloneInstructions deep-copies a sequence.
func CloneInstructions(insns []Instruction) []Instruction {
	if insns == nil {
		return nil
	}

	out := make([]Instruction, len(insns))
	for i, insn := range insns {
		out[i] = CloneInstruction(insn)
	}

	return out
}

// RelabelInstruction rewrites every label insn refers to through fn.
func RelabelInstruction(insn Instruction, fn func(Label) Label) Instruction {
	switch in := insn.(type) {
	case JumpInsn:
		in.Target = fn(in.Target)
		return in
	case LabelInsn:
		in.Label = fn(in.Label)
		return in
	case LineInsn:
		in.Start = fn(in.Start)
		return in
	case TableSwitchInsn:
		targets := make([]Label, len(in.Targets))
		for i, t := range in.Targets {
			targets[i] = fn(t)
		}

		in.Default = fn(in.Default)
		in.Targets = targets

		return in
	case LookupSwitchInsn:
		targets := make([]Label, len(in.Targets))
		for i, t := range in.Targets {
			targets[i] = fn(t)
		}

		in.Default = fn(in.Default)
		in.Targets = targets
		in.Keys = append([]int32(nil), in.Keys...)

		return in
	}

	return CloneInstruction(insn)
}

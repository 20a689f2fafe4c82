package classfile

import (
	"fmt"
	"math"
	"sort"

	"splice.dev/pkg/splice/internal/model"
)

// assembly is an instruction sequence with a fixed byte layout.
type assembly struct {
	insns   []model.Instruction
	offsets []int
	labels  map[model.Label]int
	wide    map[int]bool
	ldc     map[int]uint16
}

// assemble lays out the method body. goto and jsr widen to their _w forms
// when a target is out of 16-bit reach; a conditional branch out of reach
// is rewritten as the inverted condition around a goto.
func (w *writer) assemble(m *model.MethodUnit) (*assembly, error) {
	asm := &assembly{
		insns: append([]model.Instruction(nil), m.Instructions...),
		wide:  make(map[int]bool),
	}

	next := maxLabel(asm.insns, m.TryCatch) + 1

	for {
		if err := asm.index(); err != nil {
			return nil, err
		}

		for _, tc := range m.TryCatch {
			for _, l := range []model.Label{tc.Start, tc.End, tc.Handler} {
				if _, ok := asm.labels[l]; !ok {
					return nil, fmt.Errorf("exception handler references undefined label %d", l)
				}
			}
		}

		w.layout(asm)

		rewrote := false
		widened := false

		for i, insn := range asm.insns {
			j, ok := insn.(model.JumpInsn)
			if !ok || asm.wide[i] {
				continue
			}

			delta := asm.offsets[asm.labels[j.Target]] - asm.offsets[i]
			if delta >= math.MinInt16 && delta <= math.MaxInt16 {
				continue
			}

			if j.Opcode == model.GOTO || j.Opcode == model.JSR {
				asm.wide[i] = true
				widened = true

				continue
			}

			skip := next
			next++

			patched := make([]model.Instruction, 0, len(asm.insns)+2)
			patched = append(patched, asm.insns[:i]...)
			patched = append(patched,
				model.JumpInsn{Opcode: invertBranch(j.Opcode), Target: skip},
				model.JumpInsn{Opcode: model.GOTO, Target: j.Target},
				model.LabelInsn{Label: skip},
			)
			patched = append(patched, asm.insns[i+1:]...)
			asm.insns = patched
			asm.wide = make(map[int]bool)
			rewrote = true

			break
		}

		if rewrote || widened {
			continue
		}

		if code := asm.offsets[len(asm.insns)]; code > maxCodeLength {
			return nil, fmt.Errorf("code length %d exceeds %d bytes", code, maxCodeLength)
		}

		return asm, nil
	}
}

func invertBranch(op model.Opcode) model.Opcode {
	if op == model.IFNULL || op == model.IFNONNULL {
		return ((op - model.IFNULL) ^ 1) + model.IFNULL
	}

	return ((op - model.IFEQ) ^ 1) + model.IFEQ
}

func maxLabel(insns []model.Instruction, tcs []model.TryCatchBlock) model.Label {
	var hi model.Label

	see := func(l model.Label) model.Label {
		if l > hi {
			hi = l
		}

		return l
	}

	for _, insn := range insns {
		model.RelabelInstruction(insn, see)
	}

	for _, tc := range tcs {
		see(tc.Start)
		see(tc.End)
		see(tc.Handler)
	}

	return hi
}

// index maps every label to its position and checks references.
func (a *assembly) index() error {
	a.labels = make(map[model.Label]int)

	for i, insn := range a.insns {
		if l, ok := insn.(model.LabelInsn); ok {
			if _, dup := a.labels[l.Label]; dup {
				return fmt.Errorf("label %d defined twice", l.Label)
			}

			a.labels[l.Label] = i
		}
	}

	var missing error

	for _, insn := range a.insns {
		model.RelabelInstruction(insn, func(l model.Label) model.Label {
			if _, ok := a.labels[l]; !ok && missing == nil {
				missing = fmt.Errorf("%s references undefined label %d", insn.Op(), l)
			}

			return l
		})
	}

	return missing
}

func (w *writer) layout(a *assembly) {
	a.offsets = make([]int, len(a.insns)+1)
	a.ldc = make(map[int]uint16)

	pc := 0
	for i, insn := range a.insns {
		a.offsets[i] = pc
		pc += w.size(a, i, insn, pc)
	}

	a.offsets[len(a.insns)] = pc
}

func isShortVar(op model.Opcode) bool {
	return (op >= model.ILOAD && op <= model.ALOAD) || (op >= model.ISTORE && op <= model.ASTORE)
}

func (w *writer) size(a *assembly, i int, insn model.Instruction, pc int) int {
	switch in := insn.(type) {
	case model.LabelInsn, model.LineInsn:
		return 0
	case model.Insn:
		return 1
	case model.IntInsn:
		if in.Opcode == model.SIPUSH {
			return 3
		}

		return 2
	case model.VarInsn:
		switch {
		case in.Var <= 3 && isShortVar(in.Opcode):
			return 1
		case in.Var <= math.MaxUint8:
			return 2
		}

		return 4
	case model.IincInsn:
		if in.Var <= math.MaxUint8 && in.Increment >= math.MinInt8 && in.Increment <= math.MaxInt8 {
			return 3
		}

		return 6
	case model.LdcInsn:
		idx := w.cp.constant(in.Value)
		a.ldc[i] = idx

		if isWideConstant(in.Value) || idx > math.MaxUint8 {
			return 3
		}

		return 2
	case model.JumpInsn:
		if a.wide[i] {
			return 5
		}

		return 3
	case model.TableSwitchInsn:
		if int64(in.Max)-int64(in.Min)+1 != int64(len(in.Targets)) {
			w.fail(fmt.Errorf("tableswitch [%d,%d] has %d targets", in.Min, in.Max, len(in.Targets)))
		}

		return 1 + padding(pc) + 12 + 4*len(in.Targets)
	case model.LookupSwitchInsn:
		if len(in.Keys) != len(in.Targets) {
			w.fail(fmt.Errorf("lookupswitch has %d keys and %d targets", len(in.Keys), len(in.Targets)))
		}

		return 1 + padding(pc) + 8 + 8*len(in.Keys)
	case model.FieldInsn, model.TypeInsn:
		return 3
	case model.MethodInsn:
		if in.Opcode == model.INVOKEINTERFACE {
			return 5
		}

		return 3
	case model.InvokeDynamicInsn:
		return 5
	case model.MultiANewArrayInsn:
		return 4
	}

	w.fail(fmt.Errorf("unsupported instruction %T", insn))

	return 0
}

func (w *writer) encode(a *assembly) []byte {
	var o output

	for i, insn := range a.insns {
		pc := a.offsets[i]
		branch := func(l model.Label) int { return a.offsets[a.labels[l]] - pc }

		switch in := insn.(type) {
		case model.LabelInsn, model.LineInsn:
		case model.Insn:
			o.u1(uint8(in.Opcode))
		case model.IntInsn:
			o.u1(uint8(in.Opcode))

			if in.Opcode == model.SIPUSH {
				o.u2(uint16(int16(in.Operand)))
			} else {
				o.u1(uint8(int8(in.Operand)))
			}
		case model.VarInsn:
			switch {
			case in.Var <= 3 && in.Opcode >= model.ILOAD && in.Opcode <= model.ALOAD:
				o.u1(uint8(model.ILOAD_0 + (in.Opcode-model.ILOAD)*4 + model.Opcode(in.Var)))
			case in.Var <= 3 && in.Opcode >= model.ISTORE && in.Opcode <= model.ASTORE:
				o.u1(uint8(model.ISTORE_0 + (in.Opcode-model.ISTORE)*4 + model.Opcode(in.Var)))
			case in.Var <= math.MaxUint8:
				o.u1(uint8(in.Opcode))
				o.u1(uint8(in.Var))
			default:
				o.u1(uint8(model.WIDE))
				o.u1(uint8(in.Opcode))
				o.u2(uint16(in.Var))
			}
		case model.IincInsn:
			if in.Var <= math.MaxUint8 && in.Increment >= math.MinInt8 && in.Increment <= math.MaxInt8 {
				o.u1(uint8(model.IINC))
				o.u1(uint8(in.Var))
				o.u1(uint8(int8(in.Increment)))
			} else {
				o.u1(uint8(model.WIDE))
				o.u1(uint8(model.IINC))
				o.u2(uint16(in.Var))
				o.u2(uint16(int16(in.Increment)))
			}
		case model.LdcInsn:
			idx := a.ldc[i]

			switch {
			case isWideConstant(in.Value):
				o.u1(uint8(model.LDC2_W))
				o.u2(idx)
			case idx > math.MaxUint8:
				o.u1(uint8(model.LDC_W))
				o.u2(idx)
			default:
				o.u1(uint8(model.LDC))
				o.u1(uint8(idx))
			}
		case model.JumpInsn:
			if a.wide[i] {
				op := model.GOTO_W
				if in.Opcode == model.JSR {
					op = model.JSR_W
				}

				o.u1(uint8(op))
				o.u4(uint32(int32(branch(in.Target))))
			} else {
				o.u1(uint8(in.Opcode))
				o.u2(uint16(int16(branch(in.Target))))
			}
		case model.TableSwitchInsn:
			o.u1(uint8(model.TABLESWITCH))
			o.Write(make([]byte, padding(pc)))
			o.u4(uint32(int32(branch(in.Default))))
			o.u4(uint32(in.Min))
			o.u4(uint32(in.Max))

			for _, t := range in.Targets {
				o.u4(uint32(int32(branch(t))))
			}
		case model.LookupSwitchInsn:
			o.u1(uint8(model.LOOKUPSWITCH))
			o.Write(make([]byte, padding(pc)))
			o.u4(uint32(int32(branch(in.Default))))
			o.u4(uint32(len(in.Keys)))

			order := make([]int, len(in.Keys))
			for k := range order {
				order[k] = k
			}

			sort.SliceStable(order, func(x, y int) bool { return in.Keys[order[x]] < in.Keys[order[y]] })

			for _, k := range order {
				o.u4(uint32(in.Keys[k]))
				o.u4(uint32(int32(branch(in.Targets[k]))))
			}
		case model.FieldInsn:
			o.u1(uint8(in.Opcode))
			o.u2(w.cp.field(in.Owner, in.Name, in.Desc))
		case model.MethodInsn:
			o.u1(uint8(in.Opcode))
			o.u2(w.cp.method(in.Owner, in.Name, in.Desc, in.Interface))

			if in.Opcode == model.INVOKEINTERFACE {
				o.u1(uint8(model.ArgumentSlots(in.Desc, false)))
				o.u1(0)
			}
		case model.InvokeDynamicInsn:
			o.u1(uint8(model.INVOKEDYNAMIC))
			o.u2(w.cp.invokeDynamic(tagInvokeDynamic, in.Name, in.Desc, in.Bootstrap, in.Args))
			o.u2(0)
		case model.TypeInsn:
			o.u1(uint8(in.Opcode))
			o.u2(w.cp.class(in.Type))
		case model.MultiANewArrayInsn:
			o.u1(uint8(model.MULTIANEWARRAY))
			o.u2(w.cp.class(in.Desc))
			o.u1(uint8(in.Dims))
		}
	}

	return o.Bytes()
}

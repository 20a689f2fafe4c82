package classfile

import (
	"fmt"
	"sort"

	"splice.dev/pkg/splice/internal/model"
)

type lineEntry struct {
	pc   int
	line int
}

type rawHandler struct {
	start, end, handler int
	catchType           string
}

// codeDecoder turns a Code attribute into the symbolic instruction list.
// Branch offsets become labels allocated in first-reference order.
type codeDecoder struct {
	cp     *pool
	code   []byte
	labels map[int]model.Label
	next   model.Label
}

func (d *codeDecoder) labelAt(offset int) (model.Label, error) {
	if offset < 0 || offset > len(d.code) {
		return 0, fmt.Errorf("%w: branch target %d outside code", model.ErrMalformedUnit, offset)
	}

	if l, ok := d.labels[offset]; ok {
		return l, nil
	}

	d.next++
	d.labels[offset] = d.next

	return d.next, nil
}

type decoded struct {
	offset int
	insn   model.Instruction
}

func decodeCode(cp *pool, code []byte, handlers []rawHandler, lines []lineEntry) ([]model.Instruction, []model.TryCatchBlock, error) {
	d := &codeDecoder{cp: cp, code: code, labels: make(map[int]model.Label)}

	var body []decoded

	for pc := 0; pc < len(code); {
		insn, size, err := d.decodeAt(pc)
		if err != nil {
			return nil, nil, fmt.Errorf("at pc %d: %w", pc, err)
		}

		body = append(body, decoded{offset: pc, insn: insn})
		pc += size
	}

	valid := make(map[int]bool, len(body)+1)
	for _, b := range body {
		valid[b.offset] = true
	}

	valid[len(code)] = true

	var tryCatch []model.TryCatchBlock

	for _, h := range handlers {
		if !valid[h.start] || !valid[h.end] || !valid[h.handler] || h.start >= h.end {
			return nil, nil, fmt.Errorf("%w: exception range [%d,%d)->%d does not align with instructions",
				model.ErrMalformedUnit, h.start, h.end, h.handler)
		}

		start, _ := d.labelAt(h.start)
		end, _ := d.labelAt(h.end)
		handler, _ := d.labelAt(h.handler)

		tryCatch = append(tryCatch, model.TryCatchBlock{Start: start, End: end, Handler: handler, Type: h.catchType})
	}

	linesAt := make(map[int][]int)
	for _, le := range lines {
		if !valid[le.pc] || le.pc == len(code) {
			continue
		}

		linesAt[le.pc] = append(linesAt[le.pc], le.line)
		_, _ = d.labelAt(le.pc)
	}

	for off := range d.labels {
		if !valid[off] {
			return nil, nil, fmt.Errorf("%w: branch target %d is inside an instruction", model.ErrMalformedUnit, off)
		}
	}

	out := make([]model.Instruction, 0, len(body)+len(d.labels)+len(linesAt))
	for _, b := range body {
		if l, ok := d.labels[b.offset]; ok {
			out = append(out, model.LabelInsn{Label: l})

			for _, line := range linesAt[b.offset] {
				out = append(out, model.LineInsn{Line: line, Start: l})
			}
		}

		out = append(out, b.insn)
	}

	if l, ok := d.labels[len(code)]; ok {
		out = append(out, model.LabelInsn{Label: l})
	}

	return out, tryCatch, nil
}

func (d *codeDecoder) u1(pc int) int { return int(d.code[pc]) }
func (d *codeDecoder) s1(pc int) int { return int(int8(d.code[pc])) }
func (d *codeDecoder) u2(pc int) int { return int(d.code[pc])<<8 | int(d.code[pc+1]) }
func (d *codeDecoder) s2(pc int) int { return int(int16(d.u2(pc))) }
func (d *codeDecoder) s4(pc int) int {
	return int(int32(uint32(d.code[pc])<<24 | uint32(d.code[pc+1])<<16 | uint32(d.code[pc+2])<<8 | uint32(d.code[pc+3])))
}

func (d *codeDecoder) has(pc, n int) error {
	if pc+n > len(d.code) {
		return fmt.Errorf("%w: truncated instruction", model.ErrMalformedUnit)
	}

	return nil
}

// decodeAt decodes the instruction at pc and returns its encoded size.
func (d *codeDecoder) decodeAt(pc int) (model.Instruction, int, error) {
	op := model.Opcode(d.code[pc])

	size, err := d.sizeAt(pc)
	if err != nil {
		return nil, 0, err
	}

	if err := d.has(pc, size); err != nil {
		return nil, 0, err
	}

	switch {
	case op <= model.DCONST_1, op >= model.IALOAD && op <= model.SALOAD,
		op >= model.IASTORE && op <= model.LXOR, op >= model.I2L && op <= model.DCMPG,
		op >= model.IRETURN && op <= model.RETURN,
		op == model.ARRAYLENGTH, op == model.ATHROW, op == model.MONITORENTER, op == model.MONITOREXIT:
		return model.Insn{Opcode: op}, size, nil
	case op == model.BIPUSH:
		return model.IntInsn{Opcode: op, Operand: int32(d.s1(pc + 1))}, size, nil
	case op == model.SIPUSH:
		return model.IntInsn{Opcode: op, Operand: int32(d.s2(pc + 1))}, size, nil
	case op == model.NEWARRAY:
		return model.IntInsn{Opcode: op, Operand: int32(d.u1(pc + 1))}, size, nil
	case op == model.LDC, op == model.LDC_W, op == model.LDC2_W:
		idx := d.u1(pc + 1)
		if op != model.LDC {
			idx = d.u2(pc + 1)
		}

		v, err := d.cp.constant(uint16(idx))
		if err != nil {
			return nil, 0, err
		}

		return model.LdcInsn{Value: v}, size, nil
	case op >= model.ILOAD && op <= model.ALOAD, op >= model.ISTORE && op <= model.ASTORE, op == model.RET:
		return model.VarInsn{Opcode: op, Var: d.u1(pc + 1)}, size, nil
	case op >= model.ILOAD_0 && op <= model.ALOAD_3:
		n := int(op - model.ILOAD_0)
		return model.VarInsn{Opcode: model.ILOAD + model.Opcode(n/4), Var: n % 4}, size, nil
	case op >= model.ISTORE_0 && op <= model.ASTORE_3:
		n := int(op - model.ISTORE_0)
		return model.VarInsn{Opcode: model.ISTORE + model.Opcode(n/4), Var: n % 4}, size, nil
	case op == model.IINC:
		return model.IincInsn{Var: d.u1(pc + 1), Increment: int32(d.s1(pc + 2))}, size, nil
	case op >= model.IFEQ && op <= model.JSR, op == model.IFNULL, op == model.IFNONNULL:
		target, err := d.labelAt(pc + d.s2(pc+1))
		return model.JumpInsn{Opcode: op, Target: target}, size, err
	case op == model.GOTO_W, op == model.JSR_W:
		target, err := d.labelAt(pc + d.s4(pc+1))
		narrow := model.GOTO
		if op == model.JSR_W {
			narrow = model.JSR
		}

		return model.JumpInsn{Opcode: narrow, Target: target}, size, err
	case op == model.TABLESWITCH:
		return d.tableSwitch(pc, size)
	case op == model.LOOKUPSWITCH:
		return d.lookupSwitch(pc, size)
	case op >= model.GETSTATIC && op <= model.PUTFIELD:
		ref, err := d.cp.member(uint16(d.u2(pc+1)), tagFieldref)
		if err != nil {
			return nil, 0, err
		}

		return model.FieldInsn{Opcode: op, Owner: ref.owner, Name: ref.name, Desc: ref.desc}, size, nil
	case op >= model.INVOKEVIRTUAL && op <= model.INVOKEINTERFACE:
		ref, err := d.cp.member(uint16(d.u2(pc+1)), tagMethodref, tagInterfaceMethodref)
		if err != nil {
			return nil, 0, err
		}

		return model.MethodInsn{Opcode: op, Owner: ref.owner, Name: ref.name, Desc: ref.desc, Interface: ref.itf}, size, nil
	case op == model.INVOKEDYNAMIC:
		e, err := d.cp.entry(uint16(d.u2(pc+1)), tagInvokeDynamic)
		if err != nil {
			return nil, 0, err
		}

		name, desc, err := d.cp.nameAndType(e.b)
		if err != nil {
			return nil, 0, err
		}

		h, args, err := d.cp.bootstrap(e.a)
		if err != nil {
			return nil, 0, err
		}

		return model.InvokeDynamicInsn{Name: name, Desc: desc, Bootstrap: h, Args: args}, size, nil
	case op == model.NEW, op == model.ANEWARRAY, op == model.CHECKCAST, op == model.INSTANCEOF:
		name, err := d.cp.class(uint16(d.u2(pc + 1)))
		return model.TypeInsn{Opcode: op, Type: name}, size, err
	case op == model.MULTIANEWARRAY:
		name, err := d.cp.class(uint16(d.u2(pc + 1)))
		return model.MultiANewArrayInsn{Desc: name, Dims: d.u1(pc + 3)}, size, err
	case op == model.WIDE:
		inner := model.Opcode(d.code[pc+1])
		if inner == model.IINC {
			return model.IincInsn{Var: d.u2(pc + 2), Increment: int32(d.s2(pc + 4))}, size, nil
		}

		return model.VarInsn{Opcode: inner, Var: d.u2(pc + 2)}, size, nil
	}

	return nil, 0, fmt.Errorf("%w: unknown opcode 0x%02x", model.ErrMalformedUnit, int(op))
}

func (d *codeDecoder) sizeAt(pc int) (int, error) {
	op := model.Opcode(d.code[pc])

	switch {
	case op == model.BIPUSH, op == model.LDC, op == model.NEWARRAY, op == model.RET,
		op >= model.ILOAD && op <= model.ALOAD, op >= model.ISTORE && op <= model.ASTORE:
		return 2, nil
	case op == model.SIPUSH, op == model.LDC_W, op == model.LDC2_W, op == model.IINC,
		op >= model.IFEQ && op <= model.JSR, op == model.IFNULL, op == model.IFNONNULL,
		op >= model.GETSTATIC && op <= model.INVOKESTATIC,
		op == model.NEW, op == model.ANEWARRAY, op == model.CHECKCAST, op == model.INSTANCEOF:
		return 3, nil
	case op == model.MULTIANEWARRAY:
		return 4, nil
	case op == model.INVOKEINTERFACE, op == model.INVOKEDYNAMIC, op == model.GOTO_W, op == model.JSR_W:
		return 5, nil
	case op == model.WIDE:
		if err := d.has(pc, 2); err != nil {
			return 0, err
		}

		inner := model.Opcode(d.code[pc+1])

		switch {
		case inner == model.IINC:
			return 6, nil
		case inner >= model.ILOAD && inner <= model.ALOAD, inner >= model.ISTORE && inner <= model.ASTORE, inner == model.RET:
			return 4, nil
		}

		return 0, fmt.Errorf("%w: wide applied to 0x%02x", model.ErrMalformedUnit, int(inner))
	case op == model.TABLESWITCH:
		base := pc + 1 + padding(pc)
		if err := d.has(base, 12); err != nil {
			return 0, err
		}

		lo, hi := d.s4(base+4), d.s4(base+8)
		if hi < lo {
			return 0, fmt.Errorf("%w: tableswitch high %d < low %d", model.ErrMalformedUnit, hi, lo)
		}

		return base + 12 + 4*(hi-lo+1) - pc, nil
	case op == model.LOOKUPSWITCH:
		base := pc + 1 + padding(pc)
		if err := d.has(base, 8); err != nil {
			return 0, err
		}

		n := d.s4(base + 4)
		if n < 0 {
			return 0, fmt.Errorf("%w: negative lookupswitch count", model.ErrMalformedUnit)
		}

		return base + 8 + 8*n - pc, nil
	case op > model.JSR_W:
		return 0, fmt.Errorf("%w: unknown opcode 0x%02x", model.ErrMalformedUnit, int(op))
	}

	return 1, nil
}

// padding returns the alignment bytes after a switch opcode at pc.
func padding(pc int) int {
	return (4 - (pc+1)%4) % 4
}

func (d *codeDecoder) tableSwitch(pc, size int) (model.Instruction, int, error) {
	base := pc + 1 + padding(pc)

	def, err := d.labelAt(pc + d.s4(base))
	if err != nil {
		return nil, 0, err
	}

	lo, hi := d.s4(base+4), d.s4(base+8)
	targets := make([]model.Label, 0, hi-lo+1)

	for i := 0; i <= hi-lo; i++ {
		l, err := d.labelAt(pc + d.s4(base+12+4*i))
		if err != nil {
			return nil, 0, err
		}

		targets = append(targets, l)
	}

	return model.TableSwitchInsn{Min: int32(lo), Max: int32(hi), Default: def, Targets: targets}, size, nil
}

func (d *codeDecoder) lookupSwitch(pc, size int) (model.Instruction, int, error) {
	base := pc + 1 + padding(pc)

	def, err := d.labelAt(pc + d.s4(base))
	if err != nil {
		return nil, 0, err
	}

	n := d.s4(base + 4)
	keys := make([]int32, 0, n)
	targets := make([]model.Label, 0, n)

	for i := 0; i < n; i++ {
		keys = append(keys, int32(d.s4(base+8+8*i)))

		l, err := d.labelAt(pc + d.s4(base+12+8*i))
		if err != nil {
			return nil, 0, err
		}

		targets = append(targets, l)
	}

	if !sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }) {
		return nil, 0, fmt.Errorf("%w: lookupswitch keys are not sorted", model.ErrMalformedUnit)
	}

	return model.LookupSwitchInsn{Default: def, Keys: keys, Targets: targets}, size, nil
}

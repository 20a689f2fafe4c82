package domain

import (
	m "splice.dev/pkg/splice/internal/model"
)

// fragment is the host-independent body of an injected method. Every
// insertion site receives its own instance with fresh labels.
type fragment struct {
	insns    []m.Instruction
	tryCatch []m.TryCatchBlock
}

// newFragment prepares decl for splicing into host: line markers are
// dropped, shadowed fields remapped, temporaries moved above the host's
// locals and returns turned into jumps past the fragment.
func newFragment(decl *m.MethodUnit, def *m.MixDefinition, host *m.MethodUnit, hostOwner string) fragment {
	var insns []m.Instruction

	for _, insn := range m.CloneInstructions(decl.Instructions) {
		if _, ok := insn.(m.LineInsn); ok {
			continue
		}

		insns = append(insns, insn)
	}

	insns = remapShadows(insns, def, hostOwner)
	insns = shiftLocals(insns, m.ArgumentSlots(decl.Desc, decl.Access.Has(m.AccStatic)), hostLocals(host))
	insns = rewriteReturns(insns, decl.Clone().NewLabel())

	return fragment{
		insns:    insns,
		tryCatch: append([]m.TryCatchBlock(nil), decl.TryCatch...),
	}
}

// instantiate copies the fragment with labels freshly allocated in host.
func (f fragment) instantiate(host *m.MethodUnit) ([]m.Instruction, []m.TryCatchBlock) {
	fresh := map[m.Label]m.Label{}

	relabel := func(l m.Label) m.Label {
		if n, ok := fresh[l]; ok {
			return n
		}

		n := host.NewLabel()
		fresh[l] = n

		return n
	}

	insns := make([]m.Instruction, len(f.insns))
	for i, insn := range f.insns {
		insns[i] = m.RelabelInstruction(m.CloneInstruction(insn), relabel)
	}

	tryCatch := make([]m.TryCatchBlock, len(f.tryCatch))
	for i, tc := range f.tryCatch {
		tryCatch[i] = m.TryCatchBlock{
			Start:   relabel(tc.Start),
			End:     relabel(tc.End),
			Handler: relabel(tc.Handler),
			Type:    tc.Type,
		}
	}

	return insns, tryCatch
}

// splice inserts the fragment into host at the given location and returns
// the number of insertion sites.
func splice(host *m.MethodUnit, frag fragment, at m.Location) int {
	var (
		out      []m.Instruction
		handlers []m.TryCatchBlock
		sites    int
	)

	// A handler entry empties the operand stack, so a return value waiting
	// under a guarded fragment is parked in a local until the fragment ends.
	spill := -1
	if len(frag.tryCatch) > 0 {
		spill = max(hostLocals(host), frag.locals())
	}

	insert := func(before m.Opcode) {
		store, load, parked := parkOps(before)
		parked = parked && spill >= 0

		if parked {
			out = append(out, m.VarInsn{Opcode: store, Var: spill})
		}

		insns, tc := frag.instantiate(host)
		out = append(out, insns...)
		handlers = append(handlers, tc...)

		if parked {
			out = append(out, m.VarInsn{Opcode: load, Var: spill})
		}

		sites++
	}

	switch at {
	case m.LocationHead:
		insert(m.NOP)
		out = append(out, host.Instructions...)
	case m.LocationTail:
		last := lastReal(host.Instructions)
		if last < 0 {
			return 0
		}

		out = append(out, host.Instructions[:last]...)
		insert(host.Instructions[last].Op())
		out = append(out, host.Instructions[last:]...)
	case m.LocationReturn:
		for _, insn := range host.Instructions {
			if insn.Op().IsReturn() {
				insert(insn.Op())
			}

			out = append(out, insn)
		}
	default:
		return 0
	}

	if sites == 0 {
		return 0
	}

	host.Instructions = out
	host.TryCatch = append(handlers, host.TryCatch...)

	return sites
}

// locals returns the number of local slots the fragment body touches.
func (f fragment) locals() int {
	n := 0

	for _, insn := range f.insns {
		switch in := insn.(type) {
		case m.VarInsn:
			n = max(n, in.Var+varSize(in.Opcode))
		case m.IincInsn:
			n = max(n, in.Var+1)
		}
	}

	return n
}

// parkOps returns the store and load that move the value consumed by a
// return instruction into a local and back.
func parkOps(ret m.Opcode) (m.Opcode, m.Opcode, bool) {
	switch ret {
	case m.IRETURN:
		return m.ISTORE, m.ILOAD, true
	case m.LRETURN:
		return m.LSTORE, m.LLOAD, true
	case m.FRETURN:
		return m.FSTORE, m.FLOAD, true
	case m.DRETURN:
		return m.DSTORE, m.DLOAD, true
	case m.ARETURN:
		return m.ASTORE, m.ALOAD, true
	}

	return 0, 0, false
}

func lastReal(insns []m.Instruction) int {
	for i := len(insns) - 1; i >= 0; i-- {
		if !insns[i].Op().IsPseudo() {
			return i
		}
	}

	return -1
}

// hostLocals returns the number of local slots host already uses.
func hostLocals(host *m.MethodUnit) int {
	n := max(host.MaxLocals, m.ArgumentSlots(host.Desc, host.Access.Has(m.AccStatic)))

	for _, insn := range host.Instructions {
		switch in := insn.(type) {
		case m.VarInsn:
			n = max(n, in.Var+varSize(in.Opcode))
		case m.IincInsn:
			n = max(n, in.Var+1)
		}
	}

	return n
}

func varSize(op m.Opcode) int {
	switch op {
	case m.LLOAD, m.DLOAD, m.LSTORE, m.DSTORE:
		return 2
	}

	return 1
}

// shiftLocals moves every slot at or above params so it starts at base.
func shiftLocals(insns []m.Instruction, params, base int) []m.Instruction {
	shift := max(base, params) - params
	if shift == 0 {
		return insns
	}

	for i, insn := range insns {
		switch in := insn.(type) {
		case m.VarInsn:
			if in.Var >= params {
				in.Var += shift
				insns[i] = in
			}
		case m.IincInsn:
			if in.Var >= params {
				in.Var += shift
				insns[i] = in
			}
		}
	}

	return insns
}

// rewriteReturns replaces each return with a jump to end, popping a
// returned value first. A trailing return only pops.
func rewriteReturns(insns []m.Instruction, end m.Label) []m.Instruction {
	last := lastReal(insns)
	jumped := false

	out := make([]m.Instruction, 0, len(insns)+1)

	for i, insn := range insns {
		op := insn.Op()
		if !op.IsReturn() {
			out = append(out, insn)
			continue
		}

		switch op {
		case m.LRETURN, m.DRETURN:
			out = append(out, m.Insn{Opcode: m.POP2})
		case m.IRETURN, m.FRETURN, m.ARETURN:
			out = append(out, m.Insn{Opcode: m.POP})
		}

		if i != last {
			out = append(out, m.JumpInsn{Opcode: m.GOTO, Target: end})
			jumped = true
		}
	}

	if jumped {
		out = append(out, m.LabelInsn{Label: end})
	}

	return out
}

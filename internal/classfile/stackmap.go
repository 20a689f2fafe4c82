package classfile

import (
	"sort"

	"splice.dev/pkg/splice/internal/model"
)

// frameSites returns the bytecode instruction indexes that need an explicit
// stack map frame: branch and handler targets, instructions following an
// unconditional transfer, and the boundaries of unreachable runs.
func (an *analysis) frameSites() []int {
	asm := an.asm
	sites := map[int]bool{}

	mark := func(i int) {
		if j := an.firstReal(i); j >= 0 {
			sites[j] = true
		}
	}

	for i, insn := range asm.insns {
		if an.in[i] == nil || insn.Op().IsPseudo() {
			continue
		}

		switch in := insn.(type) {
		case model.JumpInsn:
			mark(asm.labels[in.Target])
		case model.TableSwitchInsn:
			mark(asm.labels[in.Default])

			for _, l := range in.Targets {
				mark(asm.labels[l])
			}
		case model.LookupSwitchInsn:
			mark(asm.labels[in.Default])

			for _, l := range in.Targets {
				mark(asm.labels[l])
			}
		}

		if insn.Op().EndsFlow() {
			mark(i + 1)
		}
	}

	for _, h := range an.handlers {
		if j := an.firstReal(h.handler); j >= 0 && an.in[j] != nil {
			sites[j] = true
		}
	}

	for _, run := range an.deadRuns() {
		sites[run.start] = true
		mark(run.end)
	}

	out := make([]int, 0, len(sites))
	for i := range sites {
		out = append(out, i)
	}

	sort.Ints(out)

	return out
}

// stackMapTable encodes the frames at every site, using the compact frame
// forms where the locals allow it. It returns the attribute body and the
// number of entries.
func (w *writer) stackMapTable(an *analysis, asm *assembly) ([]byte, int) {
	initial, err := an.initialFrame()
	if err != nil {
		return nil, 0
	}

	dead := map[int]bool{}
	for _, run := range an.deadRuns() {
		dead[run.start] = true
	}

	var (
		body    output
		count   int
		prev    = compactLocals(initial.locals)
		prevOff = -1
	)

	for _, i := range an.frameSites() {
		var f *frame

		switch {
		case an.in[i] != nil:
			f = an.in[i]
		case dead[i]:
			f = &frame{stack: []vtype{object(model.ThrowableClass)}}
		default:
			continue
		}

		offset := asm.offsets[i]
		delta := offset - prevOff - 1
		prevOff = offset

		locals := compactLocals(f.locals)
		stack := f.stack

		switch {
		case len(stack) == 0 && equalTypes(locals, prev):
			if delta < 64 {
				body.u1(uint8(delta))
			} else {
				body.u1(251)
				body.u2(uint16(delta))
			}
		case len(stack) == 1 && equalTypes(locals, prev):
			if delta < 64 {
				body.u1(uint8(64 + delta))
			} else {
				body.u1(247)
				body.u2(uint16(delta))
			}

			w.verificationType(&body, stack[0], asm)
		case len(stack) == 0 && len(locals) < len(prev) && len(prev)-len(locals) <= 3 && equalTypes(locals, prev[:len(locals)]):
			body.u1(uint8(251 - (len(prev) - len(locals))))
			body.u2(uint16(delta))
		case len(stack) == 0 && len(locals) > len(prev) && len(locals)-len(prev) <= 3 && equalTypes(prev, locals[:len(prev)]):
			body.u1(uint8(251 + (len(locals) - len(prev))))
			body.u2(uint16(delta))

			for _, t := range locals[len(prev):] {
				w.verificationType(&body, t, asm)
			}
		default:
			body.u1(255)
			body.u2(uint16(delta))
			body.u2(uint16(len(locals)))

			for _, t := range locals {
				w.verificationType(&body, t, asm)
			}

			body.u2(uint16(len(stack)))

			for _, t := range stack {
				w.verificationType(&body, t, asm)
			}
		}

		prev = locals
		count++
	}

	if count == 0 {
		return nil, 0
	}

	var out output

	out.u2(uint16(count))
	out.Write(body.Bytes())

	return out.Bytes(), count
}

// compactLocals drops the implicit second slot of long and double values
// and trailing tops, as the frame encoding expects.
func compactLocals(locals []vtype) []vtype {
	out := make([]vtype, 0, len(locals))

	for i := 0; i < len(locals); i++ {
		out = append(out, locals[i])
		if locals[i].wide() {
			i++
		}
	}

	for len(out) > 0 && out[len(out)-1] == top {
		out = out[:len(out)-1]
	}

	return out
}

func equalTypes(a, b []vtype) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func (w *writer) verificationType(o *output, t vtype, asm *assembly) {
	switch t.kind {
	case vTop:
		o.u1(itemTop)
	case vInt:
		o.u1(itemInteger)
	case vFloat:
		o.u1(itemFloat)
	case vLong:
		o.u1(itemLong)
	case vDouble:
		o.u1(itemDouble)
	case vNull:
		o.u1(itemNull)
	case vUninitThis:
		o.u1(itemUninitializedThis)
	case vObject:
		o.u1(itemObject)
		o.u2(w.cp.class(t.name))
	case vUninit:
		o.u1(itemUninitialized)
		o.u2(uint16(asm.offsets[t.at]))
	}
}

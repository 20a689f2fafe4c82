package classfile

import (
	"fmt"

	"splice.dev/pkg/splice/internal/model"
)

// Hierarchy answers superclass queries while merging reference types for
// the StackMapTable.
type Hierarchy interface {
	// Lookup returns the superclass of the internal class name and whether
	// it is an interface. ok is false for unknown classes.
	Lookup(name string) (super string, isInterface bool, ok bool)
}

// Option configures Write.
type Option func(*writer)

// WithHierarchy resolves types outside the unit being written. Without it,
// unrelated reference types merge to java/lang/Object.
func WithHierarchy(h Hierarchy) Option {
	return func(w *writer) {
		w.hierarchy = h
	}
}

type writer struct {
	unit      *model.BinaryUnit
	cp        *poolBuilder
	hierarchy Hierarchy
	err       error
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Write serializes unit. The constant pool and bootstrap table are rebuilt
// from scratch, and every Code attribute gets fresh max_stack, max_locals
// and (for major version 50 and later) StackMapTable values.
func Write(unit *model.BinaryUnit, opts ...Option) ([]byte, error) {
	w := &writer{unit: unit, cp: newPoolBuilder()}
	for _, opt := range opts {
		opt(w)
	}

	var body output

	body.u2(uint16(unit.Access))
	body.u2(w.cp.class(unit.Name))

	if unit.Super != "" {
		body.u2(w.cp.class(unit.Super))
	} else {
		body.u2(0)
	}

	body.u2(uint16(len(unit.Interfaces)))

	for _, itf := range unit.Interfaces {
		body.u2(w.cp.class(itf))
	}

	body.u2(uint16(len(unit.Fields)))

	for _, f := range unit.Fields {
		w.field(&body, f)
	}

	body.u2(uint16(len(unit.Methods)))

	for _, m := range unit.Methods {
		if err := w.method(&body, m); err != nil {
			return nil, fmt.Errorf("write %s: method %s%s: %w", unit.Name, m.Name, m.Desc, err)
		}
	}

	w.classAttributes(&body)

	if w.err == nil {
		w.err = w.cp.err
	}

	if w.err != nil {
		return nil, fmt.Errorf("write %s: %w", unit.Name, w.err)
	}

	var out output

	out.u4(magic)
	out.u2(unit.MinorVersion)
	out.u2(unit.MajorVersion)
	out.u2(uint16(w.cp.next))
	out.Write(w.cp.out.Bytes())
	out.Write(body.Bytes())

	return out.Bytes(), nil
}

func (w *writer) attribute(o *output, name string, data []byte) {
	o.u2(w.cp.utf8(name))
	o.u4(uint32(len(data)))
	o.Write(data)
}

func (w *writer) classAttributes(o *output) {
	u := w.unit

	var (
		attrs output
		count int
	)

	if u.SourceFile != "" {
		w.utf8Attribute(&attrs, attrSourceFile, u.SourceFile)
		count++
	}

	if u.Signature != "" {
		w.utf8Attribute(&attrs, attrSignature, u.Signature)
		count++
	}

	if len(u.InnerClasses) > 0 {
		var b output

		b.u2(uint16(len(u.InnerClasses)))

		for _, ic := range u.InnerClasses {
			b.u2(w.cp.class(ic.Name))
			b.u2(w.optClass(ic.Outer))

			if ic.Simple != "" {
				b.u2(w.cp.utf8(ic.Simple))
			} else {
				b.u2(0)
			}

			b.u2(uint16(ic.Access))
		}

		w.attribute(&attrs, attrInnerClasses, b.Bytes())
		count++
	}

	if em := u.EnclosingMethod; em != nil {
		var b output

		b.u2(w.cp.class(em.Owner))

		if em.Name != "" {
			b.u2(w.cp.nameAndType(em.Name, em.Desc))
		} else {
			b.u2(0)
		}

		w.attribute(&attrs, attrEnclosingMethod, b.Bytes())
		count++
	}

	if u.NestHost != "" {
		var b output

		b.u2(w.cp.class(u.NestHost))
		w.attribute(&attrs, attrNestHost, b.Bytes())
		count++
	}

	if len(u.NestMembers) > 0 {
		w.classListAttribute(&attrs, attrNestMembers, u.NestMembers)
		count++
	}

	if len(u.PermittedSubclasses) > 0 {
		w.classListAttribute(&attrs, attrPermittedSubclasses, u.PermittedSubclasses)
		count++
	}

	count += w.writeAnnotations(&attrs, u.Annotations)

	// Last: code and constants above may have added bootstrap entries.
	if len(w.cp.bootstraps) > 0 {
		var b output

		b.u2(uint16(len(w.cp.bootstraps)))

		for _, bsm := range w.cp.bootstraps {
			b.u2(bsm.handle)
			b.u2(uint16(len(bsm.args)))

			for _, a := range bsm.args {
				b.u2(a)
			}
		}

		w.attribute(&attrs, attrBootstrapMethods, b.Bytes())
		count++
	}

	o.u2(uint16(count))
	o.Write(attrs.Bytes())
}

func (w *writer) optClass(name string) uint16 {
	if name == "" {
		return 0
	}

	return w.cp.class(name)
}

func (w *writer) utf8Attribute(o *output, name, value string) {
	var b output

	b.u2(w.cp.utf8(value))
	w.attribute(o, name, b.Bytes())
}

func (w *writer) classListAttribute(o *output, name string, classes []string) {
	var b output

	b.u2(uint16(len(classes)))

	for _, c := range classes {
		b.u2(w.cp.class(c))
	}

	w.attribute(o, name, b.Bytes())
}

func (w *writer) field(o *output, f *model.FieldUnit) {
	o.u2(uint16(f.Access))
	o.u2(w.cp.utf8(f.Name))
	o.u2(w.cp.utf8(f.Desc))

	var (
		attrs output
		count int
	)

	if f.Value != nil {
		var b output

		b.u2(w.cp.constant(f.Value))
		w.attribute(&attrs, attrConstantValue, b.Bytes())
		count++
	}

	if f.Signature != "" {
		w.utf8Attribute(&attrs, attrSignature, f.Signature)
		count++
	}

	count += w.writeAnnotations(&attrs, f.Annotations)

	o.u2(uint16(count))
	o.Write(attrs.Bytes())
}

func (w *writer) method(o *output, m *model.MethodUnit) error {
	o.u2(uint16(m.Access))
	o.u2(w.cp.utf8(m.Name))
	o.u2(w.cp.utf8(m.Desc))

	var (
		attrs output
		count int
	)

	if m.HasCode() {
		code, err := w.code(m)
		if err != nil {
			return err
		}

		w.attribute(&attrs, attrCode, code)
		count++
	}

	if len(m.Exceptions) > 0 {
		w.classListAttribute(&attrs, attrExceptions, m.Exceptions)
		count++
	}

	if m.Signature != "" {
		w.utf8Attribute(&attrs, attrSignature, m.Signature)
		count++
	}

	count += w.writeAnnotations(&attrs, m.Annotations)

	o.u2(uint16(count))
	o.Write(attrs.Bytes())

	return nil
}

// code assembles the Code attribute body of m.
func (w *writer) code(m *model.MethodUnit) ([]byte, error) {
	if len(m.Instructions) == 0 {
		return nil, fmt.Errorf("method has no instructions")
	}

	asm, err := w.assemble(m)
	if err != nil {
		return nil, err
	}

	an, err := w.analyze(m, asm)
	if err != nil {
		return nil, err
	}

	bytecode := w.encode(asm)
	dead := an.deadRuns()

	for _, run := range dead {
		start, end := asm.offsets[run.start], asm.offsets[run.end]
		for pc := start; pc < end-1; pc++ {
			bytecode[pc] = byte(model.NOP)
		}

		bytecode[end-1] = byte(model.ATHROW)
	}

	var b output

	b.u2(uint16(an.maxStack))
	b.u2(uint16(maxLocals(m, asm.insns)))
	b.u4(uint32(len(bytecode)))
	b.Write(bytecode)

	table := w.exceptionTable(m, asm, an)
	b.u2(uint16(len(table)))

	for _, e := range table {
		b.u2(uint16(e.start))
		b.u2(uint16(e.end))
		b.u2(uint16(e.handler))
		b.u2(w.optClass(e.catchType))
	}

	var (
		attrs output
		count int
	)

	if lines := lineNumbers(asm); len(lines) > 0 {
		var lb output

		lb.u2(uint16(len(lines)))

		for _, le := range lines {
			lb.u2(uint16(le.pc))
			lb.u2(uint16(le.line))
		}

		w.attribute(&attrs, attrLineNumberTable, lb.Bytes())
		count++
	}

	if w.unit.MajorVersion >= stackMapMinMajorVersion {
		if frames, n := w.stackMapTable(an, asm); n > 0 {
			w.attribute(&attrs, attrStackMapTable, frames)
			count++
		}
	}

	b.u2(uint16(count))
	b.Write(attrs.Bytes())

	return b.Bytes(), nil
}

func (w *writer) exceptionTable(m *model.MethodUnit, asm *assembly, an *analysis) []rawHandler {
	var out []rawHandler

	for _, tc := range m.TryCatch {
		handlerIdx := asm.labels[tc.Handler]
		if an.firstReal(handlerIdx) < 0 || an.in[an.firstReal(handlerIdx)] == nil {
			continue
		}

		start, end := asm.labels[tc.Start], asm.labels[tc.End]
		handler := asm.offsets[handlerIdx]

		// Split the range around unreachable instructions.
		lo := -1
		for i := start; i <= end; i++ {
			if i < end && !asm.insns[i].Op().IsPseudo() && an.in[i] != nil {
				if lo < 0 {
					lo = i
				}

				continue
			}

			if (i == end || !asm.insns[i].Op().IsPseudo()) && lo >= 0 {
				out = append(out, rawHandler{
					start: asm.offsets[lo], end: asm.offsets[i], handler: handler, catchType: tc.Type,
				})
				lo = -1
			}
		}
	}

	return out
}

func lineNumbers(asm *assembly) []lineEntry {
	var out []lineEntry

	for _, insn := range asm.insns {
		if ln, ok := insn.(model.LineInsn); ok {
			if idx, ok := asm.labels[ln.Start]; ok {
				out = append(out, lineEntry{pc: asm.offsets[idx], line: ln.Line})
			}
		}
	}

	return out
}

func maxLocals(m *model.MethodUnit, insns []model.Instruction) int {
	n := model.ArgumentSlots(m.Desc, m.Access.Has(model.AccStatic))

	for _, insn := range insns {
		var top int

		switch in := insn.(type) {
		case model.VarInsn:
			top = in.Var + 1
			if in.Opcode == model.LLOAD || in.Opcode == model.DLOAD || in.Opcode == model.LSTORE || in.Opcode == model.DSTORE {
				top++
			}
		case model.IincInsn:
			top = in.Var + 1
		}

		if top > n {
			n = top
		}
	}

	return n
}

package classfile

import (
	"fmt"
	"strings"

	"splice.dev/pkg/splice/internal/model"
)

type vkind uint8

const (
	vTop vkind = iota
	vInt
	vFloat
	vLong
	vDouble
	vNull
	vUninitThis
	vObject
	vUninit
)

// vtype is a verification type. name holds an internal class name or an
// array descriptor; at is the instruction index of the allocating new.
type vtype struct {
	kind vkind
	name string
	at   int
}

var (
	top        = vtype{kind: vTop}
	intType    = vtype{kind: vInt}
	floatType  = vtype{kind: vFloat}
	longType   = vtype{kind: vLong}
	doubleType = vtype{kind: vDouble}
	nullType   = vtype{kind: vNull}
)

func object(name string) vtype { return vtype{kind: vObject, name: name} }

func (t vtype) wide() bool { return t.kind == vLong || t.kind == vDouble }

func (t vtype) size() int {
	if t.wide() {
		return 2
	}

	return 1
}

func (t vtype) isRef() bool {
	return t.kind == vNull || t.kind == vObject || t.kind == vUninit || t.kind == vUninitThis
}

func typeOfDesc(desc string) vtype {
	if desc == "" {
		return top
	}

	switch desc[0] {
	case 'Z', 'B', 'C', 'S', 'I':
		return intType
	case 'F':
		return floatType
	case 'J':
		return longType
	case 'D':
		return doubleType
	case 'L':
		return object(desc[1 : len(desc)-1])
	case '[':
		return object(desc)
	}

	return top
}

// classDesc turns an internal name or array descriptor into a field
// descriptor.
func classDesc(name string) string {
	if strings.HasPrefix(name, "[") {
		return name
	}

	return "L" + name + ";"
}

type frame struct {
	locals []vtype
	stack  []vtype
}

func (f *frame) clone() *frame {
	return &frame{
		locals: append([]vtype(nil), f.locals...),
		stack:  append([]vtype(nil), f.stack...),
	}
}

func (f *frame) depth() int {
	n := 0
	for _, t := range f.stack {
		n += t.size()
	}

	return n
}

func (f *frame) local(i int) vtype {
	if i < len(f.locals) {
		return f.locals[i]
	}

	return top
}

func (f *frame) setLocal(i int, t vtype) {
	for len(f.locals) < i+t.size() {
		f.locals = append(f.locals, top)
	}

	if i > 0 && f.locals[i-1].wide() {
		f.locals[i-1] = top
	}

	f.locals[i] = t
	if t.wide() {
		f.locals[i+1] = top
	}
}

type handlerRange struct {
	start, end, handler int
	catchType           string
}

type deadRun struct {
	start, end int
}

// analysis holds the incoming frame of every instruction index; nil marks
// unreachable code.
type analysis struct {
	w        *writer
	method   *model.MethodUnit
	asm      *assembly
	handlers []handlerRange
	in       []*frame
	maxStack int
}

func (w *writer) analyze(m *model.MethodUnit, asm *assembly) (*analysis, error) {
	an := &analysis{w: w, method: m, asm: asm, in: make([]*frame, len(asm.insns)+1)}

	for _, tc := range m.TryCatch {
		an.handlers = append(an.handlers, handlerRange{
			start:     asm.labels[tc.Start],
			end:       asm.labels[tc.End],
			handler:   asm.labels[tc.Handler],
			catchType: tc.Type,
		})
	}

	initial, err := an.initialFrame()
	if err != nil {
		return nil, err
	}

	an.in[0] = initial
	work := []int{0}
	queued := map[int]bool{0: true}

	push := func(i int, f *frame) error {
		changed, err := an.merge(i, f)
		if err != nil {
			return err
		}

		if changed && !queued[i] {
			queued[i] = true
			work = append(work, i)
		}

		return nil
	}

	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		queued[i] = false

		if i == len(asm.insns) {
			return nil, fmt.Errorf("execution falls off the end of the code")
		}

		insn := asm.insns[i]
		before := an.in[i]
		after := before.clone()

		if err := an.execute(i, insn, after); err != nil {
			return nil, fmt.Errorf("%s at instruction %d: %w", insn.Op(), i, err)
		}

		if d := after.depth(); d > an.maxStack {
			an.maxStack = d
		}

		if !insn.Op().IsPseudo() {
			for _, h := range an.handlers {
				if i < h.start || i >= h.end {
					continue
				}

				catch := h.catchType
				if catch == "" {
					catch = model.ThrowableClass
				}

				for _, locals := range [][]vtype{before.locals, after.locals} {
					hf := &frame{locals: append([]vtype(nil), locals...), stack: []vtype{object(catch)}}
					if err := push(h.handler, hf); err != nil {
						return nil, err
					}
				}
			}
		}

		switch in := insn.(type) {
		case model.JumpInsn:
			if in.Opcode == model.JSR {
				sub := after.clone()
				sub.stack = append(sub.stack, top)

				if d := sub.depth(); d > an.maxStack {
					an.maxStack = d
				}

				if err := push(asm.labels[in.Target], sub); err != nil {
					return nil, err
				}

				if err := push(i+1, after); err != nil {
					return nil, err
				}

				continue
			}

			if err := push(asm.labels[in.Target], after); err != nil {
				return nil, err
			}
		case model.TableSwitchInsn:
			for _, l := range append([]model.Label{in.Default}, in.Targets...) {
				if err := push(asm.labels[l], after); err != nil {
					return nil, err
				}
			}
		case model.LookupSwitchInsn:
			for _, l := range append([]model.Label{in.Default}, in.Targets...) {
				if err := push(asm.labels[l], after); err != nil {
					return nil, err
				}
			}
		}

		if !insn.Op().EndsFlow() {
			if err := push(i+1, after); err != nil {
				return nil, err
			}
		}
	}

	if len(an.deadRuns()) > 0 && an.maxStack < 1 {
		an.maxStack = 1
	}

	return an, nil
}

func (an *analysis) initialFrame() (*frame, error) {
	m := an.method
	f := &frame{}

	if !m.Access.Has(model.AccStatic) {
		owner := an.w.unit.Name
		if m.Name == model.ConstructorName && owner != model.ObjectClass {
			f.locals = append(f.locals, vtype{kind: vUninitThis})
		} else {
			f.locals = append(f.locals, object(owner))
		}
	}

	params, _, err := model.ParseMethodDescriptor(m.Desc)
	if err != nil {
		return nil, err
	}

	for _, p := range params {
		t := typeOfDesc(p)
		f.setLocal(len(f.locals), t)
	}

	return f, nil
}

// merge folds f into the incoming frame at i and reports a change.
func (an *analysis) merge(i int, f *frame) (bool, error) {
	cur := an.in[i]
	if cur == nil {
		an.in[i] = f.clone()
		return true, nil
	}

	if len(cur.stack) != len(f.stack) {
		return false, fmt.Errorf("inconsistent stack height at instruction %d: %d vs %d", i, len(cur.stack), len(f.stack))
	}

	changed := false

	for k := range cur.stack {
		t := an.mergeType(cur.stack[k], f.stack[k])
		if t != cur.stack[k] {
			cur.stack[k] = t
			changed = true
		}
	}

	for k := range cur.locals {
		t := an.mergeType(cur.locals[k], f.local(k))
		if t != cur.locals[k] {
			cur.locals[k] = t
			changed = true
		}
	}

	return changed, nil
}

func (an *analysis) mergeType(a, b vtype) vtype {
	switch {
	case a == b:
		return a
	case a.kind == vNull && (b.kind == vObject || b.kind == vNull):
		return b
	case b.kind == vNull && a.kind == vObject:
		return a
	case a.kind == vObject && b.kind == vObject:
		return object(an.commonSuper(a.name, b.name))
	}

	return top
}

func isRefDesc(desc string) bool {
	return strings.HasPrefix(desc, "L") || strings.HasPrefix(desc, "[")
}

func refName(desc string) string {
	if strings.HasPrefix(desc, "L") {
		return desc[1 : len(desc)-1]
	}

	return desc
}

// commonSuper finds the nearest shared superclass. Interfaces and unknown
// classes merge to java/lang/Object.
func (an *analysis) commonSuper(a, b string) string {
	if a == b {
		return a
	}

	aArr, bArr := strings.HasPrefix(a, "["), strings.HasPrefix(b, "[")

	switch {
	case aArr && bArr:
		ea, eb := a[1:], b[1:]
		if isRefDesc(ea) && isRefDesc(eb) {
			return "[" + classDesc(an.commonSuper(refName(ea), refName(eb)))
		}

		return model.ObjectClass
	case aArr || bArr:
		return model.ObjectClass
	}

	if a == model.ObjectClass || b == model.ObjectClass {
		return model.ObjectClass
	}

	if an.isInterface(a) || an.isInterface(b) {
		return model.ObjectClass
	}

	ancestors := map[string]bool{}
	for c, steps := a, 0; c != "" && steps < 256; steps++ {
		ancestors[c] = true

		sup, _, ok := an.lookup(c)
		if !ok {
			break
		}

		c = sup
	}

	for c, steps := b, 0; c != "" && steps < 256; steps++ {
		if ancestors[c] {
			return c
		}

		sup, _, ok := an.lookup(c)
		if !ok {
			break
		}

		c = sup
	}

	return model.ObjectClass
}

func (an *analysis) lookup(name string) (string, bool, bool) {
	u := an.w.unit
	if name == u.Name {
		return u.Super, u.IsInterface(), true
	}

	if an.w.hierarchy == nil {
		return "", false, false
	}

	return an.w.hierarchy.Lookup(name)
}

func (an *analysis) isInterface(name string) bool {
	_, itf, ok := an.lookup(name)
	return ok && itf
}

// firstReal returns the index of the first bytecode instruction at or after
// i, or -1.
func (an *analysis) firstReal(i int) int {
	for ; i < len(an.asm.insns); i++ {
		if !an.asm.insns[i].Op().IsPseudo() {
			return i
		}
	}

	return -1
}

// deadRuns returns maximal runs of unreachable bytecode instructions as
// [start, end) instruction index ranges.
func (an *analysis) deadRuns() []deadRun {
	var (
		runs []deadRun
		cur  = -1
	)

	for i, insn := range an.asm.insns {
		if insn.Op().IsPseudo() {
			continue
		}

		if an.in[i] == nil {
			if cur < 0 {
				cur = i
			}

			continue
		}

		if cur >= 0 {
			runs = append(runs, deadRun{start: cur, end: i})
			cur = -1
		}
	}

	if cur >= 0 {
		runs = append(runs, deadRun{start: cur, end: len(an.asm.insns)})
	}

	return runs
}

func (f *frame) pop() (vtype, error) {
	if len(f.stack) == 0 {
		return top, fmt.Errorf("stack underflow")
	}

	t := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]

	return t, nil
}

func (f *frame) popN(n int) error {
	for ; n > 0; n-- {
		if _, err := f.pop(); err != nil {
			return err
		}
	}

	return nil
}

func (f *frame) push(ts ...vtype) {
	f.stack = append(f.stack, ts...)
}

func (an *analysis) execute(i int, insn model.Instruction, f *frame) error {
	switch in := insn.(type) {
	case model.LabelInsn, model.LineInsn:
		return nil
	case model.Insn:
		return an.executeSimple(in.Opcode, f)
	case model.IntInsn:
		if in.Opcode == model.NEWARRAY {
			if err := f.popN(1); err != nil {
				return err
			}

			desc, ok := newArrayTypes[in.Operand]
			if !ok {
				return fmt.Errorf("bad newarray type %d", in.Operand)
			}

			f.push(object(desc))

			return nil
		}

		f.push(intType)
	case model.LdcInsn:
		f.push(constantType(in.Value))
	case model.VarInsn:
		return an.executeVar(in, f)
	case model.IincInsn:
		f.setLocal(in.Var, intType)
	case model.JumpInsn:
		switch {
		case in.Opcode >= model.IFEQ && in.Opcode <= model.IFLE, in.Opcode == model.IFNULL, in.Opcode == model.IFNONNULL:
			return f.popN(1)
		case in.Opcode >= model.IF_ICMPEQ && in.Opcode <= model.IF_ACMPNE:
			return f.popN(2)
		}
	case model.TableSwitchInsn, model.LookupSwitchInsn:
		return f.popN(1)
	case model.FieldInsn:
		return executeField(in, f)
	case model.MethodInsn:
		return an.invoke(in.Opcode, in.Owner, in.Name, in.Desc, f)
	case model.InvokeDynamicInsn:
		return an.invoke(model.INVOKEDYNAMIC, "", in.Name, in.Desc, f)
	case model.TypeInsn:
		return executeType(i, in, f)
	case model.MultiANewArrayInsn:
		if err := f.popN(in.Dims); err != nil {
			return err
		}

		f.push(object(in.Desc))
	default:
		return fmt.Errorf("unsupported instruction %T", insn)
	}

	return nil
}

func constantType(v any) vtype {
	switch c := v.(type) {
	case int32:
		return intType
	case float32:
		return floatType
	case int64:
		return longType
	case float64:
		return doubleType
	case string:
		return object("java/lang/String")
	case model.ClassConst:
		return object("java/lang/Class")
	case model.MethodTypeConst:
		return object("java/lang/invoke/MethodType")
	case model.Handle:
		return object("java/lang/invoke/MethodHandle")
	case model.DynamicConst:
		return typeOfDesc(c.Desc)
	}

	return top
}

var loadTypes = map[model.Opcode]vtype{
	model.ILOAD: intType, model.LLOAD: longType, model.FLOAD: floatType, model.DLOAD: doubleType,
}

func (an *analysis) executeVar(in model.VarInsn, f *frame) error {
	switch {
	case in.Opcode == model.ALOAD:
		f.push(f.local(in.Var))
	case in.Opcode >= model.ILOAD && in.Opcode <= model.DLOAD:
		f.push(loadTypes[in.Opcode])
	case in.Opcode >= model.ISTORE && in.Opcode <= model.ASTORE:
		t, err := f.pop()
		if err != nil {
			return err
		}

		f.setLocal(in.Var, t)
	case in.Opcode == model.RET:
	default:
		return fmt.Errorf("bad local variable opcode %s", in.Opcode)
	}

	return nil
}

func executeField(in model.FieldInsn, f *frame) error {
	t := typeOfDesc(in.Desc)

	switch in.Opcode {
	case model.GETSTATIC:
		f.push(t)
	case model.PUTSTATIC:
		return f.popN(1)
	case model.GETFIELD:
		if err := f.popN(1); err != nil {
			return err
		}

		f.push(t)
	case model.PUTFIELD:
		return f.popN(2)
	}

	return nil
}

func executeType(i int, in model.TypeInsn, f *frame) error {
	switch in.Opcode {
	case model.NEW:
		f.push(vtype{kind: vUninit, name: in.Type, at: i})
		return nil
	case model.ANEWARRAY:
		if err := f.popN(1); err != nil {
			return err
		}

		f.push(object("[" + classDesc(in.Type)))
	case model.CHECKCAST:
		if err := f.popN(1); err != nil {
			return err
		}

		f.push(object(in.Type))
	case model.INSTANCEOF:
		if err := f.popN(1); err != nil {
			return err
		}

		f.push(intType)
	}

	return nil
}

func (an *analysis) invoke(op model.Opcode, owner, name, desc string, f *frame) error {
	params, ret, err := model.ParseMethodDescriptor(desc)
	if err != nil {
		return err
	}

	if err := f.popN(len(params)); err != nil {
		return err
	}

	if op != model.INVOKESTATIC && op != model.INVOKEDYNAMIC {
		recv, err := f.pop()
		if err != nil {
			return err
		}

		if op == model.INVOKESPECIAL && name == model.ConstructorName {
			var done vtype

			switch recv.kind {
			case vUninitThis:
				done = object(an.w.unit.Name)
			case vUninit:
				done = object(recv.name)
			default:
				return fmt.Errorf("constructor call on initialized receiver")
			}

			for k := range f.locals {
				if f.locals[k] == recv {
					f.locals[k] = done
				}
			}

			for k := range f.stack {
				if f.stack[k] == recv {
					f.stack[k] = done
				}
			}
		}
	}

	if ret != "V" {
		f.push(typeOfDesc(ret))
	}

	return nil
}

// arithmetic result type by operand kind: int, long, float, double.
var kindTypes = [4]vtype{intType, longType, floatType, doubleType}

func (an *analysis) executeSimple(op model.Opcode, f *frame) error {
	switch {
	case op == model.NOP:
	case op == model.ACONST_NULL:
		f.push(nullType)
	case op >= model.ICONST_M1 && op <= model.ICONST_5:
		f.push(intType)
	case op == model.LCONST_0 || op == model.LCONST_1:
		f.push(longType)
	case op >= model.FCONST_0 && op <= model.FCONST_2:
		f.push(floatType)
	case op == model.DCONST_0 || op == model.DCONST_1:
		f.push(doubleType)
	case op >= model.IALOAD && op <= model.SALOAD:
		if err := f.popN(1); err != nil {
			return err
		}

		arr, err := f.pop()
		if err != nil {
			return err
		}

		switch op {
		case model.LALOAD:
			f.push(longType)
		case model.FALOAD:
			f.push(floatType)
		case model.DALOAD:
			f.push(doubleType)
		case model.AALOAD:
			f.push(elementType(arr))
		default:
			f.push(intType)
		}
	case op >= model.IASTORE && op <= model.SASTORE:
		return f.popN(3)
	case op == model.POP:
		return f.popN(1)
	case op == model.POP2:
		t, err := f.pop()
		if err != nil || t.wide() {
			return err
		}

		return f.popN(1)
	case op >= model.DUP && op <= model.SWAP:
		return stackShuffle(op, f)
	case op >= model.IADD && op <= model.DREM:
		if err := f.popN(2); err != nil {
			return err
		}

		f.push(kindTypes[(op-model.IADD)%4])
	case op >= model.INEG && op <= model.DNEG:
		if err := f.popN(1); err != nil {
			return err
		}

		f.push(kindTypes[op-model.INEG])
	case op >= model.ISHL && op <= model.LXOR:
		if err := f.popN(2); err != nil {
			return err
		}

		f.push(kindTypes[(op-model.ISHL)%2])
	case op >= model.I2L && op <= model.I2S:
		if err := f.popN(1); err != nil {
			return err
		}

		f.push(conversionResult(op))
	case op >= model.LCMP && op <= model.DCMPG:
		if err := f.popN(2); err != nil {
			return err
		}

		f.push(intType)
	case op >= model.IRETURN && op <= model.ARETURN:
		return f.popN(1)
	case op == model.RETURN:
	case op == model.ARRAYLENGTH:
		if err := f.popN(1); err != nil {
			return err
		}

		f.push(intType)
	case op == model.ATHROW, op == model.MONITORENTER, op == model.MONITOREXIT:
		return f.popN(1)
	default:
		return fmt.Errorf("unexpected opcode %s", op)
	}

	return nil
}

func elementType(arr vtype) vtype {
	if arr.kind == vNull {
		return nullType
	}

	if arr.kind == vObject && strings.HasPrefix(arr.name, "[") {
		return typeOfDesc(arr.name[1:])
	}

	return object(model.ObjectClass)
}

func conversionResult(op model.Opcode) vtype {
	switch op {
	case model.I2L, model.F2L, model.D2L:
		return longType
	case model.I2F, model.L2F, model.D2F:
		return floatType
	case model.I2D, model.L2D, model.F2D:
		return doubleType
	}

	return intType
}

// stackShuffle implements the dup and swap family on category-aware
// values.
func stackShuffle(op model.Opcode, f *frame) error {
	pop := func(n int) ([]vtype, error) {
		out := make([]vtype, n)
		for k := range out {
			t, err := f.pop()
			if err != nil {
				return nil, err
			}

			out[k] = t
		}

		return out, nil
	}

	switch op {
	case model.DUP:
		v, err := pop(1)
		if err != nil {
			return err
		}

		f.push(v[0], v[0])
	case model.DUP_X1:
		v, err := pop(2)
		if err != nil {
			return err
		}

		f.push(v[0], v[1], v[0])
	case model.DUP_X2:
		v, err := pop(2)
		if err != nil {
			return err
		}

		if v[1].wide() {
			f.push(v[0], v[1], v[0])
			return nil
		}

		v3, err := f.pop()
		if err != nil {
			return err
		}

		f.push(v[0], v3, v[1], v[0])
	case model.DUP2:
		v, err := pop(1)
		if err != nil {
			return err
		}

		if v[0].wide() {
			f.push(v[0], v[0])
			return nil
		}

		v2, err := f.pop()
		if err != nil {
			return err
		}

		f.push(v2, v[0], v2, v[0])
	case model.DUP2_X1:
		v, err := pop(2)
		if err != nil {
			return err
		}

		if v[0].wide() {
			f.push(v[0], v[1], v[0])
			return nil
		}

		v3, err := f.pop()
		if err != nil {
			return err
		}

		f.push(v[1], v[0], v3, v[1], v[0])
	case model.DUP2_X2:
		v, err := pop(2)
		if err != nil {
			return err
		}

		switch {
		case v[0].wide() && v[1].wide():
			f.push(v[0], v[1], v[0])
		case v[0].wide():
			v3, err := f.pop()
			if err != nil {
				return err
			}

			f.push(v[0], v3, v[1], v[0])
		default:
			v3, err := f.pop()
			if err != nil {
				return err
			}

			if v3.wide() {
				f.push(v[1], v[0], v3, v[1], v[0])
				return nil
			}

			v4, err := f.pop()
			if err != nil {
				return err
			}

			f.push(v[1], v[0], v4, v3, v[1], v[0])
		}
	case model.SWAP:
		v, err := pop(2)
		if err != nil {
			return err
		}

		f.push(v[0], v[1])
	}

	return nil
}

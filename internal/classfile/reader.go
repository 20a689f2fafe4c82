package classfile

import (
	"fmt"
	"log/slog"

	"splice.dev/pkg/splice/internal/model"
)

type rawAttribute struct {
	name string
	data []byte
}

type rawMember struct {
	access model.AccessFlags
	name   string
	desc   string
	attrs  []rawAttribute
}

// Read parses a class file. Any structural inconsistency is reported as
// model.ErrMalformedUnit.
func Read(data []byte) (*model.BinaryUnit, error) {
	in := newInput(data)

	if m := in.u4(); in.err != nil || m != magic {
		return nil, fmt.Errorf("%w: bad magic", model.ErrMalformedUnit)
	}

	unit := &model.BinaryUnit{MinorVersion: in.u2(), MajorVersion: in.u2()}

	cp, err := readPool(in)
	if err != nil {
		return nil, err
	}

	unit.Access = model.AccessFlags(in.u2())

	if unit.Name, err = cp.class(in.u2()); err != nil {
		return nil, err
	}

	if unit.Super, err = cp.optClass(in.u2()); err != nil {
		return nil, err
	}

	for n := int(in.u2()); n > 0 && in.err == nil; n-- {
		itf, err := cp.class(in.u2())
		if err != nil {
			return nil, err
		}

		unit.Interfaces = append(unit.Interfaces, itf)
	}

	fields, err := readMembers(in, cp)
	if err != nil {
		return nil, err
	}

	methods, err := readMembers(in, cp)
	if err != nil {
		return nil, err
	}

	attrs, err := readAttributes(in, cp)
	if err != nil {
		return nil, err
	}

	if in.err != nil {
		return nil, in.err
	}

	if in.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", model.ErrMalformedUnit, in.remaining())
	}

	r := &unitReader{cp: cp, unit: unit}

	// Bootstrap methods must be known before any code or ConstantValue is
	// resolved.
	for _, a := range attrs {
		if a.name == attrBootstrapMethods {
			if err := r.bootstrapMethods(a.data); err != nil {
				return nil, err
			}
		}
	}

	if err := r.classAttributes(attrs); err != nil {
		return nil, err
	}

	for _, f := range fields {
		fu, err := r.field(f)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}

		unit.Fields = append(unit.Fields, fu)
	}

	for _, m := range methods {
		mu, err := r.method(m)
		if err != nil {
			return nil, fmt.Errorf("method %s%s: %w", m.name, m.desc, err)
		}

		unit.Methods = append(unit.Methods, mu)
	}

	return unit, nil
}

func readAttributes(in *input, cp *pool) ([]rawAttribute, error) {
	n := int(in.u2())
	attrs := make([]rawAttribute, 0, n)

	for ; n > 0 && in.err == nil; n-- {
		name, err := cp.utf8(in.u2())
		if err != nil {
			return nil, err
		}

		size := int(in.u4())
		attrs = append(attrs, rawAttribute{name: name, data: in.bytes(size)})
	}

	return attrs, in.err
}

func readMembers(in *input, cp *pool) ([]rawMember, error) {
	n := int(in.u2())
	members := make([]rawMember, 0, n)

	for ; n > 0 && in.err == nil; n-- {
		m := rawMember{access: model.AccessFlags(in.u2())}

		var err error
		if m.name, err = cp.utf8(in.u2()); err != nil {
			return nil, err
		}

		if m.desc, err = cp.utf8(in.u2()); err != nil {
			return nil, err
		}

		if m.attrs, err = readAttributes(in, cp); err != nil {
			return nil, err
		}

		members = append(members, m)
	}

	return members, in.err
}

type unitReader struct {
	cp   *pool
	unit *model.BinaryUnit
}

// done checks that an attribute body was consumed exactly.
func done(in *input, name string) error {
	if in.err != nil {
		return fmt.Errorf("%s: %w", name, in.err)
	}

	if in.remaining() != 0 {
		return fmt.Errorf("%w: %s has %d unexpected trailing bytes", model.ErrMalformedUnit, name, in.remaining())
	}

	return nil
}

func (r *unitReader) bootstrapMethods(data []byte) error {
	in := newInput(data)

	for n := int(in.u2()); n > 0 && in.err == nil; n-- {
		bsm := bootstrapMethod{handle: in.u2()}
		for k := int(in.u2()); k > 0 && in.err == nil; k-- {
			bsm.args = append(bsm.args, in.u2())
		}

		r.cp.bootstraps = append(r.cp.bootstraps, bsm)
	}

	return done(in, attrBootstrapMethods)
}

func (r *unitReader) classList(data []byte, name string) ([]string, error) {
	in := newInput(data)

	var out []string

	for n := int(in.u2()); n > 0 && in.err == nil; n-- {
		c, err := r.cp.class(in.u2())
		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, done(in, name)
}

func (r *unitReader) singleUTF8(data []byte, name string) (string, error) {
	in := newInput(data)

	s, err := r.cp.utf8(in.u2())
	if err != nil {
		return "", err
	}

	return s, done(in, name)
}

func (r *unitReader) classAttributes(attrs []rawAttribute) error {
	u := r.unit

	for _, a := range attrs {
		var err error

		switch a.name {
		case attrBootstrapMethods:
		case attrSourceFile:
			u.SourceFile, err = r.singleUTF8(a.data, a.name)
		case attrSignature:
			u.Signature, err = r.singleUTF8(a.data, a.name)
		case attrRuntimeVisibleAnns, attrRuntimeInvisibleAnns:
			var anns []model.Annotation

			anns, err = r.annotations(a)
			u.Annotations = append(u.Annotations, anns...)
		case attrInnerClasses:
			u.InnerClasses, err = r.innerClasses(a.data)
		case attrEnclosingMethod:
			u.EnclosingMethod, err = r.enclosingMethod(a.data)
		case attrNestHost:
			in := newInput(a.data)
			if u.NestHost, err = r.cp.class(in.u2()); err == nil {
				err = done(in, a.name)
			}
		case attrNestMembers:
			u.NestMembers, err = r.classList(a.data, a.name)
		case attrPermittedSubclasses:
			u.PermittedSubclasses, err = r.classList(a.data, a.name)
		default:
			slog.Debug("dropping class attribute", "class", u.Name, "attribute", a.name)
		}

		if err != nil {
			return fmt.Errorf("class %s: %w", u.Name, err)
		}
	}

	return nil
}

func (r *unitReader) innerClasses(data []byte) ([]model.InnerClass, error) {
	in := newInput(data)

	var out []model.InnerClass

	for n := int(in.u2()); n > 0 && in.err == nil; n-- {
		var (
			ic  model.InnerClass
			err error
		)

		if ic.Name, err = r.cp.class(in.u2()); err != nil {
			return nil, err
		}

		if ic.Outer, err = r.cp.optClass(in.u2()); err != nil {
			return nil, err
		}

		if ic.Simple, err = r.cp.optUTF8(in.u2()); err != nil {
			return nil, err
		}

		ic.Access = model.AccessFlags(in.u2())
		out = append(out, ic)
	}

	return out, done(in, attrInnerClasses)
}

func (r *unitReader) enclosingMethod(data []byte) (*model.EnclosingMethod, error) {
	in := newInput(data)

	owner, err := r.cp.class(in.u2())
	if err != nil {
		return nil, err
	}

	em := &model.EnclosingMethod{Owner: owner}

	if idx := in.u2(); idx != 0 {
		if em.Name, em.Desc, err = r.cp.nameAndType(idx); err != nil {
			return nil, err
		}
	}

	return em, done(in, attrEnclosingMethod)
}

func (r *unitReader) field(m rawMember) (*model.FieldUnit, error) {
	f := &model.FieldUnit{Access: m.access, Name: m.name, Desc: m.desc}

	for _, a := range m.attrs {
		var err error

		switch a.name {
		case attrConstantValue:
			in := newInput(a.data)
			if f.Value, err = r.cp.constant(in.u2()); err == nil {
				err = done(in, a.name)
			}
		case attrSignature:
			f.Signature, err = r.singleUTF8(a.data, a.name)
		case attrRuntimeVisibleAnns, attrRuntimeInvisibleAnns:
			var anns []model.Annotation

			anns, err = r.annotations(a)
			f.Annotations = append(f.Annotations, anns...)
		default:
			slog.Debug("dropping field attribute", "class", r.unit.Name, "field", m.name, "attribute", a.name)
		}

		if err != nil {
			return nil, err
		}
	}

	return f, nil
}

func (r *unitReader) method(m rawMember) (*model.MethodUnit, error) {
	mu := &model.MethodUnit{Access: m.access, Name: m.name, Desc: m.desc}

	for _, a := range m.attrs {
		var err error

		switch a.name {
		case attrCode:
			err = r.code(mu, a.data)
		case attrExceptions:
			mu.Exceptions, err = r.classList(a.data, a.name)
		case attrSignature:
			mu.Signature, err = r.singleUTF8(a.data, a.name)
		case attrRuntimeVisibleAnns, attrRuntimeInvisibleAnns:
			var anns []model.Annotation

			anns, err = r.annotations(a)
			mu.Annotations = append(mu.Annotations, anns...)
		default:
			slog.Debug("dropping method attribute", "class", r.unit.Name, "method", m.name+m.desc, "attribute", a.name)
		}

		if err != nil {
			return nil, err
		}
	}

	return mu, nil
}

func (r *unitReader) code(mu *model.MethodUnit, data []byte) error {
	in := newInput(data)
	mu.MaxStack = int(in.u2())
	mu.MaxLocals = int(in.u2())

	code := in.bytes(int(in.u4()))
	if in.err != nil {
		return in.err
	}

	if len(code) == 0 || len(code) > maxCodeLength {
		return fmt.Errorf("%w: code length %d", model.ErrMalformedUnit, len(code))
	}

	var handlers []rawHandler

	for n := int(in.u2()); n > 0 && in.err == nil; n-- {
		h := rawHandler{start: int(in.u2()), end: int(in.u2()), handler: int(in.u2())}

		var err error
		if h.catchType, err = r.cp.optClass(in.u2()); err != nil {
			return err
		}

		handlers = append(handlers, h)
	}

	attrs, err := readAttributes(in, r.cp)
	if err != nil {
		return err
	}

	if err := done(in, attrCode); err != nil {
		return err
	}

	var lines []lineEntry

	for _, a := range attrs {
		switch a.name {
		case attrLineNumberTable:
			ln := newInput(a.data)
			for n := int(ln.u2()); n > 0 && ln.err == nil; n-- {
				lines = append(lines, lineEntry{pc: int(ln.u2()), line: int(ln.u2())})
			}

			if err := done(ln, a.name); err != nil {
				return err
			}
		case attrStackMapTable:
			// Recomputed on write.
		default:
			slog.Debug("dropping code attribute", "class", r.unit.Name, "method", mu.Name+mu.Desc, "attribute", a.name)
		}
	}

	mu.Instructions, mu.TryCatch, err = decodeCode(r.cp, code, handlers, lines)

	return err
}

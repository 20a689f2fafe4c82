package classfile

import (
	"fmt"
	"math"

	"splice.dev/pkg/splice/internal/model"
)

type poolEntry struct {
	tag  constantTag
	raw  uint64
	str  string
	a, b uint16
}

// pool is a parsed constant pool. Index 0 and the slot after a long or
// double are zero entries.
type pool struct {
	entries    []poolEntry
	bootstraps []bootstrapMethod
}

type bootstrapMethod struct {
	handle uint16
	args   []uint16
}

func readPool(in *input) (*pool, error) {
	count := int(in.u2())
	p := &pool{entries: make([]poolEntry, count)}

	for i := 1; i < count; i++ {
		tag := constantTag(in.u1())
		e := poolEntry{tag: tag}

		switch tag {
		case tagUtf8:
			n := int(in.u2())
			s, err := decodeModifiedUTF8(in.bytes(n))
			if err != nil {
				return nil, err
			}

			e.str = s
		case tagInteger, tagFloat:
			e.raw = uint64(in.u4())
		case tagLong, tagDouble:
			e.raw = in.u8()
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			e.a = in.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			e.a = in.u2()
			e.b = in.u2()
		case tagMethodHandle:
			e.a = uint16(in.u1())
			e.b = in.u2()
		default:
			if in.err != nil {
				return nil, in.err
			}

			return nil, fmt.Errorf("%w: unknown constant tag %d at index %d", model.ErrMalformedUnit, tag, i)
		}

		if in.err != nil {
			return nil, in.err
		}

		p.entries[i] = e
		if tag == tagLong || tag == tagDouble {
			i++
		}
	}

	return p, nil
}

func (p *pool) entry(i uint16, tags ...constantTag) (poolEntry, error) {
	if int(i) == 0 || int(i) >= len(p.entries) {
		return poolEntry{}, fmt.Errorf("%w: constant index %d out of range", model.ErrMalformedUnit, i)
	}

	e := p.entries[i]
	for _, t := range tags {
		if e.tag == t {
			return e, nil
		}
	}

	return poolEntry{}, fmt.Errorf("%w: constant %d has tag %d, want %v", model.ErrMalformedUnit, i, e.tag, tags)
}

func (p *pool) utf8(i uint16) (string, error) {
	e, err := p.entry(i, tagUtf8)
	if err != nil {
		return "", err
	}

	return e.str, nil
}

// optUTF8 treats index 0 as the empty string.
func (p *pool) optUTF8(i uint16) (string, error) {
	if i == 0 {
		return "", nil
	}

	return p.utf8(i)
}

func (p *pool) class(i uint16) (string, error) {
	e, err := p.entry(i, tagClass)
	if err != nil {
		return "", err
	}

	return p.utf8(e.a)
}

// optClass treats index 0 as absent.
func (p *pool) optClass(i uint16) (string, error) {
	if i == 0 {
		return "", nil
	}

	return p.class(i)
}

func (p *pool) nameAndType(i uint16) (string, string, error) {
	e, err := p.entry(i, tagNameAndType)
	if err != nil {
		return "", "", err
	}

	name, err := p.utf8(e.a)
	if err != nil {
		return "", "", err
	}

	desc, err := p.utf8(e.b)
	if err != nil {
		return "", "", err
	}

	return name, desc, nil
}

type memberRef struct {
	owner, name, desc string
	itf               bool
}

func (p *pool) member(i uint16, tags ...constantTag) (memberRef, error) {
	e, err := p.entry(i, tags...)
	if err != nil {
		return memberRef{}, err
	}

	owner, err := p.class(e.a)
	if err != nil {
		return memberRef{}, err
	}

	name, desc, err := p.nameAndType(e.b)
	if err != nil {
		return memberRef{}, err
	}

	return memberRef{owner: owner, name: name, desc: desc, itf: e.tag == tagInterfaceMethodref}, nil
}

func (p *pool) handle(i uint16) (model.Handle, error) {
	e, err := p.entry(i, tagMethodHandle)
	if err != nil {
		return model.Handle{}, err
	}

	ref, err := p.member(e.b, tagFieldref, tagMethodref, tagInterfaceMethodref)
	if err != nil {
		return model.Handle{}, err
	}

	return model.Handle{Kind: uint8(e.a), Owner: ref.owner, Name: ref.name, Desc: ref.desc, Interface: ref.itf}, nil
}

func (p *pool) bootstrap(i uint16) (model.Handle, []any, error) {
	if int(i) >= len(p.bootstraps) {
		return model.Handle{}, nil, fmt.Errorf("%w: bootstrap method %d out of range", model.ErrMalformedUnit, i)
	}

	bsm := p.bootstraps[i]

	h, err := p.handle(bsm.handle)
	if err != nil {
		return model.Handle{}, nil, err
	}

	args := make([]any, 0, len(bsm.args))
	for _, a := range bsm.args {
		v, err := p.constant(a)
		if err != nil {
			return model.Handle{}, nil, err
		}

		args = append(args, v)
	}

	return h, args, nil
}

// constant resolves a loadable constant (ldc operand, ConstantValue or
// bootstrap argument).
func (p *pool) constant(i uint16) (any, error) {
	e, err := p.entry(i, tagInteger, tagFloat, tagLong, tagDouble, tagString, tagClass,
		tagMethodType, tagMethodHandle, tagDynamic)
	if err != nil {
		return nil, err
	}

	switch e.tag {
	case tagInteger:
		return int32(uint32(e.raw)), nil
	case tagFloat:
		return math.Float32frombits(uint32(e.raw)), nil
	case tagLong:
		return int64(e.raw), nil
	case tagDouble:
		return math.Float64frombits(e.raw), nil
	case tagString:
		return p.utf8(e.a)
	case tagClass:
		name, err := p.utf8(e.a)
		return model.ClassConst{Name: name}, err
	case tagMethodType:
		desc, err := p.utf8(e.a)
		return model.MethodTypeConst{Desc: desc}, err
	case tagMethodHandle:
		return p.handle(i)
	case tagDynamic:
		name, desc, err := p.nameAndType(e.b)
		if err != nil {
			return nil, err
		}

		h, args, err := p.bootstrap(e.a)
		if err != nil {
			return nil, err
		}

		return model.DynamicConst{Name: name, Desc: desc, Bootstrap: h, Args: args}, nil
	}

	return nil, fmt.Errorf("%w: constant %d is not loadable", model.ErrMalformedUnit, i)
}

// poolBuilder assembles a deduplicated constant pool and bootstrap table
// for the writer.
type poolBuilder struct {
	out        output
	next       int
	index      map[string]uint16
	bootstraps []bootstrapMethod
	bsmIndex   map[string]uint16
	err        error
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{
		next:     1,
		index:    make(map[string]uint16),
		bsmIndex: make(map[string]uint16),
	}
}

func (p *poolBuilder) add(key string, size int, emit func(o *output)) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}

	if p.next+size > maxPoolEntries+1 {
		if p.err == nil {
			p.err = fmt.Errorf("constant pool exceeds %d entries", maxPoolEntries)
		}

		return 0
	}

	idx := uint16(p.next)
	p.next += size
	p.index[key] = idx
	emit(&p.out)

	return idx
}

func (p *poolBuilder) utf8(s string) uint16 {
	return p.add("U"+s, 1, func(o *output) {
		b := encodeModifiedUTF8(s)
		if len(b) > math.MaxUint16 && p.err == nil {
			p.err = fmt.Errorf("string constant too long (%d bytes)", len(b))
		}

		o.u1(uint8(tagUtf8))
		o.u2(uint16(len(b)))
		o.Write(b)
	})
}

func (p *poolBuilder) ref(tag constantTag, key string, target uint16) uint16 {
	return p.add(fmt.Sprintf("%d:%s", tag, key), 1, func(o *output) {
		o.u1(uint8(tag))
		o.u2(target)
	})
}

func (p *poolBuilder) class(name string) uint16 {
	return p.ref(tagClass, name, p.utf8(name))
}

func (p *poolBuilder) string(s string) uint16 {
	return p.ref(tagString, s, p.utf8(s))
}

func (p *poolBuilder) methodType(desc string) uint16 {
	return p.ref(tagMethodType, desc, p.utf8(desc))
}

func (p *poolBuilder) pair(tag constantTag, key string, a, b uint16) uint16 {
	return p.add(fmt.Sprintf("%d:%s", tag, key), 1, func(o *output) {
		o.u1(uint8(tag))
		o.u2(a)
		o.u2(b)
	})
}

func (p *poolBuilder) nameAndType(name, desc string) uint16 {
	return p.pair(tagNameAndType, name+" "+desc, p.utf8(name), p.utf8(desc))
}

func (p *poolBuilder) field(owner, name, desc string) uint16 {
	return p.pair(tagFieldref, owner+"."+name+" "+desc, p.class(owner), p.nameAndType(name, desc))
}

func (p *poolBuilder) method(owner, name, desc string, itf bool) uint16 {
	tag := tagMethodref
	if itf {
		tag = tagInterfaceMethodref
	}

	return p.pair(tag, owner+"."+name+desc, p.class(owner), p.nameAndType(name, desc))
}

func (p *poolBuilder) handle(h model.Handle) uint16 {
	var ref uint16
	if h.Kind <= model.RefPutStatic {
		ref = p.field(h.Owner, h.Name, h.Desc)
	} else {
		ref = p.method(h.Owner, h.Name, h.Desc, h.Interface)
	}

	key := fmt.Sprintf("%d:%d", h.Kind, ref)

	return p.add(fmt.Sprintf("%d:%s", tagMethodHandle, key), 1, func(o *output) {
		o.u1(uint8(tagMethodHandle))
		o.u1(h.Kind)
		o.u2(ref)
	})
}

func (p *poolBuilder) bootstrap(h model.Handle, args []any) uint16 {
	bsm := bootstrapMethod{handle: p.handle(h)}
	key := fmt.Sprint(bsm.handle)

	for _, a := range args {
		idx := p.constant(a)
		bsm.args = append(bsm.args, idx)
		key += fmt.Sprintf(",%d", idx)
	}

	if idx, ok := p.bsmIndex[key]; ok {
		return idx
	}

	idx := uint16(len(p.bootstraps))
	p.bootstraps = append(p.bootstraps, bsm)
	p.bsmIndex[key] = idx

	return idx
}

func (p *poolBuilder) invokeDynamic(tag constantTag, name, desc string, h model.Handle, args []any) uint16 {
	bsm := p.bootstrap(h, args)
	nt := p.nameAndType(name, desc)

	return p.pair(tag, fmt.Sprintf("%d:%d", bsm, nt), bsm, nt)
}

// constant interns a loadable constant value.
func (p *poolBuilder) constant(v any) uint16 {
	switch c := v.(type) {
	case int32:
		return p.add(fmt.Sprintf("I%d", c), 1, func(o *output) {
			o.u1(uint8(tagInteger))
			o.u4(uint32(c))
		})
	case float32:
		bits := math.Float32bits(c)
		return p.add(fmt.Sprintf("F%x", bits), 1, func(o *output) {
			o.u1(uint8(tagFloat))
			o.u4(bits)
		})
	case int64:
		return p.add(fmt.Sprintf("J%d", c), 2, func(o *output) {
			o.u1(uint8(tagLong))
			o.u8(uint64(c))
		})
	case float64:
		bits := math.Float64bits(c)
		return p.add(fmt.Sprintf("D%x", bits), 2, func(o *output) {
			o.u1(uint8(tagDouble))
			o.u8(bits)
		})
	case string:
		return p.string(c)
	case model.ClassConst:
		return p.class(c.Name)
	case model.MethodTypeConst:
		return p.methodType(c.Desc)
	case model.Handle:
		return p.handle(c)
	case model.DynamicConst:
		return p.invokeDynamic(tagDynamic, c.Name, c.Desc, c.Bootstrap, c.Args)
	}

	if p.err == nil {
		p.err = fmt.Errorf("unsupported constant %T", v)
	}

	return 0
}

// isWideConstant reports whether v takes two pool slots and needs ldc2_w.
func isWideConstant(v any) bool {
	switch c := v.(type) {
	case int64, float64:
		return true
	case model.DynamicConst:
		return c.Desc == "J" || c.Desc == "D"
	}

	return false
}

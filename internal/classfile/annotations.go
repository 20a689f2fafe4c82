package classfile

import (
	"fmt"

	"splice.dev/pkg/splice/internal/model"
)

func (r *unitReader) annotations(a rawAttribute) ([]model.Annotation, error) {
	in := newInput(a.data)
	visible := a.name == attrRuntimeVisibleAnns

	n := int(in.u2())
	out := make([]model.Annotation, 0, n)

	for ; n > 0 && in.err == nil; n-- {
		ann, err := r.annotation(in, visible)
		if err != nil {
			return nil, err
		}

		out = append(out, ann)
	}

	return out, done(in, a.name)
}

func (r *unitReader) annotation(in *input, visible bool) (model.Annotation, error) {
	desc, err := r.cp.utf8(in.u2())
	if err != nil {
		return model.Annotation{}, err
	}

	ann := model.Annotation{Desc: desc, Visible: visible}

	for n := int(in.u2()); n > 0 && in.err == nil; n-- {
		name, err := r.cp.utf8(in.u2())
		if err != nil {
			return model.Annotation{}, err
		}

		v, err := r.elementValue(in)
		if err != nil {
			return model.Annotation{}, fmt.Errorf("annotation %s element %s: %w", desc, name, err)
		}

		ann.Elements = append(ann.Elements, model.AnnotationElement{Name: name, Value: v})
	}

	return ann, in.err
}

func (r *unitReader) elementValue(in *input) (model.ElementValue, error) {
	v := model.ElementValue{Tag: in.u1()}
	if in.err != nil {
		return v, in.err
	}

	var err error

	switch v.Tag {
	case 'B', 'C', 'I', 'S', 'Z', 'D', 'F', 'J':
		v.Const, err = r.cp.constant(in.u2())
	case 's':
		v.Const, err = r.cp.utf8(in.u2())
	case 'e':
		if v.EnumType, err = r.cp.utf8(in.u2()); err == nil {
			v.EnumName, err = r.cp.utf8(in.u2())
		}
	case 'c':
		v.Class, err = r.cp.utf8(in.u2())
	case '@':
		var nested model.Annotation

		nested, err = r.annotation(in, true)
		v.Annotation = &nested
	case '[':
		for n := int(in.u2()); n > 0 && in.err == nil && err == nil; n-- {
			var item model.ElementValue

			item, err = r.elementValue(in)
			v.Array = append(v.Array, item)
		}

		if v.Array == nil {
			v.Array = []model.ElementValue{}
		}
	default:
		err = fmt.Errorf("%w: unknown element value tag %q", model.ErrMalformedUnit, v.Tag)
	}

	if err != nil {
		return v, err
	}

	return v, in.err
}

// writeAnnotations emits the visible and invisible annotation attributes
// for anns.
func (w *writer) writeAnnotations(o *output, anns []model.Annotation) int {
	count := 0

	for _, visible := range []bool{true, false} {
		var body output

		n := 0
		for _, a := range anns {
			if a.Visible == visible {
				n++
			}
		}

		if n == 0 {
			continue
		}

		body.u2(uint16(n))

		for _, a := range anns {
			if a.Visible == visible {
				w.annotation(&body, a)
			}
		}

		name := attrRuntimeInvisibleAnns
		if visible {
			name = attrRuntimeVisibleAnns
		}

		w.attribute(o, name, body.Bytes())
		count++
	}

	return count
}

func (w *writer) annotation(o *output, a model.Annotation) {
	o.u2(w.cp.utf8(a.Desc))
	o.u2(uint16(len(a.Elements)))

	for _, e := range a.Elements {
		o.u2(w.cp.utf8(e.Name))
		w.elementValue(o, e.Value)
	}
}

func (w *writer) elementValue(o *output, v model.ElementValue) {
	o.u1(v.Tag)

	switch v.Tag {
	case 'B', 'C', 'I', 'S', 'Z', 'D', 'F', 'J':
		o.u2(w.cp.constant(v.Const))
	case 's':
		s, _ := v.Const.(string)
		o.u2(w.cp.utf8(s))
	case 'e':
		o.u2(w.cp.utf8(v.EnumType))
		o.u2(w.cp.utf8(v.EnumName))
	case 'c':
		o.u2(w.cp.utf8(v.Class))
	case '@':
		if v.Annotation != nil {
			w.annotation(o, *v.Annotation)
		} else {
			w.annotation(o, model.Annotation{})
		}
	case '[':
		o.u2(uint16(len(v.Array)))

		for _, item := range v.Array {
			w.elementValue(o, item)
		}
	default:
		w.fail(fmt.Errorf("unknown element value tag %q", v.Tag))
	}
}

package model

// Annotation is a RuntimeVisibleAnnotations / RuntimeInvisibleAnnotations
// entry. Desc is a field descriptor (Lsplice/api/Mix;).
type Annotation struct {
	Desc     string
	Visible  bool
	Elements []AnnotationElement
}

// AnnotationElement is a named element_value pair.
type AnnotationElement struct {
	Name  string
	Value ElementValue
}

// ElementValue is an annotation element value. Tag follows the class file
// encoding: B C D F I J S Z s e c @ [.
type ElementValue struct {
	Tag        byte
	Const      any
	EnumType   string
	EnumName   string
	Class      string
	Annotation *Annotation
	Array      []ElementValue
}

// FindAnnotation returns the first annotation with the given descriptor.
func FindAnnotation(anns []Annotation, desc string) (*Annotation, bool) {
	for i := range anns {
		if anns[i].Desc == desc {
			return &anns[i], true
		}
	}

	return nil, false
}

// Value returns the element called name.
func (a *Annotation) Value(name string) (ElementValue, bool) {
	for _, e := range a.Elements {
		if e.Name == name {
			return e.Value, true
		}
	}

	return ElementValue{}, false
}

// String returns a string element.
func (a *Annotation) String(name string) (string, bool) {
	v, ok := a.Value(name)
	if !ok || v.Tag != 's' {
		return "", false
	}

	s, ok := v.Const.(string)

	return s, ok
}

// Bool returns a boolean element. Booleans are stored as int32.
func (a *Annotation) Bool(name string) (bool, bool) {
	v, ok := a.Value(name)
	if !ok || v.Tag != 'Z' {
		return false, false
	}

	n, ok := v.Const.(int32)

	return n != 0, ok
}

// Enum returns the constant name of an enum element.
func (a *Annotation) Enum(name string) (string, bool) {
	v, ok := a.Value(name)
	if !ok || v.Tag != 'e' {
		return "", false
	}

	return v.EnumName, true
}

// WithoutAnnotations drops every annotation whose descriptor is in descs.
func WithoutAnnotations(anns []Annotation, descs ...string) []Annotation {
	var out []Annotation

outer:
	for _, a := range anns {
		for _, d := range descs {
			if a.Desc == d {
				continue outer
			}
		}

		out = append(out, a)
	}

	return out
}

// CloneAnnotations deep-copies annotations.
func CloneAnnotations(anns []Annotation) []Annotation {
	if anns == nil {
		return nil
	}

	out := make([]Annotation, len(anns))
	for i, a := range anns {
		out[i] = cloneAnnotation(a)
	}

	return out
}

func cloneAnnotation(a Annotation) Annotation {
	elems := make([]AnnotationElement, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = AnnotationElement{Name: e.Name, Value: cloneElementValue(e.Value)}
	}

	a.Elements = elems

	return a
}

func cloneElementValue(v ElementValue) ElementValue {
	if v.Annotation != nil {
		nested := cloneAnnotation(*v.Annotation)
		v.Annotation = &nested
	}

	if v.Array != nil {
		arr := make([]ElementValue, len(v.Array))
		for i, e := range v.Array {
			arr[i] = cloneElementValue(e)
		}

		v.Array = arr
	}

	return v
}

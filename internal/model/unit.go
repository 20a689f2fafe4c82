// Package model defines the structural representation of class files and the
// data exchanged between the reader, the registry, the merge engine and the
// loading shim.
package model

// AccessFlags is the access_flags bit set of a class, field or method.
type AccessFlags uint16

// Access flag bits.
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

// Has reports whether all bits of flag are set.
func (f AccessFlags) Has(flag AccessFlags) bool { return f&flag == flag }

// Constructor and static initializer method names.
const (
	ConstructorName = "<init>"
	ClassInitName   = "<clinit>"
	ObjectClass     = "java/lang/Object"
	ThrowableClass  = "java/lang/Throwable"
)

// BinaryUnit is one class. Names use the internal slashed form
// (java/lang/Object).
type BinaryUnit struct {
	MinorVersion uint16
	MajorVersion uint16
	Access       AccessFlags
	Name         string
	Super        string
	Interfaces   []string
	Fields       []*FieldUnit
	Methods      []*MethodUnit

	Signature           string
	SourceFile          string
	Annotations         []Annotation
	InnerClasses        []InnerClass
	EnclosingMethod     *EnclosingMethod
	NestHost            string
	NestMembers         []string
	PermittedSubclasses []string
}

// FieldUnit is a field declaration. Value is the ConstantValue (int32,
// int64, float32, float64 or string) or nil.
type FieldUnit struct {
	Access      AccessFlags
	Name        string
	Desc        string
	Signature   string
	Value       any
	Annotations []Annotation
}

// MethodUnit is a method declaration with its body. Abstract and native
// methods have no instructions.
type MethodUnit struct {
	Access       AccessFlags
	Name         string
	Desc         string
	Signature    string
	Exceptions   []string
	Annotations  []Annotation
	Instructions []Instruction
	TryCatch     []TryCatchBlock

	// MaxStack and MaxLocals are informational after a read; the writer
	// always recomputes them.
	MaxStack  int
	MaxLocals int

	nextLabel Label
}

// InnerClass is an InnerClasses attribute entry.
type InnerClass struct {
	Name   string
	Outer  string
	Simple string
	Access AccessFlags
}

// EnclosingMethod records the method a local or anonymous class lives in.
type EnclosingMethod struct {
	Owner string
	Name  string
	Desc  string
}

// MethodKey is the structural identity of a method inside a unit.
type MethodKey struct {
	Name string
	Desc string
}

func (k MethodKey) String() string { return k.Name + k.Desc }

// Key returns the method's name+descriptor identity.
func (m *MethodUnit) Key() MethodKey {
	return MethodKey{Name: m.Name, Desc: m.Desc}
}

// HasCode reports whether the method carries a Code attribute.
func (m *MethodUnit) HasCode() bool {
	return !m.Access.Has(AccAbstract) && !m.Access.Has(AccNative)
}

// IsConstructor reports whether the method is an instance or class
// initializer.
func (m *MethodUnit) IsConstructor() bool {
	return m.Name == ConstructorName || m.Name == ClassInitName
}

// NewLabel allocates a label not yet used in the method body.
func (m *MethodUnit) NewLabel() Label {
	if m.nextLabel == 0 {
		m.nextLabel = m.maxLabel() + 1
	}

	l := m.nextLabel
	m.nextLabel++

	return l
}

func (m *MethodUnit) maxLabel() Label {
	var hi Label

	see := func(l Label) Label {
		if l > hi {
			hi = l
		}

		return l
	}

	for _, insn := range m.Instructions {
		RelabelInstruction(insn, see)
	}

	for _, tc := range m.TryCatch {
		see(tc.Start)
		see(tc.End)
		see(tc.Handler)
	}

	return hi
}

// Clone deep-copies the method.
func (m *MethodUnit) Clone() *MethodUnit {
	c := *m
	c.Exceptions = append([]string(nil), m.Exceptions...)
	c.Annotations = CloneAnnotations(m.Annotations)
	c.Instructions = CloneInstructions(m.Instructions)
	c.TryCatch = append([]TryCatchBlock(nil), m.TryCatch...)

	return &c
}

// Clone copies the field.
func (f *FieldUnit) Clone() *FieldUnit {
	c := *f
	c.Annotations = CloneAnnotations(f.Annotations)

	return &c
}

// Field returns the field called name, or nil.
func (u *BinaryUnit) Field(name string) *FieldUnit {
	for _, f := range u.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// Method returns the method with the given name and descriptor, or nil.
func (u *BinaryUnit) Method(name, desc string) *MethodUnit {
	for _, m := range u.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}

	return nil
}

// IsInterface reports whether the unit declares an interface.
func (u *BinaryUnit) IsInterface() bool {
	return u.Access.Has(AccInterface)
}

// Arena holds the units loaded for one operation. Superclasses are resolved
// by name through it, never by pointer.
type Arena map[string]*BinaryUnit

// NewArena indexes units by name.
func NewArena(units ...*BinaryUnit) Arena {
	a := make(Arena, len(units))
	for _, u := range units {
		a[u.Name] = u
	}

	return a
}

// Super returns the loaded superclass of u, if the arena holds it.
func (a Arena) Super(u *BinaryUnit) (*BinaryUnit, bool) {
	if u.Super == "" || u.Super == u.Name {
		return nil, false
	}

	s, ok := a[u.Super]

	return s, ok
}

package model

import "fmt"

// Marker annotation descriptors recognised on mix source classes.
const (
	MixMarker     = "Lsplice/api/Mix;"
	ShadowMarker  = "Lsplice/api/Shadow;"
	AddMarker     = "Lsplice/api/Add;"
	ReplaceMarker = "Lsplice/api/Replace;"
	InjectMarker  = "Lsplice/api/Inject;"
	AtEnum        = "Lsplice/api/At;"
)

// Markers lists every marker descriptor; they are stripped from copied
// members.
var Markers = []string{MixMarker, ShadowMarker, AddMarker, ReplaceMarker, InjectMarker}

// Location selects where an injected fragment is spliced.
type Location string

const (
	// LocationHead splices before the first instruction.
	LocationHead Location = "HEAD"
	// LocationTail splices before the structurally last instruction only.
	// Early returns bypass it.
	LocationTail Location = "TAIL"
	// LocationReturn splices a copy before every return instruction.
	LocationReturn Location = "RETURN"
)

// ParseLocation validates a location name.
func ParseLocation(s string) (Location, error) {
	switch Location(s) {
	case LocationHead, LocationTail, LocationReturn:
		return Location(s), nil
	}

	return "", fmt.Errorf("unknown injection location %q", s)
}

// ModifierKind tags a MethodModifier.
type ModifierKind string

const (
	// ModifierAdd appends the method unless its key already exists.
	ModifierAdd ModifierKind = "add"
	// ModifierReplace removes the existing method with the same key first.
	ModifierReplace ModifierKind = "replace"
	// ModifierInject splices the method body into a target method.
	ModifierInject ModifierKind = "inject"
)

// InjectPoint names the target method and the splice location.
type InjectPoint struct {
	Method string
	Desc   string
	At     Location
}

// MethodModifier binds one declared method of the mix source to its
// transformation.
type MethodModifier struct {
	Kind   ModifierKind
	Method MethodKey
	Rename string
	Inject *InjectPoint
}

// ResolvedName returns the name the method takes in the target.
func (mm MethodModifier) ResolvedName() string {
	if mm.Rename != "" {
		return mm.Rename
	}

	return mm.Method.Name
}

func (mm MethodModifier) String() string {
	switch mm.Kind {
	case ModifierInject:
		if mm.Inject != nil {
			return fmt.Sprintf("inject %s -> %s%s @%s", mm.Method, mm.Inject.Method, mm.Inject.Desc, mm.Inject.At)
		}
	case ModifierAdd, ModifierReplace:
		if mm.Rename != "" {
			return fmt.Sprintf("%s %s as %s", mm.Kind, mm.Method, mm.Rename)
		}
	}

	return fmt.Sprintf("%s %s", mm.Kind, mm.Method)
}

// MixDefinition is the parsed, static form of one mix source class.
type MixDefinition struct {
	Source             *BinaryUnit
	Target             string
	RequiredInterfaces []string
	Shadows            map[string]string
	Modifiers          []MethodModifier
}

// Name returns the mix source class name.
func (d *MixDefinition) Name() string {
	if d.Source == nil {
		return ""
	}

	return d.Source.Name
}

// PublicFieldName returns the name a declared field takes on the target.
func (d *MixDefinition) PublicFieldName(declared string) string {
	if mapped, ok := d.Shadows[declared]; ok && mapped != "" {
		return mapped
	}

	return declared
}

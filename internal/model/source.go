package model

import "strings"

// Path represents a file system path.
type Path string

// ClassResource maps a class name (dotted or slashed) to its resource path
// inside a search path root.
func ClassResource(className string) string {
	return InternalName(className) + ".class"
}

// InternalName converts a dotted binary name to the slashed internal form.
func InternalName(className string) string {
	return strings.ReplaceAll(strings.TrimSuffix(className, ".class"), ".", "/")
}

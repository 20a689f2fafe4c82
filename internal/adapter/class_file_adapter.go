package adapter

import (
	"io"

	"splice.dev/pkg/splice/internal/classfile"
	m "splice.dev/pkg/splice/internal/model"
)

// ClassFileAdapter encapsulates the binary class format so the domain layer
// only ever handles the structural model.
type ClassFileAdapter interface {
	// Read parses class bytes. Failures wrap model.ErrMalformedUnit.
	Read(data []byte) (*m.BinaryUnit, error)

	// Write serializes a unit, recomputing derived metadata. The hierarchy
	// answers superclass questions while stack map frames are merged and may
	// be nil.
	Write(unit *m.BinaryUnit, hierarchy classfile.Hierarchy) ([]byte, error)

	// Disassemble writes a readable listing of the unit.
	Disassemble(out io.Writer, unit *m.BinaryUnit) error
}

// LocalClassFileAdapter provides a concrete ClassFileAdapter backed by the
// classfile package.
type LocalClassFileAdapter struct{}

// NewLocalClassFileAdapter constructs a LocalClassFileAdapter.
func NewLocalClassFileAdapter() *LocalClassFileAdapter {
	return &LocalClassFileAdapter{}
}

// Read parses class bytes into a unit.
func (a *LocalClassFileAdapter) Read(data []byte) (*m.BinaryUnit, error) {
	return classfile.Read(data)
}

// Write serializes unit.
func (a *LocalClassFileAdapter) Write(unit *m.BinaryUnit, hierarchy classfile.Hierarchy) ([]byte, error) {
	if hierarchy == nil {
		return classfile.Write(unit)
	}

	return classfile.Write(unit, classfile.WithHierarchy(hierarchy))
}

// Disassemble writes a listing of unit to out.
func (a *LocalClassFileAdapter) Disassemble(out io.Writer, unit *m.BinaryUnit) error {
	return classfile.Disassemble(out, unit)
}

package classfile

import (
	"fmt"
	"io"
	"strings"

	"splice.dev/pkg/splice/internal/model"
)

// Disassemble writes a readable listing of unit to out.
func Disassemble(out io.Writer, unit *model.BinaryUnit) error {
	var b strings.Builder

	kind := "class"
	if unit.IsInterface() {
		kind = "interface"
	}

	fmt.Fprintf(&b, "%s %s", kind, unit.Name)

	if unit.Super != "" {
		fmt.Fprintf(&b, " extends %s", unit.Super)
	}

	if len(unit.Interfaces) > 0 {
		fmt.Fprintf(&b, " implements %s", strings.Join(unit.Interfaces, ", "))
	}

	fmt.Fprintf(&b, "\n  version %d.%d, flags 0x%04x\n", unit.MajorVersion, unit.MinorVersion, uint16(unit.Access))

	if unit.SourceFile != "" {
		fmt.Fprintf(&b, "  source %s\n", unit.SourceFile)
	}

	for _, a := range unit.Annotations {
		fmt.Fprintf(&b, "  @%s\n", formatAnnotation(a))
	}

	for _, f := range unit.Fields {
		fmt.Fprintf(&b, "\n  field 0x%04x %s %s", uint16(f.Access), f.Name, f.Desc)

		if f.Value != nil {
			fmt.Fprintf(&b, " = %s", formatConstant(f.Value))
		}

		b.WriteString("\n")

		for _, a := range f.Annotations {
			fmt.Fprintf(&b, "    @%s\n", formatAnnotation(a))
		}
	}

	for _, m := range unit.Methods {
		fmt.Fprintf(&b, "\n  method 0x%04x %s%s\n", uint16(m.Access), m.Name, m.Desc)

		for _, a := range m.Annotations {
			fmt.Fprintf(&b, "    @%s\n", formatAnnotation(a))
		}

		for _, insn := range m.Instructions {
			fmt.Fprintf(&b, "    %s\n", FormatInstruction(insn))
		}

		for _, tc := range m.TryCatch {
			catch := tc.Type
			if catch == "" {
				catch = "*"
			}

			fmt.Fprintf(&b, "    try L%d L%d -> L%d %s\n", tc.Start, tc.End, tc.Handler, catch)
		}
	}

	_, err := io.WriteString(out, b.String())

	return err
}

// FormatInstruction renders one instruction; labels print as L<n>.
func FormatInstruction(insn model.Instruction) string {
	switch in := insn.(type) {
	case model.LabelInsn:
		return fmt.Sprintf("L%d:", in.Label)
	case model.LineInsn:
		return fmt.Sprintf("  // line %d", in.Line)
	case model.Insn:
		return "  " + in.Opcode.String()
	case model.IntInsn:
		return fmt.Sprintf("  %s %d", in.Opcode, in.Operand)
	case model.VarInsn:
		return fmt.Sprintf("  %s %d", in.Opcode, in.Var)
	case model.IincInsn:
		return fmt.Sprintf("  iinc %d %d", in.Var, in.Increment)
	case model.TypeInsn:
		return fmt.Sprintf("  %s %s", in.Opcode, in.Type)
	case model.FieldInsn:
		return fmt.Sprintf("  %s %s.%s %s", in.Opcode, in.Owner, in.Name, in.Desc)
	case model.MethodInsn:
		return fmt.Sprintf("  %s %s.%s%s", in.Opcode, in.Owner, in.Name, in.Desc)
	case model.InvokeDynamicInsn:
		return fmt.Sprintf("  invokedynamic %s%s [%s.%s]", in.Name, in.Desc, in.Bootstrap.Owner, in.Bootstrap.Name)
	case model.JumpInsn:
		return fmt.Sprintf("  %s L%d", in.Opcode, in.Target)
	case model.LdcInsn:
		return "  ldc " + formatConstant(in.Value)
	case model.TableSwitchInsn:
		targets := make([]string, len(in.Targets))
		for i, t := range in.Targets {
			targets[i] = fmt.Sprintf("%d: L%d", int(in.Min)+i, t)
		}

		return fmt.Sprintf("  tableswitch {%s, default: L%d}", strings.Join(targets, ", "), in.Default)
	case model.LookupSwitchInsn:
		targets := make([]string, len(in.Targets))
		for i, t := range in.Targets {
			targets[i] = fmt.Sprintf("%d: L%d", in.Keys[i], t)
		}

		return fmt.Sprintf("  lookupswitch {%s, default: L%d}", strings.Join(targets, ", "), in.Default)
	case model.MultiANewArrayInsn:
		return fmt.Sprintf("  multianewarray %s %d", in.Desc, in.Dims)
	}

	return fmt.Sprintf("  %v", insn)
}

func formatConstant(v any) string {
	switch c := v.(type) {
	case string:
		return fmt.Sprintf("%q", c)
	case int64:
		return fmt.Sprintf("%dL", c)
	case float32:
		return fmt.Sprintf("%gf", c)
	case model.ClassConst:
		return c.Name + ".class"
	case model.MethodTypeConst:
		return c.Desc
	case model.Handle:
		return fmt.Sprintf("handle(%d) %s.%s%s", c.Kind, c.Owner, c.Name, c.Desc)
	case model.DynamicConst:
		return fmt.Sprintf("condy %s %s", c.Name, c.Desc)
	}

	return fmt.Sprint(v)
}

func formatAnnotation(a model.Annotation) string {
	if len(a.Elements) == 0 {
		return a.Desc
	}

	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Name + "=" + formatElement(e.Value)
	}

	return fmt.Sprintf("%s(%s)", a.Desc, strings.Join(parts, ", "))
}

func formatElement(v model.ElementValue) string {
	switch v.Tag {
	case 'e':
		return v.EnumType + "." + v.EnumName
	case 'c':
		return v.Class
	case '@':
		if v.Annotation != nil {
			return "@" + formatAnnotation(*v.Annotation)
		}
	case '[':
		items := make([]string, len(v.Array))
		for i, item := range v.Array {
			items[i] = formatElement(item)
		}

		return "{" + strings.Join(items, ", ") + "}"
	}

	return formatConstant(v.Const)
}

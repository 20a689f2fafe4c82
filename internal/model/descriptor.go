package model

import "fmt"

// ParseMethodDescriptor splits (IJLjava/lang/String;)V into its parameter
// and return field descriptors.
func ParseMethodDescriptor(desc string) ([]string, string, error) {
	if len(desc) < 3 || desc[0] != '(' {
		return nil, "", fmt.Errorf("bad method descriptor %q", desc)
	}

	var params []string

	i := 1
	for i < len(desc) && desc[i] != ')' {
		n, err := fieldDescriptorLen(desc[i:])
		if err != nil {
			return nil, "", fmt.Errorf("bad method descriptor %q: %w", desc, err)
		}

		params = append(params, desc[i:i+n])
		i += n
	}

	if i >= len(desc) {
		return nil, "", fmt.Errorf("bad method descriptor %q", desc)
	}

	ret := desc[i+1:]
	if ret != "V" {
		n, err := fieldDescriptorLen(ret)
		if err != nil || n != len(ret) {
			return nil, "", fmt.Errorf("bad return type in %q", desc)
		}
	}

	return params, ret, nil
}

func fieldDescriptorLen(s string) (int, error) {
	i := 0
	for i < len(s) && s[i] == '[' {
		i++
	}

	if i >= len(s) {
		return 0, fmt.Errorf("truncated descriptor")
	}

	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1, nil
	case 'L':
		for j := i + 1; j < len(s); j++ {
			if s[j] == ';' {
				return j + 1, nil
			}
		}

		return 0, fmt.Errorf("unterminated class descriptor")
	}

	return 0, fmt.Errorf("unexpected descriptor character %q", s[i])
}

// TypeSize returns the number of local/stack slots a field descriptor uses.
func TypeSize(desc string) int {
	switch desc {
	case "V", "":
		return 0
	case "J", "D":
		return 2
	}

	return 1
}

// ArgumentSlots returns the local slots occupied by the receiver (unless
// static) and the parameters of a method descriptor.
func ArgumentSlots(desc string, static bool) int {
	params, _, err := ParseMethodDescriptor(desc)
	if err != nil {
		return 0
	}

	n := 0
	if !static {
		n = 1
	}

	for _, p := range params {
		n += TypeSize(p)
	}

	return n
}

package disasm

import "strings"

// fieldTypeName renders a field descriptor ("Ljava/lang/String;", "[I", "D")
// as a Java-source-like type name, the way javap prints declarations
// instead of raw descriptors (spec.md §6's -s flag keeps the raw form
// available alongside this one).
func fieldTypeName(descriptor string) string {
	name, _ := consumeTypeName(descriptor, 0)
	return name
}

// returnTypeName renders a method descriptor's return type.
func returnTypeName(descriptor string) string {
	i := strings.IndexByte(descriptor, ')')
	if i < 0 || i+1 >= len(descriptor) {
		return "void"
	}
	name, _ := consumeTypeName(descriptor, i+1)
	return name
}

// paramTypeNames renders a method descriptor's parameter list as a
// comma-joined Java-source-like type list.
func paramTypeNames(descriptor string) string {
	if len(descriptor) == 0 || descriptor[0] != '(' {
		return ""
	}
	var names []string
	i := 1
	for i < len(descriptor) && descriptor[i] != ')' {
		name, next := consumeTypeName(descriptor, i)
		names = append(names, name)
		i = next
	}
	return strings.Join(names, ", ")
}

// consumeTypeName reads one field-type descriptor starting at i and returns
// its Java-source-like rendering plus the index just past it.
func consumeTypeName(s string, i int) (string, int) {
	dims := 0
	for i < len(s) && s[i] == '[' {
		dims++
		i++
	}
	if i >= len(s) {
		return "?", i
	}
	var base string
	switch s[i] {
	case 'B':
		base, i = "byte", i+1
	case 'C':
		base, i = "char", i+1
	case 'D':
		base, i = "double", i+1
	case 'F':
		base, i = "float", i+1
	case 'I':
		base, i = "int", i+1
	case 'J':
		base, i = "long", i+1
	case 'S':
		base, i = "short", i+1
	case 'Z':
		base, i = "boolean", i+1
	case 'V':
		base, i = "void", i+1
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			return "?", len(s)
		}
		base = strings.ReplaceAll(s[i+1:i+end], "/", ".")
		i += end + 1
	default:
		return "?", i + 1
	}
	return base + strings.Repeat("[]", dims), i
}

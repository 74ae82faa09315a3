package model

import "strings"

// universalTypes accept any value in the languages refdiff reads.
var universalTypes = map[string]struct{}{
	"any":         {},
	"interface{}": {},
	"Object":      {},
}

// ClassType strips pointer markers, package or outer-class qualifiers, type
// arguments and array dimensions from a declared type.
func ClassType(t string) string {
	t = strings.TrimSpace(t)
	t = strings.TrimLeft(t, "*&")
	t = strings.TrimPrefix(t, "[]")

	if i := strings.IndexAny(t, "<["); i > 0 {
		t = t[:i]
	}

	t = strings.TrimSuffix(t, "...")

	if i := strings.LastIndex(t, "."); i >= 0 && i < len(t)-1 {
		t = t[i+1:]
	}

	return t
}

// shapedType keeps pointer markers and array or variadic dimensions but drops
// package or outer-class qualifiers and type arguments from the element type.
// Variadic markers count as one array dimension. Map, func and chan types are
// only trimmed.
func shapedType(t string) string {
	t = strings.TrimSpace(t)

	var prefix, suffix string

	for trimmed := true; trimmed; {
		switch {
		case strings.HasPrefix(t, "*"), strings.HasPrefix(t, "&"):
			prefix += t[:1]
			t = t[1:]
		case strings.HasPrefix(t, "[]"):
			prefix += "[]"
			t = t[2:]
		case strings.HasPrefix(t, "..."):
			prefix += "[]"
			t = t[3:]
		default:
			trimmed = false
		}
	}

	for trimmed := true; trimmed; {
		switch {
		case strings.HasSuffix(t, "[]"):
			suffix = "[]" + suffix
			t = strings.TrimSpace(t[:len(t)-2])
		case strings.HasSuffix(t, "..."):
			suffix = "[]" + suffix
			t = strings.TrimSpace(t[:len(t)-3])
		default:
			trimmed = false
		}
	}

	return prefix + elementType(t) + suffix
}

func elementType(t string) string {
	if strings.HasPrefix(t, "map[") || strings.HasPrefix(t, "func(") || strings.HasPrefix(t, "chan ") {
		return t
	}

	if i := strings.IndexAny(t, "<["); i > 0 {
		t = t[:i]
	}

	if i := strings.LastIndex(t, "."); i >= 0 && i < len(t)-1 {
		t = t[i+1:]
	}

	return t
}

// TypesCompatible reports whether a value declared as sub can be passed where
// super is expected: identical types, the same shaped type once qualifiers and
// type arguments are removed, or a universal super type. Pointer markers and
// array dimensions must agree.
func TypesCompatible(super, sub string) bool {
	if super == sub {
		return true
	}

	shape := shapedType(super)
	if _, ok := universalTypes[shape]; ok {
		return true
	}

	return shape != "" && shape == shapedType(sub)
}

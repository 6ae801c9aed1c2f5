package symbol

import "strings"

// WithCallBrackets appends the call suffix to a name if not already present.
func WithCallBrackets(name string) string {
	if strings.HasSuffix(name, "()") {
		return name
	}
	return name + "()"
}

// WithoutCallBrackets strips a trailing call suffix from a name.
func WithoutCallBrackets(name string) string {
	return strings.TrimSuffix(name, "()")
}

// BasenameFromName returns the leading identifier of a dotted name, with any
// starred prefix and trailing subscript or call markers removed. For a
// local-value placeholder the placeholder itself is the basename.
func BasenameFromName(name string) string {
	base := strings.TrimLeft(name, "*")
	if i := strings.IndexAny(base, ".["); i >= 0 {
		base = base[:i]
	}
	return WithoutCallBrackets(base)
}

// PossibleModuleNames returns the dotted prefixes of a qualified name from
// longest to shortest, the order in which containing modules are probed.
// For "a.b.c" that is ["a.b.c", "a.b", "a"].
func PossibleModuleNames(name string) []string {
	parts := strings.Split(name, ".")
	prefixes := make([]string, 0, len(parts))
	for i := len(parts); i > 0; i-- {
		prefixes = append(prefixes, strings.Join(parts[:i], "."))
	}
	return prefixes
}

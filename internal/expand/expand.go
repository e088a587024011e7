// Package expand implements the pkg-config variable-expansion engine:
// recursive ${name} substitution against a file's own variables, with a
// process-wide override map that takes precedence and can opaquely
// short-circuit expansion.
package expand

import (
	"regexp"
)

// maxIterations bounds the outer substitution loop so pathological
// self-reference (e.g. foo=${foo}) cannot spin forever; a well-formed
// file converges in far fewer passes.
const maxIterations = 64

var refRe = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)\}`)

// Variables is a read-only view of a file's own variable definitions.
type Variables interface {
	RawVariable(name string) (string, bool)
}

// Overrides holds process-wide variable overrides gathered from
// --define-variable and PKG_CONFIG_<PKG>_<var> environment variables.
type Overrides map[string]string

// Expand substitutes every ${name} reference in s. Overrides in o take
// precedence over file variables in v. An override whose own value
// still contains a ${...} reference is treated as opaque: it is
// substituted literally at every occurrence in the current pass, and
// expansion of s halts after that pass.
func Expand(s string, v Variables, o Overrides) string {
	for i := 0; i < maxIterations; i++ {
		if !refRe.MatchString(s) {
			return s
		}

		halted := false
		next := refRe.ReplaceAllStringFunc(s, func(match string) string {
			name := match[2 : len(match)-1]
			value, opaque := resolve(name, v, o)
			if opaque {
				halted = true
			}
			return value
		})

		s = next
		if halted {
			return s
		}
	}
	return s
}

// resolve implements the four-way lookup rule for a single name.
// opaque is true when the resolution came from rule 2 (an override
// whose value itself contains a reference), which halts the outer loop.
func resolve(name string, v Variables, o Overrides) (value string, opaque bool) {
	if ov, ok := o[name]; ok {
		if refRe.MatchString(ov) {
			return ov, true
		}
		return ov, false
	}
	if fv, ok := v.RawVariable(name); ok {
		return fv, false
	}
	return "", false
}

// HasReference reports whether s contains an unexpanded ${...} form.
func HasReference(s string) bool {
	return refRe.MatchString(s)
}

// ReferencedNames returns the variable names referenced by s, in order
// of first appearance, without resolving them.
func ReferencedNames(s string) []string {
	matches := refRe.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

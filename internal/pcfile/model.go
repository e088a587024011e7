// Package pcfile implements the pkg-config metadata-file value model,
// tokenizer/parser, and round-trip serializer.
package pcfile

// Kind classifies how a property's raw value is split into tokens.
type Kind int

const (
	// Default properties are split on runs of unescaped whitespace.
	Default Kind = iota
	// RequiresLike properties (Requires, Requires.private) are split on
	// commas and/or whitespace, then fused so a relational operator
	// binds to its neighboring package name.
	RequiresLike
	// LibsLike properties (Libs, Libs.private) are split like Default
	// but deduplicated in place, keeping the first occurrence.
	LibsLike
)

// kindOf looks up the parsing kind for a well-known property name.
func kindOf(name string) Kind {
	switch name {
	case "Requires", "Requires.private":
		return RequiresLike
	case "Libs", "Libs.private":
		return LibsLike
	default:
		return Default
	}
}

// variable is one NAME=VALUE entry, kept in insertion order.
type variable struct {
	name  string
	value string
}

// property is one NAME: VALUE entry, kept in insertion order.
type property struct {
	name   string
	kind   Kind
	tokens []string
}

// PkgConfig is the in-memory representation of one parsed .pc file.
// Variables and properties are read-only after Parse returns; the zero
// value is not usable, use New or Parse.
type PkgConfig struct {
	Path string // filesystem path this model was loaded from, if any

	variables   []variable
	varIndex    map[string]int
	properties  []property
	propIndex   map[string]int
}

// New creates an empty model, used by the parser and by tests that
// build a model programmatically.
func New() *PkgConfig {
	return &PkgConfig{
		varIndex:  make(map[string]int),
		propIndex: make(map[string]int),
	}
}

// AddVariable appends a variable definition. It reports whether name was
// already defined (a duplicate is a parse error the caller should raise).
func (p *PkgConfig) AddVariable(name, value string) (duplicate bool) {
	if _, ok := p.varIndex[name]; ok {
		return true
	}
	p.varIndex[name] = len(p.variables)
	p.variables = append(p.variables, variable{name: name, value: value})
	return false
}

// AddProperty appends a property definition with its raw (unexpanded)
// token list, already split per its Kind. It reports whether name was
// already defined.
func (p *PkgConfig) AddProperty(name string, tokens []string) (duplicate bool) {
	if _, ok := p.propIndex[name]; ok {
		return true
	}
	kind := kindOf(name)
	if kind == LibsLike {
		tokens = dedupFirst(tokens)
	}
	p.propIndex[name] = len(p.properties)
	p.properties = append(p.properties, property{name: name, kind: kind, tokens: tokens})
	return false
}

// RawVariable returns the unexpanded value of a file-level variable.
func (p *PkgConfig) RawVariable(name string) (string, bool) {
	if i, ok := p.varIndex[name]; ok {
		return p.variables[i].value, true
	}
	return "", false
}

// VariableNames returns variable names in insertion (declaration) order.
func (p *PkgConfig) VariableNames() []string {
	names := make([]string, len(p.variables))
	for i, v := range p.variables {
		names[i] = v.name
	}
	return names
}

// RawTokens returns a property's raw (unexpanded) tokens and its Kind.
func (p *PkgConfig) RawTokens(name string) ([]string, Kind, bool) {
	if i, ok := p.propIndex[name]; ok {
		prop := p.properties[i]
		return prop.tokens, prop.kind, true
	}
	return nil, Default, false
}

// HasProperty reports whether name was defined in the file.
func (p *PkgConfig) HasProperty(name string) bool {
	_, ok := p.propIndex[name]
	return ok
}

// PropertyNames returns property names in insertion (declaration) order.
func (p *PkgConfig) PropertyNames() []string {
	names := make([]string, len(p.properties))
	for i, pr := range p.properties {
		names[i] = pr.name
	}
	return names
}

func dedupFirst(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Empty reports whether the file defined no variables and no
// properties at all, the degenerate case of a zero-byte or
// whitespace-only .pc file.
func (p *PkgConfig) Empty() bool {
	return len(p.variables) == 0 && len(p.properties) == 0
}

// Validate enforces presence of Name, Description, and Version. It
// returns the missing property name, or "" if valid.
func (p *PkgConfig) Validate() string {
	for _, req := range []string{"Name", "Description", "Version"} {
		if !p.HasProperty(req) {
			return req
		}
	}
	return ""
}

package pcfile

import "github.com/matijaskala/pkgconfig-openbsd/internal/expand"

// ExpandedVariable returns a file variable's fully expanded value. It
// is used for --variable=NAME queries, alone or combined with
// --cflags/--libs.
func (p *PkgConfig) ExpandedVariable(name string, o expand.Overrides) (string, bool) {
	raw, ok := p.RawVariable(name)
	if !ok {
		return "", false
	}
	return expand.Expand(raw, p, o), true
}

// ExpandedTokens returns a property's tokens after variable expansion.
// A token whose expansion differs from its raw form is re-split using
// the property's own splitting rule (so a variable that expands to
// "-lfoo -lbar" contributes two tokens, not one); tokens that expand
// to themselves are kept as-is.
func (p *PkgConfig) ExpandedTokens(name string, o expand.Overrides) ([]string, bool) {
	raw, kind, ok := p.RawTokens(name)
	if !ok {
		return nil, false
	}

	var out []string
	for _, tok := range raw {
		expanded := expand.Expand(tok, p, o)
		if expanded == tok {
			out = append(out, tok)
			continue
		}
		out = append(out, splitTokens(kind, expanded)...)
	}
	if kind == LibsLike {
		out = dedupFirst(out)
	}
	return out, true
}

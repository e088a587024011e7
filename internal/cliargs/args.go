// Package cliargs parses the pkg-config positional argument grammar:
// bare package names, comma-separated lists of names, and inline
// "NAME OP VERSION" constraint triples, all of which may be freely
// interleaved.
package cliargs

import (
	"strings"

	"github.com/matijaskala/pkgconfig-openbsd/internal/version"
	"github.com/matijaskala/pkgconfig-openbsd/internal/walk"
)

var operators = map[string]version.Operator{
	"<=": version.OpLE,
	">=": version.OpGE,
	"!=": version.OpNE,
	"<":  version.OpLT,
	">":  version.OpGT,
	"=":  version.OpEQ,
}

// Parse splits raw positional arguments into individual requirements.
// Commas act as name separators wherever they appear; three
// consecutive tokens matching NAME OP VERSION are fused into one
// constrained requirement, otherwise each token is a bare name.
func Parse(args []string) []walk.Requirement {
	var tokens []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				tokens = append(tokens, part)
			}
		}
	}

	var reqs []walk.Requirement
	for i := 0; i < len(tokens); i++ {
		if i+2 < len(tokens) {
			if op, ok := operators[tokens[i+1]]; ok {
				reqs = append(reqs, walk.Requirement{Name: tokens[i], Op: op, Want: tokens[i+2]})
				i += 2
				continue
			}
		}
		reqs = append(reqs, walk.Requirement{Name: tokens[i]})
	}
	return reqs
}

// Names extracts just the package names from a requirement list, in
// order, used by query modes that don't apply version constraints
// (--print-provides, --variable, --modversion, --print-requires).
func Names(reqs []walk.Requirement) []string {
	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.Name
	}
	return names
}

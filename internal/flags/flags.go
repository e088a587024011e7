// Package flags implements the flag projector: turning walk order into
// the deduplicated, sysroot-prefixed, system-path-filtered cflags/libs
// token lists a compiler or linker invocation expects.
package flags

import (
	"strings"

	"github.com/matijaskala/pkgconfig-openbsd/internal/walk"
)

// Request selects which subset of cflags/libs tokens to keep.
type Request struct {
	CflagsI     bool // include -I tokens
	CflagsOther bool // include non -I cflags tokens
	LibsL       bool // include -L tokens
	Libsl       bool // include -l tokens
	LibsOther   bool // include non -L/-l libs tokens

	Static            bool
	Sysroot           string
	SystemIncludes    []string
	AllowSystemCflags bool
	AllowSystemLibs   bool
}

// Cflags projects walk order into a compiler flag list.
func Cflags(nodes []walk.Node, req Request) []string {
	var raw []string
	for _, n := range nodes {
		toks, ok := n.PC.ExpandedTokens("Cflags", n.Overrides)
		if !ok {
			continue
		}
		for _, tok := range toks {
			if !req.AllowSystemCflags && isSystemInclude(tok, req.SystemIncludes) {
				continue
			}
			raw = append(raw, prefixSysroot(tok, req.Sysroot, "-I"))
		}
	}
	raw = dedupForward(raw)

	var out []string
	for _, tok := range raw {
		isInclude := strings.HasPrefix(tok, "-I")
		switch {
		case isInclude && req.CflagsI:
			out = append(out, tok)
		case !isInclude && req.CflagsOther:
			out = append(out, tok)
		}
	}
	return out
}

// isSystemInclude reports whether tok is "-I<path>" for a path in the
// system-include list, so it can be dropped unless explicitly allowed.
func isSystemInclude(tok string, systemIncludes []string) bool {
	if !strings.HasPrefix(tok, "-I") {
		return false
	}
	path := tok[2:]
	for _, sys := range systemIncludes {
		if path == sys {
			return true
		}
	}
	return false
}

// Libs projects walk order into a linker flag list. nodes must already
// be in the order chosen by walk.DedupOrder (shared mode) or
// walk.ReverseOrder (static mode); Libs does not re-order. In static
// mode, each package's own Libs.private tokens follow its Libs
// immediately, before the next package's Libs are considered.
func Libs(nodes []walk.Node, req Request) []string {
	var raw []string
	for _, n := range nodes {
		toks, ok := n.PC.ExpandedTokens("Libs", n.Overrides)
		if ok {
			raw = append(raw, toks...)
		}
		if req.Static {
			if priv, ok := n.PC.ExpandedTokens("Libs.private", n.Overrides); ok {
				raw = append(raw, priv...)
			}
		}
	}

	var filtered []string
	for _, tok := range raw {
		if !req.AllowSystemLibs && isSystemLibdir(tok) {
			continue
		}
		filtered = append(filtered, tok)
	}

	var lAndOther []string
	var lOnly []string
	for _, tok := range filtered {
		if strings.HasPrefix(tok, "-l") {
			lOnly = append(lOnly, prefixSysroot(tok, req.Sysroot, "-l"))
		} else {
			lAndOther = append(lAndOther, prefixSysroot(tok, req.Sysroot, "-L"))
		}
	}
	lAndOther = dedupForward(lAndOther)
	lOnly = dedupFromRight(lOnly)

	var out []string
	for _, tok := range lAndOther {
		isL := strings.HasPrefix(tok, "-L")
		switch {
		case isL && req.LibsL:
			out = append(out, tok)
		case !isL && req.LibsOther:
			out = append(out, tok)
		}
	}
	if req.Libsl {
		out = append(out, lOnly...)
	}
	return out
}

// systemLibdirs matches the well-known system library directories
// filtered from -L output unless explicitly allowed. Plain "/usr/lib"
// is deliberately absent: the filter matches "/usr/lib32*" and
// "/usr/lib64*" but not "/usr/lib" itself, and that behavior is
// preserved even though it looks inconsistent.
var systemLibdirs = []string{"/usr/lib32", "/usr/lib64"}

func isSystemLibdir(tok string) bool {
	if !strings.HasPrefix(tok, "-L") {
		return false
	}
	path := tok[2:]
	for _, dir := range systemLibdirs {
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	return false
}

// dedupForward keeps the first occurrence of each token, in order.
func dedupForward(toks []string) []string {
	seen := make(map[string]bool, len(toks))
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// dedupFromRight keeps the last occurrence of each token, preserving
// its rightmost position: reverse, forward-dedup, reverse back.
func dedupFromRight(toks []string) []string {
	rev := make([]string, len(toks))
	for i, t := range toks {
		rev[len(toks)-1-i] = t
	}
	rev = dedupForward(rev)
	out := make([]string, len(rev))
	for i, t := range rev {
		out[len(rev)-1-i] = t
	}
	return out
}

// prefixSysroot inserts sysroot immediately after a two-character flag
// prefix ("-I", "-L", "-l"), when sysroot is non-empty and tok actually
// carries that prefix.
func prefixSysroot(tok, sysroot, prefix string) string {
	if sysroot == "" || !strings.HasPrefix(tok, prefix) {
		return tok
	}
	return prefix + sysroot + tok[len(prefix):]
}

// Package walk implements the dependency walker: recursive traversal
// of Requires/Requires.private, version-constraint checking, and
// cycle-safe accumulation.
package walk

import (
	"regexp"
	"strings"

	"github.com/matijaskala/pkgconfig-openbsd/internal/expand"
	"github.com/matijaskala/pkgconfig-openbsd/internal/pcerr"
	"github.com/matijaskala/pkgconfig-openbsd/internal/pcfile"
	"github.com/matijaskala/pkgconfig-openbsd/internal/version"
)

// Loader resolves a package name to its parsed metadata and reports
// whether it was already present in the cache before this call, the
// same contract internal/search.Index satisfies. A name already in the
// cache when Lookup is called does not need its Requires walked again;
// this is what breaks dependency cycles without a separate visited set.
type Loader interface {
	Loaded(name string) bool
	Lookup(name string, allowUninstalled bool) (*pcfile.PkgConfig, error)
}

// Overrider supplies the variable-override map for a given package
// name, the same contract internal/pcctx.Context satisfies.
type Overrider interface {
	OverridesFor(pkg string) expand.Overrides
}

// requirementRe splits one fused Requires-class token ("foo>=1.2",
// "bar") back into its name and optional constraint.
var requirementRe = regexp.MustCompile(`^([A-Za-z0-9_.+-]+)\s*(<=|>=|!=|<|>|=)?\s*(.*)$`)

// Requirement is one parsed dependency constraint.
type Requirement struct {
	Name string
	Op   version.Operator // "" if unconstrained
	Want string
}

// ParseRequirement splits a fused Requires-class token into a Requirement.
func ParseRequirement(tok string) Requirement {
	m := requirementRe.FindStringSubmatch(tok)
	if m == nil {
		return Requirement{Name: tok}
	}
	return Requirement{Name: m[1], Op: version.Operator(m[2]), Want: m[3]}
}

// Node is one package reached during the walk, paired with the
// metadata and override set used to expand it. The accumulation list
// may hold the same name more than once; see DedupOrder/ReverseOrder.
type Node struct {
	Name      string
	PC        *pcfile.PkgConfig
	Overrides expand.Overrides
}

// Mode selects which Requires-class properties a walk traverses.
type Mode struct {
	Private          bool // also traverse Requires.private (cflags, static libs, --exists, --print-requires-private)
	SkipRequires     bool // skip Requires entirely (--validate)
	AllowUninstalled bool // probe "-uninstalled" variants (PKG_CONFIG_DISABLE_UNINSTALLED negated)
}

// Walker performs the recursive Requires traversal. Its accumulation
// list grows by prepending each newly discovered package: leaf
// dependencies end up at the head once the walk completes, and
// DedupOrder/ReverseOrder reverse it into dependents-first order.
type Walker struct {
	loader    Loader
	overrides Overrider
	mode      Mode

	accum    []Node // built by prepending; index 0 is the most recently discovered package
	failures []error
}

// New creates a Walker.
func New(loader Loader, overrides Overrider, mode Mode) *Walker {
	return &Walker{loader: loader, overrides: overrides, mode: mode}
}

// Walk resolves top-level requested packages, in the order given.
// Failures (missing package, version mismatch) are recorded but do not
// abort the walk of sibling arguments; call Err after Walk to see
// whether anything failed.
func (w *Walker) Walk(reqs []Requirement) []Node {
	for _, r := range reqs {
		w.visit(r.Name, r.Op, r.Want)
	}
	return w.accum
}

// Err returns the first recorded failure, or nil if the walk succeeded
// in full.
func (w *Walker) Err() error {
	if len(w.failures) == 0 {
		return nil
	}
	return w.failures[0]
}

func (w *Walker) visit(name string, op version.Operator, want string) {
	alreadyCached := w.loader.Loaded(name)

	pc, err := w.loader.Lookup(name, w.mode.AllowUninstalled)
	if err != nil {
		w.failures = append(w.failures, err)
		return
	}

	w.accum = append([]Node{{Name: name, PC: pc, Overrides: w.overrides.OverridesFor(name)}}, w.accum...)

	if op != "" {
		if v := installedVersion(pc); !version.Satisfies(v, op, want) {
			w.failures = append(w.failures, pcerr.New(pcerr.VersionMismatch, name,
				"requires "+string(op)+" "+want+" but found "+v))
		}
	}

	if alreadyCached {
		return
	}

	overrides := w.overrides.OverridesFor(name)
	var props []string
	if !w.mode.SkipRequires {
		props = append(props, "Requires")
	}
	if w.mode.Private {
		props = append(props, "Requires.private")
	}
	for _, propName := range props {
		// ExpandedTokens re-splits a token whose expansion introduces new
		// separators (e.g. Requires: ${deps} with deps="b c"), so a
		// variable standing in for several packages still walks all of
		// them instead of swallowing the rest into one Requirement's Want.
		toks, ok := pc.ExpandedTokens(propName, overrides)
		if !ok {
			continue
		}
		for _, tok := range toks {
			req := ParseRequirement(tok)
			w.visit(req.Name, req.Op, req.Want)
		}
	}
}

// DedupOrder implements shared-link ordering: walk the accumulation
// list head to tail, keep the first occurrence of each name, then
// reverse. The result has dependents before their dependencies with
// duplicates removed.
func DedupOrder(nodes []Node) []Node {
	seen := make(map[string]bool, len(nodes))
	kept := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		kept = append(kept, n)
	}
	out := make([]Node, len(kept))
	for i, n := range kept {
		out[len(kept)-1-i] = n
	}
	return out
}

// ReverseOrder implements static-link ordering: reverse the raw
// accumulation list without deduplication, so a library appearing on
// more than one path keeps every occurrence.
func ReverseOrder(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}

// installedVersion returns a package's Version property, joined back
// into a single string in the rare case the raw splitter broke it into
// more than one token (Version values are not expected to contain
// unescaped whitespace, but nothing enforces that on write).
func installedVersion(pc *pcfile.PkgConfig) string {
	toks, _, ok := pc.RawTokens("Version")
	if !ok {
		return ""
	}
	return strings.Join(toks, " ")
}

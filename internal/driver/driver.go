// Package driver dispatches a parsed pkg-config invocation to the
// search, walk, and flags packages and writes the result.
package driver

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matijaskala/pkgconfig-openbsd/internal/cliargs"
	"github.com/matijaskala/pkgconfig-openbsd/internal/flags"
	"github.com/matijaskala/pkgconfig-openbsd/internal/pcctx"
	"github.com/matijaskala/pkgconfig-openbsd/internal/search"
	"github.com/matijaskala/pkgconfig-openbsd/internal/version"
	"github.com/matijaskala/pkgconfig-openbsd/internal/walk"
)

// Options mirrors the command-line surface, already parsed into a
// plain struct so Run stays independent of any particular
// flag-parsing library.
type Options struct {
	ListAll bool

	AtLeastPkgConfigVersion string

	PrintProvides        bool
	PrintRequires        bool
	PrintRequiresPrivate bool

	CflagsAll       bool
	CflagsOnlyI     bool
	CflagsOnlyOther bool

	LibsAll       bool
	LibsOnlyl     bool
	LibsOnlyL     bool
	LibsOnlyOther bool

	Exists   bool
	Validate bool
	Static   bool

	Uninstalled bool

	AtLeastVersion string
	ExactVersion   string
	MaxVersion     string

	ModVersion bool
	Variable   string

	PrintErrors   bool
	SilenceErrors bool
}

// wantsCflags reports whether any --cflags* flag was requested.
func (o Options) wantsCflags() bool {
	return o.CflagsAll || o.CflagsOnlyI || o.CflagsOnlyOther
}

// wantsLibs reports whether any --libs* flag was requested.
func (o Options) wantsLibs() bool {
	return o.LibsAll || o.LibsOnlyl || o.LibsOnlyL || o.LibsOnlyOther
}

// diagnosticsEnabled decides whether Run writes error/warning lines to
// stderr. Diagnostics are silenced by default and turned on
// automatically for the modes that scan or resolve a package
// (--cflags, --libs, --list-all, --validate); --print-errors and
// --silence-errors always override that default.
func diagnosticsEnabled(o Options) bool {
	if o.SilenceErrors {
		return false
	}
	if o.PrintErrors {
		return true
	}
	return o.wantsCflags() || o.wantsLibs() || o.ListAll || o.Validate
}

// report writes a diagnostic line to stderr when diag is true.
func report(stderr io.Writer, diag bool, args ...interface{}) {
	if diag {
		fmt.Fprintln(stderr, args...)
	}
}

// Run executes one invocation against reqs (already parsed by
// cliargs.Parse) and writes output to stdout; diagnostics go to
// stderr subject to diagnosticsEnabled. It returns the process exit
// code: 0 on success, 1 on any failure.
func Run(ctx *pcctx.Context, idx *search.Index, opts Options, reqs []walk.Requirement, stdout, stderr io.Writer) int {
	diag := diagnosticsEnabled(opts)

	if opts.AtLeastPkgConfigVersion != "" {
		if version.AtLeastMajorMinor(pcctx.ToolVersion, opts.AtLeastPkgConfigVersion) {
			return 0
		}
		return 1
	}

	if opts.ListAll {
		return runListAll(idx, stdout, stderr)
	}

	names := cliargs.Names(reqs)
	if len(names) == 0 {
		report(stderr, diag, "pkg-config: at least one package name is required")
		return 1
	}

	allowUninstalled := !ctx.UninstalledDisabled

	if opts.PrintProvides {
		return runPrintProvides(idx, names, allowUninstalled, diag, stdout, stderr)
	}

	if opts.ModVersion {
		return runModVersion(idx, names, allowUninstalled, diag, stdout, stderr)
	}

	wantsVariable := opts.Variable != ""
	combiningVariable := wantsVariable && (opts.wantsCflags() || opts.wantsLibs())

	if wantsVariable && !combiningVariable {
		return runVariable(ctx, idx, names, opts.Variable, allowUninstalled, diag, stdout, stderr)
	}

	reqs = applyGlobalConstraints(reqs, opts)

	private := opts.wantsCflags() || (opts.wantsLibs() && opts.Static) ||
		opts.PrintRequiresPrivate || opts.Exists

	w := walk.New(idx, ctx, walk.Mode{
		Private:          private && !opts.Validate,
		SkipRequires:     opts.Validate,
		AllowUninstalled: !ctx.UninstalledDisabled,
	})
	nodes := w.Walk(reqs)

	if opts.Uninstalled {
		if idx.UsedUninstalled() {
			return 0
		}
		return 1
	}

	if opts.PrintRequires || opts.PrintRequiresPrivate {
		return runPrintRequires(idx, names, opts.PrintRequiresPrivate, allowUninstalled, diag, stdout, stderr)
	}

	if err := w.Err(); err != nil {
		report(stderr, diag, "pkg-config:", err)
		return 1
	}

	if opts.Exists || opts.Validate {
		return 0
	}

	ordered := walk.DedupOrder(nodes)
	if opts.Static {
		ordered = walk.ReverseOrder(nodes)
	}

	var out []string
	if wantsVariable {
		for _, name := range names {
			pc, err := idx.Lookup(name, allowUninstalled)
			if err != nil {
				continue
			}
			if val, ok := pc.ExpandedVariable(opts.Variable, ctx.OverridesFor(name)); ok && val != "" {
				out = append(out, val)
			}
		}
	}
	if opts.wantsCflags() {
		req := flags.Request{
			CflagsI:           opts.CflagsAll || opts.CflagsOnlyI,
			CflagsOther:       opts.CflagsAll || opts.CflagsOnlyOther,
			Sysroot:           ctx.Sysroot,
			SystemIncludes:    ctx.SystemIncludes,
			AllowSystemCflags: ctx.AllowSystemCflags,
		}
		out = append(out, flags.Cflags(ordered, req)...)
	}
	if opts.wantsLibs() {
		req := flags.Request{
			LibsL:           opts.LibsAll || opts.LibsOnlyL,
			Libsl:           opts.LibsAll || opts.LibsOnlyl,
			LibsOther:       opts.LibsAll || opts.LibsOnlyOther,
			Static:          opts.Static,
			Sysroot:         ctx.Sysroot,
			AllowSystemLibs: ctx.AllowSystemLibs,
		}
		out = append(out, flags.Libs(ordered, req)...)
	}
	fmt.Fprintln(stdout, strings.Join(out, " "))
	return 0
}

// applyGlobalConstraints layers --atleast-version/--exact-version/
// --max-version onto every requirement that doesn't already carry its
// own inline constraint.
func applyGlobalConstraints(reqs []walk.Requirement, opts Options) []walk.Requirement {
	var op version.Operator
	var want string
	switch {
	case opts.AtLeastVersion != "":
		op, want = version.OpGE, opts.AtLeastVersion
	case opts.ExactVersion != "":
		op, want = version.OpEQ, opts.ExactVersion
	case opts.MaxVersion != "":
		op, want = version.OpLE, opts.MaxVersion
	default:
		return reqs
	}
	out := make([]walk.Requirement, len(reqs))
	for i, r := range reqs {
		if r.Op == "" {
			r.Op, r.Want = op, want
		}
		out[i] = r
	}
	return out
}

func runListAll(idx *search.Index, stdout, stderr io.Writer) int {
	names := idx.All()
	sort.Strings(names)
	for _, name := range names {
		pc, err := idx.Lookup(name, false)
		if err != nil {
			continue
		}
		desc, _, _ := pc.RawTokens("Description")
		fmt.Fprintf(stdout, "%-30s%s\n", name, strings.Join(desc, " "))
	}
	return 0
}

func runPrintProvides(idx *search.Index, names []string, allowUninstalled, diag bool, stdout, stderr io.Writer) int {
	rc := 0
	for _, name := range names {
		pc, err := idx.Lookup(name, allowUninstalled)
		if err != nil {
			report(stderr, diag, "pkg-config:", err)
			rc = 1
			continue
		}
		v, _, _ := pc.RawTokens("Version")
		fmt.Fprintf(stdout, "%s = %s\n", name, strings.Join(v, " "))
	}
	return rc
}

func runModVersion(idx *search.Index, names []string, allowUninstalled, diag bool, stdout, stderr io.Writer) int {
	rc := 0
	for _, name := range names {
		pc, err := idx.Lookup(name, allowUninstalled)
		if err != nil {
			report(stderr, diag, "pkg-config:", err)
			rc = 1
			continue
		}
		v, _, _ := pc.RawTokens("Version")
		fmt.Fprintln(stdout, strings.Join(v, " "))
	}
	return rc
}

func runVariable(ctx *pcctx.Context, idx *search.Index, names []string, varName string, allowUninstalled, diag bool, stdout, stderr io.Writer) int {
	rc := 0
	for _, name := range names {
		pc, err := idx.Lookup(name, allowUninstalled)
		if err != nil {
			report(stderr, diag, "pkg-config:", err)
			rc = 1
			continue
		}
		val, _ := pc.ExpandedVariable(varName, ctx.OverridesFor(name))
		fmt.Fprintln(stdout, val)
	}
	return rc
}

func runPrintRequires(idx *search.Index, names []string, private, allowUninstalled, diag bool, stdout, stderr io.Writer) int {
	rc := 0
	propName := "Requires"
	if private {
		propName = "Requires.private"
	}
	for _, name := range names {
		pc, err := idx.Lookup(name, allowUninstalled)
		if err != nil {
			report(stderr, diag, "pkg-config:", err)
			rc = 1
			continue
		}
		toks, _, ok := pc.RawTokens(propName)
		if !ok {
			continue
		}
		for _, tok := range toks {
			req := walk.ParseRequirement(tok)
			if req.Op == "" {
				fmt.Fprintln(stdout, req.Name)
			} else {
				fmt.Fprintf(stdout, "%s %s %s\n", req.Name, req.Op, req.Want)
			}
		}
	}
	return rc
}

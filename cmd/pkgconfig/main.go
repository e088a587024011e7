// Command pkgconfig is a drop-in replacement for the pkg-config
// metadata-query tool: it locates .pc files on a search path, resolves
// their transitive Requires, and prints compiler/linker flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matijaskala/pkgconfig-openbsd/internal/cliargs"
	"github.com/matijaskala/pkgconfig-openbsd/internal/driver"
	"github.com/matijaskala/pkgconfig-openbsd/internal/pcctx"
	"github.com/matijaskala/pkgconfig-openbsd/internal/search"
)

var opts driver.Options

var (
	flagDebug          bool
	flagStatic         bool
	flagDefineVariable []string
	flagVersion        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pkg-config [flags] PACKAGE...",
		Short: "Query installed library metadata for compiler and linker flags",
		Long:  "pkg-config locates package metadata files, resolves their dependencies, and prints the resulting compile and link flags.",
		RunE:  run,
	}

	f := rootCmd.Flags()
	f.BoolVar(&flagDebug, "debug", false, "enable verbose tracing to standard error")
	f.BoolVar(&flagVersion, "version", false, "print tool version and exit")
	f.BoolVar(&opts.ListAll, "list-all", false, "enumerate all discoverable packages")
	f.String("atleast-pkgconfig-version", "", "exit 0 iff tool version is at least V")
	f.BoolVar(&opts.PrintProvides, "print-provides", false, "print NAME = VERSION for each package")
	f.BoolVar(&opts.PrintRequires, "print-requires", false, "print direct dependency names")
	f.BoolVar(&opts.PrintRequiresPrivate, "print-requires-private", false, "print direct Requires.private dependency names")
	f.BoolVar(&opts.CflagsAll, "cflags", false, "output all preprocessor flags")
	f.BoolVar(&opts.CflagsOnlyI, "cflags-only-I", false, "output only -I flags")
	f.BoolVar(&opts.CflagsOnlyOther, "cflags-only-other", false, "output cflags not covered by --cflags-only-I")
	f.BoolVar(&opts.LibsAll, "libs", false, "output all linker flags")
	f.BoolVar(&opts.LibsOnlyl, "libs-only-l", false, "output only -l flags")
	f.BoolVar(&opts.LibsOnlyL, "libs-only-L", false, "output only -L flags")
	f.BoolVar(&opts.LibsOnlyOther, "libs-only-other", false, "output libs not covered by -L/-l")
	f.BoolVar(&opts.Exists, "exists", false, "exit 0 iff all packages resolve and constraints hold")
	f.BoolVar(&opts.Validate, "validate", false, "like --exists but skip Requires traversal")
	f.BoolVar(&flagStatic, "static", false, "enable static-link ordering and include Libs.private")
	f.BoolVar(&opts.Uninstalled, "uninstalled", false, "exit 0 iff the walk used an -uninstalled variant")
	f.StringVar(&opts.AtLeastVersion, "atleast-version", "", "apply >= V to all positional packages")
	f.StringVar(&opts.ExactVersion, "exact-version", "", "apply = V to all positional packages")
	f.StringVar(&opts.MaxVersion, "max-version", "", "apply <= V to all positional packages")
	f.BoolVar(&opts.ModVersion, "modversion", false, "print the Version property of each package")
	f.StringVar(&opts.Variable, "variable", "", "print expanded value of variable NAME")
	f.StringArrayVar(&flagDefineVariable, "define-variable", nil, "inject NAME=VALUE into the expander")
	f.Bool("errors-to-stdout", false, "redirect diagnostics to standard output")
	f.BoolVar(&opts.PrintErrors, "print-errors", false, "force diagnostics on")
	f.BoolVar(&opts.SilenceErrors, "silence-errors", false, "force diagnostics off")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagVersion {
		fmt.Println(pcctx.ToolVersion)
		return nil
	}

	atLeast, _ := cmd.Flags().GetString("atleast-pkgconfig-version")
	opts.AtLeastPkgConfigVersion = atLeast
	opts.Static = flagStatic

	ctx := pcctx.New(os.Environ(), flagDefineVariable, flagStatic, flagDebug)

	errorsToStdout, _ := cmd.Flags().GetBool("errors-to-stdout")
	stdout := os.Stdout
	diagOut := os.Stderr
	if errorsToStdout {
		diagOut = os.Stdout
	}

	idx := search.New(ctx.SearchPath, ctx.Logger)
	idx.Seed("pkg-config", ctx.SelfPackage())

	reqs := cliargs.Parse(args)
	rc := driver.Run(ctx, idx, opts, reqs, stdout, diagOut)
	if rc != 0 {
		os.Exit(rc)
	}
	return nil
}

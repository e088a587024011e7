package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matijaskala/pkgconfig-openbsd/internal/cliargs"
	"github.com/matijaskala/pkgconfig-openbsd/internal/pcctx"
	"github.com/matijaskala/pkgconfig-openbsd/internal/search"
)

func setup(t *testing.T, files map[string]string) (*pcctx.Context, *search.Index) {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	ctx := pcctx.New([]string{"PKG_CONFIG_LIBDIR=" + dir}, nil, false, false)
	idx := search.New(ctx.SearchPath, ctx.Logger)
	return ctx, idx
}

func run(t *testing.T, ctx *pcctx.Context, idx *search.Index, opts Options, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	reqs := cliargs.Parse(args)
	rc := Run(ctx, idx, opts, reqs, &stdout, &stderr)
	return stdout.String(), stderr.String(), rc
}

const fooPC = "prefix=/opt/foo\nincludedir=${prefix}/include\nlibdir=${prefix}/lib\n\nName: foo\nDescription: Foo library\nVersion: 1.2.3\nCflags: -I${includedir}\nLibs: -L${libdir} -lfoo\n"
const barPC = "Name: bar\nDescription: Bar library\nVersion: 2.0\nRequires: foo >= 1.0\nCflags: -DBAR\nLibs: -lbar\n"

func TestRunModVersion(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	out, _, rc := run(t, ctx, idx, Options{ModVersion: true}, "foo")
	if rc != 0 || out != "1.2.3\n" {
		t.Errorf("out=%q rc=%d", out, rc)
	}
}

func TestRunPrintProvides(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	out, _, rc := run(t, ctx, idx, Options{PrintProvides: true}, "foo")
	if rc != 0 || out != "foo = 1.2.3\n" {
		t.Errorf("out=%q rc=%d", out, rc)
	}
}

func TestRunVariable(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	out, _, rc := run(t, ctx, idx, Options{Variable: "includedir"}, "foo")
	if rc != 0 || out != "/opt/foo/include\n" {
		t.Errorf("out=%q rc=%d", out, rc)
	}
}

func TestRunCflags(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	out, _, rc := run(t, ctx, idx, Options{CflagsAll: true}, "foo")
	if rc != 0 || strings.TrimSpace(out) != "-I/opt/foo/include" {
		t.Errorf("out=%q rc=%d", out, rc)
	}
}

func TestRunLibsWithDependency(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC, "bar.pc": barPC})
	out, _, rc := run(t, ctx, idx, Options{LibsAll: true}, "bar")
	if rc != 0 {
		t.Fatalf("rc=%d stderr", rc)
	}
	got := strings.TrimSpace(out)
	if !strings.Contains(got, "-L/opt/foo/lib") || !strings.Contains(got, "-lbar") || !strings.Contains(got, "-lfoo") {
		t.Errorf("out=%q", got)
	}
}

func TestRunExistsSuccess(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	_, _, rc := run(t, ctx, idx, Options{Exists: true}, "foo", ">=", "1.0")
	if rc != 0 {
		t.Errorf("rc=%d, want 0", rc)
	}
}

func TestRunExistsVersionMismatch(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	_, _, rc := run(t, ctx, idx, Options{Exists: true}, "foo", ">=", "9.0")
	if rc != 1 {
		t.Errorf("rc=%d, want 1", rc)
	}
}

func TestRunMissingPackage(t *testing.T) {
	ctx, idx := setup(t, map[string]string{})
	// --exists is not one of the modes that auto-enables diagnostics, so
	// the failure is silent unless --print-errors is also given.
	_, stderr, rc := run(t, ctx, idx, Options{Exists: true}, "nope")
	if rc != 1 || stderr != "" {
		t.Errorf("rc=%d stderr=%q, want rc=1 and no diagnostic", rc, stderr)
	}

	_, stderr, rc = run(t, ctx, idx, Options{Exists: true, PrintErrors: true}, "nope")
	if rc != 1 || stderr == "" {
		t.Errorf("rc=%d stderr=%q, want rc=1 and a diagnostic with --print-errors", rc, stderr)
	}
}

func TestRunCflagsMissingPackageReportsError(t *testing.T) {
	ctx, idx := setup(t, map[string]string{})
	// --cflags auto-enables diagnostics.
	_, stderr, rc := run(t, ctx, idx, Options{CflagsAll: true}, "nope")
	if rc != 1 || stderr == "" {
		t.Errorf("rc=%d stderr=%q, want rc=1 and a diagnostic", rc, stderr)
	}
}

func TestRunSilenceErrorsOverridesAutoEnable(t *testing.T) {
	ctx, idx := setup(t, map[string]string{})
	_, stderr, rc := run(t, ctx, idx, Options{CflagsAll: true, SilenceErrors: true}, "nope")
	if rc != 1 || stderr != "" {
		t.Errorf("rc=%d stderr=%q, want rc=1 and no diagnostic", rc, stderr)
	}
}

func TestRunPrintRequires(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC, "bar.pc": barPC})
	out, _, rc := run(t, ctx, idx, Options{PrintRequires: true}, "bar")
	if rc != 0 || strings.TrimSpace(out) != "foo >= 1.0" {
		t.Errorf("out=%q rc=%d", out, rc)
	}
}

func TestRunListAll(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC, "bar.pc": barPC})
	out, _, rc := run(t, ctx, idx, Options{ListAll: true})
	if rc != 0 || !strings.Contains(out, "foo") || !strings.Contains(out, "bar") {
		t.Errorf("out=%q rc=%d", out, rc)
	}
}

func TestRunAtLeastPkgConfigVersion(t *testing.T) {
	ctx, idx := setup(t, map[string]string{})
	_, _, rc := run(t, ctx, idx, Options{AtLeastPkgConfigVersion: "0.29"})
	if rc != 0 {
		t.Errorf("rc=%d, want 0", rc)
	}
	_, _, rc = run(t, ctx, idx, Options{AtLeastPkgConfigVersion: "99.0"})
	if rc != 1 {
		t.Errorf("rc=%d, want 1", rc)
	}
}

func TestRunCflagsOrdersDependentBeforeDependency(t *testing.T) {
	// bar Requires foo; the accumulation list is built by prepending, so
	// the raw walk order is [foo, bar]. --cflags must still print bar's
	// own flags before foo's, matching --libs' DedupOrder projection.
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC, "bar.pc": barPC})
	out, _, rc := run(t, ctx, idx, Options{CflagsAll: true}, "bar")
	if rc != 0 {
		t.Fatalf("rc=%d", rc)
	}
	got := strings.TrimSpace(out)
	if strings.Index(got, "-DBAR") > strings.Index(got, "-I/opt/foo/include") {
		t.Errorf("Cflags() = %q, want bar's flags before foo's", got)
	}
}

func TestRunVariableCombinedWithCflags(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	out, _, rc := run(t, ctx, idx, Options{Variable: "includedir", CflagsAll: true}, "foo")
	if rc != 0 {
		t.Fatalf("rc=%d", rc)
	}
	got := strings.TrimSpace(out)
	if got != "/opt/foo/include -I/opt/foo/include" {
		t.Errorf("out=%q, want variable value followed by flags", got)
	}
}

func TestRunGlobalAtLeastVersionConstraint(t *testing.T) {
	ctx, idx := setup(t, map[string]string{"foo.pc": fooPC})
	_, _, rc := run(t, ctx, idx, Options{Exists: true, AtLeastVersion: "2.0"}, "foo")
	if rc != 1 {
		t.Errorf("rc=%d, want 1 (foo is only 1.2.3)", rc)
	}
}

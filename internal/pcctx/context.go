// Package pcctx assembles the process-wide, read-only context a
// pkg-config invocation runs under: the resolved search path, sysroot,
// system-include list, variable overrides, mode flags, and the
// synthetic self-package entry.
package pcctx

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/matijaskala/pkgconfig-openbsd/internal/expand"
	"github.com/matijaskala/pkgconfig-openbsd/internal/pcfile"
)

// ToolVersion is this implementation's own reported version, used for
// --version and --atleast-pkgconfig-version and seeded into the
// synthetic "pkg-config" self-package.
const ToolVersion = "0.29.2"

var defaultLibdir = []string{
	"/usr/lib/pkgconfig",
	"/usr/share/pkgconfig",
	"/usr/local/lib/pkgconfig",
	"/usr/local/share/pkgconfig",
}

// Context holds everything downstream packages need and nothing they
// should mutate; build one with New and pass it by value or pointer
// through the call graph explicitly. No shared mutable state, no
// package-global logger.
type Context struct {
	SearchPath   []string
	Sysroot      string
	SystemIncludes []string
	Overrides    expand.Overrides // from --define-variable, merged with per-package env overrides at lookup time
	PackageEnvOverrides map[string]expand.Overrides // PKG_CONFIG_<PKG>_<suffix> per package name

	Static               bool
	UninstalledDisabled   bool
	AllowSystemCflags     bool
	AllowSystemLibs       bool

	Logger hclog.Logger
}

// New builds a Context from the process environment and CLI-derived
// inputs. defineVariable is the accumulated --define-variable=NAME=VALUE
// list in command-line order.
func New(environ []string, defineVariable []string, static, debug bool) *Context {
	env := parseEnv(environ)

	ctx := &Context{
		SearchPath:          buildSearchPath(env),
		Sysroot:             env["PKG_CONFIG_SYSROOT_DIR"],
		SystemIncludes:      buildSystemIncludes(env),
		Overrides:           parseDefineVariables(defineVariable),
		PackageEnvOverrides: parsePackageEnvOverrides(env),
		Static:              static,
		UninstalledDisabled: truthy(env["PKG_CONFIG_DISABLE_UNINSTALLED"]),
		AllowSystemCflags:   truthy(env["PKG_CONFIG_ALLOW_SYSTEM_CFLAGS"]),
		AllowSystemLibs:     truthy(env["PKG_CONFIG_ALLOW_SYSTEM_LIBS"]),
		Logger:              newLogger(debug, env["PKG_CONFIG_LOG"]),
	}
	if v := env["PKG_CONFIG_TOP_BUILD_DIR"]; v != "" {
		ctx.Overrides["pc_top_builddir"] = v
	}
	return ctx
}

func newLogger(debug bool, logPath string) hclog.Logger {
	level := hclog.Warn
	if debug {
		level = hclog.Trace
	}
	var output = os.Stderr
	opts := &hclog.LoggerOptions{
		Name:   "pkg-config",
		Level:  level,
		Output: output,
	}
	logger := hclog.New(opts)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.Error("could not open PKG_CONFIG_LOG file, aborting", "path", logPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if _, err := f.WriteString(strings.Join(os.Args, " ") + "\n"); err != nil {
			logger.Error("could not write to PKG_CONFIG_LOG file, aborting", "path", logPath, "error", err)
			os.Exit(1)
		}
	}
	return logger
}

func parseEnv(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}

func buildSearchPath(env map[string]string) []string {
	var path []string
	if v := env["PKG_CONFIG_PATH"]; v != "" {
		path = append(path, strings.Split(v, ":")...)
	}
	if v, ok := env["PKG_CONFIG_LIBDIR"]; ok {
		if v != "" {
			path = append(path, strings.Split(v, ":")...)
		}
		return path
	}
	return append(path, defaultLibdir...)
}

func buildSystemIncludes(env map[string]string) []string {
	includes := []string{"/usr/include"}
	for _, name := range []string{"PKG_CONFIG_SYSTEM_INCLUDE_PATH", "C_PATH", "C_INCLUDE_PATH", "CPLUS_INCLUDE_PATH"} {
		if v := env[name]; v != "" {
			includes = append(includes, strings.Split(v, ":")...)
		}
	}
	return includes
}

func parseDefineVariables(defs []string) expand.Overrides {
	o := make(expand.Overrides)
	for _, def := range defs {
		if i := strings.IndexByte(def, '='); i >= 0 {
			o[def[:i]] = def[i+1:]
		}
	}
	return o
}

// parsePackageEnvOverrides scans the environment for
// PKG_CONFIG_<UPPERCASED_PACKAGE>_<SUFFIX> variables and groups them by
// package name with the suffix lowercased into the override variable
// name.
func parsePackageEnvOverrides(env map[string]string) map[string]expand.Overrides {
	out := make(map[string]expand.Overrides)
	for k, v := range env {
		if !strings.HasPrefix(k, "PKG_CONFIG_") {
			continue
		}
		rest := strings.TrimPrefix(k, "PKG_CONFIG_")
		if isReservedPkgConfigVar(rest) {
			continue
		}
		idx := strings.LastIndexByte(rest, '_')
		if idx <= 0 || idx == len(rest)-1 {
			continue
		}
		pkgUpper := rest[:idx]
		suffix := strings.ToLower(rest[idx+1:])
		pkg := strings.ToLower(pkgUpper)
		if out[pkg] == nil {
			out[pkg] = make(expand.Overrides)
		}
		out[pkg][suffix] = v
	}
	return out
}

var reservedPkgConfigVars = map[string]bool{
	"PATH": true, "LIBDIR": true, "SYSROOT_DIR": true, "TOP_BUILD_DIR": true,
	"DISABLE_UNINSTALLED": true, "ALLOW_SYSTEM_CFLAGS": true, "ALLOW_SYSTEM_LIBS": true,
	"SYSTEM_INCLUDE_PATH": true, "DEBUG_SPEW": true, "LOG": true,
}

func isReservedPkgConfigVar(rest string) bool {
	return reservedPkgConfigVars[rest]
}

func truthy(v string) bool {
	return v != "" && v != "0" && strings.ToLower(v) != "false"
}

// OverridesFor returns the effective override map for a package lookup:
// the global --define-variable overrides plus that package's
// PKG_CONFIG_<PKG>_<suffix> environment overrides layered on top (the
// package-specific ones win on conflict, since they are more specific).
func (c *Context) OverridesFor(pkg string) expand.Overrides {
	merged := make(expand.Overrides, len(c.Overrides))
	for k, v := range c.Overrides {
		merged[k] = v
	}
	for k, v := range c.PackageEnvOverrides[strings.ToLower(pkg)] {
		merged[k] = v
	}
	return merged
}

// SelfPackage builds the synthetic "pkg-config" metadata entry so other
// packages' Requires lines may reference this tool by name. Its
// pc_path variable is the colon-joined search path this Context
// actually resolved, not a hardcoded default.
func (c *Context) SelfPackage() *pcfile.PkgConfig {
	pc := pcfile.New()
	pc.AddVariable("pc_path", strings.Join(c.SearchPath, ":"))
	pc.AddProperty("Name", []string{"pkg-config"})
	pc.AddProperty("Description", []string{"Metadata", "query", "tool"})
	pc.AddProperty("Version", []string{ToolVersion})
	pc.AddProperty("URL", []string{"https://www.freedesktop.org/wiki/Software/pkg-config/"})
	return pc
}

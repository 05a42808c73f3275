// Package config loads compiler options from a tszconfig.yaml file, in the
// teacher's style of grouping constants and exposing package-level mode
// globals (Version, IsTestMode, IsLSPMode) rather than threading a config
// object everywhere.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is stamped at build time via -ldflags, the same pattern the
// teacher's cmd driver uses for its own build-time BackendType var.
var Version = "dev"

// IsTestMode is set by the CLI entry point when TSZ_TEST_MODE=1. Nothing in
// this tree sets IsLSPMode, and no package reads either flag.
var (
	IsTestMode bool
	IsLSPMode  bool
)

const (
	SourceFileExt = ".tsz"

	DefaultConfigFileName = "tszconfig.yaml"
)

// Order matters: TrimSourceExt/HasSourceExt check these in order, so the
// more specific ".d.tsz" must precede the ".tsz" suffix it also matches.
var SourceFileExtensions = []string{".d.tsz", ".tszx", ".tsz"}

// CompilerOptions is the subset of `tsconfig.json`-equivalent knobs that
// tszconfig.yaml accepts; emitter-only options are not represented. Of these
// fields, only MaxFuel is read outside this package (cmd/tszc uses it as the
// run's fuel budget).
type CompilerOptions struct {
	Strict               bool     `yaml:"strict"`
	StrictNullChecks     bool     `yaml:"strictNullChecks"`
	NoImplicitAny        bool     `yaml:"noImplicitAny"`
	Target               string   `yaml:"target"`
	ModuleKind           string   `yaml:"module"`
	BaseURL              string   `yaml:"baseUrl"`
	Paths                map[string][]string `yaml:"paths"`
	TypeRoots            []string `yaml:"typeRoots"`
	MaxFuel              int      `yaml:"maxFuel"`
	MaxWidenSteps        int      `yaml:"maxWidenSteps"`
	IncrementalCachePath string   `yaml:"incrementalCachePath"`
}

// DefaultOptions mirrors a fresh `tsc --init`-equivalent default set,
// scaled to what this checker core actually enforces.
func DefaultOptions() CompilerOptions {
	return CompilerOptions{
		StrictNullChecks: true,
		Target:           "es2022",
		ModuleKind:       "esnext",
		MaxFuel:          1_000_000,
		MaxWidenSteps:    3,
	}
}

// Load reads and parses a tszconfig.yaml at path, applying DefaultOptions
// for anything the file does not set. Unknown keys never fail the load;
// when strict is true they are reported back as warnings for the caller to
// print, using yaml.v3's KnownFields(true) decoding to detect them. strict
// is wired to the CLI's -strict-config flag, reusing the teacher's pattern
// of a strict-mode toggle living behind an explicit flag rather than always
// on.
func Load(path string, strict bool) (CompilerOptions, []string, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var wrapper struct {
		CompilerOptions CompilerOptions `yaml:"compilerOptions"`
	}
	wrapper.CompilerOptions = opts
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return opts, nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if !strict {
		return wrapper.CompilerOptions, nil, nil
	}

	var strictWrapper struct {
		CompilerOptions CompilerOptions `yaml:"compilerOptions"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var warnings []string
	if err := dec.Decode(&strictWrapper); err != nil {
		// KnownFields violations are a parse warning, not a fatal error
		// (spec); the loosely-decoded wrapper.CompilerOptions above is
		// still returned and used.
		warnings = append(warnings, fmt.Sprintf("config: %s: %v", path, err))
	}
	return wrapper.CompilerOptions, warnings, nil
}

// TrimSourceExt strips a recognized source extension from name, if present.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether name ends in a recognized source extension.
func HasSourceExt(name string) bool {
	return TrimSourceExt(name) != name
}

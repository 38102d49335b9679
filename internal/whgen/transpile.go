package whgen

import (
	"errors"
	"strings"
)

// Options configure a single Transpile call.
type Options struct {
	// Package is the Kotlin package of the output.
	Package string
	// Name is the declared name of the unit, e.g. the composable name.
	Name string
	Kind UnitKind
	// Registry is the build-wide registry. Stores declared in the unit
	// itself are merged over it. May be nil.
	Registry *Registry
	// Policy overrides the promotion thresholds; the zero value means
	// DefaultPolicy.
	Policy Policy
	// Filename is used in error positions.
	Filename string
	Optimize OptimizeLevel
}

// Transpile parses source and generates Kotlin for it. Errors are *Error
// values carrying the line and column of the failure.
func Transpile(source string, opts Options) (Result, error) {
	file, err := NewParser(opts.Filename, source).ParseFile()
	if err != nil {
		return nil, WithSourceLine(err, source)
	}

	policy := opts.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	local := BuildRegistry([]Unit{{
		Name:    opts.Name,
		Package: opts.Package,
		Kind:    opts.Kind,
		File:    file,
	}}, policy)

	gen := NewGenerator(Config{Package: opts.Package, Name: opts.Name, Kind: opts.Kind, Optimize: opts.Optimize}, Merge(local, opts.Registry))
	result, err := gen.Generate(file)
	if err != nil {
		return nil, WithSourceLine(err, source)
	}
	return result, nil
}

// WithSourceLine fills in the offending source line of a positioned error
// so that Render can show it.
func WithSourceLine(err error, source string) error {
	var e *Error
	if !errors.As(err, &e) || e.SourceLine != "" || !e.Pos.IsValid() {
		return err
	}
	lines := strings.Split(source, "\n")
	if e.Pos.Line <= len(lines) {
		e.SourceLine = strings.TrimRight(lines[e.Pos.Line-1], "\r")
	}
	return e
}

// Package build compiles a whole Whitehall project: it discovers every
// source unit, parses them in parallel, builds the store registry once, and
// then generates and writes each unit in parallel against that registry.
package build

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/grindlemire/whitehall/internal/config"
	"github.com/grindlemire/whitehall/internal/logger"
	"github.com/grindlemire/whitehall/internal/project"
	"github.com/grindlemire/whitehall/internal/whgen"
)

// Options control a build.
type Options struct {
	// Root is the project root holding src/.
	Root string
	// OutputDir receives the generated tree. A relative path is taken
	// relative to Root.
	OutputDir string
	// Package is the base Kotlin package.
	Package string
	Policy  whgen.Policy
	// Optimize is applied to every unit.
	Optimize whgen.OptimizeLevel
	// CheckOnly parses and generates without writing anything.
	CheckOnly bool
}

// OptionsFromConfig derives build options from a loaded project file.
func OptionsFromConfig(root string, cfg *config.Config) Options {
	return Options{
		Root:      root,
		OutputDir: cfg.Build.OutputDir,
		Package:   cfg.Android.Package,
		Policy:    cfg.Policy(),
		Optimize:  cfg.OptimizeLevel(),
	}
}

func (o Options) outputDir() string {
	if filepath.IsAbs(o.OutputDir) {
		return o.OutputDir
	}
	return filepath.Join(o.Root, o.OutputDir)
}

// UnitResult is the outcome of one successfully generated unit.
type UnitResult struct {
	Source    project.SourceFile
	Artifacts []whgen.Artifact
	// Written lists the output paths, empty for check-only builds.
	Written []string
	// Skipped is set for units that are parsed but produce no output.
	Skipped bool
	// Collections lists the static collection loops found in the unit.
	Collections []whgen.CollectionHint
}

// Result summarizes a build. Units holds only the units that succeeded,
// in source order.
type Result struct {
	Units    []UnitResult
	Registry *whgen.Registry
	Manifest string
}

// parsed is a unit after the parse phase.
type parsed struct {
	src    project.SourceFile
	source string
	file   *whgen.File
	err    error
}

// Run builds the project. Per-unit failures do not stop the build; they
// are returned together as an *Error after every other unit is done. The
// returned Result is valid even when err is an *Error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := project.Discover(opts.Root, opts.Package)
	if err != nil {
		return nil, err
	}
	logger.Logger.Infow("discovered source units", "count", len(files), "root", opts.Root)

	units := parseAll(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures []*UnitError
	var good []whgen.Unit
	for _, u := range units {
		if u.err != nil {
			failures = append(failures, &UnitError{Path: u.src.Rel, Err: u.err})
			continue
		}
		good = append(good, u.src.ToUnit(u.file))
	}

	policy := opts.Policy
	if policy == (whgen.Policy{}) {
		policy = whgen.DefaultPolicy()
	}
	registry := whgen.BuildRegistry(good, policy)
	logger.Logger.Infow("built store registry", "stores", registry.Len())

	results, genFailures := generateAll(ctx, units, registry, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	failures = append(failures, genFailures...)

	res := &Result{Units: results, Registry: registry}
	if !opts.CheckOnly {
		path, err := writeManifest(opts, res)
		if err != nil {
			return res, err
		}
		res.Manifest = path
	}

	if len(failures) > 0 {
		for _, f := range failures {
			logger.Logger.Errorw("unit failed", "unit", f.Path, "error", f.Err)
		}
		return res, &Error{Units: failures}
	}
	logger.Logger.Infow("build finished", "units", len(results), "output", opts.outputDir())
	return res, nil
}

// parseAll reads and parses every file concurrently. Results keep the
// order of files.
func parseAll(ctx context.Context, files []project.SourceFile) []parsed {
	out := make([]parsed, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out[i] = parseOne(f)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func parseOne(f project.SourceFile) parsed {
	p := parsed{src: f}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		p.err = errors.Wrapf(err, "read %s", f.Path)
		return p
	}
	p.source = string(data)
	file, err := whgen.NewParser(f.Rel, p.source).ParseFile()
	if err != nil {
		p.err = whgen.WithSourceLine(err, p.source)
		return p
	}
	p.file = file
	return p
}

// generateAll generates every parsed unit concurrently against the frozen
// registry and writes the artifacts.
func generateAll(ctx context.Context, units []parsed, registry *whgen.Registry, opts Options) ([]UnitResult, []*UnitError) {
	results := make([]UnitResult, len(units))
	errs := make([]error, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, u := range units {
		if u.err != nil {
			continue
		}
		i, u := i, u
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i], errs[i] = generateOne(u, registry, opts)
			return nil
		})
	}
	_ = g.Wait()

	var ok []UnitResult
	var failures []*UnitError
	for i, u := range units {
		switch {
		case u.err != nil:
		case errs[i] != nil:
			failures = append(failures, &UnitError{Path: u.src.Rel, Err: errs[i]})
		default:
			ok = append(ok, results[i])
		}
	}
	return ok, failures
}

func generateOne(u parsed, registry *whgen.Registry, opts Options) (UnitResult, error) {
	res := UnitResult{Source: u.src}
	// main.wh is the app shell; it is checked but has no composable of its
	// own to emit.
	if u.src.Kind == whgen.KindMain {
		res.Skipped = true
		logger.Logger.Debugw("skipping app shell", "unit", u.src.Rel)
		return res, nil
	}

	res.Collections = whgen.StaticCollections(u.file)
	for _, h := range res.Collections {
		logger.Logger.Debugw("static collection", "unit", u.src.Rel, "collection", h.Collection,
			"confidence", h.Confidence, "line", h.Position.Line, "recycler", h.Planned() && opts.Optimize == whgen.OptimizeAggressive)
	}

	gen := whgen.NewGenerator(whgen.Config{
		Package:  u.src.Package,
		Name:     u.src.Name,
		Kind:     u.src.Kind,
		Optimize: opts.Optimize,
	}, registry)
	out, err := gen.Generate(u.file)
	if err != nil {
		return res, whgen.WithSourceLine(err, u.source)
	}
	res.Artifacts = out.Files()
	logger.Logger.Debugw("generated unit", "unit", u.src.Rel, "artifacts", len(res.Artifacts))

	if opts.CheckOnly {
		return res, nil
	}
	for _, a := range res.Artifacts {
		path := u.src.OutputPath(opts.outputDir(), a.Suffix)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return res, errors.Wrapf(err, "create %s", filepath.Dir(path))
		}
		if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
			return res, errors.Wrapf(err, "write %s", path)
		}
		res.Written = append(res.Written, path)
		logger.Logger.Debugw("wrote file", "path", path)
	}
	return res, nil
}

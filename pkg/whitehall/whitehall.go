// Package whitehall compiles Whitehall (.wh) source into Jetpack Compose
// Kotlin.
//
// A single unit is compiled with Transpile:
//
//	res, err := whitehall.Transpile(src, "com.example.app.components", "Counter")
//	if err != nil {
//	    var werr *whitehall.Error
//	    if errors.As(err, &werr) {
//	        fmt.Print(werr.Render())
//	    }
//	    return err
//	}
//	for _, f := range res.Files() {
//	    os.WriteFile("Counter"+f.Suffix+".kt", []byte(f.Content), 0o644)
//	}
//
// Compiling a whole project goes through BuildRegistry first, so that
// units can see the stores declared by other units.
package whitehall

import (
	"github.com/grindlemire/whitehall/internal/whgen"
)

type (
	// Result is the output of one unit: Single or Multiple.
	Result = whgen.Result
	// Single is a one-file result.
	Single = whgen.Single
	// Multiple is a result of several sibling files, primary first.
	Multiple = whgen.Multiple
	// Artifact is one generated file, named by the unit name plus Suffix.
	Artifact = whgen.Artifact

	Error    = whgen.Error
	Position = whgen.Position

	Registry    = whgen.Registry
	StoreInfo   = whgen.StoreInfo
	StoreSource = whgen.StoreSource
	Policy      = whgen.Policy
	Unit        = whgen.Unit
	UnitKind    = whgen.UnitKind
	File        = whgen.File

	OptimizeLevel  = whgen.OptimizeLevel
	CollectionHint = whgen.CollectionHint
)

const (
	KindComponent = whgen.KindComponent
	KindScreen    = whgen.KindScreen
	KindLayout    = whgen.KindLayout
	KindMain      = whgen.KindMain

	ExplicitStore     = whgen.ExplicitStore
	PromotedComponent = whgen.PromotedComponent
	Singleton         = whgen.Singleton

	OptimizeDefault    = whgen.OptimizeDefault
	OptimizeAggressive = whgen.OptimizeAggressive
)

// Option configures a Transpile call.
type Option func(*whgen.Options)

// WithKind sets the role of the unit. The default is KindComponent.
func WithKind(kind UnitKind) Option {
	return func(o *whgen.Options) { o.Kind = kind }
}

// WithRegistry supplies the build-wide registry, usually from
// BuildRegistry. Stores declared in the unit itself take precedence.
func WithRegistry(r *Registry) Option {
	return func(o *whgen.Options) { o.Registry = r }
}

// WithPolicy overrides the component promotion thresholds.
func WithPolicy(p Policy) Option {
	return func(o *whgen.Options) { o.Policy = p }
}

// WithFilename sets the file name reported in error positions.
func WithFilename(name string) Option {
	return func(o *whgen.Options) { o.Filename = name }
}

// WithOptimize sets the optimization level. OptimizeAggressive renders
// loops over static collections through a RecyclerView.
func WithOptimize(level OptimizeLevel) Option {
	return func(o *whgen.Options) { o.Optimize = level }
}

// Transpile compiles source, declared as name in the Kotlin package pkg.
// Errors are *Error values with a line, column and optional hint.
func Transpile(source, pkg, name string, opts ...Option) (Result, error) {
	o := whgen.Options{Package: pkg, Name: name}
	for _, opt := range opts {
		opt(&o)
	}
	return whgen.Transpile(source, o)
}

// Parse parses source without generating anything.
func Parse(filename, source string) (*File, error) {
	return whgen.NewParser(filename, source).ParseFile()
}

// BuildRegistry analyzes all units of a project and returns the registry
// used to generate each of them.
func BuildRegistry(units []Unit, policy Policy) *Registry {
	return whgen.BuildRegistry(units, policy)
}

// StaticCollections reports the loops in file that iterate a collection
// which never changes.
func StaticCollections(file *File) []CollectionHint {
	return whgen.StaticCollections(file)
}

// DefaultPolicy returns the standard promotion thresholds.
func DefaultPolicy() Policy {
	return whgen.DefaultPolicy()
}

// NewRegistry builds a registry from explicit entries.
func NewRegistry(entries ...StoreInfo) *Registry {
	return whgen.NewRegistry(entries...)
}

// IsMultiple reports whether r holds more than one file.
func IsMultiple(r Result) bool {
	return whgen.IsMultiple(r)
}

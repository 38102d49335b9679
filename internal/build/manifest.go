package build

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/grindlemire/whitehall/internal/whgen"
)

// ManifestName is the file written at the root of the output directory.
const ManifestName = "whitehall-manifest.yaml"

// Manifest records what a build produced.
type Manifest struct {
	Package string          `yaml:"package"`
	Units   []ManifestUnit  `yaml:"units"`
	Stores  []ManifestStore `yaml:"stores,omitempty"`
}

type ManifestUnit struct {
	Source  string   `yaml:"source"`
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Package string   `yaml:"package"`
	Outputs []string `yaml:"outputs,omitempty"`

	StaticCollections []ManifestCollection `yaml:"static_collections,omitempty"`
}

// ManifestCollection is a loop over a collection that never changes.
type ManifestCollection struct {
	Collection string `yaml:"collection"`
	Line       int    `yaml:"line"`
	Confidence int    `yaml:"confidence"`
	Recycler   bool   `yaml:"recycler,omitempty"`
}

type ManifestStore struct {
	Name        string   `yaml:"name"`
	Source      string   `yaml:"source"`
	Package     string   `yaml:"package,omitempty"`
	Injected    bool     `yaml:"injected,omitempty"`
	RouteParams []string `yaml:"route_params,omitempty"`
}

// NewManifest describes res. Output paths are relative to outDir.
func NewManifest(pkg, outDir string, optimize whgen.OptimizeLevel, res *Result) Manifest {
	m := Manifest{Package: pkg}
	for _, u := range res.Units {
		mu := ManifestUnit{
			Source:  u.Source.Rel,
			Name:    u.Source.Name,
			Kind:    u.Source.Kind.String(),
			Package: u.Source.Package,
		}
		for _, h := range u.Collections {
			mu.StaticCollections = append(mu.StaticCollections, ManifestCollection{
				Collection: h.Collection,
				Line:       h.Position.Line,
				Confidence: h.Confidence,
				Recycler:   h.Planned() && optimize == whgen.OptimizeAggressive,
			})
		}
		for _, p := range u.Written {
			if rel, err := filepath.Rel(outDir, p); err == nil {
				p = filepath.ToSlash(rel)
			}
			mu.Outputs = append(mu.Outputs, p)
		}
		m.Units = append(m.Units, mu)
	}
	for _, info := range res.Registry.Entries() {
		m.Stores = append(m.Stores, ManifestStore{
			Name:        info.ClassName,
			Source:      info.Source.String(),
			Package:     info.Package,
			Injected:    info.NeedsInjection,
			RouteParams: info.RouteParams,
		})
	}
	return m
}

// ReadManifest loads a manifest written by an earlier build.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, errors.Wrapf(err, "read %s", path)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, errors.Wrapf(err, "decode %s", path)
	}
	return m, nil
}

func writeManifest(opts Options, res *Result) (string, error) {
	out := opts.outputDir()
	data, err := yaml.Marshal(NewManifest(opts.Package, out, opts.Optimize, res))
	if err != nil {
		return "", errors.Wrap(err, "encode manifest")
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", out)
	}
	path := filepath.Join(out, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// Package project finds the source units of a Whitehall project and decides
// the role, Kotlin package and declared name of each.
package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/grindlemire/whitehall/internal/whgen"
)

// SourceExt is the extension of Whitehall source files.
const SourceExt = ".wh"

// SourceFile is one discovered .wh file.
type SourceFile struct {
	// Path is the file path as found on disk.
	Path string
	// Rel is the path relative to the source root, using forward slashes.
	Rel     string
	Kind    whgen.UnitKind
	Name    string
	Package string
}

// directory conventions under src/, checked in order.
var conventions = []struct {
	dir    string
	kind   whgen.UnitKind
	suffix string
}{
	{"components", whgen.KindComponent, "components"},
	{"screens", whgen.KindScreen, "screens"},
	{"layouts", whgen.KindLayout, "layouts"},
	{"stores", whgen.KindComponent, "stores"},
}

// Discover walks root/src and classifies every .wh file under it against
// the base package pkg. Files are returned sorted by relative path.
func Discover(root, pkg string) ([]SourceFile, error) {
	src := filepath.Join(root, "src")
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return nil, errors.WithHint(
			errors.Newf("source directory %s not found", src),
			"run the command from a Whitehall project root")
	}

	var files []SourceFile
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != SourceExt {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		files = append(files, Classify(p, filepath.ToSlash(rel), pkg))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", src)
	}
	if len(files) == 0 {
		return nil, errors.Newf("no %s files found in %s", SourceExt, src)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Classify decides the kind, package and name of a file from its path
// relative to src/. Nested directories do not extend the package:
// components/ui/Button.wh is still in <pkg>.components.
func Classify(path, rel, pkg string) SourceFile {
	stem := strings.TrimSuffix(filepath.Base(rel), SourceExt)
	f := SourceFile{
		Path:    path,
		Rel:     rel,
		Kind:    whgen.KindComponent,
		Name:    PascalCase(stem),
		Package: pkg,
	}

	if rel == "main"+SourceExt {
		f.Kind = whgen.KindMain
		return f
	}
	first, _, nested := strings.Cut(rel, "/")
	if !nested {
		return f
	}
	for _, c := range conventions {
		if first == c.dir {
			f.Kind = c.kind
			f.Package = pkg + "." + c.suffix
			break
		}
	}
	if f.Kind == whgen.KindScreen && strings.HasSuffix(f.Name, "Layout") {
		f.Kind = whgen.KindLayout
	}
	return f
}

// PascalCase turns a file stem into a declared name: user-card and
// user_card become UserCard, and an existing UserCard is kept.
func PascalCase(stem string) string {
	return whgen.ToPascalCase(stem)
}

// ToUnit pairs a discovered file with its parsed AST.
func (f SourceFile) ToUnit(file *whgen.File) whgen.Unit {
	return whgen.Unit{Name: f.Name, Package: f.Package, Kind: f.Kind, File: file}
}

// OutputPath returns where an artifact of f is written:
// <out>/app/src/main/kotlin/<package path>/<Name><suffix>.kt.
func (f SourceFile) OutputPath(out, suffix string) string {
	pkgPath := strings.ReplaceAll(f.Package, ".", string(filepath.Separator))
	return filepath.Join(out, "app", "src", "main", "kotlin", pkgPath, f.Name+suffix+".kt")
}

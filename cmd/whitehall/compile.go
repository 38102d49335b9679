package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/grindlemire/whitehall/internal/logger"
	"github.com/grindlemire/whitehall/internal/project"
	"github.com/grindlemire/whitehall/pkg/whitehall"
)

type compileOptions struct {
	pkg      string
	name     string
	kind     string
	outDir   string
	optimize bool
}

func newCompileCommand() *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "compile <file.wh>",
		Short: "Transpile a single .wh file",
		Long: `Transpiles one source file without a project. The primary file is
printed to stdout unless --out is given, in which case every generated
file is written to that directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportError(runCompile(args[0], opts))
		},
	}

	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "com.example.app.components", "Kotlin package of the output")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Component name (defaults to the file name)")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "component", "Unit kind: component, screen or layout")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Write files to this directory instead of stdout")
	cmd.Flags().BoolVar(&opts.optimize, "optimize", false, "Render loops over static collections with a RecyclerView")

	return cmd
}

func parseKind(s string) (whitehall.UnitKind, error) {
	switch strings.ToLower(s) {
	case "component":
		return whitehall.KindComponent, nil
	case "screen":
		return whitehall.KindScreen, nil
	case "layout":
		return whitehall.KindLayout, nil
	}
	return 0, errors.WithHint(errors.Newf("unknown kind %q", s), "use component, screen or layout")
}

func runCompile(path string, opts compileOptions) error {
	kind, err := parseKind(opts.kind)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading file")
	}
	name := opts.name
	if name == "" {
		name = project.PascalCase(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	logger.Logger.Debugw("compiling", "file", path, "name", name, "package", opts.pkg, "kind", kind)
	level := whitehall.OptimizeDefault
	if opts.optimize {
		level = whitehall.OptimizeAggressive
	}
	res, err := whitehall.Transpile(string(source), opts.pkg, name,
		whitehall.WithKind(kind),
		whitehall.WithFilename(filepath.Base(path)),
		whitehall.WithOptimize(level),
	)
	if err != nil {
		return err
	}

	if opts.outDir == "" {
		fmt.Print(res.PrimaryContent())
		return nil
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", opts.outDir)
	}
	for _, f := range res.Files() {
		out := filepath.Join(opts.outDir, name+f.Suffix+".kt")
		if err := os.WriteFile(out, []byte(f.Content), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", out)
		}
		fmt.Println(successStyle.Render("wrote"), out)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grindlemire/whitehall/internal/build"
	"github.com/grindlemire/whitehall/internal/config"
)

type projectOptions struct {
	dir    string
	output string
}

func (o *projectOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "dir", "d", ".", "Project root containing whitehall.toml")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output directory (overrides build.output_dir)")
}

// buildOptions loads the project file and derives the build options.
func (o *projectOptions) buildOptions() (build.Options, error) {
	cfg, err := config.Load(o.dir)
	if err != nil {
		return build.Options{}, err
	}
	opts := build.OptionsFromConfig(o.dir, cfg)
	if o.output != "" {
		opts.OutputDir = o.output
	}
	return opts, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newBuildCommand() *cobra.Command {
	var opts projectOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the project",
		Long:  `Transpiles every .wh file under src/ and writes the Kotlin sources and a build manifest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return reportError(runBuild(ctx, opts, false))
		},
	}
	opts.register(cmd)
	return cmd
}

func newCheckCommand() *cobra.Command {
	var opts projectOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the project without writing output",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return reportError(runBuild(ctx, opts, true))
		},
	}
	opts.register(cmd)
	return cmd
}

func runBuild(ctx context.Context, po projectOptions, checkOnly bool) error {
	opts, err := po.buildOptions()
	if err != nil {
		return err
	}
	opts.CheckOnly = checkOnly

	start := time.Now()
	res, err := build.Run(ctx, opts)
	if err != nil {
		return err
	}

	files := 0
	for _, u := range res.Units {
		files += len(u.Artifacts)
	}
	elapsed := time.Since(start).Round(time.Millisecond)
	if checkOnly {
		fmt.Println(successStyle.Render("ok"), fmt.Sprintf("%d unit(s) checked", len(res.Units)), mutedStyle.Render(elapsed.String()))
		return nil
	}
	fmt.Println(successStyle.Render("built"), fmt.Sprintf("%d unit(s), %d file(s)", len(res.Units), files), mutedStyle.Render(elapsed.String()))
	fmt.Println(mutedStyle.Render("manifest: " + res.Manifest))
	return nil
}

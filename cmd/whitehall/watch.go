package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindlemire/whitehall/internal/build"
	"github.com/grindlemire/whitehall/internal/logger"
	"github.com/grindlemire/whitehall/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var opts projectOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the project whenever a source file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runWatch(ctx, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func runWatch(ctx context.Context, po projectOptions) error {
	bopts, err := po.buildOptions()
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context, changed []string) error {
		logger.Logger.Debugw("sources changed", "files", changed)
		res, err := build.Run(ctx, bopts)
		if err != nil {
			_ = reportError(err)
			return err
		}
		fmt.Println(successStyle.Render("rebuilt"), fmt.Sprintf("%d unit(s)", len(res.Units)))
		return nil
	}

	// Initial build; failures are reported and watching continues.
	if err := rebuild(ctx, nil); err != nil && ctx.Err() != nil {
		return nil
	}

	w, err := watch.New(po.dir, rebuild)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, mutedStyle.Render("watching "+po.dir+" for changes, press Ctrl+C to stop"))
	return w.Run(ctx)
}

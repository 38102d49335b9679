// Package main provides the whitehall command line tool.
//
// Usage:
//
//	whitehall compile file.wh     Transpile a single file to Kotlin
//	whitehall build               Build the project in the current directory
//	whitehall check               Check the project without writing output
//	whitehall watch               Rebuild on every source change
//	whitehall version             Print version information
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindlemire/whitehall/internal/logger"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var verbose, jsonLogs bool

	rootCmd := &cobra.Command{
		Use:   "whitehall",
		Short: "Whitehall - compile .wh markup to Jetpack Compose",
		Long: `Whitehall compiles a Kotlin superset with an XML-like markup layer
into Jetpack Compose source for Android projects.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Initialize(verbose, jsonLogs)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(newCompileCommand())
	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("whitehall version %s (commit: %s)\n", version, commit)
		},
	}
}

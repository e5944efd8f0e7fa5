package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/variscan/internal/version"
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "variscan",
		Short: "Variability model builder for Java product variants",
		Long: `variscan compares a base variant of a Java code base with a derived
variant and consolidates their differences into a variability model.

Features:
  • Structural matching of packages, classifiers, members and statements
  • Package and classifier name normalization
  • Cleanup of derived copies of base classifiers
  • Variation points with one variant per side`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

// setupLogging routes structured logs to stderr, keeping stdout for reports
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

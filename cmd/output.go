package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	headerColor  = color.New(color.Bold)
)

// statusf prints a progress or summary line to stderr unless --quiet is set.
func statusf(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

// verbosef prints only with --verbose.
func verbosef(cmd *cobra.Command, format string, args ...any) {
	if !verbose || quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	warnColor.Fprintf(cmd.ErrOrStderr(), "⚠️  "+format, args...)
}

func successf(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	successColor.Fprintf(cmd.ErrOrStderr(), "✅ "+format, args...)
}

// printWarnings prints every warning followed by a one-line summary.
func printWarnings[W fmt.Stringer](cmd *cobra.Command, warnings []W) {
	if len(warnings) == 0 {
		return
	}

	for _, w := range warnings {
		warnf(cmd, "%s\n", w)
	}
	warnf(cmd, "%d warning(s)\n", len(warnings))
}

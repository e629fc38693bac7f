package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/btraven00/linkmine/internal/aggregate"
	"github.com/btraven00/linkmine/internal/collection"
)

var (
	combineOutput string
	combineIndent int
)

// combineCmd represents the combine command
var combineCmd = &cobra.Command{
	Use:   "combine <input.json>... -o <output.json>",
	Short: "Combine several JSON files into one",
	Long: `Combine several JSON files into a single document.

Inputs are merged left to right: lists are concatenated (duplicates are
kept), objects are merged key by key, recursively. Where two inputs hold
values of different shapes at the same position the later one wins and a
warning is printed.

Every input must exist and be valid JSON; otherwise nothing is written.

Examples:
  linkmine combine web.json internet.json -o combined.json
  linkmine combine results/*.json -o all.json --indent 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVarP(&combineOutput, "output", "o", "", "output JSON file (required)")
	combineCmd.Flags().IntVar(&combineIndent, "indent", collection.DefaultIndent, "JSON indentation (0 for compact output)")
	_ = combineCmd.MarkFlagRequired("output")
}

func runCombine(cmd *cobra.Command, args []string) error {
	statusf(cmd, "🔗 Combining %d JSON files...\n", len(args))

	values, err := collection.LoadAll(cmd.Context(), args, runtime.NumCPU())
	if err != nil {
		return err
	}

	combined, warnings := aggregate.Combine(values)
	printWarnings(cmd, warnings)

	if err := collection.Save(combined, combineOutput, combineIndent); err != nil {
		return err
	}

	successf(cmd, "Combined %d files into %s, written to %s\n", len(args), describe(combined), combineOutput)

	return nil
}

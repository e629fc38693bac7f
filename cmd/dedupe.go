package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/query"
)

var (
	dedupeOutput string
	dedupeIndent int
)

// dedupeCmd represents the dedupe command
var dedupeCmd = &cobra.Command{
	Use:   "dedupe <input.json> -o <output.json>",
	Short: "Remove repeated (url, file) records from a collection",
	Long: `Remove records whose url and file both repeat an earlier record.

The first occurrence is kept and the order of the collection is preserved.
Entries that are not URL records are kept unchanged. extract and combine
never deduplicate; this command is the explicit step for it.

Examples:
  linkmine dedupe combined.json -o unique.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	dedupeCmd.Flags().StringVarP(&dedupeOutput, "output", "o", "", "output JSON file (required)")
	dedupeCmd.Flags().IntVar(&dedupeIndent, "indent", collection.DefaultIndent, "JSON indentation (0 for compact output)")
	_ = dedupeCmd.MarkFlagRequired("output")
}

func runDedupe(cmd *cobra.Command, args []string) error {
	v, err := collection.Load(args[0])
	if err != nil {
		return err
	}

	kept, removed, err := query.Dedupe(v)
	if err != nil {
		return fmt.Errorf("cannot deduplicate %s: %w", args[0], err)
	}

	if err := collection.Save(collection.NewSequence(kept...), dedupeOutput, dedupeIndent); err != nil {
		return err
	}

	successf(cmd, "Removed %d duplicate records, %d entries written to %s\n", removed, len(kept), dedupeOutput)

	return nil
}

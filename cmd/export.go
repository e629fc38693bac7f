package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/export"
)

var exportFormat string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <input.json> <output>",
	Short: "Export a URL collection as CSV, SQLite or MessagePack",
	Long: `Export the URL records of a collection to another format.

Supported formats:
  csv      url,file rows with a header line
  sqlite   a records(id, url, file) table indexed on url
  msgpack  an array of {url, file} maps

Without --format the format is chosen from the output extension
(.csv, .db/.sqlite, .msgpack/.mpk). Entries that are not URL records are
skipped with a warning.

Examples:
  linkmine export combined.json urls.csv
  linkmine export combined.json urls.db
  linkmine export combined.json urls.bin --format msgpack`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "", "export format (csv, sqlite, msgpack)")
}

func runExport(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	format, err := exportFormatFor(output)
	if err != nil {
		return err
	}

	v, err := collection.Load(input)
	if err != nil {
		return err
	}

	records, skipped := collection.RecordsOf(v)
	if skipped > 0 {
		warnf(cmd, "Skipped %d entries without a url\n", skipped)
	}

	if err := export.Write(cmd.Context(), format, records, output); err != nil {
		return fmt.Errorf("failed to export %s: %w", output, err)
	}

	successf(cmd, "Exported %d records to %s (%s)\n", len(records), output, format)

	return nil
}

func exportFormatFor(output string) (export.Format, error) {
	if exportFormat != "" {
		return export.ParseFormat(exportFormat)
	}

	switch strings.ToLower(filepath.Ext(output)) {
	case ".csv":
		return export.CSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return export.SQLite, nil
	case ".msgpack", ".mpk":
		return export.MsgPack, nil
	default:
		return "", fmt.Errorf("cannot infer export format from %q, use --format", output)
	}
}

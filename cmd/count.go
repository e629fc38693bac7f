package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/report"
)

var (
	countDetailed bool
	countFormat   string
	countSample   int
	countTop      int
)

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count <input.json>...",
	Short: "Count and describe the items of JSON files",
	Long: `Count the items of one or more JSON files and describe their structure.

For a list the count is the number of items, for an object the number of
keys. With --detailed the element type, the field names seen in the first
--sample items and whether the file looks like a URL collection are shown
too. With several files a total is printed.

Missing files are reported and skipped; invalid JSON is an error.

Examples:
  linkmine count combined.json
  linkmine count data.json --detailed --top 10
  linkmine count *.json --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)

	countCmd.Flags().BoolVarP(&countDetailed, "detailed", "d", false, "show detailed information about the JSON structure")
	countCmd.Flags().StringVar(&countFormat, "format", "human", "output format (human, json, yaml)")
	countCmd.Flags().IntVar(&countSample, "sample", report.DefaultSampleSize, "number of leading items inspected for field names")
	countCmd.Flags().IntVar(&countTop, "top", 0, "show the N most frequent domains")
}

// countOutput is the machine-readable result of the count command.
type countOutput struct {
	Files   []report.Report `json:"files" yaml:"files"`
	Missing []string        `json:"missing,omitempty" yaml:"missing,omitempty"`
	Total   int             `json:"total" yaml:"total"`
}

func runCount(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(countFormat)
	if format != "human" && format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported output format: %s", countFormat)
	}

	result := countOutput{Files: []report.Report{}}

	for _, path := range args {
		v, err := collection.Load(path)
		if err != nil {
			if errors.Is(err, collection.ErrInputNotFound) {
				warnf(cmd, "File does not exist: %s\n", path)
				result.Missing = append(result.Missing, path)
				continue
			}
			return err
		}

		r := report.Summarize(v, report.Options{SampleSize: countSample, Domains: countTop})
		r.Source = path
		result.Files = append(result.Files, r)
	}

	result.Total = report.Total(result.Files)

	if len(result.Files) == 0 {
		return fmt.Errorf("%w: none of the %d input files exist", collection.ErrInputNotFound, len(args))
	}

	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return collection.NewJSONEncoder(out, collection.DefaultIndent).Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return printCountHuman(out, result, len(args) > 1)
	}
}

func printCountHuman(out io.Writer, result countOutput, multiple bool) error {
	for _, r := range result.Files {
		if multiple {
			headerColor.Fprintf(out, "\n%s:\n", r.Source)
		}

		fmt.Fprintf(out, "  Count: %d %s\n", r.Count, r.Description)

		if countDetailed {
			fmt.Fprintf(out, "  Type: %s\n", r.Shape)
			if r.ElementType != "" {
				fmt.Fprintf(out, "  Item type: %s\n", r.ElementType)
			}
			if len(r.Fields) > 0 {
				fmt.Fprintf(out, "  Sample keys: %s\n", strings.Join(r.Fields, ", "))
			}
			if len(r.Keys) > 0 {
				fmt.Fprintf(out, "  Keys: %s\n", strings.Join(r.Keys, ", "))
			}
			if r.LooksLikeURLCollection {
				fmt.Fprintln(out, "  Contains URL entries: Yes")
			} else if len(r.NonURLEntries) > 0 {
				fmt.Fprintf(out, "  Entries without a url (of the first %d): %d\n", r.SampleSize, len(r.NonURLEntries))
			}
		}

		if len(r.TopDomains) > 0 {
			fmt.Fprintln(out, "  🌐 Top Domains:")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "   DOMAIN\tCOUNT")
			fmt.Fprintln(w, "   ------\t-----")
			for _, d := range r.TopDomains {
				fmt.Fprintf(w, "   %s\t%d\n", d.Domain, d.Count)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}

	if multiple {
		fmt.Fprintf(out, "\nTotal items across all files: %d\n", result.Total)
	}

	return nil
}

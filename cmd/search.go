package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/query"
)

var (
	searchCaseSensitive bool
	searchFiles         bool
	searchNoShowFiles   bool
	searchRegex         bool
	searchOutput        string
	searchIndent        int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <input.json> <term>",
	Short: "Find records whose URL contains a term",
	Long: `Search a URL collection for records whose url contains a term.

Matching is case-insensitive unless --case-sensitive is given. With
--search-files the file field is searched too. An empty term matches every
record. Results keep the order of the collection.

Examples:
  linkmine search combined.json doi
  linkmine search urls.json Cambridge --case-sensitive
  linkmine search urls.json spain --search-files -o results.json
  linkmine search urls.json '^https://(zenodo|figshare)\.' --regex`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "perform a case-sensitive search")
	searchCmd.Flags().BoolVar(&searchFiles, "search-files", false, "also search the file field")
	searchCmd.Flags().BoolVar(&searchNoShowFiles, "no-show-files", false, "do not display file paths")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "treat the term as a regular expression")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "save matching records to a JSON file")
	searchCmd.Flags().IntVar(&searchIndent, "indent", collection.DefaultIndent, "JSON indentation when saving (0 for compact output)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	input, term := args[0], args[1]

	v, err := collection.Load(input)
	if err != nil {
		return err
	}

	matches, err := query.Search(v, query.Options{
		Term:          term,
		CaseSensitive: searchCaseSensitive,
		SearchFiles:   searchFiles,
		Regex:         searchRegex,
	})
	if err != nil {
		return fmt.Errorf("search in %s failed: %w", input, err)
	}

	printMatches(cmd, matches, !searchNoShowFiles)

	if searchOutput != "" {
		if err := collection.Save(collection.NewSequence(matches...), searchOutput, searchIndent); err != nil {
			return err
		}
		successf(cmd, "Results saved to: %s\n", searchOutput)
	}

	return nil
}

func printMatches(cmd *cobra.Command, matches []collection.Value, showFiles bool) {
	out := cmd.OutOrStdout()

	if len(matches) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return
	}

	headerColor.Fprintf(out, "\nFound %d matching URL(s):\n\n", len(matches))
	fmt.Fprintln(out, strings.Repeat("-", 80))

	for i, m := range matches {
		url, ok := m.Get(collection.FieldURL)
		text := "N/A"
		if ok {
			text = scalarText(url)
		}
		fmt.Fprintf(out, "%d. URL: %s\n", i+1, text)

		if file, ok := m.Get(collection.FieldFile); ok && showFiles {
			fmt.Fprintf(out, "   File: %s\n", scalarText(file))
		}
		fmt.Fprintln(out)
	}
}

// scalarText renders a field value for display: strings as-is, anything else
// as JSON.
func scalarText(v collection.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return "?"
	}

	return string(data)
}

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/matcher"
)

var (
	patternsMode string
	patternsTest string
	patternsJSON bool
)

// patternsCmd represents the patterns command
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the URL patterns and try them on sample text",
	Long: `List the patterns used to recognize URLs in each matching mode.

Lenient mode applies the strict patterns first and then searches the
remaining text with its extra patterns, in the order shown. With --test the
given text is matched in both modes, which helps to see why a reference is
or is not picked up.

Examples:
  linkmine patterns
  linkmine patterns --mode lenient --json
  linkmine patterns --test "See doi.org/10.1/x (and https://a.org)."`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

func init() {
	rootCmd.AddCommand(patternsCmd)

	patternsCmd.Flags().StringVar(&patternsMode, "mode", "", "only show one mode (strict, lenient)")
	patternsCmd.Flags().StringVar(&patternsTest, "test", "", "match the given text in both modes")
	patternsCmd.Flags().BoolVar(&patternsJSON, "json", false, "output as JSON")
}

func runPatterns(cmd *cobra.Command, args []string) error {
	m := matcher.New()

	modes := []matcher.Mode{matcher.Strict, matcher.Lenient}
	if patternsMode != "" {
		mode, err := matcher.ParseMode(patternsMode)
		if err != nil {
			return err
		}
		modes = []matcher.Mode{mode}
	}

	if patternsTest != "" {
		return testPatterns(cmd, m, modes)
	}

	out := cmd.OutOrStdout()

	if patternsJSON {
		listing := make(map[string][]matcher.PatternInfo, len(modes))
		for _, mode := range modes {
			listing[mode.String()] = m.Patterns(mode)
		}
		return collection.NewJSONEncoder(out, collection.DefaultIndent).Encode(listing)
	}

	for _, mode := range modes {
		headerColor.Fprintf(out, "%s mode:\n", strings.ToUpper(mode.String()[:1])+mode.String()[1:])

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "   NAME\tDESCRIPTION\tEXAMPLES")
		fmt.Fprintln(w, "   ----\t-----------\t--------")
		for _, p := range m.Patterns(mode) {
			fmt.Fprintf(w, "   %s\t%s\t%s\n", p.Name, p.Description, strings.Join(p.Examples, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	return nil
}

func testPatterns(cmd *cobra.Command, m *matcher.Matcher, modes []matcher.Mode) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "=== Testing URL matching for: %q ===\n", patternsTest)

	for _, mode := range modes {
		urls := m.Match(patternsTest, mode)

		fmt.Fprintf(out, "\n%s: %d match(es)\n", mode, len(urls))
		if len(urls) == 0 {
			fmt.Fprintln(out, "❌ No URLs found")
			continue
		}
		for i, u := range urls {
			fmt.Fprintf(out, "  %d. %s\n", i+1, u)
		}
	}

	return nil
}

package cmd

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/matcher"
	"github.com/btraven00/linkmine/internal/report"
	"github.com/btraven00/linkmine/internal/scanner"
)

var (
	extractLenient   bool
	extractRecursive bool
	extractExt       string
	extractWorkers   int
	extractProgress  bool
	extractIndent    int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <input_dir> <output>",
	Short: "Extract URLs from a directory of text files",
	Long: `Extract URLs from every text file in a directory.

Strict mode (the default) only matches URLs starting with http://, https://
or www. Lenient mode also matches ftp:// URLs and bare domains such as
example.com, trading precision for recall.

If the output ends in .json, a collection with one {"url", "file"} record
per occurrence is written, ordered by file name and position. Any other
output receives a sorted list of the unique URLs, one per line.

Unreadable files are skipped with a warning and do not fail the run.

Examples:
  linkmine extract texts/ urls.json
  linkmine extract --lenient texts/ internet.json
  linkmine extract --recursive --ext .txt,.md corpus/ urls.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractLenient, "lenient", false, "also match ftp:// URLs and bare domains")
	extractCmd.Flags().BoolVar(&extractRecursive, "recursive", false, "descend into subdirectories")
	extractCmd.Flags().StringVar(&extractExt, "ext", ".txt", "comma-separated file extensions to scan")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", runtime.NumCPU(), "number of parallel workers for processing")
	extractCmd.Flags().BoolVar(&extractProgress, "progress", false, "show progress while scanning")
	extractCmd.Flags().IntVar(&extractIndent, "indent", collection.DefaultIndent, "JSON indentation (0 for compact output)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputDir, output := args[0], args[1]

	mode := matcher.Strict
	if extractLenient {
		mode = matcher.Lenient
	}

	options := scanner.Options{
		Mode:       mode,
		Recursive:  extractRecursive,
		Extensions: splitList(extractExt),
		Workers:    extractWorkers,
	}

	if extractProgress && !quiet {
		tracker := scanner.NewProgressTracker()
		options.Progress = func(update scanner.ProgressUpdate) {
			tracker.Update(update)
			tracker.PrintProgress(cmd.ErrOrStderr())
		}
	}

	statusf(cmd, "🔍 Scanning %s (%s mode)...\n", inputDir, mode)

	result, err := scanner.New(matcher.New(), options).Scan(cmd.Context(), inputDir)
	if err != nil {
		return err
	}

	if options.Progress != nil {
		statusf(cmd, "\n")
	}

	printWarnings(cmd, result.Warnings)

	if isJSONPath(output) {
		if err := collection.Save(result.Records, output, extractIndent); err != nil {
			return err
		}
		successf(cmd, "Extracted %d URL occurrences from %d files to %s\n",
			len(result.Records), result.FilesScanned-result.FilesSkipped, output)
	} else {
		urls := uniqueSorted(result.Records.URLs())
		if err := collection.SaveLines(urls, output); err != nil {
			return err
		}
		successf(cmd, "Extracted %d unique URLs from %d files to %s\n",
			len(urls), result.FilesScanned-result.FilesSkipped, output)
	}

	verbosef(cmd, "⏱️  Processing time: %v\n", result.ProcessTime)
	verbosef(cmd, "⚙️  Workers: %d, files processed: %d/%d\n",
		result.Pool.NumWorkers, result.Pool.CompletedTasks, result.Pool.TotalTasks)
	if verbose && len(result.Records) > 0 {
		domains := report.TopDomains(result.Records.Value(), 10)
		verbosef(cmd, "🌐 Top Domains:\n")
		for i, d := range domains {
			verbosef(cmd, "  %d. %s (%d)\n", i+1, d.Domain, d.Count)
		}
	}

	return nil
}

func isJSONPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)

	return out
}

func describe(v collection.Value) string {
	switch v.Kind() {
	case collection.Sequence:
		return fmt.Sprintf("a list with %d items", v.Len())
	case collection.Mapping:
		return fmt.Sprintf("a dict with %d keys", v.Len())
	default:
		return "a " + v.Kind().String()
	}
}

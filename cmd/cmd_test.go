package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/btraven00/linkmine/internal/collection"
)

// execute runs the root command with args and fresh flag values.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	viper.Reset()
	color.NoColor = true

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)

	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}

	return string(data)
}

func loadRecords(t *testing.T, path string) collection.Collection {
	t.Helper()

	v, err := collection.Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error: %v", path, err)
	}
	records, _ := collection.RecordsOf(v)

	return records
}

func corpus(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "texts", "b.txt"), "See https://example.com/page. Also www.b.org and doi.org/10.1/x")
	writeFile(t, filepath.Join(dir, "texts", "a.txt"), "Data at https://zenodo.org/record/1 and https://example.com/page")
	writeFile(t, filepath.Join(dir, "texts", "skip.md"), "https://ignored.org")

	return dir
}

func TestExtractJSON(t *testing.T) {
	dir := corpus(t)
	out := filepath.Join(dir, "out", "urls.json")

	_, stderr, err := execute(t, "extract", filepath.Join(dir, "texts"), out)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := collection.Collection{
		{URL: "https://zenodo.org/record/1", File: "a.txt"},
		{URL: "https://example.com/page", File: "a.txt"},
		{URL: "https://example.com/page", File: "b.txt"},
		{URL: "www.b.org", File: "b.txt"},
	}
	if got := loadRecords(t, out); !reflect.DeepEqual(got, want) {
		t.Errorf("records = %+v, want %+v", got, want)
	}
	if !strings.Contains(stderr, "Extracted 4 URL occurrences from 2 files") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExtractVerbose(t *testing.T) {
	dir := corpus(t)
	out := filepath.Join(dir, "urls.json")

	_, stderr, err := execute(t, "extract", "-v", "--workers", "4", filepath.Join(dir, "texts"), out)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	for _, want := range []string{"Workers: 2, files processed: 2/2", "Top Domains:", "example.com (2)"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestExtractLenientPlainText(t *testing.T) {
	dir := corpus(t)
	out := filepath.Join(dir, "urls.txt")

	if _, _, err := execute(t, "extract", "--lenient", "-q", filepath.Join(dir, "texts"), out); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := "doi.org/10.1/x\nhttps://example.com/page\nhttps://zenodo.org/record/1\nwww.b.org\n"
	if got := readFile(t, out); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	dir := corpus(t)
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	if _, _, err := execute(t, "extract", "--workers", "1", filepath.Join(dir, "texts"), first); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if _, _, err := execute(t, "extract", "--workers", "8", filepath.Join(dir, "texts"), second); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if readFile(t, first) != readFile(t, second) {
		t.Error("two scans of the same corpus differ")
	}
}

func TestExtractMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "urls.json")

	_, _, err := execute(t, "extract", filepath.Join(dir, "missing"), out)
	if !errors.Is(err, collection.ErrInputNotFound) {
		t.Fatalf("extract error = %v, want ErrInputNotFound", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output should be written when the input directory is missing")
	}
}

func TestExtractConfigFile(t *testing.T) {
	dir := corpus(t)
	cfg := filepath.Join(dir, "linkmine.yaml")
	writeFile(t, cfg, "indent: 0\next: [.md]\n")
	out := filepath.Join(dir, "urls.json")

	if _, _, err := execute(t, "extract", "--config", cfg, filepath.Join(dir, "texts"), out); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := `[{"url":"https://ignored.org","file":"skip.md"}]` + "\n"
	if got := readFile(t, out); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	// Command-line flags take precedence over the config file.
	if _, _, err := execute(t, "extract", "--config", cfg, "--indent", "2", "--ext", ".txt", filepath.Join(dir, "texts"), out); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got := readFile(t, out); !strings.HasPrefix(got, "[\n  {") || len(loadRecords(t, out)) != 4 {
		t.Errorf("flags did not override config: %q", got)
	}
}

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	out := filepath.Join(dir, "combined.json")
	writeFile(t, a, `[{"url":"https://a.org","file":"a.txt"},{"url":"https://a.org","file":"a.txt"}]`)
	writeFile(t, b, `[{"url":"https://b.org","file":"b.txt"}]`)

	_, stderr, err := execute(t, "combine", a, b, "-o", out)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}

	if got := loadRecords(t, out); len(got) != 3 || got[2].URL != "https://b.org" {
		t.Errorf("combined records = %+v", got)
	}
	if !strings.Contains(stderr, "a list with 3 items") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCombineShapeMismatchWarns(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	out := filepath.Join(dir, "combined.json")
	writeFile(t, a, `{"web":[1],"internet":[2]}`)
	writeFile(t, b, `{"web":{"x":1},"internet":[3]}`)

	_, stderr, err := execute(t, "combine", a, b, "-o", out)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}

	if got := readFile(t, out); got != "{\n  \"web\": {\n    \"x\": 1\n  },\n  \"internet\": [\n    2,\n    3\n  ]\n}\n" {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(stderr, "shape mismatch at $.web") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCombineFailsFast(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	out := filepath.Join(dir, "combined.json")
	writeFile(t, good, `[]`)
	writeFile(t, bad, `[{"url":`)

	_, _, err := execute(t, "combine", good, bad, "-o", out)
	if !errors.Is(err, collection.ErrMalformedInput) {
		t.Fatalf("combine error = %v, want ErrMalformedInput", err)
	}

	_, _, err = execute(t, "combine", good, filepath.Join(dir, "missing.json"), "-o", out)
	if !errors.Is(err, collection.ErrInputNotFound) {
		t.Fatalf("combine error = %v, want ErrInputNotFound", err)
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output should be written when an input fails")
	}
}

func TestCombineRequiresOutput(t *testing.T) {
	if _, _, err := execute(t, "combine", "a.json"); err == nil {
		t.Fatal("expected error without -o")
	}
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "urls.json")
	out := filepath.Join(dir, "results.json")
	writeFile(t, in, `[{"url":"https://doi.org/10.1/x","file":"a.txt"},{"url":"https://b.org","file":"spain.txt"}]`)

	stdout, _, err := execute(t, "search", in, "DOI", "-o", out)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(stdout, "Found 1 matching URL(s)") ||
		!strings.Contains(stdout, "1. URL: https://doi.org/10.1/x") ||
		!strings.Contains(stdout, "File: a.txt") {
		t.Errorf("stdout = %q", stdout)
	}
	if got := loadRecords(t, out); len(got) != 1 || got[0].URL != "https://doi.org/10.1/x" {
		t.Errorf("saved results = %+v", got)
	}

	stdout, _, err = execute(t, "search", in, "spain", "--search-files", "--no-show-files")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(stdout, "1. URL: https://b.org") || strings.Contains(stdout, "File:") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = execute(t, "search", in, "DOI", "--case-sensitive")
	if err != nil {
		t.Fatalf("search without matches should succeed: %v", err)
	}
	if !strings.Contains(stdout, "No matches found.") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestSearchRejectsMapping(t *testing.T) {
	in := filepath.Join(t.TempDir(), "map.json")
	writeFile(t, in, `{"web":[]}`)

	if _, _, err := execute(t, "search", in, "x"); err == nil {
		t.Fatal("expected error when searching a mapping")
	}
}

func TestCount(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.json")
	dict := filepath.Join(dir, "dict.json")
	writeFile(t, list, `[{"url":"https://doi.org/a","file":"y"},{"url":"https://doi.org/b","file":"z"}]`)
	writeFile(t, dict, `{"web":[],"internet":[]}`)

	stdout, _, err := execute(t, "count", list, "--detailed", "--top", "1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	for _, want := range []string{"Count: 2 list items", "Item type: mapping", "Sample keys: url, file", "Contains URL entries: Yes", "doi.org"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	stdout, stderr, err := execute(t, "count", list, dict, filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if !strings.Contains(stdout, "Count: 2 dictionary keys") || !strings.Contains(stdout, "Total items across all files: 4") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "File does not exist") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCountJSON(t *testing.T) {
	in := filepath.Join(t.TempDir(), "list.json")
	writeFile(t, in, `[{"url":"x","file":"y"}]`)

	stdout, _, err := execute(t, "count", in, "--format", "json")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}

	var got countOutput
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON output %q: %v", stdout, err)
	}
	if got.Total != 1 || len(got.Files) != 1 || !got.Files[0].LooksLikeURLCollection {
		t.Errorf("count output = %+v", got)
	}
}

func TestCountYAML(t *testing.T) {
	in := filepath.Join(t.TempDir(), "list.json")
	writeFile(t, in, `[{"url":"x","file":"y"}]`)

	stdout, _, err := execute(t, "count", in, "--format", "yaml")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if !strings.Contains(stdout, "looks_like_url_collection: true") || !strings.Contains(stdout, "total: 1") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCountErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{`)

	if _, _, err := execute(t, "count", bad); !errors.Is(err, collection.ErrMalformedInput) {
		t.Errorf("count error = %v, want ErrMalformedInput", err)
	}
	if _, _, err := execute(t, "count", filepath.Join(dir, "missing.json")); !errors.Is(err, collection.ErrInputNotFound) {
		t.Errorf("count error = %v, want ErrInputNotFound", err)
	}
	if _, _, err := execute(t, "count", bad, "--format", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDedupe(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "urls.json")
	out := filepath.Join(dir, "unique.json")
	writeFile(t, in, `[{"url":"https://a.org","file":"a"},{"url":"https://a.org","file":"a"},{"url":"https://a.org","file":"b"}]`)

	_, stderr, err := execute(t, "dedupe", in, "-o", out)
	if err != nil {
		t.Fatalf("dedupe failed: %v", err)
	}

	want := collection.Collection{{URL: "https://a.org", File: "a"}, {URL: "https://a.org", File: "b"}}
	if got := loadRecords(t, out); !reflect.DeepEqual(got, want) {
		t.Errorf("records = %+v, want %+v", got, want)
	}
	if !strings.Contains(stderr, "Removed 1 duplicate records") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "urls.json")
	writeFile(t, in, `[{"url":"https://a.org","file":"a.txt"},{"note":"no url"}]`)

	out := filepath.Join(dir, "urls.csv")
	_, stderr, err := execute(t, "export", in, out)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if got := readFile(t, out); got != "url,file\nhttps://a.org,a.txt\n" {
		t.Errorf("csv = %q", got)
	}
	if !strings.Contains(stderr, "Skipped 1 entries") {
		t.Errorf("stderr = %q", stderr)
	}

	if _, _, err := execute(t, "export", in, filepath.Join(dir, "urls.bin")); err == nil {
		t.Error("expected error for unknown extension without --format")
	}
	if _, _, err := execute(t, "export", in, filepath.Join(dir, "urls.bin"), "--format", "msgpack"); err != nil {
		t.Errorf("export with --format failed: %v", err)
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	pdfDir := filepath.Join(dir, "pdfs")
	textDir := filepath.Join(dir, "texts")
	writeFile(t, filepath.Join(pdfDir, "good.pdf"), "%PDF")
	writeFile(t, filepath.Join(pdfDir, "broken.PDF"), "%PDF")
	writeFile(t, filepath.Join(pdfDir, "notes.txt"), "not a pdf")

	orig := pdfToText
	defer func() { pdfToText = orig }()
	pdfToText = func(path string) (string, error) {
		if strings.HasPrefix(filepath.Base(path), "broken") {
			return "", errors.New("corrupt file")
		}
		return "See\u00a0\u201chttps://doi.org/10.1/x\u201d   now\n\n\n\nEnd", nil
	}

	_, stderr, err := execute(t, "convert", pdfDir, textDir)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	if got := readFile(t, filepath.Join(textDir, "good.txt")); got != "See \"https://doi.org/10.1/x\" now\n\nEnd\n" {
		t.Errorf("good.txt = %q", got)
	}
	if _, err := os.Stat(filepath.Join(textDir, "broken.txt")); !os.IsNotExist(err) {
		t.Error("broken.txt should not exist")
	}
	if !strings.Contains(stderr, "1 converted, 1 failed, 2 total") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestTextCleaner(t *testing.T) {
	cleaner := NewTextCleaner()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normalize whitespace",
			input:    "This  has   multiple    spaces",
			expected: "This has multiple spaces",
		},
		{
			name:     "remove non-breaking spaces",
			input:    "Text\u00a0with\u00a0non-breaking\u00a0spaces",
			expected: "Text with non-breaking spaces",
		},
		{
			name:     "normalize unicode quotes",
			input:    "\u201cQuoted text\u201d and \u2018single quotes\u2019",
			expected: "\"Quoted text\" and 'single quotes'",
		},
		{
			name:     "normalize hyphens",
			input:    "Dash\u2013example\u2014test",
			expected: "Dash-example--test",
		},
		{
			name:     "preserve line breaks",
			input:    "Line one\nLine two\n\nNew paragraph",
			expected: "Line one\nLine two\n\nNew paragraph",
		},
		{
			name:     "reduce excessive line breaks",
			input:    "Text\n\n\n\n\nMore text",
			expected: "Text\n\nMore text",
		},
		{
			name:     "drop control characters",
			input:    "bell\x07 and\x0b tab",
			expected: "bell and tab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := cleaner.Clean(tt.input); result != tt.expected {
				t.Errorf("Clean() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(" .txt, ,.md,"); !reflect.DeepEqual(got, []string{".txt", ".md"}) {
		t.Errorf("splitList() = %v", got)
	}
	if got := uniqueSorted([]string{"b", "a", "b"}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("uniqueSorted() = %v", got)
	}
}

func TestPatterns(t *testing.T) {
	stdout, _, err := execute(t, "patterns")
	if err != nil {
		t.Fatalf("patterns failed: %v", err)
	}
	for _, want := range []string{"Strict mode:", "Lenient mode:", "Scheme URLs", "Bare domains"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = execute(t, "patterns", "--test", "See https://example.com/page. Visit example.com")
	if err != nil {
		t.Fatalf("patterns --test failed: %v", err)
	}
	if !strings.Contains(stdout, "strict: 1 match(es)") || !strings.Contains(stdout, "lenient: 2 match(es)") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = execute(t, "patterns", "--mode", "lenient", "--json")
	if err != nil {
		t.Fatalf("patterns --json failed: %v", err)
	}
	var listing map[string][]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(stdout), &listing); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if len(listing) != 1 || len(listing["lenient"]) != 3 {
		t.Errorf("listing = %+v", listing)
	}

	if _, _, err := execute(t, "patterns", "--mode", "fuzzy"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

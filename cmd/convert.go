package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/spf13/cobra"

	"github.com/btraven00/linkmine/internal/collection"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <pdf_dir> <text_dir>",
	Short: "Convert a directory of PDFs to plain text",
	Long: `Convert every PDF in a directory to a plain-text file, ready for extract.

Text is extracted with docconv (which needs pdftotext installed), then
whitespace, dashes and typographic quotes are normalized. Each input
paper.pdf becomes paper.txt in the output directory. A PDF that cannot be
converted is reported and counted but does not stop the run.

Examples:
  linkmine convert pdfs/ texts/`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

// pdfToText extracts the raw text of a PDF.
var pdfToText = func(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}

	return res.Body, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	pdfDir, textDir := args[0], args[1]

	entries, err := os.ReadDir(pdfDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: directory %s", collection.ErrInputNotFound, pdfDir)
		}
		return fmt.Errorf("failed to read directory %s: %w", pdfDir, err)
	}

	var pdfs []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, entry.Name())
		}
	}
	sort.Strings(pdfs)

	if len(pdfs) == 0 {
		statusf(cmd, "No PDF files found in %s\n", pdfDir)
		return nil
	}

	statusf(cmd, "📄 Found %d PDF files to process\n", len(pdfs))

	cleaner := NewTextCleaner()
	successful, failed := 0, 0

	for i, name := range pdfs {
		statusf(cmd, "[%d/%d] Processing: %s\n", i+1, len(pdfs), name)

		text, err := convertOne(cleaner, filepath.Join(pdfDir, name), textDir)
		if err != nil {
			warnf(cmd, "  ✗ %s: %v\n", name, err)
			failed++
			continue
		}

		verbosef(cmd, "  ✓ %d characters, %d lines\n", len(text), strings.Count(text, "\n"))
		successful++
	}

	successf(cmd, "Processing complete: %d converted, %d failed, %d total\n", successful, failed, len(pdfs))

	return nil
}

func convertOne(cleaner *TextCleaner, pdfPath, textDir string) (string, error) {
	raw, err := pdfToText(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to convert PDF: %w", err)
	}

	text := cleaner.Clean(raw)
	if text == "" {
		return "", fmt.Errorf("no readable text found in PDF file")
	}

	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	out := filepath.Join(textDir, stem+".txt")

	err = collection.WriteFileAtomic(out, func(w io.Writer) error {
		_, err := io.WriteString(w, text+"\n")
		return err
	})

	return text, err
}

// TextCleaner normalizes text extracted from PDFs.
type TextCleaner struct {
	whitespace *regexp.Regexp
	control    *regexp.Regexp
	blankLines *regexp.Regexp
	replacer   *strings.Replacer
}

// NewTextCleaner creates a cleaner with its patterns compiled.
func NewTextCleaner() *TextCleaner {
	return &TextCleaner{
		whitespace: regexp.MustCompile(`\s+`),
		control:    regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`),
		blankLines: regexp.MustCompile(`\n{3,}`),
		replacer: strings.NewReplacer(
			"\u00a0", " ", // non-breaking space
			"\u2010", "-", // hyphen variants
			"\u2011", "-",
			"\u2012", "-",
			"\u2013", "-",
			"\u2014", "--",
			"\u201c", "\"", // typographic quotes
			"\u201d", "\"",
			"\u2018", "'",
			"\u2019", "'",
		),
	}
}

// Clean normalizes whitespace within each line, replaces typographic
// punctuation with ASCII, drops control characters and collapses runs of
// blank lines. Line structure is preserved.
func (c *TextCleaner) Clean(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = c.replacer.Replace(line)
		line = c.control.ReplaceAllString(line, "")
		line = c.whitespace.ReplaceAllString(line, " ")
		cleaned = append(cleaned, strings.TrimSpace(line))
	}

	result := strings.Join(cleaned, "\n")
	result = c.blankLines.ReplaceAllString(result, "\n\n")

	return strings.TrimSpace(result)
}

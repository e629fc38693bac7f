// Package scanner walks a directory of plain-text files and turns every URL
// it finds into a record tagged with the file it came from.
//
// Files are read in parallel, but records are always emitted in the
// lexicographic order of the files' relative paths, so scanning an unchanged
// corpus twice produces identical output. A file that cannot be read is
// skipped with a warning; it never aborts the scan.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/matcher"
)

// Scanner applies a Matcher to every text file of a corpus.
type Scanner struct {
	matcher *matcher.Matcher
	options Options
}

// New creates a scanner. Zero-valued options fall back to DefaultOptions.
func New(m *matcher.Matcher, options Options) *Scanner {
	defaults := DefaultOptions()
	if len(options.Extensions) == 0 {
		options.Extensions = defaults.Extensions
	}
	if options.Workers <= 0 {
		options.Workers = defaults.Workers
	}
	if m == nil {
		m = matcher.New()
	}

	return &Scanner{matcher: m, options: options}
}

// Scan reads every matching file under root and returns the records found.
// It fails only when root is missing or not a directory, or when ctx is
// cancelled; unreadable files are reported in Result.Warnings.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	startTime := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s", collection.ErrInputNotFound, root)
		}
		return nil, fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", collection.ErrInputNotFound, root)
	}

	files, warnings, err := s.listFiles(root)
	if err != nil {
		return nil, err
	}

	partials, stats, err := s.scanFiles(ctx, root, files)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Records:      collection.Collection{},
		Warnings:     warnings,
		FilesScanned: len(files),
		Pool:         stats,
	}

	for _, partial := range partials {
		if partial.Skipped {
			result.FilesSkipped++
		}
		result.Warnings = append(result.Warnings, partial.Warnings...)
		for _, u := range partial.Records {
			result.Records = append(result.Records, collection.Record{URL: u, File: partial.Task.RelPath})
		}
	}

	result.ProcessTime = time.Since(startTime)

	return result, nil
}

// scanFiles runs the per-file work on the worker pool and returns the partial
// results in the order of files, with the pool's final statistics.
func (s *Scanner) scanFiles(ctx context.Context, root string, files []string) ([]ScanTaskResult, WorkerPoolStats, error) {
	partials := make([]ScanTaskResult, len(files))
	if len(files) == 0 {
		return partials, WorkerPoolStats{}, ctx.Err()
	}

	pool := NewWorkerPool(ctx, min(s.options.Workers, len(files)), s.scanFile)
	pool.Start()

	go func() {
		for i, rel := range files {
			task := ScanTask{
				Index:   i,
				RelPath: rel,
				Path:    filepath.Join(root, filepath.FromSlash(rel)),
			}
			if !pool.SubmitTask(task) {
				break
			}
		}
		pool.Wait()
	}()

	completed := 0
	for partial := range pool.Results() {
		partials[partial.Task.Index] = partial
		completed++

		if s.options.Progress != nil {
			status := TaskStatusCompleted
			if partial.Skipped {
				status = TaskStatusFailed
			}
			s.options.Progress(ProgressUpdate{
				Path:        partial.Task.RelPath,
				Status:      status,
				Completed:   completed,
				Total:       len(files),
				ElapsedTime: partial.ElapsedTime,
			})
		}
	}

	// A cancelled scan produces no result rather than a partial one.
	if err := ctx.Err(); err != nil {
		return nil, WorkerPoolStats{}, err
	}

	return partials, pool.GetStats(), nil
}

// scanFile reads, decodes and matches a single file.
func (s *Scanner) scanFile(task ScanTask) ScanTaskResult {
	data, err := os.ReadFile(task.Path)
	if err != nil {
		return ScanTaskResult{
			Skipped:  true,
			Warnings: []Warning{{Path: task.RelPath, Kind: WarningUnreadable, Err: err}},
		}
	}

	var result ScanTaskResult

	text, lossy := decodeText(data)
	if lossy {
		result.Warnings = append(result.Warnings, Warning{
			Path: task.RelPath,
			Kind: WarningDecode,
			Err:  errInvalidUTF8,
		})
	}

	result.Records = s.matcher.Match(text, s.options.Mode)

	return result
}

// listFiles returns the slash-separated paths, relative to root, of the files
// to scan, sorted lexicographically. Unreadable subdirectories are reported
// as warnings.
func (s *Scanner) listFiles(root string) ([]string, []Warning, error) {
	var (
		files    []string
		warnings []Warning
	)

	if !s.options.Recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read directory %s: %w", root, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && s.hasExtension(entry.Name()) {
				files = append(files, entry.Name())
			}
		}
		sort.Strings(files)
		return files, nil, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			rel, _ := filepath.Rel(root, path)
			warnings = append(warnings, Warning{Path: filepath.ToSlash(rel), Kind: WarningUnreadable, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !s.hasExtension(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)

	return files, warnings, nil
}

func (s *Scanner) hasExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range s.options.Extensions {
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if strings.EqualFold(ext, want) {
			return true
		}
	}

	return false
}

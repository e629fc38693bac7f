package scanner

import (
	"fmt"
	"runtime"
	"time"

	"github.com/btraven00/linkmine/internal/collection"
	"github.com/btraven00/linkmine/internal/matcher"
)

// Options configures a corpus scan.
type Options struct {
	// Progress, when set, is called once per finished file from the goroutine
	// running Scan.
	Progress   func(ProgressUpdate)
	Extensions []string
	Workers    int
	Mode       matcher.Mode
	Recursive  bool
}

// DefaultOptions returns the options matching the one-file-per-article
// layout: strict matching over the .txt files of a single directory.
func DefaultOptions() Options {
	return Options{
		Mode:       matcher.Strict,
		Recursive:  false,
		Extensions: []string{".txt"},
		Workers:    runtime.NumCPU(),
	}
}

// WarningKind classifies a per-file problem that did not stop the scan.
type WarningKind string

const (
	// WarningUnreadable means the file or directory could not be read and was skipped.
	WarningUnreadable WarningKind = "unreadable"
	// WarningDecode means invalid UTF-8 was replaced before matching.
	WarningDecode WarningKind = "decode"
)

// Warning describes a file that was skipped or only partially decoded.
type Warning struct {
	Err  error
	Path string
	Kind WarningKind
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %v", w.Kind, w.Path, w.Err)
}

// Result is the outcome of scanning a corpus.
type Result struct {
	Records      collection.Collection `json:"records"`
	Warnings     []Warning             `json:"-"`
	FilesScanned int                   `json:"files_scanned"`
	FilesSkipped int                   `json:"files_skipped"`
	Pool         WorkerPoolStats       `json:"pool"`
	ProcessTime  time.Duration         `json:"process_time"`
}

// WarningCount returns the number of warnings raised during the scan.
func (r *Result) WarningCount() int {
	return len(r.Warnings)
}

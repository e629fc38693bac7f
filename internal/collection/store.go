package collection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
	bufSize  = 64 * 1024
)

// Load reads a JSON document from path. A missing file yields
// ErrInputNotFound and invalid JSON yields ErrMalformedInput; no partial
// recovery is attempted.
func Load(path string) (Value, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Value{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return Value{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := &readErrReader{r: f}
	v, err := Decode(bufio.NewReaderSize(r, bufSize))
	if err != nil {
		if r.err != nil {
			return Value{}, fmt.Errorf("failed to read %s: %w", path, r.err)
		}
		return Value{}, fmt.Errorf("%w: invalid JSON in %s: %v", ErrMalformedInput, path, err)
	}

	return v, nil
}

// readErrReader remembers the first I/O error of r so that it is not
// mistaken for a decoding error.
type readErrReader struct {
	r   io.Reader
	err error
}

func (e *readErrReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF && e.err == nil {
		e.err = err
	}
	return n, err
}

// LoadAll loads every path with at most workers files in flight. Values are
// returned in input order. When several files fail, the error of the first
// failing path in input order is returned.
func LoadAll(ctx context.Context, paths []string, workers int) ([]Value, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	values := make([]Value, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(workers, len(paths))))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns its slot, no locking needed.
			values[i], errs[i] = Load(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return values, nil
}

// Save writes v as JSON to path, indenting by indent spaces per level
// (compact when indent <= 0). Parent directories are created as needed and
// the file is replaced atomically.
func Save(v any, path string, indent int) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return NewJSONEncoder(w, indent).Encode(v)
	})
}

// SaveLines writes one line per entry to path, atomically.
func SaveLines(lines []string, path string) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		for _, line := range lines {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteFileAtomic streams write into a temporary file next to path and
// renames it into place once it is complete and synced. On any failure the
// temporary file is removed and an existing file at path is left untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".linkmine-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmp, bufSize)
	if err = write(bw); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	_ = os.Chmod(tmpPath, filePerm)

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	// Best effort: persist the rename on filesystems that need it.
	_ = syncDir(dir)

	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Sync()
}

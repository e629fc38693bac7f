// Package export writes record collections in formats other than JSON:
// CSV for spreadsheets, a SQLite database for ad-hoc SQL and MessagePack for
// compact machine exchange.
package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/btraven00/linkmine/internal/collection"
)

// Format is an export format.
type Format string

const (
	CSV     Format = "csv"
	SQLite  Format = "sqlite"
	MsgPack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{CSV, SQLite, MsgPack}

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}

	return "", fmt.Errorf("unsupported export format %q (supported: csv, sqlite, msgpack)", s)
}

// Write exports records to path in the given format, replacing any existing
// file only once the export is complete.
func Write(ctx context.Context, format Format, records collection.Collection, path string) error {
	switch format {
	case CSV:
		return collection.WriteFileAtomic(path, func(w io.Writer) error {
			return writeCSV(w, records)
		})
	case MsgPack:
		return collection.WriteFileAtomic(path, func(w io.Writer) error {
			return writeMsgPack(w, records)
		})
	case SQLite:
		return writeSQLite(ctx, records, path)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func writeCSV(w io.Writer, records collection.Collection) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{collection.FieldURL, collection.FieldFile}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.URL, r.File}); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func writeMsgPack(w io.Writer, records collection.Collection) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")

	if records == nil {
		records = collection.Collection{}
	}

	return enc.Encode(records)
}

const schema = `
CREATE TABLE records (
	id   INTEGER PRIMARY KEY,
	url  TEXT NOT NULL,
	file TEXT NOT NULL
);
CREATE INDEX idx_records_url ON records(url);
`

// writeSQLite builds the database in a temporary file next to path and moves
// it into place.
func writeSQLite(ctx context.Context, records collection.Collection, path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".linkmine-*.db")
	if err != nil {
		return fmt.Errorf("failed to create temporary database: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fillDatabase(ctx, tmpPath, records); err != nil {
		return err
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move database into place: %w", err)
	}

	return nil
}

func fillDatabase(ctx context.Context, dbPath string, records collection.Collection) (err error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (url, file) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.URL, r.File); err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

package sink

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/Scrin/RuuviCollector/measurement"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	time        INTEGER NOT NULL,
	mac         TEXT NOT NULL,
	name        TEXT,
	data_format TEXT,
	receiver    TEXT,
	field       TEXT NOT NULL,
	value       REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS readings_mac_time ON readings (mac, time);
`

// SQLite stores one row per field, time in unix milliseconds.
type SQLite struct {
	db     *sql.DB
	fields Selector
}

// OpenSQLite opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string, fields Selector) (*SQLite, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: open")
	}
	// one writer, and an in-memory database lives in a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite: create schema")
	}
	return &SQLite{db: db, fields: fields}, nil
}

func sqliteDSN(path string) (string, error) {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrapf(err, "sqlite: mkdir %s", dir)
		}
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path), nil
}

func (s *SQLite) Save(r *measurement.Reading) error {
	fields := measurement.Fields(r, s.fields.FieldFilter(r.MAC))
	if len(fields) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO readings (time, mac, name, data_format, receiver, field, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "sqlite: prepare")
	}
	defer stmt.Close()

	ts := timestamp(r).UnixMilli()
	for _, f := range fields {
		_, err := stmt.Exec(ts, r.MAC, nullString(r.Name), nullString(string(r.DataFormat)), nullString(r.Receiver), f.Name, f.Value)
		if err != nil {
			return errors.Wrapf(err, "sqlite: insert %s", f.Name)
		}
	}
	return errors.Wrap(tx.Commit(), "sqlite: commit")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

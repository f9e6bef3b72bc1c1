// Package log provides the daemon logger: zerolog writing human-readable
// output to stderr and JSON log lines to an SQLite database, so the `logs`
// management command can query history after the fact. Before Init the
// package logger is a no-op, which keeps library tests silent.
package log

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

var (
	mu        sync.RWMutex
	pkgLogger = zerolog.Nop()
	writer    *sqliteWriter
	db        *sql.DB

	writesSinceStart atomic.Int64

	// ErrNotInitialized is returned by retrieval functions before Init.
	ErrNotInitialized = errors.New("log: logger not initialized, call log.Init() first")
)

// sqliteWriter is an io.Writer storing each JSON log line as one row.
type sqliteWriter struct {
	stmt *sql.Stmt
	mu   sync.Mutex
}

func newSQLiteWriter(dbPath string) (*sqliteWriter, *sql.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode=wal&_pragma=busy_timeout=5000", dbPath)
	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite db %s: %w", dbPath, err)
	}
	if err = handle.Ping(); err != nil {
		handle.Close()
		return nil, nil, fmt.Errorf("failed to ping sqlite db %s: %w", dbPath, err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
        log_data TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_logs_json_time ON logs (json_extract(log_data, '$.time'));
    CREATE INDEX IF NOT EXISTS idx_logs_json_level ON logs (json_extract(log_data, '$.level'));`
	if _, err = handle.Exec(schema); err != nil {
		handle.Close()
		return nil, nil, fmt.Errorf("failed to create logs schema: %w", err)
	}

	stmt, err := handle.Prepare(`INSERT INTO logs (log_data) VALUES (?)`)
	if err != nil {
		handle.Close()
		return nil, nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	return &sqliteWriter{stmt: stmt}, handle, nil
}

func (w *sqliteWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.stmt.Exec(string(p)); err != nil {
		return 0, err
	}
	writesSinceStart.Add(1)
	return len(p), nil
}

// Init opens (or creates) the log database and installs the package logger.
// Calling Init twice is a no-op.
func Init(dbPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return nil
	}

	w, handle, err := newSQLiteWriter(dbPath)
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(zerolog.MultiLevelWriter(console, w)).
		Level(level).
		With().Timestamp().Logger()

	writer = w
	db = handle
	pkgLogger = logger
	return nil
}

// Close flushes and closes the log database. Safe to call when Init was
// never called.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	pkgLogger = zerolog.Nop()
	var firstErr error
	if writer != nil {
		writer.mu.Lock()
		if err := writer.stmt.Close(); err != nil {
			firstErr = err
		}
		writer.mu.Unlock()
		writer = nil
	}
	if db != nil {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		db = nil
	}
	return firstErr
}

// WritesSinceStart returns how many log rows have been stored since Init.
func WritesSinceStart() int64 { return writesSinceStart.Load() }

// GetLastNLogs returns the newest n stored JSON log lines, oldest first.
func GetLastNLogs(n int) ([]string, error) {
	mu.RLock()
	handle := db
	mu.RUnlock()
	if handle == nil {
		return nil, ErrNotInitialized
	}

	rows, err := handle.Query(`SELECT log_data FROM (
        SELECT id, log_data FROM logs ORDER BY id DESC LIMIT ?
    ) ORDER BY id ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Gopher0727/Ideario/internal/apply"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	note       TEXT NOT NULL,
	results    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// SQLiteJournal persists entries in a single SQLite file. The zero
// value is not usable, open one with OpenSQLite.
type SQLiteJournal struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLite opens (and creates if needed) the journal database at
// path. Pass ":memory:" for a throwaway in-process journal.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteJournal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %q: %w", path, err)
	}
	// SQLite serializes writers anyway, and a second connection to a
	// ":memory:" DSN would open a second, empty database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &SQLiteJournal{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) Record(ctx context.Context, note string, results []apply.ActionResult) error {
	blob, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode journal results: %w", err)
	}
	at := j.now().UTC().Format(time.RFC3339Nano)
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO notes (note, results, created_at) VALUES (?, ?, ?)`,
		note, string(blob), at)
	if err != nil {
		return fmt.Errorf("record note: %w", err)
	}
	j.logger.Debug("journal recorded", zap.Int("results", len(results)))
	return nil
}

func (j *SQLiteJournal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, note, results, created_at FROM notes ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			blob string
			at   string
		)
		if err := rows.Scan(&e.ID, &e.Note, &blob, &at); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &e.Results); err != nil {
			return nil, fmt.Errorf("decode journal results for entry %d: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("decode journal timestamp for entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

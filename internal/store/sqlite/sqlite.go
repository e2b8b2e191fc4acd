package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/chatroomai/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS room_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room       TEXT NOT NULL,
	text       TEXT NOT NULL,
	role       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_room_log_room ON room_log(room, id);
`

// Log implements core.MessageLog on SQLite.
type Log struct {
	db *sql.DB
}

var _ core.MessageLog = (*Log)(nil)

// New opens the database at dbPath and creates the schema if needed.
// ":memory:" gives a private in-process database.
func New(ctx context.Context, dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append persists an entry at the end of the room's log.
func (l *Log) Append(ctx context.Context, room string, entry core.LogEntry) error {
	query := `INSERT INTO room_log (room, text, role) VALUES (?, ?, ?)`
	if _, err := l.db.ExecContext(ctx, query, room, entry.Text, entry.Role); err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// Len counts the room's entries.
func (l *Log) Len(ctx context.Context, room string) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM room_log WHERE room = ?`, room).Scan(&n); err != nil {
		return 0, fmt.Errorf("count log entries: %w", err)
	}
	return n, nil
}

// Tail retrieves the last k entries in chronological order.
func (l *Log) Tail(ctx context.Context, room string, k int) ([]core.LogEntry, error) {
	entries := make([]core.LogEntry, 0, max(k, 0))
	if k <= 0 {
		return entries, nil
	}

	query := `
		SELECT text, role
		FROM room_log
		WHERE room = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, room, k)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e core.LogEntry
		if err := rows.Scan(&e.Text, &e.Role); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}

	// Reverse to get chronological order
	for i := 0; i < len(entries)/2; i++ {
		entries[i], entries[len(entries)-1-i] = entries[len(entries)-1-i], entries[i]
	}

	return entries, nil
}

// Clear deletes every entry of the room.
func (l *Log) Clear(ctx context.Context, room string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM room_log WHERE room = ?`, room); err != nil {
		return fmt.Errorf("clear room log: %w", err)
	}
	return nil
}

// Drop forgets the room. Rows are the only state, so it is the same as Clear.
func (l *Log) Drop(ctx context.Context, room string) error {
	return l.Clear(ctx, room)
}

// Package storage persists the audit log of tool calls the assistant ran.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"maple/tools"
)

// AuditEntry is one stored tool execution.
type AuditEntry struct {
	ID        string
	SessionID string
	Tool      string
	FilePath  string
	Result    string // Preview, not the full result
	Outcome   string // ok, error or cancelled
	CreatedAt time.Time
}

// AuditLog stores tool executions in SQLite. It implements tools.Recorder.
type AuditLog struct {
	db *sql.DB
}

// NewAuditLog opens (creating if needed) audit.db in dataDir.
func NewAuditLog(dataDir string) (*AuditLog, error) {
	dbPath := filepath.Join(dataDir, "audit.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &AuditLog{db: db}
	if err := a.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return a, nil
}

func (a *AuditLog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		tool TEXT NOT NULL,
		file_path TEXT,
		result TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_created ON tool_calls(created_at);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_session ON tool_calls(session_id);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return err
	}

	// outcome was added after the first release
	has, err := a.columnExists("tool_calls", "outcome")
	if err != nil {
		return fmt.Errorf("failed to check for outcome column: %w", err)
	}
	if !has {
		if _, err := a.db.Exec(`ALTER TABLE tool_calls ADD COLUMN outcome TEXT DEFAULT ''`); err != nil {
			return fmt.Errorf("failed to add outcome column: %w", err)
		}
	}
	return nil
}

func (a *AuditLog) columnExists(table, column string) (bool, error) {
	rows, err := a.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name         string
			dataType     string
			notNull      int
			defaultValue any
			pk           int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Record implements tools.Recorder.
func (a *AuditLog) Record(ctx context.Context, rec tools.Record) error {
	created := rec.Time
	if created.IsZero() {
		created = time.Now()
	}
	_, err := a.db.ExecContext(ctx, `
	INSERT INTO tool_calls (id, session_id, tool, file_path, result, outcome, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		rec.SessionID,
		rec.Tool,
		rec.FilePath,
		rec.Result,
		rec.Outcome,
		created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record tool call: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	return a.query(ctx, `
	SELECT id, session_id, tool, file_path, result, outcome, created_at
	FROM tool_calls
	ORDER BY created_at DESC
	LIMIT ?
	`, limit)
}

// BySession returns the entries of one session, oldest first.
func (a *AuditLog) BySession(ctx context.Context, sessionID string) ([]AuditEntry, error) {
	return a.query(ctx, `
	SELECT id, session_id, tool, file_path, result, outcome, created_at
	FROM tool_calls
	WHERE session_id = ?
	ORDER BY created_at ASC
	`, sessionID)
}

func (a *AuditLog) query(ctx context.Context, q string, args ...any) ([]AuditEntry, error) {
	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var filePath, result, outcome sql.NullString
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Tool, &filePath, &result, &outcome, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.FilePath = filePath.String
		e.Result = result.String
		e.Outcome = outcome.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than cutoff and returns how many were removed.
func (a *AuditLog) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := a.db.ExecContext(ctx, `DELETE FROM tool_calls WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit log: %w", err)
	}
	return res.RowsAffected()
}

func (a *AuditLog) Close() error {
	return a.db.Close()
}

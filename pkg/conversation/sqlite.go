package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed-width timestamp encoding so lexical ORDER BY matches chronological
// order. RFC3339Nano trims trailing zeros, which would break that.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	project_name TEXT NOT NULL DEFAULT '',
	project_description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);

CREATE TABLE IF NOT EXISTS requirements (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	text TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_requirements_session ON requirements(session_id);
`

// SQLiteStore persists sessions in a SQLite database. Use ":memory:" for an
// in-memory database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The sqlite3 driver serializes writes through a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context) (*Session, error) {
	session := NewSession()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at) VALUES (?, ?)`,
		session.ID, session.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return session, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	var createdAt string
	session := &Session{
		Messages: []Message{},
		Metadata: Metadata{Requirements: []Requirement{}},
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, project_name, project_description FROM sessions WHERE id = ?`, id)
	err := row.Scan(&session.ID, &createdAt, &session.Metadata.ProjectName, &session.Metadata.ProjectDescription)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	session.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse session timestamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, timestamp FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg Message
		var ts string
		if err := rows.Scan(&msg.Role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if msg.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parse message timestamp: %w", err)
		}
		session.Messages = append(session.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	reqRows, err := s.db.QueryContext(ctx,
		`SELECT text, kind, notes FROM requirements WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query requirements: %w", err)
	}
	defer reqRows.Close()

	for reqRows.Next() {
		var req Requirement
		if err := reqRows.Scan(&req.Text, &req.Kind, &req.Notes); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		session.Metadata.Requirements = append(session.Metadata.Requirements, req)
	}
	if err := reqRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}

	return session, nil
}

func (s *SQLiteStore) Append(ctx context.Context, id string, msg Message) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		id, msg.Role, msg.Content, msg.Timestamp.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

func (s *SQLiteStore) SetProject(ctx context.Context, id, name, description string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET project_name = ?, project_description = ? WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound{ID: id}
	}

	return nil
}

func (s *SQLiteStore) AddRequirement(ctx context.Context, id string, req Requirement) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requirements (session_id, text, kind, notes) VALUES (?, ?, ?, ?)`,
		id, req.Text, req.Kind, req.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert requirement: %w", err)
	}

	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.project_name,
			(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id),
			(SELECT COUNT(*) FROM requirements r WHERE r.session_id = s.id)
		FROM sessions s
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var summary Summary
		var createdAt string
		if err := rows.Scan(&summary.SessionID, &createdAt, &summary.ProjectName,
			&summary.MessageCount, &summary.RequirementsCount); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if summary.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse summary timestamp: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return summaries, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) exists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound{ID: id}
	}
	if err != nil {
		return fmt.Errorf("query session: %w", err)
	}

	return nil
}

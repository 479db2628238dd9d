package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite. Aggregate fields are stored as
// JSON columns so field-level updates map to column-level SETs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed session store at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		curriculum_json TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		emotional_history_json TEXT NOT NULL,
		completed_nodes_json TEXT NOT NULL,
		current_node_id TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts a new session record.
func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	curriculumJSON, err := json.Marshal(sess.Curriculum)
	if err != nil {
		return fmt.Errorf("encode curriculum: %w", err)
	}
	messagesJSON, err := json.Marshal(sess.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	historyJSON, err := json.Marshal(sess.EmotionalHistory)
	if err != nil {
		return fmt.Errorf("encode emotional history: %w", err)
	}
	completedJSON, err := json.Marshal(sess.CompletedNodes)
	if err != nil {
		return fmt.Errorf("encode completed nodes: %w", err)
	}

	query := `
	INSERT INTO sessions (
		session_id, curriculum_json, messages_json, emotional_history_json,
		completed_nodes_json, current_node_id, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		sess.SessionID, string(curriculumJSON), string(messagesJSON),
		string(historyJSON), string(completedJSON),
		sess.CurrentNodeID, sess.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	query := `
	SELECT session_id, curriculum_json, messages_json, emotional_history_json,
	       completed_nodes_json, current_node_id, created_at
	FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var sess Session
	var curriculumJSON, messagesJSON, historyJSON, completedJSON string
	var createdAt int64

	err := row.Scan(
		&sess.SessionID, &curriculumJSON, &messagesJSON,
		&historyJSON, &completedJSON, &sess.CurrentNodeID, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(curriculumJSON), &sess.Curriculum); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &sess.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &sess.EmotionalHistory); err != nil {
		return nil, fmt.Errorf("decode emotional history: %w", err)
	}
	if err := json.Unmarshal([]byte(completedJSON), &sess.CompletedNodes); err != nil {
		return nil, fmt.Errorf("decode completed nodes: %w", err)
	}
	sess.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &sess, nil
}

// Update applies a field-level merge to a session record. Last write wins;
// there is no version guard.
func (s *SQLiteStore) Update(ctx context.Context, id string, updates Updates) error {
	var sets []string
	var args []interface{}

	if updates.Messages != nil {
		data, err := json.Marshal(*updates.Messages)
		if err != nil {
			return fmt.Errorf("encode messages: %w", err)
		}
		sets = append(sets, "messages_json = ?")
		args = append(args, string(data))
	}
	if updates.EmotionalHistory != nil {
		data, err := json.Marshal(*updates.EmotionalHistory)
		if err != nil {
			return fmt.Errorf("encode emotional history: %w", err)
		}
		sets = append(sets, "emotional_history_json = ?")
		args = append(args, string(data))
	}
	if updates.CompletedNodes != nil {
		data, err := json.Marshal(*updates.CompletedNodes)
		if err != nil {
			return fmt.Errorf("encode completed nodes: %w", err)
		}
		sets = append(sets, "completed_nodes_json = ?")
		args = append(args, string(data))
	}
	if updates.CurrentNodeID != nil {
		sets = append(sets, "current_node_id = ?")
		args = append(args, *updates.CurrentNodeID)
	}

	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE sessions SET " + strings.Join(sets, ", ") + " WHERE session_id = ?"
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

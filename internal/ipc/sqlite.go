package ipc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ipc_requests (
	id        TEXT PRIMARY KEY,
	type      TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	payload   BLOB
);
CREATE TABLE IF NOT EXISTS ipc_responses (
	request_id TEXT NOT NULL,
	tag        TEXT NOT NULL,
	status     TEXT NOT NULL,
	data       BLOB,
	error      TEXT,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (request_id, tag)
);
`

// SQLiteTransport keeps artifacts in two tables of a SQLite database shared
// with the responder.
type SQLiteTransport struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. The special
// path ":memory:" gives a private in-process database.
func OpenSQLite(path string) (*SQLiteTransport, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	t, err := NewSQLiteTransport(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

// NewSQLiteTransport uses an already open database, creating the tables if
// they are missing.
func NewSQLiteTransport(db *sql.DB) (*SQLiteTransport, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate ipc tables: %w", err)
	}
	return &SQLiteTransport{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteTransport) Close() error {
	return s.db.Close()
}

func (s *SQLiteTransport) WriteRequest(ctx context.Context, req Request) error {
	if err := checkID(req.ID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ipc_requests (id, type, timestamp, payload) VALUES (?, ?, ?, ?)`,
		req.ID, req.Type, req.Timestamp, []byte(req.Payload))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateRequest, req.ID)
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *SQLiteTransport) ReadResponse(ctx context.Context, id, tag string) (Response, bool, error) {
	var (
		resp   Response
		status string
		data   []byte
		errMsg sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT status, data, error FROM ipc_responses WHERE request_id = ? AND tag = ?`,
		id, tag).Scan(&status, &data, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, fmt.Errorf("select response: %w", err)
	}

	resp.RequestID = id
	resp.Status = Status(status)
	if len(data) > 0 {
		resp.Data = data
	}
	resp.Error = errMsg.String
	return resp, true, nil
}

func (s *SQLiteTransport) Cleanup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cleanup: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ipc_requests WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ipc_responses WHERE request_id = ?`, id); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	return tx.Commit()
}

// WriteResponse upserts resp under (resp.RequestID, tag).
func (s *SQLiteTransport) WriteResponse(ctx context.Context, tag string, resp Response) error {
	if err := checkID(resp.RequestID); err != nil {
		return err
	}
	var errMsg sql.NullString
	if resp.Error != "" {
		errMsg = sql.NullString{String: resp.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ipc_responses (request_id, tag, status, data, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (request_id, tag) DO UPDATE SET
			status = excluded.status,
			data = excluded.data,
			error = excluded.error,
			updated_at = excluded.updated_at`,
		resp.RequestID, tag, string(resp.Status), []byte(resp.Data), errMsg, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

// Pending returns requests that have no response under tag, oldest first.
func (s *SQLiteTransport) Pending(ctx context.Context, tag string) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.type, r.timestamp, r.payload
		FROM ipc_requests r
		LEFT JOIN ipc_responses p ON p.request_id = r.id AND p.tag = ?
		WHERE p.request_id IS NULL
		ORDER BY r.timestamp, r.id`, tag)
	if err != nil {
		return nil, fmt.Errorf("select pending: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		var payload []byte
		if err := rows.Scan(&req.ID, &req.Type, &req.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		if len(payload) > 0 {
			req.Payload = payload
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Package store keeps a history of generated documents in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "modernc.org/sqlite"

	"github.com/dhabedank/brdgen/internal/core"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// Record is one stored document. List leaves HTML and Input empty.
type Record struct {
	ID        string       `json:"id"`
	Project   string       `json:"project"`
	Version   int          `json:"version"`
	Type      core.DocType `json:"type"`
	Domain    core.Domain  `json:"domain"`
	Format    string       `json:"format"`
	Source    string       `json:"source"` // local or ai
	Body      string       `json:"body,omitempty"`
	Input     *core.Input  `json:"input,omitempty"` // what the document was generated from
	CreatedAt time.Time    `json:"created_at"`
}

// Filter narrows List results.
type Filter struct {
	Project string
	Type    core.DocType
	Limit   int
}

// Store is a SQLite-backed document history.
type Store struct {
	db *sql.DB
}

// DefaultPath is ~/.brdgen/history.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "brdgen-history.db"
	}
	return filepath.Join(home, ".brdgen", "history.db")
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id         TEXT PRIMARY KEY,
			project    TEXT NOT NULL,
			version    INTEGER NOT NULL,
			type       TEXT NOT NULL,
			domain     TEXT NOT NULL,
			format     TEXT NOT NULL,
			source     TEXT NOT NULL,
			body       TEXT NOT NULL,
			input      TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_doc_project ON documents(project, type, version DESC);
		CREATE INDEX IF NOT EXISTS idx_doc_created ON documents(created_at DESC);
	`)
	return err
}

// NewID generates a document id in format DOC-{nanoid(10)}.
func NewID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return "DOC-" + id, nil
}

// Save stores a document and returns it with its id and timestamp set.
func (s *Store) Save(ctx context.Context, r Record) (Record, error) {
	id, err := NewID()
	if err != nil {
		return Record{}, fmt.Errorf("store: new id: %w", err)
	}
	r.ID = id
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	var input sql.NullString
	if r.Input != nil {
		b, err := json.Marshal(r.Input)
		if err != nil {
			return Record{}, fmt.Errorf("store: encode input: %w", err)
		}
		input = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, project, version, type, domain, format, source, body, input, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Project, r.Version, string(r.Type), string(r.Domain), r.Format, r.Source, r.Body, input,
		r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("store: insert: %w", err)
	}
	return r, nil
}

// Get returns a stored document with its body and input.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project, version, type, domain, format, source, body, input, created_at
		 FROM documents WHERE id = ?`, id)

	var (
		r       Record
		input   sql.NullString
		created string
	)
	err := row.Scan(&r.ID, &r.Project, &r.Version, &r.Type, &r.Domain, &r.Format, &r.Source, &r.Body, &input, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("store: parse created_at: %w", err)
	}
	if input.Valid {
		var in core.Input
		if err := json.Unmarshal([]byte(input.String), &in); err != nil {
			return nil, fmt.Errorf("store: decode input: %w", err)
		}
		r.Input = &in
	}
	return &r, nil
}

// List returns document summaries, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	var (
		where []string
		args  []any
	)
	if f.Project != "" {
		where = append(where, "project = ?")
		args = append(args, f.Project)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}

	query := `SELECT id, project, version, type, domain, format, source, created_at FROM documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			created string
		)
		if err := rows.Scan(&r.ID, &r.Project, &r.Version, &r.Type, &r.Domain, &r.Format, &r.Source, &created); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("store: parse created_at: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// NextVersion returns one more than the highest stored version of a
// project's documents of type t, or 1.
func (s *Store) NextVersion(ctx context.Context, project string, t core.DocType) (int, error) {
	var v sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM documents WHERE project = ? AND type = ?`, project, string(t),
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("store: next version: %w", err)
	}
	return int(v.Int64) + 1, nil
}

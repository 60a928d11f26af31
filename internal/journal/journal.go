// Package journal keeps a local SQLite record of every task submission and
// the outcome the database reported for it.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

const defaultListLimit = 50

type Entry struct {
	ID        int64     `json:"id"`
	Mode      string    `json:"mode"`
	TaskID    int64     `json:"task_id"`
	TaskName  string    `json:"task_name"`
	Magazine  string    `json:"magazine"`
	Release   string    `json:"release"`
	Business  string    `json:"business"`
	JobDate   string    `json:"job_date"`
	RawCode   string    `json:"raw_code"`
	Outcome   string    `json:"outcome"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Journal struct {
	DB *sql.DB
}

func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" journals on one database.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func New(db *sql.DB) *Journal {
	return &Journal{DB: db}
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return ensureErrorColumn(ctx, db)
}

// ensureErrorColumn upgrades journals created before failed calls were recorded.
func ensureErrorColumn(ctx context.Context, db *sql.DB) error {
	var exists int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM pragma_table_info('submissions') WHERE name = 'error' LIMIT 1").Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check submissions.error column: %w", err)
	}

	if _, err := db.ExecContext(ctx, "ALTER TABLE submissions ADD COLUMN error TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("add submissions.error column: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, entry Entry) (Entry, error) {
	res, err := j.DB.ExecContext(ctx, `INSERT INTO submissions
		(mode, task_id, task_name, magazine, release_number, business, job_date, raw_code, outcome, message, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Mode, entry.TaskID, entry.TaskName, entry.Magazine, entry.Release, entry.Business,
		entry.JobDate, entry.RawCode, entry.Outcome, entry.Message, entry.Error,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record submission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("record submission id: %w", err)
	}
	return j.Get(ctx, id)
}

func (j *Journal) Get(ctx context.Context, id int64) (Entry, error) {
	row := j.DB.QueryRowContext(ctx, selectEntries+" WHERE id = ?", id)
	return scanEntry(row)
}

// List returns the most recent entries first. A non-positive limit uses the default.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := j.DB.QueryContext(ctx, selectEntries+" ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return entries, nil
}

const selectEntries = `SELECT id, mode, task_id, task_name, magazine, release_number, business,
	job_date, raw_code, outcome, message, error, created_at FROM submissions`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var entry Entry
	if err := row.Scan(
		&entry.ID, &entry.Mode, &entry.TaskID, &entry.TaskName, &entry.Magazine, &entry.Release,
		&entry.Business, &entry.JobDate, &entry.RawCode, &entry.Outcome, &entry.Message, &entry.Error,
		&entry.CreatedAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan submission: %w", err)
	}
	return entry, nil
}

// Summary is the one-line form shown in the history pane.
func (e Entry) Summary() string {
	target := e.TaskName
	if e.TaskID != 0 {
		target = fmt.Sprintf("#%d %s", e.TaskID, e.TaskName)
	}
	return fmt.Sprintf("%s %s %s: %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Mode, target, e.Message)
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type Task struct {
	ID        int
	Title     string
	Due       sql.NullTime
	Completed bool
	CreatedAt time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Debug().Str("path", dbPath).Msg("opened task store")
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	due TEXT DEFAULT NULL,
	created_at TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns upgrades databases created before due dates existed.
func (s *Store) ensureTaskColumns() error {
	ok, err := s.hasColumn("tasks", "due")
	if err != nil || ok {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE tasks ADD COLUMN due TEXT DEFAULT NULL;`); err != nil {
		return fmt.Errorf("add due column: %w", err)
	}
	log.Info().Str("column", "due").Msg("added missing tasks column")
	return nil
}

func (s *Store) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?);`, table)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// ListTasks returns every task in insertion (id) order.
func (s *Store) ListTasks() ([]Task, error) {
	rows, err := s.db.Query(`SELECT id, title, completed, due, created_at FROM tasks ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var completed int
		var dueStr sql.NullString
		var createdStr string

		if err := rows.Scan(&t.ID, &t.Title, &completed, &dueStr, &createdStr); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Completed = completed != 0
		if dueStr.Valid {
			if parsed, err := time.Parse(dateLayout, dueStr.String); err == nil {
				t.Due = sql.NullTime{Time: parsed, Valid: true}
			}
		}
		if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
			t.CreatedAt = created
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) Insert(title string, due sql.NullTime) error {
	now := s.now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`INSERT INTO tasks (title, completed, due, created_at) VALUES (?, 0, ?, ?);`,
		title, dueValue(due), now)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) ToggleCompleted(id int) error {
	if _, err := s.db.Exec(`UPDATE tasks SET completed = NOT completed WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("toggle task %d: %w", id, err)
	}
	return nil
}

// SetDueDate sets or, with an invalid NullTime, clears a task's due date.
func (s *Store) SetDueDate(id int, due sql.NullTime) error {
	if _, err := s.db.Exec(`UPDATE tasks SET due = ? WHERE id = ?;`, dueValue(due), id); err != nil {
		return fmt.Errorf("set due date of task %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteTask(id int) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func dueValue(due sql.NullTime) sql.NullString {
	if !due.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: due.Time.Format(dateLayout), Valid: true}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(y int, m time.Month, d int) sql.NullTime {
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestOpen_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "todo.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestInsertAndList(t *testing.T) {
	s := openTestStore(t)
	created := time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	require.NoError(t, s.Insert("write report", sql.NullTime{}))
	require.NoError(t, s.Insert("buy milk", date(2025, time.March, 15)))
	require.NoError(t, s.Insert("call mom", sql.NullTime{}))

	tasks, err := s.ListTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, []string{"write report", "buy milk", "call mom"},
		[]string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
	assert.Less(t, tasks[0].ID, tasks[1].ID)
	assert.Less(t, tasks[1].ID, tasks[2].ID)

	assert.False(t, tasks[0].Due.Valid)
	assert.Equal(t, date(2025, time.March, 15), tasks[1].Due)
	for _, task := range tasks {
		assert.False(t, task.Completed)
		assert.True(t, created.Equal(task.CreatedAt))
	}
}

func TestListTasks_Empty(t *testing.T) {
	s := openTestStore(t)
	tasks, err := s.ListTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestToggleCompleted(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Insert("write report", sql.NullTime{}))
	tasks, err := s.ListTasks()
	require.NoError(t, err)
	id := tasks[0].ID

	require.NoError(t, s.ToggleCompleted(id))
	tasks, err = s.ListTasks()
	require.NoError(t, err)
	assert.True(t, tasks[0].Completed)

	require.NoError(t, s.ToggleCompleted(id))
	tasks, err = s.ListTasks()
	require.NoError(t, err)
	assert.False(t, tasks[0].Completed)
}

func TestSetDueDate(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Insert("file taxes", sql.NullTime{}))
	tasks, err := s.ListTasks()
	require.NoError(t, err)
	id := tasks[0].ID

	require.NoError(t, s.SetDueDate(id, date(2025, time.April, 15)))
	tasks, err = s.ListTasks()
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.April, 15), tasks[0].Due)

	require.NoError(t, s.SetDueDate(id, sql.NullTime{}))
	tasks, err = s.ListTasks()
	require.NoError(t, err)
	assert.False(t, tasks[0].Due.Valid)
}

func TestDeleteTask(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Insert("keep", sql.NullTime{}))
	require.NoError(t, s.Insert("drop", sql.NullTime{}))
	tasks, err := s.ListTasks()
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(tasks[1].ID))
	tasks, err = s.ListTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "keep", tasks[0].Title)

	require.NoError(t, s.Insert("next", sql.NullTime{}))
	tasks, err = s.ListTasks()
	require.NoError(t, err)
	assert.Greater(t, tasks[1].ID, tasks[0].ID+1, "ids are never reused")
}

func TestOpen_AddsMissingDueColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	raw, err := sql.Open("sqlite", sqliteDSN(path))
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO tasks (title, created_at) VALUES ('legacy', '2024-01-01T00:00:00Z');`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tasks, err := s.ListTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "legacy", tasks[0].Title)
	assert.False(t, tasks[0].Due.Valid)

	require.NoError(t, s.SetDueDate(tasks[0].ID, date(2024, time.February, 29)))
	tasks, err = s.ListTasks()
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), tasks[0].Due)

	ok, err := s.hasColumn("tasks", "due")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.hasColumn("tasks", "priority")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ensureTaskColumns(), "second upgrade is a no-op")
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:memdb?mode=memory", sqliteDSN("file:memdb?mode=memory"))

	dsn := sqliteDSN("/tmp/codex/todo.db")
	assert.Contains(t, dsn, "file://")
	assert.Contains(t, dsn, "/tmp/codex/todo.db")
	assert.Contains(t, dsn, "mode=rwc")
}

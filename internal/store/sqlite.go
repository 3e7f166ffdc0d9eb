package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"turbine-topology/internal/farm"
)

// Migration is one schema step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations are applied in order on open.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "projects, turbines, tasks",
		SQL: `
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS turbines (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	code         TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	loc_x        REAL NOT NULL DEFAULT 0,
	loc_y        REAL NOT NULL DEFAULT 0,
	seq          INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	type        TEXT NOT NULL DEFAULT '',
	seq         INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS task_turbines (
	task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	turbine_id TEXT NOT NULL,
	seq        INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (task_id, turbine_id)
);
CREATE INDEX IF NOT EXISTS idx_turbines_project ON turbines(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`,
	},
}

// SQLite is a Source backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens (or creates) the database at path and applies pending
// migrations.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db %q: %w", path, err)
	}
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("store: set pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	const createMigTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		description TEXT
	)`
	if _, err := s.db.Exec(createMigTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	for _, m := range Migrations {
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration v%d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}
		if _, err := s.db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration v%d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, description) VALUES (?, ?)", m.Version, m.Description); err != nil {
			return fmt.Errorf("record migration v%d: %w", m.Version, err)
		}
	}
	return nil
}

// Import upserts a dataset in one transaction.
func (s *SQLite) Import(ctx context.Context, d Dataset) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, p := range d.Projects {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, description) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description`,
			p.ID, p.Name, p.Description); err != nil {
			return fmt.Errorf("store: import project %s: %w", p.ID, err)
		}
	}
	for i, t := range d.Turbines {
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO turbines (id, project_id, code, display_name, loc_x, loc_y, seq) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ProjectID, t.Code, t.DisplayName, t.Location.X, t.Location.Y, i); err != nil {
			return fmt.Errorf("store: import turbine %s: %w", t.ID, err)
		}
	}
	for i, t := range d.Tasks {
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO tasks (id, project_id, name, description, start_date, end_date, status, type, seq) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ProjectID, t.Name, t.Description, t.StartDate, t.EndDate, string(t.Status), t.Type, i); err != nil {
			return fmt.Errorf("store: import task %s: %w", t.ID, err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM task_turbines WHERE task_id = ?`, t.ID); err != nil {
			return fmt.Errorf("store: reset links for %s: %w", t.ID, err)
		}
		for j, tid := range t.TurbineIDs {
			if _, err = tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO task_turbines (task_id, turbine_id, seq) VALUES (?, ?, ?)`,
				t.ID, tid, j); err != nil {
				return fmt.Errorf("store: link task %s: %w", t.ID, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit import: %w", err)
	}
	return nil
}

func (s *SQLite) Projects(ctx context.Context) ([]farm.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()
	var out []farm.Project
	for rows.Next() {
		var p farm.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("store: scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) Project(ctx context.Context, id string) (farm.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p farm.Project
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return farm.Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return farm.Project{}, fmt.Errorf("store: get project %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLite) Turbines(ctx context.Context, projectID string) ([]farm.Turbine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, code, display_name, loc_x, loc_y FROM turbines WHERE project_id = ? ORDER BY seq, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list turbines: %w", err)
	}
	defer rows.Close()
	var out []farm.Turbine
	for rows.Next() {
		var t farm.Turbine
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Code, &t.DisplayName, &t.Location.X, &t.Location.Y); err != nil {
			return nil, fmt.Errorf("store: scan turbine: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) Tasks(ctx context.Context, projectID string) ([]farm.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, description, start_date, end_date, status, type FROM tasks WHERE project_id = ? ORDER BY seq, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	var out []farm.Task
	index := make(map[string]int)
	for rows.Next() {
		var t farm.Task
		var status string
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &status, &t.Type); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan task: %w", err)
		}
		t.Status = farm.TaskStatus(status)
		index[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	links, err := s.db.QueryContext(ctx,
		`SELECT tt.task_id, tt.turbine_id FROM task_turbines tt JOIN tasks t ON t.id = tt.task_id
		 WHERE t.project_id = ? ORDER BY tt.task_id, tt.seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list task links: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var taskID, turbineID string
		if err := links.Scan(&taskID, &turbineID); err != nil {
			return nil, fmt.Errorf("store: scan task link: %w", err)
		}
		if i, ok := index[taskID]; ok {
			out[i].TurbineIDs = append(out[i].TurbineIDs, turbineID)
		}
	}
	return out, links.Err()
}

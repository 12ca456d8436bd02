package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// tasks.parent_id deliberately carries no foreign key: deleting a parent
// leaves its children in place with the old parent id.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	handle          TEXT NOT NULL UNIQUE,
	display_name    TEXT NOT NULL DEFAULT '',
	credential_hash TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL DEFAULT 'engineer'
		CHECK(role IN ('engineer', 'supervisor', 'admin')),
	created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	assignee        TEXT NOT NULL DEFAULT '',
	owner_id        INTEGER REFERENCES users(id) ON DELETE SET NULL,
	category        TEXT,
	priority        TEXT NOT NULL DEFAULT 'medium'
		CHECK(priority IN ('low', 'medium', 'high', 'critical')),
	status          TEXT NOT NULL DEFAULT 'pending'
		CHECK(status IN ('pending', 'in_progress', 'completed', 'on_hold')),
	estimated_hours REAL NOT NULL DEFAULT 0 CHECK(estimated_hours >= 0),
	actual_hours    REAL NOT NULL DEFAULT 0 CHECK(actual_hours >= 0),
	parent_id       INTEGER,
	created_at      DATETIME NOT NULL,
	completed_at    DATETIME,
	started_at      DATETIME,
	ended_at        DATETIME
);

CREATE TABLE IF NOT EXISTS time_entries (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id        INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id        INTEGER NOT NULL REFERENCES users(id),
	start_time     DATETIME NOT NULL,
	end_time       DATETIME,
	duration_hours REAL,
	notes          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_parent_id ON tasks(parent_id);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);
CREATE INDEX IF NOT EXISTS idx_time_entries_task_id ON time_entries(task_id);

-- One running timer per subject.
CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_open_per_user
	ON time_entries(user_id) WHERE end_time IS NULL;

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS equipment (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	planned_hours  REAL NOT NULL DEFAULT 0,
	downtime_hours REAL NOT NULL DEFAULT 0,
	actual_output  INTEGER NOT NULL DEFAULT 0,
	good_units     INTEGER NOT NULL DEFAULT 0,
	standard_rate  REAL NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL,
	CHECK(good_units <= actual_output)
);

CREATE INDEX IF NOT EXISTS idx_equipment_name ON equipment(name);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	set_date   DATETIME,
	is_done    INTEGER NOT NULL DEFAULT 0 CHECK(is_done IN (0, 1)),
	time_state TEXT NOT NULL DEFAULT 'NoDate',
	repeat     TEXT NOT NULL DEFAULT 'No repeat',
	list_type  TEXT NOT NULL DEFAULT 'Default',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_list_type ON entries(list_type);
CREATE INDEX IF NOT EXISTS idx_entries_is_done ON entries(is_done);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
CREATE INDEX IF NOT EXISTS idx_entries_time_state ON entries(time_state);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create keyval",
		SQL: `
			CREATE TABLE keyval (
				key         TEXT PRIMARY KEY,
				value       TEXT NOT NULL,
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
}

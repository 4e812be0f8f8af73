// Package sqlite implements the SQLite record store for forage.
package sqlite

// Table and file names owned by the backend.
const (
	tableForageables = "forageables"
	forageablesJSONL = "forageables.jsonl"

	// Each attached Backend owns one database file, named with a random
	// UUID and removed on Detach.
	databaseFilePattern = "forage-%s.db"
)

// Schema DDL. AUTOINCREMENT keeps SQLite from reusing the id of a deleted
// row while the database is open.
const (
	createForageables = `CREATE TABLE forageables (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    address TEXT NOT NULL,
    in_season INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT ''
);`

	idxForageablesName = `CREATE INDEX idx_forageables_name ON forageables(name);`
)

// schemaDDL lists all statements executed on Attach, in order.
var schemaDDL = []string{
	createForageables,
	idxForageablesName,
}

// forageableColumns is the column list shared by every SELECT.
const forageableColumns = "id, name, address, in_season, notes"

package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/forage/pkg/types"
)

// loadForageablesJSONL reads forageables.jsonl from dataDir and inserts every
// record into the forageables table inside one transaction, so loading
// either completes or leaves the table unchanged. With replace set, existing
// rows are deleted first in the same transaction. Returns the number of rows
// in the table afterwards.
func loadForageablesJSONL(db *sql.DB, dataDir string, replace bool) (int, error) {
	records, err := readJSONL(filepath.Join(dataDir, forageablesJSONL))
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.Exec("DELETE FROM forageables"); err != nil {
			return 0, fmt.Errorf("clearing forageables: %w", err)
		}
	}

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO forageables (" + forageableColumns + ") VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("preparing load insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range keyedFirst(decodeForageables(records)) {
		if _, err := stmt.Exec(nullableID(f), f.Name, f.Address, f.InSeason, f.Notes); err != nil {
			continue
		}
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM forageables").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting loaded forageables: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return count, nil
}

// decodeForageables converts JSONL records, skipping any that do not decode.
// Unknown JSON fields are ignored.
func decodeForageables(records []json.RawMessage) []types.Forageable {
	fs := make([]types.Forageable, 0, len(records))
	for _, rec := range records {
		var r forageableJSON
		if err := json.Unmarshal(rec, &r); err != nil {
			continue
		}
		fs = append(fs, r.forageable())
	}
	return fs
}

// keyedFirst orders records that carry an ID ahead of new ones, keeping the
// relative order within each group. Inserting in this order means an ID the
// store assigns to a new record can never be claimed by a later keyed
// record.
func keyedFirst(fs []types.Forageable) []types.Forageable {
	out := make([]types.Forageable, 0, len(fs))
	for _, f := range fs {
		if !f.IsNew() {
			out = append(out, f)
		}
	}
	for _, f := range fs {
		if f.IsNew() {
			out = append(out, f)
		}
	}
	return out
}

// nullableID maps an unassigned ID to NULL so SQLite assigns the next rowid.
func nullableID(f types.Forageable) any {
	if f.IsNew() {
		return nil
	}
	return f.ID
}

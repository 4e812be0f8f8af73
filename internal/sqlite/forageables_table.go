package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/forage/internal/events"
	"github.com/mesh-intelligence/forage/pkg/types"
)

// Compile-time interface check.
var _ types.ForageableDAO = (*forageablesTable)(nil)

// forageablesTable implements types.ForageableDAO. Reads hydrate rows into
// types.Forageable; writes publish a change event and persist
// forageables.jsonl according to the sync strategy.
type forageablesTable struct {
	backend *Backend
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanForageable(row rowScanner) (*types.Forageable, error) {
	var f types.Forageable
	if err := row.Scan(&f.ID, &f.Name, &f.Address, &f.InSeason, &f.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scanning forageable: %w", err)
	}
	return &f, nil
}

// List returns all forageables ordered by name.
func (t *forageablesTable) List(ctx context.Context) ([]types.Forageable, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}
	return t.list(ctx)
}

func (t *forageablesTable) list(ctx context.Context) ([]types.Forageable, error) {
	rows, err := t.backend.db.QueryContext(ctx,
		"SELECT "+forageableColumns+" FROM forageables ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing forageables: %w", err)
	}
	defer rows.Close()

	results := []types.Forageable{}
	for rows.Next() {
		f, err := scanForageable(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating forageables: %w", err)
	}
	return results, nil
}

// Get retrieves a forageable by ID.
// Returns ErrInvalidID for a non-positive id and ErrNotFound if absent.
func (t *forageablesTable) Get(ctx context.Context, id int64) (*types.Forageable, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}
	row := t.backend.db.QueryRowContext(ctx,
		"SELECT "+forageableColumns+" FROM forageables WHERE id = ?", id)
	f, err := scanForageable(row)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting forageable %d: %w", id, err)
	}
	return f, nil
}

// Insert stores f with INSERT OR REPLACE semantics and returns its ID.
func (t *forageablesTable) Insert(ctx context.Context, f types.Forageable) (int64, error) {
	if f.ID < 0 {
		return 0, types.ErrInvalidID
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return 0, types.ErrStoreDetached
	}

	res, err := t.backend.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO forageables ("+forageableColumns+") VALUES (?, ?, ?, ?, ?)",
		nullableID(f), f.Name, f.Address, f.InSeason, f.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting forageable: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}

	if err := t.backend.changed(ctx, events.OpInsert, id); err != nil {
		return id, err
	}
	return id, nil
}

// Update replaces the fields of the row matching f.ID. A missing row is not
// an error and publishes no change.
func (t *forageablesTable) Update(ctx context.Context, f types.Forageable) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.ExecContext(ctx,
		"UPDATE forageables SET name = ?, address = ?, in_season = ?, notes = ? WHERE id = ?",
		f.Name, f.Address, f.InSeason, f.Notes, f.ID,
	)
	if err != nil {
		return fmt.Errorf("updating forageable %d: %w", f.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	return t.backend.changed(ctx, events.OpUpdate, f.ID)
}

// Delete removes the row matching f.ID. A missing row is not an error.
func (t *forageablesTable) Delete(ctx context.Context, f types.Forageable) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.ExecContext(ctx, "DELETE FROM forageables WHERE id = ?", f.ID)
	if err != nil {
		return fmt.Errorf("deleting forageable %d: %w", f.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	return t.backend.changed(ctx, events.OpDelete, f.ID)
}

package sqlite

import "github.com/mesh-intelligence/forage/pkg/types"

// forageableJSON is one line of forageables.jsonl. Field names match the
// SQLite columns so the loader can map records without a translation table.
type forageableJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	InSeason bool   `json:"in_season"`
	Notes    string `json:"notes"`
}

func toForageableJSON(f types.Forageable) forageableJSON {
	return forageableJSON{
		ID:       f.ID,
		Name:     f.Name,
		Address:  f.Address,
		InSeason: f.InSeason,
		Notes:    f.Notes,
	}
}

func (r forageableJSON) forageable() types.Forageable {
	return types.Forageable{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address,
		InSeason: r.InSeason,
		Notes:    r.Notes,
	}
}

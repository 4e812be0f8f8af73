package types

import "strings"

// Forageable describes one foraging location.
type Forageable struct {
	ID       int64  `json:"id"`        // Assigned by the store on insert; 0 until persisted.
	Name     string `json:"name"`      // Short label, required for a valid entry.
	Address  string `json:"address"`   // Free-text location, required for a valid entry.
	InSeason bool   `json:"in_season"` // Whether the forageable is currently in season.
	Notes    string `json:"notes"`     // Optional.
}

// IsNew reports whether the forageable has not been assigned an ID yet.
// Non-positive IDs count as unassigned.
func (f Forageable) IsNew() bool {
	return f.ID <= 0
}

// IsBlank reports whether s is empty or contains only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

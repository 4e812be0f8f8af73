package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/forage/pkg/types"
)

// Export writes every forageable to w as JSONL, in name order, and returns
// the number of records written.
func Export(ctx context.Context, dao types.ForageableDAO, w io.Writer) (int, error) {
	all, err := dao.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing forageables: %w", err)
	}

	records := make([]json.RawMessage, 0, len(all))
	for _, f := range all {
		data, err := json.Marshal(toForageableJSON(f))
		if err != nil {
			return 0, fmt.Errorf("marshaling forageable %d: %w", f.ID, err)
		}
		records = append(records, data)
	}
	if err := encodeJSONL(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Import inserts each JSONL record read from r. Records carrying an id
// replace the stored row with that id and are applied before records
// without one, which then get new ids. Malformed lines are skipped. Returns
// the number of records inserted.
func Import(ctx context.Context, dao types.ForageableDAO, r io.Reader) (int, error) {
	records, err := decodeJSONL(r)
	if err != nil {
		return 0, fmt.Errorf("reading import: %w", err)
	}

	imported := 0
	for _, f := range keyedFirst(decodeForageables(records)) {
		if f.IsNew() {
			f.ID = 0
		}
		if _, err := dao.Insert(ctx, f); err != nil {
			return imported, fmt.Errorf("importing %q: %w", f.Name, err)
		}
		imported++
	}
	return imported, nil
}

package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSchemaDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range schemaDDL {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestLoadForageablesJSONL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "no file",
			content: "",
			want:    0,
		},
		{
			name: "well formed",
			content: `{"id":1,"name":"Morel","address":"Oak","in_season":true,"notes":""}
{"id":2,"name":"Acorn","address":"Park","in_season":false,"notes":"leach"}
`,
			want: 2,
		},
		{
			name: "duplicate id counted once",
			content: `{"id":1,"name":"Morel","address":"Oak","in_season":true,"notes":""}
{"id":1,"name":"Black Morel","address":"Ash","in_season":false,"notes":""}
`,
			want: 1,
		},
		{
			name: "wrong field types skipped",
			content: `{"id":"one","name":"Morel"}
{"id":2,"name":"Acorn","address":"Park","in_season":false,"notes":""}
`,
			want: 1,
		},
		{
			name:    "unknown fields ignored",
			content: `{"id":4,"name":"Sumac","address":"Road","in_season":false,"notes":"","color":"red"}` + "\n",
			want:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, forageablesJSONL), []byte(tt.content), 0o644))
			}
			db := openSchemaDB(t)

			n, err := loadForageablesJSONL(db, dir, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestLoadDuplicateIDLastWins(t *testing.T) {
	dir := t.TempDir()
	content := `{"id":1,"name":"Morel","address":"Oak","in_season":true,"notes":""}
{"id":1,"name":"Black Morel","address":"Ash","in_season":false,"notes":""}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, forageablesJSONL), []byte(content), 0o644))
	db := openSchemaDB(t)

	_, err := loadForageablesJSONL(db, dir, false)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM forageables").Scan(&count))
	assert.Equal(t, 1, count)

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM forageables WHERE id = 1").Scan(&name))
	assert.Equal(t, "Black Morel", name)
}

func TestLoadNewRecordsDoNotCollideWithLaterIDs(t *testing.T) {
	dir := t.TempDir()
	content := `{"name":"Acorn","address":"Park","in_season":false,"notes":""}
{"id":1,"name":"Morel","address":"Oak","in_season":true,"notes":""}
{"name":"Nettle","address":"Ditch","in_season":false,"notes":""}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, forageablesJSONL), []byte(content), 0o644))
	db := openSchemaDB(t)

	n, err := loadForageablesJSONL(db, dir, false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM forageables WHERE id = 1").Scan(&name))
	assert.Equal(t, "Morel", name, "keyed record keeps its id")

	rows, err := db.Query("SELECT name FROM forageables WHERE id > 1 ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()
	var assigned []string
	for rows.Next() {
		require.NoError(t, rows.Scan(&name))
		assigned = append(assigned, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Acorn", "Nettle"}, assigned, "new records keep file order")
}

func TestLoadReplaceClearsExistingRows(t *testing.T) {
	dir := t.TempDir()
	db := openSchemaDB(t)
	_, err := db.Exec("INSERT INTO forageables (" + forageableColumns + ") VALUES (9, 'Gone', 'x', 0, '')")
	require.NoError(t, err)

	content := `{"id":2,"name":"Sumac","address":"Road","in_season":false,"notes":""}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, forageablesJSONL), []byte(content), 0o644))

	n, err := loadForageablesJSONL(db, dir, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM forageables WHERE id = 9").Scan(&count))
	assert.Zero(t, count)
}

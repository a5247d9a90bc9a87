package storage

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/fallbackdb/internal/catalog"
	"github.com/tuannm99/fallbackdb/internal/record"
)

const testDir = "/data/.mockdb-data"

func sampleSnapshot() catalog.Snapshot {
	created := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	row := record.NewRow(
		[]string{"id", "created_at", "amount", "status"},
		[]record.Value{record.Int(1), record.Time(created), record.Int(50000), record.String("pending")},
	)
	return catalog.Snapshot{
		Tables: map[string][]record.Row{
			"payments": {row},
			"users":    {},
		},
		Schemas: map[string]string{
			"payments": "CREATE TABLE payments (id SERIAL PRIMARY KEY, amount INT, status TEXT)",
		},
		Sequences: map[string]int64{"payments": 2, "users": 1},
	}
}

func TestFileSet_SaveFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := NewFileSet(fs, testDir)
	require.NoError(t, files.Save(sampleSnapshot()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, name := range []string{TablesFile, SchemasFile, SequencesFile} {
		data, err := afero.ReadFile(fs, filepath.Join(testDir, name))
		require.NoError(t, err)
		g.Assert(t, name, data)
	}
}

func TestFileSet_SaveLeavesNoTempFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := NewFileSet(fs, testDir)
	require.NoError(t, files.Save(sampleSnapshot()))
	require.NoError(t, files.Save(sampleSnapshot()))

	entries, err := afero.ReadDir(fs, testDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{TablesFile, SchemasFile, SequencesFile}, names)
}

func TestFileSet_LoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := NewFileSet(fs, testDir)
	require.NoError(t, files.Save(sampleSnapshot()))

	snap, found, err := files.Load()
	require.NoError(t, err)
	require.True(t, found)

	require.Len(t, snap.Tables["payments"], 1)
	row := snap.Tables["payments"][0]
	assert.Equal(t, []string{"id", "created_at", "amount", "status"}, row.Columns())
	assert.Equal(t, record.Int(50000), row.Lookup("amount"))
	// timestamps come back as text; the catalog turns them into times
	assert.Equal(t, record.String("2025-01-15T09:30:00Z"), row.Lookup("created_at"))

	assert.Empty(t, snap.Tables["users"])
	assert.Equal(t, int64(2), snap.Sequences["payments"])
	assert.Contains(t, snap.Schemas["payments"], "SERIAL PRIMARY KEY")
}

func TestFileSet_LoadMissing(t *testing.T) {
	files := NewFileSet(afero.NewMemMapFs(), testDir)

	snap, found, err := files.Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, snap.Tables)
}

func TestFileSet_LoadWithoutSequences(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDir, TablesFile), []byte(`{"logs":[{"id":4}]}`), FileMode0644))

	snap, found, err := NewFileSet(fs, testDir).Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, snap.Tables["logs"], 1)
	assert.Nil(t, snap.Sequences)
}

func TestFileSet_LoadCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDir, TablesFile), []byte("{not json"), FileMode0644))

	_, found, err := NewFileSet(fs, testDir).Load()
	require.Error(t, err)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestFileSet_SaveReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := NewFileSet(fs, testDir).Save(sampleSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "mkdir", perr.Op)
}

func TestFileSet_SaveUnencodable(t *testing.T) {
	fs := afero.NewMemMapFs()
	snap := sampleSnapshot()
	snap.Tables["payments"] = []record.Row{
		record.NewRow([]string{"ratio"}, []record.Value{record.Float(math.NaN())}),
	}

	err := NewFileSet(fs, testDir).Save(snap)
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "encode", perr.Op)

	exists, err := afero.DirExists(fs, testDir)
	require.NoError(t, err)
	assert.False(t, exists)
}

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blueprintfinder/sdeexport/pkg/sde"
	"github.com/blueprintfinder/sdeexport/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blueprintsYAML = `
A:
  blueprintTypeID: 100
  activities:
    manufacturing:
      materials:
        - typeID: 1
          quantity: 2
      products:
        - typeID: 100
          quantity: 1
`

const typesYAML = `
100:
  name:
    en: Widget
1:
  name:
    en: Ore
    de: Erz
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixtureOptions(t *testing.T, blueprints, types string) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		BlueprintsPath: writeFixture(t, dir, "blueprints.yaml", blueprints),
		TypesPath:      writeFixture(t, dir, "typeIDs.yaml", types),
		OutputPath:     filepath.Join(dir, "export.json"),
	}
}

func TestRunEndToEnd(t *testing.T) {
	opts := fixtureOptions(t, blueprintsYAML, typesYAML)

	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, &Summary{
		BlueprintsRead:     1,
		BlueprintsExported: 1,
		TypesRead:          2,
		NamesExported:      2,
		BytesWritten:       sum.BytesWritten,
	}, sum)

	got, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, len(got), sum.BytesWritten)
	assert.JSONEq(t, `{
		"blueprints": [[100, [[1, 2]], [[100, 1]]]],
		"names": [
			[100, ["Widget", "", 1, 1, 1, 1, 1]],
			[1, ["Ore", "Erz", "", 2, 2, 2, 2]]
		]
	}`, string(got))
}

func TestRunFilteringAndReferentialCompleteness(t *testing.T) {
	blueprints := `
10:
  blueprintTypeID: 10
  activities:
    manufacturing:
      materials:
        - {typeID: 11, quantity: 1}
20:
  blueprintTypeID: 20
  activities:
    reaction:
      materials:
        - {typeID: 21, quantity: 1}
      products:
        - {typeID: 22, quantity: 1}
30:
  blueprintTypeID: 30
  activities:
    manufacturing:
      materials:
        - {typeID: 31, quantity: 4}
        - {typeID: 11, quantity: 2}
      products:
        - {typeID: 32, quantity: 1}
`
	types := `
10: {name: {en: Ten}}
11: {name: {en: Eleven}}
30: {name: {en: Thirty}}
32: {name: {en: Thirty-two, fr: Trente-deux}}
99: {name: {en: Unused}}
`
	opts := fixtureOptions(t, blueprints, types)

	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.BlueprintsExported)

	got, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	// Dropped blueprint 10 still names its own type and its material.
	assert.JSONEq(t, `{
		"blueprints": [[30, [[31, 4], [11, 2]], [[32, 1]]]],
		"names": [
			[10, ["Ten", "", 1, 1, 1, 1, 1]],
			[11, ["Eleven", "", 1, 1, 1, 1, 1]],
			[20, ["", 0, 0, 0, 0, 0, 0]],
			[30, ["Thirty", "", 1, 1, 1, 1, 1]],
			[31, ["", 0, 0, 0, 0, 0, 0]],
			[32, ["Thirty-two", "", 1, "Trente-deux", 1, 1, 1]]
		]
	}`, string(got))
}

func TestRunIsDeterministic(t *testing.T) {
	opts := fixtureOptions(t, blueprintsYAML+`
B:
  blueprintTypeID: 200
  activities:
    manufacturing:
      materials: [{typeID: 3, quantity: 1}, {typeID: 1, quantity: 5}]
      products: [{typeID: 201, quantity: 2}]
`, typesYAML)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRunMissingFieldWritesNothing(t *testing.T) {
	opts := fixtureOptions(t, blueprintsYAML+`
broken:
  activities: {}
`, typesYAML)
	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("previous"), 0o644))

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sde.ErrMissingRequiredField))
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), opts.BlueprintsPath)

	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestRunSourceErrors(t *testing.T) {
	t.Run("unreadable types", func(t *testing.T) {
		opts := fixtureOptions(t, blueprintsYAML, typesYAML)
		opts.TypesPath = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := Run(context.Background(), opts)
		assert.True(t, errors.Is(err, sde.ErrSourceUnreadable))
		_, statErr := os.Stat(opts.OutputPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("malformed blueprints", func(t *testing.T) {
		opts := fixtureOptions(t, "A: [oops", typesYAML)

		_, err := Run(context.Background(), opts)
		assert.True(t, errors.Is(err, sde.ErrSourceMalformed))
		_, statErr := os.Stat(opts.OutputPath)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestRunWritesSQLite(t *testing.T) {
	opts := fixtureOptions(t, blueprintsYAML, typesYAML)
	opts.SQLitePath = filepath.Join(t.TempDir(), "export.sqlite")

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	db, err := storage.Open(opts.SQLitePath)
	require.NoError(t, err)
	defer db.Close()

	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Blueprints)
	assert.Equal(t, 2, stats.Types)

	matches, err := db.FindTypesByName(context.Background(), "Erz")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].TypeID)
}

func TestRunSQLiteFailureKeepsPreviousExport(t *testing.T) {
	opts := fixtureOptions(t, blueprintsYAML, typesYAML)
	previous := []byte(`{"blueprints":[],"names":[]}`)
	require.NoError(t, os.WriteFile(opts.OutputPath, previous, 0o644))

	// A regular file where the database directory should be.
	dir := t.TempDir()
	blocker := writeFixture(t, dir, "blocker", "not a directory")
	opts.SQLitePath = filepath.Join(blocker, "export.sqlite")

	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, previous, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunReplacesSQLite(t *testing.T) {
	opts := fixtureOptions(t, blueprintsYAML, typesYAML)
	dir := t.TempDir()
	opts.SQLitePath = filepath.Join(dir, "export.sqlite")

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	_, err = Run(context.Background(), opts)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "staging files are cleaned up")
	}

	db, err := storage.Open(opts.SQLitePath)
	require.NoError(t, err)
	defer db.Close()
	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Blueprints)
}

func TestOptionsDefaults(t *testing.T) {
	got := Options{}.withDefaults()
	assert.Equal(t, Options{
		BlueprintsPath: "data/blueprints.yaml",
		TypesPath:      "data/typeIDs.yaml",
		OutputPath:     "data/export.json",
	}, got)
}

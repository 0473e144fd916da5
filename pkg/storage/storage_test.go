package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/export"
	"github.com/blueprintfinder/sdeexport/pkg/names"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "export.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testDocument() *export.Document {
	return export.NewDocument(
		[]collector.Entry{
			{
				TypeID:    1000,
				Materials: []collector.Item{{TypeID: 34, Quantity: 10}, {TypeID: 35, Quantity: 2}},
				Products:  []collector.Item{{TypeID: 2000, Quantity: 1}},
			},
			{
				TypeID:    1001,
				Materials: []collector.Item{{TypeID: 34, Quantity: 1}},
				Products:  []collector.Item{{TypeID: 2001, Quantity: 1}},
			},
		},
		[]names.Entry{
			{TypeID: 34, Names: names.Compress(map[string]string{"en": "Tritanium", "de": "Tritanium", "ja": "トリタニウム"})},
			{TypeID: 35, Names: names.Compress(map[string]string{"en": "Pyerite", "fr": "Pyérite"})},
			{TypeID: 2000, Names: names.Compress(nil)},
		},
	)
}

func TestReplaceExportAndStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.ReplaceExport(ctx, testDocument()))
	// A second run replaces rather than accumulates.
	require.NoError(t, db.ReplaceExport(ctx, testDocument()))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Blueprints)
	assert.Equal(t, 3, stats.Materials)
	assert.Equal(t, 2, stats.Products)
	assert.Equal(t, 3, stats.Types)
	assert.Equal(t, []LanguageStats{
		{Language: "en", Named: 2},
		{Language: "de", Named: 1},
		{Language: "es", Named: 0},
		{Language: "fr", Named: 1},
		{Language: "ja", Named: 1},
		{Language: "ru", Named: 0},
		{Language: "zh", Named: 0},
	}, stats.Languages)
}

func TestEmptyDatabaseStats(t *testing.T) {
	db := openTestDB(t)

	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Blueprints)
	assert.Zero(t, stats.Types)
	assert.Empty(t, stats.Languages)
}

func TestFindTypesByName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.ReplaceExport(ctx, testDocument()))

	got, err := db.FindTypesByName(ctx, "Tritanium")
	require.NoError(t, err)
	assert.Equal(t, []NameMatch{
		{TypeID: 34, Language: "en", Name: "Tritanium"},
		{TypeID: 34, Language: "de", Name: "Tritanium"},
	}, got)

	got, err = db.FindTypesByName(ctx, "Pyérite")
	require.NoError(t, err)
	assert.Equal(t, []NameMatch{{TypeID: 35, Language: "fr", Name: "Pyérite"}}, got)

	got, err = db.FindTypesByName(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBlueprintsUsing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.ReplaceExport(ctx, testDocument()))

	got, err := db.BlueprintsUsing(ctx, 34)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 1001}, got)

	got, err = db.BlueprintsUsing(ctx, 2000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

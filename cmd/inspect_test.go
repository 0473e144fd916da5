package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/export"
	"github.com/blueprintfinder/sdeexport/pkg/names"
	"github.com/stretchr/testify/require"
)

func TestPrintInspection(t *testing.T) {
	doc := export.NewDocument(
		[]collector.Entry{{
			TypeID:    100,
			Materials: []collector.Item{{TypeID: 1, Quantity: 2}},
			Products:  []collector.Item{{TypeID: 101, Quantity: 1}},
		}},
		[]names.Entry{
			{TypeID: 100, Names: names.Compress(map[string]string{"en": "Widget Blueprint"})},
			{TypeID: 1, Names: names.Compress(map[string]string{"en": "Ore", "de": "Erz"})},
			{TypeID: 101, Names: names.Compress(map[string]string{"en": "Widget"})},
		},
	)
	data, err := export.Marshal(doc)
	require.NoError(t, err)
	idx, err := export.OpenIndex(data)
	require.NoError(t, err)

	ins, err := idx.Inspect(100)
	require.NoError(t, err)

	var out bytes.Buffer
	printInspection(&out, idx, ins, "de")
	got := out.String()

	for _, want := range []string{"TYPE  100", "en    Widget Blueprint", "--> Blueprint", "Erz", "Widget"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output is missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "--> Used by") {
		t.Fatalf("unexpected consumers section:\n%s", got)
	}
}

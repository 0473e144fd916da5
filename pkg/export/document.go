// Package export writes the combined blueprint/name document and reads it
// back for inspection.
package export

import (
	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/names"
)

// Document is the single output of an export run.
type Document struct {
	Blueprints []collector.Entry `json:"blueprints"`
	Names      []names.Entry     `json:"names"`
}

// NewDocument combines the collector and compressor outputs. Nil inputs are
// replaced with empty slices so both fields always encode as JSON arrays.
func NewDocument(blueprints []collector.Entry, nameEntries []names.Entry) *Document {
	if blueprints == nil {
		blueprints = []collector.Entry{}
	}
	if nameEntries == nil {
		nameEntries = []names.Entry{}
	}
	return &Document{Blueprints: blueprints, Names: nameEntries}
}

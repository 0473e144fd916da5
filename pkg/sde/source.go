package sde

import (
	"errors"
	"fmt"
	"os"

	"github.com/blueprintfinder/sdeexport/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// LoadBlueprints reads a blueprints document and returns its records in
// document order.
func LoadBlueprints(path string) ([]Blueprint, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return ParseBlueprints(path, data)
}

// LoadTypes reads a type-records document.
func LoadTypes(path string) (Types, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return ParseTypes(path, data)
}

// ParseBlueprints decodes a blueprints document. name is only used to give
// errors context.
func ParseBlueprints(name string, data []byte) ([]Blueprint, error) {
	pairs, err := topLevelPairs(name, data)
	if err != nil {
		return nil, err
	}

	out := make([]Blueprint, 0, len(pairs))
	for _, p := range pairs {
		var rec blueprintRecord
		if err := p.value.Decode(&rec); err != nil {
			return nil, &SourceError{Kind: ErrSourceMalformed, Path: name, Key: p.key.Value, Err: err}
		}
		out = append(out, Blueprint{
			Key:             p.key.Value,
			BlueprintTypeID: rec.BlueprintTypeID,
			Materials:       rec.Activities.Manufacturing.Materials,
			Products:        rec.Activities.Manufacturing.Products,
		})
	}
	return out, nil
}

// ParseTypes decodes a type-records document. Keys must be integers.
func ParseTypes(name string, data []byte) (Types, error) {
	pairs, err := topLevelPairs(name, data)
	if err != nil {
		return nil, err
	}

	out := make(Types, len(pairs))
	seen := make(map[int64]string, len(pairs))
	for _, p := range pairs {
		id, err := cast.ToInt64E(p.key.Value)
		if err != nil {
			return nil, &SourceError{Kind: ErrSourceMalformed, Path: name, Key: p.key.Value, Err: fmt.Errorf("type ID is not an integer: %w", err)}
		}
		// 34 and 0x22 are different keys to YAML but the same type.
		if prev, dup := seen[id]; dup {
			return nil, &SourceError{Kind: ErrSourceMalformed, Path: name, Key: p.key.Value, Err: fmt.Errorf("type ID %d already defined by key %q", id, prev)}
		}
		seen[id] = p.key.Value
		var rec TypeRecord
		if err := p.value.Decode(&rec); err != nil {
			return nil, &SourceError{Kind: ErrSourceMalformed, Path: name, Key: p.key.Value, Err: err}
		}
		out[id] = rec
	}
	return out, nil
}

func readSource(path string) ([]byte, error) {
	utils.Log.WithField("file", path).Debug("Reading source")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Kind: ErrSourceUnreadable, Path: path, Err: err}
	}
	utils.Log.WithField("file", path).Debugf("Read %s", humanize.Bytes(uint64(len(data))))
	return data, nil
}

type mappingPair struct {
	key   *yaml.Node
	value *yaml.Node
}

// topLevelPairs parses data and returns the key/value nodes of its top-level
// mapping in document order. An empty document has no pairs; a key that
// appears twice is malformed.
func topLevelPairs(name string, data []byte) ([]mappingPair, error) {
	utils.Log.WithField("file", name).Debug("Parsing source")

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &SourceError{Kind: ErrSourceMalformed, Path: name, Err: err}
	}
	if root.Kind == 0 {
		return nil, nil
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, nil
		}
		doc = doc.Content[0]
	}
	if doc.Kind == yaml.AliasNode && doc.Alias != nil {
		doc = doc.Alias
	}
	if doc.Kind == yaml.ScalarNode && doc.ShortTag() == "!!null" {
		return nil, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, &SourceError{Kind: ErrSourceMalformed, Path: name, Err: errors.New("top level is not a mapping")}
	}

	pairs := make([]mappingPair, 0, len(doc.Content)/2)
	seen := make(map[string]struct{}, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if _, dup := seen[key.Value]; dup {
			return nil, &SourceError{Kind: ErrSourceMalformed, Path: name, Key: key.Value, Err: errors.New("duplicate key")}
		}
		seen[key.Value] = struct{}{}
		pairs = append(pairs, mappingPair{key: key, value: doc.Content[i+1]})
	}
	return pairs, nil
}

package export

import (
	"errors"
	"fmt"

	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/names"
	"github.com/blueprintfinder/sdeexport/pkg/sde"
	"github.com/tidwall/gjson"
)

var (
	ErrMalformedExport = errors.New("malformed export document")
	ErrTypeNotFound    = errors.New("type not found in export")
)

// Index is a read-side view over an export document, keyed the way the
// blueprint finder front-end looks things up.
type Index struct {
	Blueprints []collector.Entry

	names        map[int64]names.Compressed
	byType       map[int64]int
	byProduct    map[int64]int
	consumersOf  map[int64][]int64
	namesInOrder []int64
	// byName maps an expanded name to the type carrying it per language
	// index.
	byName map[string]map[int]int64
}

// Inspection gathers everything an export knows about one type.
type Inspection struct {
	TypeID int64
	Names  [sde.LanguageCount]string
	// Blueprint is the exported entry whose own type is TypeID, if any.
	Blueprint *collector.Entry
	// ProducedBy lists blueprint types that list TypeID among their products.
	ProducedBy []int64
	// UsedBy lists blueprint types that consume TypeID as a material.
	UsedBy []int64
}

// OpenIndex parses an export document.
func OpenIndex(data []byte) (*Index, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedExport)
	}
	root := gjson.ParseBytes(data)

	idx := &Index{
		names:       make(map[int64]names.Compressed),
		byType:      make(map[int64]int),
		byProduct:   make(map[int64]int),
		consumersOf: make(map[int64][]int64),
		byName:      make(map[string]map[int]int64),
	}

	var perr error
	root.Get("blueprints").ForEach(func(_, raw gjson.Result) bool {
		entry, err := parseBlueprint(raw)
		if err != nil {
			perr = err
			return false
		}
		idx.Blueprints = append(idx.Blueprints, entry)
		return true
	})
	if perr != nil {
		return nil, perr
	}

	root.Get("names").ForEach(func(_, raw gjson.Result) bool {
		id, compressed, err := parseName(raw)
		if err != nil {
			perr = err
			return false
		}
		if _, dup := idx.names[id]; !dup {
			idx.namesInOrder = append(idx.namesInOrder, id)
		}
		idx.names[id] = compressed
		for lang, name := range compressed.Expand() {
			if name == "" {
				continue
			}
			if idx.byName[name] == nil {
				idx.byName[name] = make(map[int]int64)
			}
			idx.byName[name][lang] = id
		}
		return true
	})
	if perr != nil {
		return nil, perr
	}

	for i, bp := range idx.Blueprints {
		idx.byType[bp.TypeID] = i
		for _, m := range bp.Materials {
			idx.consumersOf[m.TypeID] = append(idx.consumersOf[m.TypeID], bp.TypeID)
		}
		for _, p := range bp.Products {
			if _, exists := idx.byProduct[p.TypeID]; !exists {
				idx.byProduct[p.TypeID] = i
			}
		}
	}
	return idx, nil
}

// Name returns the name of typeID in lang, or "" when the type is unknown.
func (x *Index) Name(typeID int64, lang string) string {
	c, ok := x.names[typeID]
	if !ok {
		return ""
	}
	return c.Name(lang)
}

// TypeIDs returns the types that have a names entry, in document order.
func (x *Index) TypeIDs() []int64 {
	out := make([]int64, len(x.namesInOrder))
	copy(out, x.namesInOrder)
	return out
}

// Inspect resolves the names of typeID and the blueprints related to it.
func (x *Index) Inspect(typeID int64) (*Inspection, error) {
	c, ok := x.names[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTypeNotFound, typeID)
	}

	ins := &Inspection{TypeID: typeID, Names: c.Expand()}
	for i := range x.Blueprints {
		bp := &x.Blueprints[i]
		if ins.Blueprint == nil && bp.TypeID == typeID {
			ins.Blueprint = bp
		}
		for _, p := range bp.Products {
			if p.TypeID == typeID {
				ins.ProducedBy = append(ins.ProducedBy, bp.TypeID)
				break
			}
		}
	}
	ins.UsedBy = append(ins.UsedBy, x.consumersOf[typeID]...)
	return ins, nil
}

// ProducerOf returns the first blueprint listing typeID as a product.
func (x *Index) ProducerOf(typeID int64) (*collector.Entry, bool) {
	i, ok := x.byProduct[typeID]
	if !ok {
		return nil, false
	}
	return &x.Blueprints[i], true
}

func parseBlueprint(raw gjson.Result) (collector.Entry, error) {
	parts := raw.Array()
	if len(parts) != 3 || parts[0].Type != gjson.Number {
		return collector.Entry{}, fmt.Errorf("%w: blueprint entry %s", ErrMalformedExport, raw.Raw)
	}
	materials, err := parseItems(parts[1])
	if err != nil {
		return collector.Entry{}, err
	}
	products, err := parseItems(parts[2])
	if err != nil {
		return collector.Entry{}, err
	}
	return collector.Entry{TypeID: parts[0].Int(), Materials: materials, Products: products}, nil
}

func parseItems(raw gjson.Result) ([]collector.Item, error) {
	if !raw.IsArray() {
		return nil, fmt.Errorf("%w: item list %s", ErrMalformedExport, raw.Raw)
	}
	var out []collector.Item
	for _, pair := range raw.Array() {
		v := pair.Array()
		if len(v) != 2 || v[0].Type != gjson.Number || v[1].Type != gjson.Number {
			return nil, fmt.Errorf("%w: item %s", ErrMalformedExport, pair.Raw)
		}
		out = append(out, collector.Item{TypeID: v[0].Int(), Quantity: v[1].Int()})
	}
	return out, nil
}

// parseName decodes [typeID, [slot...]]. Numeric slots are references and
// must point at an earlier slot.
func parseName(raw gjson.Result) (int64, names.Compressed, error) {
	var c names.Compressed
	parts := raw.Array()
	if len(parts) != 2 || parts[0].Type != gjson.Number {
		return 0, c, fmt.Errorf("%w: name entry %s", ErrMalformedExport, raw.Raw)
	}
	slots := parts[1].Array()
	if len(slots) != sde.LanguageCount {
		return 0, c, fmt.Errorf("%w: name entry %d has %d slots", ErrMalformedExport, parts[0].Int(), len(slots))
	}
	for i, s := range slots {
		switch s.Type {
		case gjson.String:
			c[i] = names.Literal(s.Str)
		case gjson.Number:
			ref := int(s.Int())
			if ref < 0 || ref >= i {
				return 0, c, fmt.Errorf("%w: name entry %d slot %d references %d", ErrMalformedExport, parts[0].Int(), i, ref)
			}
			c[i] = names.Reference(ref)
		default:
			return 0, c, fmt.Errorf("%w: name entry %d slot %d is %s", ErrMalformedExport, parts[0].Int(), i, s.Type)
		}
	}
	return parts[0].Int(), c, nil
}

// Package collector selects the manufacturing blueprints worth exporting and
// records every type ID they touch.
package collector

import (
	"fmt"

	"github.com/blueprintfinder/sdeexport/pkg/sde"
)

// Result is the outcome of a Collect pass.
type Result struct {
	Entries []Entry
	// Used holds every type ID seen while scanning, including the own type of
	// blueprints that were dropped for lacking materials or products.
	Used *TypeIDSet
}

// Collect scans blueprints in order. A blueprint is exported only when its
// manufacturing activity has both materials and products, but its type IDs
// are recorded either way. A missing required key aborts the whole scan.
func Collect(blueprints []sde.Blueprint) (*Result, error) {
	res := &Result{Used: NewTypeIDSet()}

	for _, bp := range blueprints {
		if bp.BlueprintTypeID == nil {
			return nil, sde.MissingField(bp.Key, "blueprintTypeID")
		}
		typeID := *bp.BlueprintTypeID
		res.Used.Add(typeID)

		materials, err := collectItems(bp.Key, "materials", bp.Materials, res.Used)
		if err != nil {
			return nil, err
		}
		products, err := collectItems(bp.Key, "products", bp.Products, res.Used)
		if err != nil {
			return nil, err
		}

		if len(materials) > 0 && len(products) > 0 {
			res.Entries = append(res.Entries, Entry{TypeID: typeID, Materials: materials, Products: products})
		}
	}

	return res, nil
}

func collectItems(key, list string, in []sde.Quantity, used *TypeIDSet) ([]Item, error) {
	var out []Item
	for i, q := range in {
		if q.TypeID == nil {
			return nil, sde.MissingField(key, fmt.Sprintf("activities.manufacturing.%s[%d].typeID", list, i))
		}
		if q.Quantity == nil {
			return nil, sde.MissingField(key, fmt.Sprintf("activities.manufacturing.%s[%d].quantity", list, i))
		}
		out = append(out, Item{TypeID: *q.TypeID, Quantity: *q.Quantity})
		used.Add(*q.TypeID)
	}
	return out, nil
}

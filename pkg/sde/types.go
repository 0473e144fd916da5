// Package sde loads the static data export documents (blueprints and type
// records) that the exporter consumes.
package sde

// Quantity is a single {typeID, quantity} pair of a manufacturing activity.
// Pointers distinguish an absent key from a zero value.
type Quantity struct {
	TypeID   *int64 `yaml:"typeID"`
	Quantity *int64 `yaml:"quantity"`
}

// Blueprint is one record of blueprints.yaml, flattened to what the export
// needs. Materials and Products keep source order.
type Blueprint struct {
	Key             string
	BlueprintTypeID *int64
	Materials       []Quantity
	Products        []Quantity
}

// TypeRecord is one record of typeIDs.yaml. Name maps a language code to
// its localized name; any language may be missing.
type TypeRecord struct {
	Name map[string]string `yaml:"name"`
}

// Types indexes type records by type ID.
type Types map[int64]TypeRecord

// blueprintRecord mirrors the on-disk layout of a blueprint. Missing
// activities, manufacturing or list keys decode to empty lists.
type blueprintRecord struct {
	BlueprintTypeID *int64 `yaml:"blueprintTypeID"`
	Activities      struct {
		Manufacturing struct {
			Materials []Quantity `yaml:"materials"`
			Products  []Quantity `yaml:"products"`
		} `yaml:"manufacturing"`
	} `yaml:"activities"`
}

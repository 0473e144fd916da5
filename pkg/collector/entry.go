package collector

import "github.com/bytedance/sonic"

// Item is one [typeID, quantity] pair of an exported blueprint.
type Item struct {
	TypeID   int64
	Quantity int64
}

func (it Item) MarshalJSON() ([]byte, error) {
	return sonic.Marshal([2]int64{it.TypeID, it.Quantity})
}

// Entry is an exported blueprint: [typeID, materials, products].
type Entry struct {
	TypeID    int64
	Materials []Item
	Products  []Item
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return sonic.Marshal([]interface{}{e.TypeID, e.Materials, e.Products})
}

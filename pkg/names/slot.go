package names

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Slot holds one language's name: either a literal string or a reference to
// an earlier slot of the same entry with an identical string.
type Slot struct {
	literal string
	ref     int
	isRef   bool
}

func Literal(s string) Slot {
	return Slot{literal: s}
}

func Reference(index int) Slot {
	return Slot{ref: index, isRef: true}
}

func (s Slot) IsReference() bool {
	return s.isRef
}

// Literal returns the literal value and true, or "" and false for a reference.
func (s Slot) Literal() (string, bool) {
	return s.literal, !s.isRef
}

// Index returns the referenced slot and true, or 0 and false for a literal.
func (s Slot) Index() (int, bool) {
	return s.ref, s.isRef
}

func (s Slot) String() string {
	if s.isRef {
		return fmt.Sprintf("@%d", s.ref)
	}
	return fmt.Sprintf("%q", s.literal)
}

// MarshalJSON encodes a literal as a JSON string and a reference as an integer.
func (s Slot) MarshalJSON() ([]byte, error) {
	if s.isRef {
		return sonic.Marshal(s.ref)
	}
	return sonic.Marshal(s.literal)
}

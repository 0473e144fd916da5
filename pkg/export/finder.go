package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/sde"
)

// FindResult is a blueprint that can be built from a set of assets.
type FindResult struct {
	Blueprint *collector.Entry
	// Completeness is the rounded percentage of materials that are either
	// owned or buildable.
	Completeness int
	// Direct reports that every material is owned outright.
	Direct bool
}

// Assets is a parsed asset list.
type Assets struct {
	Materials map[int64]int64
	// Language is the language most item names were written in, or "" when
	// nothing resolved.
	Language string
	// Unresolved holds the names that match no type, in input order.
	Unresolved []string
}

type materialKind int

const (
	kindAsset materialKind = iota + 1
	kindProduct
)

// ResolveName finds the type carrying name in any language. When several
// languages match, the lowest language index wins.
func (x *Index) ResolveName(name string) (typeID int64, lang int, ok bool) {
	byLang, found := x.byName[name]
	if !found {
		return 0, 0, false
	}
	for i := 0; i < sde.LanguageCount; i++ {
		if id, ok := byLang[i]; ok {
			return id, i, true
		}
	}
	return 0, 0, false
}

// Blueprint returns the blueprint whose own type is typeID.
func (x *Index) Blueprint(typeID int64) (*collector.Entry, bool) {
	i, ok := x.byType[typeID]
	if !ok {
		return nil, false
	}
	return &x.Blueprints[i], true
}

// ParseAssets reads "name<TAB>quantity" lines, as copied from the in-game
// inventory. Quantities of repeated items add up; a missing or unparsable
// quantity counts as zero.
func (x *Index) ParseAssets(r io.Reader) (*Assets, error) {
	a := &Assets{Materials: make(map[int64]int64)}
	var usage [sde.LanguageCount]int

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		name := strings.TrimSpace(fields[0])
		if name == "" {
			continue
		}
		id, lang, ok := x.ResolveName(name)
		if !ok {
			a.Unresolved = append(a.Unresolved, name)
			continue
		}
		var qty int64
		if len(fields) > 1 {
			qty = parseQuantity(fields[1])
		}
		a.Materials[id] += qty
		usage[lang]++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading assets: %w", err)
	}

	best := -1
	for i, n := range usage {
		if n > 0 && (best < 0 || n > usage[best]) {
			best = i
		}
	}
	if best >= 0 {
		a.Language = sde.Languages[best]
	}
	return a, nil
}

// parseQuantity reads the leading digits of s, ignoring the digit grouping
// marks the game client inserts.
func parseQuantity(s string) int64 {
	var b strings.Builder
scan:
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',' || r == '.' || r == '\'' || r == ' ' || r == '\u00a0' || r == '\u202f':
		default:
			break scan
		}
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Find lists the blueprints buildable from materials, directly or through
// intermediate products of other buildable blueprints. A blueprint is kept
// when the share of its materials that are owned or come from a kept
// blueprint reaches minCompleteness percent. Blueprints depending on
// themselves through their products never resolve and are left out.
//
// Results are ordered by completeness, highest first, then by type ID.
func (x *Index) Find(materials map[int64]int64, minCompleteness float64) []FindResult {
	kinds := make(map[int64]materialKind, len(materials))
	frontier := make([]int64, 0, len(materials))
	for id := range materials {
		kinds[id] = kindAsset
		frontier = append(frontier, id)
	}
	sort.Slice(frontier, func(i, j int) bool { return frontier[i] < frontier[j] })

	// Walk from the assets to every blueprint consuming them, then to
	// blueprints consuming what those produce.
	found := make(map[int64]*collector.Entry)
	var order []int64
	producer := make(map[int64]int64)
	for len(frontier) > 0 {
		var next []int64
		for _, m := range frontier {
			for _, bpID := range x.consumersOf[m] {
				if _, seen := found[bpID]; seen {
					continue
				}
				bp, ok := x.Blueprint(bpID)
				if !ok {
					continue
				}
				found[bpID] = bp
				order = append(order, bpID)
				for _, p := range bp.Products {
					if _, known := kinds[p.TypeID]; known {
						continue
					}
					kinds[p.TypeID] = kindProduct
					producer[p.TypeID] = bpID
					next = append(next, p.TypeID)
				}
			}
		}
		frontier = next
	}

	// A blueprint resolves once the producers of all its product materials
	// have resolved. Repeat until a pass makes no progress.
	valid := make(map[int64]bool, len(found))
	completeness := make(map[int64]float64, len(found))
	pending := order
	for len(pending) > 0 {
		var unresolved []int64
		for _, id := range pending {
			var ok, bad int
			blocked := false
			for _, m := range found[id].Materials {
				switch kinds[m.TypeID] {
				case kindAsset:
					ok++
				case kindProduct:
					v, resolved := valid[producer[m.TypeID]]
					switch {
					case !resolved:
						blocked = true
					case v:
						ok++
					default:
						bad++
					}
				default:
					bad++
				}
			}
			if blocked {
				unresolved = append(unresolved, id)
				continue
			}
			var c float64
			if ok+bad > 0 {
				c = float64(ok) / float64(ok+bad) * 100
			}
			completeness[id] = c
			valid[id] = c >= minCompleteness
		}
		if len(unresolved) == len(pending) {
			break
		}
		pending = unresolved
	}

	var out []FindResult
	for _, id := range order {
		if !valid[id] {
			continue
		}
		bp := found[id]
		direct := true
		for _, m := range bp.Materials {
			if kinds[m.TypeID] != kindAsset {
				direct = false
				break
			}
		}
		out = append(out, FindResult{
			Blueprint:    bp,
			Completeness: int(math.Floor(completeness[id] + 0.5)),
			Direct:       direct,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completeness != out[j].Completeness {
			return out[i].Completeness > out[j].Completeness
		}
		return out[i].Blueprint.TypeID < out[j].Blueprint.TypeID
	})
	return out
}

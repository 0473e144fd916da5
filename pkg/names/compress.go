// Package names compresses per-type localized names by replacing repeated
// translations with back-references to the first slot holding the same text.
package names

import (
	"strings"
	"unicode"

	"github.com/blueprintfinder/sdeexport/pkg/sde"
	"github.com/bytedance/sonic"
)

// Compressed is the encoded name set of one type, one slot per entry of
// sde.Languages.
type Compressed [sde.LanguageCount]Slot

// Entry is an exported name record: [typeID, compressedNames].
type Entry struct {
	TypeID int64
	Names  Compressed
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return sonic.Marshal([]interface{}{e.TypeID, e.Names[:]})
}

// Compress encodes a language->name mapping. Each name is trimmed, then
// compared against the already encoded earlier slots in language order; the
// first earlier literal equal to it turns the slot into a reference to that
// index. Reference slots never match, so references always point at a
// literal and slot 0 is always a literal.
func Compress(name map[string]string) Compressed {
	var out Compressed
	for i, lang := range sde.Languages {
		cur := strings.TrimFunc(name[lang], isSpace)
		out[i] = Literal(cur)
		for j := 0; j < i; j++ {
			if prev, ok := out[j].Literal(); ok && prev == cur {
				out[i] = Reference(j)
				break
			}
		}
	}
	return out
}

// isSpace also treats the ASCII file, group, record and unit separators
// (U+001C..U+001F) as whitespace, which unicode.IsSpace does not.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// CompressAll builds one entry per used type ID, in the order of ids. A type
// with no record is encoded as if it had no names.
func CompressAll(types sde.Types, ids []int64) []Entry {
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, Entry{TypeID: id, Names: Compress(types[id].Name)})
	}
	return out
}

// Expand resolves references and returns the plain name for every language.
func (c Compressed) Expand() [sde.LanguageCount]string {
	var out [sde.LanguageCount]string
	for i, s := range c {
		if idx, ok := s.Index(); ok {
			if idx >= 0 && idx < i {
				out[i] = out[idx]
			}
			continue
		}
		out[i], _ = s.Literal()
	}
	return out
}

// Name returns the name in lang, falling back to the default language when
// the translation is empty or the language is not exported.
func (c Compressed) Name(lang string) string {
	expanded := c.Expand()
	if i := sde.LanguageIndex(lang); i >= 0 && expanded[i] != "" {
		return expanded[i]
	}
	return expanded[sde.LanguageIndex(sde.DefaultLanguage)]
}

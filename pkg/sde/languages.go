package sde

// Languages is the canonical language order of the export. Name slots are
// emitted in this order and back-references index into it, so it must never
// be reordered.
var Languages = [LanguageCount]string{"en", "de", "es", "fr", "ja", "ru", "zh"}

// LanguageCount is the number of name slots per type.
const LanguageCount = 7

// DefaultLanguage is the slot readers fall back to when a translation is empty.
const DefaultLanguage = "en"

// LanguageIndex returns the slot index of lang, or -1 if it is not exported.
func LanguageIndex(lang string) int {
	for i, l := range Languages {
		if l == lang {
			return i
		}
	}
	return -1
}

package storage

// Stats summarizes the contents of an export database.
type Stats struct {
	Blueprints int
	Materials  int
	Products   int
	Types      int
	Languages  []LanguageStats
}

// LanguageStats counts the types with a non-empty name in one language.
type LanguageStats struct {
	Language string
	Named    int
}

// NameMatch is a type whose name in Language equals the searched text.
type NameMatch struct {
	TypeID   int64
	Language string
	Name     string
}

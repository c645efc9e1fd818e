package provision

import "sort"

// CatalogEntry pairs a short name with its artifact reference.
type CatalogEntry struct {
	// Alias is the short name accepted by ResolveRef.
	Alias string

	// Ref is the full artifact reference.
	Ref ArtifactRef
}

// builtinCatalog lists the well-known artifacts VoipGlot ships defaults for.
var builtinCatalog = map[string]ArtifactRef{
	"vosk-small-en-us": {
		Kind:    SourceArchive,
		Locator: "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip",
		Name:    "vosk-model-small-en-us-0.15",
	},
	"opus-mt-en-es": {
		Kind:    SourceToolchain,
		Locator: "Helsinki-NLP/opus-mt-en-es",
		Name:    "Helsinki-NLP--opus-mt-en-es",
	},
}

// Catalog returns the built-in artifacts, sorted by alias.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(builtinCatalog))
	for alias, ref := range builtinCatalog {
		entries = append(entries, CatalogEntry{Alias: alias, Ref: ref})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Alias < entries[j].Alias
	})
	return entries
}

// ResolveRef resolves a source locator to an ArtifactRef. Catalog aliases
// take precedence; anything else is parsed with ParseArtifactRef.
func ResolveRef(s string) (ArtifactRef, error) {
	if ref, ok := builtinCatalog[s]; ok {
		return ref, nil
	}
	return ParseArtifactRef(s)
}

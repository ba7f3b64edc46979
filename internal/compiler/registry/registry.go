package registry

import (
	"sort"

	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/model"
)

// Entry is everything the IR builder needs to know about one definition
// once the registry has finished with it.
type Entry struct {
	Definition *model.StructureDefinition
	GoName     string
	Category   Category
	// BaseChain is the ordered ancestor list, nearest ancestor first. It
	// ends at a loaded definition with no baseDefinition, or stops before a
	// well-known root that is not among the loaded definitions.
	BaseChain []*model.StructureDefinition
}

// Registry holds every definition, canonicalized, classified, and
// base-chain-resolved, plus the value set resolver needed for binding
// resolution.
type Registry struct {
	Schema    *loader.Schema
	ValueSets *ValueSetResolver

	byURL map[string]*Entry
}

// Build canonicalizes, base-chain-resolves, and classifies every loaded
// StructureDefinition.
func Build(schema *loader.Schema) (*Registry, error) {
	r := &Registry{
		Schema:    schema,
		ValueSets: NewValueSetResolver(schema),
		byURL:     make(map[string]*Entry),
	}

	// Process definitions in a stable order (by URL) so name-collision
	// suffixing is deterministic across runs.
	ordered := make([]*model.StructureDefinition, len(schema.StructureDefinitions))
	copy(ordered, schema.StructureDefinitions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].URL < ordered[j].URL })

	usedNames := make(map[string]string) // GoName -> owning URL, for collision detection

	for _, sd := range ordered {
		chain, err := ResolveBaseChain(sd, schema)
		if err != nil {
			return nil, err
		}
		category := Classify(sd, chain, schema)
		name := canonicalizeName(sd, usedNames)
		usedNames[name] = sd.URL

		r.byURL[sd.URL] = &Entry{
			Definition: sd,
			GoName:     name,
			Category:   category,
			BaseChain:  chain,
		}
	}

	return r, nil
}

// canonicalizeName maps a definition to its Go type identifier: short name,
// Pascal case, reserved-word rename, then a type-family suffix when the
// result collides with an identifier another definition already took.
func canonicalizeName(sd *model.StructureDefinition, used map[string]string) string {
	base := sd.Name
	if base == "" {
		base = ShortName(sd.URL)
	}
	name := PascalCase(base)
	name = RenameIfReserved(name)

	if owner, collides := used[name]; collides && owner != sd.URL {
		name = name + PascalCase(sd.Type)
	}
	return name
}

// Lookup returns the Entry for a definition URL, or nil.
func (r *Registry) Lookup(url string) *Entry {
	return r.byURL[url]
}

// LookupByTypeCode resolves a FHIR type code (as it appears in an
// ElementDefinition.Type[].Code) to its Entry, trying the definition index
// by name since most type codes are also definition names.
func (r *Registry) LookupByTypeCode(code string) *Entry {
	for _, sd := range r.Schema.ByName[code] {
		if e, ok := r.byURL[sd.URL]; ok {
			return e
		}
	}
	return nil
}

// All returns every Entry in URL order, so iteration is deterministic.
func (r *Registry) All() []*Entry {
	entries := make([]*Entry, 0, len(r.byURL))
	for _, e := range r.byURL {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Definition.URL < entries[j].Definition.URL
	})
	return entries
}

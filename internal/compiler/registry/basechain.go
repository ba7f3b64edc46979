package registry

import (
	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/model"
)

// ResolveBaseChain follows sd.BaseDefinition until a root is reached,
// returning the ordered ancestor list, nearest ancestor first. Roots are
// definitions with no BaseDefinition, or the well-known abstract roots
// Resource/DomainResource/Element/BackboneElement/DataType when they are
// not themselves present as loaded definitions.
func ResolveBaseChain(sd *model.StructureDefinition, schema *loader.Schema) ([]*model.StructureDefinition, error) {
	var chain []*model.StructureDefinition
	seen := map[string]bool{sd.URL: true}

	cur := sd
	for {
		baseURL := cur.BaseDefinition
		if baseURL == "" {
			break
		}
		base, ok := schema.ByURL[baseURL]
		if !ok {
			// Well-known roots are allowed to be absent from the loaded
			// set (they terminate the chain rather than erroring) only
			// when their short name matches a well-known root name;
			// anything else unresolved is fatal.
			shortName := ShortName(baseURL)
			if wellKnownResourceRoots[shortName] || wellKnownDataTypeRoots[shortName] {
				break
			}
			return nil, &UnresolvedBaseError{DefinitionURL: sd.URL, BaseURL: baseURL}
		}
		if seen[base.URL] {
			return nil, &CircularBaseError{DefinitionURL: sd.URL, BaseURL: base.URL}
		}
		seen[base.URL] = true
		chain = append(chain, base)
		cur = base
	}

	return chain, nil
}

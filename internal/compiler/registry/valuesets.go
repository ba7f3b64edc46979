package registry

import (
	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/model"
)

// maxEnumCodes bounds how large a bound value set may be before the
// resolver degrades the binding to a plain string. Value sets like
// all-types/mimetypes enumerate hundreds of codes and were never meant to
// become Go enums.
const maxEnumCodes = 100

// ValueSetResolver expands ValueSet compose rules against loaded
// CodeSystems into flat code lists.
type ValueSetResolver struct {
	schema   *loader.Schema
	resolved map[string]*model.ResolvedValueSet
}

// NewValueSetResolver builds a resolver over every ValueSet/CodeSystem the
// Loader found.
func NewValueSetResolver(schema *loader.Schema) *ValueSetResolver {
	r := &ValueSetResolver{
		schema:   schema,
		resolved: make(map[string]*model.ResolvedValueSet),
	}
	for _, vs := range schema.ValueSets {
		if resolved := r.expand(vs); resolved != nil && len(resolved.Codes) > 0 {
			r.resolved[model.NormalizeURL(vs.URL)] = resolved
		}
	}
	return r
}

func (r *ValueSetResolver) expand(vs *model.ValueSet) *model.ResolvedValueSet {
	resolved := &model.ResolvedValueSet{URL: vs.URL, Name: vs.Name, Title: vs.Title}
	if vs.Compose == nil {
		return resolved
	}
	for _, include := range vs.Compose.Include {
		if len(include.Concept) > 0 {
			for _, c := range include.Concept {
				resolved.Codes = append(resolved.Codes, model.ResolvedCode{Code: c.Code, Display: c.Display})
			}
			continue
		}
		if cs, ok := r.schema.CodeSystemsByURL[include.System]; ok {
			resolved.Codes = append(resolved.Codes, flattenConcepts(cs.Concept)...)
		}
	}
	return resolved
}

func flattenConcepts(concepts []model.CodeSystemConcept) []model.ResolvedCode {
	codes := make([]model.ResolvedCode, 0, len(concepts))
	for _, c := range concepts {
		codes = append(codes, model.ResolvedCode{Code: c.Code, Display: c.Display})
		if len(c.Concept) > 0 {
			codes = append(codes, flattenConcepts(c.Concept)...)
		}
	}
	return codes
}

// Get returns the resolved value set for url (handling a trailing
// "|version" suffix), or nil if it does not resolve to a finite, reasonably
// sized enumeration.
func (r *ValueSetResolver) Get(url string) *model.ResolvedValueSet {
	resolved, ok := r.resolved[model.NormalizeURL(url)]
	if !ok || len(resolved.Codes) == 0 || len(resolved.Codes) > maxEnumCodes {
		return nil
	}
	return resolved
}

package registry

import (
	"strings"

	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/model"
)

// Category is the routing classification assigned to every definition,
// consumed by the package writer to pick a subdirectory.
type Category string

// The five routing categories.
const (
	CategoryPrimitive Category = "primitive"
	CategoryDataType  Category = "datatype"
	CategoryResource  Category = "resource"
	CategoryProfile   Category = "profile"
	CategoryExtension Category = "extension"
)

// Classify assigns a Category to sd, given the already-resolved base chain.
// Only containment checks run against the chain, so ancestor order does not
// matter here.
func Classify(sd *model.StructureDefinition, chain []*model.StructureDefinition, schema *loader.Schema) Category {
	if sd.IsPrimitive() {
		return CategoryPrimitive
	}

	baseName := baseShortName(sd.BaseDefinition)

	// Extension: base is Extension, but the root Extension type itself
	// classifies as DataType.
	if sd.Name != "Extension" && chainContains(chain, "Extension") {
		return CategoryExtension
	}

	// Profile: derives from a concrete (non-root) core resource.
	if sd.Derivation == "constraint" && baseName != "" && !wellKnownResourceRoots[baseName] && isConcreteResource(baseName, schema) {
		return CategoryProfile
	}

	// DataType: base is Element/BackboneElement/DataType, or kind is
	// complex-type and it is not an Extension derivative (already ruled
	// out above).
	if wellKnownDataTypeRoots[baseName] || sd.Kind == model.KindComplexType {
		return CategoryDataType
	}

	// Resource: kind=resource, or base is a resource root, or derived
	// from one transitively via the chain.
	if sd.Kind == model.KindResource || wellKnownResourceRoots[baseName] || chainContainsAny(chain, wellKnownResourceRoots) {
		return CategoryResource
	}

	// Unclassifiable definitions route with the resources.
	return CategoryResource
}

func baseShortName(baseDefinition string) string {
	if baseDefinition == "" {
		return ""
	}
	return ShortName(baseDefinition)
}

func chainContains(chain []*model.StructureDefinition, name string) bool {
	for _, a := range chain {
		if a.Name == name {
			return true
		}
	}
	return false
}

func chainContainsAny(chain []*model.StructureDefinition, names map[string]bool) bool {
	for _, a := range chain {
		if names[a.Name] {
			return true
		}
	}
	return false
}

// isConcreteResource reports whether name resolves (directly, by name) to a
// concrete resource definition, distinguishing "derives from
// Resource/DomainResource" (a true root, never a profile) from "derives
// from Patient" (a profile).
func isConcreteResource(name string, schema *loader.Schema) bool {
	if wellKnownResourceRoots[name] || strings.TrimSpace(name) == "" {
		return false
	}
	for _, d := range schema.ByName[name] {
		if d.Kind == model.KindResource {
			return true
		}
	}
	return false
}

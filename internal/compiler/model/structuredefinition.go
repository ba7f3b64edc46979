// Package model defines the neutral schema model produced by the loader:
// StructureDefinition, ValueSet, and CodeSystem, deserialized from the
// canonical FHIR conformance JSON shape.
package model

import (
	"encoding/json"
	"strings"
)

// Kind values for StructureDefinition.Kind.
const (
	KindPrimitiveType = "primitive-type"
	KindComplexType   = "complex-type"
	KindResource      = "resource"
	KindLogical       = "logical"
)

// Resource type discriminators used while walking the input directory.
const (
	ResourceTypeStructureDefinition = "StructureDefinition"
	ResourceTypeValueSet            = "ValueSet"
	ResourceTypeCodeSystem          = "CodeSystem"
	ResourceTypeBundle              = "Bundle"
)

// StructureDefinition captures the subset of a FHIR StructureDefinition
// needed to build the type graph.
type StructureDefinition struct {
	ResourceType   string        `json:"resourceType"`
	ID             string        `json:"id"`
	URL            string        `json:"url"`
	Version        string        `json:"version"`
	Name           string        `json:"name"`
	Title          string        `json:"title"`
	Status         string        `json:"status"`
	Kind           string        `json:"kind"`
	Abstract       bool          `json:"abstract"`
	Type           string        `json:"type"`
	BaseDefinition string        `json:"baseDefinition"`
	Derivation     string        `json:"derivation"`
	Snapshot       *Snapshot     `json:"snapshot"`
	Differential   *Differential `json:"differential"`
}

// Snapshot holds the fully expanded element list.
type Snapshot struct {
	Element []ElementDefinition `json:"element"`
}

// Differential holds the delta-from-base element list.
type Differential struct {
	Element []ElementDefinition `json:"element"`
}

// ElementDefinition defines a single element within a StructureDefinition.
type ElementDefinition struct {
	ID               string          `json:"id"`
	Path             string          `json:"path"`
	SliceName        string          `json:"sliceName,omitempty"`
	Short            string          `json:"short"`
	Definition       string          `json:"definition"`
	Comment          string          `json:"comment,omitempty"`
	Min              int             `json:"min"`
	Max              string          `json:"max"`
	Type             []TypeRef       `json:"type,omitempty"`
	ContentReference string          `json:"contentReference,omitempty"`
	Binding          *Binding        `json:"binding,omitempty"`
	Constraint       []Constraint    `json:"constraint,omitempty"`
	MustSupport      bool            `json:"mustSupport,omitempty"`
	IsModifier       bool            `json:"isModifier,omitempty"`
	IsSummary        bool            `json:"isSummary,omitempty"`
	Fixed            json.RawMessage `json:"fixed,omitempty"`
	Pattern          json.RawMessage `json:"pattern,omitempty"`
}

// TypeRef names a type an element may take, plus profile constraints.
type TypeRef struct {
	Code          string   `json:"code"`
	Profile       []string `json:"profile,omitempty"`
	TargetProfile []string `json:"targetProfile,omitempty"`
}

// Binding ties a coded element to a ValueSet.
type Binding struct {
	Strength    string `json:"strength"`
	Description string `json:"description,omitempty"`
	ValueSet    string `json:"valueSet,omitempty"`
}

// Binding strength values.
const (
	BindingRequired   = "required"
	BindingExtensible = "extensible"
	BindingPreferred  = "preferred"
	BindingExample    = "example"
)

// Constraint is a FHIRPath invariant carried through to metadata, never
// evaluated by this compiler.
type Constraint struct {
	Key        string `json:"key"`
	Severity   string `json:"severity"`
	Human      string `json:"human"`
	Expression string `json:"expression,omitempty"`
	XPath      string `json:"xpath,omitempty"`
}

// IsPrimitive reports whether this definition describes a primitive type.
func (sd *StructureDefinition) IsPrimitive() bool {
	return sd.Kind == KindPrimitiveType
}

// Elements returns Snapshot elements if present, else Differential elements.
// A definition with neither returns no elements; the Loader skips such
// definitions with a warning, so they never reach the IR builder.
func (sd *StructureDefinition) Elements() []ElementDefinition {
	if sd.Snapshot != nil && len(sd.Snapshot.Element) > 0 {
		return sd.Snapshot.Element
	}
	if sd.Differential != nil {
		return sd.Differential.Element
	}
	return nil
}

// HasSnapshot reports whether a fully expanded element list is present.
func (sd *StructureDefinition) HasSnapshot() bool {
	return sd.Snapshot != nil && len(sd.Snapshot.Element) > 0
}

// HasDifferential reports whether a delta element list is present.
func (sd *StructureDefinition) HasDifferential() bool {
	return sd.Differential != nil && len(sd.Differential.Element) > 0
}

// IsChoice reports whether this element's path ends in "[x]".
func (ed *ElementDefinition) IsChoice() bool {
	return strings.HasSuffix(ed.Path, "[x]")
}

// IsRequired reports whether min >= 1.
func (ed *ElementDefinition) IsRequired() bool {
	return ed.Min >= 1
}

// IsArray reports whether this element may repeat (max > 1 or max == "*").
func (ed *ElementDefinition) IsArray() bool {
	return ed.Max == "*" || (ed.Max != "" && ed.Max != "0" && ed.Max != "1")
}

// BaseName returns the last path segment with any "[x]" suffix stripped.
func (ed *ElementDefinition) BaseName() string {
	path := ed.Path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	return strings.TrimSuffix(path, "[x]")
}

// Depth returns the number of dot-separated segments in Path, including the
// root type segment (e.g. "Observation.component.code" has depth 3).
func (ed *ElementDefinition) Depth() int {
	return strings.Count(ed.Path, ".") + 1
}

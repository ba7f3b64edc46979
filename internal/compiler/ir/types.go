// Package ir defines the intermediate representation and its builder: it
// walks each StructureDefinition through its element list and produces
// RecordTypes, Fields, nested backbone records, choice-type expansions,
// value-set enums, and trait bookkeeping. The IR is the stable contract
// between building and emission; once Build returns, nothing mutates it
// further.
package ir

import "github.com/fhirgen/schemac/internal/compiler/registry"

// RecordType is a named structure: a resource, datatype, profile,
// extension, or a backbone record promoted from a nested element group.
type RecordType struct {
	Name     string
	Origin   string // source StructureDefinition URL
	Category registry.Category
	// ProfileURL is the canonical URL the generated conformance
	// descriptor reports; empty for promoted backbone records.
	ProfileURL string
	IsAbstract bool
	Docstring  string

	// Base is the immediate parent RecordType, if any; its fields are
	// inlined as a single embedded "base" field, never copied.
	Base *RecordType

	// Ancestors is the full ordered ancestor chain (nearest first),
	// restricted to ancestors that are themselves RecordTypes (i.e. not
	// filtered out), used by the emitter to derive the trait triples a
	// resource must implement for each ancestor.
	Ancestors []*RecordType

	Fields       []*Field
	ChoiceGroups []*ChoiceGroup

	// Nested holds backbone records promoted from nested element paths,
	// in discovery order. Each belongs to exactly one parent; nothing
	// else ever references them.
	Nested []*RecordType

	Invariants    []InvariantRecord
	Bindings      []BindingRecord
	Cardinalities []CardinalityRecord
}

// HasMandatoryField reports whether r declares a field that is neither
// optional nor a collection, and therefore needs an explicit initializer
// wherever r's Default constructs one. Nested records carry their own
// Default and are not consulted here.
func (r *RecordType) HasMandatoryField() bool {
	for _, f := range r.Fields {
		if !f.IsOptional && !f.IsCollection {
			return true
		}
	}
	return false
}

// RefKind discriminates the TypeRef sum type.
type RefKind int

// The TypeRef variants.
const (
	RefPrimitive RefKind = iota
	RefNamed
	RefEnum
)

// TypeRef names the element type of a field: Primitive | Named | Enum, with
// optional/collection wrapping expressed as the two booleans on Field
// rather than as further TypeRef nesting — Go's pointer-vs-slice-vs-value vocabulary
// already distinguishes "optional", "collection", and "optional
// collection" without nesting wrapper types, so Field carries IsOptional
// and IsCollection directly and TypeRef names only the element type. An
// optional-repeating field emits as a plain slice whose nil value means
// absent, which is how Go spells optional-collection wrapping.
type TypeRef struct {
	Kind      RefKind
	Primitive registry.PrimitiveKind // set when Kind == RefPrimitive
	Named     *RecordType            // set when Kind == RefNamed
	Enum      *EnumType              // set when Kind == RefEnum
}

// GoType returns the bare (unwrapped) Go type name for this TypeRef.
func (t *TypeRef) GoType() string {
	switch t.Kind {
	case RefPrimitive:
		return t.Primitive.GoType()
	case RefNamed:
		return t.Named.Name
	case RefEnum:
		return t.Enum.Name
	default:
		return "any"
	}
}

// Field is one field of a RecordType.
type Field struct {
	SourceName        string
	TargetName        string
	Type              *TypeRef
	IsOptional        bool
	IsCollection      bool
	SerializationName string
	Docstring         string

	Binding *FieldBinding

	// IsChoiceVariant and ChoiceBase mark this field as one sibling of a
	// ChoiceGroup.
	IsChoiceVariant bool
	ChoiceBase      string

	// IsCompanion marks the primitive-extension companion field
	// ("_status") emitted alongside a primitive field.
	IsCompanion bool
}

// FieldBinding records a value-set binding, resolved to an EnumType when
// possible.
type FieldBinding struct {
	Strength string
	ValueSet string
	Enum     *EnumType // nil when the binding did not resolve to a finite enumeration
}

// EnumType is a named sum of wire-code variants derived from a ValueSet
// with a resolvable binding. EnumTypes are interned by
// source ValueSet URL across the whole build (shared by reference).
type EnumType struct {
	Name              string
	SourceValueSetURL string
	Docstring         string
	Variants          []EnumVariant
}

// DefaultVariant returns the first declared variant, the EnumType's
// designated default.
func (e *EnumType) DefaultVariant() EnumVariant {
	if len(e.Variants) == 0 {
		return EnumVariant{}
	}
	return e.Variants[0]
}

// EnumVariant is one { variant_name, wire_code, docstring } entry.
type EnumVariant struct {
	VariantName string
	WireCode    string
	Docstring   string
}

// ChoiceGroup virtually clusters the N sibling fields generated for one
// `value[x]`-shaped element.
type ChoiceGroup struct {
	// BaseName is the FHIR base name without "[x]", e.g. "effective".
	BaseName string
	// FieldNames are the target field names of each variant, e.g.
	// ["EffectiveDateTime", "EffectivePeriod"].
	FieldNames []string
}

// InvariantRecord is a value-only metadata row for a FHIRPath constraint,
// never evaluated by this compiler.
type InvariantRecord struct {
	Key        string
	Severity   string
	Human      string
	Expression string
}

// BindingRecord is a value-only metadata row for a value-set binding.
type BindingRecord struct {
	Path     string
	Strength string
	ValueSet string
}

// CardinalityRecord is a value-only metadata row for an element's
// min/max cardinality.
type CardinalityRecord struct {
	Path string
	Min  int
	Max  string
}

// Program is the full frozen IR graph produced by Build: every top-level
// RecordType (nested ones are reachable through RecordType.Nested) plus the
// interned EnumType set.
type Program struct {
	Records []*RecordType
	Enums   []*EnumType
}

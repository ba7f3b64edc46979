package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fhirgen/schemac/internal/compiler/model"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// Builder walks a Registry's definitions and produces the IR.
// It memoizes every RecordType it builds by source URL (and, for
// contentReference anchors, by URL+"#"+path), which is what makes named
// type references and base-chain links share pointers instead of being
// duplicated per reference. EnumTypes are interned the same way, keyed by
// value set URL.
type Builder struct {
	reg *registry.Registry

	records map[string]*RecordType // by StructureDefinition URL
	anchors map[string]*RecordType // by URL+"#"+contentReference anchor path
	enums   map[string]*EnumType   // by normalized ValueSet URL

	primExt *RecordType // memoized companion-element shape, built lazily
}

// Build walks every non-primitive definition in reg, producing the frozen
// Program.
func Build(reg *registry.Registry) (*Program, error) {
	b := &Builder{
		reg:     reg,
		records: make(map[string]*RecordType),
		anchors: make(map[string]*RecordType),
		enums:   make(map[string]*EnumType),
	}

	var top []*RecordType
	for _, e := range reg.All() {
		if e.Category == registry.CategoryPrimitive {
			// Primitives never become RecordTypes; every reference to one
			// resolves directly to a Primitive TypeRef leaf.
			continue
		}
		rt, err := b.buildRecord(e)
		if err != nil {
			return nil, err
		}
		top = append(top, rt)
	}

	enums := make([]*EnumType, 0, len(b.enums))
	for _, en := range b.enums {
		enums = append(enums, en)
	}
	sort.Slice(enums, func(i, j int) bool { return enums[i].Name < enums[j].Name })

	return &Program{Records: top, Enums: enums}, nil
}

// buildRecord returns the memoized RecordType for e, building it (and, by
// recursion, every named type and ancestor it reaches) on first visit.
func (b *Builder) buildRecord(e *registry.Entry) (*RecordType, error) {
	sd := e.Definition
	if rt, ok := b.records[sd.URL]; ok {
		return rt, nil
	}

	rt := &RecordType{
		Name:       e.GoName,
		Origin:     sd.URL,
		Category:   e.Category,
		ProfileURL: sd.URL,
		IsAbstract: sd.Abstract,
		Docstring:  firstNonEmpty(sd.Title, sd.Name),
	}
	// Register before recursing into base/fields: ResolveBaseChain already
	// rejected cycles in the baseDefinition graph, but a
	// contentReference can point back at an ancestor path of the same
	// definition, so memoizing up front keeps that recursion bounded too.
	b.records[sd.URL] = rt

	if len(e.BaseChain) > 0 {
		if baseEntry := b.reg.Lookup(e.BaseChain[0].URL); baseEntry != nil {
			baseRT, err := b.buildRecord(baseEntry)
			if err != nil {
				return nil, err
			}
			rt.Base = baseRT
		}
	}
	for _, anc := range e.BaseChain {
		if ancEntry := b.reg.Lookup(anc.URL); ancEntry != nil {
			ancRT, err := b.buildRecord(ancEntry)
			if err != nil {
				return nil, err
			}
			rt.Ancestors = append(rt.Ancestors, ancRT)
		}
	}

	elements := sd.Elements()
	if len(elements) == 0 {
		return rt, nil
	}

	// Snapshot element lists repeat every inherited element (Observation's
	// snapshot carries Observation.id from Resource, and so on). Those are
	// reached through the embedded base, never redeclared, so direct
	// children whose name an ancestor already declares are dropped here.
	var inherited map[string]bool
	if rt.Base != nil {
		inherited = make(map[string]bool)
		for _, anc := range e.BaseChain {
			for _, ael := range anc.Elements() {
				suffix := strings.TrimPrefix(ael.Path, anc.Type+".")
				if suffix == ael.Path || suffix == "" || strings.Contains(suffix, ".") {
					continue
				}
				inherited[strings.TrimSuffix(suffix, "[x]")] = true
			}
		}
	}

	fields, nested, choices, err := b.buildFields(sd, elements, sd.Type, rt.Name, inherited)
	if err != nil {
		return nil, err
	}
	rt.Fields = fields
	rt.Nested = nested
	rt.ChoiceGroups = choices

	for _, el := range elements {
		if el.Path == sd.Type || !strings.HasPrefix(el.Path, sd.Type+".") {
			continue
		}
		rt.Cardinalities = append(rt.Cardinalities, CardinalityRecord{Path: el.Path, Min: el.Min, Max: el.Max})
		for _, c := range el.Constraint {
			rt.Invariants = append(rt.Invariants, InvariantRecord{
				Key: c.Key, Severity: c.Severity, Human: c.Human, Expression: c.Expression,
			})
		}
		if el.Binding != nil && el.Binding.ValueSet != "" {
			rt.Bindings = append(rt.Bindings, BindingRecord{Path: el.Path, Strength: el.Binding.Strength, ValueSet: el.Binding.ValueSet})
		}
	}

	return rt, nil
}

// buildFields processes every element directly beneath prefix (exactly one
// path segment past it): choice expansion, backbone promotion,
// contentReference resolution, primitive companions, and ordinary
// named/primitive fields. recordName seeds the name of any backbone
// record promoted from a nested group; inherited names an ancestor
// already declared skip field emission (non-nil only at the top level).
func (b *Builder) buildFields(sd *model.StructureDefinition, elements []model.ElementDefinition, prefix, recordName string, inherited map[string]bool) ([]*Field, []*RecordType, []*ChoiceGroup, error) {
	var fields []*Field
	var nested []*RecordType
	var choices []*ChoiceGroup

	for _, el := range elements {
		suffix := strings.TrimPrefix(el.Path, prefix+".")
		if suffix == el.Path || suffix == "" || strings.Contains(suffix, ".") {
			continue // not a direct child of prefix
		}
		if inherited[strings.TrimSuffix(suffix, "[x]")] {
			continue
		}
		if el.SliceName != "" {
			// A slice repeats its base element's Path; the base element
			// (visited separately, without a SliceName) already carries the
			// field. Processing the slice too would duplicate it.
			continue
		}
		if err := validateCardinality(el); err != nil {
			return nil, nil, nil, err
		}

		switch {
		case el.IsChoice():
			group, groupFields, err := b.buildChoice(el)
			if err != nil {
				return nil, nil, nil, err
			}
			fields = append(fields, groupFields...)
			if group != nil {
				choices = append(choices, group)
			}

		case el.ContentReference != "":
			f, err := b.buildContentReferenceField(sd, elements, el)
			if err != nil {
				return nil, nil, nil, err
			}
			fields = append(fields, f)

		case len(el.Type) == 1 && el.Type[0].Code == "BackboneElement":
			f, nestedRT, err := b.buildBackboneField(sd, elements, el, recordName)
			if err != nil {
				return nil, nil, nil, err
			}
			fields = append(fields, f)
			nested = append(nested, nestedRT)

		default:
			if len(el.Type) == 0 {
				return nil, nil, nil, &UnknownTypeError{Path: el.Path, Reason: "element has no type and no contentReference"}
			}
			f, err := b.buildOrdinaryField(el, el.BaseName(), el.Type[0])
			if err != nil {
				return nil, nil, nil, err
			}
			fields = append(fields, f)
			if companion := b.buildCompanion(f); companion != nil {
				fields = append(fields, companion)
			}
		}
	}

	return fields, nested, choices, nil
}

// buildChoice expands one `value[x]`-shaped element into its N sibling
// fields and the ChoiceGroup tying them together.
func (b *Builder) buildChoice(el model.ElementDefinition) (*ChoiceGroup, []*Field, error) {
	if len(el.Type) == 0 {
		return nil, nil, &ChoiceWithoutTypesError{Path: el.Path}
	}
	baseName := el.BaseName()

	if len(el.Type) == 1 {
		f, err := b.buildOrdinaryField(el, baseName, el.Type[0])
		if err != nil {
			return nil, nil, err
		}
		fields := []*Field{f}
		if companion := b.buildCompanion(f); companion != nil {
			fields = append(fields, companion)
		}
		return nil, fields, nil
	}

	var fields []*Field
	var names []string
	for _, t := range el.Type {
		variantBase := baseName + registry.PascalCase(t.Code)
		f, err := b.buildOrdinaryField(el, variantBase, t)
		if err != nil {
			return nil, nil, err
		}
		// Every variant is optional regardless of the element's min: at
		// most one of the siblings may be populated, so even a min=1
		// choice leaves each individual field unset most of the time.
		f.IsOptional = true
		f.IsChoiceVariant = true
		f.ChoiceBase = baseName
		fields = append(fields, f)
		names = append(names, f.TargetName)
		if companion := b.buildCompanion(f); companion != nil {
			fields = append(fields, companion)
		}
	}
	return &ChoiceGroup{BaseName: baseName, FieldNames: names}, fields, nil
}

// buildOrdinaryField builds one non-choice, non-backbone field from el,
// using baseName as the source name (which differs from el.BaseName() for
// choice variants, which carry the type-code suffix).
func (b *Builder) buildOrdinaryField(el model.ElementDefinition, baseName string, t model.TypeRef) (*Field, error) {
	tref, err := b.resolveType(t)
	if err != nil {
		return nil, err
	}

	f := &Field{
		SourceName:        baseName,
		TargetName:        registry.PascalCase(baseName),
		Type:              tref,
		IsOptional:        !el.IsRequired(),
		IsCollection:      el.IsArray(),
		SerializationName: baseName,
		Docstring:         el.Short,
	}

	if el.Binding != nil && el.Binding.ValueSet != "" &&
		(el.Binding.Strength == model.BindingRequired || el.Binding.Strength == model.BindingExtensible) {
		fb := &FieldBinding{Strength: el.Binding.Strength, ValueSet: el.Binding.ValueSet}
		if resolved := b.reg.ValueSets.Get(el.Binding.ValueSet); resolved != nil {
			fb.Enum = b.internEnum(resolved)
			f.Type = &TypeRef{Kind: RefEnum, Enum: fb.Enum}
		}
		f.Binding = fb
	}

	return f, nil
}

// buildBackboneField promotes a BackboneElement-typed direct child into its
// own nested RecordType plus a Named field referencing it.
func (b *Builder) buildBackboneField(sd *model.StructureDefinition, elements []model.ElementDefinition, el model.ElementDefinition, parentName string) (*Field, *RecordType, error) {
	nestedName := parentName + registry.PascalCase(el.BaseName())
	nestedFields, nestedNested, nestedChoices, err := b.buildFields(sd, elements, el.Path, nestedName, nil)
	if err != nil {
		return nil, nil, err
	}
	nestedRT := &RecordType{
		Name:         nestedName,
		Origin:       sd.URL + "#" + el.Path,
		Category:     registry.CategoryDataType,
		Docstring:    el.Short,
		Fields:       nestedFields,
		Nested:       nestedNested,
		ChoiceGroups: nestedChoices,
	}
	f := &Field{
		SourceName:        el.BaseName(),
		TargetName:        registry.PascalCase(el.BaseName()),
		Type:              &TypeRef{Kind: RefNamed, Named: nestedRT},
		IsOptional:        !el.IsRequired(),
		IsCollection:      el.IsArray(),
		SerializationName: el.BaseName(),
		Docstring:         el.Short,
	}
	return f, nestedRT, nil
}

// buildContentReferenceField resolves an element that reuses another
// element's shape by "#Path" reference, memoizing the resulting nested
// record by anchor so repeated or mutually-recursive references (e.g. a
// backbone element containing itself) share one RecordType.
func (b *Builder) buildContentReferenceField(sd *model.StructureDefinition, elements []model.ElementDefinition, el model.ElementDefinition) (*Field, error) {
	anchor := strings.TrimPrefix(el.ContentReference, "#")
	key := sd.URL + "#" + anchor

	nestedRT, ok := b.anchors[key]
	if !ok {
		nestedName := registry.PascalCase(sd.Type) + registry.PascalCase(lastSegment(anchor))
		nestedRT = &RecordType{Name: nestedName, Origin: key, Category: registry.CategoryDataType}
		b.anchors[key] = nestedRT

		fields, nested, choices, err := b.buildFields(sd, elements, anchor, nestedName, nil)
		if err != nil {
			return nil, err
		}
		nestedRT.Fields = fields
		nestedRT.Nested = nested
		nestedRT.ChoiceGroups = choices
	}

	return &Field{
		SourceName:        el.BaseName(),
		TargetName:        registry.PascalCase(el.BaseName()),
		Type:              &TypeRef{Kind: RefNamed, Named: nestedRT},
		IsOptional:        !el.IsRequired(),
		IsCollection:      el.IsArray(),
		SerializationName: el.BaseName(),
		Docstring:         el.Short,
	}, nil
}

// buildCompanion returns the "_foo" primitive-extension companion field for
// a primitive-typed field f, or nil when f does not need one. Fields whose
// binding resolved to an EnumType still qualify: the wire value remains a
// primitive code string and may carry element-level extensions.
func (b *Builder) buildCompanion(f *Field) *Field {
	if f.IsCompanion || (f.Type.Kind != RefPrimitive && f.Type.Kind != RefEnum) {
		return nil
	}
	return &Field{
		SourceName:        "_" + f.SourceName,
		TargetName:        "Ext" + f.TargetName,
		Type:              &TypeRef{Kind: RefNamed, Named: b.primitiveExtensionRecord()},
		IsOptional:        true,
		IsCollection:      f.IsCollection,
		SerializationName: "_" + f.SerializationName,
		Docstring:         fmt.Sprintf("Primitive extensions for %s.", f.TargetName),
		IsCompanion:       true,
	}
}

// primitiveExtensionRecord returns the shared {id, extension} companion
// shape, built from the loaded Element definition when present and
// synthesized minimally otherwise (small schema sets under test frequently
// omit the core Element definition).
func (b *Builder) primitiveExtensionRecord() *RecordType {
	if b.primExt != nil {
		return b.primExt
	}
	if entry := b.reg.LookupByTypeCode("Element"); entry != nil {
		if rt, err := b.buildRecord(entry); err == nil {
			b.primExt = rt
			return rt
		}
	}
	b.primExt = &RecordType{
		Name:      "Element",
		Category:  registry.CategoryDataType,
		Docstring: "Base definition for all elements in a resource.",
	}
	return b.primExt
}

// resolveType resolves one ElementDefinition.Type entry to a TypeRef,
// preferring a profiled Extension's own definition over the generic
// Extension datatype when exactly one profile is named.
func (b *Builder) resolveType(t model.TypeRef) (*TypeRef, error) {
	if t.Code == "Extension" && len(t.Profile) == 1 {
		// Profiles name their target by canonical URL; fall back to the
		// short name for schema sets that index extensions by name only.
		profileURL := model.NormalizeURL(t.Profile[0])
		entry := b.reg.Lookup(profileURL)
		if entry == nil {
			entry = b.reg.LookupByTypeCode(registry.ShortName(profileURL))
		}
		if entry != nil {
			rt, err := b.buildRecord(entry)
			if err != nil {
				return nil, err
			}
			return &TypeRef{Kind: RefNamed, Named: rt}, nil
		}
	}

	if kind, ok := registry.PrimitiveKindOf(t.Code); ok {
		return &TypeRef{Kind: RefPrimitive, Primitive: kind}, nil
	}

	entry := b.reg.LookupByTypeCode(t.Code)
	if entry == nil {
		return nil, &UnknownTypeError{Path: t.Code, Reason: "type code not found among loaded definitions"}
	}
	rt, err := b.buildRecord(entry)
	if err != nil {
		return nil, err
	}
	return &TypeRef{Kind: RefNamed, Named: rt}, nil
}

// internEnum returns the shared EnumType for a resolved value set, building
// it on first use.
func (b *Builder) internEnum(resolved *model.ResolvedValueSet) *EnumType {
	key := model.NormalizeURL(resolved.URL)
	if e, ok := b.enums[key]; ok {
		return e
	}

	name := registry.PascalCase(firstNonEmpty(resolved.Name, registry.ShortName(resolved.URL)))
	used := make(map[string]bool, len(resolved.Codes))
	variants := make([]EnumVariant, 0, len(resolved.Codes))
	for _, c := range resolved.Codes {
		vn := registry.PascalCase(c.Code)
		if vn == "" {
			vn = "Code"
		}
		orig := vn
		for i := 2; used[vn]; i++ {
			vn = fmt.Sprintf("%s%d", orig, i)
		}
		used[vn] = true
		variants = append(variants, EnumVariant{VariantName: vn, WireCode: c.Code, Docstring: c.Display})
	}

	e := &EnumType{Name: name, SourceValueSetURL: resolved.URL, Docstring: resolved.Title, Variants: variants}
	b.enums[key] = e
	return e
}

func validateCardinality(el model.ElementDefinition) error {
	if el.Min < 0 {
		return &CardinalityInvalidError{Path: el.Path, Reason: "min is negative"}
	}
	// Differential elements may omit max entirely; that is leniency, not an
	// error.
	if el.Max == "" || el.Max == "*" {
		return nil
	}
	max, err := strconv.Atoi(el.Max)
	if err != nil || max < 0 {
		return &CardinalityInvalidError{Path: el.Path, Reason: fmt.Sprintf("max %q is neither a non-negative integer nor \"*\"", el.Max)}
	}
	if el.Min > max {
		return &CardinalityInvalidError{Path: el.Path, Reason: fmt.Sprintf("min %d exceeds max %d", el.Min, max)}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func lastSegment(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

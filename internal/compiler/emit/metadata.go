package emit

import (
	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
)

// conformanceDirs mirrors layout.conformanceDirs: only records routed to
// these four subdirectories get the shared InvariantRecord/BindingRecord/
// CardinalityRecord/ConformanceDescriptor types the pinned template
// declares, since traits/bindings/primitives never carry constraint
// metadata of their own.
var conformanceDirs = map[layout.Dir]bool{
	layout.DirResource:   true,
	layout.DirDataTypes:  true,
	layout.DirProfiles:   true,
	layout.DirExtensions: true,
}

// needsConformance reports whether rt, routed to dir, carries any metadata
// worth a ConformanceDescriptor — checked ahead of import-line emission
// since writeConformance itself runs after the import header is printed.
func needsConformance(rt *ir.RecordType, dir layout.Dir) bool {
	if !conformanceDirs[dir] {
		return false
	}
	return len(rt.Invariants) != 0 || len(rt.Bindings) != 0 || len(rt.Cardinalities) != 0
}

// writeConformance emits rt's Conformance method, a sync.OnceValue-memoized
// accessor returning its ConformanceDescriptor: the canonical URL plus the
// invariant, binding, and cardinality rows the schema carried for it. Only
// top-level records get one; nested backbone records report their metadata
// through the owning record's descriptor.
func writeConformance(buf *sourceBuffer, rt *ir.RecordType, dir layout.Dir) {
	if !needsConformance(rt, dir) {
		return
	}

	buf.printf("var %sConformance = sync.OnceValue(func() ConformanceDescriptor {\n", lowerFirst(rt.Name))
	buf.printf("\treturn ConformanceDescriptor{\n")
	buf.printf("\t\tProfileURL: %q,\n", rt.ProfileURL)
	writeInvariants(buf, rt.Invariants)
	writeBindings(buf, rt.Bindings)
	writeCardinalities(buf, rt.Cardinalities)
	buf.printf("\t}\n")
	buf.printf("})\n\n")

	buf.printf("// Conformance returns %s's invariant, binding, and cardinality\n", rt.Name)
	buf.printf("// metadata, computed once and cached for the lifetime of the process.\n")
	buf.printf("func (r *%s) Conformance() ConformanceDescriptor {\n", rt.Name)
	buf.printf("\treturn %sConformance()\n", lowerFirst(rt.Name))
	buf.printf("}\n\n")
}

func writeInvariants(buf *sourceBuffer, rows []ir.InvariantRecord) {
	if len(rows) == 0 {
		return
	}
	buf.printf("\t\tInvariants: []InvariantRecord{\n")
	for _, r := range rows {
		buf.printf("\t\t\t{Key: %q, Severity: %q, Human: %q, Expression: %q},\n",
			r.Key, r.Severity, r.Human, r.Expression)
	}
	buf.printf("\t\t},\n")
}

func writeBindings(buf *sourceBuffer, rows []ir.BindingRecord) {
	if len(rows) == 0 {
		return
	}
	buf.printf("\t\tBindings: []BindingRecord{\n")
	for _, r := range rows {
		buf.printf("\t\t\t{Path: %q, Strength: %q, ValueSet: %q},\n",
			r.Path, r.Strength, r.ValueSet)
	}
	buf.printf("\t\t},\n")
}

func writeCardinalities(buf *sourceBuffer, rows []ir.CardinalityRecord) {
	if len(rows) == 0 {
		return
	}
	buf.printf("\t\tCardinalities: []CardinalityRecord{\n")
	for _, r := range rows {
		buf.printf("\t\t\t{Path: %q, Min: %d, Max: %q},\n", r.Path, r.Min, r.Max)
	}
	buf.printf("\t\t},\n")
}

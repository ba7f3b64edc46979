package emit

import (
	"fmt"
	"io"

	"github.com/fhirgen/schemac/internal/compiler/ir"
)

// recordGenerator emits one Go source file per top-level ir.RecordType: the
// struct itself, every backbone record it owns (ir.RecordType.Nested,
// recursively, each gets its own struct in the same file — tree ownership
// means nothing else ever references them), a Default constructor for every
// struct, the existence predicates its ChoiceGroups imply, and — for
// resource and profile records — the accessor/mutator/existence method
// sets. The matching interfaces live in the traits package, emitted by
// traitFaceGenerator.
type recordGenerator struct {
	rt           *ir.RecordType
	modulePrefix string
	withSerde    bool
}

func (g *recordGenerator) Filename() string {
	return toSnakeFile(g.rt.Name)
}

func (g *recordGenerator) Run(w io.Writer) error {
	dir := dirFor(g.rt.Category)
	imp := newImportSet(dir)
	imp.markLocal(g.rt, dir)
	collectImports(g.rt, imp)
	if needsConformance(g.rt, dir) {
		imp.addSync()
	}
	// Mutators deep-copy through common.Clone, so any record that carries
	// trait impls needs the runtime helper import declared up front —
	// writeTraitImpls runs after the import header is already printed. A
	// record with no own fields (a constraint profile) emits no mutators
	// and must not import the helper.
	if tracksTraits(g.rt) && len(g.rt.Fields) > 0 {
		imp.addCommon()
	}

	var buf sourceBuffer
	buf.printf("package %s\n\n", pkgFor(dir))
	for _, line := range imp.lines(g.modulePrefix) {
		buf.printf("import %q\n", line)
	}
	if len(imp.lines(g.modulePrefix)) > 0 {
		buf.printf("\n")
	}

	writeRecordTree(&buf, g.rt, imp, g.withSerde)
	writeConformance(&buf, g.rt, dir)

	out, err := formatSource(g.Filename(), buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// collectImports walks rt and every record it owns to gather the full set
// of cross-package references one file will need.
func collectImports(rt *ir.RecordType, imp *importSet) {
	if rt.Base != nil {
		imp.add(rt.Base)
	}
	for _, f := range rt.Fields {
		imp.addType(f.Type)
	}
	for _, n := range rt.Nested {
		collectImports(n, imp)
	}
}

// writeRecordTree emits rt's struct and Default, then recurses into its
// nested backbone records.
func writeRecordTree(buf *sourceBuffer, rt *ir.RecordType, imp *importSet, withSerde bool) {
	writeStruct(buf, rt, imp, withSerde)
	writeDefault(buf, rt, imp)
	if len(rt.ChoiceGroups) > 0 {
		writeChoicePredicates(buf, rt)
	}
	if tracksTraits(rt) {
		writeTraitImpls(buf, rt, imp)
	}
	for _, n := range rt.Nested {
		writeRecordTree(buf, n, imp, withSerde)
	}
}

func writeStruct(buf *sourceBuffer, rt *ir.RecordType, imp *importSet, withSerde bool) {
	switch {
	case rt.Docstring != "" && rt.IsAbstract:
		buf.printf("// %s is %s. It is an abstract base type, only ever\n", rt.Name, lowerFirst(rt.Docstring))
		buf.printf("// populated through the types embedding it.\n")
	case rt.Docstring != "":
		buf.printf("// %s is %s.\n", rt.Name, lowerFirst(rt.Docstring))
	}
	buf.printf("type %s struct {\n", rt.Name)
	if rt.Base != nil {
		// Anonymous embedding: Go promotes the base's fields and methods
		// onto rt, and encoding/json inlines the base's keys into rt's
		// JSON object, keeping the wire representation flat.
		buf.printf("\t%s\n\n", imp.qualify(&ir.TypeRef{Kind: ir.RefNamed, Named: rt.Base}))
	}
	for _, f := range rt.Fields {
		if f.Docstring != "" {
			buf.printf("\t// %s\n", oneLine(f.Docstring))
		}
		if withSerde {
			buf.printf("\t%s %s `json:\"%s\"`\n", f.TargetName, fieldGoType(f, imp), jsonTag(f))
		} else {
			buf.printf("\t%s %s\n", f.TargetName, fieldGoType(f, imp))
		}
	}
	buf.printf("}\n\n")
}

// writeDefault emits rt.Default(), always present so every record has one
// designated zero-value constructor, with mandatory fields explicitly
// initialized to their type's own default rather than relying on the
// struct's natural Go zero value.
func writeDefault(buf *sourceBuffer, rt *ir.RecordType, imp *importSet) {
	buf.printf("// %sDefault returns a %s with every mandatory field set to its\n", rt.Name, rt.Name)
	buf.printf("// type's own default value.\n")
	buf.printf("func %sDefault() %s {\n", rt.Name, rt.Name)
	buf.printf("\treturn %s{\n", rt.Name)
	if rt.Base != nil {
		baseRef := &ir.TypeRef{Kind: ir.RefNamed, Named: rt.Base}
		buf.printf("\t\t%s: %sDefault(),\n", rt.Base.Name, imp.qualify(baseRef))
	}
	for _, f := range rt.Fields {
		if f.IsOptional || f.IsCollection {
			continue
		}
		buf.printf("\t\t%s: %s,\n", f.TargetName, zeroValueExpr(f, imp))
	}
	buf.printf("\t}\n}\n\n")
}

func writeChoicePredicates(buf *sourceBuffer, rt *ir.RecordType) {
	for _, cg := range rt.ChoiceGroups {
		buf.printf("// Has%s reports whether any of the %s choice variants is set.\n",
			toPascal(cg.BaseName), cg.BaseName)
		buf.printf("func (r *%s) Has%s() bool {\n", rt.Name, toPascal(cg.BaseName))
		buf.printf("\treturn %s\n", existenceExpr(cg.FieldNames))
		buf.printf("}\n\n")
	}
}

func existenceExpr(fieldNames []string) string {
	expr := ""
	for i, name := range fieldNames {
		if i > 0 {
			expr += " || "
		}
		expr += fmt.Sprintf("r.%s != nil", name)
	}
	if expr == "" {
		return "false"
	}
	return expr
}

// fieldGoType returns the Go type expression for f: a collection is always
// a slice (nil means absent, no extra pointer needed); a non-collection
// optional field is a pointer so its absence is distinguishable from its
// zero value.
func fieldGoType(f *ir.Field, imp *importSet) string {
	base := imp.qualify(f.Type)
	if f.IsCollection {
		return "[]" + base
	}
	if f.IsOptional {
		return "*" + base
	}
	return base
}

func jsonTag(f *ir.Field) string {
	if f.IsOptional || f.IsCollection {
		return f.SerializationName + ",omitempty"
	}
	return f.SerializationName
}

// zeroValueExpr returns the literal Default expression for a mandatory
// field, used by writeDefault.
func zeroValueExpr(f *ir.Field, imp *importSet) string {
	switch f.Type.Kind {
	case ir.RefNamed:
		return imp.qualify(f.Type) + "Default()"
	case ir.RefEnum:
		return imp.qualify(f.Type) + "Default()"
	default:
		switch f.Type.Primitive.GoType() {
		case "string":
			return `""`
		case "bool":
			return "false"
		case "decimal.Decimal":
			return "decimal.Decimal{}"
		case "[]byte":
			return "nil"
		default:
			return "0"
		}
	}
}

package emit

import (
	"io"

	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
)

// traitFaceGenerator emits one file per resource/profile RecordType into the
// traits package: the Accessors/Mutators/Existence interface triple for
// rt's own fields, plus compile-time assertions that rt's
// concrete type satisfies rt's own triple *and* every resource ancestor's
// triple. The assertions live here, not beside the
// struct, so that only the traits package — which already has to import
// every record package to name field types — carries the dependency on
// concrete resource/profile/extension/datatype types; resource.go et al.
// never import traits, so there is no import cycle between the two.
type traitFaceGenerator struct {
	rt           *ir.RecordType
	modulePrefix string
}

func (g *traitFaceGenerator) Filename() string {
	return toSnakeFile(g.rt.Name)
}

func (g *traitFaceGenerator) Run(w io.Writer) error {
	rt := g.rt
	imp := newImportSet(layout.DirTraits)
	imp.markLocal(rt, dirFor(rt.Category))
	imp.add(rt)
	for _, f := range rt.Fields {
		imp.addType(f.Type)
	}
	// Ancestors contribute only interface names, which live in this same
	// traits package — never their concrete types — so they add no import.
	var traitAncestors []*ir.RecordType
	for _, anc := range rt.Ancestors {
		if tracksTraits(anc) {
			traitAncestors = append(traitAncestors, anc)
		}
	}

	var buf sourceBuffer
	buf.printf("package %s\n\n", pkgFor(layout.DirTraits))
	for _, line := range imp.lines(g.modulePrefix) {
		buf.printf("import %q\n", line)
	}
	if len(imp.lines(g.modulePrefix)) > 0 {
		buf.printf("\n")
	}

	writeTraitInterfaces(&buf, rt, imp)

	self := imp.qualify(&ir.TypeRef{Kind: ir.RefNamed, Named: rt})
	buf.printf("var (\n")
	buf.printf("\t_ %sAccessors = (*%s)(nil)\n", rt.Name, self)
	buf.printf("\t_ %sMutators  = (*%s)(nil)\n", rt.Name, self)
	buf.printf("\t_ %sExistence = (*%s)(nil)\n", rt.Name, self)
	for _, anc := range traitAncestors {
		buf.printf("\t_ %sAccessors = (*%s)(nil)\n", anc.Name, self)
		buf.printf("\t_ %sMutators  = (*%s)(nil)\n", anc.Name, self)
		buf.printf("\t_ %sExistence = (*%s)(nil)\n", anc.Name, self)
	}
	buf.printf(")\n")

	out, err := formatSource(g.Filename(), buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// writeTraitInterfaces emits rt's own Accessors/Mutators/Existence
// interfaces, mirroring the method set writeTraitImpls attaches to rt's
// concrete type field-for-field.
func writeTraitInterfaces(buf *sourceBuffer, rt *ir.RecordType, imp *importSet) {
	self := imp.qualify(&ir.TypeRef{Kind: ir.RefNamed, Named: rt})

	buf.printf("// %sAccessors exposes read-only access to %s's own fields.\n", rt.Name, rt.Name)
	buf.printf("type %sAccessors interface {\n", rt.Name)
	for _, f := range rt.Fields {
		buf.printf("\tGet%s() %s\n", f.TargetName, fieldGoType(f, imp))
	}
	buf.printf("}\n\n")

	buf.printf("// %sMutators builds copies of %s with one field changed.\n", rt.Name, rt.Name)
	buf.printf("type %sMutators interface {\n", rt.Name)
	for _, f := range rt.Fields {
		buf.printf("\tWith%s(v %s) *%s\n", f.TargetName, fieldGoType(f, imp), self)
		if f.IsCollection {
			buf.printf("\tAdd%s(v %s) *%s\n", f.TargetName, imp.qualify(f.Type), self)
		}
	}
	buf.printf("}\n\n")

	buf.printf("// %sExistence reports which of %s's optional or repeating fields are set.\n", rt.Name, rt.Name)
	buf.printf("type %sExistence interface {\n", rt.Name)
	for _, f := range rt.Fields {
		if f.IsOptional || f.IsCollection {
			buf.printf("\tHas%s() bool\n", f.TargetName)
		}
	}
	for _, cg := range rt.ChoiceGroups {
		buf.printf("\tHas%s() bool\n", toPascal(cg.BaseName))
	}
	buf.printf("}\n\n")
}

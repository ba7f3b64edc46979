package emit

import (
	"io"

	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
)

// enumGenerator emits one closed tag type per ir.EnumType into the bindings
// package: one variant per code, a to-wire and from-wire mapping, and a
// Default constructor returning the first declared variant.
type enumGenerator struct {
	enum *ir.EnumType
}

func (g *enumGenerator) Filename() string {
	return toSnakeFile(g.enum.Name)
}

func (g *enumGenerator) Run(w io.Writer) error {
	e := g.enum
	var buf sourceBuffer
	buf.printf("package %s\n\n", pkgFor(layout.DirBindings))
	buf.printf("import \"fmt\"\n\n")

	if e.Docstring != "" {
		buf.printf("// %s is %s.\n", e.Name, lowerFirst(e.Docstring))
	}
	buf.printf("type %s string\n\n", e.Name)

	buf.printf("// The %s variants, bound from %s.\n", e.Name, e.SourceValueSetURL)
	buf.printf("const (\n")
	for _, v := range e.Variants {
		if v.Docstring != "" {
			buf.printf("\t// %s is %q.\n", e.Name+v.VariantName, oneLine(v.Docstring))
		}
		buf.printf("\t%s%s %s = %q\n", e.Name, v.VariantName, e.Name, v.WireCode)
	}
	buf.printf(")\n\n")

	buf.printf("// %sDefault returns the designated default variant, %s%s.\n", e.Name, e.Name, e.DefaultVariant().VariantName)
	buf.printf("func %sDefault() %s {\n", e.Name, e.Name)
	buf.printf("\treturn %s%s\n", e.Name, e.DefaultVariant().VariantName)
	buf.printf("}\n\n")

	buf.printf("// WireCode returns v's FHIR wire-format code.\n")
	buf.printf("func (v %s) WireCode() string {\n\treturn string(v)\n}\n\n", e.Name)

	buf.printf("// Parse%s parses a FHIR wire-format code into a %s, failing if\n", e.Name, e.Name)
	buf.printf("// code does not match one of its declared variants.\n")
	buf.printf("func Parse%s(code string) (%s, error) {\n", e.Name, e.Name)
	buf.printf("\tswitch %s(code) {\n", e.Name)
	for _, v := range e.Variants {
		buf.printf("\tcase %s%s:\n\t\treturn %s%s, nil\n", e.Name, v.VariantName, e.Name, v.VariantName)
	}
	buf.printf("\t}\n")
	buf.printf("\treturn \"\", fmt.Errorf(\"%s: unrecognized code %%q\", code)\n", e.Name)
	buf.printf("}\n")

	out, err := formatSource(g.Filename(), buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

package emit

import (
	"io"

	"github.com/fhirgen/schemac/internal/compiler/layout"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// primitiveGenerator emits one transparent type alias per FHIR primitive
// definition into the primitives package: no derive block, no trait impls,
// no invariants table. Primitives never become ir.RecordTypes (ir.Builder
// skips them outright), so this generator is driven directly from the
// registry entry rather than from the IR.
type primitiveGenerator struct {
	name     string // canonicalized Go name, e.g. "Boolean"
	fhirType string // FHIR primitive type code, e.g. "boolean"
	docs     string
}

func (g *primitiveGenerator) Filename() string {
	return toSnakeFile(g.name)
}

func (g *primitiveGenerator) Run(w io.Writer) error {
	kind, ok := registry.PrimitiveKindOf(g.fhirType)
	if !ok {
		kind = registry.PrimitiveString
	}

	var buf sourceBuffer
	buf.printf("package %s\n\n", pkgFor(layout.DirPrimitives))
	if kind == registry.PrimitiveDecimal {
		buf.printf("import \"github.com/shopspring/decimal\"\n\n")
	}
	if g.docs != "" {
		buf.printf("// %s is %s.\n", g.name, lowerFirst(g.docs))
	} else {
		buf.printf("// %s is the FHIR %q primitive type.\n", g.name, g.fhirType)
	}
	buf.printf("type %s = %s\n", g.name, kind.GoType())

	out, err := formatSource(g.Filename(), buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

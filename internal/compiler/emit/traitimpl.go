package emit

import (
	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// tracksTraits reports whether rt gets the three trait interfaces:
// concrete resources and the profiles derived from them.
func tracksTraits(rt *ir.RecordType) bool {
	return rt.Category == registry.CategoryResource || rt.Category == registry.CategoryProfile
}

// writeTraitImpls emits the Accessor, Mutator, and Existence method set for
// rt's own (non-inherited) fields. The compile-time assertions that rt
// satisfies its traits-package interfaces are emitted by
// traitFaceGenerator, not here. Inherited fields need no method
// here at all — Go's anonymous-embedding promotion already surfaces the
// ancestor's own methods on rt.
func writeTraitImpls(buf *sourceBuffer, rt *ir.RecordType, imp *importSet) {
	if len(rt.Fields) > 0 {
		imp.addCommon()
	}

	for _, f := range rt.Fields {
		writeAccessor(buf, rt, f, imp)
		writeMutator(buf, rt, f, imp)
		if f.IsCollection {
			writeAppend(buf, rt, f, imp)
		}
		if f.IsOptional || f.IsCollection {
			writeExistence(buf, rt, f)
		}
	}
}

func writeAccessor(buf *sourceBuffer, rt *ir.RecordType, f *ir.Field, imp *importSet) {
	buf.printf("// Get%s returns the %s field.\n", f.TargetName, f.SourceName)
	buf.printf("func (r *%s) Get%s() %s {\n", rt.Name, f.TargetName, fieldGoType(f, imp))
	buf.printf("\treturn r.%s\n", f.TargetName)
	buf.printf("}\n\n")
}

// writeMutator emits a copy-then-modify setter: it deep-copies the receiver
// via common.Clone, overwrites the one field, and returns the copy, so a
// caller can chain r.WithActive(...).WithGender(...) without mutating the
// original.
func writeMutator(buf *sourceBuffer, rt *ir.RecordType, f *ir.Field, imp *importSet) {
	buf.printf("// With%s returns a copy of r with %s set to v.\n", f.TargetName, f.SourceName)
	buf.printf("func (r *%s) With%s(v %s) *%s {\n", rt.Name, f.TargetName, fieldGoType(f, imp), rt.Name)
	buf.printf("\tc := common.Clone(r)\n")
	buf.printf("\tc.%s = v\n", f.TargetName)
	buf.printf("\treturn c\n")
	buf.printf("}\n\n")
}

// writeAppend emits Add<Field>, appending one element to a repeating field
// via the same copy-then-modify discipline as writeMutator.
func writeAppend(buf *sourceBuffer, rt *ir.RecordType, f *ir.Field, imp *importSet) {
	elemType := imp.qualify(f.Type)
	buf.printf("// Add%s returns a copy of r with v appended to %s.\n", f.TargetName, f.SourceName)
	buf.printf("func (r *%s) Add%s(v %s) *%s {\n", rt.Name, f.TargetName, elemType, rt.Name)
	buf.printf("\tc := common.Clone(r)\n")
	buf.printf("\tc.%s = append(c.%s, v)\n", f.TargetName, f.TargetName)
	buf.printf("\treturn c\n")
	buf.printf("}\n\n")
}

func writeExistence(buf *sourceBuffer, rt *ir.RecordType, f *ir.Field) {
	buf.printf("// Has%s reports whether %s is present.\n", f.TargetName, f.SourceName)
	buf.printf("func (r *%s) Has%s() bool {\n", rt.Name, f.TargetName)
	if f.IsCollection {
		buf.printf("\treturn len(r.%s) > 0\n", f.TargetName)
	} else {
		buf.printf("\treturn r.%s != nil\n", f.TargetName)
	}
	buf.printf("}\n\n")
}

// Package emit lowers the frozen IR into formatted Go source files and
// pairs each with the output subdirectory it belongs in. Build is the
// single entry point; the layout writer consumes its artifacts.
package emit

import (
	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// Options carries the generation knobs that change what Build produces.
type Options struct {
	// ModulePrefix is the Go import path prefix generated files use to
	// reference each other.
	ModulePrefix string
	// WithSerde controls JSON struct tag emission; when false, generated
	// structs carry no serialization tags.
	WithSerde bool
	// EmitProfiles controls whether profile-classified definitions are
	// emitted at all.
	EmitProfiles bool
}

// Build lowers program into the full set of artifacts the writer produces,
// plus one type-alias artifact per primitive definition (primitives never
// become RecordTypes, so they are driven straight from the registry).
func Build(program *ir.Program, reg *registry.Registry, opts Options) []layout.Artifact {
	var artifacts []layout.Artifact

	for _, rt := range program.Records {
		if rt.Category == registry.CategoryProfile && !opts.EmitProfiles {
			continue
		}
		artifacts = append(artifacts, layout.Artifact{
			Dir: dirFor(rt.Category),
			Gen: &recordGenerator{rt: rt, modulePrefix: opts.ModulePrefix, withSerde: opts.WithSerde},
		})
		if tracksTraits(rt) {
			artifacts = append(artifacts, layout.Artifact{
				Dir: layout.DirTraits,
				Gen: &traitFaceGenerator{rt: rt, modulePrefix: opts.ModulePrefix},
			})
		}
	}

	for _, e := range program.Enums {
		artifacts = append(artifacts, layout.Artifact{
			Dir: layout.DirBindings,
			Gen: &enumGenerator{enum: e},
		})
	}

	for _, entry := range reg.All() {
		if entry.Category != registry.CategoryPrimitive {
			continue
		}
		artifacts = append(artifacts, layout.Artifact{
			Dir: layout.DirPrimitives,
			Gen: &primitiveGenerator{
				name:     entry.GoName,
				fhirType: entry.Definition.Type,
				docs:     firstNonEmptyDoc(entry.Definition.Title, entry.Definition.Name),
			},
		})
	}

	return artifacts
}

func firstNonEmptyDoc(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

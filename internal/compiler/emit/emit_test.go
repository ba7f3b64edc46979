package emit_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirgen/schemac/internal/compiler/emit"
	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

const testdataDir = "../../../testdata/fhir"

func buildArtifacts(t *testing.T) ([]layout.Artifact, *ir.Program) {
	t.Helper()
	schema, err := loader.Load(context.Background(), testdataDir)
	require.NoError(t, err)
	reg, err := registry.Build(schema)
	require.NoError(t, err)
	program, err := ir.Build(reg)
	require.NoError(t, err)
	opts := emit.Options{
		ModulePrefix: "github.com/fhirgen/schemac-testdata",
		WithSerde:    true,
		EmitProfiles: true,
	}
	return emit.Build(program, reg, opts), program
}

func runArtifact(t *testing.T, a layout.Artifact) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, a.Gen.Run(&buf))
	return buf.String()
}

func findArtifact(t *testing.T, artifacts []layout.Artifact, dir layout.Dir, filename string) layout.Artifact {
	t.Helper()
	for _, a := range artifacts {
		if a.Dir == dir && a.Gen.Filename() == filename {
			return a
		}
	}
	t.Fatalf("artifact %s/%s not found", dir, filename)
	return layout.Artifact{}
}

func TestBuild_EmitsOneArtifactPerRecordAndEnum(t *testing.T) {
	artifacts, program := buildArtifacts(t)

	var records, traits, enums int
	for _, a := range artifacts {
		switch a.Dir {
		case layout.DirTraits:
			traits++
		case layout.DirBindings:
			enums++
		case layout.DirResource, layout.DirDataTypes, layout.DirProfiles, layout.DirExtensions:
			records++
		}
	}
	assert.Equal(t, len(program.Records), records)
	assert.Equal(t, len(program.Enums), enums)
	assert.Greater(t, traits, 0)
}

func TestRecordGenerator_EmitsTraitMethodsForResources(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirResource, "patient.go")
	src := runArtifact(t, a)

	assert.Contains(t, src, "func (r *Patient) GetActive()")
	assert.Contains(t, src, "func (r *Patient) WithActive(")
	assert.Contains(t, src, "func (r *Patient) AddName(")
	assert.Contains(t, src, "common.Clone(r)")
	assert.Contains(t, src, "func (r *Patient) Conformance() ConformanceDescriptor")
}

func TestTraitFaceGenerator_EmitsInterfaceTripleAndAssertion(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirTraits, "patient.go")
	src := runArtifact(t, a)

	assert.Contains(t, src, "type PatientAccessors interface")
	assert.Contains(t, src, "type PatientMutators interface")
	assert.Contains(t, src, "type PatientExistence interface")
	assert.Contains(t, src, "= (*resource.Patient)(nil)")

	// Patient's loaded ancestors contribute one assertion per trait, so
	// *resource.Patient provably satisfies every inherited triple.
	for _, iface := range []string{
		"_ DomainResourceAccessors", "_ DomainResourceMutators", "_ DomainResourceExistence",
		"_ ResourceAccessors", "_ ResourceMutators", "_ ResourceExistence",
	} {
		assert.Contains(t, src, iface)
	}
}

func TestTraitFaceGenerator_ProfileNeedsNoAncestorPackageImport(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirTraits, "patient_minimal.go")
	src := runArtifact(t, a)

	assert.Contains(t, src, "= (*profiles.PatientMinimal)(nil)")
	assert.Contains(t, src, "_ PatientAccessors")
	assert.Contains(t, src, "_ ResourceExistence")

	// Ancestors contribute interface names from this same package only;
	// importing their concrete packages would be an unused import.
	assert.Contains(t, src, "src/profiles")
	assert.NotContains(t, src, "src/resource")
}

func TestBuild_EmitProfilesFalseSkipsProfileArtifacts(t *testing.T) {
	schema, err := loader.Load(context.Background(), testdataDir)
	require.NoError(t, err)
	reg, err := registry.Build(schema)
	require.NoError(t, err)
	program, err := ir.Build(reg)
	require.NoError(t, err)

	artifacts := emit.Build(program, reg, emit.Options{ModulePrefix: "example.com/noprof", WithSerde: true})
	for _, a := range artifacts {
		assert.NotEqual(t, layout.DirProfiles, a.Dir)
		assert.NotEqual(t, "patient_minimal.go", a.Gen.Filename())
	}
}

func TestEnumGenerator_EmitsVariantsAndParser(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirBindings, "administrative_gender.go")
	src := runArtifact(t, a)

	assert.Contains(t, src, "type AdministrativeGender string")
	assert.Contains(t, src, "AdministrativeGenderMale")
	assert.Contains(t, src, "func ParseAdministrativeGender(code string)")
}

func TestRecordGenerator_ChoiceGroupsGetExistencePredicates(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirResource, "observation.go")
	src := runArtifact(t, a)

	assert.Contains(t, src, "func (r *Observation) HasEffective() bool")
	assert.Contains(t, src, "r.EffectiveDateTime != nil || r.EffectivePeriod != nil")
	assert.Contains(t, src, "type ObservationComponent struct")
}

func TestRecordGenerator_MandatoryEnumFieldDefaultsToFirstVariant(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirResource, "observation.go")
	src := runArtifact(t, a)

	assert.Contains(t, src, "bindings.ObservationStatus")
	assert.Contains(t, src, "`json:\"status\"`")
	assert.Regexp(t, `Status:\s+bindings\.ObservationStatusDefault\(\),`, src)
}

func TestBuild_WithoutSerdeOmitsJSONTags(t *testing.T) {
	schema, err := loader.Load(context.Background(), testdataDir)
	require.NoError(t, err)
	reg, err := registry.Build(schema)
	require.NoError(t, err)
	program, err := ir.Build(reg)
	require.NoError(t, err)

	artifacts := emit.Build(program, reg, emit.Options{ModulePrefix: "example.com/plain", EmitProfiles: true})
	a := findArtifact(t, artifacts, layout.DirResource, "patient.go")
	src := runArtifact(t, a)

	assert.NotContains(t, src, "`json:")
}

func TestRecordGenerator_NestedBackboneReferencedUnqualifiedInOwningFile(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirResource, "observation.go")
	src := runArtifact(t, a)

	// ObservationComponent is classified CategoryDataType but is only ever
	// written inline in observation.go, never its own file in datatypes/ —
	// the field referencing it must stay unqualified, not "datatypes.ObservationComponent".
	assert.Contains(t, src, "[]ObservationComponent")
	assert.NotContains(t, src, "datatypes.ObservationComponent")
}

func TestRecordGenerator_ExtensionRoutedStandaloneAndReferencedByName(t *testing.T) {
	artifacts, _ := buildArtifacts(t)

	ext := findArtifact(t, artifacts, layout.DirExtensions, "birth_place.go")
	extSrc := runArtifact(t, ext)
	assert.Contains(t, extSrc, "package extensions")
	assert.Contains(t, extSrc, "type BirthPlace struct")
	assert.Contains(t, extSrc, "datatypes.Extension")

	patient := findArtifact(t, artifacts, layout.DirResource, "patient.go")
	patientSrc := runArtifact(t, patient)
	assert.Contains(t, patientSrc, "extensions.BirthPlace")
	assert.NotContains(t, patientSrc, "type BirthPlace struct")
}

func TestTraitFaceGenerator_NestedBackboneQualifiedWithOwningResourcePackage(t *testing.T) {
	artifacts, _ := buildArtifacts(t)
	a := findArtifact(t, artifacts, layout.DirTraits, "observation.go")
	src := runArtifact(t, a)

	assert.Contains(t, src, "GetComponent() []resource.ObservationComponent")
}

package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

const testdataDir = "../../../testdata/fhir"

func loadTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	schema, err := loader.Load(context.Background(), testdataDir)
	require.NoError(t, err)
	reg, err := registry.Build(schema)
	require.NoError(t, err)
	return reg
}

func TestBuild_ClassifiesEveryKind(t *testing.T) {
	reg := loadTestRegistry(t)

	patient := reg.LookupByTypeCode("Patient")
	require.NotNil(t, patient)
	assert.Equal(t, registry.CategoryResource, patient.Category)

	humanName := reg.LookupByTypeCode("HumanName")
	require.NotNil(t, humanName)
	assert.Equal(t, registry.CategoryDataType, humanName.Category)

	minimal := reg.Lookup("http://example.org/fhir/StructureDefinition/patient-minimal")
	require.NotNil(t, minimal)
	assert.Equal(t, registry.CategoryProfile, minimal.Category)
}

func TestBuild_ResolvesBaseChainThroughLoadedAncestors(t *testing.T) {
	reg := loadTestRegistry(t)

	patient := reg.LookupByTypeCode("Patient")
	require.NotNil(t, patient)
	require.Len(t, patient.BaseChain, 2)
	assert.Equal(t, "DomainResource", patient.BaseChain[0].Name)
	assert.Equal(t, "Resource", patient.BaseChain[1].Name)

	resource := reg.LookupByTypeCode("Resource")
	require.NotNil(t, resource)
	assert.Empty(t, resource.BaseChain)
}

func TestResolveBaseChain_TerminatesAtAbsentWellKnownRoot(t *testing.T) {
	dir := t.TempDir()
	solo := []byte(`{
		"resourceType": "StructureDefinition",
		"url": "http://example.org/Solo",
		"name": "Solo",
		"type": "Solo",
		"kind": "resource",
		"baseDefinition": "http://hl7.org/fhir/StructureDefinition/DomainResource",
		"snapshot": {"element": [{"id": "Solo", "path": "Solo", "min": 0, "max": "*"}]}
	}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "solo.json"), solo, 0o644))

	schema, err := loader.Load(context.Background(), dir)
	require.NoError(t, err)
	reg, err := registry.Build(schema)
	require.NoError(t, err)

	// DomainResource is not in the loaded set; the chain terminates at the
	// well-known root rather than erroring.
	entry := reg.Lookup("http://example.org/Solo")
	require.NotNil(t, entry)
	assert.Empty(t, entry.BaseChain)
	assert.Equal(t, registry.CategoryResource, entry.Category)
}

func TestValueSetResolver_ResolvesInlineConceptList(t *testing.T) {
	reg := loadTestRegistry(t)

	resolved := reg.ValueSets.Get("http://hl7.org/fhir/ValueSet/administrative-gender")
	require.NotNil(t, resolved)
	assert.Len(t, resolved.Codes, 4)
}

func TestPascalCase_HandlesCommonShapes(t *testing.T) {
	assert.Equal(t, "HumanName", registry.PascalCase("HumanName"))
	assert.Equal(t, "BirthDate", registry.PascalCase("birthDate"))
}

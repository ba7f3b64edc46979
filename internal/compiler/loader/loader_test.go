package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirgen/schemac/internal/compiler/loader"
)

const testdataDir = "../../../testdata/fhir"

func TestLoad_IndexesEveryDefinition(t *testing.T) {
	schema, err := loader.Load(context.Background(), testdataDir)
	require.NoError(t, err)

	assert.NotEmpty(t, schema.StructureDefinitions)
	assert.Contains(t, schema.ByURL, "http://hl7.org/fhir/StructureDefinition/Patient")
	assert.Contains(t, schema.ByURL, "http://hl7.org/fhir/StructureDefinition/Observation")
	assert.Contains(t, schema.ByURL, "http://hl7.org/fhir/StructureDefinition/HumanName")

	assert.Contains(t, schema.ValueSetsByURL, "http://hl7.org/fhir/ValueSet/administrative-gender")
	assert.Contains(t, schema.CodeSystemsByURL, "http://hl7.org/fhir/administrative-gender")

	patients := schema.ByName["Patient"]
	require.Len(t, patients, 1)
	assert.Equal(t, "resource", patients[0].Kind)
}

func TestLoad_DuplicateURLIsFatal(t *testing.T) {
	dir := t.TempDir()
	dup := []byte(`{
		"resourceType": "StructureDefinition",
		"url": "http://example.org/A",
		"name": "A",
		"type": "A",
		"kind": "resource",
		"snapshot": {"element": [{"id": "A", "path": "A", "min": 0, "max": "*"}]}
	}`)
	require.NoError(t, writeFile(dir, "a1.json", dup))
	require.NoError(t, writeFile(dir, "a2.json", dup))

	_, err := loader.Load(context.Background(), dir)
	require.Error(t, err)
	var dupErr *loader.DuplicateURLError
	assert.ErrorAs(t, err, &dupErr)
}

func TestLoad_MissingRequiredFieldIsFatal(t *testing.T) {
	dir := t.TempDir()
	malformed := []byte(`{
		"resourceType": "StructureDefinition",
		"url": "http://example.org/B",
		"name": "B"
	}`)
	require.NoError(t, writeFile(dir, "b.json", malformed))

	_, err := loader.Load(context.Background(), dir)
	require.Error(t, err)
	var malformedErr *loader.SchemaMalformedError
	assert.ErrorAs(t, err, &malformedErr)
}

func TestLoad_NonConformanceFileIsWarned(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(dir, "readme.json", []byte(`{"notes": "not a resource"}`)))

	schema, err := loader.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, schema.StructureDefinitions)
	assert.NotEmpty(t, schema.Warnings)
}

func writeFile(dir, name string, data []byte) error {
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirgen/schemac/internal/compiler"
)

const testdataDir = "../../testdata/fhir"

func TestPipeline_Run_WritesGeneratedPackage(t *testing.T) {
	outDir := t.TempDir()
	p := compiler.NewPipeline(compiler.Config{
		SchemaDir:    testdataDir,
		OutputDir:    outDir,
		PackageName:  "fhir",
		ModulePrefix: "example.com/generated-fhir",
		WithSerde:    true,
		EmitProfiles: true,
	})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Greater(t, result.RecordCount, 0)
	assert.Greater(t, result.EnumCount, 0)

	assert.FileExists(t, filepath.Join(outDir, "src", "resource", "patient.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "resource", "observation.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "resource", "domain_resource.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "datatypes", "human_name.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "extensions", "birth_place.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "profiles", "patient_minimal.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "traits", "patient.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "traits", "patient_minimal.go"))
	assert.FileExists(t, filepath.Join(outDir, "src", "bindings", "administrative_gender.go"))
	assert.FileExists(t, filepath.Join(outDir, "go.mod"))
}

func TestPipeline_Run_RequiresSchemaAndOutputDir(t *testing.T) {
	_, err := compiler.NewPipeline(compiler.Config{OutputDir: t.TempDir()}).Run(context.Background())
	assert.Error(t, err)

	_, err = compiler.NewPipeline(compiler.Config{SchemaDir: testdataDir}).Run(context.Background())
	assert.Error(t, err)
}

func TestPipeline_Run_FailsOnMissingSchemaDir(t *testing.T) {
	p := compiler.NewPipeline(compiler.Config{
		SchemaDir: filepath.Join(os.TempDir(), "does-not-exist-schemac"),
		OutputDir: t.TempDir(),
	})
	_, err := p.Run(context.Background())
	assert.Error(t, err)
}

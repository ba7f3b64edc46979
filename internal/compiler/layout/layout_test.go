package layout_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirgen/schemac/internal/compiler/layout"
)

type fakeGenerator struct {
	filename string
	body     string
	fail     bool
}

func (g *fakeGenerator) Filename() string { return g.filename }

func (g *fakeGenerator) Run(w io.Writer) error {
	if g.fail {
		return assert.AnError
	}
	_, err := io.WriteString(w, g.body)
	return err
}

func TestWriter_WritesArtifactsAndModuleIndexes(t *testing.T) {
	dir := t.TempDir()
	w := layout.NewWriter(layout.Config{OutputDir: dir, PackageName: "fhir", ModulePrefix: "example.com/fhir"})

	artifacts := []layout.Artifact{
		{Dir: layout.DirResource, Gen: &fakeGenerator{filename: "patient.go", body: "package resource\n"}},
		{Dir: layout.DirDataTypes, Gen: &fakeGenerator{filename: "human_name.go", body: "package datatypes\n"}},
	}

	warnings, err := w.Write(artifacts)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.FileExists(t, filepath.Join(dir, "src", "resource", "patient.go"))
	assert.FileExists(t, filepath.Join(dir, "src", "resource", "conformance.go"))
	assert.FileExists(t, filepath.Join(dir, "src", "resource", "doc.go"))
	assert.FileExists(t, filepath.Join(dir, "src", "datatypes", "conformance.go"))
	assert.FileExists(t, filepath.Join(dir, "src", "doc.go"))
	assert.FileExists(t, filepath.Join(dir, "go.mod"))
}

func TestWriter_RecoversFromNameCollision(t *testing.T) {
	dir := t.TempDir()
	w := layout.NewWriter(layout.Config{OutputDir: dir, PackageName: "fhir", ModulePrefix: "example.com/fhir"})

	artifacts := []layout.Artifact{
		{Dir: layout.DirBindings, Gen: &fakeGenerator{filename: "code.go", body: "package bindings\n// first\n"}},
		{Dir: layout.DirBindings, Gen: &fakeGenerator{filename: "code.go", body: "package bindings\n// second\n"}},
	}

	warnings, err := w.Write(artifacts)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, layout.DirBindings, warnings[0].Dir)
	assert.Equal(t, "code.go", warnings[0].Filename)

	data, err := os.ReadFile(filepath.Join(dir, "src", "bindings", "code.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")
}

func TestWriter_PropagatesGeneratorErrorUnwrapped(t *testing.T) {
	dir := t.TempDir()
	w := layout.NewWriter(layout.Config{OutputDir: dir, PackageName: "fhir", ModulePrefix: "example.com/fhir"})

	artifacts := []layout.Artifact{
		{Dir: layout.DirResource, Gen: &fakeGenerator{filename: "broken.go", fail: true}},
	}

	_, err := w.Write(artifacts)
	require.Error(t, err)
	assert.Equal(t, assert.AnError, err)
}

func TestWriter_DoesNotOverwriteExistingManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module existing\n"), 0o644))

	w := layout.NewWriter(layout.Config{OutputDir: dir, PackageName: "fhir", ModulePrefix: "example.com/fhir"})
	_, err := w.Write(nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	assert.Equal(t, "module existing\n", string(data))
}

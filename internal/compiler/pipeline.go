// Package compiler wires the five compiler stages — loader, registry, ir,
// emit, layout — into the single entry point a CLI or library caller
// drives.
package compiler

import (
	"context"
	"fmt"

	"github.com/fhirgen/schemac/internal/compiler/emit"
	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// Config holds every knob a driver can set. WithSerde controls JSON struct
// tag emission; EmitProfiles controls whether profile-classified
// definitions are generated at all.
type Config struct {
	SchemaDir    string
	OutputDir    string
	PackageName  string
	ModulePrefix string
	WithSerde    bool
	EmitProfiles bool
}

// Result summarizes one completed run: every definition processed, the
// warnings the layout Writer recovered from, and the loader's own
// best-effort warnings.
type Result struct {
	SchemaWarnings []string
	WriteWarnings  []layout.Warning
	RecordCount    int
	EnumCount      int
}

// Pipeline drives the five stages in order: Load, Build (registry), Build
// (ir), Build (emit), Write (layout). Every stage's fatal error is returned
// unwrapped so callers can type-switch on the concrete error types.
type Pipeline struct {
	cfg Config
}

// NewPipeline constructs a Pipeline for cfg.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes the full compilation: schema loading, type resolution, IR
// construction, code emission, and package writing, in that order, aborting
// at the first fatal error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.cfg.SchemaDir == "" {
		return nil, fmt.Errorf("compiler: SchemaDir is required")
	}
	if p.cfg.OutputDir == "" {
		return nil, fmt.Errorf("compiler: OutputDir is required")
	}
	packageName := p.cfg.PackageName
	if packageName == "" {
		packageName = "fhir-generated"
	}
	modulePrefix := p.cfg.ModulePrefix
	if modulePrefix == "" {
		modulePrefix = packageName
	}

	schema, err := loader.Load(ctx, p.cfg.SchemaDir)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Build(schema)
	if err != nil {
		return nil, err
	}

	program, err := ir.Build(reg)
	if err != nil {
		return nil, err
	}

	artifacts := emit.Build(program, reg, emit.Options{
		ModulePrefix: modulePrefix,
		WithSerde:    p.cfg.WithSerde,
		EmitProfiles: p.cfg.EmitProfiles,
	})

	writer := layout.NewWriter(layout.Config{
		OutputDir:    p.cfg.OutputDir,
		PackageName:  packageName,
		ModulePrefix: modulePrefix,
	})
	warnings, err := writer.Write(artifacts)
	if err != nil {
		return nil, err
	}

	return &Result{
		SchemaWarnings: schema.Warnings,
		WriteWarnings:  warnings,
		RecordCount:    len(program.Records),
		EnumCount:      len(program.Enums),
	}, nil
}

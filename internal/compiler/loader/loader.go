// Package loader reads FHIR schema artifacts from a directory tree,
// deserializes them into the neutral schema model
// (model.StructureDefinition / model.ValueSet / model.CodeSystem), and
// builds the URL/name indices the type registry consumes.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fhirgen/schemac/internal/compiler/model"
)

// Schema is the Loader's output: every definition found under a schema
// directory, plus lookup indices by canonical URL and by name.
type Schema struct {
	StructureDefinitions []*model.StructureDefinition
	ValueSets            []*model.ValueSet
	CodeSystems          []*model.CodeSystem

	ByURL            map[string]*model.StructureDefinition
	ByName           map[string][]*model.StructureDefinition
	ValueSetsByURL   map[string]*model.ValueSet
	CodeSystemsByURL map[string]*model.CodeSystem

	// DifferentialOnly holds the URLs of definitions that had a
	// differential but no snapshot; element expansion for these is
	// deferred to the IR builder.
	DifferentialOnly map[string]bool

	// Warnings accumulates non-fatal messages (skipped files, bundles
	// outside the FHIR conformance shape).
	Warnings []string
}

// Load walks dir, parsing every *.json file it finds (either a loose
// conformance resource or a Bundle of them), and returns the assembled
// Schema. It is fatal on SchemaMalformed, DuplicateUrl, a failure walking
// dir, a file that cannot be read (ReadError), or a cancelled ctx; files
// outside the conformance shape and definitions with neither snapshot nor
// differential are recorded as warnings.
func Load(ctx context.Context, dir string) (*Schema, error) {
	s := &Schema{
		ByURL:            make(map[string]*model.StructureDefinition),
		ByName:           make(map[string][]*model.StructureDefinition),
		ValueSetsByURL:   make(map[string]*model.ValueSet),
		CodeSystemsByURL: make(map[string]*model.CodeSystem),
		DifferentialOnly: make(map[string]bool),
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".json") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	for _, path := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := s.loadFile(path); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Schema) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ReadError{Path: path, Err: err}
	}

	var peek struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: not a JSON conformance resource, skipped", path))
		return nil
	}

	switch peek.ResourceType {
	case model.ResourceTypeStructureDefinition:
		return s.addStructureDefinition(data, path)
	case model.ResourceTypeValueSet:
		return s.addValueSet(data, path)
	case model.ResourceTypeCodeSystem:
		return s.addCodeSystem(data, path)
	case model.ResourceTypeBundle:
		return s.loadBundle(data, path)
	default:
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: resourceType %q outside the FHIR conformance shape, skipped", path, peek.ResourceType))
		return nil
	}
}

func (s *Schema) loadBundle(data []byte, path string) error {
	var bundle struct {
		ResourceType string `json:"resourceType"`
		Entry        []struct {
			Resource json.RawMessage `json:"resource"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return &SchemaMalformedError{Path: path, Reason: err.Error()}
	}
	for i, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		entryPath := fmt.Sprintf("%s#entry[%d]", path, i)
		var peek struct {
			ResourceType string `json:"resourceType"`
		}
		if err := json.Unmarshal(entry.Resource, &peek); err != nil {
			s.Warnings = append(s.Warnings, fmt.Sprintf("%s: unreadable entry, skipped", entryPath))
			continue
		}
		switch peek.ResourceType {
		case model.ResourceTypeStructureDefinition:
			if err := s.addStructureDefinition(entry.Resource, entryPath); err != nil {
				return err
			}
		case model.ResourceTypeValueSet:
			if err := s.addValueSet(entry.Resource, entryPath); err != nil {
				return err
			}
		case model.ResourceTypeCodeSystem:
			if err := s.addCodeSystem(entry.Resource, entryPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Schema) addStructureDefinition(data []byte, path string) error {
	var sd model.StructureDefinition
	if err := json.Unmarshal(data, &sd); err != nil {
		return &SchemaMalformedError{Path: path, Reason: err.Error()}
	}
	if sd.URL == "" || sd.Type == "" || sd.Kind == "" {
		return &SchemaMalformedError{Path: path, DefinitionURL: sd.URL, Reason: "missing required field: url, type, or kind"}
	}
	if _, dup := s.ByURL[sd.URL]; dup {
		return &DuplicateURLError{URL: sd.URL}
	}

	if !sd.HasSnapshot() && sd.HasDifferential() {
		s.DifferentialOnly[sd.URL] = true
	} else if !sd.HasSnapshot() && !sd.HasDifferential() {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: %s has neither snapshot nor differential, skipped", path, sd.URL))
		return nil
	}

	ptr := &sd
	s.StructureDefinitions = append(s.StructureDefinitions, ptr)
	s.ByURL[sd.URL] = ptr
	s.ByName[sd.Name] = append(s.ByName[sd.Name], ptr)
	return nil
}

func (s *Schema) addValueSet(data []byte, path string) error {
	var vs model.ValueSet
	if err := json.Unmarshal(data, &vs); err != nil {
		return &SchemaMalformedError{Path: path, Reason: err.Error()}
	}
	if vs.URL == "" {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: ValueSet missing url, skipped", path))
		return nil
	}
	if _, dup := s.ValueSetsByURL[vs.URL]; dup {
		return &DuplicateURLError{URL: vs.URL}
	}
	ptr := &vs
	s.ValueSets = append(s.ValueSets, ptr)
	s.ValueSetsByURL[vs.URL] = ptr
	return nil
}

func (s *Schema) addCodeSystem(data []byte, path string) error {
	var cs model.CodeSystem
	if err := json.Unmarshal(data, &cs); err != nil {
		return &SchemaMalformedError{Path: path, Reason: err.Error()}
	}
	if cs.URL == "" {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: CodeSystem missing url, skipped", path))
		return nil
	}
	if _, dup := s.CodeSystemsByURL[cs.URL]; dup {
		return &DuplicateURLError{URL: cs.URL}
	}
	ptr := &cs
	s.CodeSystems = append(s.CodeSystems, ptr)
	s.CodeSystemsByURL[cs.URL] = ptr
	return nil
}

package layout

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"
)

// writerBuf is a tiny Fprintf-accumulating buffer, local to this package so
// layout never needs to import emit (which already imports layout for Dir
// and Generator — importing back would cycle).
type writerBuf struct {
	bytes.Buffer
}

func (b *writerBuf) printf(format string, args ...any) {
	fmt.Fprintf(&b.Buffer, format, args...)
}

//go:embed templates/*.tmpl
var templatesFS embed.FS

// conformanceDirs are the subdirectories whose records carry invariant,
// binding, and cardinality metadata tables and therefore need the shared
// ConformanceDescriptor/*Record types the pinned template declares.
var conformanceDirs = map[Dir]bool{
	DirResource:   true,
	DirDataTypes:  true,
	DirProfiles:   true,
	DirExtensions: true,
}

// Config holds the options the Writer needs: where to write, what the
// generated package calls itself, and the Go import path prefix generated
// files use to reference each other.
type Config struct {
	OutputDir    string
	PackageName  string
	ModulePrefix string
}

// Writer takes the artifacts the emitter produced, creates the fixed
// subdirectory tree idempotently, writes each file, recovers from name
// collisions by warning and overwriting, and generates the per-directory
// module index files, the pinned conformance template, the tree-root doc
// file, and a minimal manifest when one is not already present.
type Writer struct {
	cfg      Config
	seen     map[Dir]map[string]bool
	warnings []Warning
}

// NewWriter builds a Writer for cfg.
func NewWriter(cfg Config) *Writer {
	return &Writer{cfg: cfg, seen: make(map[Dir]map[string]bool)}
}

// Write runs every artifact and the fixed per-run extras, returning any
// recovered name-collision warnings alongside the first fatal error.
func (w *Writer) Write(artifacts []Artifact) ([]Warning, error) {
	dirsUsed := make(map[Dir]bool, len(artifacts))
	for _, a := range artifacts {
		dirsUsed[a.Dir] = true
		if err := w.writeArtifact(a); err != nil {
			return w.warnings, err
		}
	}

	dirs := sortedDirs(dirsUsed)
	for _, dir := range dirs {
		if conformanceDirs[dir] {
			if err := w.writeConformanceTemplate(dir); err != nil {
				return w.warnings, err
			}
		}
		if err := w.writeModuleIndex(dir); err != nil {
			return w.warnings, err
		}
	}

	if err := w.writeTreeRoot(dirs); err != nil {
		return w.warnings, err
	}
	if err := w.writeManifestIfAbsent(); err != nil {
		return w.warnings, err
	}
	return w.warnings, nil
}

func (w *Writer) writeArtifact(a Artifact) error {
	dirPath := filepath.Join(w.cfg.OutputDir, "src", string(a.Dir))
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return &DirectoryCreateFailedError{Path: dirPath, Err: err}
	}

	filename := a.Gen.Filename()
	if w.seen[a.Dir] == nil {
		w.seen[a.Dir] = make(map[string]bool)
	}
	if w.seen[a.Dir][filename] {
		w.warnings = append(w.warnings, Warning{
			Dir: a.Dir, Filename: filename,
			Message: "file name collision, overwriting",
		})
	}
	w.seen[a.Dir][filename] = true

	fullPath := filepath.Join(dirPath, filename)
	f, err := os.Create(fullPath)
	if err != nil {
		return &WriteFailedError{Path: fullPath, Err: err}
	}
	defer f.Close()

	if err := a.Gen.Run(f); err != nil {
		// Run errors are emission failures, not
		// write failures — returned as-is so callers can distinguish the
		// two fatal kinds.
		return err
	}
	return nil
}

// writeConformanceTemplate copies the single pinned template into dir, instantiated
// with dir's own package name.
func (w *Writer) writeConformanceTemplate(dir Dir) error {
	tmpl, err := template.ParseFS(templatesFS, "templates/conformance.go.tmpl")
	if err != nil {
		return err
	}
	dirPath := filepath.Join(w.cfg.OutputDir, "src", string(dir))
	fullPath := filepath.Join(dirPath, "conformance.go")
	f, err := os.Create(fullPath)
	if err != nil {
		return &WriteFailedError{Path: fullPath, Err: err}
	}
	defer f.Close()

	if err := tmpl.Execute(f, struct{ Package string }{Package: string(dir)}); err != nil {
		return &WriteFailedError{Path: fullPath, Err: err}
	}
	return nil
}

// writeModuleIndex generates dir's doc.go, listing every sibling source
// file in lexical order as a plain comment manifest. Go resolves module
// membership by directory, and re-exporting symbols would reintroduce the
// cross-family name collisions the per-directory packages exist to avoid,
// so the index is documentation rather than code.
func (w *Writer) writeModuleIndex(dir Dir) error {
	dirPath := filepath.Join(w.cfg.OutputDir, "src", string(dir))
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return &WriteFailedError{Path: dirPath, Err: err}
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && e.Name() != "doc.go" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var buf writerBuf
	buf.printf("// Package %s is a generated FHIR package subdirectory holding:\n", dir)
	for _, n := range names {
		buf.printf("//   - %s\n", n)
	}
	buf.printf("package %s\n", dir)

	fullPath := filepath.Join(dirPath, "doc.go")
	if err := os.WriteFile(fullPath, buf.Bytes(), 0o644); err != nil {
		return &WriteFailedError{Path: fullPath, Err: err}
	}
	return nil
}

// writeTreeRoot generates <root>/src/doc.go: the top-level package tree
// declaration, plus a note on serialization (encoding/json, via each
// field's `json` tag), which every generated type carries in its own
// struct tags rather than through a shared framework package.
func (w *Writer) writeTreeRoot(dirs []Dir) error {
	srcPath := filepath.Join(w.cfg.OutputDir, "src")
	if err := os.MkdirAll(srcPath, 0o755); err != nil {
		return &DirectoryCreateFailedError{Path: srcPath, Err: err}
	}

	var buf writerBuf
	buf.printf("// Package src is the generated %s FHIR package's module tree root.\n", w.cfg.PackageName)
	buf.printf("//\n")
	buf.printf("// Subdirectories, one Go package each:\n")
	for _, d := range dirs {
		buf.printf("//   - %s\n", d)
	}
	buf.printf("//\n")
	buf.printf("// Every record serializes to FHIR JSON through its own `json` struct\n")
	buf.printf("// tags; there is no separate serialization-framework package to import.\n")
	buf.printf("package src\n")

	fullPath := filepath.Join(srcPath, "doc.go")
	if err := os.WriteFile(fullPath, buf.Bytes(), 0o644); err != nil {
		return &WriteFailedError{Path: fullPath, Err: err}
	}
	return nil
}

// writeManifestIfAbsent emits a minimal go.mod for the generated package
// when the output directory does not already have one.
func (w *Writer) writeManifestIfAbsent() error {
	manifestPath := filepath.Join(w.cfg.OutputDir, "go.mod")
	if _, err := os.Stat(manifestPath); err == nil {
		return nil
	}

	var buf writerBuf
	buf.printf("module %s\n\ngo 1.23\n\n", w.cfg.ModulePrefix)
	// Generated mutators deep-copy through pkg/common, so the package
	// depends on this module's runtime helpers alongside decimal.
	buf.printf("require (\n\tgithub.com/fhirgen/schemac v0.1.0\n\tgithub.com/shopspring/decimal v1.4.0\n)\n")
	if err := os.WriteFile(manifestPath, buf.Bytes(), 0o644); err != nil {
		return &WriteFailedError{Path: manifestPath, Err: err}
	}
	return nil
}

func sortedDirs(m map[Dir]bool) []Dir {
	dirs := make([]Dir, 0, len(m))
	for d := range m {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}

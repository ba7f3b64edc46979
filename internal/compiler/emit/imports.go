package emit

import (
	"sort"

	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// dirFor maps a Category to the subdirectory its RecordType is routed to.
func dirFor(cat registry.Category) layout.Dir {
	switch cat {
	case registry.CategoryDataType:
		return layout.DirDataTypes
	case registry.CategoryResource:
		return layout.DirResource
	case registry.CategoryProfile:
		return layout.DirProfiles
	case registry.CategoryExtension:
		return layout.DirExtensions
	default:
		return layout.DirDataTypes
	}
}

// pkgFor returns the Go package name for a subdirectory; every subdirectory
// is its own package, named after the directory.
func pkgFor(dir layout.Dir) string {
	return string(dir)
}

// importSet collects the packages one generated file's declarations
// reference: sibling src/ subdirectories, plus shopspring/decimal for the
// decimal primitive and pkg/common for generated mutators.
type importSet struct {
	self       layout.Dir
	dirs       map[layout.Dir]bool
	useDecimal bool
	useCommon  bool
	useSync    bool

	// local and localOwnerDir handle backbone records: buildBackboneField
	// always classifies a nested record as CategoryDataType (registry
	// never routes it anywhere else), but it is never written to its own
	// file — writeRecordTree emits it inline in whichever top-level
	// record's file owns it. dirFor(named.Category) would therefore
	// misroute it to the datatypes package; markLocal overrides the
	// effective directory for every record in one owning tree to
	// localOwnerDir instead.
	local         map[*ir.RecordType]bool
	localOwnerDir layout.Dir
}

func newImportSet(self layout.Dir) *importSet {
	return &importSet{self: self, dirs: make(map[layout.Dir]bool), local: make(map[*ir.RecordType]bool)}
}

// markLocal registers rt and every record nested under it (recursively) as
// physically living in ownerDir, overriding whatever dirFor(Category) would
// otherwise compute for them.
func (s *importSet) markLocal(rt *ir.RecordType, ownerDir layout.Dir) {
	s.localOwnerDir = ownerDir
	var walk func(*ir.RecordType)
	walk = func(n *ir.RecordType) {
		s.local[n] = true
		for _, c := range n.Nested {
			walk(c)
		}
	}
	walk(rt)
}

// dirOf returns the effective directory named lives in, honoring markLocal
// overrides.
func (s *importSet) dirOf(named *ir.RecordType) layout.Dir {
	if s.local[named] {
		return s.localOwnerDir
	}
	return dirFor(named.Category)
}

// add registers a reference to named's home directory, unless it is the
// same directory the referencing file lives in (no import needed for
// same-package references).
func (s *importSet) add(named *ir.RecordType) {
	if named == nil {
		return
	}
	dir := s.dirOf(named)
	if dir != s.self {
		s.dirs[dir] = true
	}
}

// addCommon registers a reference to pkg/common, used by every generated
// Mutator, which copy-then-modifies via common.Clone.
func (s *importSet) addCommon() {
	s.useCommon = true
}

// addSync registers a reference to the standard library sync package, used
// by every generated Conformance() accessor's memoized table.
func (s *importSet) addSync() {
	s.useSync = true
}

// addType registers whatever t references: a sibling package for a Named or
// Enum type, or shopspring/decimal for the decimal primitive kind.
func (s *importSet) addType(t *ir.TypeRef) {
	switch t.Kind {
	case ir.RefNamed:
		s.add(t.Named)
	case ir.RefEnum:
		dir := layout.DirBindings
		if dir != s.self {
			s.dirs[dir] = true
		}
	case ir.RefPrimitive:
		if t.Primitive == registry.PrimitiveDecimal {
			s.useDecimal = true
		}
	}
}

// qualify returns the Go type expression for t as it should appear in a
// file living in s.self: bare for same-package references, package-
// qualified otherwise.
func (s *importSet) qualify(t *ir.TypeRef) string {
	switch t.Kind {
	case ir.RefNamed:
		dir := s.dirOf(t.Named)
		if dir != s.self {
			return pkgFor(dir) + "." + t.Named.Name
		}
		return t.Named.Name
	case ir.RefEnum:
		if layout.DirBindings != s.self {
			return pkgFor(layout.DirBindings) + "." + t.Enum.Name
		}
		return t.Enum.Name
	default:
		return t.GoType()
	}
}

// lines returns the needed import statements in a fixed, deterministic
// order, given the module import path prefix.
func (s *importSet) lines(modulePrefix string) []string {
	dirs := make([]string, 0, len(s.dirs))
	for d := range s.dirs {
		dirs = append(dirs, string(d))
	}
	sort.Strings(dirs)
	out := make([]string, 0, len(dirs)+3)
	if s.useSync {
		out = append(out, "sync")
	}
	if s.useDecimal {
		out = append(out, "github.com/shopspring/decimal")
	}
	if s.useCommon {
		out = append(out, "github.com/fhirgen/schemac/pkg/common")
	}
	for _, d := range dirs {
		out = append(out, modulePrefix+"/src/"+d)
	}
	return out
}

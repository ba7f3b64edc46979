package emit

import (
	"strings"
	"unicode"

	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// toSnakeFile returns the file name a RecordType/EnumType's Go name maps to,
// e.g. "HumanName" -> "human_name.go".
func toSnakeFile(name string) string {
	return registry.SnakeCase(name) + ".go"
}

func toPascal(s string) string {
	return registry.PascalCase(s)
}

// lowerFirst lowercases the first rune of a doc string so it reads well
// after "X is ...".
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// oneLine collapses a short/definition string to a single line for use as a
// one-line field or variant comment, trimming a final period the source text may
// already carry so we don't double it up.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, ".")
}

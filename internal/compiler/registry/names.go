package registry

import (
	"strings"
	"unicode"
)

// reservedIdentifiers holds every Go keyword an element or type name might
// collide with, plus FHIR names (use, abstract) that read like keywords in
// other generators' output and are renamed for consistency with them.
var reservedIdentifiers = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,

	"use": true, "abstract": true,
}

// RenameIfReserved appends a single trailing underscore when name collides
// with a reserved identifier, e.g. "type" -> "type_".
func RenameIfReserved(name string) string {
	if reservedIdentifiers[name] {
		return name + "_"
	}
	return name
}

// PascalCase converts a FHIR element or type name to PascalCase, handling
// kebab-case/dot-separated/space-separated input.
func PascalCase(s string) string {
	if s == "" {
		return ""
	}
	words := splitWords(s)
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	if b.Len() == 0 {
		return s
	}
	return b.String()
}

// CamelCase lowercases the first rune of a PascalCase identifier.
func CamelCase(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// SnakeCase converts a FHIR name to snake_case, used for
// field and module identifiers in contexts that want it (file names).
func SnakeCase(s string) string {
	words := splitWords(s)
	lower := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			lower = append(lower, strings.ToLower(w))
		}
	}
	return strings.Join(lower, "_")
}

// splitWords breaks a FHIR identifier on kebab/snake/dot/space boundaries
// and on internal camelCase humps, so "administrative-gender",
// "allergy_intolerance-clinical" and "birthDate" all split sensibly.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	runes := []rune(s)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for i, r := range runes {
		switch {
		case r == '-' || r == '_' || r == '.' || r == ' ' || r == '/':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// ShortName strips leading URL segments, returning the last path segment of
// a canonical FHIR URL.
func ShortName(url string) string {
	if idx := strings.LastIndex(url, "/"); idx >= 0 {
		return url[idx+1:]
	}
	return url
}

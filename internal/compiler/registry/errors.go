package registry

import "fmt"

// UnresolvedBaseError is raised when a baseDefinition target cannot be
// found in the loaded schema set.
type UnresolvedBaseError struct {
	DefinitionURL string
	BaseURL       string
}

func (e *UnresolvedBaseError) Error() string {
	return fmt.Sprintf("unresolved base: %s references baseDefinition %s, which is not in the loaded schema", e.DefinitionURL, e.BaseURL)
}

// CircularBaseError is raised when following baseDefinition links forms a
// cycle.
type CircularBaseError struct {
	DefinitionURL string
	BaseURL       string
}

func (e *CircularBaseError) Error() string {
	return fmt.Sprintf("circular base chain: %s transitively derives from itself via %s", e.DefinitionURL, e.BaseURL)
}

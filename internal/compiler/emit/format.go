package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
)

// debugTokensEnv, when set, makes formatSource write pre-format source to
// stderr alongside the formatted result, for diagnosing emission failures.
const debugTokensEnv = "DEBUG_TOKENS"

// formatSource runs buf through go/format.Source, the single formatting
// chokepoint every generator in this package funnels through.
func formatSource(name string, buf []byte) ([]byte, error) {
	if os.Getenv(debugTokensEnv) != "" {
		fmt.Fprintf(os.Stderr, "---- %s (pre-format) ----\n%s\n", name, buf)
	}
	out, err := format.Source(buf)
	if err != nil {
		return nil, &MalformedSourceError{Name: name, Err: err, Source: buf}
	}
	return out, nil
}

// sourceBuffer is a small helper embedded by every generator in this
// package to accumulate Go source with fmt.Fprintf-style calls before a
// final formatSource pass.
type sourceBuffer struct {
	bytes.Buffer
}

func (b *sourceBuffer) printf(format string, args ...any) {
	fmt.Fprintf(&b.Buffer, format, args...)
}

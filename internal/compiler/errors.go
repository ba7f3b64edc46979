package compiler

import (
	"errors"

	"github.com/fhirgen/schemac/internal/compiler/emit"
	"github.com/fhirgen/schemac/internal/compiler/ir"
	"github.com/fhirgen/schemac/internal/compiler/layout"
	"github.com/fhirgen/schemac/internal/compiler/loader"
	"github.com/fhirgen/schemac/internal/compiler/registry"
)

// IsFatal reports whether err is one of the fatal kinds any stage can raise
// (loader through layout) rather than a recovered Warning, mirroring
// pkg/common.IsPathError's errors.As-based classification.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var (
		schemaMalformed     *loader.SchemaMalformedError
		duplicateURL        *loader.DuplicateURLError
		readErr             *loader.ReadError
		unresolvedBase      *registry.UnresolvedBaseError
		circularBase        *registry.CircularBaseError
		unknownType         *ir.UnknownTypeError
		choiceWithoutTypes  *ir.ChoiceWithoutTypesError
		cardinalityInvalid  *ir.CardinalityInvalidError
		malformedSource     *emit.MalformedSourceError
		writeFailed         *layout.WriteFailedError
		directoryCreateFail *layout.DirectoryCreateFailedError
	)
	switch {
	case errors.As(err, &schemaMalformed),
		errors.As(err, &duplicateURL),
		errors.As(err, &readErr),
		errors.As(err, &unresolvedBase),
		errors.As(err, &circularBase),
		errors.As(err, &unknownType),
		errors.As(err, &choiceWithoutTypes),
		errors.As(err, &cardinalityInvalid),
		errors.As(err, &malformedSource),
		errors.As(err, &writeFailed),
		errors.As(err, &directoryCreateFail):
		return true
	default:
		return false
	}
}

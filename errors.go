package slidedotnet

import (
	"errors"
	"fmt"
)

var (
	// ErrPartNotFound is returned when a package part or relationship target
	// does not exist.
	ErrPartNotFound = errors.New("part not found")

	// ErrChartReference signals a chart data reference that cannot be
	// resolved: a malformed formula, an unknown sheet or a cell outside the
	// sheet. Such documents are treated as corrupt; the call is not retried.
	ErrChartReference = errors.New("chart reference not resolvable")

	// ErrSeriesHasNoName is returned by Series.Name when HasName is false.
	ErrSeriesHasNoName = errors.New("series has no name")

	// ErrOutOfRange is returned for row, column or index arguments outside
	// the addressed collection.
	ErrOutOfRange = errors.New("index out of range")
)

// ReferenceError describes why a chart formula could not be resolved.
type ReferenceError struct {
	Formula string
	Reason  string
	Err     error
}

func (e *ReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chart reference %q: %s: %v", e.Formula, e.Reason, e.Err)
	}
	return fmt.Sprintf("chart reference %q: %s", e.Formula, e.Reason)
}

// Is makes every ReferenceError match ErrChartReference.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrChartReference
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

func newReferenceError(formula, reason string, err error) *ReferenceError {
	return &ReferenceError{Formula: formula, Reason: reason, Err: err}
}

// MissingElementError is returned when a wrapper is constructed over XML that
// lacks an element the wrapper cannot work without.
type MissingElementError struct {
	Part    string
	Element string
}

func (e *MissingElementError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("required element <%s> is missing", e.Element)
	}
	return fmt.Sprintf("required element <%s> is missing in %s", e.Element, e.Part)
}

func missingElement(part, element string) *MissingElementError {
	return &MissingElementError{Part: part, Element: element}
}

package sheetschema

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrCredentialRequired indicates an upload was parked until a credential is
// supplied.
var ErrCredentialRequired = errors.New("credential required")

// ErrInvalidTransition indicates a phase change the session does not allow.
var ErrInvalidTransition = errors.New("invalid phase transition")

// ErrNotInReview indicates a correction or export outside the review phase.
var ErrNotInReview = errors.New("session is not in review")

// DecodeError represents a failure to read the source workbook.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AnalysisServiceError represents a failure of the analysis service for one
// sheet. It aborts the whole run.
type AnalysisServiceError struct {
	SheetName string
	Err       error
}

func (e *AnalysisServiceError) Error() string {
	return fmt.Sprintf("analysis failed for sheet %q: %v", e.SheetName, e.Err)
}

func (e *AnalysisServiceError) Unwrap() error {
	return e.Err
}

// ExportError represents a failure producing the export document.
type ExportError struct {
	Stage string // "build", "validate", "encode", "write"
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error (%s): %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// EmptySheetWarning reports a visible sheet with little or no tabular data.
// It is never returned as a failure.
type EmptySheetWarning struct {
	SheetName string
}

func (w EmptySheetWarning) Error() string {
	return fmt.Sprintf("sheet %q has little or no tabular data", w.SheetName)
}

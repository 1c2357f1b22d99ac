package dataset

import "fmt"

// MissingColumnError reports a required column absent from a file's header.
// Always fatal regardless of the on-error policy: without the column every
// row is unusable.
type MissingColumnError struct {
	File   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

// MalformedRowError reports a row whose value could not be parsed or that
// failed validation.
type MalformedRowError struct {
	File string
	Line int
	Err  error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s: line %d: %v", e.File, e.Line, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// EmptyInputError reports a required file with zero data rows.
type EmptyInputError struct {
	File string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no data rows", e.File)
}

package writer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrHeaderDisabled     = errors.New("header writing is disabled")
	ErrHeaderWritten      = errors.New("header has already been written")
	ErrHeaderAfterRecords = errors.New("header cannot be written after records")
	ErrSeparatorNotFirst  = errors.New("separator row must be the first row")
	ErrCommentsDisabled   = errors.New("comments are disabled")
	ErrClosed             = errors.New("writer is closed")
	ErrNotSequence        = errors.New("records must be a slice, an array, a channel or an iterator")
)

// WriteError is a failure while writing a row, with the row it happened on.
type WriteError struct {
	// Row is the 1-based number of the row being written.
	Row int
	// Type is the concrete type of the record, nil when no record was involved.
	Type reflect.Type
	// Fields holds the fields buffered for the row when the failure happened.
	Fields []string
	Err    error
}

func (e *WriteError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "row %d", e.Row)

	if e.Type != nil {
		fmt.Fprintf(&b, " (%s)", e.Type)
	}

	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " fields %q", e.Fields)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

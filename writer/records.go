package writer

import (
	"fmt"
	"iter"
	"reflect"

	"csvcaster/options"
	"csvcaster/record"
)

// WriteRecords writes every element of records as one row. records is a
// slice, an array, a channel or an iter.Seq. The separator hint row comes
// first when FlagExcelSeparator is set, then the header: from the element
// type, or from the first element when the element type is an interface or
// a dynamic record. Primitive elements get no header. A nil element writes
// an empty row. The first failure aborts the batch.
func (w *Writer) WriteRecords(records any) error {
	if w.closed {
		return ErrClosed
	}

	rv := reflect.ValueOf(records)
	for rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	elems, elemType, err := sequence(rv)
	if err != nil {
		return err
	}

	if err := w.writeSeparator(); err != nil {
		return err
	}

	if w.wantsHeader() && !record.IsDynamic(elemType) {
		if err := w.writeStaticHeader(elemType); err != nil {
			return err
		}
	}

	for elem := range elems {
		for elem.Kind() == reflect.Interface && !elem.IsNil() {
			elem = elem.Elem()
		}

		if !isNil(elem) {
			if err := w.writeRecord(elem); err != nil {
				return err
			}
		}

		if err := w.NextRecord(); err != nil {
			return err
		}
	}

	return nil
}

// WriteSeq writes the records of seq, see WriteRecords.
func WriteSeq[T any](w *Writer, seq iter.Seq[T]) error {
	return w.WriteRecords(seq)
}

func sequence(rv reflect.Value) (iter.Seq[reflect.Value], reflect.Type, error) {
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("%w: got nil", ErrNotSequence)
	}

	t := rv.Type()

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(reflect.Value) bool) {
			for i := range rv.Len() {
				if !yield(rv.Index(i)) {
					return
				}
			}
		}, t.Elem(), nil
	case reflect.Chan:
		return rv.Seq(), t.Elem(), nil
	case reflect.Func:
		if t.CanSeq() {
			return rv.Seq(), t.In(0).In(0), nil
		}
	}

	return nil, nil, fmt.Errorf("%w: got %s", ErrNotSequence, t)
}

// writeStaticHeader writes and terminates the header of a static element
// type. Interface and primitive element types write none.
func (w *Writer) writeStaticHeader(elemType reflect.Type) error {
	if elemType.Kind() == reflect.Interface {
		return nil
	}

	p, err := w.cache.GetType(elemType)
	if err != nil {
		return w.fail(err, elemType)
	}

	if len(p.Header) == 0 {
		return nil
	}

	w.writeHeaderNames(p.Header)

	return w.NextRecord()
}

// writeSeparator writes the sep=<delimiter> row once per session.
func (w *Writer) writeSeparator() error {
	if !w.cfg.Has(options.FlagExcelSeparator) || w.separatorWritten {
		return nil
	}

	if w.row != 1 || len(w.fields) > 0 {
		return ErrSeparatorNotFirst
	}

	if err := w.sink.WriteRow([]string{"sep=" + w.cfg.Delimiter}); err != nil {
		return &WriteError{Row: w.row, Fields: []string{"sep=" + w.cfg.Delimiter}, Err: err}
	}

	w.separatorWritten = true
	w.row++

	w.logger.Debug("wrote separator row", "delimiter", w.cfg.Delimiter)

	return nil
}

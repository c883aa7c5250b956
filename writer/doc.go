// Package writer turns records into delimited rows.
//
// A Writer buffers the escaped fields of the row being assembled and hands
// the complete row to a Sink when the row is terminated:
//
//	w, err := writer.NewText(os.Stdout, options.Default())
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//
//	if err := w.WriteRecords(orders); err != nil {
//		return err
//	}
//
// Records are structs (columns from the mapping registry), primitives (one
// field) or dynamic records (record.Bag, string keyed maps). Plans are cached
// per concrete type and per dynamic shape; InvalidatePlan drops them after a
// mapping change.
//
// Row numbers start at 1 and count every physical row: the separator hint,
// the header, comments and data rows.
package writer

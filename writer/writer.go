package writer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"

	"golang.org/x/text/language"

	"csvcaster/escape"
	"csvcaster/mapping"
	"csvcaster/options"
	"csvcaster/plan"
	"csvcaster/primitive"
)

// Writer assembles rows field by field and hands them to a Sink.
// It is not safe for concurrent use.
type Writer struct {
	cfg    *options.Config
	sink   Sink
	cache  *plan.Cache
	logger *slog.Logger

	registry   *mapping.Registry
	converters *primitive.Converters

	fields  []string
	row     int
	current reflect.Type

	headerWritten    bool
	headerPending    bool
	commentPending   bool
	recordWritten    bool
	separatorWritten bool
	closed           bool
}

// New returns a writer sending rows to sink. A nil cfg uses options.Default.
func New(sink Sink, cfg *options.Config, opts ...Option) (*Writer, error) {
	if cfg == nil {
		cfg = options.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	w := &Writer{
		cfg:    cfg,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		row:    1,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.cache == nil {
		w.cache = plan.NewCache(w.registry, w.converters,
			plan.WithLogger(w.logger),
			plan.WithIncludePrivate(cfg.Has(options.FlagIncludePrivate)))
	}

	return w, nil
}

// NewText returns a writer framing rows as text on out.
func NewText(out io.Writer, cfg *options.Config, opts ...Option) (*Writer, error) {
	if cfg == nil {
		cfg = options.Default()
	}

	return New(NewTextSink(out, cfg), cfg, opts...)
}

// Config returns the writer configuration.
func (w *Writer) Config() *options.Config {
	return w.cfg
}

// Cache returns the plan cache.
func (w *Writer) Cache() *plan.Cache {
	return w.cache
}

// Row returns the 1-based number of the row being assembled.
func (w *Writer) Row() int {
	return w.row
}

// Fields returns a copy of the fields buffered for the current row.
func (w *Writer) Fields() []string {
	return slices.Clone(w.fields)
}

// Culture is the culture handed to converters.
func (w *Writer) Culture() language.Tag {
	return w.cfg.CultureTag()
}

// WriteField escapes field and appends it to the current row. After Close it
// does nothing.
func (w *Writer) WriteField(field string) {
	w.WriteFieldQuoted(field, false)
}

// WriteFieldQuoted appends field, quoting it regardless of content when force is set.
// Fields written after Close are dropped.
func (w *Writer) WriteFieldQuoted(field string, force bool) {
	if w.closed {
		return
	}

	escaped, _ := escape.Field(w.cfg, field, force)
	w.fields = append(w.fields, escaped)
}

// WriteNullableField appends field unless it is nil. A nil field leaves the
// row unchanged; an empty string is written as an empty field.
func (w *Writer) WriteNullableField(field *string) {
	if field == nil {
		return
	}

	w.WriteField(*field)
}

// WriteTypedField converts value with the converter of T and appends it.
func WriteTypedField[T any](w *Writer, value T) error {
	if w.closed {
		return ErrClosed
	}

	rv := reflect.ValueOf(&value).Elem()

	conv := w.cache.Converters().Lookup(rv.Type())

	field, ok, err := conv.ConvertToString(rv, primitive.Context{Culture: w.Culture(), Row: w})
	if err != nil {
		return err
	}

	if ok {
		w.WriteField(field)
	}

	return nil
}

// WriteComment appends the comment character followed by text, unescaped.
func (w *Writer) WriteComment(text string) error {
	if w.closed {
		return ErrClosed
	}

	if !w.cfg.Has(options.FlagAllowComments) {
		return ErrCommentsDisabled
	}

	w.fields = append(w.fields, w.cfg.Comment+text)
	w.commentPending = true

	return nil
}

// NextRecord terminates the current row and hands it to the sink. The buffer
// is cleared even when the sink fails; the row number only advances on success.
// Any row other than the header or a comment counts as a data row.
func (w *Writer) NextRecord() error {
	if w.closed {
		return ErrClosed
	}

	fields := w.fields
	w.fields = nil

	dataRow := !w.headerPending && !w.commentPending
	w.headerPending = false
	w.commentPending = false

	typ := w.current
	w.current = nil

	if err := w.sink.WriteRow(fields); err != nil {
		return &WriteError{Row: w.row, Type: typ, Fields: fields, Err: err}
	}

	w.row++

	if dataRow {
		w.recordWritten = true
	}

	return nil
}

// WriteHeader appends the column names of t. It does not terminate the row.
func (w *Writer) WriteHeader(t reflect.Type) error {
	if err := w.checkHeader(); err != nil {
		return err
	}

	names, err := w.cache.Columns(t)
	if err != nil {
		return err
	}

	w.writeHeaderNames(names)

	return nil
}

// WriteHeaderFor appends the column names of T.
func WriteHeaderFor[T any](w *Writer) error {
	return w.WriteHeader(reflect.TypeFor[T]())
}

// WriteDynamicHeader appends the member names of a dynamic record, or the
// columns of rec's type for any other record.
func (w *Writer) WriteDynamicHeader(rec any) error {
	if err := w.checkHeader(); err != nil {
		return err
	}

	p, err := w.cache.Get(reflect.ValueOf(rec))
	if err != nil {
		return err
	}

	if len(p.Header) == 0 {
		return fmt.Errorf("%w: %s is written as a single value", plan.ErrNoColumns, p.Key.Type)
	}

	w.writeHeaderNames(p.Header)

	return nil
}

func (w *Writer) checkHeader() error {
	switch {
	case w.closed:
		return ErrClosed
	case !w.cfg.Has(options.FlagHeader):
		return ErrHeaderDisabled
	case w.headerWritten:
		return ErrHeaderWritten
	case w.recordWritten:
		return ErrHeaderAfterRecords
	}

	return nil
}

func (w *Writer) writeHeaderNames(names []string) {
	for _, name := range names {
		w.WriteField(name)
	}

	w.headerWritten = true
	w.headerPending = true

	w.logger.Debug("wrote header", "row", w.row, "columns", len(names))
}

// WriteRecord appends the fields of rec to the current row, writing and
// terminating the header first when one is configured and none was written.
// It does not terminate the record's row. A nil record appends nothing.
func (w *Writer) WriteRecord(rec any) error {
	if w.closed {
		return ErrClosed
	}

	rv := reflect.ValueOf(rec)
	if isNil(rv) {
		return nil
	}

	return w.writeRecord(rv)
}

func (w *Writer) writeRecord(rv reflect.Value) error {
	p, err := w.cache.Get(rv)
	if err != nil {
		return w.fail(err, rv.Type())
	}

	if w.wantsHeader() && len(p.Header) > 0 && len(w.fields) == 0 {
		w.writeHeaderNames(p.Header)

		if err := w.NextRecord(); err != nil {
			return err
		}
	}

	w.current = rv.Type()

	if err := p.Run(rv, w); err != nil {
		return w.fail(err, rv.Type())
	}

	w.recordWritten = true

	return nil
}

func (w *Writer) wantsHeader() bool {
	return w.cfg.Has(options.FlagHeader) && !w.headerWritten && !w.recordWritten
}

// fail wraps err with the current row and discards the buffered fields.
func (w *Writer) fail(err error, typ reflect.Type) error {
	fields := w.fields
	w.fields = nil
	w.current = nil

	var werr *WriteError
	if errors.As(err, &werr) {
		return err
	}

	return &WriteError{Row: w.row, Type: typ, Fields: fields, Err: err}
}

// Flush flushes the sink when it buffers.
func (w *Writer) Flush() error {
	if f, ok := w.sink.(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}

// Close flushes the sink and closes the writer. Fields of an unterminated
// row are dropped. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true
	w.fields = nil

	w.logger.Debug("closed writer", "rows", w.row-1)

	return w.Flush()
}

// InvalidatePlan drops the cached plans of t.
func (w *Writer) InvalidatePlan(t reflect.Type) {
	w.cache.Invalidate(t)
}

// InvalidateShape drops the cached plan of dynamic records with these member names.
func (w *Writer) InvalidateShape(names []string) {
	w.cache.InvalidateShape(names)
}

// InvalidateAllPlans drops every cached plan.
func (w *Writer) InvalidateAllPlans() {
	w.cache.InvalidateAll()
}

func isNil(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return rv.IsNil()
	default:
		return false
	}
}

package writer

import (
	"bufio"
	"io"
	"strings"

	"csvcaster/options"
)

// Sink receives complete rows of escaped fields.
type Sink interface {
	WriteRow(fields []string) error
}

// TextSink frames rows for an io.Writer with the configured delimiter and
// line terminator. Output is buffered until Flush.
type TextSink struct {
	w   *bufio.Writer
	cfg *options.Config
}

// NewTextSink returns a sink writing to w. Delimiter and line terminator are
// read from cfg for every row.
func NewTextSink(w io.Writer, cfg *options.Config) *TextSink {
	return &TextSink{
		w:   bufio.NewWriter(w),
		cfg: cfg,
	}
}

// WriteRow writes the fields joined by the delimiter, then the line terminator.
func (s *TextSink) WriteRow(fields []string) error {
	if _, err := s.w.WriteString(strings.Join(fields, s.cfg.Delimiter)); err != nil {
		return err
	}

	_, err := s.w.WriteString(s.cfg.NewLine)

	return err
}

// Flush writes buffered rows to the underlying writer.
func (s *TextSink) Flush() error {
	return s.w.Flush()
}

// SliceSink keeps rows in memory.
type SliceSink struct {
	Rows [][]string
}

// WriteRow appends a copy of fields.
func (s *SliceSink) WriteRow(fields []string) error {
	s.Rows = append(s.Rows, append([]string(nil), fields...))
	return nil
}

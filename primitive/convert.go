package primitive

import (
	"encoding"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unsafe"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrNotInterfaceable is returned for a value read through an unexported
// field of a record that is not addressable.
var ErrNotInterfaceable = errors.New("value of unexported field cannot be passed to a typed converter")

var (
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	stringerType      = reflect.TypeFor[fmt.Stringer]()
)

// FieldWriter receives fields a converter writes on its own.
type FieldWriter interface {
	WriteField(field string)
}

// Context is the ambient information handed to a converter.
type Context struct {
	// Culture selects locale dependent formatting. language.Und is invariant.
	Culture language.Tag
	// Format is the per-column format: a time layout for times, a fmt verb for numbers.
	Format string
	// Row lets a converter emit fields itself; it then returns ok == false.
	Row FieldWriter
}

// Converter turns a value into the text of one field.
// ok == false means the converter already wrote its output through ctx.Row
// and nothing must be written for the value.
type Converter interface {
	ConvertToString(v reflect.Value, ctx Context) (field string, ok bool, err error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(v reflect.Value, ctx Context) (string, bool, error)

func (f ConverterFunc) ConvertToString(v reflect.Value, ctx Context) (string, bool, error) {
	return f(v, ctx)
}

// Converters maps types to converters. Registered converters win over the
// built-in ones; built-in resolution is memoized per type.
// It is not safe for concurrent use.
type Converters struct {
	custom     map[reflect.Type]Converter
	resolved   map[reflect.Type]Converter
	separators map[language.Tag]string
}

// NewConverters returns a registry holding only the built-in converters.
func NewConverters() *Converters {
	return &Converters{
		custom:     make(map[reflect.Type]Converter),
		resolved:   make(map[reflect.Type]Converter),
		separators: make(map[language.Tag]string),
	}
}

// Register installs conv for exactly type t.
func (c *Converters) Register(t reflect.Type, conv Converter) {
	c.custom[t] = conv
	clear(c.resolved)
}

// Register installs a typed converter function for T.
func Register[T any](c *Converters, fn func(v T, ctx Context) (string, bool, error)) {
	c.Register(reflect.TypeFor[T](), ConverterFunc(func(v reflect.Value, ctx Context) (string, bool, error) {
		v, err := exposed(v)
		if err != nil {
			return "", false, err
		}

		return fn(v.Interface().(T), ctx)
	}))
}

// Lookup returns the converter for type t.
func (c *Converters) Lookup(t reflect.Type) Converter {
	if conv, ok := c.custom[t]; ok {
		return conv
	}

	if conv, ok := c.resolved[t]; ok {
		return conv
	}

	conv := c.builtin(t)
	c.resolved[t] = conv

	return conv
}

// Convert converts a value whose type is only known at run time.
// A nil value converts to the empty field.
func (c *Converters) Convert(value any, ctx Context) (string, bool, error) {
	if value == nil {
		return "", true, nil
	}

	rv := reflect.ValueOf(value)

	return c.Lookup(rv.Type()).ConvertToString(rv, ctx)
}

func (c *Converters) builtin(t reflect.Type) Converter {
	switch t.Kind() {
	case reflect.Pointer:
		return ConverterFunc(c.convertPointer)
	case reflect.Interface:
		return ConverterFunc(c.convertInterface)
	}

	kind := FromReflectType(t)

	switch kind {
	case KindTime:
		return ConverterFunc(convertTime)
	case KindDuration:
		return ConverterFunc(convertDuration)
	}

	if t.Implements(textMarshalerType) {
		return ConverterFunc(convertTextMarshaler)
	}

	if t.Implements(stringerType) {
		return ConverterFunc(convertStringer)
	}

	switch pt := reflect.PointerTo(t); {
	case pt.Implements(textMarshalerType):
		return ConverterFunc(convertAddrTextMarshaler)
	case pt.Implements(stringerType):
		return ConverterFunc(convertAddrStringer)
	}

	switch {
	case kind == KindBytes:
		return ConverterFunc(convertBytes)
	case kind != 0:
		return ConverterFunc(c.convertBasic)
	default:
		return ConverterFunc(convertFallback)
	}
}

func (c *Converters) convertPointer(v reflect.Value, ctx Context) (string, bool, error) {
	if v.IsNil() {
		return "", true, nil
	}

	// the element is addressable, so pointer receiver methods are found by the element converter
	return c.Lookup(v.Type().Elem()).ConvertToString(v.Elem(), ctx)
}

func (c *Converters) convertInterface(v reflect.Value, ctx Context) (string, bool, error) {
	if v.IsNil() {
		return "", true, nil
	}

	elem := v.Elem()

	return c.Lookup(elem.Type()).ConvertToString(elem, ctx)
}

func (c *Converters) convertBasic(v reflect.Value, ctx Context) (string, bool, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if ctx.Format != "" {
			return fmt.Sprintf(ctx.Format, v.Int()), true, nil
		}

		return strconv.FormatInt(v.Int(), 10), true, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if ctx.Format != "" {
			return fmt.Sprintf(ctx.Format, v.Uint()), true, nil
		}

		return strconv.FormatUint(v.Uint(), 10), true, nil

	case reflect.Float32, reflect.Float64:
		var s string
		if ctx.Format != "" {
			s = fmt.Sprintf(ctx.Format, v.Float())
		} else {
			s = strconv.FormatFloat(v.Float(), 'f', -1, v.Type().Bits())
		}

		if sep := c.decimalSeparator(ctx.Culture); sep != "." {
			s = strings.Replace(s, ".", sep, 1)
		}

		return s, true, nil

	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true, nil

	case reflect.String:
		return v.String(), true, nil
	}

	return convertFallback(v, ctx)
}

// decimalSeparator returns the culture's decimal separator, found by letting
// x/text format 1.5 and keeping what is not a digit.
func (c *Converters) decimalSeparator(tag language.Tag) string {
	if tag == language.Und {
		return "."
	}

	if sep, ok := c.separators[tag]; ok {
		return sep
	}

	formatted := message.NewPrinter(tag).Sprint(number.Decimal(1.5))
	sep := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, formatted)

	if sep == "" {
		sep = "."
	}

	c.separators[tag] = sep

	return sep
}

// exposed returns v in a form Interface accepts. A value read through an
// unexported field is reached by address, so its record must be addressable.
func exposed(v reflect.Value) (reflect.Value, error) {
	switch {
	case v.CanInterface():
		return v, nil
	case v.CanAddr():
		return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), nil
	default:
		return v, fmt.Errorf("%w: %s", ErrNotInterfaceable, v.Type())
	}
}

// addressOf returns a pointer to v, or to a copy of v when v is not addressable.
func addressOf(v reflect.Value) (reflect.Value, error) {
	v, err := exposed(v)
	if err != nil {
		return v, err
	}

	if v.CanAddr() {
		return v.Addr(), nil
	}

	p := reflect.New(v.Type())
	p.Elem().Set(v)

	return p, nil
}

func convertTime(v reflect.Value, ctx Context) (string, bool, error) {
	v, err := exposed(v)
	if err != nil {
		return "", false, err
	}

	layout := time.RFC3339Nano
	if ctx.Format != "" {
		layout = ctx.Format
	}

	return v.Interface().(time.Time).Format(layout), true, nil
}

func convertDuration(v reflect.Value, _ Context) (string, bool, error) {
	return time.Duration(v.Int()).String(), true, nil
}

func convertBytes(v reflect.Value, _ Context) (string, bool, error) {
	return base64.StdEncoding.EncodeToString(v.Bytes()), true, nil
}

func convertTextMarshaler(v reflect.Value, _ Context) (string, bool, error) {
	v, err := exposed(v)
	if err != nil {
		return "", false, err
	}

	return marshalText(v.Interface().(encoding.TextMarshaler))
}

// convertAddrTextMarshaler serves types whose MarshalText has a pointer receiver.
func convertAddrTextMarshaler(v reflect.Value, _ Context) (string, bool, error) {
	p, err := addressOf(v)
	if err != nil {
		return "", false, err
	}

	return marshalText(p.Interface().(encoding.TextMarshaler))
}

func marshalText(m encoding.TextMarshaler) (string, bool, error) {
	text, err := m.MarshalText()
	if err != nil {
		return "", false, err
	}

	return string(text), true, nil
}

func convertStringer(v reflect.Value, _ Context) (string, bool, error) {
	v, err := exposed(v)
	if err != nil {
		return "", false, err
	}

	return v.Interface().(fmt.Stringer).String(), true, nil
}

func convertAddrStringer(v reflect.Value, _ Context) (string, bool, error) {
	p, err := addressOf(v)
	if err != nil {
		return "", false, err
	}

	return p.Interface().(fmt.Stringer).String(), true, nil
}

func convertFallback(v reflect.Value, _ Context) (string, bool, error) {
	if !v.IsValid() {
		return "", true, nil
	}

	return fmt.Sprint(v), true, nil
}

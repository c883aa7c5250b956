package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"csvcaster/internal/diagnostic"
	"csvcaster/mapping"
	"csvcaster/primitive"
	"csvcaster/record"
)

var errNilRecord = errors.New("nil record")

// Option configures a Cache.
type Option func(*Cache)

// WithLogger logs compilations, invalidations and mapping diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithIncludePrivate makes struct plans write unexported fields.
func WithIncludePrivate(on bool) Option {
	return func(c *Cache) {
		c.includePrivate = on
	}
}

// Cache maps record types and shapes to compiled plans.
// It is not safe for concurrent use.
type Cache struct {
	registry       *mapping.Registry
	converters     *primitive.Converters
	includePrivate bool
	logger         *slog.Logger
	plans          map[Key]*Plan
}

// NewCache returns an empty cache compiling plans from the mappings in
// registry and the converters in conv. Nil arguments get fresh defaults.
func NewCache(registry *mapping.Registry, conv *primitive.Converters, opts ...Option) *Cache {
	if registry == nil {
		registry = mapping.NewRegistry()
	}

	if conv == nil {
		conv = primitive.NewConverters()
	}

	c := &Cache{
		registry:   registry,
		converters: conv,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		plans:      make(map[Key]*Plan),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Registry returns the mapping registry plans are compiled from.
func (c *Cache) Registry() *mapping.Registry {
	return c.registry
}

// Converters returns the converters plans are compiled with.
func (c *Cache) Converters() *primitive.Converters {
	return c.converters
}

// Len returns the number of cached plans.
func (c *Cache) Len() int {
	return len(c.plans)
}

// Get returns the plan for rec, compiling it on first use.
func (c *Cache) Get(rec reflect.Value) (*Plan, error) {
	for rec.IsValid() && rec.Kind() == reflect.Interface && !rec.IsNil() {
		rec = rec.Elem()
	}

	if !rec.IsValid() || (rec.Kind() == reflect.Interface && rec.IsNil()) {
		return nil, errNilRecord
	}

	if record.IsDynamic(rec.Type()) {
		shape, _ := record.Discover(rec.Interface())
		key := Key{Type: rec.Type(), Shape: shape.Key()}

		if p, ok := c.plans[key]; ok {
			return p, nil
		}

		p, err := c.compileDynamic(key, shape)
		if err != nil {
			return nil, err
		}

		return c.store(p), nil
	}

	return c.GetType(rec.Type())
}

// GetType returns the plan for a static type. Dynamic types have no plan
// without a record to discover the shape from.
func (c *Cache) GetType(t reflect.Type) (*Plan, error) {
	if record.IsDynamic(t) {
		return nil, fmt.Errorf("%w: %s is dynamic, its columns depend on the record", ErrNoColumns, t)
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	key := Key{Type: t}

	if p, ok := c.plans[key]; ok {
		return p, nil
	}

	if t.Kind() != reflect.Struct || primitive.IsScalar(t) {
		return c.store(c.compilePrimitive(key)), nil
	}

	p, err := c.compileStruct(key)
	if err != nil {
		return nil, err
	}

	return c.store(p), nil
}

// Columns returns the header names of a static type. Primitive and dynamic
// types fail with ErrNoColumns.
func (c *Cache) Columns(t reflect.Type) ([]string, error) {
	p, err := c.GetType(t)
	if err != nil {
		return nil, err
	}

	if len(p.Header) == 0 {
		return nil, fmt.Errorf("%w: %s is written as a single value", ErrNoColumns, p.Key.Type)
	}

	return p.Header, nil
}

// Invalidate drops every plan compiled for t.
func (c *Cache) Invalidate(t reflect.Type) {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	n := c.deleteFunc(func(k Key) bool { return k.Type == t || k.Type == base })
	c.logger.Debug("invalidated plans", "type", t.String(), "dropped", n)
}

// InvalidateShape drops the plans of dynamic records with exactly these member names.
func (c *Cache) InvalidateShape(names []string) {
	key := record.NewShape(names).Key()

	n := c.deleteFunc(func(k Key) bool { return k.Shape == key && record.IsDynamic(k.Type) })
	c.logger.Debug("invalidated plans", "shape", names, "dropped", n)
}

// InvalidateAll drops every plan.
func (c *Cache) InvalidateAll() {
	n := len(c.plans)
	clear(c.plans)
	c.logger.Debug("invalidated all plans", "dropped", n)
}

func (c *Cache) deleteFunc(del func(Key) bool) int {
	n := 0

	for k := range c.plans {
		if del(k) {
			delete(c.plans, k)
			n++
		}
	}

	return n
}

func (c *Cache) store(p *Plan) *Plan {
	c.plans[p.Key] = p

	c.logger.Debug("compiled plan", "type", p.Key.Type.String(), "kind", p.Kind.String(), "columns", len(p.Header))

	for _, d := range p.Diagnostics.All() {
		level := slog.LevelDebug
		if d.Severity >= diagnostic.SeverityWarning {
			level = slog.LevelWarn
		}

		c.logger.Log(context.Background(), level, "mapping diagnostic",
			"type", d.Type, "column", d.Column, "code", d.Code, "message", d.Message)
	}

	return p
}

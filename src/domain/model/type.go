package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"entitycore/src/domain"
)

// Type is the factory and shared configuration for every entity of one kind.
// It is safe to share between goroutines; entities it produces are not.
type Type struct {
	definition Definition
	protected  map[string]struct{}
	clock      func() time.Time

	mu      sync.RWMutex
	backend Backend
	emitter Emitter
}

func NewType(definition Definition, config Config) *Type {
	definition = definition.withDefaults()

	protected := make(map[string]struct{}, len(definition.Protected))
	for _, field := range definition.Protected {
		protected[field] = struct{}{}
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Type{
		definition: definition,
		protected:  protected,
		clock:      clock,
		backend:    config.Backend,
		emitter:    config.Emitter,
	}
}

func (t *Type) Name() string {
	return t.definition.Name
}

func (t *Type) TableName() string {
	return t.definition.Table
}

// PrimaryKey returns the primary key column, or "" when the type has none.
func (t *Type) PrimaryKey() string {
	return t.definition.PrimaryKey
}

func (t *Type) Incrementing() bool {
	return t.definition.Incrementing
}

func (t *Type) CreatedAtField() string {
	return t.definition.CreatedAtField
}

func (t *Type) UpdatedAtField() string {
	return t.definition.UpdatedAtField
}

func (t *Type) Backend() Backend {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.backend
}

func (t *Type) SetBackend(backend Backend) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.backend = backend
}

func (t *Type) Emitter() Emitter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.emitter
}

func (t *Type) SetEmitter(emitter Emitter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitter = emitter
}

// HasTransformer reports whether assignments to field are intercepted.
func (t *Type) HasTransformer(field string) bool {
	_, ok := t.definition.Transformers[field]
	return ok
}

func (t *Type) IsProtected(field string) bool {
	_, ok := t.protected[field]
	return ok
}

// New builds an entity from attrs, running every entry through the
// transformer aware setter. exists tells whether the row is already stored.
func (t *Type) New(attrs *Attributes, exists bool) (*Entity, error) {
	e := &Entity{
		kind:       t,
		attributes: NewAttributes(),
		exists:     exists,
	}

	if err := e.SetAttributes(attrs); err != nil {
		return nil, err
	}

	e.original = e.attributes.Clone()
	return e, nil
}

// Hydrate builds an entity for a row that already exists in the backend.
func (t *Type) Hydrate(attrs *Attributes) (*Entity, error) {
	return t.New(attrs, true)
}

// Create builds a new entity and inserts it right away.
func (t *Type) Create(ctx context.Context, attrs *Attributes) (*Entity, error) {
	e, err := t.New(attrs, false)
	if err != nil {
		return nil, err
	}

	if err := e.Save(ctx); err != nil {
		return nil, err
	}

	return e, nil
}

// Find loads the row whose primary key equals key. Stored values are taken as
// they are: transformers only run on assignments made by the application.
func (t *Type) Find(ctx context.Context, key any) (*Entity, error) {
	if t.definition.PrimaryKey == "" {
		return nil, fmt.Errorf("find %s: %w", t.definition.Table, domain.ErrMissingPrimaryKey)
	}

	backend, err := t.requireBackend()
	if err != nil {
		return nil, err
	}

	finder, ok := backend.(Finder)
	if !ok {
		return nil, fmt.Errorf("find %s: %w", t.definition.Table, domain.ErrUnsupported)
	}

	attrs, err := finder.FindByKey(ctx, t.definition.Table, t.definition.PrimaryKey, key)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: find %s: %w", domain.ErrBackendFailure, t.definition.Table, err)
	}

	return &Entity{
		kind:       t,
		attributes: attrs,
		original:   attrs.Clone(),
		exists:     true,
	}, nil
}

func (t *Type) requireBackend() (Backend, error) {
	backend := t.Backend()
	if backend == nil {
		return nil, fmt.Errorf("%s: %w", t.definition.Table, domain.ErrNoBackend)
	}
	return backend, nil
}

// Topic returns the event topic for eventName, e.g. "user.created".
func (t *Type) Topic(eventName string) string {
	return strings.ToLower(t.definition.Name) + "." + eventName
}

// trigger is best effort: without an emitter it does nothing.
func (t *Type) trigger(ctx context.Context, eventName string, e *Entity) {
	emitter := t.Emitter()
	if emitter == nil {
		return
	}
	emitter.Emit(ctx, t.Topic(eventName), []any{e})
}

func (t *Type) timestamp() string {
	return t.clock().UTC().Format(TimestampFormat)
}

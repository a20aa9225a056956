package model

import (
	"context"
	"encoding/json"
	"fmt"

	"entitycore/src/domain"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Entity is the in-memory state of one row. It tracks which attributes changed
// since the last synchronization with the backend. An Entity must not be used
// from several goroutines at once.
type Entity struct {
	kind       *Type
	attributes *Attributes
	original   *Attributes
	exists     bool
}

func (e *Entity) Type() *Type {
	return e.kind
}

// Exists reports whether the entity is backed by a stored row.
func (e *Entity) Exists() bool {
	return e.exists
}

// Attributes returns a copy of the current state.
func (e *Entity) Attributes() *Attributes {
	return e.attributes.Clone()
}

// Original returns a copy of the state at the last synchronization.
func (e *Entity) Original() *Attributes {
	return e.original.Clone()
}

func (e *Entity) GetAttribute(name string) (any, bool) {
	value, ok := e.attributes.Get(name)
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// SetAttribute assigns a single attribute, going through the field transformer
// when the type registers one.
func (e *Entity) SetAttribute(name string, value any) error {
	if value == nil {
		return fmt.Errorf("set %q: value cannot be nil: %w", name, domain.ErrInvalidArgument)
	}
	return e.assign(name, value)
}

// SetAttributes is the bulk form of SetAttribute. Nil values are accepted.
func (e *Entity) SetAttributes(attrs *Attributes) error {
	var err error
	attrs.Each(func(name string, value any) {
		if err != nil {
			return
		}
		err = e.assign(name, value)
	})
	return err
}

// SetRawAttribute writes value without consulting transformers. Transformers
// use it to store what they computed.
func (e *Entity) SetRawAttribute(name string, value any) {
	e.attributes.Set(name, value)
}

func (e *Entity) assign(name string, value any) error {
	if transformer, ok := e.kind.definition.Transformers[name]; ok {
		if err := transformer(e, value); err != nil {
			return fmt.Errorf("transform %q: %w", name, err)
		}
		return nil
	}

	e.attributes.Set(name, cloneValue(value))
	return nil
}

// MutatedAttributes returns the dirty set: attributes that are missing from the
// last snapshot or whose value differs from it, in attribute order.
func (e *Entity) MutatedAttributes() *Attributes {
	mutated := NewAttributes()
	e.attributes.Each(func(name string, value any) {
		original, ok := e.original.Get(name)
		if !ok || !valuesEqual(original, value) {
			mutated.Set(name, value)
		}
	})
	return mutated
}

// IsDirty reports whether any attribute changed since the last synchronization.
func (e *Entity) IsDirty() bool {
	return e.MutatedAttributes().Len() > 0
}

// Save inserts the entity when it does not exist yet, otherwise it writes the
// dirty set. Saving an unchanged existing entity is a no-op.
func (e *Entity) Save(ctx context.Context) error {
	var err error
	if !e.exists {
		err = e.performInsert(ctx)
	} else {
		err = e.performUpdate(ctx)
	}
	if err != nil {
		return err
	}

	e.original = e.attributes.Clone()
	return nil
}

func (e *Entity) performInsert(ctx context.Context) error {
	kind := e.kind
	backend, err := kind.requireBackend()
	if err != nil {
		return err
	}

	if field := kind.definition.CreatedAtField; field != "" {
		e.attributes.Set(field, kind.timestamp())
	}

	table := kind.definition.Table
	primaryKey := kind.definition.PrimaryKey
	if kind.definition.Incrementing && primaryKey != "" {
		id, err := backend.InsertAndReturnID(ctx, table, primaryKey, e.attributes.Clone())
		if err != nil {
			return fmt.Errorf("%w: insert into %s: %w", domain.ErrBackendFailure, table, err)
		}
		e.attributes.Set(primaryKey, id)
	} else {
		if err := backend.Insert(ctx, table, e.attributes.Clone()); err != nil {
			return fmt.Errorf("%w: insert into %s: %w", domain.ErrBackendFailure, table, err)
		}
	}

	e.exists = true
	kind.trigger(ctx, EventCreated, e)
	return nil
}

func (e *Entity) performUpdate(ctx context.Context) error {
	mutated := e.MutatedAttributes()
	if mutated.Len() == 0 {
		return nil
	}

	kind := e.kind
	table := kind.definition.Table
	primaryKey := kind.definition.PrimaryKey
	if primaryKey == "" {
		return fmt.Errorf("update %s: %w", table, domain.ErrMissingPrimaryKey)
	}

	key, ok := e.GetAttribute(primaryKey)
	if !ok {
		return fmt.Errorf("update %s: %s has no value: %w", table, primaryKey, domain.ErrInvalidArgument)
	}

	backend, err := kind.requireBackend()
	if err != nil {
		return err
	}

	if field := kind.definition.UpdatedAtField; field != "" {
		stamp := kind.timestamp()
		e.attributes.Set(field, stamp)
		mutated.Set(field, stamp)
	}

	if err := backend.Update(ctx, table, primaryKey, key, mutated); err != nil {
		return fmt.Errorf("%w: update %s: %w", domain.ErrBackendFailure, table, err)
	}

	kind.trigger(ctx, EventUpdated, e)
	return nil
}

// Update merges copies of attrs into the entity and saves it. Field
// transformers are not applied on this path.
func (e *Entity) Update(ctx context.Context, attrs *Attributes) error {
	attrs.Each(func(name string, value any) {
		e.attributes.Set(name, cloneValue(value))
	})
	return e.Save(ctx)
}

// Delete removes the backing row. The attributes stay readable afterwards.
func (e *Entity) Delete(ctx context.Context) error {
	kind := e.kind
	table := kind.definition.Table
	primaryKey := kind.definition.PrimaryKey
	if primaryKey == "" {
		return fmt.Errorf("delete from %s: %w", table, domain.ErrMissingPrimaryKey)
	}
	if !e.exists {
		return fmt.Errorf("delete from %s: %w", table, domain.ErrNotPersisted)
	}

	key, ok := e.GetAttribute(primaryKey)
	if !ok {
		return fmt.Errorf("delete from %s: %s has no value: %w", table, primaryKey, domain.ErrInvalidArgument)
	}

	backend, err := kind.requireBackend()
	if err != nil {
		return err
	}

	if err := backend.Delete(ctx, table, primaryKey, key); err != nil {
		return fmt.Errorf("%w: delete from %s: %w", domain.ErrBackendFailure, table, err)
	}

	e.exists = false
	kind.trigger(ctx, EventDeleted, e)
	return nil
}

// ToArray projects the attributes without the protected fields.
func (e *Entity) ToArray() *Attributes {
	projection := NewAttributes()
	e.attributes.Each(func(name string, value any) {
		if !e.kind.IsProtected(name) {
			projection.Set(name, cloneValue(value))
		}
	})
	return projection
}

func (e *Entity) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *Entity) MarshalJSON() ([]byte, error) {
	return e.ToArray().MarshalJSON()
}

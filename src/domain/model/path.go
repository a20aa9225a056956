package model

import (
	"fmt"
	"strings"

	"entitycore/src/domain"
)

const pathSeparator = "."

// Has reports whether path resolves to a non-nil value. Segments are separated
// by dots and walk into nested mappings.
func (e *Entity) Has(path string) bool {
	segments := strings.Split(path, pathSeparator)
	if len(segments) == 1 {
		_, ok := e.GetAttribute(path)
		return ok
	}

	_, ok := lookup(e.attributes, segments)
	return ok
}

// Get resolves path, returning false as soon as a segment is missing or nil.
func (e *Entity) Get(path string) (any, bool) {
	segments := strings.Split(path, pathSeparator)
	if len(segments) == 1 {
		return e.GetAttribute(path)
	}

	return lookup(e.attributes, segments)
}

// Set assigns value at path. A single segment goes through SetAttribute, so
// transformers apply. Deeper paths create the nested mappings they need.
func (e *Entity) Set(path string, value any) error {
	segments := strings.Split(path, pathSeparator)
	if len(segments) == 1 {
		return e.SetAttribute(path, value)
	}

	return upsert(e.attributes, segments, value)
}

// Unset is not supported: attributes cannot be removed through a path.
func (e *Entity) Unset(path string) error {
	return fmt.Errorf("unset %q: %w", path, domain.ErrUnimplemented)
}

func lookup(attrs *Attributes, segments []string) (any, bool) {
	var current any = attrs
	for _, segment := range segments {
		next, ok := child(current, segment)
		if !ok || next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

func child(value any, segment string) (any, bool) {
	switch v := value.(type) {
	case *Attributes:
		return v.Get(segment)
	case map[string]any:
		nested, ok := v[segment]
		return nested, ok
	default:
		return nil, false
	}
}

// upsert writes value at segments below node, replacing missing, nil or
// empty-string intermediates with new mappings.
func upsert(node *Attributes, segments []string, value any) error {
	head := segments[0]
	if len(segments) == 1 {
		node.Set(head, value)
		return nil
	}

	current, _ := node.Get(head)
	switch v := current.(type) {
	case *Attributes:
		return upsert(v, segments[1:], value)
	case map[string]any:
		return upsertMap(v, segments[1:], value)
	case nil:
	case string:
		if v != "" {
			return fmt.Errorf("set %q: %q holds a scalar: %w", strings.Join(segments, pathSeparator), head, domain.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("set %q: %q holds a scalar: %w", strings.Join(segments, pathSeparator), head, domain.ErrInvalidArgument)
	}

	nested := NewAttributes()
	if err := upsert(nested, segments[1:], value); err != nil {
		return err
	}
	node.Set(head, nested)
	return nil
}

func upsertMap(node map[string]any, segments []string, value any) error {
	wrapped := AttributesFromMap(node)
	if err := upsert(wrapped, segments, value); err != nil {
		return err
	}

	for _, key := range wrapped.Keys() {
		node[key], _ = wrapped.Get(key)
	}
	return nil
}

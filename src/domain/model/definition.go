package model

import (
	"context"
	"time"
)

const (
	DefaultCreatedAtField = "created_at"
	DefaultUpdatedAtField = "updated_at"

	// NoTimestamp disables a single timestamp field.
	NoTimestamp = "-"

	// TimestampFormat is used for every created/updated stamp.
	TimestampFormat = time.RFC3339
)

// Backend executes row level statements against a named table.
type Backend interface {
	Insert(ctx context.Context, table string, attrs *Attributes) error
	// InsertAndReturnID inserts attrs and returns the key generated for primaryKey.
	InsertAndReturnID(ctx context.Context, table string, primaryKey string, attrs *Attributes) (any, error)
	// Update writes attrs to the rows where key equals value.
	Update(ctx context.Context, table string, key string, value any, attrs *Attributes) error
	Delete(ctx context.Context, table string, key string, value any) error
}

// Finder is implemented by backends able to load a single row by key.
type Finder interface {
	FindByKey(ctx context.Context, table string, key string, value any) (*Attributes, error)
}

// Emitter publishes lifecycle notifications. It must not fail when nobody listens.
type Emitter interface {
	Emit(ctx context.Context, topic string, payload []any)
}

// Transformer intercepts assignment of one field. It is responsible for writing
// into the entity itself, usually through SetRawAttribute.
type Transformer func(e *Entity, value any) error

// Definition is the static description of an entity type.
type Definition struct {
	// Name identifies the type in event topics, e.g. "User" publishes "user.created".
	Name       string
	Table      string
	PrimaryKey string
	// Incrementing marks the primary key as generated by the backend on insert.
	Incrementing bool
	// CreatedAtField and UpdatedAtField default to created_at and updated_at.
	// Use NoTimestamp to turn one off, or DisableTimestamps for both.
	CreatedAtField    string
	UpdatedAtField    string
	DisableTimestamps bool
	Protected         []string
	Transformers      map[string]Transformer
}

// Config carries the collaborators shared by every entity of a type.
type Config struct {
	Backend Backend
	Emitter Emitter
	Clock   func() time.Time
}

func (d Definition) withDefaults() Definition {
	if d.DisableTimestamps {
		d.CreatedAtField = ""
		d.UpdatedAtField = ""
		return d
	}
	d.CreatedAtField = timestampField(d.CreatedAtField, DefaultCreatedAtField)
	d.UpdatedAtField = timestampField(d.UpdatedAtField, DefaultUpdatedAtField)
	return d
}

func timestampField(field, fallback string) string {
	switch field {
	case "":
		return fallback
	case NoTimestamp:
		return ""
	default:
		return field
	}
}

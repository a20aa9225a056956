package stubs

import (
	"context"
	"fmt"

	"entitycore/src/domain"
	"entitycore/src/domain/model"
)

const (
	OpInsert            = "insert"
	OpInsertAndReturnID = "insert_and_return_id"
	OpUpdate            = "update"
	OpDelete            = "delete"
	OpFind              = "find"
)

// BackendCall records one statement received by BackendStub.
type BackendCall struct {
	Op         string
	Table      string
	Key        string
	Value      any
	Attributes *model.Attributes
}

// BackendStub is an in-memory model.Backend and model.Finder that records
// every call it receives.
type BackendStub struct {
	Calls  []BackendCall
	rows   map[string]*model.Attributes
	nextID int64
	err    error
}

func NewBackendStub() *BackendStub {
	return &BackendStub{rows: map[string]*model.Attributes{}}
}

// WithNextID sets the key returned by the next generated insert.
func (b *BackendStub) WithNextID(id int64) *BackendStub {
	b.nextID = id - 1
	return b
}

// WithError makes every following call fail with err.
func (b *BackendStub) WithError(err error) *BackendStub {
	b.err = err
	return b
}

// WithRow stores a row that can be found by key.
func (b *BackendStub) WithRow(table, key string, attrs *model.Attributes) *BackendStub {
	value, _ := attrs.Get(key)
	b.rows[rowKey(table, value)] = attrs.Clone()
	return b
}

// CallsFor returns the recorded calls of a single operation.
func (b *BackendStub) CallsFor(op string) []BackendCall {
	var calls []BackendCall
	for _, call := range b.Calls {
		if call.Op == op {
			calls = append(calls, call)
		}
	}
	return calls
}

func (b *BackendStub) Row(table string, value any) (*model.Attributes, bool) {
	row, ok := b.rows[rowKey(table, value)]
	return row, ok
}

func (b *BackendStub) Insert(_ context.Context, table string, attrs *model.Attributes) error {
	b.Calls = append(b.Calls, BackendCall{Op: OpInsert, Table: table, Attributes: attrs})
	if b.err != nil {
		return b.err
	}
	b.rows[rowKey(table, nil)] = attrs.Clone()
	return nil
}

func (b *BackendStub) InsertAndReturnID(_ context.Context, table string, primaryKey string, attrs *model.Attributes) (any, error) {
	b.Calls = append(b.Calls, BackendCall{Op: OpInsertAndReturnID, Table: table, Key: primaryKey, Attributes: attrs})
	if b.err != nil {
		return nil, b.err
	}

	b.nextID++
	row := attrs.Clone()
	row.Set(primaryKey, b.nextID)
	b.rows[rowKey(table, b.nextID)] = row
	return b.nextID, nil
}

func (b *BackendStub) Update(_ context.Context, table string, key string, value any, attrs *model.Attributes) error {
	b.Calls = append(b.Calls, BackendCall{Op: OpUpdate, Table: table, Key: key, Value: value, Attributes: attrs})
	if b.err != nil {
		return b.err
	}
	if row, ok := b.rows[rowKey(table, value)]; ok {
		row.Merge(attrs)
	}
	return nil
}

func (b *BackendStub) Delete(_ context.Context, table string, key string, value any) error {
	b.Calls = append(b.Calls, BackendCall{Op: OpDelete, Table: table, Key: key, Value: value})
	if b.err != nil {
		return b.err
	}
	delete(b.rows, rowKey(table, value))
	return nil
}

func (b *BackendStub) FindByKey(_ context.Context, table string, key string, value any) (*model.Attributes, error) {
	b.Calls = append(b.Calls, BackendCall{Op: OpFind, Table: table, Key: key, Value: value})
	if b.err != nil {
		return nil, b.err
	}
	row, ok := b.rows[rowKey(table, value)]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return row.Clone(), nil
}

func rowKey(table string, value any) string {
	return fmt.Sprintf("%s:%v", table, value)
}

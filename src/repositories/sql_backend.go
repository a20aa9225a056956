package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"entitycore/src/domain"
	"entitycore/src/domain/model"
)

var sqliteDialect = dialect{
	quote: func(identifier string) string {
		return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
	},
	placeholder: func(int) string {
		return "?"
	},
	encode: func(value any) (any, error) {
		if !isNested(value) {
			return value, nil
		}
		bytes, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode json value: %w", err)
		}
		return string(bytes), nil
	},
}

// SQLBackend stores rows through database/sql. Generated keys come from
// LastInsertId, and columns declared as JSON are decoded into nested mappings.
type SQLBackend struct {
	db *sql.DB
}

func NewSQLBackend(db *sql.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (r *SQLBackend) Insert(ctx context.Context, table string, attrs *model.Attributes) error {
	_, err := r.insert(ctx, table, attrs)
	return err
}

func (r *SQLBackend) InsertAndReturnID(ctx context.Context, table string, _ string, attrs *model.Attributes) (any, error) {
	result, err := r.insert(ctx, table, attrs)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read generated key of %s: %w", table, err)
	}
	return id, nil
}

func (r *SQLBackend) insert(ctx context.Context, table string, attrs *model.Attributes) (sql.Result, error) {
	stmt, err := buildInsert(sqliteDialect, table, attrs, "")
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return result, nil
}

func (r *SQLBackend) Update(ctx context.Context, table string, key string, value any, attrs *model.Attributes) error {
	stmt, err := buildUpdate(sqliteDialect, table, key, value, attrs)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

func (r *SQLBackend) Delete(ctx context.Context, table string, key string, value any) error {
	stmt := buildDelete(sqliteDialect, table, key, value)

	if _, err := r.db.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (r *SQLBackend) FindByKey(ctx context.Context, table string, key string, value any) (*model.Attributes, error) {
	stmt := buildSelectByKey(sqliteDialect, table, key, value)

	rows, err := r.db.QueryContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", table, err)
		}
		return nil, domain.ErrEntityNotFound
	}

	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
	}

	attrs := model.NewAttributes()
	for i, column := range columns {
		decoded, err := decodeColumn(column, values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s of %s: %w", column.Name(), table, err)
		}
		attrs.Set(column.Name(), decoded)
	}
	return attrs, nil
}

func decodeColumn(column *sql.ColumnType, value any) (any, error) {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return value, nil
	}

	switch strings.ToUpper(column.DatabaseTypeName()) {
	case "JSON", "JSONB":
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode json value: %w", err)
		}
		return decoded, nil
	default:
		return string(raw), nil
	}
}

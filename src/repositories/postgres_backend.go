package repositories

import (
	"context"
	"fmt"

	"entitycore/src/domain"
	"entitycore/src/domain/model"
	"entitycore/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresDialect = dialect{
	quote: func(identifier string) string {
		return pgx.Identifier{identifier}.Sanitize()
	},
	placeholder: func(position int) string {
		return fmt.Sprintf("$%d", position)
	},
	encode: func(value any) (any, error) {
		if isNested(value) {
			return postgres.NewJSONB(value)
		}
		return value, nil
	},
}

// PostgresBackend writes rows through the primary pool and reads them from the
// replica pool.
type PostgresBackend struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewPostgresBackend(client *postgres.ReadWriteClient) *PostgresBackend {
	return &PostgresBackend{
		readPool:  client.GetReadPool(),
		writePool: client.GetWritePool(),
	}
}

func (r *PostgresBackend) Insert(ctx context.Context, table string, attrs *model.Attributes) error {
	stmt, err := buildInsert(postgresDialect, table, attrs, "")
	if err != nil {
		return err
	}

	if _, err := r.writePool.Exec(ctx, stmt.query, stmt.args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (r *PostgresBackend) InsertAndReturnID(ctx context.Context, table string, primaryKey string, attrs *model.Attributes) (any, error) {
	stmt, err := buildInsert(postgresDialect, table, attrs, primaryKey)
	if err != nil {
		return nil, err
	}

	var id any
	if err := r.writePool.QueryRow(ctx, stmt.query, stmt.args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return id, nil
}

func (r *PostgresBackend) Update(ctx context.Context, table string, key string, value any, attrs *model.Attributes) error {
	stmt, err := buildUpdate(postgresDialect, table, key, value, attrs)
	if err != nil {
		return err
	}

	if _, err := r.writePool.Exec(ctx, stmt.query, stmt.args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

func (r *PostgresBackend) Delete(ctx context.Context, table string, key string, value any) error {
	stmt := buildDelete(postgresDialect, table, key, value)

	if _, err := r.writePool.Exec(ctx, stmt.query, stmt.args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (r *PostgresBackend) FindByKey(ctx context.Context, table string, key string, value any) (*model.Attributes, error) {
	stmt := buildSelectByKey(postgresDialect, table, key, value)

	rows, err := r.readPool.Query(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil && !postgres.IsNoRows(err) {
			return nil, fmt.Errorf("failed to query %s: %w", table, err)
		}
		return nil, domain.ErrEntityNotFound
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
	}

	attrs := model.NewAttributes()
	for i, field := range rows.FieldDescriptions() {
		attrs.Set(field.Name, values[i])
	}
	return attrs, nil
}

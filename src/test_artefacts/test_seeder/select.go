package test_seeder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UserRow is the raw content of a users row.
type UserRow struct {
	ID        int64
	Name      sql.NullString
	Email     sql.NullString
	Age       sql.NullInt64
	Password  sql.NullString
	Address   sql.NullString
	CreatedAt sql.NullString
	UpdatedAt sql.NullString
}

// SelectUser returns the row with id, or nil when it does not exist.
func (ts TestSeeder) SelectUser(ctx context.Context, id int64) *UserRow {
	var row UserRow
	err := ts.db.QueryRowContext(ctx,
		`SELECT id, name, email, age, password, address, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&row.ID, &row.Name, &row.Email, &row.Age, &row.Password, &row.Address, &row.CreatedAt, &row.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		panic(fmt.Sprintf("Seeder.SelectUser failed: %v", err))
	}
	return &row
}

func (ts TestSeeder) CountRows(ctx context.Context, table string) int {
	var count int
	if err := ts.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		panic(fmt.Sprintf("Seeder.CountRows failed: %v", err))
	}
	return count
}

package test_seeder

import (
	"context"
	"database/sql"
	"fmt"
)

type TestSeeder struct {
	db *sql.DB
}

func New(db *sql.DB) TestSeeder {
	return TestSeeder{db: db}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		email TEXT,
		age INTEGER,
		password TEXT,
		address JSON,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		message TEXT,
		level TEXT,
		created_at TEXT
	)`,
}

// CreateSchema creates the tables used by the specs.
func (ts TestSeeder) CreateSchema(ctx context.Context) {
	for _, statement := range schema {
		if _, err := ts.db.ExecContext(ctx, statement); err != nil {
			panic(fmt.Sprintf("Seeder.CreateSchema failed: %v", err))
		}
	}
}

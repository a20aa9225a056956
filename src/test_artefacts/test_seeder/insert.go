package test_seeder

import (
	"context"
	"fmt"
)

// InsertUser inserts a user row and returns its generated id.
func (ts TestSeeder) InsertUser(ctx context.Context, name string, email string, age int) int64 {
	result, err := ts.db.ExecContext(ctx,
		`INSERT INTO users (name, email, age, created_at) VALUES (?, ?, ?, ?)`,
		name, email, age, "2024-01-01T00:00:00Z",
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertUser failed: %v", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertUser failed: %v", err))
	}
	return id
}

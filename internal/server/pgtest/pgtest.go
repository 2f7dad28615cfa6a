// Package pgtest opens a migrated PostgreSQL database for integration tests.
// Tests using it are skipped unless RECIPEHUB_TEST_DATABASE_DSN is set, either
// in the environment or in a .env file found by walking up from the test's
// working directory.
package pgtest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/recipehub/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

const DSNEnv = "RECIPEHUB_TEST_DATABASE_DSN"

// lockKey serializes test packages sharing the database; go test runs
// packages in parallel.
const lockKey = 7_202_411

// Open returns a connection to a freshly migrated and emptied database.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	loadDotEnv()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", DSNEnv)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		_ = conn.Close()
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		_ = conn.Close()
	})

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	Reset(t, db)
	return db
}

// Reset removes all user data but keeps the seeded categories.
func Reset(t testing.TB, db *sql.DB) {
	t.Helper()
	for _, q := range []string{
		`TRUNCATE ratings, comments, recipe_categories, ingredients, steps, recipes, users RESTART IDENTITY`,
		`DELETE FROM categories WHERE id > 10`,
	} {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("reset: %v", err)
		}
	}
}

func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

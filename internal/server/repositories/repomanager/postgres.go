// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/migrations"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/categories"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/comments"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/ratings"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/search"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	searchStrategy string
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Recipes returns a recipes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Recipes(db dbx.DBTX) recipes.Repository {
	return recipes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Ratings(db dbx.DBTX) ratings.Repository {
	return ratings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewPostgresRepository(db)
}

// Search returns the configured listing strategy bound to the provided DBTX.
func (m *PostgresRepositoryManager) Search(db dbx.DBTX) search.Searcher {
	if m.searchStrategy == search.StrategyFast {
		return search.NewFastSearcher(db)
	}
	return search.NewComposedSearcher(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection. The seed migration makes
// repeated startups idempotent.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
// searchStrategy selects the listing implementation ("composed" or "fast");
// empty means composed.
func NewPostgresRepositoryManager(searchStrategy string) (RepositoryManager, error) {
	switch searchStrategy {
	case "", search.StrategyComposed, search.StrategyFast:
	default:
		return nil, fmt.Errorf("unknown search strategy %q", searchStrategy)
	}
	return &PostgresRepositoryManager{searchStrategy: searchStrategy}, nil
}

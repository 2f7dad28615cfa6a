package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/categories"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/comments"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/ratings"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/search"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Recipes(db dbx.DBTX) recipes.Repository
	Categories(db dbx.DBTX) categories.Repository
	Ratings(db dbx.DBTX) ratings.Repository
	Comments(db dbx.DBTX) comments.Repository
	Search(db dbx.DBTX) search.Searcher
}

package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

// Repository persists the recipe aggregate. Multi-statement operations are
// expected to run on a transaction-bound DBTX.
type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Get(ctx context.Context, id int64) (*models.RecipeGraph, error)
	FindOwnedForUpdate(ctx context.Context, id, ownerID int64) (*models.Recipe, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id int64) error

	Steps(ctx context.Context, recipeID int64) ([]models.Step, error)
	InsertSteps(ctx context.Context, recipeID int64, instructions []string) error
	DeleteSteps(ctx context.Context, recipeID int64) error

	Ingredients(ctx context.Context, recipeID int64) ([]models.Ingredient, error)
	InsertIngredients(ctx context.Context, recipeID int64, ingredients []models.IngredientInput) error
	DeleteIngredients(ctx context.Context, recipeID int64) error

	CategoryNames(ctx context.Context, recipeID int64) ([]string, error)
	LinkCategories(ctx context.Context, recipeID int64, categoryIDs []int64) error
	UnlinkCategories(ctx context.Context, recipeID int64) error
}

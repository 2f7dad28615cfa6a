package comments

import (
	"context"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Get(ctx context.Context, id int64) (*models.Comment, error)
	ListByRecipe(ctx context.Context, recipeID int64) ([]models.Comment, error)
	DeleteOwned(ctx context.Context, id, userID int64) (bool, error)
}

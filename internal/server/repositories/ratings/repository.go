package ratings

import (
	"context"
	"time"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

type Repository interface {
	FindByPair(ctx context.Context, recipeID, userID int64) (*models.Rating, error)
	Insert(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	UpdateScore(ctx context.Context, recipeID, userID int64, score int, at time.Time) (int64, error)
	Get(ctx context.Context, id int64) (*models.Rating, error)
	ListByRecipe(ctx context.Context, recipeID int64) ([]models.Rating, error)
	Stats(ctx context.Context, recipeID int64) (models.RatingStats, error)
}

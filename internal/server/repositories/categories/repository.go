package categories

import (
	"context"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
}

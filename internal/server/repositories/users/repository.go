package users

import (
	"context"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

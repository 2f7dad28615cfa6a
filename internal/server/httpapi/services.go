package httpapi

import (
	"context"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

// The handlers depend on these narrow views of the services package.

type UserService interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error)
	Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error)
}

type RecipeService interface {
	Create(ctx context.Context, ownerID int64, in models.RecipeInput) (*models.RecipeGraph, error)
	Get(ctx context.Context, id int64) (*models.RecipeGraph, error)
	Update(ctx context.Context, id, ownerID int64, patch models.RecipePatch) (*models.RecipeGraph, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	AttachImage(ctx context.Context, id, ownerID int64, fileName string, data []byte) (string, error)
}

type SearchService interface {
	List(ctx context.Context, q models.SearchQuery) (*models.Page[models.RecipeSummary], error)
	ListByOwner(ctx context.Context, ownerID int64, page, pageSize int) (*models.Page[models.RecipeSummary], error)
}

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, in models.CategoryInput) (*models.Category, error)
}

type RatingService interface {
	Rate(ctx context.Context, userID int64, in models.RatingInput) (*models.Rating, error)
	List(ctx context.Context, recipeID int64) ([]models.Rating, error)
}

type CommentService interface {
	Create(ctx context.Context, userID int64, in models.CommentInput) (*models.Comment, error)
	List(ctx context.Context, recipeID int64) ([]models.Comment, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

// TokenValidator resolves a bearer token to the caller's identity.
type TokenValidator interface {
	Validate(token string) (*models.Identity, error)
}

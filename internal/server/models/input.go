package models

// RegisterInput is a new account as submitted by a client.
type RegisterInput struct {
	UserName string `json:"username" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

type RatingInput struct {
	RecipeID int64 `json:"recipeId" validate:"required"`
	Score    int   `json:"score" validate:"gte=1,lte=5"`
}

type CommentInput struct {
	RecipeID int64  `json:"recipeId" validate:"required"`
	Body     string `json:"body" validate:"required,notblank,max=2000"`
}

package models

import "time"

// Recipe is the root row of the recipe aggregate.
type Recipe struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Step is one instruction; Order is 1-based and contiguous within a recipe.
type Step struct {
	ID          int64
	RecipeID    int64
	Order       int
	Instruction string
}

type Ingredient struct {
	ID       int64
	RecipeID int64
	Name     string
	Quantity string
}

type Category struct {
	ID   int64
	Name string
}

// IngredientInput is an ingredient as submitted by a client.
type IngredientInput struct {
	Name     string `json:"name" validate:"required,notblank,max=200"`
	Quantity string `json:"quantity" validate:"max=100"`
}

// RecipeInput carries the fields of a new recipe.
type RecipeInput struct {
	Title       string            `json:"title" validate:"required,notblank,max=200"`
	Description string            `json:"description" validate:"max=2000"`
	Steps       []string          `json:"steps" validate:"required,min=1,dive,required,notblank"`
	Ingredients []IngredientInput `json:"ingredients" validate:"dive"`
	CategoryIDs []int64           `json:"categoryIds"`
}

// RecipePatch is a partial update. Nil fields are left unchanged; a non-nil
// slice (even an empty one) replaces the whole collection.
type RecipePatch struct {
	Title       *string           `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string           `json:"description" validate:"omitnil,max=2000"`
	Steps       []string          `json:"steps" validate:"omitnil,min=1,dive,required,notblank"`
	Ingredients []IngredientInput `json:"ingredients" validate:"omitnil,dive"`
	CategoryIDs []int64           `json:"categoryIds"`
}

// RecipeGraph is the full recipe: root fields, ordered steps, ingredients,
// category names, the owner's username and live rating statistics.
type RecipeGraph struct {
	Recipe
	AuthorUserName string
	Steps          []Step
	Ingredients    []Ingredient
	Categories     []string
	AverageRating  float64
	RatingCount    int
}

// RecipeSummary is the listing projection of a recipe.
type RecipeSummary struct {
	ID             int64
	Title          string
	ImageURL       *string
	AuthorUserName string
	Categories     []string
	AverageRating  float64
	RatingCount    int
	CreatedAt      time.Time
}

// RatingStats is the live aggregate over a recipe's ratings.
type RatingStats struct {
	Average float64
	Count   int
}

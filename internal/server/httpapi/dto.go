package httpapi

import (
	"time"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

type authResponse struct {
	Token     string    `json:"token"`
	UserName  string    `json:"username"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ingredientDTO struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type recipeDTO struct {
	RecipeID       int64           `json:"recipeId"`
	UserID         int64           `json:"userId"`
	AuthorUserName string          `json:"authorUsername"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Steps          []string        `json:"steps"`
	ImageURL       *string         `json:"imageUrl"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Ingredients    []ingredientDTO `json:"ingredients"`
	Categories     []string        `json:"categories"`
	AverageRating  float64         `json:"averageRating"`
	RatingCount    int             `json:"ratingCount"`
}

type recipeSummaryDTO struct {
	RecipeID       int64     `json:"recipeId"`
	Title          string    `json:"title"`
	ImageURL       *string   `json:"imageUrl"`
	AuthorUserName string    `json:"authorUsername"`
	Categories     []string  `json:"categories"`
	AverageRating  float64   `json:"averageRating"`
	RatingCount    int       `json:"ratingCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

type pageDTO struct {
	Items      []recipeSummaryDTO `json:"items"`
	TotalCount int                `json:"totalCount"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
}

type categoryDTO struct {
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
}

type ratingDTO struct {
	RatingID  int64     `json:"ratingId"`
	RecipeID  int64     `json:"recipeId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"username"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentDTO struct {
	CommentID int64     `json:"commentId"`
	RecipeID  int64     `json:"recipeId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

func toAuthResponse(a *models.AuthResult) authResponse {
	return authResponse{Token: a.Token, UserName: a.UserName, UserID: a.UserID, ExpiresAt: a.ExpiresAt}
}

func toRecipeDTO(g *models.RecipeGraph) recipeDTO {
	steps := make([]string, 0, len(g.Steps))
	for _, s := range g.Steps {
		steps = append(steps, s.Instruction)
	}
	ingredients := make([]ingredientDTO, 0, len(g.Ingredients))
	for _, i := range g.Ingredients {
		ingredients = append(ingredients, ingredientDTO{Name: i.Name, Quantity: i.Quantity})
	}
	return recipeDTO{
		RecipeID:       g.ID,
		UserID:         g.OwnerID,
		AuthorUserName: g.AuthorUserName,
		Title:          g.Title,
		Description:    g.Description,
		Steps:          steps,
		ImageURL:       g.ImageURL,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
		Ingredients:    ingredients,
		Categories:     nonNil(g.Categories),
		AverageRating:  g.AverageRating,
		RatingCount:    g.RatingCount,
	}
}

func toPageDTO(p *models.Page[models.RecipeSummary]) pageDTO {
	items := make([]recipeSummaryDTO, 0, len(p.Items))
	for _, s := range p.Items {
		items = append(items, recipeSummaryDTO{
			RecipeID:       s.ID,
			Title:          s.Title,
			ImageURL:       s.ImageURL,
			AuthorUserName: s.AuthorUserName,
			Categories:     nonNil(s.Categories),
			AverageRating:  s.AverageRating,
			RatingCount:    s.RatingCount,
			CreatedAt:      s.CreatedAt,
		})
	}
	return pageDTO{Items: items, TotalCount: p.TotalCount, Page: p.Page, PageSize: p.PageSize}
}

func toCategoryDTO(c models.Category) categoryDTO {
	return categoryDTO{CategoryID: c.ID, Name: c.Name}
}

func toRatingDTO(r models.Rating) ratingDTO {
	return ratingDTO{RatingID: r.ID, RecipeID: r.RecipeID, UserID: r.UserID, UserName: r.UserName, Score: r.Score, CreatedAt: r.CreatedAt}
}

func toCommentDTO(c models.Comment) commentDTO {
	return commentDTO{CommentID: c.ID, RecipeID: c.RecipeID, UserID: c.UserID, UserName: c.UserName, Body: c.Body, CreatedAt: c.CreatedAt}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

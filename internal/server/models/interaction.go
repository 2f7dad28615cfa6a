package models

import "time"

// Rating is one user's score for a recipe; at most one per (recipe, user).
type Rating struct {
	ID        int64
	RecipeID  int64
	UserID    int64
	UserName  string
	Score     int
	CreatedAt time.Time
}

type Comment struct {
	ID        int64
	RecipeID  int64
	UserID    int64
	UserName  string
	Body      string
	CreatedAt time.Time
}

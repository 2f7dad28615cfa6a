package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipehub/internal/server/validation"
)

// RatingService keeps at most one rating per (recipe, user) pair.
type RatingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   *validation.Validator
	now         func() time.Time
}

func NewRatingService(db *sql.DB, m repomanager.RepositoryManager, v *validation.Validator) *RatingService {
	return &RatingService{
		db:          db,
		repomanager: m,
		validator:   v,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Rate records userID's score for a recipe, overwriting score and timestamp
// of an earlier rating by the same user. The statements run outside a
// transaction: a concurrent insert for the same pair trips the unique
// constraint and is retried as an update.
func (s *RatingService) Rate(ctx context.Context, userID int64, in models.RatingInput) (*models.Rating, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	exists, err := s.repomanager.Recipes(s.db).Exists(ctx, in.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("error checking recipe: %w", err)
	}
	if !exists {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.Ratings(s.db)
	now := s.now()

	var id int64
	existing, err := repo.FindByPair(ctx, in.RecipeID, userID)
	switch {
	case err == nil:
		id, err = repo.UpdateScore(ctx, in.RecipeID, userID, in.Score, now)
		if err != nil {
			return nil, fmt.Errorf("error updating rating %d: %w", existing.ID, err)
		}
	case errors.Is(err, common.ErrorNotFound):
		id, err = s.insertOrUpdate(ctx, userID, in, now)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("error reading rating: %w", err)
	}

	rating, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reading rating: %w", err)
	}
	return rating, nil
}

func (s *RatingService) insertOrUpdate(ctx context.Context, userID int64, in models.RatingInput, now time.Time) (int64, error) {
	repo := s.repomanager.Ratings(s.db)

	rt, err := repo.Insert(ctx, &models.Rating{RecipeID: in.RecipeID, UserID: userID, Score: in.Score, CreatedAt: now})
	if err == nil {
		return rt.ID, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return 0, err
	}
	if !errors.Is(err, common.ErrorAlreadyExists) {
		return 0, fmt.Errorf("error inserting rating: %w", err)
	}

	id, err := repo.UpdateScore(ctx, in.RecipeID, userID, in.Score, now)
	if err != nil {
		return 0, fmt.Errorf("error updating rating: %w", err)
	}
	return id, nil
}

// List returns the recipe's ratings, newest first.
func (s *RatingService) List(ctx context.Context, recipeID int64) ([]models.Rating, error) {
	list, err := s.repomanager.Ratings(s.db).ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("error listing ratings: %w", err)
	}
	return list, nil
}

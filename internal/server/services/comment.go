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

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   *validation.Validator
	now         func() time.Time
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, v *validation.Validator) *CommentService {
	return &CommentService{
		db:          db,
		repomanager: m,
		validator:   v,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create appends a comment to an existing recipe.
func (s *CommentService) Create(ctx context.Context, userID int64, in models.CommentInput) (*models.Comment, error) {
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

	repo := s.repomanager.Comments(s.db)
	c, err := repo.Create(ctx, &models.Comment{RecipeID: in.RecipeID, UserID: userID, Body: in.Body, CreatedAt: s.now()})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	created, err := repo.Get(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("error reading comment: %w", err)
	}
	return created, nil
}

// List returns the recipe's comments, newest first.
func (s *CommentService) List(ctx context.Context, recipeID int64) ([]models.Comment, error) {
	list, err := s.repomanager.Comments(s.db).ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return list, nil
}

// Delete removes the comment if userID wrote it. Someone else's comment and a
// missing one both report false.
func (s *CommentService) Delete(ctx context.Context, id, userID int64) (bool, error) {
	ok, err := s.repomanager.Comments(s.db).DeleteOwned(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("error deleting comment: %w", err)
	}
	return ok, nil
}

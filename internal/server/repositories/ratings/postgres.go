// Package ratings provides the PostgreSQL-backed rating repository.
package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

// PairConstraint is the unique constraint on (recipe_id, user_id).
const PairConstraint = "ratings_recipe_user_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByPair(ctx context.Context, recipeID, userID int64) (*models.Rating, error) {
	query := `
		SELECT id, recipe_id, user_id, score, created_at
		FROM ratings
		WHERE recipe_id = $1 AND user_id = $2
	`
	rt := &models.Rating{}
	err := r.db.QueryRowContext(ctx, query, recipeID, userID).
		Scan(&rt.ID, &rt.RecipeID, &rt.UserID, &rt.Score, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

// Insert adds a new rating. A rating that already exists for the pair is
// reported as common.ErrorAlreadyExists, a missing recipe as
// common.ErrorNotFound.
func (r *PostgresRepository) Insert(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	query := `
		INSERT INTO ratings (recipe_id, user_id, score, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, rating.RecipeID, rating.UserID, rating.Score, rating.CreatedAt).
		Scan(&rating.ID)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err, PairConstraint):
			return nil, common.ErrorAlreadyExists
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rating, nil
}

// UpdateScore overwrites score and timestamp of the pair's rating and
// returns its id.
func (r *PostgresRepository) UpdateScore(ctx context.Context, recipeID, userID int64, score int, at time.Time) (int64, error) {
	query := `
		UPDATE ratings SET score = $3, created_at = $4
		WHERE recipe_id = $1 AND user_id = $2
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, recipeID, userID, score, at).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Rating, error) {
	query := `
		SELECT rt.id, rt.recipe_id, rt.user_id, u.username, rt.score, rt.created_at
		FROM ratings rt
		LEFT JOIN users u ON u.id = rt.user_id
		WHERE rt.id = $1
	`
	rt := &models.Rating{}
	var userName sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&rt.ID, &rt.RecipeID, &rt.UserID, &userName, &rt.Score, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rt.UserName = nameOrUnknown(userName)
	return rt, nil
}

// ListByRecipe returns the recipe's ratings newest first.
func (r *PostgresRepository) ListByRecipe(ctx context.Context, recipeID int64) ([]models.Rating, error) {
	query := `
		SELECT rt.id, rt.recipe_id, rt.user_id, u.username, rt.score, rt.created_at
		FROM ratings rt
		LEFT JOIN users u ON u.id = rt.user_id
		WHERE rt.recipe_id = $1
		ORDER BY rt.created_at DESC, rt.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Rating{}
	for rows.Next() {
		var rt models.Rating
		var userName sql.NullString
		if err := rows.Scan(&rt.ID, &rt.RecipeID, &rt.UserID, &userName, &rt.Score, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rt.UserName = nameOrUnknown(userName)
		result = append(result, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Stats computes average and count over the recipe's current ratings; both
// are zero when there are none.
func (r *PostgresRepository) Stats(ctx context.Context, recipeID int64) (models.RatingStats, error) {
	query := `
		SELECT COALESCE(AVG(score), 0)::float8, COUNT(*)
		FROM ratings
		WHERE recipe_id = $1
	`
	var s models.RatingStats
	if err := r.db.QueryRowContext(ctx, query, recipeID).Scan(&s.Average, &s.Count); err != nil {
		return models.RatingStats{}, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func nameOrUnknown(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return common.UnknownAuthor
}

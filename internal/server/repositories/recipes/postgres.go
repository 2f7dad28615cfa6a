// Package recipes provides the PostgreSQL-backed repository for the recipe
// aggregate: the recipe row and its steps, ingredients and category links.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	query := `
		INSERT INTO recipes (owner_id, title, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		recipe.OwnerID, recipe.Title, recipe.Description, recipe.ImageURL, recipe.CreatedAt, recipe.UpdatedAt).
		Scan(&recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

// Get loads the recipe row together with its owner's username. Child
// collections and rating statistics are loaded separately.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.RecipeGraph, error) {
	query := `
		SELECT r.id, r.owner_id, r.title, r.description, r.image_url, r.created_at, r.updated_at, u.username
		FROM recipes r
		LEFT JOIN users u ON u.id = r.owner_id
		WHERE r.id = $1
	`
	g := &models.RecipeGraph{}
	var author sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.ImageURL, &g.CreatedAt, &g.UpdatedAt, &author)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	g.AuthorUserName = common.UnknownAuthor
	if author.Valid {
		g.AuthorUserName = author.String
	}
	return g, nil
}

// FindOwnedForUpdate returns the recipe only if it is owned by ownerID and
// locks the row for the rest of the transaction. Absent and foreign recipes
// both yield common.ErrorNotFound.
func (r *PostgresRepository) FindOwnedForUpdate(ctx context.Context, id, ownerID int64) (*models.Recipe, error) {
	query := `
		SELECT id, owner_id, title, description, image_url, created_at, updated_at
		FROM recipes
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`
	rec := &models.Recipe{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.Description, &rec.ImageURL, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Update writes the mutable root fields.
func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	query := `
		UPDATE recipes
		SET title = $2, description = $3, image_url = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		recipe.ID, recipe.Title, recipe.Description, recipe.ImageURL, recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// deleteSequence removes every row owned by a recipe, children first.
var deleteSequence = []string{
	`DELETE FROM ratings WHERE recipe_id = $1`,
	`DELETE FROM comments WHERE recipe_id = $1`,
	`DELETE FROM recipe_categories WHERE recipe_id = $1`,
	`DELETE FROM ingredients WHERE recipe_id = $1`,
	`DELETE FROM steps WHERE recipe_id = $1`,
	`DELETE FROM recipes WHERE id = $1`,
}

// Delete removes the recipe and all of its dependent rows. It must run on a
// transaction so the sequence is applied atomically.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	for _, q := range deleteSequence {
		if _, err := r.db.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Steps(ctx context.Context, recipeID int64) ([]models.Step, error) {
	query := `
		SELECT id, recipe_id, step_order, instruction
		FROM steps
		WHERE recipe_id = $1
		ORDER BY step_order
	`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Step{}
	for rows.Next() {
		var s models.Step
		if err := rows.Scan(&s.ID, &s.RecipeID, &s.Order, &s.Instruction); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// InsertSteps numbers instructions 1..N in the order given.
func (r *PostgresRepository) InsertSteps(ctx context.Context, recipeID int64, instructions []string) error {
	query := `INSERT INTO steps (recipe_id, step_order, instruction) VALUES ($1, $2, $3)`
	for i, instruction := range instructions {
		if _, err := r.db.ExecContext(ctx, query, recipeID, i+1, instruction); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) DeleteSteps(ctx context.Context, recipeID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Ingredients(ctx context.Context, recipeID int64) ([]models.Ingredient, error) {
	query := `
		SELECT id, recipe_id, name, quantity
		FROM ingredients
		WHERE recipe_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Ingredient{}
	for rows.Next() {
		var in models.Ingredient
		if err := rows.Scan(&in.ID, &in.RecipeID, &in.Name, &in.Quantity); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) InsertIngredients(ctx context.Context, recipeID int64, ingredients []models.IngredientInput) error {
	query := `INSERT INTO ingredients (recipe_id, name, quantity) VALUES ($1, $2, $3)`
	for _, in := range ingredients {
		if _, err := r.db.ExecContext(ctx, query, recipeID, in.Name, in.Quantity); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) DeleteIngredients(ctx context.Context, recipeID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ingredients WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CategoryNames(ctx context.Context, recipeID int64) ([]string, error) {
	query := `
		SELECT c.name
		FROM recipe_categories rc
		JOIN categories c ON c.id = rc.category_id
		WHERE rc.recipe_id = $1
		ORDER BY c.name
	`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// LinkCategories associates the recipe with each category id. Ids that do
// not resolve to a category are skipped, as are links that already exist.
func (r *PostgresRepository) LinkCategories(ctx context.Context, recipeID int64, categoryIDs []int64) error {
	query := `
		INSERT INTO recipe_categories (recipe_id, category_id)
		SELECT $1, id FROM categories WHERE id = $2
		ON CONFLICT DO NOTHING
	`
	for _, id := range categoryIDs {
		if _, err := r.db.ExecContext(ctx, query, recipeID, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) UnlinkCategories(ctx context.Context, recipeID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipe_categories WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

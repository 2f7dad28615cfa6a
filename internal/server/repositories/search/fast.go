package search

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

// fastFilter is shared verbatim by the count and page statements so both
// passes see the same set. $1 is the ILIKE pattern or NULL, $2 the category
// id or NULL, $3 the owner id or NULL.
const fastFilter = `
		WHERE ($1::text IS NULL
		       OR r.title ILIKE $1 ESCAPE '\'
		       OR r.description ILIKE $1 ESCAPE '\'
		       OR EXISTS (SELECT 1 FROM ingredients i WHERE i.recipe_id = r.id AND i.name ILIKE $1 ESCAPE '\')
		       OR EXISTS (SELECT 1 FROM recipe_categories rc JOIN categories c ON c.id = rc.category_id
		                  WHERE rc.recipe_id = r.id AND c.name ILIKE $1 ESCAPE '\'))
		  AND ($2::bigint IS NULL
		       OR EXISTS (SELECT 1 FROM recipe_categories rc WHERE rc.recipe_id = r.id AND rc.category_id = $2))
		  AND ($3::bigint IS NULL OR r.owner_id = $3)
`

const fastCountQuery = `
		SELECT COUNT(*)
		FROM recipes r` + fastFilter

const fastPageQuery = `
		SELECT r.id, r.title, r.image_url, r.created_at, u.username,
		       COALESCE((SELECT AVG(rt.score)::float8 FROM ratings rt WHERE rt.recipe_id = r.id), 0),
		       (SELECT COUNT(*) FROM ratings rt WHERE rt.recipe_id = r.id)
		FROM recipes r
		LEFT JOIN users u ON u.id = r.owner_id` + fastFilter + `
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $4 OFFSET $5
`

// FastSearcher runs one hand-written statement per pass. Its summaries carry
// an empty category list.
type FastSearcher struct {
	db dbx.DBTX
}

func NewFastSearcher(db dbx.DBTX) *FastSearcher {
	return &FastSearcher{db: db}
}

func fastArgs(q models.SearchQuery) []any {
	args := []any{nil, nil, nil}
	if t, ok := term(q); ok {
		args[0] = likePattern(t)
	}
	if q.CategoryID != nil {
		args[1] = *q.CategoryID
	}
	if q.OwnerID != nil {
		args[2] = *q.OwnerID
	}
	return args
}

func (s *FastSearcher) Search(ctx context.Context, q models.SearchQuery) (*models.Page[models.RecipeSummary], error) {
	args := fastArgs(q)

	var total int
	if err := s.db.QueryRowContext(ctx, fastCountQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	page := &models.Page[models.RecipeSummary]{
		Items:      []models.RecipeSummary{},
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	if total == 0 {
		return page, nil
	}

	rows, err := s.db.QueryContext(ctx, fastPageQuery, append(args, q.PageSize, q.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.RecipeSummary
		var author sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &item.ImageURL, &item.CreatedAt, &author,
			&item.AverageRating, &item.RatingCount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		item.AuthorUserName = common.UnknownAuthor
		if author.Valid {
			item.AuthorUserName = author.String
		}
		item.Categories = []string{}
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return page, nil
}

package search

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

// ComposedSearcher builds the WHERE clause from the filters present in the
// query, fetches one page of recipe rows and then loads category names and
// rating statistics for exactly those rows.
type ComposedSearcher struct {
	db dbx.DBTX
}

func NewComposedSearcher(db dbx.DBTX) *ComposedSearcher {
	return &ComposedSearcher{db: db}
}

// predicate accumulates AND-ed conditions and their positional arguments.
type predicate struct {
	conds []string
	args  []any
}

func (p *predicate) arg(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

func (p *predicate) and(cond string) {
	p.conds = append(p.conds, cond)
}

func (p *predicate) where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.conds, " AND ")
}

func buildPredicate(q models.SearchQuery) *predicate {
	p := &predicate{}

	if t, ok := term(q); ok {
		ph := p.arg(likePattern(t))
		p.and(`(r.title ILIKE ` + ph + ` ESCAPE '\'` +
			` OR r.description ILIKE ` + ph + ` ESCAPE '\'` +
			` OR r.id IN (SELECT i.recipe_id FROM ingredients i WHERE i.name ILIKE ` + ph + ` ESCAPE '\')` +
			` OR r.id IN (SELECT rc.recipe_id FROM recipe_categories rc JOIN categories c ON c.id = rc.category_id WHERE c.name ILIKE ` + ph + ` ESCAPE '\'))`)
	}
	if q.CategoryID != nil {
		p.and(`r.id IN (SELECT rc.recipe_id FROM recipe_categories rc WHERE rc.category_id = ` + p.arg(*q.CategoryID) + `)`)
	}
	if q.OwnerID != nil {
		p.and(`r.owner_id = ` + p.arg(*q.OwnerID))
	}

	return p
}

func (s *ComposedSearcher) Search(ctx context.Context, q models.SearchQuery) (*models.Page[models.RecipeSummary], error) {
	p := buildPredicate(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes r`+p.where(), p.args...).Scan(&total); err != nil {
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

	args := append([]any{}, p.args...)
	limit := "$" + strconv.Itoa(len(args)+1)
	offset := "$" + strconv.Itoa(len(args)+2)
	args = append(args, q.PageSize, q.Offset())

	query := `SELECT r.id, r.title, r.image_url, r.created_at, u.username` +
		` FROM recipes r LEFT JOIN users u ON u.id = r.owner_id` +
		p.where() +
		` ORDER BY r.created_at DESC, r.id DESC LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	index := map[int64]int{}
	for rows.Next() {
		var item models.RecipeSummary
		var author sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &item.ImageURL, &item.CreatedAt, &author); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		item.AuthorUserName = common.UnknownAuthor
		if author.Valid {
			item.AuthorUserName = author.String
		}
		item.Categories = []string{}
		index[item.ID] = len(page.Items)
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(page.Items) == 0 {
		return page, nil
	}
	if err := s.loadCategories(ctx, page.Items, index); err != nil {
		return nil, err
	}
	if err := s.loadRatings(ctx, page.Items, index); err != nil {
		return nil, err
	}

	return page, nil
}

// inList renders "($1, $2, ...)" for the ids of items.
func inList(items []models.RecipeSummary) (string, []any) {
	ph := make([]string, len(items))
	args := make([]any, len(items))
	for i, it := range items {
		ph[i] = "$" + strconv.Itoa(i+1)
		args[i] = it.ID
	}
	return "(" + strings.Join(ph, ", ") + ")", args
}

func (s *ComposedSearcher) loadCategories(ctx context.Context, items []models.RecipeSummary, index map[int64]int) error {
	in, args := inList(items)
	query := `SELECT rc.recipe_id, c.name FROM recipe_categories rc` +
		` JOIN categories c ON c.id = rc.category_id` +
		` WHERE rc.recipe_id IN ` + in +
		` ORDER BY rc.recipe_id, c.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if i, ok := index[id]; ok {
			items[i].Categories = append(items[i].Categories, name)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *ComposedSearcher) loadRatings(ctx context.Context, items []models.RecipeSummary, index map[int64]int) error {
	in, args := inList(items)
	query := `SELECT recipe_id, AVG(score)::float8, COUNT(*) FROM ratings` +
		` WHERE recipe_id IN ` + in +
		` GROUP BY recipe_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var stats models.RatingStats
		if err := rows.Scan(&id, &stats.Average, &stats.Count); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if i, ok := index[id]; ok {
			items[i].AverageRating = stats.Average
			items[i].RatingCount = stats.Count
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

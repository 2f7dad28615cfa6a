package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipehub/internal/server/validation"
)

// SearchService serves paginated recipe listings through the configured
// search strategy.
type SearchService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   *validation.Validator
}

func NewSearchService(db *sql.DB, m repomanager.RepositoryManager, v *validation.Validator) *SearchService {
	return &SearchService{db: db, repomanager: m, validator: v}
}

// List returns one page of recipes matching q, newest first. The count and
// page passes run against the same snapshot.
func (s *SearchService) List(ctx context.Context, q models.SearchQuery) (*models.Page[models.RecipeSummary], error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, err
	}

	var page *models.Page[models.RecipeSummary]
	err := dbx.WithTx(ctx, s.db, dbx.ReadSnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		page, err = s.repomanager.Search(tx).Search(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}
	return page, nil
}

// ListByOwner lists the recipes of one user.
func (s *SearchService) ListByOwner(ctx context.Context, ownerID int64, page, pageSize int) (*models.Page[models.RecipeSummary], error) {
	return s.List(ctx, models.SearchQuery{OwnerID: &ownerID, Page: page, PageSize: pageSize})
}

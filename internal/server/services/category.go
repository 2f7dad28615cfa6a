package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipehub/internal/server/models"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipehub/internal/server/validation"
)

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   *validation.Validator
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager, v *validation.Validator) *CategoryService {
	return &CategoryService{db: db, repomanager: m, validator: v}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.repomanager.Categories(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.repomanager.Categories(s.db).Create(ctx, strings.TrimSpace(in.Name))
	if err != nil {
		return nil, fmt.Errorf("error creating category: %w", err)
	}
	return c, nil
}

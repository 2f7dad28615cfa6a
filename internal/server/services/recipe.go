package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/logging"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipehub/internal/server/storage"
	"github.com/dmitrijs2005/recipehub/internal/server/validation"
	"github.com/google/uuid"
)

// ImageStore is the part of the image storage the recipe service needs.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// RecipeService owns the recipe aggregate. Every mutation runs in a single
// transaction; reads use a read-only snapshot so the graph is consistent.
type RecipeService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	images       ImageStore
	validator    *validation.Validator
	logger       logging.Logger
	maxImageSize int64
	now          func() time.Time
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, images ImageStore, v *validation.Validator,
	logger logging.Logger, maxImageSize int64) *RecipeService {
	return &RecipeService{
		db:           db,
		repomanager:  m,
		images:       images,
		validator:    v,
		logger:       logger.With("module", "recipes"),
		maxImageSize: maxImageSize,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new recipe with its steps numbered 1..N, its ingredients
// and links to the distinct category ids that exist.
func (s *RecipeService) Create(ctx context.Context, ownerID int64, in models.RecipeInput) (*models.RecipeGraph, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	var graph *models.RecipeGraph
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		now := s.now()
		rec, err := repo.Create(ctx, &models.Recipe{
			OwnerID:     ownerID,
			Title:       in.Title,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}

		if err := repo.InsertSteps(ctx, rec.ID, in.Steps); err != nil {
			return err
		}
		if err := repo.InsertIngredients(ctx, rec.ID, in.Ingredients); err != nil {
			return err
		}
		if err := repo.LinkCategories(ctx, rec.ID, distinct(in.CategoryIDs)); err != nil {
			return err
		}

		graph, err = s.load(ctx, tx, rec.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating recipe: %w", err)
	}
	return graph, nil
}

// Get returns the full recipe graph or common.ErrorNotFound.
func (s *RecipeService) Get(ctx context.Context, id int64) (*models.RecipeGraph, error) {
	var graph *models.RecipeGraph
	err := dbx.WithTx(ctx, s.db, dbx.ReadSnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		graph, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return graph, nil
}

// Update applies patch to a recipe owned by ownerID. Present collections are
// replaced wholesale; updated_at always advances. Missing and foreign
// recipes both yield common.ErrorNotFound.
func (s *RecipeService) Update(ctx context.Context, id, ownerID int64, patch models.RecipePatch) (*models.RecipeGraph, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, err
	}

	var graph *models.RecipeGraph
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		rec, err := repo.FindOwnedForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			rec.Title = *patch.Title
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		rec.UpdatedAt = s.now()
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}

		if patch.Steps != nil {
			if err := repo.DeleteSteps(ctx, id); err != nil {
				return err
			}
			if err := repo.InsertSteps(ctx, id, patch.Steps); err != nil {
				return err
			}
		}
		if patch.Ingredients != nil {
			if err := repo.DeleteIngredients(ctx, id); err != nil {
				return err
			}
			if err := repo.InsertIngredients(ctx, id, patch.Ingredients); err != nil {
				return err
			}
		}
		if patch.CategoryIDs != nil {
			if err := repo.UnlinkCategories(ctx, id); err != nil {
				return err
			}
			if err := repo.LinkCategories(ctx, id, distinct(patch.CategoryIDs)); err != nil {
				return err
			}
		}

		graph, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating recipe: %w", err)
	}
	return graph, nil
}

// Delete removes a recipe owned by ownerID together with its steps,
// ingredients, category links, ratings and comments. It reports false when
// there was nothing of the caller's to delete.
func (s *RecipeService) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	var imageURL *string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		rec, err := repo.FindOwnedForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		imageURL = rec.ImageURL

		return repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error deleting recipe: %w", err)
	}

	if imageURL != nil {
		s.removeImage(ctx, *imageURL)
	}
	return true, nil
}

// AttachImage stores data as the recipe's image and returns its URL. Empty
// or oversized payloads are rejected with common.ErrorPayloadRejected. An
// unsupported extension and a recipe the caller does not own are both
// reported as common.ErrorNotFound.
func (s *RecipeService) AttachImage(ctx context.Context, id, ownerID int64, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: file is empty", common.ErrorPayloadRejected)
	}
	if int64(len(data)) > s.maxImageSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", common.ErrorPayloadRejected, s.maxImageSize)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedImageExtensions[ext] {
		return "", common.ErrorNotFound
	}

	var url string
	var previous *string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		rec, err := repo.FindOwnedForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		previous = rec.ImageURL

		key := fmt.Sprintf("%s%d_%s%s", storage.RecipeImagePrefix, id, uuid.NewString(), ext)
		url, err = s.images.Save(ctx, key, data)
		if err != nil {
			return fmt.Errorf("error saving image: %w", err)
		}

		rec.ImageURL = &url
		rec.UpdatedAt = s.now()
		return repo.Update(ctx, rec)
	})
	if err != nil {
		if url != "" {
			s.removeImage(ctx, url)
		}
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error attaching image: %w", err)
	}

	if previous != nil && *previous != url {
		s.removeImage(ctx, *previous)
	}
	return url, nil
}

// load assembles the recipe graph from the root row, its children and the
// live rating statistics.
func (s *RecipeService) load(ctx context.Context, db dbx.DBTX, id int64) (*models.RecipeGraph, error) {
	repo := s.repomanager.Recipes(db)

	graph, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if graph.Steps, err = repo.Steps(ctx, id); err != nil {
		return nil, err
	}
	if graph.Ingredients, err = repo.Ingredients(ctx, id); err != nil {
		return nil, err
	}
	if graph.Categories, err = repo.CategoryNames(ctx, id); err != nil {
		return nil, err
	}

	stats, err := s.repomanager.Ratings(db).Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	graph.AverageRating = stats.Average
	graph.RatingCount = stats.Count

	return graph, nil
}

func (s *RecipeService) removeImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn(ctx, "image cleanup failed", "url", url, "error", err)
	}
}

// distinct drops repeated ids, keeping first occurrences in order.
func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

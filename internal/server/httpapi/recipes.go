package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10

	// room for multipart headers on top of the image itself
	multipartOverhead = 1 << 20

	recipeNotOwned = "recipe not found or you are not the owner"
)

func pageParams(r *http.Request) (int, int, error) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(r, "pageSize", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func (h *Handler) listRecipes(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondPage(w, r, models.SearchQuery{Page: page, PageSize: size})
}

func (h *Handler) searchRecipes(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := models.SearchQuery{Query: r.URL.Query().Get("q"), Page: page, PageSize: size}
	if v := r.URL.Query().Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.fail(w, r, common.NewValidationError("categoryId", "must be an integer"))
			return
		}
		q.CategoryID = &id
	}
	h.respondPage(w, r, q)
}

func (h *Handler) listUserRecipes(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, size, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.search.ListByOwner(r.Context(), ownerID, page, size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPageDTO(res))
}

func (h *Handler) respondPage(w http.ResponseWriter, r *http.Request, q models.SearchQuery) {
	res, err := h.search.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPageDTO(res))
}

func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	g, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "recipe not found")
			return
		}
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecipeDTO(g))
}

func (h *Handler) createRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var in models.RecipeInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	g, err := h.recipes.Create(r.Context(), userID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "recipe created", "recipe_id", g.ID, "owner_id", userID)
	w.Header().Set("Location", fmt.Sprintf("/api/recipes/%d", g.ID))
	respondJSON(w, http.StatusCreated, toRecipeDTO(g))
}

func (h *Handler) updateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, recipeNotOwned)
		return
	}

	var patch models.RecipePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}

	g, err := h.recipes.Update(r.Context(), id, userID, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, recipeNotOwned)
			return
		}
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecipeDTO(g))
}

func (h *Handler) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, recipeNotOwned)
		return
	}

	deleted, err := h.recipes.Delete(r.Context(), id, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, recipeNotOwned)
		return
	}

	h.logger.Info(r.Context(), "recipe deleted", "recipe_id", id, "owner_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// uploadImage accepts a multipart form with the image in the "file" field.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, recipeNotOwned)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxImageSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("file exceeds %d bytes", h.maxImageSize))
			return
		}
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	// one byte past the ceiling is enough for the service to reject it
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read file")
		return
	}

	url, err := h.recipes.AttachImage(r.Context(), id, userID, header.Filename, data)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "recipe not found, you are not the owner, or file type is unsupported")
			return
		}
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, imageResponse{ImageURL: url})
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.categories.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryDTO(*c))
}

func (h *Handler) listRatings(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipeId")
	if err != nil {
		respondJSON(w, http.StatusOK, []ratingDTO{})
		return
	}

	list, err := h.ratings.List(r.Context(), recipeID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]ratingDTO, 0, len(list))
	for _, rt := range list {
		out = append(out, toRatingDTO(rt))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var in models.RatingInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	rt, err := h.ratings.Rate(r.Context(), userID, in)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "recipe not found")
			return
		}
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRatingDTO(*rt))
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipeId")
	if err != nil {
		respondJSON(w, http.StatusOK, []commentDTO{})
		return
	}

	list, err := h.comments.List(r.Context(), recipeID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]commentDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toCommentDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var in models.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.comments.Create(r.Context(), userID, in)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "recipe not found")
			return
		}
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCommentDTO(*c))
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "comment not found or you are not the author")
		return
	}

	deleted, err := h.comments.Delete(r.Context(), id, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "comment not found or you are not the author")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

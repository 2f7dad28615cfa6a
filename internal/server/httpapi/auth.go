package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.users.Register(r.Context(), in)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			respondError(w, http.StatusConflict, "username or email already exists")
			return
		}
		h.fail(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "registered", "user_id", res.UserID)
	respondJSON(w, http.StatusOK, toAuthResponse(res))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), in)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toAuthResponse(res))
}

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/staffdesk/staff-console/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// GetCurrentUser resolves the caller's principal. The response is the minimal
// projection needed for authorization decisions, not the full record.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	subString := r.Context().Value(SubCtxKey).(string)

	sub, err := strconv.ParseInt(subString, 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user, err := h.store.GetUserByID(sub)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// the account behind the session is gone
			h.errorResponse(w, r, http.StatusUnauthorized, "not authenticated")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, domain.Principal{ID: user.ID, Role: user.Role})
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	subString := r.Context().Value(SubCtxKey).(string)

	sub, err := strconv.ParseInt(subString, 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.store.GetUserByID(sub)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusUnauthorized, "not authenticated")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "old password is incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.store.UpdateUserPassword(user.ID, string(hashedPassword)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r)
}
